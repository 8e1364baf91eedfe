package rdapclient

import (
	"context"
	"net/url"
)

// baseForSearch resolves the RDAP base for a search query. Spec.md
// §4.3 groups searches with Entity/Nameserver: no bootstrap mapping
// exists, so an explicit server is required.
func (c *Client) baseForSearch(ctx context.Context) (string, error) {
	if c.overrideServer != "" {
		return c.overrideServer, nil
	}
	return "", &Error{Kind: KindRequiresExplicitServer, Message: "search queries require an explicit server"}
}

func (c *Client) searchGet(ctx context.Context, segment, key, value string) (map[string]any, string, error) {
	base, err := c.baseForSearch(ctx)
	if err != nil {
		return nil, "", err
	}
	q := url.Values{}
	q.Set(key, value)
	u := mustJoin(base, "/"+segment) + "?" + q.Encode()
	m, _, err := c.getJSON(ctx, u)
	if err != nil {
		return nil, "", err
	}
	return m, u, nil
}

// DomainSearch issues a domain search (RFC 7482 §3.2.1), forwarding
// key/value as a literal query string. No client-side ranking or
// pagination is implemented (spec.md §1 Non-goals).
func (c *Client) DomainSearch(ctx context.Context, key, value string) (*DomainSearchResults, error) {
	m, _, err := c.searchGet(ctx, "domains", key, value)
	if err != nil {
		return nil, err
	}
	obj, _, err := ParseObject(m)
	if err != nil {
		return nil, err
	}
	r, ok := obj.(*DomainSearchResults)
	if !ok {
		return nil, ErrUnexpectedObject("domain-search-results")
	}
	return r, nil
}

// NameserverSearch issues a nameserver search (RFC 7482 §3.2.2).
func (c *Client) NameserverSearch(ctx context.Context, key, value string) (*NameserverSearchResults, error) {
	m, _, err := c.searchGet(ctx, "nameservers", key, value)
	if err != nil {
		return nil, err
	}
	obj, _, err := ParseObject(m)
	if err != nil {
		return nil, err
	}
	r, ok := obj.(*NameserverSearchResults)
	if !ok {
		return nil, ErrUnexpectedObject("nameserver-search-results")
	}
	return r, nil
}

// EntitySearch issues an entity search (RFC 7482 §3.2.3).
func (c *Client) EntitySearch(ctx context.Context, key, value string) (*EntitySearchResults, error) {
	m, _, err := c.searchGet(ctx, "entities", key, value)
	if err != nil {
		return nil, err
	}
	obj, _, err := ParseObject(m)
	if err != nil {
		return nil, err
	}
	r, ok := obj.(*EntitySearchResults)
	if !ok {
		return nil, ErrUnexpectedObject("entity-search-results")
	}
	return r, nil
}
