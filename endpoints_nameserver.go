package rdapclient

import "context"

// baseForNameserver resolves the RDAP base for a nameserver host.
// Like Entity, spec.md §4.3 requires an explicit server: the
// bootstrap registries map TLDs, IP ranges and ASN ranges, never
// nameserver hosts.
func (c *Client) baseForNameserver(ctx context.Context) (string, error) {
	if c.overrideServer != "" {
		return c.overrideServer, nil
	}
	return "", &Error{Kind: KindRequiresExplicitServer, Message: "nameserver queries require an explicit server"}
}

func (c *Client) Nameserver(ctx context.Context, host string) (*Nameserver, error) {
	ns, _, err := c.fetchNameserver(ctx, host)
	return ns, err
}

func (c *Client) fetchNameserver(ctx context.Context, host string) (*Nameserver, string, error) {
	base, err := c.baseForNameserver(ctx)
	if err != nil {
		return nil, "", err
	}
	u := mustJoin(base, "/nameserver/", host)
	m, _, err := c.getJSON(ctx, u)
	if err != nil {
		return nil, "", err
	}
	obj, _, err := ParseObject(m)
	if err != nil {
		return nil, "", err
	}
	ns, ok := obj.(*Nameserver)
	if !ok {
		return nil, "", ErrUnexpectedObject("nameserver")
	}
	return ns, u, nil
}
