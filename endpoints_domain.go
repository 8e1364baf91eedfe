package rdapclient

import "context"

// Domain returns a typed RDAP Domain per RFC 9083.
func (c *Client) Domain(ctx context.Context, fqdn string) (*Domain, error) {
	d, _, err := c.fetchDomain(ctx, fqdn)
	return d, err
}

// fetchDomain resolves the authoritative base (an explicit override
// server always wins, per spec.md §4.5 step 1) and returns the
// decoded Domain alongside the URL it was fetched from, so callers
// that build a QueryResult can record RegistryURL.
func (c *Client) fetchDomain(ctx context.Context, fqdn string) (*Domain, string, error) {
	base, err := c.baseForDomain(ctx, fqdn)
	if err != nil {
		return nil, "", err
	}
	u := mustJoin(base, "/domain/", fqdn)
	raw, _, err := c.getJSON(ctx, u)
	if err != nil {
		return nil, "", err
	}
	obj, _, err := ParseObject(raw)
	if err != nil {
		return nil, "", err
	}
	d, ok := obj.(*Domain)
	if !ok {
		return nil, "", ErrUnexpectedObject("domain")
	}
	return d, u, nil
}

func (c *Client) baseForDomain(ctx context.Context, fqdn string) (string, error) {
	if c.overrideServer != "" {
		return c.overrideServer, nil
	}
	return c.rdapBaseForDomain(ctx, fqdn)
}
