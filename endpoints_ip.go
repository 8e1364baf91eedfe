package rdapclient

import "context"

// rdapBaseForIP resolves the RDAP base for a given IP or CIDR using IANA ipv4/ipv6 bootstrap.
func (c *Client) rdapBaseForIP(ctx context.Context, ipOrCIDR string) (string, error) {
	return c.resolveBaseFromBootstrapIP(ctx, ipOrCIDR)
}

func (c *Client) baseForIP(ctx context.Context, ipOrCIDR string) (string, error) {
	if c.overrideServer != "" {
		return c.overrideServer, nil
	}
	return c.rdapBaseForIP(ctx, ipOrCIDR)
}

func (c *Client) IP(ctx context.Context, ipOrCIDR string) (*IPNetwork, error) {
	ipn, _, err := c.fetchIP(ctx, ipOrCIDR)
	return ipn, err
}

func (c *Client) fetchIP(ctx context.Context, ipOrCIDR string) (*IPNetwork, string, error) {
	base, err := c.baseForIP(ctx, ipOrCIDR)
	if err != nil {
		return nil, "", err
	}
	u := mustJoin(base, "/ip/", ipOrCIDR)
	m, _, err := c.getJSON(ctx, u)
	if err != nil {
		return nil, "", err
	}
	obj, _, err := ParseObject(m)
	if err != nil {
		return nil, "", err
	}
	ipn, ok := obj.(*IPNetwork)
	if !ok {
		return nil, "", ErrUnexpectedObject("ip network")
	}
	return ipn, u, nil
}
