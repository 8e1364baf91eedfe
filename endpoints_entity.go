package rdapclient

import "context"

// baseForEntity resolves the RDAP base for an entity handle. Entity
// handles have no fixed syntax and no IANA bootstrap mapping (spec.md
// §4.3, "Entity... No bootstrap mapping exists. Require an explicit
// server URL"); an override server is the only way to satisfy that.
func (c *Client) baseForEntity(ctx context.Context) (string, error) {
	if c.overrideServer != "" {
		return c.overrideServer, nil
	}
	return "", &Error{Kind: KindRequiresExplicitServer, Message: "entity queries require an explicit server"}
}

// Entity queries an entity handle and returns a typed Entity.
func (c *Client) Entity(ctx context.Context, handle string) (*Entity, error) {
	e, _, err := c.fetchEntity(ctx, handle)
	return e, err
}

func (c *Client) fetchEntity(ctx context.Context, handle string) (*Entity, string, error) {
	base, err := c.baseForEntity(ctx)
	if err != nil {
		return nil, "", err
	}
	u := mustJoin(base, "/entity/", handle)
	m, _, err := c.getJSON(ctx, u)
	if err != nil {
		return nil, "", err
	}
	obj, _, err := ParseObject(m)
	if err != nil {
		return nil, "", err
	}
	e, ok := obj.(*Entity)
	if !ok {
		return nil, "", ErrUnexpectedObject("entity")
	}
	return e, u, nil
}
