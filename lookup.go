// lookup.go
package rdapclient

import (
	"context"
	"net/netip"
)

// Query is the single entrypoint spec.md §2's data-flow diagram
// describes end to end: classify → (normalize) → resolve → request →
// decode → (referral) → enrich. override, when non-nil, bypasses the
// classifier entirely (spec.md §4.2, "An explicit type override...
// bypasses detection").
func (c *Client) Query(ctx context.Context, raw string, override *QueryType) (*QueryResult, error) {
	qt, normalized := c.classify(raw, override)

	switch qt {
	case QueryDomain, QueryTld:
		return c.queryDomain(ctx, normalized)
	case QueryIP, QueryCIDR:
		return c.queryIP(ctx, normalized)
	case QueryAutnum:
		return c.queryAutnum(ctx, normalized)
	case QueryEntity:
		return c.queryEntity(ctx, normalized)
	case QueryNameserver:
		return c.queryNameserver(ctx, normalized)
	default:
		return nil, &Error{Kind: KindInvalidQuery, Message: "unsupported query type: " + qt.String()}
	}
}

func (c *Client) classify(raw string, override *QueryType) (QueryType, string) {
	if override != nil {
		// An override still benefits from IP shorthand expansion so
		// "-t ip 1.1" works the same as auto-detection would.
		if *override == QueryIP || *override == QueryCIDR {
			if _, normalized, err := NormalizeIP(raw); err == nil && normalized != "" {
				return *override, normalized
			}
		}
		return *override, raw
	}
	return Classify(raw, c.tlds)
}

func (c *Client) queryDomain(ctx context.Context, fqdn string) (*QueryResult, error) {
	registry, registryURL, err := c.fetchDomain(ctx, fqdn)
	if err != nil {
		return nil, err
	}
	r := &QueryResult{Registry: registry, RegistryURL: registryURL}

	if registrar, registrarURL := c.followRegistrarReferral(ctx, registryURL, registry); registrar != nil {
		r.Registrar = registrar
		r.RegistrarURL = registrarURL
	}

	// Registrar entities are scanned before the registry's, so a contact
	// published by the registrar wins over one from the registry.
	entities := registry.Entities
	if registrar, ok := r.Registrar.(*Domain); ok && registrar != nil {
		entities = append(append([]Entity{}, registrar.Entities...), registry.Entities...)
	}
	c.enrichContacts(r, entities)
	return r, nil
}

func (c *Client) queryIP(ctx context.Context, ipOrCIDR string) (*QueryResult, error) {
	ipn, u, err := c.fetchIP(ctx, ipOrCIDR)
	if err != nil {
		if cidr, retryErr := c.retryIPv6AsCIDR(ctx, ipOrCIDR, err); retryErr == nil {
			ipn, u = cidr.ipn, cidr.u
		} else {
			return nil, err
		}
	}
	r := &QueryResult{Registry: ipn, RegistryURL: u}
	c.enrichContacts(r, ipn.Entities)
	return r, nil
}

func (c *Client) queryAutnum(ctx context.Context, asn string) (*QueryResult, error) {
	a, u, err := c.fetchAutnum(ctx, asn)
	if err != nil {
		return nil, err
	}
	r := &QueryResult{Registry: a, RegistryURL: u}
	c.enrichContacts(r, a.Entities)
	return r, nil
}

func (c *Client) queryEntity(ctx context.Context, handle string) (*QueryResult, error) {
	e, u, err := c.fetchEntity(ctx, handle)
	if err != nil {
		return nil, err
	}
	r := &QueryResult{Registry: e, RegistryURL: u}
	c.enrichContacts(r, entitiesOf(e))
	return r, nil
}

func (c *Client) queryNameserver(ctx context.Context, host string) (*QueryResult, error) {
	ns, u, err := c.fetchNameserver(ctx, host)
	if err != nil {
		return nil, err
	}
	r := &QueryResult{Registry: ns, RegistryURL: u}
	c.enrichContacts(r, ns.Entities)
	return r, nil
}

type cidrRetryResult struct {
	ipn *IPNetwork
	u   string
}

// retryIPv6AsCIDR implements the IPv6 host-query CIDR retry ladder
// (grounded on original_source/src/client.rs
// should_retry_with_cidr/make_cidr_query): some RDAP servers reject
// host-level IPv6 queries with HTTP 400, so a bare address is retried
// as /64, then /48, then /32 before giving up.
func (c *Client) retryIPv6AsCIDR(ctx context.Context, query string, origErr error) (cidrRetryResult, error) {
	rerr, ok := origErr.(*Error)
	if !ok || rerr.Kind != KindHTTPStatus || rerr.Code != 400 {
		return cidrRetryResult{}, origErr
	}
	addr, err := netip.ParseAddr(query)
	if err != nil || !addr.Is6() {
		return cidrRetryResult{}, origErr
	}

	for _, prefixLen := range []int{64, 48, 32} {
		pfx := netip.PrefixFrom(addr, prefixLen).Masked()
		cidr := pfx.String()
		if ipn, u, err := c.fetchIP(ctx, cidr); err == nil {
			return cidrRetryResult{ipn: ipn, u: u}, nil
		}
	}
	return cidrRetryResult{}, origErr
}
