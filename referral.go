package rdapclient

import (
	"context"
	"net/url"
	"strings"
)

// extractRegistrarRDAPURL scans a Domain response for the sponsoring
// registrar's RDAP base URL. Two shapes are checked, in order: a
// top-level link with rel=="related" whose type or href looks like
// RDAP, then (failing that) a registrar-role entity's own
// rel=="related" link. Only the first match is ever returned; spec.md
// §4.5 follows exactly one referral hop.
func extractRegistrarRDAPURL(d *Domain) string {
	if d == nil {
		return ""
	}
	if href := relatedRDAPLink(d.Links); href != "" {
		return href
	}
	for _, e := range d.Entities {
		if !hasRole(e.Roles, "registrar") {
			continue
		}
		if href := relatedRDAPLink(e.Links); href != "" {
			return href
		}
	}
	return ""
}

func relatedRDAPLink(links []Link) string {
	for _, l := range links {
		if lower(l.Rel) != "related" {
			continue
		}
		if l.Href == "" {
			continue
		}
		if containsAny(lower(l.Type), "rdap", "json") || strings.Contains(l.Href, "/domain/") {
			if _, err := url.Parse(l.Href); err == nil {
				return l.Href
			}
		}
	}
	return ""
}

func hasRole(roles []string, want string) bool {
	for _, r := range roles {
		if lower(r) == want {
			return true
		}
	}
	return false
}

// sameHost reports whether two URLs share a host, used to skip a
// referral that would just re-query the registry server.
func sameHost(a, b string) bool {
	ua, errA := url.Parse(a)
	ub, errB := url.Parse(b)
	if errA != nil || errB != nil {
		return false
	}
	return lower(ua.Host) == lower(ub.Host)
}

// followRegistrarReferral fetches the registrar-level Domain a
// registry response points to, when referral chasing is enabled.
// Failure is deliberately non-fatal: spec.md §4.5/§7 say a referral
// failure must never fail the primary result, so errors are swallowed
// and the caller is left with just the registry object.
func (c *Client) followRegistrarReferral(ctx context.Context, registryURL string, registry *Domain) (*Domain, string) {
	if !c.followReferral {
		return nil, ""
	}
	href := extractRegistrarRDAPURL(registry)
	if href == "" || sameHost(registryURL, href) {
		return nil, ""
	}

	m, _, err := c.getJSON(ctx, href)
	if err != nil {
		return nil, ""
	}
	obj, _, err := ParseObject(m)
	if err != nil {
		return nil, ""
	}
	reg, ok := obj.(*Domain)
	if !ok {
		return nil, ""
	}
	return reg, href
}
