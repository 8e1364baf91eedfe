package rdapclient

// contactEmailByRole walks an entity tree (depth-bounded per spec.md
// §9 "Cyclic data" — malicious or malformed responses are guarded
// against even though legitimate entity nesting is always a tree) and
// returns the first vCard email belonging to an entity whose roles
// include want. Used for the abuseContact/administrative/technical
// fields of QueryResult (spec.md §4.5 "IP/ASN enrichment").
func contactEmailByRole(entities []Entity, want string, maxDepth int) string {
	return contactEmailByRoleDepth(entities, want, maxDepth)
}

func contactEmailByRoleDepth(entities []Entity, want string, depth int) string {
	if depth <= 0 {
		return ""
	}
	for _, e := range entities {
		if hasRole(e.Roles, want) {
			if email := entityEmail(&e); email != "" {
				return email
			}
		}
	}
	// Entities rarely nest more than a level or two in practice; the
	// breadth-first-by-level scan above is checked before recursing so
	// a direct match always wins over a deeper one.
	for _, e := range entities {
		if email := contactEmailByRoleDepth(e.Entities, want, depth-1); email != "" {
			return email
		}
	}
	return ""
}

func entityEmail(e *Entity) string {
	if e == nil || e.VCardArray == nil {
		return ""
	}
	vc, err := ParseVCard(e.VCardArray)
	if err != nil {
		return ""
	}
	return vc.Email()
}

// enrichContacts populates the abuse/administrative/technical contact
// fields of a QueryResult by scanning the given entity list. TLD
// (registry) responses carry administrative/technical roles; most
// other object classes only ever populate abuse.
func (c *Client) enrichContacts(r *QueryResult, entities []Entity) {
	r.AbuseContact = contactEmailByRole(entities, "abuse", c.enrichDepth)
	r.AdminContact = contactEmailByRole(entities, "administrative", c.enrichDepth)
	r.TechContact = contactEmailByRole(entities, "technical", c.enrichDepth)
}

// entitiesOf extracts the top-level entities[] from any decoded
// Object, returning nil for variants that don't carry any (Help,
// ErrorResponse, search envelopes, Unknown). For an Entity, the entity
// itself comes first, followed by its entities[].
func entitiesOf(obj Object) []Entity {
	switch v := obj.(type) {
	case *Domain:
		return v.Entities
	case *Entity:
		return append([]Entity{*v}, v.Entities...)
	case *IPNetwork:
		return v.Entities
	case *Autnum:
		return v.Entities
	case *Nameserver:
		return v.Entities
	default:
		return nil
	}
}
