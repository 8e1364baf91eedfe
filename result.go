package rdapclient

// QueryResult is the composite outcome of Client.Query: spec.md §3's
// RdapQueryResult, carrying the registry-level object that answered
// the query plus, for domain queries, the registrar-level object
// reached by following one referral hop (spec.md §4.5). The contact
// fields are populated by the enrichment pass over the registry
// object's entities[]; for a domain with a registrar object, the
// registrar's entities[] are scanned first.
type QueryResult struct {
	Registry    Object
	RegistryURL string

	Registrar    Object // nil unless the query was a Domain and a referral was followed successfully
	RegistrarURL string

	AbuseContact string
	AdminContact string
	TechContact  string
}
