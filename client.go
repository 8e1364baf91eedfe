package rdapclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Doer is the minimal http.Client interface we depend on (handy for tests/mocks).
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is a concurrency-safe RDAP client with bootstrap resolution,
// referral chasing and contact enrichment.
type Client struct {
	// HTTP / defaults
	hc          Doer
	ua          string
	baseTimeout time.Duration
	headerExtra http.Header

	// sources
	bootstrapURL      string // IANA DNS bootstrap
	ipv4BootstrapURL  string
	ipv6BootstrapURL  string
	asnBootstrapURL   string
	tldOverrides      map[string]string // lowercase tld -> RDAP base, bypasses bootstrap
	overrideServer    string            // explicit server forced for every query, if set

	// caches
	rdapBaseCache  *ttlCache[string] // tld/asn/ip key -> base URL
	respCache      *respCache        // url -> cachedResponse
	bootstrapCache *bootstrapDiskCache

	ipTreeMu sync.Mutex
	ipTrees  *ipTreeSet

	// query support
	tlds *TLDSet

	// behavior
	maxRetries     int
	backoff        Backoff
	now            func() time.Time
	followReferral bool
	enrichDepth    int
}

// New returns a ready Client with good defaults. Pass a *Config
// (loaded via Load) with WithConfig to override the built-in
// bootstrap URLs, TLD overrides and cache directory.
func New(opts ...Option) *Client {
	c := &Client{
		hc:               defaultHTTPClient(),
		ua:               "rdapclient/0.1 (+https://example.invalid)",
		baseTimeout:      10 * time.Second,
		bootstrapURL:     "https://data.iana.org/rdap/dns.json",
		ipv4BootstrapURL: "https://data.iana.org/rdap/ipv4.json",
		ipv6BootstrapURL: "https://data.iana.org/rdap/ipv6.json",
		asnBootstrapURL:  "https://data.iana.org/rdap/asn.json",
		headerExtra:      make(http.Header),
		tldOverrides:     make(map[string]string),

		rdapBaseCache: newTTLCache[string](6*time.Hour, 256),
		respCache:     newRespCache(512, 10*time.Minute),

		tlds: BuiltinTLDSet(),

		maxRetries:     2,
		backoff:        ExponentialBackoff(200*time.Millisecond, 2.0, 2*time.Second),
		now:            time.Now,
		followReferral: true,
		enrichDepth:    16,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// maxRedirectHops caps the number of redirects defaultHTTPClient will
// follow for a single request.
const maxRedirectHops = 10

func defaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout:       15 * time.Second,
		CheckRedirect: checkRedirect,
	}
}

// checkRedirect enforces the hop cap and origin policy a bare
// http.Client leaves wide open: same origin (scheme, host and port) as
// the original request, or a response that already identifies itself
// as RDAP JSON (a redirect
// to a different authoritative server that still answers in the RDAP
// media type is the one legitimate cross-origin case, e.g. a registry
// redirecting straight to a registrar's RDAP base).
func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirectHops {
		return fmt.Errorf("stopped after %d redirects", maxRedirectHops)
	}
	origin := via[0].URL
	if strings.EqualFold(req.URL.Scheme, origin.Scheme) && strings.EqualFold(req.URL.Host, origin.Host) {
		return nil
	}
	if req.Response != nil && looksLikeRDAPContentType(req.Response.Header.Get("Content-Type")) {
		return nil
	}
	return fmt.Errorf("refusing cross-origin redirect from %s to %s", origin.Host, req.URL.Host)
}

func looksLikeRDAPContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "application/rdap+json")
}

// RefreshBootstrap forces a re-fetch of all four IANA bootstrap
// registries (DNS, IPv4, IPv6, ASN) right now.
func (c *Client) RefreshBootstrap(ctx context.Context) error {
	if err := c.fetchBootstrap(ctx, true); err != nil {
		return err
	}
	if err := c.refreshIPTreesForce(ctx, true); err != nil {
		return err
	}
	return c.refreshASNBootstrap(ctx)
}
