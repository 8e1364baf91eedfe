package rdapclient

import "time"

type Option func(*Client)

func WithHTTPDoer(d Doer) Option         { return func(c *Client) { c.hc = d } }
func WithUserAgent(ua string) Option     { return func(c *Client) { c.ua = ua } }
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.baseTimeout = d } }
func WithBootstrapURL(u string) Option   { return func(c *Client) { c.bootstrapURL = u } }
func WithIPv4BootstrapURL(u string) Option { return func(c *Client) { c.ipv4BootstrapURL = u } }
func WithIPv6BootstrapURL(u string) Option { return func(c *Client) { c.ipv6BootstrapURL = u } }
func WithASNBootstrapURL(u string) Option  { return func(c *Client) { c.asnBootstrapURL = u } }
func WithMaxRetries(n int) Option          { return func(c *Client) { c.maxRetries = n } }
func WithBackoff(b Backoff) Option         { return func(c *Client) { c.backoff = b } }
func WithHeader(k, v string) Option        { return func(c *Client) { c.headerExtra.Add(k, v) } }

// WithTLDSet replaces the built-in TLD set used by the query
// classifier, e.g. with one embedding a private or newer registry
// snapshot.
func WithTLDSet(t *TLDSet) Option { return func(c *Client) { c.tlds = t } }

// WithOverrideServer forces every query to the given RDAP base,
// bypassing bootstrap resolution entirely.
func WithOverrideServer(base string) Option {
	return func(c *Client) { c.overrideServer = base }
}

// WithFollowReferral toggles registrar referral chasing (on by default).
func WithFollowReferral(follow bool) Option {
	return func(c *Client) { c.followReferral = follow }
}

// WithBootstrapCacheDir enables the on-disk bootstrap fallback cache.
func WithBootstrapCacheDir(dir string) Option {
	return func(c *Client) { c.bootstrapCache = newBootstrapDiskCache(dir) }
}

// WithConfig applies a loaded Config wholesale: bootstrap URLs, TLD
// overrides, cache directory and timeout.
func WithConfig(cfg *Config) Option {
	return func(c *Client) {
		if cfg == nil {
			return
		}
		if cfg.BootstrapURLs.DNS != "" {
			c.bootstrapURL = cfg.BootstrapURLs.DNS
		}
		if cfg.BootstrapURLs.IPv4 != "" {
			c.ipv4BootstrapURL = cfg.BootstrapURLs.IPv4
		}
		if cfg.BootstrapURLs.IPv6 != "" {
			c.ipv6BootstrapURL = cfg.BootstrapURLs.IPv6
		}
		if cfg.BootstrapURLs.ASN != "" {
			c.asnBootstrapURL = cfg.BootstrapURLs.ASN
		}
		for tld, base := range cfg.TLDOverrides {
			c.tldOverrides[lower(tld)] = base
		}
		if cfg.CacheDir != "" {
			c.bootstrapCache = newBootstrapDiskCache(cfg.CacheDir)
		}
		if cfg.TimeoutSeconds > 0 {
			c.baseTimeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
	}
}

func WithCacheSizes(tldCap, entityCap int) Option {
	return func(c *Client) {
		if tldCap > 0 {
			c.rdapBaseCache.Resize(tldCap)
		}
		if entityCap > 0 {
			c.respCache.Resize(entityCap)
		}
	}
}
