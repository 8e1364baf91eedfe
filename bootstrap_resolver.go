package rdapclient

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"

	"github.com/zmap/go-iptree/iptree"
)

type bootstrapServices struct {
	Services [][]any `json:"services"`
}

// resolveBaseFromBootstrapDNS loads dns.json and returns the base for a
// tld (lowercase, no dot). A configured TLDOverride always wins and
// never touches the network. When the TLD is absent from both the
// override map and a successfully fetched bootstrap, the caller gets
// ErrNoAuthoritativeServer; a bootstrap that cannot be fetched at all
// (network and disk cache both unavailable) yields
// ErrBootstrapUnavailable instead.
func (c *Client) resolveBaseFromBootstrapDNS(ctx context.Context, tld string) (string, error) {
	if tld == "" {
		return "", &Error{Kind: KindInvalidQuery, Message: "empty TLD"}
	}
	tld = strings.ToLower(strings.TrimPrefix(tld, "."))

	if base, ok := c.tldOverrides[tld]; ok {
		return strings.TrimRight(base, "/"), nil
	}
	if base, ok := c.rdapBaseCache.Get(tld); ok {
		return base, nil
	}
	if err := c.fetchBootstrap(ctx, false); err != nil {
		if base, ok, cacheErr := c.bootstrapCache.loadDNS(); cacheErr == nil && ok {
			c.loadDNSServices(base)
			if base, ok := c.rdapBaseCache.Get(tld); ok {
				return base, nil
			}
		}
		return "", &Error{Kind: KindBootstrapUnavailable, Message: "dns bootstrap unavailable", Err: err}
	}
	if base, ok := c.rdapBaseCache.Get(tld); ok {
		return base, nil
	}
	return "", &Error{Kind: KindNoAuthoritativeServer, Message: fmt.Sprintf("no RDAP base for TLD %q", tld)}
}

// fetchBootstrapGeneric fetches a bootstrap json (asn/ipv4/ipv6) and
// parses its services, relying on respCache for conditional requests
// unless force is true, in which case the conditional validators are
// skipped and a fresh copy is always requested.
func (c *Client) fetchBootstrapGeneric(ctx context.Context, url string, force bool) (*bootstrapServices, error) {
	var metaSrc func(string) (cachedMeta, bool)
	if !force {
		metaSrc = c.respCache.Meta
	}
	body, hdr, err := c.getRaw(ctx, url, metaSrc)
	if err != nil {
		return nil, err
	}
	if body == nil {
		// 304 with no cached body: caller already has nothing usable.
		return nil, &Error{Kind: KindBootstrapUnavailable, Message: "bootstrap 304 with no cached body"}
	}
	bs, perr := parseBootstrapBody(body)
	if perr != nil {
		return nil, &Error{Kind: KindDecodeError, Message: "parse bootstrap", Err: perr}
	}
	c.respCache.StoreMeta(url, hdr)
	return bs, nil
}

// refreshASNBootstrap forces a re-fetch of the IANA asn.json registry,
// persisting a successful fetch to the on-disk cache the same way
// fetchBootstrap does for the DNS registry.
func (c *Client) refreshASNBootstrap(ctx context.Context) error {
	bs, err := c.fetchBootstrapGeneric(ctx, c.asnBootstrapURL, true)
	if err != nil {
		return err
	}
	if c.bootstrapCache != nil {
		_ = c.bootstrapCache.storeASN(bs)
	}
	return nil
}

// resolveBaseFromBootstrapASN resolves an RDAP base for a numeric ASN
// using IANA asn.json. It supports single ASNs and ASN ranges "X-Y".
// Unlike IP matching, ASN ranges in the bootstrap registry do not
// nest, so a linear scan is both correct and sufficient.
func (c *Client) resolveBaseFromBootstrapASN(ctx context.Context, asn uint64) (string, error) {
	key := fmt.Sprintf("asn:%d", asn)
	if base, ok := c.rdapBaseCache.Get(key); ok {
		return base, nil
	}

	bs, err := c.fetchBootstrapGeneric(ctx, c.asnBootstrapURL, false)
	if err != nil {
		cached, ok, cacheErr := c.bootstrapCache.loadASN()
		if cacheErr != nil || !ok {
			return "", &Error{Kind: KindBootstrapUnavailable, Message: "asn bootstrap unavailable", Err: err}
		}
		bs = cached
	} else if c.bootstrapCache != nil {
		_ = c.bootstrapCache.storeASN(bs)
	}

	for _, svc := range bs.Services {
		if len(svc) != 2 {
			continue
		}
		ranges := toStringSlice(svc[0])
		urls := toStringSlice(svc[1])
		if len(urls) == 0 {
			continue
		}
		base := strings.TrimRight(urls[0], "/")
		for _, r := range ranges {
			lo, hi, ok := parseASNRange(r)
			if !ok {
				continue
			}
			if asn >= lo && asn <= hi {
				c.rdapBaseCache.Set(key, base)
				return base, nil
			}
		}
	}
	return "", &Error{Kind: KindNoAuthoritativeServer, Message: fmt.Sprintf("no RDAP base for AS%d", asn)}
}

func parseASNRange(s string) (uint64, uint64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, false
	}
	if i := strings.IndexByte(s, '-'); i >= 0 {
		lo, err1 := strconv.ParseUint(strings.TrimSpace(s[:i]), 10, 64)
		hi, err2 := strconv.ParseUint(strings.TrimSpace(s[i+1:]), 10, 64)
		if err1 != nil || err2 != nil || hi < lo {
			return 0, 0, false
		}
		return lo, hi, true
	}
	x, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return x, x, true
}

// ipTreeSet holds the two radix trees (v4/v6) built from one bootstrap
// fetch, giving true longest-prefix-match lookups via go-iptree rather
// than a linear CIDR scan.
type ipTreeSet struct {
	v4 *iptree.IPTree
	v6 *iptree.IPTree
}

func buildIPTree(bs *bootstrapServices, want6 bool) *iptree.IPTree {
	t := iptree.New()
	for _, svc := range bs.Services {
		if len(svc) != 2 {
			continue
		}
		cidrs := toStringSlice(svc[0])
		urls := toStringSlice(svc[1])
		if len(urls) == 0 {
			continue
		}
		base := strings.TrimRight(urls[0], "/")
		for _, raw := range cidrs {
			raw = strings.TrimSpace(raw)
			pfx, err := netip.ParsePrefix(raw)
			if err != nil {
				continue
			}
			if pfx.Addr().Is6() != want6 {
				continue
			}
			_ = t.AddByString(raw, base)
		}
	}
	return t
}

// resolveBaseFromBootstrapIP resolves a base for a single IP or CIDR
// using the ipv4/ipv6 bootstrap, matched via longest-prefix lookup in
// a radix tree rebuilt each time the bootstrap is refetched.
func (c *Client) resolveBaseFromBootstrapIP(ctx context.Context, ipOrCIDR string) (string, error) {
	var addr netip.Addr
	if p, err := netip.ParsePrefix(ipOrCIDR); err == nil {
		addr = p.Addr()
	} else {
		a, err := netip.ParseAddr(ipOrCIDR)
		if err != nil {
			return "", &Error{Kind: KindInvalidQuery, Message: "not an IP or CIDR", Err: err}
		}
		addr = a
	}
	is6 := addr.Is6() && !addr.Is4In6()

	c.ipTreeMu.Lock()
	tree := c.ipTrees
	c.ipTreeMu.Unlock()

	if tree == nil {
		if err := c.refreshIPTrees(ctx); err != nil {
			return "", &Error{Kind: KindBootstrapUnavailable, Message: "ip bootstrap unavailable", Err: err}
		}
		c.ipTreeMu.Lock()
		tree = c.ipTrees
		c.ipTreeMu.Unlock()
	}

	t := tree.v4
	if is6 {
		t = tree.v6
	}
	if t == nil {
		return "", &Error{Kind: KindBootstrapUnavailable, Message: "no ip bootstrap tree loaded"}
	}

	val, ok, err := t.Get(net.IP(addr.AsSlice()))
	if err != nil || !ok {
		return "", &Error{Kind: KindNoAuthoritativeServer, Message: fmt.Sprintf("no RDAP base for %s", ipOrCIDR)}
	}
	base, _ := val.(string)
	return base, nil
}

func (c *Client) refreshIPTrees(ctx context.Context) error {
	return c.refreshIPTreesForce(ctx, false)
}

func (c *Client) refreshIPTreesForce(ctx context.Context, force bool) error {
	bs4, err4 := c.fetchBootstrapGeneric(ctx, c.ipv4BootstrapURL, force)
	if err4 != nil {
		if cached, ok, cacheErr := c.bootstrapCache.loadIPv4(); cacheErr == nil && ok {
			bs4, err4 = cached, nil
		}
	} else if c.bootstrapCache != nil {
		_ = c.bootstrapCache.storeIPv4(bs4)
	}

	bs6, err6 := c.fetchBootstrapGeneric(ctx, c.ipv6BootstrapURL, force)
	if err6 != nil {
		if cached, ok, cacheErr := c.bootstrapCache.loadIPv6(); cacheErr == nil && ok {
			bs6, err6 = cached, nil
		}
	} else if c.bootstrapCache != nil {
		_ = c.bootstrapCache.storeIPv6(bs6)
	}

	if err4 != nil && err6 != nil {
		return err4
	}
	set := &ipTreeSet{}
	if bs4 != nil {
		set.v4 = buildIPTree(bs4, false)
	}
	if bs6 != nil {
		set.v6 = buildIPTree(bs6, true)
	}
	c.ipTreeMu.Lock()
	c.ipTrees = set
	c.ipTreeMu.Unlock()
	return nil
}
