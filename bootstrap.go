package rdapclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

func (c *Client) rdapBaseForDomain(ctx context.Context, fqdn string) (string, error) {
	return c.rdapBaseForTLD(ctx, lastLabel(fqdn))
}

func (c *Client) rdapBaseForTLD(ctx context.Context, tld string) (string, error) {
	return c.resolveBaseFromBootstrapDNS(ctx, tld)
}

// parseBootstrapBody decodes a raw IANA bootstrap registry body.
func parseBootstrapBody(body []byte) (*bootstrapServices, error) {
	var bs bootstrapServices
	if err := json.Unmarshal(body, &bs); err != nil {
		return nil, fmt.Errorf("parse bootstrap: %w", err)
	}
	return &bs, nil
}

// loadDNSServices populates rdapBaseCache from an already-parsed dns
// bootstrap body, used both by fetchBootstrap and the on-disk fallback
// path in resolveBaseFromBootstrapDNS.
func (c *Client) loadDNSServices(bs *bootstrapServices) {
	for _, svc := range bs.Services {
		if len(svc) != 2 {
			continue
		}
		tlds := toStringSlice(svc[0])
		urls := toStringSlice(svc[1])
		if len(urls) == 0 {
			continue
		}
		base := strings.TrimRight(urls[0], "/")
		for _, tl := range tlds {
			c.rdapBaseCache.Set(strings.ToLower(tl), base)
		}
	}
}

// fetchBootstrap refreshes the DNS bootstrap registry, persisting a
// successful fetch to the on-disk cache so a later process can survive
// a network outage (spec: BootstrapUnavailable only when both the
// network and the disk cache are unavailable).
func (c *Client) fetchBootstrap(ctx context.Context, force bool) error {
	var metaSrc func(string) (cachedMeta, bool)
	if !force {
		metaSrc = c.respCache.Meta
	}
	body, hdr, err := c.getRaw(ctx, c.bootstrapURL, metaSrc)
	if err != nil {
		return err
	}
	if body == nil {
		// 304 Not Modified: nothing new, cache already holds current data.
		return nil
	}
	bs, err := parseBootstrapBody(body)
	if err != nil {
		return err
	}
	c.loadDNSServices(bs)
	c.respCache.StoreMeta(c.bootstrapURL, hdr)
	if c.bootstrapCache != nil {
		c.bootstrapCache.storeDNS(bs)
	}
	return nil
}
