package rdapclient

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed config/config.json
var builtinConfigJSON []byte

// BootstrapURLs names the four IANA registries the resolver consults.
type BootstrapURLs struct {
	DNS  string `json:"dns,omitempty"`
	IPv4 string `json:"ipv4,omitempty"`
	IPv6 string `json:"ipv6,omitempty"`
	ASN  string `json:"asn,omitempty"`
}

// Config is the merged result of the layered configuration described
// in spec.md §4.6: built-in defaults, then /etc/rdap/*.json, then
// ~/.config/rdap/*.json, then any *.local.json in the current
// directory, each layer overriding fields the previous one set.
type Config struct {
	BootstrapURLs  BootstrapURLs     `json:"bootstrapUrls,omitempty"`
	TLDOverrides   map[string]string `json:"tldOverrides,omitempty"`
	CacheDir       string            `json:"cacheDir,omitempty"`
	TimeoutSeconds int               `json:"timeoutSeconds,omitempty"`
}

func (c *Config) merge(o Config) {
	if o.BootstrapURLs.DNS != "" {
		c.BootstrapURLs.DNS = o.BootstrapURLs.DNS
	}
	if o.BootstrapURLs.IPv4 != "" {
		c.BootstrapURLs.IPv4 = o.BootstrapURLs.IPv4
	}
	if o.BootstrapURLs.IPv6 != "" {
		c.BootstrapURLs.IPv6 = o.BootstrapURLs.IPv6
	}
	if o.BootstrapURLs.ASN != "" {
		c.BootstrapURLs.ASN = o.BootstrapURLs.ASN
	}
	for tld, base := range o.TLDOverrides {
		if c.TLDOverrides == nil {
			c.TLDOverrides = make(map[string]string)
		}
		c.TLDOverrides[tld] = base
	}
	if o.CacheDir != "" {
		c.CacheDir = o.CacheDir
	}
	if o.TimeoutSeconds > 0 {
		c.TimeoutSeconds = o.TimeoutSeconds
	}
}

// Load builds a Config by layering the built-in defaults with
// whatever override files are present on this host. Missing layers
// are not errors; a layer with malformed JSON is reported but does
// not prevent the layers before it from applying.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := json.Unmarshal(builtinConfigJSON, cfg); err != nil {
		return nil, fmt.Errorf("parse built-in config: %w", err)
	}

	var loadErr error
	applyLayer := func(path string) {
		b, err := os.ReadFile(path)
		if err != nil {
			return
		}
		var layer Config
		if err := json.Unmarshal(b, &layer); err != nil {
			loadErr = fmt.Errorf("parse %s: %w", path, err)
			return
		}
		cfg.merge(layer)
	}
	applyGlobLayer := func(pattern string) {
		matches, _ := filepath.Glob(pattern)
		for _, m := range matches {
			applyLayer(m)
		}
	}

	applyGlobLayer("/etc/rdap/*.json")

	if home, err := os.UserHomeDir(); err == nil {
		applyGlobLayer(filepath.Join(home, ".config", "rdap", "*.json"))
	}

	applyGlobLayer("*.local.json")

	return cfg, loadErr
}
