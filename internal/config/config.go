// Package config loads client configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

// DefaultAPIURL is used when DEBTDESK_API_URL is not set.
const DefaultAPIURL = "http://localhost:3000/api/v1"

// Config carries everything the client needs at startup.
type Config struct {
	APIURL   string        // base address of the debt-tracking API
	Timeout  time.Duration // per-request timeout
	CacheTTL time.Duration // freshness window for cached queries
}

// Load reads configuration from the environment. The API address must parse
// or startup fails.
func Load() (Config, error) {
	cfg := Config{
		APIURL:   DefaultAPIURL,
		Timeout:  30 * time.Second,
		CacheTTL: 5 * time.Minute,
	}
	if v := os.Getenv("DEBTDESK_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if u, err := url.Parse(cfg.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("DEBTDESK_API_URL: invalid url %q", cfg.APIURL)
	}
	if v := os.Getenv("DEBTDESK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("DEBTDESK_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv("DEBTDESK_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("DEBTDESK_CACHE_TTL: %w", err)
		}
		cfg.CacheTTL = d
	}
	return cfg, nil
}
