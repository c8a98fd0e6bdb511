// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings holds everything the service reads from its environment.
// Defaults match the public catalog deployment so a bare start works.
type Settings struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string

	// SiteURL is the catalog site root serving the embedded-JSON pages.
	SiteURL string

	// SearchURL is the full search API URL minus the term parameter.
	SearchURL string

	// AuthURL is the root of the anonymous-session token API.
	AuthURL string

	// LivePageURL is the channel overview page used for the live listing.
	LivePageURL string

	// CatalogTTL is how long a cached show or program stays fresh.
	CatalogTTL time.Duration

	// LiveTTL is how long the live channel listing stays fresh.
	LiveTTL time.Duration

	// CacheSize bounds the number of distinct shows/programs retained.
	CacheSize int

	// PrewarmIDs are catalog identifiers refreshed at startup.
	PrewarmIDs []string

	// RateLimitPerMinute caps requests per client IP. Zero disables it.
	RateLimitPerMinute int
}

// Load reads settings from the environment, falling back to defaults.
func Load() *Settings {
	return &Settings{
		ListenAddr:         envString("DRTVRSS_LISTEN_ADDR", ":8080"),
		SiteURL:            envString("DRTVRSS_SITE_URL", "https://www.dr.dk"),
		SearchURL:          envString("DRTVRSS_SEARCH_URL", "https://prod95.dr-massive.com/api/search?device=web_browser&ff=idp%2Cldp%2Crpt&group=true&lang=da&segments=drtv%2Coptedout"),
		AuthURL:            envString("DRTVRSS_AUTH_URL", "https://isl.dr-massive.com"),
		LivePageURL:        envString("DRTVRSS_LIVE_PAGE_URL", "https://www.dr.dk/drtv/kanal/dr1_20875"),
		CatalogTTL:         envDuration("DRTVRSS_CATALOG_TTL", time.Hour),
		LiveTTL:            envDuration("DRTVRSS_LIVE_TTL", 24*time.Hour),
		CacheSize:          envInt("DRTVRSS_CACHE_SIZE", 512),
		PrewarmIDs:         envList("DRTVRSS_PREWARM"),
		RateLimitPerMinute: envInt("DRTVRSS_RATE_LIMIT_PER_MINUTE", 120),
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	// Accept either a Go duration ("1h30m") or bare seconds ("3600").
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func envList(key string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
