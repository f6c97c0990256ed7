package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule limits one method+path. Paths ending in "/" match by prefix.
type Rule struct {
	Method string
	Path   string
	// Limit is requests per Window; 0 means unlimited
	Limit  int
	Window time.Duration
	// Burst defaults to Limit when 0
	Burst int
	// Group makes rules with the same value draw from one bucket per client
	Group string
}

// Config holds rate limiting configuration
type Config struct {
	Enabled       bool
	DefaultLimit  int
	DefaultWindow time.Duration
	// IdleTTL is how long an unused bucket is kept before Sweep drops it
	IdleTTL   time.Duration
	Allowlist map[string]bool
	Denylist  map[string]bool
	Rules     []Rule
}

// buildGroup is shared by every endpoint that runs a profile build
const buildGroup = "profile-build"

// DefaultRules limits profile builds, which each cost a model call. The plain
// and streaming build endpoints share one budget. Health checks are never limited.
func DefaultRules() []Rule {
	return []Rule{
		{Method: "GET", Path: "/health", Limit: 0},
		{Method: "POST", Path: "/profile/build", Limit: 30, Window: time.Hour, Burst: 5, Group: buildGroup},
		{Method: "POST", Path: "/profile/build/stream", Limit: 30, Window: time.Hour, Burst: 5, Group: buildGroup},
	}
}

// bucketKey names the bucket a request draws from
func (r Rule) bucketKey(clientID, method, path string) string {
	if r.Group != "" {
		return clientID + " group:" + r.Group
	}
	return clientID + " " + method + " " + path
}

// LoadConfig reads rate limiting settings from the environment
func LoadConfig() *Config {
	if !envBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:       true,
		DefaultLimit:  envInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow: envDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		IdleTTL:       envDuration("RATE_LIMIT_IDLE_TTL", time.Hour),
		Allowlist:     parseIPList(os.Getenv("RATE_LIMIT_ALLOWLIST")),
		Denylist:      parseIPList(os.Getenv("RATE_LIMIT_DENYLIST")),
		Rules:         DefaultRules(),
	}
}

// match returns the rule for method+path: exact paths first, then prefixes
func (c *Config) match(method, path string) (Rule, bool) {
	for _, r := range c.Rules {
		if r.Method == method && r.Path == path {
			return r, true
		}
	}
	for _, r := range c.Rules {
		if r.Method == method && strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			return r, true
		}
	}
	return Rule{}, false
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func envBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}

// parseIPList parses a comma-separated list of IP addresses
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
