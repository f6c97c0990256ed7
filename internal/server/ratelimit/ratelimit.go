// Package ratelimit provides per-client token bucket rate limiting for the HTTP API.
package ratelimit

import (
	"sync"
	"time"
)

// bucket is a token bucket. Callers hold Limiter.mu.
type bucket struct {
	capacity   float64
	refillRate float64 // tokens per second
	tokens     float64
	updated    time.Time
}

func (b *bucket) refill(now time.Time) {
	b.tokens = min(b.capacity, b.tokens+now.Sub(b.updated).Seconds()*b.refillRate)
	b.updated = now
}

// untilFull is how long the bucket needs to refill completely
func (b *bucket) untilFull() time.Duration {
	if b.tokens >= b.capacity {
		return 0
	}
	return time.Duration((b.capacity - b.tokens) / b.refillRate * float64(time.Second))
}

// untilNext is how long until one token is available
func (b *bucket) untilNext() time.Duration {
	if b.tokens >= 1 {
		return 0
	}
	return time.Duration((1 - b.tokens) / b.refillRate * float64(time.Second))
}

// Info describes the limit applied to one request
type Info struct {
	Allowed    bool
	Limit      int // 0 when the request was not limited
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter tracks one bucket per client, method and path
type Limiter struct {
	config  *Config
	now     func() time.Time
	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewLimiter creates a limiter. A nil config uses LoadConfig.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = LoadConfig()
	}
	return &Limiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Allow consumes a token for the client if one is available
func (l *Limiter) Allow(clientID, method, path string) (bool, Info) {
	switch {
	case !l.config.Enabled, l.config.Allowlist[clientID]:
		return true, Info{Allowed: true}
	case l.config.Denylist[clientID]:
		return false, Info{}
	}

	rule, ok := l.config.match(method, path)
	if !ok {
		rule = Rule{Limit: l.config.DefaultLimit, Window: l.config.DefaultWindow}
	}
	if rule.Limit <= 0 || rule.Window <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	key := rule.bucketKey(clientID, method, path)

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		capacity := rule.Burst
		if capacity <= 0 {
			capacity = rule.Limit
		}
		b = &bucket{
			capacity:   float64(capacity),
			refillRate: float64(rule.Limit) / rule.Window.Seconds(),
			tokens:     float64(capacity),
			updated:    now,
		}
		l.buckets[key] = b
	}
	b.refill(now)

	info := Info{Limit: rule.Limit}
	if b.tokens >= 1 {
		b.tokens--
		info.Allowed = true
	} else {
		info.RetryAfter = b.untilNext()
	}
	info.Remaining = int(b.tokens)
	info.ResetTime = now.Add(b.untilFull())
	return info.Allowed, info
}

// Sweep drops buckets idle for longer than the configured TTL and reports how many it removed
func (l *Limiter) Sweep() int {
	if l.config.IdleTTL <= 0 {
		return 0
	}
	cutoff := l.now().Add(-l.config.IdleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		if b.updated.Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Run sweeps idle buckets every interval until stop is closed
func (l *Limiter) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Sweep()
		case <-stop:
			return
		}
	}
}
