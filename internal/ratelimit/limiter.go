// Package ratelimit paces page requests per catalog host so a harvest
// with many concurrent range workers does not hammer one site.
package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter hands out request tokens per hostname. Every host gets its
// own token bucket with the shared rate and burst.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// Config holds the shared per-host pacing knobs. RPS <= 0 disables
// pacing entirely.
type Config struct {
	RPS   float64
	Burst int
}

// New creates a Limiter.
func New(cfg Config) *Limiter {
	limit := rate.Limit(cfg.RPS)
	if cfg.RPS <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   limit,
		burst:   burst,
	}
}

// Wait blocks until the target's host may be requested again, or until
// the context is done.
func (l *Limiter) Wait(ctx context.Context, target string) error {
	if l == nil {
		return nil
	}
	host := "unknown"
	if u, err := url.Parse(target); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}

	l.mu.Lock()
	bucket, ok := l.buckets[host]
	if !ok {
		bucket = rate.NewLimiter(l.limit, l.burst)
		l.buckets[host] = bucket
	}
	l.mu.Unlock()

	if err := bucket.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", host, err)
	}
	return nil
}
