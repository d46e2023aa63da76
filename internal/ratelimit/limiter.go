// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// RateLimiter defines the interface for the inter-request delay gate.
//
// Every outbound request of a run passes through one RateLimiter so that the
// configured delay is enforced between consecutive requests.
type RateLimiter interface {
	// Wait blocks until a request for the given URL can proceed.
	// If the context is cancelled before the delay elapses, an error is returned.
	Wait(ctx context.Context, urlStr string) error

	// Allow checks if a request for the given URL can proceed immediately
	// without blocking. Returns true if allowed, false otherwise.
	Allow(urlStr string) bool

	// Delay returns the minimum interval currently enforced between requests.
	Delay() time.Duration
}

// DelayLimiter spaces requests at least Delay apart. It is a token bucket with
// a burst of one: the first request proceeds immediately and every later one
// waits until the delay has elapsed since the previous request.
type DelayLimiter struct {
	limiter *rate.Limiter
	delay   time.Duration
	mu      sync.RWMutex
}

// NewDelayLimiter creates a limiter enforcing delay between requests.
// A zero or negative delay disables waiting.
func NewDelayLimiter(delay time.Duration) *DelayLimiter {
	if delay < 0 {
		delay = 0
	}
	return &DelayLimiter{
		limiter: rate.NewLimiter(limitFor(delay), 1),
		delay:   delay,
	}
}

// Wait blocks until the configured delay has elapsed since the previous request
func (dl *DelayLimiter) Wait(ctx context.Context, urlStr string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	if err := dl.limiter.Wait(ctx); err != nil {
		return err
	}
	if waited := time.Since(start); waited > time.Millisecond {
		log.Debug().Str("url", urlStr).Dur("waited", waited).Msg("Delay gate released")
	}
	return nil
}

// Allow checks if a request can proceed immediately without blocking
func (dl *DelayLimiter) Allow(urlStr string) bool {
	return dl.limiter.Allow()
}

// Delay returns the enforced interval
func (dl *DelayLimiter) Delay() time.Duration {
	dl.mu.RLock()
	defer dl.mu.RUnlock()
	return dl.delay
}

// SetDelay updates the enforced interval, e.g. after robots.txt declared a crawl-delay
func (dl *DelayLimiter) SetDelay(delay time.Duration) {
	if delay < 0 {
		delay = 0
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()

	dl.delay = delay
	dl.limiter.SetLimit(limitFor(delay))
}

// limitFor converts an interval into a token refill rate
func limitFor(delay time.Duration) rate.Limit {
	if delay <= 0 {
		return rate.Inf
	}
	return rate.Every(delay)
}
