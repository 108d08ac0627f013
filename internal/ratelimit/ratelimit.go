// Package ratelimit provides a keyed token-bucket rate limiter. The ingest
// pipeline uses it as its pacing policy toward the external catalog: each
// key (username) gets an independent bucket, so one user's batch never
// throttles another's.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// KeyedRateLimiter manages per-key rate limiting.
type KeyedRateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// New creates a keyed rate limiter allowing rps requests per second per key
// with the given burst.
func New(rps float64, burst int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

// Unlimited creates a limiter that never blocks. Tests use it to run the
// pipeline without real delays.
func Unlimited() *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Inf,
		burst:    1,
	}
}

// Allow reports whether a request for the key may proceed immediately.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	return krl.getLimiter(key).Allow()
}

// Wait blocks until a request for the key is allowed or the context is
// canceled.
func (krl *KeyedRateLimiter) Wait(ctx context.Context, key string) error {
	return krl.getLimiter(key).Wait(ctx)
}

// getLimiter returns the limiter for a key, creating one if needed.
func (krl *KeyedRateLimiter) getLimiter(key string) *rate.Limiter {
	krl.mu.RLock()
	limiter, ok := krl.limiters[key]
	krl.mu.RUnlock()
	if ok {
		return limiter
	}

	krl.mu.Lock()
	defer krl.mu.Unlock()

	// Another goroutine may have created it between the locks.
	if limiter, ok = krl.limiters[key]; ok {
		return limiter
	}

	limiter = rate.NewLimiter(krl.limit, krl.burst)
	krl.limiters[key] = limiter
	return limiter
}
