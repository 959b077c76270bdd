package notification

import (
	"sync"
	"time"
)

// TokenBucketRateLimiter implements token bucket rate limiting
type TokenBucketRateLimiter struct {
	capacity   int
	tokens     int
	refillRate time.Duration
	lastRefill time.Time
	now        func() time.Time
	mu         sync.Mutex
}

// NewTokenBucketRateLimiter creates a limiter holding capacity tokens that
// regains one token every refillRate.
func NewTokenBucketRateLimiter(capacity int, refillRate time.Duration) *TokenBucketRateLimiter {
	return newTokenBucket(capacity, refillRate, time.Now)
}

// NewWindowRateLimiter allows at most maxMessages per window on average.
func NewWindowRateLimiter(window time.Duration, maxMessages int) *TokenBucketRateLimiter {
	refill := window
	if maxMessages > 0 {
		refill = window / time.Duration(maxMessages)
	}
	return NewTokenBucketRateLimiter(maxMessages, refill)
}

func newTokenBucket(capacity int, refillRate time.Duration, now func() time.Time) *TokenBucketRateLimiter {
	if refillRate <= 0 {
		refillRate = time.Minute
	}
	return &TokenBucketRateLimiter{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: now(),
		now:        now,
	}
}

// Allow checks if a request is allowed under the rate limit
func (tb *TokenBucketRateLimiter) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	if tokensToAdd := int(now.Sub(tb.lastRefill) / tb.refillRate); tokensToAdd > 0 {
		tb.tokens = min(tb.capacity, tb.tokens+tokensToAdd)
		// Keep the fractional remainder so slow callers are not penalized.
		tb.lastRefill = tb.lastRefill.Add(time.Duration(tokensToAdd) * tb.refillRate)
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Reset resets the rate limiter to full capacity
func (tb *TokenBucketRateLimiter) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = tb.now()
}
