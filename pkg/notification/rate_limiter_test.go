package notification

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTokenBucketRateLimiter_Allow(t *testing.T) {
	type op struct {
		advance   time.Duration
		wantAllow bool
	}
	tests := []struct {
		name       string
		capacity   int
		refillRate time.Duration
		operations []op
	}{
		{
			name:       "allow up to capacity immediately",
			capacity:   3,
			refillRate: time.Hour,
			operations: []op{{0, true}, {0, true}, {0, true}, {0, false}},
		},
		{
			name:       "refill allows more operations",
			capacity:   2,
			refillRate: 100 * time.Millisecond,
			operations: []op{
				{0, true},
				{0, true},
				{0, false},
				{150 * time.Millisecond, true},
				{0, false},
				// remainder from the previous refill carries over
				{50 * time.Millisecond, true},
			},
		},
		{
			name:       "zero capacity always denies",
			capacity:   0,
			refillRate: time.Millisecond,
			operations: []op{{0, false}, {10 * time.Millisecond, false}, {time.Hour, false}},
		},
		{
			name:       "refill is capped at capacity",
			capacity:   2,
			refillRate: 50 * time.Millisecond,
			operations: []op{{0, true}, {0, true}, {time.Second, true}, {0, true}, {0, false}},
		},
		{
			name:       "negative capacity denies",
			capacity:   -5,
			refillRate: time.Second,
			operations: []op{{0, false}, {time.Minute, false}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{t: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
			limiter := newTokenBucket(tt.capacity, tt.refillRate, clock.now)

			for i, o := range tt.operations {
				clock.advance(o.advance)
				if got := limiter.Allow(); got != o.wantAllow {
					t.Errorf("operation[%d]: Allow() = %v, want %v", i, got, o.wantAllow)
				}
			}
		})
	}
}

func TestTokenBucketRateLimiter_Reset(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	limiter := newTokenBucket(1, time.Hour, clock.now)

	limiter.Allow()
	if limiter.Allow() {
		t.Fatal("Allow() = true with empty bucket")
	}
	limiter.Reset()
	if !limiter.Allow() {
		t.Error("Allow() = false after Reset")
	}
}

func TestNewWindowRateLimiter(t *testing.T) {
	limiter := NewWindowRateLimiter(time.Hour, 4)
	if limiter.refillRate != 15*time.Minute {
		t.Errorf("refillRate = %v, want 15m", limiter.refillRate)
	}
	if limiter.capacity != 4 {
		t.Errorf("capacity = %d, want 4", limiter.capacity)
	}

	zero := NewWindowRateLimiter(time.Hour, 0)
	if zero.Allow() {
		t.Error("zero-message limiter allowed a send")
	}
}

func TestTokenBucketRateLimiter_Concurrent(t *testing.T) {
	capacity := 100
	limiter := NewTokenBucketRateLimiter(capacity, time.Hour)

	allowed := make(chan bool, capacity*2)
	for i := 0; i < capacity*2; i++ {
		go func() {
			allowed <- limiter.Allow()
		}()
	}

	allowedCount := 0
	for i := 0; i < capacity*2; i++ {
		if <-allowed {
			allowedCount++
		}
	}

	if allowedCount != capacity {
		t.Errorf("Concurrent Allow() count = %d, want %d", allowedCount, capacity)
	}
}
