package policy

import (
	"sync"
	"time"
)

// TokenBucket is a basic token bucket rate limiter. A nil bucket allows
// everything, so callers can leave rate limiting unconfigured.
type TokenBucket struct {
	mu           sync.Mutex
	capacity     int
	tokens       float64
	refillAmount float64
	refillEvery  time.Duration
	lastRefill   time.Time
}

// NewTokenBucket constructs a token bucket. Invalid parameters yield a nil
// bucket.
func NewTokenBucket(capacity, refillAmount int, refillEvery time.Duration) *TokenBucket {
	if capacity <= 0 || refillAmount <= 0 || refillEvery <= 0 {
		return nil
	}
	return &TokenBucket{
		capacity:     capacity,
		tokens:       float64(capacity),
		refillAmount: float64(refillAmount),
		refillEvery:  refillEvery,
		lastRefill:   time.Now(),
	}
}

// Allow consumes a single token if one is available.
func (b *TokenBucket) Allow(now time.Time) bool {
	if b == nil {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill(now)
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (b *TokenBucket) refill(now time.Time) {
	if now.Before(b.lastRefill) {
		b.lastRefill = now
		return
	}

	elapsed := now.Sub(b.lastRefill)
	if elapsed < b.refillEvery {
		return
	}

	units := float64(elapsed) / float64(b.refillEvery)
	b.tokens += units * b.refillAmount
	if b.tokens > float64(b.capacity) {
		b.tokens = float64(b.capacity)
	}
	b.lastRefill = now
}
