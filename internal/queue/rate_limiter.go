package queue

import (
	"sync"
	"time"
)

// TokenBucket rate-limits a single user.
type TokenBucket struct {
	lastRefill   time.Time
	refillPeriod time.Duration
	capacity     int
	tokens       int
	refillRate   int
	mu           sync.Mutex
}

// NewTokenBucket creates a bucket that starts full.
func NewTokenBucket(capacity, refillRate int, refillPeriod time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:     capacity,
		tokens:       capacity,
		refillRate:   refillRate,
		refillPeriod: refillPeriod,
		lastRefill:   time.Now(),
	}
}

// Allow consumes a token if one is available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// refill adds tokens for elapsed refill periods. Caller holds the lock.
func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)
	if elapsed < tb.refillPeriod {
		return
	}

	periods := int(elapsed / tb.refillPeriod)
	tb.tokens += periods * tb.refillRate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = tb.lastRefill.Add(time.Duration(periods) * tb.refillPeriod)
}

// RateLimiter applies a token bucket per user. A chat bot must not queue
// an unbounded flood from one sender; over-limit events are dropped.
type RateLimiter struct {
	buckets      map[string]*TokenBucket
	capacity     int
	refillRate   int
	refillPeriod time.Duration
	mu           sync.Mutex
}

// NewRateLimiter creates a per-user rate limiter.
func NewRateLimiter(capacity, refillRate int, refillPeriod time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets:      make(map[string]*TokenBucket),
		capacity:     capacity,
		refillRate:   refillRate,
		refillPeriod: refillPeriod,
	}
}

// Allow reports whether the user may process another event now.
func (rl *RateLimiter) Allow(userID string) bool {
	rl.mu.Lock()
	bucket, exists := rl.buckets[userID]
	if !exists {
		bucket = NewTokenBucket(rl.capacity, rl.refillRate, rl.refillPeriod)
		rl.buckets[userID] = bucket
	}
	rl.mu.Unlock()

	return bucket.Allow()
}
