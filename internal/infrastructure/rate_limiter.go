package infrastructure

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a per-key sliding window limiter. It guards login
// attempts and password reset mails.
type RateLimiter struct {
	requests map[string][]time.Time
	window   time.Duration
	limit    int
	mutex    sync.Mutex
	now      func() time.Time
}

func NewRateLimiter(window time.Duration, limit int) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		window:   window,
		limit:    limit,
		now:      time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	rl.now = now
	return rl
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	validRequests := rl.prune(key, now)

	if len(validRequests) < rl.limit {
		rl.requests[key] = append(validRequests, now)
		return true
	}

	rl.requests[key] = validRequests
	return false
}

// RetryAfter returns how long until key gets a free slot.
func (rl *RateLimiter) RetryAfter(key string) time.Duration {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	validRequests := rl.prune(key, now)
	if len(validRequests) < rl.limit {
		return 0
	}
	return validRequests[0].Add(rl.window).Sub(now)
}

// Reset forgets key, e.g. after a successful login.
func (rl *RateLimiter) Reset(key string) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	delete(rl.requests, key)
}

// StartCleanup drops stale keys every interval until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.cleanupStaleEntries()
			}
		}
	}()
}

func (rl *RateLimiter) cleanupStaleEntries() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for key := range rl.requests {
		if len(rl.prune(key, now)) == 0 {
			delete(rl.requests, key)
		}
	}
}

// prune must be called with the mutex held.
func (rl *RateLimiter) prune(key string, now time.Time) []time.Time {
	windowStart := now.Add(-rl.window)

	var validRequests []time.Time
	for _, reqTime := range rl.requests[key] {
		if reqTime.After(windowStart) {
			validRequests = append(validRequests, reqTime)
		}
	}
	if len(validRequests) == 0 {
		delete(rl.requests, key)
	} else {
		rl.requests[key] = validRequests
	}
	return validRequests
}
