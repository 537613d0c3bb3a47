package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucketLimiter keeps one rate.Limiter per key. It guards the
// authentication endpoints where bursts of guesses matter more than volume.
type TokenBucketLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	max      int
}

func NewTokenBucketLimiter(perSecond float64, burst int) *TokenBucketLimiter {
	if burst < 1 {
		burst = 1
	}
	return &TokenBucketLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		max:      10000,
	}
}

func (l *TokenBucketLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= l.max {
			// Full buckets are indistinguishable from new ones.
			for k, v := range l.limiters {
				if v.Tokens() >= float64(l.burst) {
					delete(l.limiters, k)
				}
			}
		}
		lim = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = lim
	}
	return lim
}

func (l *TokenBucketLimiter) Allow(key string) (bool, time.Duration) {
	lim := l.get(key)
	r := lim.Reserve()
	if !r.OK() {
		return false, time.Second
	}
	if d := r.Delay(); d > 0 {
		r.Cancel()
		return false, d
	}
	return true, 0
}
