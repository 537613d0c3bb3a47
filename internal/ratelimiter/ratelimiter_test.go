package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedWindowLimits(t *testing.T) {
	rl := NewFixedWindowLimiter(2, time.Minute)
	defer rl.Stop()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("1.2.3.4")
	assert.True(t, ok)
	ok, _ = rl.Allow("1.2.3.4")
	assert.True(t, ok)

	ok, wait := rl.Allow("1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, time.Minute, wait)

	ok, _ = rl.Allow("5.6.7.8")
	assert.True(t, ok, "other clients have their own window")

	now = now.Add(time.Minute)
	ok, _ = rl.Allow("1.2.3.4")
	assert.True(t, ok, "window resets")
}

func TestFixedWindowRetryAfterShrinks(t *testing.T) {
	rl := NewFixedWindowLimiter(1, 10*time.Second)
	defer rl.Stop()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("k")
	now = now.Add(4 * time.Second)
	ok, wait := rl.Allow("k")
	assert.False(t, ok)
	assert.Equal(t, 6*time.Second, wait)
}

func TestStopIsIdempotent(t *testing.T) {
	rl := NewFixedWindowLimiter(1, time.Millisecond)
	rl.Stop()
	rl.Stop()
}

func TestTokenBucketBurst(t *testing.T) {
	l := NewTokenBucketLimiter(0.001, 3)

	for i := 0; i < 3; i++ {
		ok, _ := l.Allow("client")
		assert.True(t, ok)
	}
	ok, wait := l.Allow("client")
	assert.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))

	ok, _ = l.Allow("another")
	assert.True(t, ok)
}
