package refreshtokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tok := Token{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, tok.Active(now))
	assert.False(t, tok.Active(now.Add(2*time.Hour)))

	revoked := now.Add(-time.Minute)
	tok.RevokedAt = &revoked
	assert.False(t, tok.Active(now))
}

func TestHashIsStableHex(t *testing.T) {
	a := Hash("token-value")
	assert.Len(t, a, 64)
	assert.Equal(t, a, Hash("token-value"))
	assert.NotEqual(t, a, Hash("other-value"))
}
