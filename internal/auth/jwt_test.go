package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator(now time.Time) *JWTAuthenticator {
	return NewJWTAuthenticator("access-secret", "refresh-secret", "snackspot", 15*time.Minute, 24*time.Hour).
		WithClock(func() time.Time { return now })
}

func TestAccessTokenRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a := newTestAuthenticator(now)

	token, exp, err := a.GenerateAccessToken(42)
	require.NoError(t, err)
	assert.Equal(t, now.Add(15*time.Minute), exp)

	claims, err := a.ValidateAccessToken(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestAccessTokenExpires(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a := newTestAuthenticator(now)

	token, _, err := a.GenerateAccessToken(1)
	require.NoError(t, err)

	later := newTestAuthenticator(now.Add(time.Hour))
	_, err = later.ValidateAccessToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	a := NewJWTAuthenticator("same", "same", "snackspot", time.Minute, time.Hour)

	refresh, err := a.GenerateRefreshToken(7)
	require.NoError(t, err)
	_, err = a.ValidateAccessToken(refresh.Token)
	assert.Error(t, err)

	access, _, err := a.GenerateAccessToken(7)
	require.NoError(t, err)
	_, err = a.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestRefreshTokenCarriesID(t *testing.T) {
	a := newTestAuthenticator(time.Now())

	rt, err := a.GenerateRefreshToken(9)
	require.NoError(t, err)

	claims, err := a.ValidateRefreshToken(rt.Token)
	require.NoError(t, err)
	id, err := claims.TokenID()
	require.NoError(t, err)
	assert.Equal(t, rt.ID, id)
}

func TestWrongSecretRejected(t *testing.T) {
	a := newTestAuthenticator(time.Now())
	token, _, err := a.GenerateAccessToken(1)
	require.NoError(t, err)

	other := NewJWTAuthenticator("other", "refresh-secret", "snackspot", time.Minute, time.Hour)
	_, err = other.ValidateAccessToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}
