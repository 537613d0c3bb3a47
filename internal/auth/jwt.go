package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type JWTAuthenticator struct {
	secret        string
	refreshSecret string
	iss           string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewJWTAuthenticator(secret, refreshSecret, iss string, accessTTL, refreshTTL time.Duration) *JWTAuthenticator {
	return &JWTAuthenticator{
		secret:        secret,
		refreshSecret: refreshSecret,
		iss:           iss,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (a *JWTAuthenticator) WithClock(now func() time.Time) *JWTAuthenticator {
	a.now = now
	return a
}

func (a *JWTAuthenticator) claims(userID int64, typ string, ttl time.Duration) Claims {
	now := a.now()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    a.iss,
			Audience:  jwt.ClaimStrings{a.iss},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Type: typ,
	}
}

// GenerateAccessToken signs a short-lived access token.
func (a *JWTAuthenticator) GenerateAccessToken(userID int64) (string, time.Time, error) {
	claims := a.claims(userID, typeAccess, a.accessTTL)
	token, err := a.sign(claims, a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, claims.ExpiresAt.Time, nil
}

// GenerateRefreshToken signs a refresh token carrying a fresh jti.
func (a *JWTAuthenticator) GenerateRefreshToken(userID int64) (RefreshToken, error) {
	claims := a.claims(userID, typeRefresh, a.refreshTTL)
	id := uuid.New()
	claims.ID = id.String()

	token, err := a.sign(claims, a.refreshSecret)
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{Token: token, ID: id, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (a *JWTAuthenticator) sign(claims Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (a *JWTAuthenticator) ValidateAccessToken(token string) (*Claims, error) {
	return a.parse(token, a.secret, typeAccess)
}

func (a *JWTAuthenticator) ValidateRefreshToken(token string) (*Claims, error) {
	return a.parse(token, a.refreshSecret, typeRefresh)
}

func (a *JWTAuthenticator) parse(token, secret, typ string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(a.iss),
		jwt.WithAudience(a.iss),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.Type != typ {
		return nil, fmt.Errorf("expected %s token, got %q", typ, claims.Type)
	}
	return claims, nil
}
