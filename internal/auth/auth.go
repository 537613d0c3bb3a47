package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidSubject = errors.New("token subject is not a user id")

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

type Authenticator interface {
	GenerateAccessToken(userID int64) (string, time.Time, error)
	GenerateRefreshToken(userID int64) (RefreshToken, error)
	ValidateAccessToken(token string) (*Claims, error)
	ValidateRefreshToken(token string) (*Claims, error)
}

// Claims are the registered JWT claims plus the token type, so a refresh
// token can never pass as an access token even if the secrets match.
type Claims struct {
	jwt.RegisteredClaims
	Type string `json:"typ"`
}

// UserID parses the subject claim.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidSubject
	}
	return id, nil
}

// TokenID parses the jti claim.
func (c *Claims) TokenID() (uuid.UUID, error) {
	return uuid.Parse(c.ID)
}

// RefreshToken is a signed refresh token together with the id and expiry
// needed to persist it.
type RefreshToken struct {
	Token     string
	ID        uuid.UUID
	ExpiresAt time.Time
}
