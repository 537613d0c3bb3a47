package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"snackspot/internal/apperr"
	"snackspot/internal/auth"
	"snackspot/internal/domain/refreshtokens"
	"snackspot/internal/domain/storage"
	"snackspot/internal/domain/users"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)
	errBadLogin     = apperr.Unauthenticatedf("invalid credentials")
	errBadRefresh   = apperr.Unauthenticatedf("invalid refresh token")
)

const minPasswordLength = 8

// Accounts registers users and issues their tokens.
type Accounts struct {
	backend storage.Backend
	auth    auth.Authenticator
	now     func() time.Time
}

func NewAccounts(backend storage.Backend, authenticator auth.Authenticator) *Accounts {
	return &Accounts{backend: backend, auth: authenticator, now: time.Now}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Tokens is the pair returned on login and refresh.
type Tokens struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

func (a *Accounts) Register(ctx context.Context, in RegisterInput) (*users.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !usernamePattern.MatchString(username) {
		return nil, apperr.Validationf("username must be 3-30 letters, digits or underscores")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validationf("a valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperr.Validationf("password must be at least %d characters", minPasswordLength)
	}

	user := &users.User{Username: username, Email: email}
	if err := user.Password.Set(in.Password); err != nil {
		return nil, apperr.Wrap(err, "hash password")
	}
	if err := a.backend.Read().Users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, users.ErrDuplicateEmail):
			return nil, apperr.Conflictf("%s", err.Error())
		case errors.Is(err, users.ErrDuplicateUsername):
			return nil, apperr.Conflictf("%s", err.Error())
		default:
			return nil, apperr.Wrap(err, "create user")
		}
	}
	return user, nil
}

// Login accepts either an email address or a username as identifier.
func (a *Accounts) Login(ctx context.Context, identifier, password string) (*users.User, Tokens, error) {
	identifier = strings.TrimSpace(identifier)
	repo := a.backend.Read().Users

	var (
		user *users.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = repo.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = repo.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, Tokens{}, errBadLogin
		}
		return nil, Tokens{}, apperr.Wrap(err, "load user")
	}
	if err := user.Password.Compare(password); err != nil {
		return nil, Tokens{}, errBadLogin
	}

	var tokens Tokens
	err = a.backend.WithTx(ctx, func(tx storage.Repos) error {
		var err error
		tokens, err = a.issue(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, Tokens{}, err
	}
	return user, tokens, nil
}

func (a *Accounts) issue(ctx context.Context, tx storage.Repos, userID int64) (Tokens, error) {
	access, accessExp, err := a.auth.GenerateAccessToken(userID)
	if err != nil {
		return Tokens{}, apperr.Wrap(err, "sign access token")
	}
	refresh, err := a.auth.GenerateRefreshToken(userID)
	if err != nil {
		return Tokens{}, apperr.Wrap(err, "sign refresh token")
	}
	err = tx.RefreshTokens.Create(ctx, &refreshtokens.Token{
		ID:        refresh.ID,
		UserID:    userID,
		TokenHash: refreshtokens.Hash(refresh.Token),
		ExpiresAt: refresh.ExpiresAt,
	})
	if err != nil {
		return Tokens{}, apperr.Wrap(err, "store refresh token")
	}
	return Tokens{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh.Token,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued. Presenting a revoked token revokes every token of its user.
func (a *Accounts) Refresh(ctx context.Context, token string) (Tokens, error) {
	claims, err := a.auth.ValidateRefreshToken(token)
	if err != nil {
		return Tokens{}, errBadRefresh
	}
	userID, err := claims.UserID()
	if err != nil {
		return Tokens{}, errBadRefresh
	}
	jti, err := claims.TokenID()
	if err != nil {
		return Tokens{}, errBadRefresh
	}

	var (
		tokens Tokens
		reused bool
	)
	err = a.backend.WithTx(ctx, func(tx storage.Repos) error {
		stored, err := tx.RefreshTokens.GetByID(ctx, jti)
		if err != nil {
			if errors.Is(err, refreshtokens.ErrNotFound) {
				return errBadRefresh
			}
			return apperr.Wrap(err, "load refresh token")
		}
		if stored.UserID != userID || stored.TokenHash != refreshtokens.Hash(token) {
			return errBadRefresh
		}
		if stored.RevokedAt != nil {
			reused = true
			return errBadRefresh
		}
		if !stored.Active(a.now()) {
			return errBadRefresh
		}
		if err := tx.RefreshTokens.Revoke(ctx, jti); err != nil {
			return apperr.Wrap(err, "revoke refresh token")
		}
		tokens, err = a.issue(ctx, tx, userID)
		return err
	})
	if reused {
		if rerr := a.backend.Read().RefreshTokens.RevokeAllForUser(ctx, userID); rerr != nil {
			return Tokens{}, apperr.Wrap(rerr, "revoke user tokens")
		}
	}
	if err != nil {
		return Tokens{}, err
	}
	return tokens, nil
}

// Logout revokes every refresh token of userID.
func (a *Accounts) Logout(ctx context.Context, userID int64) error {
	if err := a.backend.Read().RefreshTokens.RevokeAllForUser(ctx, userID); err != nil {
		return apperr.Wrap(err, "revoke user tokens")
	}
	return nil
}

// Authenticate resolves an access token to its user.
func (a *Accounts) Authenticate(ctx context.Context, token string) (*users.User, error) {
	claims, err := a.auth.ValidateAccessToken(token)
	if err != nil {
		return nil, apperr.Unauthenticatedf("invalid or expired token")
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, apperr.Unauthenticatedf("invalid or expired token")
	}
	user, err := a.backend.Read().Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, apperr.Unauthenticatedf("invalid or expired token")
		}
		return nil, apperr.Wrap(err, "load user")
	}
	return user, nil
}

// PurgeExpiredTokens removes refresh tokens whose expiry has passed. Revoked
// but unexpired tokens are kept so reuse can still be detected.
func (a *Accounts) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := a.backend.Read().RefreshTokens.PurgeExpired(ctx, a.now())
	if err != nil {
		return 0, apperr.Wrap(err, "purge refresh tokens")
	}
	return n, nil
}
