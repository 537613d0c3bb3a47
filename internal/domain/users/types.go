package users

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("a user with that email already exists")
	ErrDuplicateUsername = errors.New("a user with that username already exists")
	QueryTimeoutDuration = time.Second * 5
)

const xpPerLevel = 100

type User struct {
	ID               int64     `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	Password         password  `json:"-"`
	Level            int       `json:"level"`
	ExperiencePoints int       `json:"experience_points"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// LevelFor returns the level reached with xp experience points.
func LevelFor(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return 1 + xp/xpPerLevel
}

// Password struct to store plain text and hash
type password struct {
	text *string
	hash []byte
}

func (p *password) Set(text string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(text), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	p.text = &text
	p.hash = hash

	return nil
}

func (p *password) Compare(text string) error {
	return bcrypt.CompareHashAndPassword(p.hash, []byte(text))
}

// Hash exposes the bcrypt hash for persistence layers outside this package.
func (p *password) Hash() []byte {
	return p.hash
}

// SetHash loads an already hashed password.
func (p *password) SetHash(hash []byte) {
	p.hash = hash
	p.text = nil
}
