package reviews

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("review not found")
	ErrDuplicate = errors.New("user has already reviewed this snack")
)

type Review struct {
	ID        int64     `json:"id"`
	SnackID   int64     `json:"snack_id"`
	UserID    int64     `json:"user_id"`
	Rating    int       `json:"rating"` // 1-5
	Comment   *string   `json:"comment,omitempty"`
	IsHidden  bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Joined fields
	Username string `json:"username,omitempty"`
}

type Store interface {
	Create(ctx context.Context, review *Review) error
	GetByID(ctx context.Context, id int64) (*Review, error)
	HasReview(ctx context.Context, snackID, userID int64) (bool, error)
	Update(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id int64) error
	DeleteBySnack(ctx context.Context, snackID int64) (int64, error)
	ListBySnack(ctx context.Context, snackID int64) ([]Review, error)
	// VisibleRatings returns the ratings of every non-hidden review of a snack.
	VisibleRatings(ctx context.Context, snackID int64) ([]int, error)
}
