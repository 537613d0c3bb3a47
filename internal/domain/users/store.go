package users

import (
	"context"
	"errors"
	"fmt"

	"snackspot/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Store interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	AddExperience(ctx context.Context, userID int64, points int) error
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) Create(ctx context.Context, user *User) error {
	query := `
	  INSERT INTO users (username, email, password)
	  VALUES ($1, $2, $3)
	  RETURNING id, level, experience_points, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := r.db.QueryRow(ctx, query, user.Username, user.Email, user.Password.hash).
		Scan(&user.ID, &user.Level, &user.ExperiencePoints, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		switch {
		case dbx.IsUniqueViolation(err, "users_email_key"):
			return ErrDuplicateEmail
		case dbx.IsUniqueViolation(err, "users_username_key"):
			return ErrDuplicateUsername
		default:
			return fmt.Errorf("insert user: %w", err)
		}
	}
	return nil
}

const selectUser = `
	SELECT id, username, email, password, level, experience_points, created_at, updated_at
	FROM users
`

func (r *Repository) getOne(ctx context.Context, where string, arg any) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var user User
	err := r.db.QueryRow(ctx, selectUser+where, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Password.hash,
		&user.Level,
		&user.ExperiencePoints,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.getOne(ctx, "WHERE id = $1", id)
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "WHERE email = $1", email)
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx, "WHERE username = $1", username)
}

// AddExperience credits points and recomputes the level in one statement.
func (r *Repository) AddExperience(ctx context.Context, userID int64, points int) error {
	query := `
		UPDATE users
		SET experience_points = experience_points + $2,
		    level = 1 + (experience_points + $2) / $3,
		    updated_at = now()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, userID, points, xpPerLevel)
	if err != nil {
		return fmt.Errorf("add experience: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
