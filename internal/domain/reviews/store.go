package reviews

import (
	"context"
	"errors"
	"fmt"

	"snackspot/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) Create(ctx context.Context, review *Review) error {
	query := `
        INSERT INTO reviews (snack_id, user_id, rating, comment)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		review.SnackID,
		review.UserID,
		review.Rating,
		review.Comment,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, "reviews_snack_id_user_id_key") {
			return ErrDuplicate
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

const selectReview = `
        SELECT r.id, r.snack_id, r.user_id, r.rating, r.comment, r.is_hidden,
               r.created_at, r.updated_at, u.username
        FROM reviews r
        JOIN users u ON u.id = r.user_id
`

func scanReview(row pgx.Row) (*Review, error) {
	var review Review
	err := row.Scan(
		&review.ID,
		&review.SnackID,
		&review.UserID,
		&review.Rating,
		&review.Comment,
		&review.IsHidden,
		&review.CreatedAt,
		&review.UpdatedAt,
		&review.Username,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Review, error) {
	return scanReview(r.db.QueryRow(ctx, selectReview+" WHERE r.id = $1", id))
}

// HasReview returns true if a review by this user on this snack already exists.
func (r *Repository) HasReview(ctx context.Context, snackID, userID int64) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS (
          SELECT 1 FROM reviews
          WHERE snack_id = $1 AND user_id = $2
        )
    `
	err := r.db.QueryRow(ctx, query, snackID, userID).Scan(&exists)
	return exists, err
}

func (r *Repository) Update(ctx context.Context, review *Review) error {
	query := `
        UPDATE reviews
        SET rating = $1, comment = $2, updated_at = now()
        WHERE id = $3
        RETURNING updated_at
    `
	err := r.db.QueryRow(ctx, query, review.Rating, review.Comment, review.ID).Scan(&review.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteBySnack(ctx context.Context, snackID int64) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE snack_id = $1`, snackID)
	if err != nil {
		return 0, fmt.Errorf("delete snack reviews: %w", err)
	}
	return result.RowsAffected(), nil
}

func (r *Repository) ListBySnack(ctx context.Context, snackID int64) ([]Review, error) {
	rows, err := r.db.Query(ctx, selectReview+`
        WHERE r.snack_id = $1 AND NOT r.is_hidden
        ORDER BY r.created_at DESC, r.id DESC
    `, snackID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *review)
	}
	return reviews, rows.Err()
}

func (r *Repository) VisibleRatings(ctx context.Context, snackID int64) ([]int, error) {
	rows, err := r.db.Query(ctx, `SELECT rating FROM reviews WHERE snack_id = $1 AND NOT is_hidden`, snackID)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		ratings = append(ratings, v)
	}
	return ratings, rows.Err()
}
