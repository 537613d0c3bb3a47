package snacks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"snackspot/internal/infra/dbx"
	"snackspot/internal/rating"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) Create(ctx context.Context, snack *Snack) error {
	if snack.DataSource == "" {
		snack.DataSource = SourceUser
	}
	if !snack.DataSource.Valid() {
		return ErrInvalidDataSource
	}
	query := `
		INSERT INTO snacks (name, description, category_id, image, created_by, store_id, data_source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		snack.Name,
		snack.Description,
		snack.CategoryID,
		snack.Image,
		snack.CreatedBy,
		snack.StoreID,
		string(snack.DataSource),
	).Scan(&snack.ID, &snack.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert snack: %w", err)
	}
	snack.AverageRating = 0
	snack.TotalRatings = 0
	return nil
}

const selectListing = `
	SELECT
		s.id, s.name, s.description, s.category_id, s.image, s.created_by, s.store_id,
		s.average_rating, s.total_ratings, s.created_at, s.data_source,
		c.name,
		st.name, st.address, st.latitude, st.longitude,
		u.username
	FROM snacks s
	JOIN categories c ON c.id = s.category_id
	JOIN stores st ON st.id = s.store_id
	JOIN users u ON u.id = s.created_by
`

func scanListing(row pgx.Row) (*Listing, error) {
	var (
		l      Listing
		avg    pgtype.Numeric
		source string
	)
	err := row.Scan(
		&l.ID, &l.Name, &l.Description, &l.CategoryID, &l.Image, &l.CreatedBy, &l.StoreID,
		&avg, &l.TotalRatings, &l.CreatedAt, &source,
		&l.CategoryName,
		&l.StoreName, &l.StoreAddress, &l.StoreLatitude, &l.StoreLongitude,
		&l.OwnerUsername,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if l.AverageRating, err = rating.FromNumeric(avg); err != nil {
		return nil, err
	}
	l.DataSource = DataSource(source)
	return &l, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Listing, error) {
	return scanListing(r.db.QueryRow(ctx, selectListing+" WHERE s.id = $1 AND NOT s.is_deleted", id))
}

func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*Snack, error) {
	var (
		s      Snack
		avg    pgtype.Numeric
		source string
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, name, description, category_id, image, created_by, store_id,
		       average_rating, total_ratings, created_at, data_source
		FROM snacks
		WHERE id = $1 AND NOT is_deleted
		FOR UPDATE
	`, id).Scan(
		&s.ID, &s.Name, &s.Description, &s.CategoryID, &s.Image, &s.CreatedBy, &s.StoreID,
		&avg, &s.TotalRatings, &s.CreatedAt, &source,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if s.AverageRating, err = rating.FromNumeric(avg); err != nil {
		return nil, err
	}
	s.DataSource = DataSource(source)
	return &s, nil
}

// Update writes the client-editable columns. Rating columns are untouched.
func (r *Repository) Update(ctx context.Context, snack *Snack) error {
	query := `
		UPDATE snacks
		SET name = $1, description = $2, category_id = $3, store_id = $4, image = $5
		WHERE id = $6 AND NOT is_deleted
	`
	tag, err := r.db.Exec(ctx, query,
		snack.Name,
		snack.Description,
		snack.CategoryID,
		snack.StoreID,
		snack.Image,
		snack.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update snack: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE snacks SET is_deleted = true WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snack: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns live snacks matching filter, newest first, along with the
// total number of matches.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Listing, int, error) {
	var (
		where      = []string{"NOT s.is_deleted", "NOT st.is_deleted"}
		args       []any
		argCounter = 1
	)

	if filter.CategoryID != nil {
		where = append(where, fmt.Sprintf("s.category_id = $%d", argCounter))
		args = append(args, *filter.CategoryID)
		argCounter++
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, fmt.Sprintf("s.name ILIKE $%d", argCounter))
		args = append(args, "%"+dbx.EscapeLike(search)+"%")
		argCounter++
	}

	if box := filter.Box; box != nil {
		where = append(where, fmt.Sprintf("st.latitude BETWEEN $%d AND $%d", argCounter, argCounter+1))
		if box.Wraps() {
			where = append(where, fmt.Sprintf("(st.longitude >= $%d OR st.longitude <= $%d)", argCounter+2, argCounter+3))
		} else {
			where = append(where, fmt.Sprintf("st.longitude BETWEEN $%d AND $%d", argCounter+2, argCounter+3))
		}
		args = append(args, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng)
		argCounter += 4
	}

	whereSQL := " WHERE " + strings.Join(where, " AND ")

	// Box queries return every candidate, unpaginated.
	if filter.Box != nil {
		out, err := r.query(ctx, selectListing+whereSQL+" ORDER BY s.id", args...)
		return out, len(out), err
	}

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM snacks s
		JOIN stores st ON st.id = s.store_id
	` + whereSQL
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting snacks: %w", err)
	}

	query := selectListing + whereSQL + fmt.Sprintf(" ORDER BY s.created_at DESC, s.id DESC LIMIT $%d OFFSET $%d", argCounter, argCounter+1)
	args = append(args, filter.Limit, filter.Offset)

	out, err := r.query(ctx, query, args...)
	return out, total, err
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]Listing, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying snacks: %w", err)
	}
	defer rows.Close()

	var out []Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning snack row: %w", err)
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *Repository) CountByStore(ctx context.Context, storeID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM snacks WHERE store_id = $1 AND NOT is_deleted`, storeID).Scan(&n)
	return n, err
}

func (r *Repository) SetRating(ctx context.Context, id int64, summary rating.Summary) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE snacks
		SET average_rating = $1, total_ratings = $2
		WHERE id = $3
	`, summary.Average.Numeric(), summary.Total, id)
	if err != nil {
		return fmt.Errorf("set snack rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
