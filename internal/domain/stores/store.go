package stores

import (
	"context"
	"errors"
	"fmt"

	"snackspot/internal/geo"
	"snackspot/internal/infra/dbx"
	"snackspot/internal/params"

	"github.com/jackc/pgx/v5"
)

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

const selectStore = `
	SELECT id, name, address, latitude, longitude, created_by, created_at
	FROM stores
`

func scanStore(row pgx.Row) (*Store, error) {
	var s Store
	err := row.Scan(&s.ID, &s.Name, &s.Address, &s.Latitude, &s.Longitude, &s.CreatedBy, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) Create(ctx context.Context, store *Store) error {
	query := `
		INSERT INTO stores (name, address, latitude, longitude, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		store.Name,
		store.Address,
		store.Latitude,
		store.Longitude,
		store.CreatedBy,
	).Scan(&store.ID, &store.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert store: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Store, error) {
	return scanStore(r.db.QueryRow(ctx, selectStore+" WHERE id = $1 AND NOT is_deleted", id))
}

func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*Store, error) {
	return scanStore(r.db.QueryRow(ctx, selectStore+" WHERE id = $1 AND NOT is_deleted FOR UPDATE", id))
}

func (r *Repository) Update(ctx context.Context, store *Store) error {
	query := `
		UPDATE stores
		SET name = $1, address = $2, latitude = $3, longitude = $4
		WHERE id = $5 AND NOT is_deleted
	`
	tag, err := r.db.Exec(ctx, query, store.Name, store.Address, store.Latitude, store.Longitude, store.ID)
	if err != nil {
		return fmt.Errorf("failed to update store: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE stores SET is_deleted = true WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return fmt.Errorf("failed to delete store: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context, p params.Pagination) ([]Store, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM stores WHERE NOT is_deleted`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stores: %w", err)
	}

	rows, err := r.db.Query(ctx, selectStore+`
		WHERE NOT is_deleted
		ORDER BY name, id
		LIMIT $1 OFFSET $2
	`, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	out, err := collect(rows)
	return out, total, err
}

// InBounds returns every live store inside box. The caller applies the exact
// radius check.
func (r *Repository) InBounds(ctx context.Context, box geo.BoundingBox) ([]Store, error) {
	lngClause := "longitude BETWEEN $3 AND $4"
	if box.Wraps() {
		lngClause = "(longitude >= $3 OR longitude <= $4)"
	}
	query := selectStore + `
		WHERE NOT is_deleted
		  AND latitude BETWEEN $1 AND $2
		  AND ` + lngClause + `
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng)
	if err != nil {
		return nil, fmt.Errorf("stores in bounds: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Store, error) {
	var out []Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
