package auditlogs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"snackspot/internal/infra/dbx"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

type Entry struct {
	ID        int64          `json:"id"`
	UserID    *int64         `json:"user_id,omitempty"`
	Action    string         `json:"action"`
	Entity    string         `json:"entity"`
	EntityID  int64          `json:"entity_id"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type Store interface {
	Record(ctx context.Context, entry *Entry) error
	ListByEntity(ctx context.Context, entity string, entityID int64) ([]Entry, error)
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) Record(ctx context.Context, entry *Entry) error {
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encode audit details: %w", err)
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO audit_logs (user_id, action, entity, entity_id, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, entry.UserID, entry.Action, entry.Entity, entry.EntityID, raw).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (r *Repository) ListByEntity(ctx context.Context, entity string, entityID int64) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, action, entity, entity_id, details, created_at
		FROM audit_logs
		WHERE entity = $1 AND entity_id = $2
		ORDER BY created_at, id
	`, entity, entityID)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e   Entry
			raw []byte
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Entity, &e.EntityID, &raw, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &e.Details); err != nil {
				return nil, fmt.Errorf("decode audit details: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
