package dbx

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx so repositories
// can run either against the pool or inside a unit of work.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const uniqueViolation = "23505"
const foreignKeyViolation = "23503"

// IsUniqueViolation reports whether err is a postgres unique_violation, optionally
// restricted to a named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	return pgCode(err, uniqueViolation, constraint)
}

// IsForeignKeyViolation reports whether err is a postgres foreign_key_violation.
func IsForeignKeyViolation(err error, constraint string) bool {
	return pgCode(err, foreignKeyViolation, constraint)
}
