package storage

import (
	"context"
	"fmt"

	"snackspot/internal/domain/auditlogs"
	"snackspot/internal/domain/categories"
	"snackspot/internal/domain/refreshtokens"
	"snackspot/internal/domain/reviews"
	"snackspot/internal/domain/snacks"
	"snackspot/internal/domain/stores"
	"snackspot/internal/domain/users"
	"snackspot/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repos is one set of repositories bound to a single Querier, either the pool
// or an open transaction.
type Repos struct {
	Users         users.Store
	Categories    categories.Store
	Stores        stores.Storage
	Snacks        snacks.Store
	Reviews       reviews.Store
	RefreshTokens refreshtokens.Store
	AuditLogs     auditlogs.Store
}

func newRepos(q dbx.Querier) Repos {
	return Repos{
		Users:         users.NewRepository(q),
		Categories:    categories.NewRepository(q),
		Stores:        stores.NewRepository(q),
		Snacks:        snacks.NewRepository(q),
		Reviews:       reviews.NewRepository(q),
		RefreshTokens: refreshtokens.NewRepository(q),
		AuditLogs:     auditlogs.NewRepository(q),
	}
}

// Backend is what the service layer needs: pool-bound repositories for reads
// and an atomic unit of work for writes.
type Backend interface {
	Read() Repos
	WithTx(ctx context.Context, fn func(tx Repos) error) error
}

type Container struct {
	pool *pgxpool.Pool
	Repos
}

func NewContainer(db *pgxpool.Pool) *Container {
	return &Container{
		pool:  db,
		Repos: newRepos(db),
	}
}

func (c *Container) Read() Repos {
	return c.Repos
}

// WithTx runs fn in a read-committed transaction. fn's repositories share the
// transaction; any error rolls everything back.
func (c *Container) WithTx(ctx context.Context, fn func(tx Repos) error) error {
	if c.pool == nil {
		return fmt.Errorf("storage container pool is nil (did you forget to set pool in NewContainer?)")
	}

	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx) // safe even if already committed
	}()

	if err := fn(newRepos(tx)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Ping checks database connectivity for the health endpoint.
func (c *Container) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}
