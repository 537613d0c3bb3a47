package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const connectTimeout = 30 * time.Second

// New opens a pgx pool against addr and pings it before returning.
// maxIdleTime uses time.ParseDuration syntax ("15m").
func New(addr string, maxConns int32, maxIdleTime string) (*pgxpool.Pool, error) {
	cfg, err := poolConfig(addr, maxConns, maxIdleTime)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func poolConfig(addr string, maxConns int32, maxIdleTime string) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(addr)
	if err != nil {
		return nil, fmt.Errorf("parse DB_ADDR: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	idle, err := time.ParseDuration(maxIdleTime)
	if err != nil {
		return nil, fmt.Errorf("parse DB_MAX_IDLE_TIME: %w", err)
	}
	cfg.MaxConnIdleTime = idle

	// Nearby search re-runs the same bounding-box query shape; keep prepared
	// statements cached per connection.
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
	return cfg, nil
}
