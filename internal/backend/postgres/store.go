// Package postgres adapts a PostgreSQL database as the gateway's
// full-text backend. Each collection is a table populated by the
// ingestion pipeline; the gateway only ever reads.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/datamancy/searchgate/internal/domain"
)

const defaultQueryTimeout = 30 * time.Second

// Config holds connection pool settings. The pool is kept small to
// shield the store from per-collection fan-out storms.
type Config struct {
	DSN          string
	MaxConns     int
	MinConns     int
	QueryTimeout time.Duration
	MaxLimit     int
}

// Store is a read-only client to the full-text store.
type Store struct {
	pool     *pgxpool.Pool
	timeout  time.Duration
	limitCap int
}

// NewStore creates a bounded connection pool and verifies connectivity.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dsn: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	} else {
		poolCfg.MaxConns = 10
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	} else {
		poolCfg.MinConns = 2
	}
	poolCfg.MaxConnLifetime = 1 * time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	limitCap := cfg.MaxLimit
	if limitCap <= 0 {
		limitCap = defaultLimitCap
	}

	return &Store{pool: pool, timeout: timeout, limitCap: limitCap}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// wrapErr maps pool errors onto the gateway taxonomy.
func wrapErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, domain.ErrTimeout)
	}
	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrDatabaseUnavailable)
}
