// Package postgres persists battle records in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/battlecore/internal/config"
)

// ApplicationName tags every connection in pg_stat_activity.
const ApplicationName = "battlecore"

// connectTimeout bounds the initial ping.
const connectTimeout = 10 * time.Second

// Pool wraps a pgx connection pool.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool creates a PostgreSQL connection pool from cfg and verifies it with a ping.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a connected Pool or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Pool{pool: pool}, nil
}

// Health checks that the database answers within timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Close releases all pool resources.
func (p *Pool) Close() { p.pool.Close() }

// DB returns the underlying pgxpool.Pool for repositories.
func (p *Pool) DB() *pgxpool.Pool { return p.pool }

// isDuplicateKeyError reports a unique constraint violation (SQLSTATE 23505).
func isDuplicateKeyError(err error) bool {
	var pgErr interface{ SQLState() string }
	return errors.As(err, &pgErr) && pgErr.SQLState() == "23505"
}
