// Package db opens the Postgres pool used by the postgres account store and
// embeds its schema migrations.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	maxOpenConns = 20
	maxIdleTime  = 5 * time.Minute
	pingTimeout  = 5 * time.Second
)

// ErrEmptyDSN is returned by Open when no connection string is given.
var ErrEmptyDSN = errors.New("postgres dsn is empty")

// Open returns a pgx-backed *sql.DB that has answered a ping. The caller owns
// the pool and must Close it.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, ErrEmptyDSN
	}
	pool, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	pool.SetMaxOpenConns(maxOpenConns)
	pool.SetConnMaxIdleTime(maxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}
