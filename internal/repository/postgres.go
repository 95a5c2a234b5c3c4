package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

type PoolConfig struct {
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetimeS int
	ConnMaxIdleTimeS int

	// ConnectAttempts bounds how many pings NewPostgresDB makes while the
	// database is still starting. Zero means a single attempt.
	ConnectAttempts   int
	ConnectRetryDelay time.Duration
}

// NewPostgresDB opens the pool and waits for the database to answer, retrying
// until the attempts run out or ctx is done.
func NewPostgresDB(ctx context.Context, databaseURL string, pool PoolConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresDB: open: %w", err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeS) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTimeS) * time.Second)

	if err := waitForDB(ctx, db, pool.ConnectAttempts, pool.ConnectRetryDelay); err != nil {
		db.Close()
		return nil, fmt.Errorf("NewPostgresDB: %w", err)
	}

	return db, nil
}

func waitForDB(ctx context.Context, db *sql.DB, attempts int, delay time.Duration) error {
	attempts = max(attempts, 1)
	if delay <= 0 {
		delay = time.Second
	}

	var err error
	for i := range attempts {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		slog.InfoContext(ctx, "waiting for database", "attempt", i+1, "error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("ping: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("ping: gave up after %d attempts: %w", attempts, err)
}
