package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"munlink-backend/internal/logger"

	"github.com/cenkalti/backoff/v4"
)

// Open connects to PostgreSQL and waits until the database answers a ping,
// retrying with exponential backoff for at most timeout.
func Open(ctx context.Context, dsn string, maxOpenConns int, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns / 2)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := WaitForPing(ctx, db, timeout); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// WaitForPing pings db until it succeeds or timeout elapses.
func WaitForPing(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	policy.MaxElapsedTime = timeout

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		pingErr := db.PingContext(ctx)
		if pingErr != nil {
			logger.Warn("Database not ready", "attempt", attempt, "error", pingErr)
		}
		return pingErr
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return fmt.Errorf("failed to ping database after %d attempts: %w", attempt, err)
	}
	return nil
}
