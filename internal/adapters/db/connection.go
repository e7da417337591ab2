package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sethvargo/go-retry"

	"github.com/AiSchool-Admin/xchange-egypt-sub014/internal/config"
)

// Connection represents a database connection
type Connection struct {
	db *sql.DB
}

// NewConnection creates a new database connection
func NewConnection(config *config.Config) (*Connection, error) {
	db, err := sql.Open("postgres", config.Database.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return &Connection{db: db}, nil
}

// GetDB returns the underlying sql.DB instance
func (c *Connection) GetDB() *sql.DB {
	return c.db
}

// Close closes the database connection
func (c *Connection) Close() error {
	return c.db.Close()
}

// ExecuteTransaction executes a function within a transaction
func (c *Connection) ExecuteTransaction(fn func(*sql.Tx) error) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %v, rollback failed: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// WithRetry runs op, retrying transient connection failures with fibonacci
// backoff. Admission fails closed once retries exhaust: a bid is rejected
// rather than left ambiguous.
func (c *Connection) WithRetry(ctx context.Context, op func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(100*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := op(ctx)
		if err != nil && isTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func isTransient(err error) bool {
	return errors.Is(err, driver.ErrBadConn)
}
