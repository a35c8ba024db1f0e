// Package storage is the Postgres persistence layer. It owns the schema, the
// identity tables (locations, parameters, measurement models), the snapshot
// and time-series writes, and retention cleanup.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
)

// Store wraps the database handle. All methods are safe for concurrent use;
// the underlying pool handles connection management.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	clock  clockwork.Clock
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, databaseURL string, logger *slog.Logger, clock clockwork.Clock) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{db: db, logger: logger, clock: clock}, nil
}

// NewStore wraps an existing handle. Used by tests that manage their own
// connection lifecycle.
func NewStore(db *sql.DB, logger *slog.Logger, clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{db: db, logger: logger, clock: clock}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
