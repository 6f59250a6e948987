// Package store is the gateway's access layer over the shared relational
// store. It supports PostgreSQL (the production target), MySQL, and SQLite
// (local development and tests). Queries are written with "?" placeholders
// and rebound per driver; the only statements that differ per engine live
// in dialect.go.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"
	_ "modernc.org/sqlite"

	"github.com/quantgems/adminapi/internal/config"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps the shared connection pool. All reads, writes, and listings
// go through it; no operation holds state across requests except the
// one-time presence settings initialization.
type Store struct {
	db      *sqlx.DB
	dialect dialect

	// Presence settings initialization: concurrent first-time callers
	// share one in-flight table creation through initGroup; once a
	// creation succeeds, settingsReady short-circuits every later call.
	initGroup     singleflight.Group
	settingsReady atomic.Bool
	initRuns      atomic.Int64
}

// Open connects to the configured database and returns a Store.
func Open(cfg config.DBConfig) (*Store, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		// A second connection to an in-memory SQLite database would see a
		// different, empty database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	return &Store{db: db, dialect: d}, nil
}

// DB exposes the underlying pool. The gateway does not own the business
// schema; tooling and tests that create or seed tables go through this.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies store reachability.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Counts returns the row count of each listed collection. A failing count
// yields a nil entry rather than failing the whole call; the status
// endpoint reports it as null.
func (s *Store) Counts(ctx context.Context) map[string]*int64 {
	counts := make(map[string]*int64, 4)
	for _, table := range []string{"users", "subscriptions", "payments", "audit_logs"} {
		var n int64
		if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table); err != nil {
			counts[table] = nil
			continue
		}
		v := n
		counts[table] = &v
	}
	return counts
}
