package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quantgems/adminapi/internal/config"
)

// newTestStore opens an in-memory SQLite store and creates the external
// collections the gateway reads. In production those tables belong to the
// application database; tests own a throwaway copy.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(config.DBConfig{Driver: "sqlite"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	schema := []string{
		`CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT UNIQUE NOT NULL,
			username TEXT,
			full_name TEXT,
			plan TEXT,
			subscription_status TEXT,
			password_hash TEXT NOT NULL DEFAULT '',
			email_verified INTEGER NOT NULL DEFAULT 0,
			is_active INTEGER NOT NULL DEFAULT 1,
			last_login_at DATETIME,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE subscriptions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			plan TEXT NOT NULL,
			status TEXT NOT NULL,
			amount REAL NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT 'TWD',
			start_date DATETIME,
			end_date DATETIME,
			auto_renew INTEGER NOT NULL DEFAULT 0,
			cancelled_at DATETIME,
			cancel_reason TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE payments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			subscription_id INTEGER,
			amount REAL NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT 'TWD',
			payment_method TEXT,
			payment_gateway TEXT,
			merchant_trade_no TEXT,
			transaction_id TEXT,
			status TEXT NOT NULL,
			paid_at DATETIME,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE audit_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER,
			action TEXT NOT NULL,
			entity_type TEXT,
			entity_id TEXT,
			ip_address TEXT,
			user_agent TEXT,
			details TEXT,
			created_at DATETIME NOT NULL
		)`,
	}
	for _, ddl := range schema {
		if _, err := s.db.Exec(ddl); err != nil {
			t.Fatalf("create test schema: %v", err)
		}
	}
	return s
}

// seedUser inserts an account row and returns its id. createdAt spreads
// rows across time so ordering assertions are meaningful.
func seedUser(t *testing.T, s *Store, email, username, passwordHash string, active, verified bool, createdAt time.Time) int64 {
	t.Helper()
	res, err := s.db.Exec(
		`INSERT INTO users (email, username, password_hash, email_verified, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		email, username, passwordHash, verified, active, createdAt)
	if err != nil {
		t.Fatalf("seedUser: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("seedUser id: %v", err)
	}
	return id
}

func TestGetAccountByEmailCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "Admin@Example.com", "admin", "hash", true, true, time.Now())

	acct, err := s.GetAccountByEmail(ctx, "admin@example.COM")
	if err != nil {
		t.Fatalf("GetAccountByEmail: %v", err)
	}
	if acct.Email != "Admin@Example.com" {
		t.Errorf("email = %q, want the stored spelling", acct.Email)
	}
	if !acct.IsActive || !acct.EmailVerified {
		t.Errorf("flags = active %v verified %v, want true/true", acct.IsActive, acct.EmailVerified)
	}
}

func TestGetAccountByEmailNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetAccountByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestTouchLastLogin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := seedUser(t, s, "a@x.com", "a", "hash", true, true, time.Now())

	if err := s.TouchLastLogin(ctx, id); err != nil {
		t.Fatalf("TouchLastLogin: %v", err)
	}

	var last *time.Time
	if err := s.db.Get(&last, "SELECT last_login_at FROM users WHERE id = ?", id); err != nil {
		t.Fatalf("read back: %v", err)
	}
	if last == nil {
		t.Error("last_login_at still null after touch")
	}
}

func TestCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "a@x.com", "a", "h", true, true, time.Now())
	seedUser(t, s, "b@x.com", "b", "h", true, true, time.Now())

	counts := s.Counts(ctx)
	if counts["users"] == nil || *counts["users"] != 2 {
		t.Errorf("users count = %v, want 2", counts["users"])
	}
	if counts["payments"] == nil || *counts["payments"] != 0 {
		t.Errorf("payments count = %v, want 0", counts["payments"])
	}
}

func TestCountsMissingTableIsNull(t *testing.T) {
	s, err := Open(config.DBConfig{Driver: "sqlite"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	// No schema at all: every count fails individually, none aborts the call.
	counts := s.Counts(context.Background())
	for _, table := range []string{"users", "subscriptions", "payments", "audit_logs"} {
		if counts[table] != nil {
			t.Errorf("count for %s = %v, want nil", table, counts[table])
		}
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(config.DBConfig{Driver: "mongodb"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}
