package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/quantgems/adminapi/internal/model"
)

// GetAccountByEmail looks up an account for authentication. The match is
// case-insensitive on both sides so that stored mixed-case emails still
// authenticate.
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	const q = `SELECT id, email, password_hash, is_active, email_verified
		FROM users WHERE lower(email) = lower(?)`

	var acct model.Account
	if err := s.db.GetContext(ctx, &acct, s.db.Rebind(q), email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return &acct, nil
}

// TouchLastLogin refreshes the account's last_login_at timestamp.
func (s *Store) TouchLastLogin(ctx context.Context, id int64) error {
	const q = `UPDATE users SET last_login_at = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(q), time.Now().UTC(), id); err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}
