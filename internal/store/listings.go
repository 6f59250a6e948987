package store

import (
	"context"
	"fmt"

	"github.com/quantgems/adminapi/internal/model"
	"github.com/quantgems/adminapi/internal/query"
)

// Per-collection pagination bounds. Audit entries allow deeper pages
// because operators scan them in bulk.
const (
	DefaultLimit = 50
	MaxLimit     = 200

	AuditDefaultLimit = 100
	AuditMaxLimit     = 500
)

// UserFilter narrows the account listing.
type UserFilter struct {
	Search string
}

// SubscriptionFilter narrows the subscription listing.
type SubscriptionFilter struct {
	Search string
	Status string
	Plan   string
}

// PaymentFilter narrows the payment listing.
type PaymentFilter struct {
	Search  string
	Status  string
	Gateway string
}

// AuditFilter narrows the audit listing.
type AuditFilter struct {
	Search string
	Action string
}

// ListUsers returns accounts matching the filter, newest first.
func (s *Store) ListUsers(ctx context.Context, f UserFilter, page query.Page) ([]model.UserRow, error) {
	var b query.Builder
	b.Contains(f.Search, "u.email", "u.username")
	where, args := b.Where()

	q := `SELECT u.id, u.email, u.username, u.full_name, u.plan, u.subscription_status,
			u.email_verified, u.is_active, u.last_login_at, u.created_at
		FROM users u` + where + `
		ORDER BY u.created_at DESC LIMIT ? OFFSET ?`
	args = append(args, page.Limit, page.Offset)

	rows := []model.UserRow{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return rows, nil
}

// ListSubscriptions returns subscriptions matching the filter, newest
// first, each joined with its owning account. The join is a left join so
// that orphaned subscriptions still list.
func (s *Store) ListSubscriptions(ctx context.Context, f SubscriptionFilter, page query.Page) ([]model.SubscriptionRow, error) {
	var b query.Builder
	b.Contains(f.Search, "u.email", "u.username")
	b.Equal("s.status", f.Status)
	b.Equal("s.plan", f.Plan)
	where, args := b.Where()

	q := `SELECT s.id, s.user_id, u.email AS user_email, u.username AS user_username,
			s.plan, s.status, s.amount, s.currency, s.start_date, s.end_date,
			s.auto_renew, s.cancelled_at, s.cancel_reason, s.created_at
		FROM subscriptions s
		LEFT JOIN users u ON u.id = s.user_id` + where + `
		ORDER BY s.created_at DESC LIMIT ? OFFSET ?`
	args = append(args, page.Limit, page.Offset)

	rows := []model.SubscriptionRow{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return rows, nil
}

// ListPayments returns payments matching the filter, newest first, joined
// with the owning account and the related subscription.
func (s *Store) ListPayments(ctx context.Context, f PaymentFilter, page query.Page) ([]model.PaymentRow, error) {
	var b query.Builder
	b.Contains(f.Search, "u.email", "p.merchant_trade_no", "p.transaction_id")
	b.Equal("p.status", f.Status)
	b.Equal("p.payment_gateway", f.Gateway)
	where, args := b.Where()

	q := `SELECT p.id, p.user_id, u.email AS user_email, p.subscription_id,
			s.plan AS subscription_plan, p.amount, p.currency, p.payment_method,
			p.payment_gateway, p.merchant_trade_no, p.transaction_id, p.status,
			p.paid_at, p.created_at
		FROM payments p
		LEFT JOIN users u ON u.id = p.user_id
		LEFT JOIN subscriptions s ON s.id = p.subscription_id` + where + `
		ORDER BY p.created_at DESC LIMIT ? OFFSET ?`
	args = append(args, page.Limit, page.Offset)

	rows := []model.PaymentRow{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return rows, nil
}

// ListAuditLogs returns audit entries matching the filter, newest first,
// joined with the actor's account where one exists.
func (s *Store) ListAuditLogs(ctx context.Context, f AuditFilter, page query.Page) ([]model.AuditLogRow, error) {
	var b query.Builder
	b.Contains(f.Search, "u.email", "a.action", "a.entity_type", "a.ip_address")
	b.Equal("a.action", f.Action)
	where, args := b.Where()

	q := `SELECT a.id, a.user_id, u.email AS user_email, a.action, a.entity_type,
			a.entity_id, a.ip_address, a.user_agent, a.details, a.created_at
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.user_id` + where + `
		ORDER BY a.created_at DESC LIMIT ? OFFSET ?`
	args = append(args, page.Limit, page.Offset)

	rows := []model.AuditLogRow{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return rows, nil
}
