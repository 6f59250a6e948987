package model

import "time"

// The listing projections below are read-only denormalized views. Joined
// columns come from left joins, so they are pointers: a payment whose
// account was deleted still lists, with user_email null.

// UserRow is one row of the account listing.
type UserRow struct {
	ID                 int64      `db:"id" json:"id"`
	Email              string     `db:"email" json:"email"`
	Username           *string    `db:"username" json:"username"`
	FullName           *string    `db:"full_name" json:"full_name"`
	Plan               *string    `db:"plan" json:"plan"`
	SubscriptionStatus *string    `db:"subscription_status" json:"subscription_status"`
	EmailVerified      bool       `db:"email_verified" json:"email_verified"`
	IsActive           bool       `db:"is_active" json:"is_active"`
	LastLoginAt        *time.Time `db:"last_login_at" json:"last_login_at"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}

// SubscriptionRow is one row of the subscription listing, joined with the
// owning account.
type SubscriptionRow struct {
	ID           int64      `db:"id" json:"id"`
	UserID       int64      `db:"user_id" json:"user_id"`
	UserEmail    *string    `db:"user_email" json:"user_email"`
	UserUsername *string    `db:"user_username" json:"user_username"`
	Plan         string     `db:"plan" json:"plan"`
	Status       string     `db:"status" json:"status"`
	Amount       float64    `db:"amount" json:"amount"`
	Currency     string     `db:"currency" json:"currency"`
	StartDate    *time.Time `db:"start_date" json:"start_date"`
	EndDate      *time.Time `db:"end_date" json:"end_date"`
	AutoRenew    bool       `db:"auto_renew" json:"auto_renew"`
	CancelledAt  *time.Time `db:"cancelled_at" json:"cancelled_at"`
	CancelReason *string    `db:"cancel_reason" json:"cancel_reason"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// PaymentRow is one row of the payment listing, joined with the owning
// account and the related subscription.
type PaymentRow struct {
	ID               int64      `db:"id" json:"id"`
	UserID           int64      `db:"user_id" json:"user_id"`
	UserEmail        *string    `db:"user_email" json:"user_email"`
	SubscriptionID   *int64     `db:"subscription_id" json:"subscription_id"`
	SubscriptionPlan *string    `db:"subscription_plan" json:"subscription_plan"`
	Amount           float64    `db:"amount" json:"amount"`
	Currency         string     `db:"currency" json:"currency"`
	PaymentMethod    *string    `db:"payment_method" json:"payment_method"`
	PaymentGateway   *string    `db:"payment_gateway" json:"payment_gateway"`
	MerchantTradeNo  *string    `db:"merchant_trade_no" json:"merchant_trade_no"`
	TransactionID    *string    `db:"transaction_id" json:"transaction_id"`
	Status           string     `db:"status" json:"status"`
	PaidAt           *time.Time `db:"paid_at" json:"paid_at"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

// AuditLogRow is one row of the audit listing, joined with the actor's
// account where one exists.
type AuditLogRow struct {
	ID         int64     `db:"id" json:"id"`
	UserID     *int64    `db:"user_id" json:"user_id"`
	UserEmail  *string   `db:"user_email" json:"user_email"`
	Action     string    `db:"action" json:"action"`
	EntityType *string   `db:"entity_type" json:"entity_type"`
	EntityID   *string   `db:"entity_id" json:"entity_id"`
	IPAddress  *string   `db:"ip_address" json:"ip_address"`
	UserAgent  *string   `db:"user_agent" json:"user_agent"`
	Details    RawJSON   `db:"details" json:"details"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
