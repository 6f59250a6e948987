package model

// Account is the stored end-user record the gateway authenticates against.
// The gateway never creates or mutates accounts; it only reads them during
// login and exposes read-only projections through the listing endpoints.
type Account struct {
	ID            int64  `db:"id"`
	Email         string `db:"email"`
	PasswordHash  string `db:"password_hash"`
	IsActive      bool   `db:"is_active"`
	EmailVerified bool   `db:"email_verified"`
}

// Identity is the resolved admin principal attached to a request after the
// authorization guard accepts it. ID is nil for key-derived and bypass
// sessions, which have no backing account row.
type Identity struct {
	ID     *int64 `json:"id"`
	Email  string `json:"email"`
	Bypass bool   `json:"bypass,omitempty"`
}

// AuditEntry is the input to the audit sink. Details is a free-form payload
// serialized to JSON on write.
type AuditEntry struct {
	Action     string
	EntityType string
	EntityID   string
	ActorID    *int64
	ActorEmail string
	IPAddress  string
	UserAgent  string
	Details    map[string]interface{}
}
