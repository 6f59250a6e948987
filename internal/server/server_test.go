package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appconfig "github.com/quantgems/adminapi/internal/config"
	"github.com/quantgems/adminapi/internal/service"
	"github.com/quantgems/adminapi/internal/store"
)

const (
	testJWTSecret = "test-secret-for-gateway-integration-tests"
	testPassword  = "supersecretpassword"
	testAdmin     = "admin@example.com"
	testAccessKey = "ops-access-key"
)

// testEnv holds the shared state for integration tests: an in-memory
// SQLite store with the external schema, and a fully wired Server.
type testEnv struct {
	server *Server
	store  *store.Store
	app    appconfig.Config
}

// newTestEnv builds a fresh environment. Mutators adjust the app config
// before the server is wired, for the misconfiguration cases.
func newTestEnv(t *testing.T, mutate ...func(*appconfig.Config)) *testEnv {
	t.Helper()

	st, err := store.Open(appconfig.DBConfig{Driver: "sqlite"})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	createSchema(t, st)

	app := appconfig.Config{
		Env: "development",
		Auth: appconfig.AuthConfig{
			JWTSecret:      testJWTSecret,
			AdminEmails:    []string{testAdmin, "second@example.com"},
			AccessKey:      testAccessKey,
			DevBypassToken: "dev-bypass-token",
		},
	}
	for _, m := range mutate {
		m(&app)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := service.NewTokenService(app.Auth.JWTSecret)
	audit := service.NewAuditSink(st, logger)

	srv := New(DefaultConfig(), app, st, tokens, audit, logger)
	return &testEnv{server: srv, store: st, app: app}
}

func createSchema(t *testing.T, st *store.Store) {
	t.Helper()
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
		if _, err := st.DB().Exec(ddl); err != nil {
			t.Fatalf("create test schema: %v", err)
		}
	}
}

// seedAdmin inserts the default allow-listed account with a real bcrypt
// hash, active and verified unless flags say otherwise.
func (e *testEnv) seedAdmin(t *testing.T, active, verified bool) int64 {
	t.Helper()
	hash, err := service.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	res, err := e.store.DB().Exec(
		`INSERT INTO users (email, username, password_hash, email_verified, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		testAdmin, "admin", hash, verified, active, time.Now().UTC())
	if err != nil {
		t.Fatalf("seedAdmin: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doAuth(t *testing.T, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, method, path, body, map[string]string{"Authorization": "Bearer " + token})
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(b)
}

// envelope mirrors the wire shape with data left raw for per-test decoding.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope from %q: %v", rec.Body.String(), err)
	}
	return env
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

// login performs a password login for the seeded admin and returns the token.
func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/admin/login",
		jsonBody(t, map[string]string{"email": testAdmin, "password": testPassword}), nil)
	assertStatus(t, rec, http.StatusOK)

	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
		t.Fatalf("decode login data: %v", err)
	}
	if data.Token == "" {
		t.Fatal("login returned empty token")
	}
	return data.Token
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestLoginSuccess(t *testing.T) {
	e := newTestEnv(t)
	id := e.seedAdmin(t, true, true)

	rec := e.do(t, http.MethodPost, "/admin/login",
		jsonBody(t, map[string]string{"email": testAdmin, "password": testPassword}), nil)
	assertStatus(t, rec, http.StatusOK)

	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("success = false: %s", env.Message)
	}
	var data struct {
		Token string `json:"token"`
		Admin struct {
			ID    *int64 `json:"id"`
			Email string `json:"email"`
		} `json:"admin"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Admin.ID == nil || *data.Admin.ID != id {
		t.Errorf("admin.id = %v, want %d", data.Admin.ID, id)
	}
	if data.Admin.Email != testAdmin {
		t.Errorf("admin.email = %q", data.Admin.Email)
	}

	// The login refreshed last_login_at.
	var last *time.Time
	if err := e.store.DB().Get(&last, "SELECT last_login_at FROM users WHERE id = ?", id); err != nil {
		t.Fatalf("read last_login_at: %v", err)
	}
	if last == nil {
		t.Error("last_login_at not refreshed by login")
	}
}

func TestLoginEmailCaseInsensitive(t *testing.T) {
	e := newTestEnv(t)
	e.seedAdmin(t, true, true)

	rec := e.do(t, http.MethodPost, "/admin/login",
		jsonBody(t, map[string]string{"email": "Admin@Example.COM", "password": testPassword}), nil)
	assertStatus(t, rec, http.StatusOK)
}

func TestLoginRejections(t *testing.T) {
	e := newTestEnv(t)
	e.seedAdmin(t, true, true)

	cases := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantMsg    string
	}{
		{"missing email", map[string]string{"password": testPassword}, http.StatusBadRequest, "email and password are required"},
		{"missing password", map[string]string{"email": testAdmin}, http.StatusBadRequest, "email and password are required"},
		{"not allow-listed", map[string]string{"email": "intruder@example.com", "password": testPassword}, http.StatusForbidden, "admin access required"},
		{"allow-listed but unknown", map[string]string{"email": "second@example.com", "password": testPassword}, http.StatusUnauthorized, "invalid email or password"},
		{"wrong password", map[string]string{"email": testAdmin, "password": "nope"}, http.StatusUnauthorized, "invalid email or password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := e.do(t, http.MethodPost, "/admin/login", jsonBody(t, tc.body), nil)
			assertStatus(t, rec, tc.wantStatus)
			if env := decodeEnvelope(t, rec); env.Message != tc.wantMsg {
				t.Errorf("message = %q, want %q", env.Message, tc.wantMsg)
			}
		})
	}
}

func TestLoginAccountStateRejections(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		e := newTestEnv(t)
		e.seedAdmin(t, false, true)
		rec := e.do(t, http.MethodPost, "/admin/login",
			jsonBody(t, map[string]string{"email": testAdmin, "password": testPassword}), nil)
		assertStatus(t, rec, http.StatusForbidden)
		if env := decodeEnvelope(t, rec); env.Message != "account disabled" {
			t.Errorf("message = %q", env.Message)
		}
	})

	t.Run("unverified", func(t *testing.T) {
		e := newTestEnv(t)
		e.seedAdmin(t, true, false)
		rec := e.do(t, http.MethodPost, "/admin/login",
			jsonBody(t, map[string]string{"email": testAdmin, "password": testPassword}), nil)
		assertStatus(t, rec, http.StatusForbidden)
		if env := decodeEnvelope(t, rec); env.Message != "email not verified" {
			t.Errorf("message = %q", env.Message)
		}
	})
}

func TestLoginEmptyAllowListIsMisconfiguration(t *testing.T) {
	e := newTestEnv(t, func(c *appconfig.Config) { c.Auth.AdminEmails = nil })
	e.seedAdmin(t, true, true)

	rec := e.do(t, http.MethodPost, "/admin/login",
		jsonBody(t, map[string]string{"email": testAdmin, "password": testPassword}), nil)
	assertStatus(t, rec, http.StatusInternalServerError)
}

// ---------------------------------------------------------------------------
// Key exchange
// ---------------------------------------------------------------------------

func TestExchangeKey(t *testing.T) {
	e := newTestEnv(t)

	check := func(t *testing.T, rec *httptest.ResponseRecorder) {
		assertStatus(t, rec, http.StatusOK)
		var data struct {
			Token string `json:"token"`
			Admin struct {
				ID    *int64 `json:"id"`
				Email string `json:"email"`
			} `json:"admin"`
		}
		if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if data.Admin.ID != nil {
			t.Errorf("admin.id = %v, want null", data.Admin.ID)
		}
		// The token is issued for the first allow-list entry.
		if data.Admin.Email != testAdmin {
			t.Errorf("admin.email = %q, want %q", data.Admin.Email, testAdmin)
		}
		if data.Token == "" {
			t.Error("empty token")
		}
	}

	t.Run("body", func(t *testing.T) {
		check(t, e.do(t, http.MethodPost, "/admin/exchange-key",
			jsonBody(t, map[string]string{"accessKey": testAccessKey}), nil))
	})
	t.Run("header", func(t *testing.T) {
		check(t, e.do(t, http.MethodPost, "/admin/exchange-key", nil,
			map[string]string{"X-Admin-Access-Key": testAccessKey}))
	})
}

func TestExchangeKeyRejections(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/admin/exchange-key",
		jsonBody(t, map[string]string{"accessKey": "wrong"}), nil)
	assertStatus(t, rec, http.StatusUnauthorized)

	rec = e.do(t, http.MethodPost, "/admin/exchange-key", nil, nil)
	assertStatus(t, rec, http.StatusUnauthorized)
}

func TestExchangeKeyUnsetIsMisconfiguration(t *testing.T) {
	e := newTestEnv(t, func(c *appconfig.Config) { c.Auth.AccessKey = "" })

	rec := e.do(t, http.MethodPost, "/admin/exchange-key",
		jsonBody(t, map[string]string{"accessKey": testAccessKey}), nil)
	assertStatus(t, rec, http.StatusInternalServerError)
}

// ---------------------------------------------------------------------------
// Guarded surface
// ---------------------------------------------------------------------------

func TestGuardedEndpointsRequireToken(t *testing.T) {
	e := newTestEnv(t)
	for _, path := range []string{
		"/admin/me", "/admin/status", "/admin/settings/presence",
		"/admin/users", "/admin/subscriptions", "/admin/payments", "/admin/audit-logs",
	} {
		if rec := e.do(t, http.MethodGet, path, nil, nil); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s without token: status = %d, want 401", path, rec.Code)
		}
	}
}

func TestMe(t *testing.T) {
	e := newTestEnv(t)
	e.seedAdmin(t, true, true)
	token := e.login(t)

	rec := e.doAuth(t, http.MethodGet, "/admin/me", nil, token)
	assertStatus(t, rec, http.StatusOK)

	var data struct {
		Admin struct {
			Email  string `json:"email"`
			Bypass bool   `json:"bypass"`
		} `json:"admin"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Admin.Email != testAdmin || data.Admin.Bypass {
		t.Errorf("admin = %+v", data.Admin)
	}
}

func TestBypassTokenInDevelopment(t *testing.T) {
	e := newTestEnv(t)

	rec := e.doAuth(t, http.MethodGet, "/admin/me", nil, "dev-bypass-token")
	assertStatus(t, rec, http.StatusOK)

	var data struct {
		Admin struct {
			Email  string `json:"email"`
			Bypass bool   `json:"bypass"`
		} `json:"admin"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !data.Admin.Bypass || data.Admin.Email != "admin@local" {
		t.Errorf("admin = %+v, want synthetic bypass identity", data.Admin)
	}
}

func TestBypassTokenBlockedInProduction(t *testing.T) {
	e := newTestEnv(t, func(c *appconfig.Config) { c.Env = "production" })

	rec := e.doAuth(t, http.MethodGet, "/admin/me", nil, "dev-bypass-token")
	assertStatus(t, rec, http.StatusUnauthorized)
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/health", nil, nil)
	assertStatus(t, rec, http.StatusOK)

	var body struct {
		Status string `json:"status"`
		DB     struct {
			OK bool `json:"ok"`
		} `json:"db"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || !body.DB.OK {
		t.Errorf("health = %+v", body)
	}
}

func TestStatus(t *testing.T) {
	e := newTestEnv(t)
	e.seedAdmin(t, true, true)
	token := e.login(t)

	rec := e.doAuth(t, http.MethodGet, "/admin/status", nil, token)
	assertStatus(t, rec, http.StatusOK)

	var data struct {
		Env    string           `json:"env"`
		Uptime float64          `json:"uptimeSeconds"`
		DB     struct{ OK bool } `json:"db"`
		Counts map[string]*int64 `json:"counts"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Env != "development" {
		t.Errorf("env = %q", data.Env)
	}
	if data.Counts["users"] == nil || *data.Counts["users"] != 1 {
		t.Errorf("users count = %v, want 1", data.Counts["users"])
	}
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

func TestSettingsReadDefaults(t *testing.T) {
	e := newTestEnv(t)
	e.seedAdmin(t, true, true)
	token := e.login(t)

	rec := e.doAuth(t, http.MethodGet, "/admin/settings/presence", nil, token)
	assertStatus(t, rec, http.StatusOK)

	var data struct {
		MaxOnlineUsers        int  `json:"max_online_users"`
		EnableQueue           bool `json:"enable_queue"`
		BlockQueuedWriteHeavy bool `json:"block_queued_write_heavy"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.MaxOnlineUsers != 0 || data.EnableQueue || !data.BlockQueuedWriteHeavy {
		t.Errorf("defaults = %+v", data)
	}
}

func TestSettingsUpdateAndAudit(t *testing.T) {
	e := newTestEnv(t)
	e.seedAdmin(t, true, true)
	token := e.login(t)

	rec := e.doAuth(t, http.MethodPut, "/admin/settings/presence",
		jsonBody(t, map[string]interface{}{"max_online_users": 5, "enable_queue": true}), token)
	assertStatus(t, rec, http.StatusOK)

	var data struct {
		MaxOnlineUsers        int  `json:"max_online_users"`
		EnableQueue           bool `json:"enable_queue"`
		BlockQueuedWriteHeavy bool `json:"block_queued_write_heavy"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.MaxOnlineUsers != 5 || !data.EnableQueue || !data.BlockQueuedWriteHeavy {
		t.Errorf("settings after write = %+v", data)
	}

	// The write left an audit entry naming the changed keys and the actor.
	rec = e.doAuth(t, http.MethodGet, "/admin/audit-logs?action=settings.presence.update", nil, token)
	assertStatus(t, rec, http.StatusOK)
	var listing struct {
		AuditLogs []struct {
			Action  string          `json:"action"`
			Details json.RawMessage `json:"details"`
		} `json:"auditLogs"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(listing.AuditLogs) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(listing.AuditLogs))
	}
	var details struct {
		Changed    []string `json:"changed"`
		ActorEmail string   `json:"actor_email"`
	}
	if err := json.Unmarshal(listing.AuditLogs[0].Details, &details); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if len(details.Changed) != 2 || details.Changed[0] != "enable_queue" || details.Changed[1] != "max_online_users" {
		t.Errorf("changed = %v", details.Changed)
	}
	if details.ActorEmail != testAdmin {
		t.Errorf("actor_email = %q", details.ActorEmail)
	}
}

func TestSettingsRejectsBadValueWithoutPersisting(t *testing.T) {
	e := newTestEnv(t)
	e.seedAdmin(t, true, true)
	token := e.login(t)

	rec := e.doAuth(t, http.MethodPut, "/admin/settings/presence",
		jsonBody(t, map[string]interface{}{"max_online_users": -1}), token)
	assertStatus(t, rec, http.StatusBadRequest)
	if env := decodeEnvelope(t, rec); env.Message == "" ||
		!bytes.Contains([]byte(env.Message), []byte("max_online_users")) {
		t.Errorf("message = %q, want the offending key named", env.Message)
	}

	// State unchanged from defaults.
	rec = e.doAuth(t, http.MethodGet, "/admin/settings/presence", nil, token)
	assertStatus(t, rec, http.StatusOK)
	var data struct {
		MaxOnlineUsers int `json:"max_online_users"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.MaxOnlineUsers != 0 {
		t.Errorf("max_online_users = %d after rejected write, want 0", data.MaxOnlineUsers)
	}
}

// ---------------------------------------------------------------------------
// Listings
// ---------------------------------------------------------------------------

func TestListingsThroughGateway(t *testing.T) {
	e := newTestEnv(t)
	id := e.seedAdmin(t, true, true)
	token := e.login(t)

	if _, err := e.store.DB().Exec(
		`INSERT INTO subscriptions (user_id, plan, status, created_at) VALUES (?, 'pro', 'active', ?)`,
		id, time.Now().UTC()); err != nil {
		t.Fatalf("seed subscription: %v", err)
	}
	if _, err := e.store.DB().Exec(
		`INSERT INTO payments (user_id, status, payment_gateway, created_at) VALUES (?, 'paid', 'ecpay', ?)`,
		id, time.Now().UTC()); err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	t.Run("users", func(t *testing.T) {
		rec := e.doAuth(t, http.MethodGet, "/admin/users?q=admin", nil, token)
		assertStatus(t, rec, http.StatusOK)
		var data struct {
			Users []struct {
				Email string `json:"email"`
			} `json:"users"`
		}
		if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(data.Users) != 1 || data.Users[0].Email != testAdmin {
			t.Errorf("users = %+v", data.Users)
		}
	})

	t.Run("subscriptions filtered", func(t *testing.T) {
		rec := e.doAuth(t, http.MethodGet, "/admin/subscriptions?status=active&plan=pro", nil, token)
		assertStatus(t, rec, http.StatusOK)
		var data struct {
			Subscriptions []struct {
				Plan      string  `json:"plan"`
				UserEmail *string `json:"user_email"`
			} `json:"subscriptions"`
		}
		if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(data.Subscriptions) != 1 || data.Subscriptions[0].UserEmail == nil {
			t.Fatalf("subscriptions = %+v", data.Subscriptions)
		}

		rec = e.doAuth(t, http.MethodGet, "/admin/subscriptions?status=cancelled", nil, token)
		assertStatus(t, rec, http.StatusOK)
		if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(data.Subscriptions) != 0 {
			t.Errorf("cancelled filter matched %d rows", len(data.Subscriptions))
		}
	})

	t.Run("payments", func(t *testing.T) {
		rec := e.doAuth(t, http.MethodGet, "/admin/payments?gateway=ecpay", nil, token)
		assertStatus(t, rec, http.StatusOK)
		var data struct {
			Payments []struct {
				Status string `json:"status"`
			} `json:"payments"`
		}
		if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(data.Payments) != 1 || data.Payments[0].Status != "paid" {
			t.Errorf("payments = %+v", data.Payments)
		}
	})
}

// ---------------------------------------------------------------------------
// Rate limiting
// ---------------------------------------------------------------------------

func TestCredentialRateLimit(t *testing.T) {
	e := newTestEnv(t)

	body := func() io.Reader {
		return jsonBody(t, map[string]string{"email": "x@y.z", "password": "p"})
	}

	// DefaultConfig allows 10 per minute per IP; the 11th is rejected.
	for i := 0; i < 10; i++ {
		rec := e.do(t, http.MethodPost, "/admin/login", body(), nil)
		if rec.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d already rate-limited", i+1)
		}
	}
	rec := e.do(t, http.MethodPost, "/admin/login", body(), nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("11th request: status = %d, want 429", rec.Code)
	}
}
