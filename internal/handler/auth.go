package handler

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/quantgems/adminapi/internal/config"
	"github.com/quantgems/adminapi/internal/model"
	"github.com/quantgems/adminapi/internal/server/middleware"
	"github.com/quantgems/adminapi/internal/service"
	"github.com/quantgems/adminapi/internal/store"
)

// AuthHandler owns the two credential-to-token exchange paths and the
// identity echo endpoint.
type AuthHandler struct {
	store  *store.Store
	tokens *service.TokenService
	cfg    config.AuthConfig
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(st *store.Store, tokens *service.TokenService, cfg config.AuthConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{store: st, tokens: tokens, cfg: cfg, logger: logger}
}

// loginRequest is the expected payload for the Login endpoint.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionData is the success payload of both token-issuing endpoints.
type sessionData struct {
	Token string         `json:"token"`
	Admin model.Identity `json:"admin"`
}

// Login authenticates an operator by email and password and returns a
// bearer token.
// POST /admin/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		writeFail(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if len(h.cfg.AdminEmails) == 0 {
		writeFail(w, http.StatusInternalServerError, "admin allow-list not configured")
		return
	}
	if !h.isAllowListed(email) {
		writeFail(w, http.StatusForbidden, "admin access required")
		return
	}

	acct, err := h.store.GetAccountByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeFail(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		writeFail(w, http.StatusInternalServerError, "login failed: "+err.Error())
		return
	}

	if !acct.IsActive {
		writeFail(w, http.StatusForbidden, "account disabled")
		return
	}
	if !acct.EmailVerified {
		writeFail(w, http.StatusForbidden, "email not verified")
		return
	}

	if !service.VerifyPassword(acct.PasswordHash, req.Password, h.cfg.AllowPlaintextPasswords) {
		writeFail(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := h.tokens.Issue(&acct.ID, acct.Email, service.ViaPassword, service.TokenTTL)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "login failed: "+err.Error())
		return
	}

	// Best-effort; a stale last_login_at never fails a login.
	if err := h.store.TouchLastLogin(r.Context(), acct.ID); err != nil {
		h.logger.Warn("last_login_at refresh failed", "email", acct.Email, "error", err)
	}

	id := acct.ID
	writeOK(w, sessionData{
		Token: token,
		Admin: model.Identity{ID: &id, Email: acct.Email},
	})
}

// exchangeRequest is the expected payload for the ExchangeKey endpoint.
// The key may also arrive in the X-Admin-Access-Key header.
type exchangeRequest struct {
	AccessKey string `json:"accessKey"`
}

// ExchangeKey trades the shared operations access key for a bearer token
// issued to the first allow-listed email.
// POST /admin/exchange-key
func (h *AuthHandler) ExchangeKey(w http.ResponseWriter, r *http.Request) {
	var req exchangeRequest
	// The body is optional; the header form carries no body.
	_ = readJSON(r, &req)

	provided := strings.TrimSpace(req.AccessKey)
	if provided == "" {
		provided = strings.TrimSpace(r.Header.Get("X-Admin-Access-Key"))
	}
	expected := strings.TrimSpace(h.cfg.AccessKey)

	if expected == "" {
		writeFail(w, http.StatusInternalServerError, "access key not configured")
		return
	}
	if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
		writeFail(w, http.StatusUnauthorized, "invalid access key")
		return
	}

	if len(h.cfg.AdminEmails) == 0 {
		writeFail(w, http.StatusInternalServerError, "admin allow-list not configured")
		return
	}

	email := h.cfg.AdminEmails[0]
	token, err := h.tokens.Issue(nil, email, service.ViaAccessKey, service.TokenTTL)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "key exchange failed: "+err.Error())
		return
	}

	writeOK(w, sessionData{
		Token: token,
		Admin: model.Identity{Email: email},
	})
}

// Me echoes the identity the guard resolved for this request.
// GET /admin/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeOK(w, map[string]interface{}{
		"admin": middleware.GetIdentity(r.Context()),
	})
}

func (h *AuthHandler) isAllowListed(email string) bool {
	for _, e := range h.cfg.AdminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}
