package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/quantgems/adminapi/internal/model"
	"github.com/quantgems/adminapi/internal/service"
)

type contextKeyAuth string

// identityKey is the context key for the resolved admin identity.
const identityKey contextKeyAuth = "admin_identity"

// GuardConfig is everything the authorization guard needs, passed at
// construction. AdminEmails is the complete allow-list, already
// lower-cased; membership is the sole authorization predicate.
type GuardConfig struct {
	AdminEmails       []string
	BypassToken       string
	AllowBypassInProd bool
	Production        bool
}

// bypassPermitted reports whether the configured bypass literal may be
// honored at all. Outside production it always is; in production it
// requires the explicit override.
func (c GuardConfig) bypassPermitted() bool {
	return !c.Production || c.AllowBypassInProd
}

// RequireAdmin returns the request-level authorization gate. Each request
// is either rejected with a 401/403 envelope or proceeds with the
// resolved identity attached to the context:
//
//  1. no bearer token: 401
//  2. token equals the bypass literal while bypass is permitted:
//     authorized with a synthetic identity, token service untouched
//  3. token verification fails: 401, expired distinguished from invalid
//  4. claim email missing, allow-list empty, or email not a member: 403
//
// One verification attempt per request, never retried.
func RequireAdmin(cfg GuardConfig, tokens *service.TokenService) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		allowed[strings.ToLower(e)] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeGuardError(w, http.StatusUnauthorized, "missing token")
				return
			}

			if cfg.BypassToken != "" && token == cfg.BypassToken && cfg.bypassPermitted() {
				identity := &model.Identity{Email: "admin@local", Bypass: true}
				next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				if errors.Is(err, service.ErrTokenExpired) {
					writeGuardError(w, http.StatusUnauthorized, "token expired")
				} else {
					writeGuardError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			email := strings.ToLower(strings.TrimSpace(claims.Email))
			if email == "" || len(allowed) == 0 || !allowed[email] {
				writeGuardError(w, http.StatusForbidden, "admin access required")
				return
			}

			identity := &model.Identity{ID: claims.ID, Email: email}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
		})
	}
}

// GetIdentity extracts the resolved identity from the context. Returns
// nil for unauthenticated requests.
func GetIdentity(ctx context.Context) *model.Identity {
	if id, ok := ctx.Value(identityKey).(*model.Identity); ok {
		return id
	}
	return nil
}

func withIdentity(ctx context.Context, id *model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// bearerToken extracts the token from the Authorization header. An empty
// string means no usable token was presented.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func writeGuardError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.Fail(message))
}
