package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// CredentialRateLimit limits requests per IP on the credential-accepting
// endpoints (login, key exchange) to slow brute-force attempts. Sliding
// window per minute.
func CredentialRateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	return httprate.LimitByIP(requestsPerMinute, time.Minute)
}
