package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired is returned for a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for malformed, tampered, or otherwise
	// unverifiable tokens. Callers surface the two differently.
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenTTL is the fixed lifetime of issued tokens. There is no server-side
// revocation: once issued, a token stays valid until expiry regardless of
// later account state changes.
const TokenTTL = 12 * time.Hour

// ScopeAdmin is the single capability claim carried by issued tokens.
const ScopeAdmin = "admin"

// Issuance path markers.
const (
	ViaPassword  = "password"
	ViaAccessKey = "access_key"
)

// Claims is the JWT payload: a nullable subject id, the subject email,
// the scope literal, and the issuance path.
type Claims struct {
	ID    *int64 `json:"id"`
	Email string `json:"email"`
	Scope string `json:"scope"`
	Via   string `json:"via,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256-signed bearer tokens. It performs
// no I/O; both operations are pure given the configured secret.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService signing with the given symmetric
// secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Issue signs a token for the given identity. id is nil for key-derived
// sessions.
func (s *TokenService) Issue(id *int64, email, via string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		ID:    id,
		Email: email,
		Scope: ScopeAdmin,
		Via:   via,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "adminapi",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature and expiry of a token and returns its
// claims. An expired but otherwise well-formed token fails with
// ErrTokenExpired; anything else fails with ErrTokenInvalid.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
