package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/quantgems/adminapi/internal/config"
	"github.com/quantgems/adminapi/internal/handler"
	"github.com/quantgems/adminapi/internal/openapi"
	"github.com/quantgems/adminapi/internal/server/middleware"
	"github.com/quantgems/adminapi/internal/service"
	"github.com/quantgems/adminapi/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	// CredentialRate is the per-IP requests-per-minute cap on the two
	// token-issuing endpoints.
	CredentialRate int
}

// DefaultConfig returns a Config with sensible defaults. CORS reflects any
// origin with credentials allowed; the gateway is an internal tool that
// lives behind the operations network, not a public API.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            4010,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		CredentialRate:  10,
	}
}

// Server is the top-level HTTP server for the admin gateway. It owns the
// chi router and the wiring between the store, the token service, and the
// endpoint handlers.
type Server struct {
	cfg        Config
	app        config.Config
	router     chi.Router
	store      *store.Store
	tokens     *service.TokenService
	audit      *service.AuditSink
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Server, wires up all routes and middleware, and
// returns it ready to listen. Call ListenAndServe to start accepting
// connections.
func New(cfg Config, app config.Config, st *store.Store, tokens *service.TokenService, audit *service.AuditSink, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		app:    app,
		store:  st,
		tokens: tokens,
		audit:  audit,
		logger: logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Access-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handler.NewAuthHandler(s.store, s.tokens, s.app.Auth, s.logger)
	systemHandler := handler.NewSystemHandler(s.store, s.app.Env)
	listingHandler := handler.NewListingHandler(s.store)
	settingsHandler := handler.NewSettingsHandler(s.store, s.audit)

	// --- Unauthenticated surface ---
	r.Get("/health", systemHandler.Health)
	r.Get("/openapi.json", openapi.Handler())

	// Credential endpoints are unauthenticated but rate-limited per IP.
	r.Group(func(r chi.Router) {
		r.Use(middleware.CredentialRateLimit(s.cfg.CredentialRate))
		r.Post("/admin/login", authHandler.Login)
		r.Post("/admin/exchange-key", authHandler.ExchangeKey)
	})

	// --- Guarded admin surface ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(middleware.GuardConfig{
			AdminEmails:       s.app.Auth.AdminEmails,
			BypassToken:       s.app.Auth.DevBypassToken,
			AllowBypassInProd: s.app.Auth.AllowBypassInProd,
			Production:        s.app.IsProduction(),
		}, s.tokens))

		r.Get("/admin/me", authHandler.Me)
		r.Get("/admin/status", systemHandler.Status)

		r.Get("/admin/settings/presence", settingsHandler.GetPresence)
		r.Put("/admin/settings/presence", settingsHandler.PutPresence)

		r.Get("/admin/users", listingHandler.Users)
		r.Get("/admin/subscriptions", listingHandler.Subscriptions)
		r.Get("/admin/payments", listingHandler.Payments)
		r.Get("/admin/audit-logs", listingHandler.AuditLogs)
	})

	s.router = r
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or
// SIGTERM is received. It then performs a graceful shutdown, draining
// in-flight requests before closing the store.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr, "env", s.app.Env)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := s.store.Close(); err != nil {
		s.logger.Warn("store close failed", "error", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
