package handler

import (
	"net/http"
	"time"

	"github.com/quantgems/adminapi/internal/store"
)

// SystemHandler serves liveness and operational status.
type SystemHandler struct {
	store     *store.Store
	env       string
	startedAt time.Time
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(st *store.Store, env string) *SystemHandler {
	return &SystemHandler{store: st, env: env, startedAt: time.Now()}
}

// dbHealth reports store reachability. Error carries the probe failure
// verbatim; this is an internal tool.
type dbHealth struct {
	OK    bool    `json:"ok"`
	Error *string `json:"error"`
}

func (h *SystemHandler) probeDB(r *http.Request) dbHealth {
	if err := h.store.Ping(r.Context()); err != nil {
		msg := err.Error()
		return dbHealth{OK: false, Error: &msg}
	}
	return dbHealth{OK: true}
}

// Health is the unauthenticated liveness probe.
// GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"db":     h.probeDB(r),
	})
}

// Status reports the environment, uptime, store health, and per-collection
// row counts. A failing count reports as null rather than failing the
// endpoint.
// GET /admin/status
func (h *SystemHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeOK(w, map[string]interface{}{
		"env":           h.env,
		"uptimeSeconds": time.Since(h.startedAt).Seconds(),
		"db":            h.probeDB(r),
		"counts":        h.store.Counts(r.Context()),
	})
}
