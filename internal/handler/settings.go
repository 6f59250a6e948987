package handler

import (
	"errors"
	"net/http"
	"sort"

	"github.com/quantgems/adminapi/internal/model"
	"github.com/quantgems/adminapi/internal/server/middleware"
	"github.com/quantgems/adminapi/internal/service"
	"github.com/quantgems/adminapi/internal/store"
)

// SettingsHandler serves the presence settings view and its guarded write
// path. Writes emit an audit entry on success.
type SettingsHandler struct {
	store *store.Store
	audit *service.AuditSink
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(st *store.Store, audit *service.AuditSink) *SettingsHandler {
	return &SettingsHandler{store: st, audit: audit}
}

// GetPresence returns the current presence settings, with defaults for
// keys that were never written.
// GET /admin/settings/presence
func (h *SettingsHandler) GetPresence(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.ReadPresence(r.Context())
	if err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, settings)
}

// PutPresence validates and applies a partial settings update, records an
// audit entry, and returns the full persisted view.
// PUT /admin/settings/presence
func (h *SettingsHandler) PutPresence(w http.ResponseWriter, r *http.Request) {
	var partial map[string]interface{}
	if err := readJSON(r, &partial); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := h.store.WritePresence(r.Context(), partial)
	if err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			writeFail(w, http.StatusBadRequest, verr.Error())
			return
		}
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}

	changed := make([]string, 0, len(partial))
	for key := range partial {
		changed = append(changed, key)
	}
	sort.Strings(changed)

	entry := model.AuditEntry{
		Action:     "settings.presence.update",
		EntityType: "settings",
		EntityID:   "presence",
		IPAddress:  clientIP(r),
		UserAgent:  r.UserAgent(),
		Details:    map[string]interface{}{"changed": changed},
	}
	if id := middleware.GetIdentity(r.Context()); id != nil {
		entry.ActorID = id.ID
		entry.ActorEmail = id.Email
	}
	h.audit.Record(r.Context(), entry)

	writeOK(w, settings)
}
