package handler

import (
	"net/http"
	"strings"

	"github.com/quantgems/adminapi/internal/query"
	"github.com/quantgems/adminapi/internal/store"
)

// ListingHandler serves the four read-only collection views.
type ListingHandler struct {
	store *store.Store
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(st *store.Store) *ListingHandler {
	return &ListingHandler{store: st}
}

func listingPage(r *http.Request, defaultLimit, maxLimit int) query.Page {
	return query.NewPage(
		queryInt(r, "limit", 0),
		queryInt(r, "offset", 0),
		defaultLimit,
		maxLimit,
	)
}

func trimmedQuery(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// Users lists accounts.
// GET /admin/users?q=&limit=&offset=
func (h *ListingHandler) Users(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListUsers(r.Context(),
		store.UserFilter{Search: trimmedQuery(r, "q")},
		listingPage(r, store.DefaultLimit, store.MaxLimit),
	)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, map[string]interface{}{"users": rows})
}

// Subscriptions lists subscriptions with their owning accounts.
// GET /admin/subscriptions?q=&status=&plan=&limit=&offset=
func (h *ListingHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListSubscriptions(r.Context(),
		store.SubscriptionFilter{
			Search: trimmedQuery(r, "q"),
			Status: trimmedQuery(r, "status"),
			Plan:   trimmedQuery(r, "plan"),
		},
		listingPage(r, store.DefaultLimit, store.MaxLimit),
	)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, map[string]interface{}{"subscriptions": rows})
}

// Payments lists payments with their owning accounts and subscriptions.
// GET /admin/payments?q=&status=&gateway=&limit=&offset=
func (h *ListingHandler) Payments(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListPayments(r.Context(),
		store.PaymentFilter{
			Search:  trimmedQuery(r, "q"),
			Status:  trimmedQuery(r, "status"),
			Gateway: trimmedQuery(r, "gateway"),
		},
		listingPage(r, store.DefaultLimit, store.MaxLimit),
	)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, map[string]interface{}{"payments": rows})
}

// AuditLogs lists audit entries with their actors.
// GET /admin/audit-logs?q=&action=&limit=&offset=
func (h *ListingHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListAuditLogs(r.Context(),
		store.AuditFilter{
			Search: trimmedQuery(r, "q"),
			Action: trimmedQuery(r, "action"),
		},
		listingPage(r, store.AuditDefaultLimit, store.AuditMaxLimit),
	)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeOK(w, map[string]interface{}{"auditLogs": rows})
}
