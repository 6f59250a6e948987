package service

import (
	"context"
	"log/slog"

	"github.com/quantgems/adminapi/internal/model"
)

// auditWriter is the slice of the store the sink needs.
type auditWriter interface {
	InsertAuditEntry(ctx context.Context, e model.AuditEntry) error
}

// AuditSink appends audit entries after privileged mutations. Writes are
// best-effort: a persistence failure is logged and discarded so that
// losing an audit record never fails an otherwise-successful mutation.
type AuditSink struct {
	store  auditWriter
	logger *slog.Logger
}

// NewAuditSink creates an AuditSink writing through the given store.
func NewAuditSink(store auditWriter, logger *slog.Logger) *AuditSink {
	return &AuditSink{store: store, logger: logger}
}

// Record appends one audit entry. It never returns an error.
func (s *AuditSink) Record(ctx context.Context, e model.AuditEntry) {
	if err := s.store.InsertAuditEntry(ctx, e); err != nil {
		s.logger.Warn("audit write failed",
			"action", e.Action,
			"entity_type", e.EntityType,
			"error", err,
		)
	}
}
