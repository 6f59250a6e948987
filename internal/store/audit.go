package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/quantgems/adminapi/internal/model"
)

// InsertAuditEntry appends one audit record. The actor email is folded
// into the details payload so it survives for key-derived sessions that
// have no account row to join against. Errors propagate to the audit
// sink, which discards them.
func (s *Store) InsertAuditEntry(ctx context.Context, e model.AuditEntry) error {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	if e.ActorEmail != "" {
		details["actor_email"] = e.ActorEmail
	}

	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	const q = `INSERT INTO audit_logs
		(user_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, s.db.Rebind(q),
		e.ActorID, e.Action, e.EntityType, e.EntityID,
		e.IPAddress, e.UserAgent, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
