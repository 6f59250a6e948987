package store

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/quantgems/adminapi/internal/model"
)

// ValidationError rejects a settings write before any persistence. Key
// names the offending setting for the operator-facing message.
type ValidationError struct {
	Key    string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Key, e.Reason)
}

// EnsureInitialized creates the presence_settings table on first use.
// Concurrent first-time callers all await the same in-flight creation
// rather than each submitting their own CREATE; after the first success
// this is a cheap atomic load for the rest of the process lifetime. A
// failed attempt leaves the flag unset so a later caller retries.
func (s *Store) EnsureInitialized(ctx context.Context) error {
	if s.settingsReady.Load() {
		return nil
	}

	_, err, _ := s.initGroup.Do("presence_settings", func() (interface{}, error) {
		if s.settingsReady.Load() {
			return nil, nil
		}
		s.initRuns.Add(1)
		if _, err := s.db.ExecContext(ctx, s.dialect.createSettings); err != nil {
			return nil, fmt.Errorf("create presence_settings: %w", err)
		}
		s.settingsReady.Store(true)
		return nil, nil
	})
	return err
}

// ReadPresence fetches all presence settings in one query. Keys that have
// never been written, and stored values that no longer parse, fall back
// to the hard-coded defaults.
func (s *Store) ReadPresence(ctx context.Context) (model.PresenceSettings, error) {
	settings := model.DefaultPresenceSettings()

	if err := s.EnsureInitialized(ctx); err != nil {
		return settings, err
	}

	const q = `SELECT name, value FROM presence_settings WHERE name IN (?, ?, ?)`
	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(q),
		model.SettingMaxOnlineUsers, model.SettingEnableQueue, model.SettingBlockQueuedWriteHeavy)
	if err != nil {
		return settings, fmt.Errorf("read presence settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return settings, fmt.Errorf("scan presence setting: %w", err)
		}
		switch name {
		case model.SettingMaxOnlineUsers:
			if n, err := strconv.Atoi(value); err == nil && n >= 0 {
				settings.MaxOnlineUsers = n
			}
		case model.SettingEnableQueue:
			if b, err := strconv.ParseBool(value); err == nil {
				settings.EnableQueue = b
			}
		case model.SettingBlockQueuedWriteHeavy:
			if b, err := strconv.ParseBool(value); err == nil {
				settings.BlockQueuedWriteHeavy = b
			}
		}
	}
	if err := rows.Err(); err != nil {
		return settings, fmt.Errorf("iterate presence settings: %w", err)
	}

	return settings, nil
}

// WritePresence validates and upserts the supplied keys, leaving omitted
// keys untouched. Validation of every supplied key happens before any
// persistence, so a single bad value rejects the whole write. The
// returned view is re-read from storage after the upserts.
func (s *Store) WritePresence(ctx context.Context, partial map[string]interface{}) (model.PresenceSettings, error) {
	if err := s.EnsureInitialized(ctx); err != nil {
		return model.PresenceSettings{}, err
	}

	canonical := make(map[string]string, len(partial))
	for key, raw := range partial {
		switch key {
		case model.SettingMaxOnlineUsers:
			n, err := parseNonNegativeInt(raw)
			if err != nil {
				return model.PresenceSettings{}, &ValidationError{Key: key, Reason: err.Error()}
			}
			canonical[key] = strconv.Itoa(n)
		case model.SettingEnableQueue, model.SettingBlockQueuedWriteHeavy:
			b, err := parseBoolValue(raw)
			if err != nil {
				return model.PresenceSettings{}, &ValidationError{Key: key, Reason: err.Error()}
			}
			canonical[key] = strconv.FormatBool(b)
		default:
			return model.PresenceSettings{}, &ValidationError{Key: key, Reason: "unknown setting"}
		}
	}

	now := time.Now().UTC()
	upsert := s.db.Rebind(s.dialect.upsertSetting)
	// Iterate the fixed key order for deterministic write order.
	for _, key := range []string{model.SettingMaxOnlineUsers, model.SettingEnableQueue, model.SettingBlockQueuedWriteHeavy} {
		value, ok := canonical[key]
		if !ok {
			continue
		}
		if _, err := s.db.ExecContext(ctx, upsert, key, value, now); err != nil {
			return model.PresenceSettings{}, fmt.Errorf("upsert setting %s: %w", key, err)
		}
	}

	return s.ReadPresence(ctx)
}

// parseNonNegativeInt accepts JSON numbers that are integral and >= 0,
// and decimal strings of the same.
func parseNonNegativeInt(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("must be an integer")
		}
		if v < 0 {
			return 0, fmt.Errorf("must not be negative")
		}
		return int(v), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("must not be negative")
		}
		return v, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("must be an integer")
		}
		if n < 0 {
			return 0, fmt.Errorf("must not be negative")
		}
		return n, nil
	default:
		return 0, fmt.Errorf("must be an integer")
	}
}

// parseBoolValue accepts JSON booleans, the numbers 1 and 0, and a fixed
// vocabulary of truthy/falsy spellings. Anything else is invalid.
func parseBoolValue(raw interface{}) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case float64:
		if v == 1 {
			return true, nil
		}
		if v == 0 {
			return false, nil
		}
		return false, fmt.Errorf("must be a boolean")
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on":
			return true, nil
		case "false", "0", "no", "off":
			return false, nil
		}
		return false, fmt.Errorf("must be a boolean")
	default:
		return false, fmt.Errorf("must be a boolean")
	}
}
