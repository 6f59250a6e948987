package model

import (
	"database/sql/driver"
	"fmt"
)

// RawJSON carries a JSON column value through scanning and marshaling
// without re-encoding it. PostgreSQL returns jsonb as []byte, MySQL and
// SQLite return text; both scan into the same raw form.
type RawJSON []byte

// MarshalJSON emits the stored bytes verbatim, or null when empty.
func (j RawJSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON stores the raw bytes without interpreting them.
func (j *RawJSON) UnmarshalJSON(data []byte) error {
	*j = append((*j)[:0], data...)
	return nil
}

// Scan implements sql.Scanner.
func (j *RawJSON) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = RawJSON(v)
	default:
		return fmt.Errorf("cannot scan %T into RawJSON", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (j RawJSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}
