// Package query composes parameterized WHERE clauses for the listing
// endpoints. Filters are described as an ordered list of predicate
// descriptors; rendering produces SQL text with "?" placeholders and the
// matching bound argument list. User-controlled values only ever appear as
// bound parameters; column names are fixed by the caller, never taken
// from the request.
package query

import "strings"

// Op identifies the comparison a predicate performs.
type Op int

const (
	// OpContains matches a case-folded substring against one or more text
	// columns, combined with OR.
	OpContains Op = iota
	// OpEquals matches a single column exactly.
	OpEquals
)

// Predicate is one filter descriptor: the columns it applies to, the
// operator, and the value to bind.
type Predicate struct {
	Columns []string
	Op      Op
	Value   interface{}
}

// Builder accumulates predicates in insertion order. The zero value is
// ready to use and renders no WHERE clause.
type Builder struct {
	preds []Predicate
}

// Contains adds a substring-match predicate over the given text columns.
// Empty search terms are ignored so that an omitted filter omits its
// clause entirely. The term is lower-cased and wrapped in LIKE wildcards
// at render time.
func (b *Builder) Contains(term string, columns ...string) *Builder {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return b
	}
	b.preds = append(b.preds, Predicate{Columns: columns, Op: OpContains, Value: term})
	return b
}

// Equal adds an exact-match predicate on one column. Empty values are
// ignored, matching the omitted-filter behavior of Contains.
func (b *Builder) Equal(column, value string) *Builder {
	value = strings.TrimSpace(value)
	if value == "" {
		return b
	}
	b.preds = append(b.preds, Predicate{Columns: []string{column}, Op: OpEquals, Value: value})
	return b
}

// Predicates returns the accumulated descriptors in insertion order.
func (b *Builder) Predicates() []Predicate {
	return b.preds
}

// Where renders the accumulated predicates into a SQL fragment starting
// with " WHERE " (or an empty string when no predicates were added) and
// the bound arguments in placeholder order. Predicates are AND-combined;
// the columns of a Contains predicate are OR-combined within it.
func (b *Builder) Where() (string, []interface{}) {
	if len(b.preds) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(b.preds))
	args := make([]interface{}, 0, len(b.preds))

	for _, p := range b.preds {
		switch p.Op {
		case OpContains:
			parts := make([]string, len(p.Columns))
			pattern := "%" + strings.ToLower(p.Value.(string)) + "%"
			for i, col := range p.Columns {
				parts[i] = "lower(coalesce(" + col + ", '')) LIKE ?"
				args = append(args, pattern)
			}
			clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
		case OpEquals:
			clauses = append(clauses, p.Columns[0]+" = ?")
			args = append(args, p.Value)
		}
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

// Page is a clamped limit/offset pair.
type Page struct {
	Limit  int
	Offset int
}

// NewPage clamps the requested limit and offset against a collection's
// default and maximum. A non-positive limit falls back to the default, a
// limit above the maximum is clamped to it, and a negative offset is
// clamped to zero.
func NewPage(limit, offset, defaultLimit, maxLimit int) Page {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}
