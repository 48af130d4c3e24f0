package changestreamcore

import (
	"time"

	"cloud.google.com/go/spanner"
)

// ResolveCommitTimestamp substitutes v with resolved when v is the
// spanner.CommitTimestamp sentinel written against a column that allows
// it, and returns v unchanged otherwise.
//
// This is the single place the sentinel is substituted, so a transaction's
// main-table row and its change-stream new_values end up referencing the
// identical resolved time.Time instead of each re-deriving it.
func ResolveCommitTimestamp(c *Column, v Value, resolved time.Time) Value {
	if !c.AllowCommitTimestamp || v.Type.Code != TypeCodeTimestamp || !v.Valid {
		return v
	}
	if t, ok := v.V.(time.Time); !ok || !t.Equal(spanner.CommitTimestamp) {
		return v
	}
	return TimestampValue(resolved)
}

// resolveCommitTimestamps applies ResolveCommitTimestamp to each value in
// vals against its corresponding column in cols.
func resolveCommitTimestamps(cols []*Column, vals []Value, resolved time.Time) []Value {
	out := make([]Value, len(vals))
	for i, v := range vals {
		out[i] = ResolveCommitTimestamp(cols[i], v, resolved)
	}
	return out
}
