package changestreamcore

import "context"

// Store is a minimal read-only view over base table data. Schema
// construction, the generic transaction buffer and the storage engine
// proper are out of scope here; LogTableMod never consults one — every
// projected value it needs comes from the WriteOp itself, with unsupplied
// tracked columns rendered as explicit JSON null rather than backfilled
// from storage (see DESIGN.md's mod-group projection decision).
//
// Store exists for callers that need to check the same resolved
// commit-timestamp value a change stream observed against an independent
// read of the base table row. Neither Pipeline nor this package's tests
// use it.
type Store interface {
	// Row returns the current column values for the row identified by key
	// in t, or ok=false if no such row exists.
	Row(ctx context.Context, t *Table, key Key) (values map[string]Value, ok bool, err error)
}

// NopStore is a Store that reports every row as absent.
type NopStore struct{}

func (NopStore) Row(context.Context, *Table, Key) (map[string]Value, bool, error) {
	return nil, false, nil
}
