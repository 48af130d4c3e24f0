package changestreamcore

import "time"

// Mod is one row mutation rendered into JSON text, as an element of a
// DataChangeRecord's mods array. OldValues is always "{}": recovering old
// column values isn't modeled, since value_capture_type is fixed to
// NEW_VALUES.
type Mod struct {
	Keys      string
	NewValues string
	OldValues string
}

// DataChangeRecord is the materialized form of one contiguous run of
// same-table, same-mod-type, same-projected-columns mods — the mod group
// state machine closes a group and finalizes it into exactly one
// DataChangeRecord.
type DataChangeRecord struct {
	ChangeStream    *ChangeStream
	PartitionToken  string
	CommitTimestamp time.Time

	ServerTransactionID string
	RecordSequence      int

	IsLastRecordInTransactionInPartition bool

	Table                  *Table
	ColumnNames            []string
	ColumnTypesJSON        []string // column_types_type entries, parallel to ColumnNames
	ColumnIsPrimaryKey     []bool
	ColumnOrdinalPosition  []int64

	Mods    []Mod
	ModType ModType

	ValueCaptureType ValueCaptureType

	NumberOfRecordsInTransaction    int64
	NumberOfPartitionsInTransaction int64
	TransactionTag                  string
	IsSystemTransaction             bool
}

// recordColumns returns the primary-key columns followed by the group's
// projected non-key columns, in the order column_types_* is emitted.
func recordColumns(t *Table, projectedNonKey []*Column) []*Column {
	pk := t.PrimaryKeyColumns()
	cols := make([]*Column, 0, len(pk)+len(projectedNonKey))
	cols = append(cols, pk...)
	cols = append(cols, projectedNonKey...)
	return cols
}
