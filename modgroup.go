package changestreamcore

import (
	"fmt"
	"time"
)

// ModGroup is the currently-open group for one change stream: the
// identity a following mod must match to be merged into the same
// DataChangeRecord, plus a pointer to that in-progress record.
//
// Grouping only ever compares against the immediately preceding group, not
// against any earlier one: table A, table B, table A again produces three
// records, not two — the second table-A mod does not reopen the first
// table-A group.
type ModGroup struct {
	table          string
	modType        ModType
	columnSetKey   string
	record         *DataChangeRecord
}

func newGroupIdentity(t *Table, modType ModType, projected []*Column) (string, ModType, string) {
	return t.Name, modType, columnSetKey(projected)
}

// LogTableMod resolves op against one change stream's tracking
// configuration and either merges it into that stream's currently open
// mod group or closes the current group and opens a new one, appending
// the newly opened record to recordsByStream (the closed group's record
// is already there).
//
// recordsByStream accumulates finished and in-progress DataChangeRecords
// per change stream for the whole transaction; lastGroup tracks each
// stream's currently open group so the next mod can be tested against it.
func LogTableMod(
	op WriteOp,
	cs *ChangeStream,
	partitionToken string,
	recordsByStream map[*ChangeStream][]*DataChangeRecord,
	transactionID string,
	lastGroup map[*ChangeStream]*ModGroup,
	commitTimestamp time.Time,
) error {
	table := TableOf(op)
	modType := ModTypeOf(op)

	if err := validateColumnsAndValues(op, table); err != nil {
		return err
	}

	trackedNonKey, tracked := TrackedNonKeyColumns(cs, table)
	if !tracked {
		return nil
	}

	affected := affectedNonKeyColumns(op, table)
	projected, logged := ProjectedNonKeyColumns(modType, trackedNonKey, affected)
	if !logged {
		return nil
	}

	groupTable, groupModType, groupColumnSetKey := newGroupIdentity(table, modType, projected)

	mod, err := buildMod(op, table, projected, commitTimestamp)
	if err != nil {
		return fmt.Errorf("changestreamcore: building mod for table %q: %w", table.Name, err)
	}

	if g := lastGroup[cs]; g != nil && g.table == groupTable && g.modType == groupModType && g.columnSetKey == groupColumnSetKey {
		g.record.Mods = append(g.record.Mods, mod)
		return nil
	}

	record, err := newDataChangeRecord(cs, partitionToken, table, projected, modType, transactionID, commitTimestamp)
	if err != nil {
		return err
	}
	record.Mods = []Mod{mod}

	recordsByStream[cs] = append(recordsByStream[cs], record)
	lastGroup[cs] = &ModGroup{
		table:        groupTable,
		modType:      groupModType,
		columnSetKey: groupColumnSetKey,
		record:       record,
	}

	return nil
}

func buildMod(op WriteOp, table *Table, projected []*Column, commitTimestamp time.Time) (Mod, error) {
	pk := table.PrimaryKeyColumns()

	var key Key
	switch o := op.(type) {
	case *InsertOp:
		key = o.Key
	case *UpdateOp:
		key = o.Key
	case *DeleteOp:
		key = o.Key
	}
	keysJSON, err := EncodeColumnsJSON(pk, key)
	if err != nil {
		return Mod{}, err
	}

	if _, isDelete := op.(*DeleteOp); isDelete {
		return Mod{Keys: keysJSON, NewValues: "{}", OldValues: "{}"}, nil
	}

	vals := make([]Value, len(projected))
	for i, c := range projected {
		v := valueOf(op, c)
		v.Type = table.EffectiveType(c)
		vals[i] = v
	}
	newValues := resolveCommitTimestamps(projected, vals, commitTimestamp)
	newValuesJSON, err := EncodeColumnsJSON(projected, newValues)
	if err != nil {
		return Mod{}, err
	}

	return Mod{Keys: keysJSON, NewValues: newValuesJSON, OldValues: "{}"}, nil
}

func newDataChangeRecord(
	cs *ChangeStream,
	partitionToken string,
	table *Table,
	projected []*Column,
	modType ModType,
	transactionID string,
	commitTimestamp time.Time,
) (*DataChangeRecord, error) {
	cols := recordColumns(table, projected)

	names := make([]string, len(cols))
	typesJSON := make([]string, len(cols))
	isPK := make([]bool, len(cols))
	ordinals := make([]int64, len(cols))
	for i, c := range cols {
		names[i] = c.Name
		tj, err := DescribeType(table.EffectiveType(c))
		if err != nil {
			return nil, err
		}
		typesJSON[i] = tj
		isPK[i] = c.IsPrimaryKey
		ordinals[i] = c.OrdinalPosition
	}

	return &DataChangeRecord{
		ChangeStream:          cs,
		PartitionToken:        partitionToken,
		CommitTimestamp:       commitTimestamp,
		ServerTransactionID:   transactionID,
		Table:                 table,
		ColumnNames:           names,
		ColumnTypesJSON:       typesJSON,
		ColumnIsPrimaryKey:    isPK,
		ColumnOrdinalPosition: ordinals,
		ModType:               modType,
		ValueCaptureType:      ValueCaptureTypeNewValues,
	}, nil
}
