package changestreamcore

// ModType identifies the kind of row mutation a WriteOp represents, and
// doubles as the DATA_CHANGE_RECORD mod_type column value.
type ModType string

const (
	ModTypeInsert ModType = "INSERT"
	ModTypeUpdate ModType = "UPDATE"
	ModTypeDelete ModType = "DELETE"
)

// WriteOp is a buffered row mutation against a base table. It is modeled
// as a tagged variant over three concrete structs — an interface
// dispatched with a type switch, not an inheritance hierarchy — rather
// than a single struct with optional fields.
type WriteOp interface {
	// table returns the base table this op mutates.
	table() *Table
}

// InsertOp adds a new row. Columns/Values need not cover every column of
// Table — unsupplied tracked columns surface as explicit JSON null in the
// resulting change record (see DESIGN.md's mod-group projection decision).
type InsertOp struct {
	Table   *Table
	Key     Key
	Columns []*Column
	Values  []Value
}

func (o *InsertOp) table() *Table { return o.Table }

// UpdateOp modifies an existing row. Only the columns actually supplied
// are "affected" for the purposes of tracked-column projection.
type UpdateOp struct {
	Table   *Table
	Key     Key
	Columns []*Column
	Values  []Value
}

func (o *UpdateOp) table() *Table { return o.Table }

// DeleteOp removes a row identified by Key.
type DeleteOp struct {
	Table *Table
	Key   Key
}

func (o *DeleteOp) table() *Table { return o.Table }

// NewInsert, NewUpdate and NewDelete build WriteOps. Key and Columns are
// independent: Key always carries the full primary key in key-ordinal
// order, while Columns/Values carry whatever subset of columns (key or
// non-key) the mutation actually supplies.
func NewInsert(t *Table, key Key, columns []*Column, values []Value) WriteOp {
	return &InsertOp{Table: t, Key: key, Columns: columns, Values: values}
}

func NewUpdate(t *Table, key Key, columns []*Column, values []Value) WriteOp {
	return &UpdateOp{Table: t, Key: key, Columns: columns, Values: values}
}

func NewDelete(t *Table, key Key) WriteOp {
	return &DeleteOp{Table: t, Key: key}
}

// TableOf returns the base table a WriteOp mutates.
func TableOf(op WriteOp) *Table { return op.table() }

// ModTypeOf returns the ModType a WriteOp represents.
func ModTypeOf(op WriteOp) ModType {
	switch op.(type) {
	case *InsertOp:
		return ModTypeInsert
	case *UpdateOp:
		return ModTypeUpdate
	case *DeleteOp:
		return ModTypeDelete
	default:
		panic("changestreamcore: unknown WriteOp implementation")
	}
}

// validateColumnsAndValues checks that op declares exactly as many values as
// columns and that every declared column actually belongs to t. Unknown
// columns and arity mismatches both fail with InvalidArgument rather than
// panicking (an out-of-range Values lookup) or silently treating the
// mutation as if the column were never supplied.
func validateColumnsAndValues(op WriteOp, t *Table) error {
	var columns []*Column
	var values []Value
	switch o := op.(type) {
	case *InsertOp:
		columns, values = o.Columns, o.Values
	case *UpdateOp:
		columns, values = o.Columns, o.Values
	default:
		return nil
	}

	if len(columns) != len(values) {
		return errInvalidArgument("table %s: %d columns but %d values", t.Name, len(columns), len(values))
	}
	for _, c := range columns {
		if t.Column(c.Name) == nil {
			return errInvalidArgument("table %s: unknown column %q", t.Name, c.Name)
		}
	}
	return nil
}

// affectedNonKeyColumns returns the non-key columns op actually supplies
// values for, in table ordinal order. DeleteOp never supplies column
// values, so it always returns nil.
func affectedNonKeyColumns(op WriteOp, t *Table) []*Column {
	var columns []*Column
	switch o := op.(type) {
	case *InsertOp:
		columns = o.Columns
	case *UpdateOp:
		columns = o.Columns
	default:
		return nil
	}

	affected := make([]*Column, 0, len(columns))
	for _, c := range columns {
		if !c.IsPrimaryKey {
			affected = append(affected, c)
		}
	}
	sortColumnsByOrdinal(affected)
	return affected
}

// valueOf looks up the value op supplies for column c, or a typed null if c
// was not supplied (e.g. an INSERT that omitted a tracked column).
func valueOf(op WriteOp, c *Column) Value {
	var columns []*Column
	var values []Value
	switch o := op.(type) {
	case *InsertOp:
		columns, values = o.Columns, o.Values
	case *UpdateOp:
		columns, values = o.Columns, o.Values
	default:
		return Null(c.Type)
	}

	for i, col := range columns {
		if col.Name == c.Name {
			return values[i]
		}
	}
	return Null(c.Type)
}
