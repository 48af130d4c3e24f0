package changestreamcore

// Column describes one column of a Table.
type Column struct {
	Name                 string
	Type                 Type
	OrdinalPosition      int64 // 1-based position among the table's declared columns
	IsPrimaryKey         bool
	KeyOrdinalPosition   int64 // 1-based position within the primary key, 0 if not a key column
	AllowCommitTimestamp bool  // OPTIONS (allow_commit_timestamp=true)
}

// Table is a read-only descriptor of a base table's shape. Schema
// construction, DDL parsing and the storage engine that backs a Table's
// rows are out of scope here — Table only carries what this package needs
// to resolve tracked columns and build change-stream rows.
type Table struct {
	Name    string
	Dialect Dialect
	Columns []*Column // declared order
}

// EffectiveType returns c.Type with its TypeAnnotation derived from t's
// Dialect when c.Type didn't already set one explicitly. PostgreSQL-dialect
// tables annotate NUMERIC as PG_NUMERIC and JSON as PG_JSONB; every other
// type code carries no dialect-specific annotation.
func (t *Table) EffectiveType(c *Column) Type {
	typ := c.Type
	if t.Dialect != DialectPostgreSQL || typ.TypeAnnotation != "" {
		return typ
	}
	switch typ.Code {
	case TypeCodeNumeric:
		typ.TypeAnnotation = TypeAnnotationPGNumeric
	case TypeCodeJSON:
		typ.TypeAnnotation = TypeAnnotationPGJSONB
	}
	return typ
}

// Column looks up a column by name, or nil if the table has no such column.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// PrimaryKeyColumns returns the table's key columns ordered by KeyOrdinalPosition.
func (t *Table) PrimaryKeyColumns() []*Column {
	pk := make([]*Column, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			pk = append(pk, c)
		}
	}
	sortColumnsByKeyOrdinal(pk)
	return pk
}

// NonKeyColumns returns the table's non-key columns in declared (ordinal) order.
func (t *Table) NonKeyColumns() []*Column {
	cols := make([]*Column, 0, len(t.Columns))
	for _, c := range t.Columns {
		if !c.IsPrimaryKey {
			cols = append(cols, c)
		}
	}
	return cols
}

func sortColumnsByKeyOrdinal(cols []*Column) {
	for i := 1; i < len(cols); i++ {
		for j := i; j > 0 && cols[j-1].KeyOrdinalPosition > cols[j].KeyOrdinalPosition; j-- {
			cols[j-1], cols[j] = cols[j], cols[j-1]
		}
	}
}

func sortColumnsByOrdinal(cols []*Column) {
	for i := 1; i < len(cols); i++ {
		for j := i; j > 0 && cols[j-1].OrdinalPosition > cols[j].OrdinalPosition; j-- {
			cols[j-1], cols[j] = cols[j], cols[j-1]
		}
	}
}

// TrackMode is how a change stream's FOR clause tracks one table:
// FOR <table> (all columns), FOR <table>(col,...) (an explicit set),
// or FOR <table>() (keys only).
type TrackMode int

const (
	TrackModeAllColumns TrackMode = iota
	TrackModeColumnSet
	TrackModeKeysOnly
)

// TableTrackSpec is one table's entry in a change stream's FOR clause.
type TableTrackSpec struct {
	Table   *Table
	Mode    TrackMode
	Columns []*Column // only meaningful when Mode == TrackModeColumnSet
}

// ValueCaptureType is fixed to NEW_VALUES: recovering old column values
// isn't modeled, so no other value_capture_type exists.
type ValueCaptureType string

const ValueCaptureTypeNewValues ValueCaptureType = "NEW_VALUES"

// ChangeStream is a read-only descriptor of one change stream's tracking
// configuration: FOR ALL, or a set of per-table TableTrackSpecs.
type ChangeStream struct {
	Name             string
	ForAll           bool
	Specs            []*TableTrackSpec
	ValueCaptureType ValueCaptureType
}

func (cs *ChangeStream) specFor(t *Table) *TableTrackSpec {
	for _, s := range cs.Specs {
		if s.Table.Name == t.Name {
			return s
		}
	}
	return nil
}

// Schema is a read-only registry of tables and change streams, looked up
// by name over plain slices rather than an indexed catalog.
type Schema struct {
	Tables        []*Table
	ChangeStreams []*ChangeStream
}

func (s *Schema) Table(name string) *Table {
	for _, t := range s.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func (s *Schema) ChangeStream(name string) *ChangeStream {
	for _, cs := range s.ChangeStreams {
		if cs.Name == name {
			return cs
		}
	}
	return nil
}

// LookupTable is Table, but returns errSchemaMissingTable instead of nil so
// callers that can't proceed without the table (cmd/changestreamdump, for
// instance) get a coded error rather than a nil-pointer panic downstream.
func (s *Schema) LookupTable(name string) (*Table, error) {
	if t := s.Table(name); t != nil {
		return t, nil
	}
	return nil, errFailedPrecondition(errSchemaMissingTable, "%s", name)
}

// LookupChangeStream is ChangeStream, but returns a FailedPrecondition
// error wrapping errSchemaMissingChangeStream instead of nil.
func (s *Schema) LookupChangeStream(name string) (*ChangeStream, error) {
	if cs := s.ChangeStream(name); cs != nil {
		return cs, nil
	}
	return nil, errFailedPrecondition(errSchemaMissingChangeStream, "%s", name)
}
