package changestreamcore

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newSchemaTestTable() *Table {
	return &Table{
		Name: "Albums",
		Columns: []*Column{
			{Name: "AlbumId", IsPrimaryKey: true, KeyOrdinalPosition: 1, OrdinalPosition: 1},
			{Name: "SingerId", IsPrimaryKey: true, KeyOrdinalPosition: 2, OrdinalPosition: 2},
			{Name: "Title", OrdinalPosition: 3},
			{Name: "MarketingBudget", OrdinalPosition: 4},
		},
	}
}

func TestTable_PrimaryKeyColumnsSortedByKeyOrdinal(t *testing.T) {
	table := newSchemaTestTable()
	// Declared in a different order than KeyOrdinalPosition to confirm the
	// sort, not declaration order, drives the result.
	table.Columns[0], table.Columns[1] = table.Columns[1], table.Columns[0]

	pk := table.PrimaryKeyColumns()
	if diff := cmp.Diff([]string{"AlbumId", "SingerId"}, columnNames(pk)); diff != "" {
		t.Errorf("PrimaryKeyColumns() mismatch (-want +got):\n%s", diff)
	}
}

func TestTable_NonKeyColumnsExcludesKeysInDeclaredOrder(t *testing.T) {
	table := newSchemaTestTable()

	nonKey := table.NonKeyColumns()
	if diff := cmp.Diff([]string{"Title", "MarketingBudget"}, columnNames(nonKey)); diff != "" {
		t.Errorf("NonKeyColumns() mismatch (-want +got):\n%s", diff)
	}
}

func TestTable_ColumnLookupMiss(t *testing.T) {
	table := newSchemaTestTable()
	if c := table.Column("DoesNotExist"); c != nil {
		t.Errorf("Column() = %v, want nil", c)
	}
}

func TestSchema_LookupTableFound(t *testing.T) {
	table := newSchemaTestTable()
	schema := &Schema{Tables: []*Table{table}}

	got, err := schema.LookupTable("Albums")
	if err != nil {
		t.Fatalf("LookupTable() error = %v", err)
	}
	if got != table {
		t.Errorf("LookupTable() = %v, want %v", got, table)
	}
}

func TestSchema_LookupTableMissing(t *testing.T) {
	schema := &Schema{}

	_, err := schema.LookupTable("Albums")
	if !errors.Is(err, errSchemaMissingTable) {
		t.Errorf("LookupTable() error = %v, want errSchemaMissingTable", err)
	}
	if got := status.Code(err); got != codes.FailedPrecondition {
		t.Errorf("status.Code(err) = %v, want %v", got, codes.FailedPrecondition)
	}
}

func TestSchema_LookupChangeStreamFound(t *testing.T) {
	cs := &ChangeStream{Name: "AllStream", ForAll: true}
	schema := &Schema{ChangeStreams: []*ChangeStream{cs}}

	got, err := schema.LookupChangeStream("AllStream")
	if err != nil {
		t.Fatalf("LookupChangeStream() error = %v", err)
	}
	if got != cs {
		t.Errorf("LookupChangeStream() = %v, want %v", got, cs)
	}
}

func TestSchema_LookupChangeStreamMissing(t *testing.T) {
	schema := &Schema{}

	_, err := schema.LookupChangeStream("AllStream")
	if !errors.Is(err, errSchemaMissingChangeStream) {
		t.Errorf("LookupChangeStream() error = %v, want errSchemaMissingChangeStream", err)
	}
	if got := status.Code(err); got != codes.FailedPrecondition {
		t.Errorf("status.Code(err) = %v, want %v", got, codes.FailedPrecondition)
	}
}
