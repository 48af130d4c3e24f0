package changestreamcore

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newOpsTestTable() *Table {
	return &Table{
		Name: "Singers",
		Columns: []*Column{
			{Name: "SingerId", Type: Type{Code: TypeCodeInt64}, IsPrimaryKey: true, KeyOrdinalPosition: 1, OrdinalPosition: 1},
			{Name: "FirstName", Type: Type{Code: TypeCodeString}, OrdinalPosition: 2},
			{Name: "LastName", Type: Type{Code: TypeCodeString}, OrdinalPosition: 3},
		},
	}
}

func TestTableOf(t *testing.T) {
	table := newOpsTestTable()
	op := NewInsert(table, Key{Int64Value(1)}, nil, nil)
	if got := TableOf(op); got != table {
		t.Errorf("TableOf() = %v, want %v", got, table)
	}
}

func TestModTypeOf(t *testing.T) {
	table := newOpsTestTable()
	tests := []struct {
		name string
		op   WriteOp
		want ModType
	}{
		{"insert", NewInsert(table, Key{Int64Value(1)}, nil, nil), ModTypeInsert},
		{"update", NewUpdate(table, Key{Int64Value(1)}, nil, nil), ModTypeUpdate},
		{"delete", NewDelete(table, Key{Int64Value(1)}), ModTypeDelete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModTypeOf(tt.op); got != tt.want {
				t.Errorf("ModTypeOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAffectedNonKeyColumns_InsertExcludesPrimaryKeyAndSortsByOrdinal(t *testing.T) {
	table := newOpsTestTable()
	lastName := table.Column("LastName")
	firstName := table.Column("FirstName")
	singerID := table.Column("SingerId")
	op := NewInsert(table, Key{Int64Value(1)},
		[]*Column{lastName, singerID, firstName},
		[]Value{StringValue("Doe"), Int64Value(1), StringValue("Jane")})

	got := affectedNonKeyColumns(op, table)
	if diff := cmp.Diff([]string{"FirstName", "LastName"}, columnNames(got)); diff != "" {
		t.Errorf("affectedNonKeyColumns() mismatch (-want +got):\n%s", diff)
	}
}

func TestAffectedNonKeyColumns_DeleteAlwaysNil(t *testing.T) {
	table := newOpsTestTable()
	op := NewDelete(table, Key{Int64Value(1)})

	if got := affectedNonKeyColumns(op, table); got != nil {
		t.Errorf("affectedNonKeyColumns() = %v, want nil for DELETE", got)
	}
}

func TestValueOf_ReturnsSuppliedValue(t *testing.T) {
	table := newOpsTestTable()
	firstName := table.Column("FirstName")
	op := NewUpdate(table, Key{Int64Value(1)}, []*Column{firstName}, []Value{StringValue("Jane")})

	got := valueOf(op, firstName)
	want := StringValue("Jane")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("valueOf() mismatch (-want +got):\n%s", diff)
	}
}

func TestValueOf_UnsuppliedColumnIsTypedNull(t *testing.T) {
	table := newOpsTestTable()
	firstName := table.Column("FirstName")
	lastName := table.Column("LastName")
	op := NewUpdate(table, Key{Int64Value(1)}, []*Column{firstName}, []Value{StringValue("Jane")})

	got := valueOf(op, lastName)
	want := Null(lastName.Type)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("valueOf() mismatch (-want +got):\n%s", diff)
	}
}

func TestValueOf_DeleteAlwaysNull(t *testing.T) {
	table := newOpsTestTable()
	firstName := table.Column("FirstName")
	op := NewDelete(table, Key{Int64Value(1)})

	got := valueOf(op, firstName)
	want := Null(firstName.Type)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("valueOf() mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateColumnsAndValues_ArityMismatchIsInvalidArgument(t *testing.T) {
	table := newOpsTestTable()
	firstName := table.Column("FirstName")
	lastName := table.Column("LastName")
	op := NewInsert(table, Key{Int64Value(1)}, []*Column{firstName, lastName}, []Value{StringValue("Jane")})

	err := validateColumnsAndValues(op, table)
	if err == nil {
		t.Fatal("validateColumnsAndValues() = nil, want an error for mismatched columns/values lengths")
	}
	if got := status.Code(err); got != codes.InvalidArgument {
		t.Errorf("status.Code(err) = %v, want %v", got, codes.InvalidArgument)
	}
}

func TestValidateColumnsAndValues_UnknownColumnIsInvalidArgument(t *testing.T) {
	table := newOpsTestTable()
	bogus := &Column{Name: "Nickname", Type: Type{Code: TypeCodeString}, OrdinalPosition: 4}
	op := NewUpdate(table, Key{Int64Value(1)}, []*Column{bogus}, []Value{StringValue("Janie")})

	err := validateColumnsAndValues(op, table)
	if err == nil {
		t.Fatal("validateColumnsAndValues() = nil, want an error for an unknown column")
	}
	if got := status.Code(err); got != codes.InvalidArgument {
		t.Errorf("status.Code(err) = %v, want %v", got, codes.InvalidArgument)
	}
}

func TestValidateColumnsAndValues_ValidInsertAndUpdateReturnNil(t *testing.T) {
	table := newOpsTestTable()
	firstName := table.Column("FirstName")

	insert := NewInsert(table, Key{Int64Value(1)}, []*Column{firstName}, []Value{StringValue("Jane")})
	if err := validateColumnsAndValues(insert, table); err != nil {
		t.Errorf("validateColumnsAndValues(insert) = %v, want nil", err)
	}

	update := NewUpdate(table, Key{Int64Value(1)}, []*Column{firstName}, []Value{StringValue("Janie")})
	if err := validateColumnsAndValues(update, table); err != nil {
		t.Errorf("validateColumnsAndValues(update) = %v, want nil", err)
	}
}

func TestValidateColumnsAndValues_DeleteAlwaysNil(t *testing.T) {
	table := newOpsTestTable()
	op := NewDelete(table, Key{Int64Value(1)})

	if err := validateColumnsAndValues(op, table); err != nil {
		t.Errorf("validateColumnsAndValues(delete) = %v, want nil", err)
	}
}
