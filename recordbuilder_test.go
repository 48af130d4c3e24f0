package changestreamcore

import (
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/google/go-cmp/cmp"
)

func newRecordBuilderTestRecord() *DataChangeRecord {
	table := &Table{
		Name: "Singers",
		Columns: []*Column{
			{Name: "SingerId", Type: Type{Code: TypeCodeInt64}, IsPrimaryKey: true, KeyOrdinalPosition: 1, OrdinalPosition: 1},
			{Name: "FirstName", Type: Type{Code: TypeCodeString}, OrdinalPosition: 2},
		},
	}
	cs := &ChangeStream{Name: "SingersStream", ForAll: true}

	return &DataChangeRecord{
		ChangeStream:                         cs,
		PartitionToken:                       "token-1",
		CommitTimestamp:                      time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC),
		ServerTransactionID:                  "txn-1",
		RecordSequence:                       0,
		IsLastRecordInTransactionInPartition: true,
		Table:                                table,
		ColumnNames:                          []string{"SingerId", "FirstName"},
		ColumnTypesJSON: []string{
			`{"code":"INT64"}`,
			`{"code":"STRING"}`,
		},
		ColumnIsPrimaryKey:    []bool{true, false},
		ColumnOrdinalPosition: []int64{1, 2},
		Mods: []Mod{
			{Keys: `{"SingerId":"1"}`, NewValues: `{"FirstName":"Alice"}`, OldValues: "{}"},
		},
		ModType:                         ModTypeInsert,
		ValueCaptureType:                ValueCaptureTypeNewValues,
		NumberOfRecordsInTransaction:    1,
		NumberOfPartitionsInTransaction: 1,
	}
}

func TestDescribeRecordRow_RendersPhysicalRowAsJSON(t *testing.T) {
	r := newRecordBuilderTestRecord()

	row, err := DescribeRecordRow(r)
	if err != nil {
		t.Fatalf("DescribeRecordRow() error = %v", err)
	}

	var obj map[string]any
	if err := json.Unmarshal(row, &obj); err != nil {
		t.Fatalf("DescribeRecordRow() returned invalid JSON: %v", err)
	}

	if obj["partition_token"] != "token-1" {
		t.Errorf("partition_token = %v, want token-1", obj["partition_token"])
	}
	if obj["table_name"] != "Singers" {
		t.Errorf("table_name = %v, want Singers", obj["table_name"])
	}
	if obj["mod_type"] != "INSERT" {
		t.Errorf("mod_type = %v, want INSERT", obj["mod_type"])
	}
	if obj["record_sequence"] != "00000000" {
		t.Errorf("record_sequence = %v, want \"00000000\"", obj["record_sequence"])
	}
	mods, ok := obj["mods_new_values"].([]any)
	if !ok || len(mods) != 1 || mods[0] != `{"FirstName":"Alice"}` {
		t.Errorf("mods_new_values = %v, want one element `{\"FirstName\":\"Alice\"}`", obj["mods_new_values"])
	}
}

func TestBuildRecordMutation_WritesToChangeStreamDataTable(t *testing.T) {
	r := newRecordBuilderTestRecord()

	m, err := BuildRecordMutation(r)
	if err != nil {
		t.Fatalf("BuildRecordMutation() error = %v", err)
	}
	if m == nil {
		t.Fatal("BuildRecordMutation() returned a nil mutation")
	}
}

func TestEncodeForMutation_ArrayOfInt64UsesNullInt64Slice(t *testing.T) {
	v := ArrayValue(Type{Code: TypeCodeInt64}, []Value{Int64Value(1), Null(Type{Code: TypeCodeInt64}), Int64Value(3)})

	got, err := encodeForMutation(v)
	if err != nil {
		t.Fatalf("encodeForMutation() error = %v", err)
	}

	want := []spanner.NullInt64{{Int64: 1, Valid: true}, {}, {Int64: 3, Valid: true}}
	gotSlice, ok := got.([]spanner.NullInt64)
	if !ok {
		t.Fatalf("encodeForMutation() returned %T, want []spanner.NullInt64", got)
	}
	if diff := cmp.Diff(want, gotSlice); diff != "" {
		t.Errorf("encodeForMutation() mismatch (-want +got):\n%s", diff)
	}
}
