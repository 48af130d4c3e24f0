package changestreamcore

import (
	"encoding/json"
	"fmt"

	"cloud.google.com/go/spanner"
)

// changeStreamDataTableName is the physical row-shape table a change
// stream's records are written to, following the real Spanner emulator's
// naming convention for a change stream's backing data table.
func changeStreamDataTableName(cs *ChangeStream) string {
	return "_change_stream_data_" + cs.Name
}

// recordColumnNames are the 19 flattened columns of a change stream's
// data table: column_types and mods are each split into parallel arrays
// rather than carried as a single STRUCT-typed column, matching the data
// table's actual physical row layout.
var recordColumnNames = []string{
	"partition_token",
	"commit_timestamp",
	"server_transaction_id",
	"record_sequence",
	"is_last_record_in_transaction_in_partition",
	"table_name",
	"column_types_name",
	"column_types_type",
	"column_types_is_primary_key",
	"column_types_ordinal_position",
	"mods_keys",
	"mods_new_values",
	"mods_old_values",
	"mod_type",
	"value_capture_type",
	"number_of_records_in_transaction",
	"number_of_partitions_in_transaction",
	"transaction_tag",
	"is_system_transaction",
}

// buildRecordWriteOp renders a finalized DataChangeRecord as an InsertOp
// against its change stream's data table, in the 19-column layout above.
func buildRecordWriteOp(r *DataChangeRecord) (WriteOp, error) {
	dataTable := &Table{Name: changeStreamDataTableName(r.ChangeStream)}

	keys := make([]Value, len(r.Mods))
	newValues := make([]Value, len(r.Mods))
	oldValues := make([]Value, len(r.Mods))
	for i, m := range r.Mods {
		keys[i] = StringValue(m.Keys)
		newValues[i] = StringValue(m.NewValues)
		oldValues[i] = StringValue(m.OldValues)
	}

	nameValues := make([]Value, len(r.ColumnNames))
	typeValues := make([]Value, len(r.ColumnTypesJSON))
	pkValues := make([]Value, len(r.ColumnIsPrimaryKey))
	ordinalValues := make([]Value, len(r.ColumnOrdinalPosition))
	for i := range r.ColumnNames {
		nameValues[i] = StringValue(r.ColumnNames[i])
		typeValues[i] = StringValue(r.ColumnTypesJSON[i])
		pkValues[i] = BoolValue(r.ColumnIsPrimaryKey[i])
		ordinalValues[i] = Int64Value(r.ColumnOrdinalPosition[i])
	}

	values := []Value{
		StringValue(r.PartitionToken),
		TimestampValue(r.CommitTimestamp),
		StringValue(r.ServerTransactionID),
		StringValue(fmt.Sprintf("%08d", r.RecordSequence)),
		BoolValue(r.IsLastRecordInTransactionInPartition),
		StringValue(r.Table.Name),
		ArrayValue(Type{Code: TypeCodeString}, nameValues),
		ArrayValue(Type{Code: TypeCodeString}, typeValues),
		ArrayValue(Type{Code: TypeCodeBool}, pkValues),
		ArrayValue(Type{Code: TypeCodeInt64}, ordinalValues),
		ArrayValue(Type{Code: TypeCodeString}, keys),
		ArrayValue(Type{Code: TypeCodeString}, newValues),
		ArrayValue(Type{Code: TypeCodeString}, oldValues),
		StringValue(string(r.ModType)),
		StringValue(string(r.ValueCaptureType)),
		Int64Value(r.NumberOfRecordsInTransaction),
		Int64Value(r.NumberOfPartitionsInTransaction),
		StringValue(r.TransactionTag),
		BoolValue(r.IsSystemTransaction),
	}

	columns := make([]*Column, len(recordColumnNames))
	for i, name := range recordColumnNames {
		columns[i] = &Column{Name: name, OrdinalPosition: int64(i + 1)}
	}

	return &InsertOp{Table: dataTable, Columns: columns, Values: values}, nil
}

// DescribeRecordRow renders a finalized DataChangeRecord as the JSON object
// its 19-column physical row would contain, reusing the same
// EncodeColumnsJSON path the mods payload itself is built with — useful for
// printing a record without a live Spanner connection.
func DescribeRecordRow(r *DataChangeRecord) (json.RawMessage, error) {
	op, err := buildRecordWriteOp(r)
	if err != nil {
		return nil, err
	}
	insert := op.(*InsertOp)

	row, err := EncodeColumnsJSON(insert.Columns, insert.Values)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(row), nil
}

// BuildRecordMutation builds a *spanner.Mutation for a finalized DataChangeRecord,
// the way a real writer would flush it to the change stream's backing
// data table, using spanner.InsertMap.
func BuildRecordMutation(r *DataChangeRecord) (*spanner.Mutation, error) {
	op, err := buildRecordWriteOp(r)
	if err != nil {
		return nil, err
	}
	insert := op.(*InsertOp)

	m := make(map[string]any, len(insert.Columns))
	for i, c := range insert.Columns {
		v, err := encodeForMutation(insert.Values[i])
		if err != nil {
			return nil, err
		}
		m[c.Name] = v
	}

	return spanner.InsertMap(insert.Table.Name, m), nil
}

// encodeForMutation converts a Value into the native Go type
// cloud.google.com/go/spanner's InsertMap expects, as opposed to
// encodeJSON's string-shaped rendering for the JSON mods/column_types
// payloads.
func encodeForMutation(v Value) (any, error) {
	if !v.Valid {
		return nil, nil
	}
	switch v.Type.Code {
	case TypeCodeBool:
		return v.V.(bool), nil
	case TypeCodeInt64:
		return v.V.(int64), nil
	case TypeCodeFloat32, TypeCodeFloat64:
		return v.V.(float64), nil
	case TypeCodeString:
		return v.V.(string), nil
	case TypeCodeBytes:
		return v.V.([]byte), nil
	case TypeCodeTimestamp:
		return v.V, nil
	case TypeCodeDate:
		return v.V, nil
	case TypeCodeArray:
		return encodeArrayForMutation(v)
	default:
		return nil, fmt.Errorf("changestreamcore: unsupported type code %q for mutation encoding", v.Type.Code)
	}
}

// encodeArrayForMutation renders an ARRAY value as the concrete Go slice
// type spanner.InsertMap expects for that element code
// ([]spanner.NullString, []spanner.NullBool, []spanner.NullInt64; other
// element codes fall back to []any), since the Spanner client library does not accept
// a generic []any for typed array columns.
func encodeArrayForMutation(v Value) (any, error) {
	elems := v.V.([]Value)
	switch v.Type.ArrayElementType.Code {
	case TypeCodeString:
		out := make([]spanner.NullString, len(elems))
		for i, e := range elems {
			out[i] = spanner.NullString{StringVal: stringOrZero(e), Valid: e.Valid}
		}
		return out, nil
	case TypeCodeBool:
		out := make([]spanner.NullBool, len(elems))
		for i, e := range elems {
			if e.Valid {
				out[i] = spanner.NullBool{Bool: e.V.(bool), Valid: true}
			}
		}
		return out, nil
	case TypeCodeInt64:
		out := make([]spanner.NullInt64, len(elems))
		for i, e := range elems {
			if e.Valid {
				out[i] = spanner.NullInt64{Int64: e.V.(int64), Valid: true}
			}
		}
		return out, nil
	default:
		out := make([]any, len(elems))
		for i, e := range elems {
			ev, err := encodeForMutation(e)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	}
}

func stringOrZero(v Value) string {
	if !v.Valid {
		return ""
	}
	return v.V.(string)
}
