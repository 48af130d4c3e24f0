package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/civil"
	"cloud.google.com/go/spanner"
	"github.com/toga4/changestreamcore"
)

// commitTimestampSentinel lets a fixture write the literal string
// "spanner.commit_timestamp" in place of a TIMESTAMP value to mean
// spanner.CommitTimestamp, mirroring how a real INSERT/UPDATE statement
// writes PENDING_COMMIT_TIMESTAMP() against an allow_commit_timestamp
// column.
func commitTimestampSentinel() time.Time {
	return spanner.CommitTimestamp
}

// fixture is the hand-authored JSON shape cmd/changestreamdump replays: a
// tiny hand-declared schema plus a list of mutations to run through
// changestreamcore.BuildChangeStreamWriteOps as a single transaction,
// rather than parsing real DDL.
type fixture struct {
	Tables          []fixtureTable        `json:"tables"`
	ChangeStreams   []fixtureChangeStream `json:"change_streams"`
	PartitionTokens map[string]string     `json:"partition_tokens"`
	TransactionID   string                `json:"transaction_id"`
	CommitTimestamp time.Time             `json:"commit_timestamp"`
	Mutations       []fixtureMutation     `json:"mutations"`
}

type fixtureTable struct {
	Name    string          `json:"name"`
	Dialect string          `json:"dialect"`
	Columns []fixtureColumn `json:"columns"`
}

type fixtureColumn struct {
	Name                 string `json:"name"`
	Code                 string `json:"code"`
	ArrayElementCode     string `json:"array_element_code,omitempty"`
	TypeAnnotation       string `json:"type_annotation,omitempty"`
	OrdinalPosition      int64  `json:"ordinal_position"`
	IsPrimaryKey         bool   `json:"is_primary_key,omitempty"`
	KeyOrdinalPosition   int64  `json:"key_ordinal_position,omitempty"`
	AllowCommitTimestamp bool   `json:"allow_commit_timestamp,omitempty"`
}

type fixtureChangeStream struct {
	Name             string             `json:"name"`
	ForAll           bool               `json:"for_all,omitempty"`
	ValueCaptureType string             `json:"value_capture_type,omitempty"`
	Specs            []fixtureTrackSpec `json:"specs,omitempty"`
}

type fixtureTrackSpec struct {
	Table   string   `json:"table"`
	Mode    string   `json:"mode"`
	Columns []string `json:"columns,omitempty"`
}

type fixtureMutation struct {
	Op      string            `json:"op"`
	Table   string            `json:"table"`
	Key     []json.RawMessage `json:"key,omitempty"`
	Columns []string          `json:"columns,omitempty"`
	Values  []json.RawMessage `json:"values,omitempty"`
}

func loadFixture(data []byte) (*fixture, error) {
	var f fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding fixture: %w", err)
	}
	return &f, nil
}

func (f *fixture) buildSchema() (*changestreamcore.Schema, error) {
	schema := &changestreamcore.Schema{}

	for _, ft := range f.Tables {
		dialect := changestreamcore.DialectGoogleStandardSQL
		if ft.Dialect == "POSTGRESQL" {
			dialect = changestreamcore.DialectPostgreSQL
		}
		table := &changestreamcore.Table{Name: ft.Name, Dialect: dialect}
		for _, fc := range ft.Columns {
			typ, err := parseFixtureType(fc)
			if err != nil {
				return nil, fmt.Errorf("table %s column %s: %w", ft.Name, fc.Name, err)
			}
			table.Columns = append(table.Columns, &changestreamcore.Column{
				Name:                 fc.Name,
				Type:                 typ,
				OrdinalPosition:      fc.OrdinalPosition,
				IsPrimaryKey:         fc.IsPrimaryKey,
				KeyOrdinalPosition:   fc.KeyOrdinalPosition,
				AllowCommitTimestamp: fc.AllowCommitTimestamp,
			})
		}
		schema.Tables = append(schema.Tables, table)
	}

	for _, fcs := range f.ChangeStreams {
		cs := &changestreamcore.ChangeStream{
			Name:             fcs.Name,
			ForAll:           fcs.ForAll,
			ValueCaptureType: changestreamcore.ValueCaptureTypeNewValues,
		}
		for _, spec := range fcs.Specs {
			table, err := schema.LookupTable(spec.Table)
			if err != nil {
				return nil, fmt.Errorf("change stream %s: %w", fcs.Name, err)
			}
			mode := changestreamcore.TrackModeAllColumns
			switch spec.Mode {
			case "COLUMN_SET":
				mode = changestreamcore.TrackModeColumnSet
			case "KEYS_ONLY":
				mode = changestreamcore.TrackModeKeysOnly
			}
			var cols []*changestreamcore.Column
			for _, name := range spec.Columns {
				c := table.Column(name)
				if c == nil {
					return nil, fmt.Errorf("change stream %s: table %s has no column %s", fcs.Name, spec.Table, name)
				}
				cols = append(cols, c)
			}
			cs.Specs = append(cs.Specs, &changestreamcore.TableTrackSpec{Table: table, Mode: mode, Columns: cols})
		}
		schema.ChangeStreams = append(schema.ChangeStreams, cs)
	}

	return schema, nil
}

func parseFixtureType(fc fixtureColumn) (changestreamcore.Type, error) {
	code, err := parseTypeCode(fc.Code)
	if err != nil {
		return changestreamcore.Type{}, err
	}
	t := changestreamcore.Type{Code: code}
	switch fc.TypeAnnotation {
	case "PG_NUMERIC":
		t.TypeAnnotation = changestreamcore.TypeAnnotationPGNumeric
	case "PG_JSONB":
		t.TypeAnnotation = changestreamcore.TypeAnnotationPGJSONB
	}
	if code == changestreamcore.TypeCodeArray {
		elemCode, err := parseTypeCode(fc.ArrayElementCode)
		if err != nil {
			return changestreamcore.Type{}, err
		}
		elem := changestreamcore.Type{Code: elemCode}
		t.ArrayElementType = &elem
	}
	return t, nil
}

func parseTypeCode(code string) (changestreamcore.TypeCode, error) {
	switch code {
	case "BOOL":
		return changestreamcore.TypeCodeBool, nil
	case "INT64":
		return changestreamcore.TypeCodeInt64, nil
	case "FLOAT32":
		return changestreamcore.TypeCodeFloat32, nil
	case "FLOAT64":
		return changestreamcore.TypeCodeFloat64, nil
	case "TIMESTAMP":
		return changestreamcore.TypeCodeTimestamp, nil
	case "DATE":
		return changestreamcore.TypeCodeDate, nil
	case "STRING":
		return changestreamcore.TypeCodeString, nil
	case "BYTES":
		return changestreamcore.TypeCodeBytes, nil
	case "NUMERIC":
		return changestreamcore.TypeCodeNumeric, nil
	case "JSON":
		return changestreamcore.TypeCodeJSON, nil
	case "ARRAY":
		return changestreamcore.TypeCodeArray, nil
	default:
		return "", fmt.Errorf("unknown type code %q", code)
	}
}

// buildWriteOps decodes f.Mutations into changestreamcore.WriteOps against
// schema, resolving each column's JSON-encoded value per its declared Type.
func (f *fixture) buildWriteOps(schema *changestreamcore.Schema) ([]changestreamcore.WriteOp, error) {
	var ops []changestreamcore.WriteOp
	for i, m := range f.Mutations {
		table, err := schema.LookupTable(m.Table)
		if err != nil {
			return nil, fmt.Errorf("mutation %d: %w", i, err)
		}

		var key changestreamcore.Key
		for _, raw := range m.Key {
			pk := table.PrimaryKeyColumns()
			if len(key) >= len(pk) {
				return nil, fmt.Errorf("mutation %d: key has more components than table %s declares", i, table.Name)
			}
			v, err := decodeFixtureValue(raw, pk[len(key)].Type)
			if err != nil {
				return nil, fmt.Errorf("mutation %d: key[%d]: %w", i, len(key), err)
			}
			key = append(key, v)
		}

		var columns []*changestreamcore.Column
		var values []changestreamcore.Value
		for j, name := range m.Columns {
			c := table.Column(name)
			if c == nil {
				return nil, fmt.Errorf("mutation %d: table %s has no column %s", i, table.Name, name)
			}
			v, err := decodeFixtureValue(m.Values[j], c.Type)
			if err != nil {
				return nil, fmt.Errorf("mutation %d: column %s: %w", i, name, err)
			}
			columns = append(columns, c)
			values = append(values, v)
		}

		switch m.Op {
		case "INSERT":
			ops = append(ops, changestreamcore.NewInsert(table, key, columns, values))
		case "UPDATE":
			ops = append(ops, changestreamcore.NewUpdate(table, key, columns, values))
		case "DELETE":
			ops = append(ops, changestreamcore.NewDelete(table, key))
		default:
			return nil, fmt.Errorf("mutation %d: unknown op %q", i, m.Op)
		}
	}
	return ops, nil
}

func decodeFixtureValue(raw json.RawMessage, t changestreamcore.Type) (changestreamcore.Value, error) {
	if raw == nil || string(raw) == "null" {
		return changestreamcore.Null(t), nil
	}

	switch t.Code {
	case changestreamcore.TypeCodeBool:
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return changestreamcore.Value{}, err
		}
		return changestreamcore.BoolValue(v), nil
	case changestreamcore.TypeCodeInt64:
		var v int64
		if err := json.Unmarshal(raw, &v); err != nil {
			return changestreamcore.Value{}, err
		}
		return changestreamcore.Int64Value(v), nil
	case changestreamcore.TypeCodeFloat32:
		var v float32
		if err := json.Unmarshal(raw, &v); err != nil {
			return changestreamcore.Value{}, err
		}
		return changestreamcore.Float32Value(v), nil
	case changestreamcore.TypeCodeFloat64:
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return changestreamcore.Value{}, err
		}
		return changestreamcore.Float64Value(v), nil
	case changestreamcore.TypeCodeString:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return changestreamcore.Value{}, err
		}
		return changestreamcore.StringValue(v), nil
	case changestreamcore.TypeCodeBytes:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return changestreamcore.Value{}, err
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return changestreamcore.Value{}, err
		}
		return changestreamcore.BytesValue(b), nil
	case changestreamcore.TypeCodeTimestamp:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return changestreamcore.Value{}, err
		}
		if s == "spanner.commit_timestamp" {
			return changestreamcore.TimestampValue(commitTimestampSentinel()), nil
		}
		tm, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return changestreamcore.Value{}, err
		}
		return changestreamcore.TimestampValue(tm), nil
	case changestreamcore.TypeCodeDate:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return changestreamcore.Value{}, err
		}
		d, err := civil.ParseDate(s)
		if err != nil {
			return changestreamcore.Value{}, err
		}
		return changestreamcore.DateValue(d), nil
	case changestreamcore.TypeCodeNumeric:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return changestreamcore.Value{}, err
		}
		r, ok := new(big.Rat).SetString(s)
		if !ok {
			return changestreamcore.Value{}, fmt.Errorf("invalid numeric literal %q", s)
		}
		if t.TypeAnnotation == changestreamcore.TypeAnnotationPGNumeric {
			return changestreamcore.PGNumericValue(r), nil
		}
		return changestreamcore.NumericValue(r), nil
	case changestreamcore.TypeCodeJSON:
		if t.TypeAnnotation == changestreamcore.TypeAnnotationPGJSONB {
			return changestreamcore.PGJSONBValue(string(raw)), nil
		}
		return changestreamcore.JSONValue(string(raw)), nil
	case changestreamcore.TypeCodeArray:
		var rawElems []json.RawMessage
		if err := json.Unmarshal(raw, &rawElems); err != nil {
			return changestreamcore.Value{}, err
		}
		elems := make([]changestreamcore.Value, len(rawElems))
		for i, re := range rawElems {
			v, err := decodeFixtureValue(re, *t.ArrayElementType)
			if err != nil {
				return changestreamcore.Value{}, err
			}
			elems[i] = v
		}
		return changestreamcore.ArrayValue(*t.ArrayElementType, elems), nil
	default:
		return changestreamcore.Value{}, fmt.Errorf("unsupported type code %q", t.Code)
	}
}
