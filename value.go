package changestreamcore

import (
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/civil"
)

// TypeCode is the Spanner type code carried by a Type, mirroring the
// code values cloud.google.com/go/spanner reports on a *spanner.Client
// column, plus FLOAT32 for the promoted-float case.
type TypeCode string

const (
	TypeCodeBool      TypeCode = "BOOL"
	TypeCodeInt64     TypeCode = "INT64"
	TypeCodeFloat32   TypeCode = "FLOAT32"
	TypeCodeFloat64   TypeCode = "FLOAT64"
	TypeCodeTimestamp TypeCode = "TIMESTAMP"
	TypeCodeDate      TypeCode = "DATE"
	TypeCodeString    TypeCode = "STRING"
	TypeCodeBytes     TypeCode = "BYTES"
	TypeCodeNumeric   TypeCode = "NUMERIC"
	TypeCodeJSON      TypeCode = "JSON"
	TypeCodeArray     TypeCode = "ARRAY"
)

// TypeAnnotation distinguishes the PostgreSQL-dialect representation of a
// type code from its GoogleSQL counterpart.
type TypeAnnotation string

const (
	TypeAnnotationPGNumeric TypeAnnotation = "PG_NUMERIC"
	TypeAnnotationPGJSONB   TypeAnnotation = "PG_JSONB"
)

// Dialect is a database-wide property in Spanner, never a per-column one;
// it is carried on Table and inherited by every Column's Type at encode time.
type Dialect int

const (
	DialectGoogleStandardSQL Dialect = iota
	DialectPostgreSQL
)

// Type describes a column's or array element's Spanner type.
type Type struct {
	Code             TypeCode
	TypeAnnotation   TypeAnnotation
	ArrayElementType *Type
}

// Value is a nullable, typed column value, modeled after the
// cloud.google.com/go/spanner Null* family (NullInt64, NullFloat64,
// NullString, NullBool, NullNumeric, NullJSON, NullTime, NullDate).
// Valid is false for SQL NULL; V then holds the zero value and is ignored.
//
// V holds one of: bool, int64, float64 (for both FLOAT32 and FLOAT64),
// string, []byte, *big.Rat, civil.Date, time.Time, or []Value for an ARRAY.
type Value struct {
	Type  Type
	Valid bool
	V     any
}

func Null(t Type) Value { return Value{Type: t} }

func BoolValue(v bool) Value { return Value{Type: Type{Code: TypeCodeBool}, Valid: true, V: v} }

func Int64Value(v int64) Value { return Value{Type: Type{Code: TypeCodeInt64}, Valid: true, V: v} }

// Float32Value stores v promoted to float64; FLOAT32 values are promoted
// before shortest-round-trip formatting.
func Float32Value(v float32) Value {
	return Value{Type: Type{Code: TypeCodeFloat32}, Valid: true, V: float64(v)}
}

func Float64Value(v float64) Value {
	return Value{Type: Type{Code: TypeCodeFloat64}, Valid: true, V: v}
}

func StringValue(v string) Value { return Value{Type: Type{Code: TypeCodeString}, Valid: true, V: v} }

func BytesValue(v []byte) Value { return Value{Type: Type{Code: TypeCodeBytes}, Valid: true, V: v} }

func TimestampValue(v time.Time) Value {
	return Value{Type: Type{Code: TypeCodeTimestamp}, Valid: true, V: v.UTC()}
}

func DateValue(v civil.Date) Value { return Value{Type: Type{Code: TypeCodeDate}, Valid: true, V: v} }

// NumericValue stores the exact decimal value of v, matching spanner.NullNumeric's
// use of math/big.Rat as the lossless NUMERIC representation.
func NumericValue(v *big.Rat) Value {
	return Value{Type: Type{Code: TypeCodeNumeric}, Valid: true, V: v}
}

// PGNumericValue is NumericValue annotated for the PostgreSQL dialect.
func PGNumericValue(v *big.Rat) Value {
	return Value{Type: Type{Code: TypeCodeNumeric, TypeAnnotation: TypeAnnotationPGNumeric}, Valid: true, V: v}
}

// JSONValue stores raw JSON text (already-parsed JSON, not a JSON-encoded string).
func JSONValue(raw string) Value {
	return Value{Type: Type{Code: TypeCodeJSON}, Valid: true, V: raw}
}

// PGJSONBValue is JSONValue annotated for the PostgreSQL JSONB dialect, whose
// bare numeric scalars render quoted when embedded in a mods JSON object.
func PGJSONBValue(raw string) Value {
	return Value{Type: Type{Code: TypeCodeJSON, TypeAnnotation: TypeAnnotationPGJSONB}, Valid: true, V: raw}
}

// ArrayValue builds an ARRAY value of elementType from elems, which may
// individually be null (Valid: false) to represent SQL NULL array elements.
func ArrayValue(elementType Type, elems []Value) Value {
	return Value{
		Type:  Type{Code: TypeCodeArray, ArrayElementType: &elementType},
		Valid: true,
		V:     elems,
	}
}

// Key is the tuple of primary-key column values for a row, in the table's
// key-ordinal order.
type Key []Value

func (k Key) String() string {
	vs := make([]any, len(k))
	for i, v := range k {
		vs[i] = v
	}
	return fmt.Sprintf("%v", vs)
}
