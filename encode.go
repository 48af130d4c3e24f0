package changestreamcore

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// encodeJSON converts a Value into a plain Go value that encoding/json
// renders the way a change-stream row needs: INT64 and NUMERIC as quoted
// decimal strings, BYTES as base64 (encoding/json already does this for
// []byte), DATE/TIMESTAMP via their MarshalJSON (civil.Date -> "2006-01-02",
// time.Time -> RFC3339Nano UTC), FLOAT32/FLOAT64 as shortest-round-trip
// JSON numbers, and ARRAY recursively.
//
// PostgreSQL JSONB's bare numeric scalars are quoted when embedded; the
// default GoogleSQL JSON dialect embeds its raw text unquoted.
func encodeJSON(v Value) (any, error) {
	if !v.Valid {
		return nil, nil
	}

	switch v.Type.Code {
	case TypeCodeBool:
		return v.V.(bool), nil
	case TypeCodeInt64:
		return strconv.FormatInt(v.V.(int64), 10), nil
	case TypeCodeFloat32, TypeCodeFloat64:
		return v.V.(float64), nil
	case TypeCodeString:
		return v.V.(string), nil
	case TypeCodeBytes:
		return base64.StdEncoding.EncodeToString(v.V.([]byte)), nil
	case TypeCodeTimestamp:
		return v.V, nil
	case TypeCodeDate:
		return v.V, nil
	case TypeCodeNumeric:
		return formatNumeric(v.V.(*big.Rat)), nil
	case TypeCodeJSON:
		raw := v.V.(string)
		if v.Type.TypeAnnotation == TypeAnnotationPGJSONB {
			return quoteBareJSONBScalar(raw), nil
		}
		return json.RawMessage(raw), nil
	case TypeCodeArray:
		elems := v.V.([]Value)
		out := make([]any, len(elems))
		for i, e := range elems {
			enc, err := encodeJSON(e)
			if err != nil {
				return nil, err
			}
			out[i] = enc
		}
		return out, nil
	default:
		return nil, fmt.Errorf("changestreamcore: unsupported type code %q", v.Type.Code)
	}
}

// EncodeColumnsJSON renders cols/vals as the ascending-lexicographic JSON
// object a mod's values payload requires. Go's encoding/json already sorts
// map[string]V keys on marshal, so building a plain map and marshaling it
// is sufficient without a manual sort step.
func EncodeColumnsJSON(cols []*Column, vals []Value) (string, error) {
	obj := make(map[string]any, len(cols))
	for i, c := range cols {
		enc, err := encodeJSON(vals[i])
		if err != nil {
			return "", err
		}
		obj[c.Name] = enc
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// numericScale matches Spanner NUMERIC's fixed scale of 9 fractional digits;
// formatNumeric renders the shortest equivalent decimal by trimming the
// trailing zeros FloatString pads on, same as "11.000000000" -> "11".
const numericScale = 9

func formatNumeric(r *big.Rat) string {
	s := r.FloatString(numericScale)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}

// quoteBareJSONBScalar quotes raw when it is a bare JSON number or boolean,
// matching how PG_JSONB scalars are embedded in a mods JSON object. A
// top-level array has each element quoted the same way; objects, strings
// and null are embedded unchanged.
func quoteBareJSONBScalar(raw string) json.RawMessage {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return json.RawMessage(raw)
	}
	switch x := v.(type) {
	case float64, bool:
		q, _ := json.Marshal(fmt.Sprintf("%v", x))
		return json.RawMessage(q)
	case []any:
		out := make([]json.RawMessage, len(x))
		for i, e := range x {
			eb, _ := json.Marshal(e)
			out[i] = quoteBareJSONBScalar(string(eb))
		}
		b, _ := json.Marshal(out)
		return json.RawMessage(b)
	default:
		return json.RawMessage(raw)
	}
}
