package changestreamcore

import "encoding/json"

// typeDescriptorJSON is the wire shape of a column_types_type entry.
// Field declaration order already matches the required emission order
// (code, type_annotation, array_element_type), so marshaling this struct
// needs no manual key sort — unlike EncodeColumnsJSON, whose map keys are
// only known at runtime.
type typeDescriptorJSON struct {
	Code             TypeCode            `json:"code"`
	TypeAnnotation   TypeAnnotation      `json:"type_annotation,omitempty"`
	ArrayElementType *typeDescriptorJSON `json:"array_element_type,omitempty"`
}

func toTypeDescriptorJSON(t Type) *typeDescriptorJSON {
	d := &typeDescriptorJSON{Code: t.Code, TypeAnnotation: t.TypeAnnotation}
	if t.ArrayElementType != nil {
		d.ArrayElementType = toTypeDescriptorJSON(*t.ArrayElementType)
	}
	return d
}

// DescribeType renders t's column_types_type entry as JSON text.
func DescribeType(t Type) (string, error) {
	b, err := json.Marshal(toTypeDescriptorJSON(t))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
