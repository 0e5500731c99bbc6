// Package jsonschema infers structural schemas from single JSON example values.
//
// Inference works on a closed type lattice (integer, array, string, boolean,
// object) and emits OpenAPI-flavoured fragments: integers carry format int32,
// null falls back to a nullable string, and two sentinel values from package
// example request hand-shaped fragments in place of concrete data.
package jsonschema

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/invopop/jsonschema"

	"github.com/usestring/swagman-mcp/pkg/example"
)

// Types of the inference lattice.
const (
	TypeInteger = "integer"
	TypeArray   = "array"
	TypeString  = "string"
	TypeBoolean = "boolean"
	TypeObject  = "object"
)

// Formats attached to scalar fragments. Booleans carry FormatNullFlag in their
// format slot, reproducing the historical output of the converter.
const (
	FormatInt32    = "int32"
	FormatNullFlag = "null"
)

// NullableKey is the Extras key holding the nullable marker.
const NullableKey = "nullable"

// AdditionalPropertiesKey is the properties slot filled in for object entries
// whose value is example.IgnorePropertyKeyValue.
const AdditionalPropertiesKey = "additionalProperties"

// Infer builds a schema fragment for one example value.
// The input is never modified and every call returns a fresh tree.
// It fails only with *TypeMappingError, for values outside the lattice.
func Infer(v any) (*jsonschema.Schema, error) {
	if v == nil {
		return nullSchema(), nil
	}

	typ, format, err := lookup(v)
	if err != nil {
		return nil, err
	}

	switch val := v.(type) {
	case example.Sentinel:
		if val == example.IgnoreProperty {
			return &jsonschema.Schema{AdditionalProperties: emptySchema()}, nil
		}
		return &jsonschema.Schema{Type: typ}, nil

	case []any:
		return inferArraySchema(val)

	case *example.Object:
		return inferObjectSchema(val)

	case map[string]any:
		return inferObjectSchema(orderedFromMap(val))
	}

	return &jsonschema.Schema{Type: typ, Format: format}, nil
}

// InferJSON decodes a JSON document and infers its schema.
func InferJSON(data []byte, opts ...example.DecodeOption) (*jsonschema.Schema, error) {
	v, err := example.Decode(data, opts...)
	if err != nil {
		return nil, err
	}
	return Infer(v)
}

// Kind returns the lattice type of v. Null maps to the string type, the same
// fallback Infer uses.
func Kind(v any) (string, error) {
	if v == nil {
		return TypeString, nil
	}
	typ, _, err := lookup(v)
	return typ, err
}

// IsNullable reports whether the fragment was inferred from null.
func IsNullable(s *jsonschema.Schema) bool {
	if s == nil || s.Extras == nil {
		return false
	}
	nullable, _ := s.Extras[NullableKey].(bool)
	return nullable
}

// lookup maps a non-null value to its lattice type and format.
func lookup(v any) (string, string, error) {
	switch val := v.(type) {
	case bool:
		return TypeBoolean, FormatNullFlag, nil

	case json.Number:
		if _, err := val.Int64(); err == nil {
			return TypeInteger, FormatInt32, nil
		}
		f, err := val.Float64()
		if err == nil && isWhole(f) {
			return TypeInteger, FormatInt32, nil
		}
		return "", "", &TypeMappingError{Value: v}

	case float64:
		if isWhole(val) {
			return TypeInteger, FormatInt32, nil
		}
		return "", "", &TypeMappingError{Value: v}

	case float32:
		if isWhole(float64(val)) {
			return TypeInteger, FormatInt32, nil
		}
		return "", "", &TypeMappingError{Value: v}

	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInteger, FormatInt32, nil

	case string, example.Sentinel:
		return TypeString, "", nil

	case []any:
		return TypeArray, "", nil

	case *example.Object, map[string]any:
		return TypeObject, "", nil

	default:
		return "", "", &TypeMappingError{Value: v}
	}
}

func isWhole(f float64) bool {
	return math.Trunc(f) == f && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func inferArraySchema(arr []any) (*jsonschema.Schema, error) {
	schema := &jsonschema.Schema{Type: TypeArray}

	kinds := make(map[string]struct{})
	for _, item := range arr {
		kind, err := Kind(item)
		if err != nil {
			return nil, err
		}
		kinds[kind] = struct{}{}
	}

	switch len(kinds) {
	case 0:
		schema.Items = emptySchema()

	case 1:
		items, err := Infer(arr[0])
		if err != nil {
			return nil, err
		}
		schema.Items = items

	default:
		// Every element is listed, not one entry per kind.
		allOf := make([]*jsonschema.Schema, 0, len(arr))
		for _, item := range arr {
			s, err := Infer(item)
			if err != nil {
				return nil, err
			}
			allOf = append(allOf, s)
		}
		schema.Items = &jsonschema.Schema{AllOf: allOf}
	}

	return schema, nil
}

func inferObjectSchema(obj *example.Object) (*jsonschema.Schema, error) {
	schema := &jsonschema.Schema{
		Type:       TypeObject,
		Properties: jsonschema.NewProperties(),
	}
	if obj.Len() > 0 {
		schema.Required = make([]string, 0, obj.Len())
	}

	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		if example.IsSentinel(pair.Value, example.IgnorePropertyKeyValue) {
			schema.Properties.Set(AdditionalPropertiesKey, emptySchema())
			continue
		}

		prop, err := Infer(pair.Value)
		if err != nil {
			return nil, err
		}
		schema.Required = append(schema.Required, pair.Key)
		schema.Properties.Set(pair.Key, prop)
	}

	return schema, nil
}

// orderedFromMap gives plain Go maps a deterministic key order.
func orderedFromMap(m map[string]any) *example.Object {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	obj := example.NewObject()
	for _, k := range keys {
		obj.Set(k, m[k])
	}
	return obj
}

func nullSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:   TypeString,
		Extras: map[string]any{NullableKey: true},
	}
}

// emptySchema is the {} fragment: no constraints, unknown shape.
// The non-nil Extras map keeps it from serializing as the boolean schema true.
func emptySchema() *jsonschema.Schema {
	return &jsonschema.Schema{Extras: map[string]any{}}
}

// Empty returns a fresh {} fragment, the schema of a value of unknown shape.
func Empty() *jsonschema.Schema {
	return emptySchema()
}

// IsEmpty reports whether s is the {} fragment.
func IsEmpty(s *jsonschema.Schema) bool {
	if s == nil {
		return false
	}
	return s.Type == "" && s.Format == "" && s.Properties == nil && s.Items == nil &&
		s.AllOf == nil && s.AdditionalProperties == nil && len(s.Required) == 0 && len(s.Extras) == 0
}
