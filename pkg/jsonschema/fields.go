package jsonschema

import (
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/usestring/swagman-mcp/pkg/example"
)

// Field is one row of the flattened view of an inferred fragment.
type Field struct {
	Path     string `json:"path"`              // dotted path, "[]" marks array items (e.g. "user.tags[]")
	Type     string `json:"type"`              // lattice type, "array<a|b>" for mixed arrays, "any" for {}
	Format   string `json:"format,omitempty"`  // int32 for integers, "null" for booleans
	Required bool   `json:"required"`          // listed in the parent's required array
	Nullable bool   `json:"nullable"`          // inferred from a null example
	Example  any    `json:"example,omitempty"` // scalar example value, when a sample was given
}

const defaultMaxDepth = 8

// Fields flattens an inferred fragment into a table of field paths.
// sample is the example value the fragment was inferred from; it may be nil,
// in which case rows carry no examples.
func Fields(schema *jsonschema.Schema, sample any) []Field {
	if schema == nil {
		return nil
	}
	var fields []Field
	walkFields(schema, "", sample, 0, &fields)
	return fields
}

func walkFields(schema *jsonschema.Schema, path string, sample any, depth int, fields *[]Field) {
	if depth > defaultMaxDepth {
		*fields = append(*fields, Field{Path: path + " (truncated at depth limit)", Type: "..."})
		return
	}

	switch {
	case schema.Type == TypeObject && schema.Properties != nil:
		obj, _ := sample.(*example.Object)
		required := make(map[string]bool, len(schema.Required))
		for _, name := range schema.Required {
			required[name] = true
		}

		for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
			fieldPath := joinPath(path, pair.Key)

			var value any
			if obj != nil {
				value, _ = obj.Get(pair.Key)
			}

			*fields = append(*fields, fieldRow(fieldPath, pair.Value, required[pair.Key], value))
			walkFields(pair.Value, fieldPath, value, depth+1, fields)
		}

	case schema.Type == TypeArray && schema.Items != nil:
		var first any
		if arr, ok := sample.([]any); ok && len(arr) > 0 {
			first = arr[0]
		}
		if schema.Items.Type == TypeObject || schema.Items.Type == TypeArray {
			walkFields(schema.Items, path+"[]", first, depth+1, fields)
		}
	}
}

func fieldRow(path string, schema *jsonschema.Schema, required bool, value any) Field {
	f := Field{
		Path:     path,
		Type:     resolveType(schema),
		Format:   schema.Format,
		Required: required,
		Nullable: IsNullable(schema),
	}
	switch value.(type) {
	case *example.Object, []any, example.Sentinel, nil:
	default:
		f.Example = value
	}
	return f
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// resolveType returns the display type of a fragment, spelling out mixed
// array element types.
func resolveType(schema *jsonschema.Schema) string {
	if schema.Type == TypeArray && schema.Items != nil && len(schema.Items.AllOf) > 0 {
		seen := make(map[string]bool)
		var types []string
		for _, s := range schema.Items.AllOf {
			if s.Type != "" && !seen[s.Type] {
				seen[s.Type] = true
				types = append(types, s.Type)
			}
		}
		return "array<" + strings.Join(types, "|") + ">"
	}
	if schema.Type != "" {
		return schema.Type
	}
	if schema.AdditionalProperties != nil {
		return "any"
	}
	if IsEmpty(schema) {
		return "any"
	}
	return "unknown"
}
