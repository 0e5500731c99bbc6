package tools

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// AddTool registers a typed tool after checking its output type with
// CheckOutputSchema. Every built-in swagman tool goes through here, as do
// tools added with mcpsrv.WithTool and mcpsrv.WithDepsTool.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	CheckOutputSchema[Out](t.Name)
	sdkmcp.AddTool(srv, t, h)
}

// CheckOutputSchema panics when a tool's structured output could not match
// the schema the SDK infers for Out. Two mistakes are caught:
//
//   - a field whose type encodes itself (json.RawMessage, ordered maps,
//     *example.Object, invopop schemas). The SDK infers a schema from the Go
//     struct, which says nothing about the JSON the type actually writes.
//     Such values belong in an any field, filled with types.ToAny.
//   - a zero value that fails the inferred schema, usually a nil slice
//     marshaled as null where an array is expected. Tag it omitzero.
//
// The untyped any output is not checked, and inference failures are left
// for sdkmcp.AddTool to report.
func CheckOutputSchema[Out any](toolName string) {
	rt := reflect.TypeFor[Out]()
	if rt == reflect.TypeFor[any]() {
		return
	}
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	if paths := selfEncodingFields(rt, nil, make(map[reflect.Type]bool)); len(paths) > 0 {
		panic(fmt.Sprintf("tool %q: output %s has self-encoding fields at %s; use any and types.ToAny",
			toolName, rt, strings.Join(paths, ", ")))
	}

	schema, err := jsonschema.ForType(rt, &jsonschema.ForOptions{})
	if err != nil {
		return
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return
	}
	data, err := json.Marshal(reflect.Zero(rt).Interface())
	if err != nil {
		return
	}
	var zero map[string]any
	if err := json.Unmarshal(data, &zero); err != nil {
		return
	}
	if err := resolved.Validate(&zero); err != nil {
		panic(fmt.Sprintf("tool %q: zero %s output %s fails its schema: %v; tag nil slices omitzero",
			toolName, rt, data, err))
	}
}

var marshalerType = reflect.TypeFor[json.Marshaler]()

func encodesItself(t reflect.Type) bool {
	return t.Implements(marshalerType) || reflect.PointerTo(t).Implements(marshalerType)
}

// selfEncodingFields returns the dotted paths of exported fields, list
// elements and map values below t whose type implements json.Marshaler.
func selfEncodingFields(t reflect.Type, path []string, seen map[reflect.Type]bool) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if len(path) > 0 && encodesItself(t) {
		return []string{strings.Join(path, ".")}
	}
	if seen[t] {
		return nil
	}
	seen[t] = true
	defer delete(seen, t)

	var found []string
	switch t.Kind() {
	case reflect.Struct:
		for i := range t.NumField() {
			if f := t.Field(i); f.IsExported() {
				found = append(found, selfEncodingFields(f.Type, append(path, f.Name), seen)...)
			}
		}
	case reflect.Slice, reflect.Array:
		found = selfEncodingFields(t.Elem(), append(path, "[]"), seen)
	case reflect.Map:
		found = selfEncodingFields(t.Elem(), append(path, "[value]"), seen)
	}
	return found
}
