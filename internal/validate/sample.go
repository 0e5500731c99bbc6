package validate

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	schemainfer "github.com/usestring/swagman-mcp/pkg/jsonschema"
)

// Result is the outcome of validating one sample.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// SampleValidator validates JSON payloads against an inferred fragment.
type SampleValidator struct {
	schema *jsonschema.Schema
}

// NewSampleValidator compiles an inferred fragment. OpenAPI "nullable"
// markers are rewritten to JSON Schema type unions so null samples pass, and
// format keywords are treated as annotations.
func NewSampleValidator(fragment *invopop.Schema) (*SampleValidator, error) {
	data, err := json.Marshal(fragment)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	return NewSampleValidatorJSON(data)
}

// NewSampleValidatorJSON compiles a fragment given as JSON text, as produced
// by marshaling an inferred fragment.
func NewSampleValidatorJSON(data []byte) (*SampleValidator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshaling schema: %w", err)
	}
	doc = rewriteNullable(doc)

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("sample.json", doc); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile("sample.json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &SampleValidator{schema: compiled}, nil
}

// Validate validates a JSON document.
func (v *SampleValidator) Validate(data []byte) *Result {
	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return &Result{
			Valid:  false,
			Errors: []string{fmt.Sprintf("invalid JSON: %s", err.Error())},
		}
	}
	return v.ValidateValue(value)
}

// ValidateValue validates a value decoded with jsonschema.UnmarshalJSON or
// encoding/json.
func (v *SampleValidator) ValidateValue(value any) *Result {
	if err := v.schema.Validate(value); err != nil {
		return &Result{Valid: false, Errors: ErrorMessages(err)}
	}
	return &Result{Valid: true}
}

// rewriteNullable turns {"type": T, "nullable": true} into
// {"type": [T, "null"]} throughout a decoded schema document.
func rewriteNullable(v any) any {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			node[k] = rewriteNullable(child)
		}
		if nullable, _ := node[schemainfer.NullableKey].(bool); nullable {
			if typ, ok := node["type"].(string); ok {
				node["type"] = []any{typ, "null"}
			}
			delete(node, schemainfer.NullableKey)
		}
		return node
	case []any:
		for i, child := range node {
			node[i] = rewriteNullable(child)
		}
		return node
	default:
		return v
	}
}

// ErrorMessages flattens a validation error into sorted, deduplicated
// "path: message" lines.
func ErrorMessages(err error) []string {
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return []string{err.Error()}
	}

	errorsByPath := make(map[string][]string)
	collectErrors(validationErr, errorsByPath)

	paths := make([]string, 0, len(errorsByPath))
	for path := range errorsByPath {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var result []string
	for _, path := range paths {
		seen := make(map[string]bool)
		for _, msg := range errorsByPath[path] {
			if seen[msg] {
				continue
			}
			seen[msg] = true
			if path != "" {
				result = append(result, fmt.Sprintf("%s: %s", path, msg))
			} else {
				result = append(result, msg)
			}
		}
	}
	return result
}

var printer = message.NewPrinter(language.English)

// collectErrors gathers leaf errors (those without causes) by instance path.
func collectErrors(err *jsonschema.ValidationError, errorsByPath map[string][]string) {
	instancePath := ""
	if len(err.InstanceLocation) > 0 {
		instancePath = "/" + strings.Join(err.InstanceLocation, "/")
	}

	if err.ErrorKind != nil && len(err.Causes) == 0 {
		errMsg := err.ErrorKind.LocalizedString(printer)
		// $ref and "doesn't validate with" wrappers carry no detail
		if !strings.HasPrefix(errMsg, "$ref ") && !strings.HasPrefix(errMsg, "doesn't validate with") {
			errorsByPath[instancePath] = append(errorsByPath[instancePath], errMsg)
		}
	}

	for _, cause := range err.Causes {
		collectErrors(cause, errorsByPath)
	}
}
