package types

import "github.com/usestring/swagman-mcp/pkg/jsonschema"

// InferSchemaOutput is the output type for the swagman_infer_schema tool.
type InferSchemaOutput struct {
	// Inferred fragment as an untyped JSON value
	Schema any `json:"schema,omitempty"`

	// Flattened field table of the fragment
	Fields []jsonschema.Field `json:"fields,omitempty"`

	// Hint for the next step
	Hint string `json:"hint,omitempty"`
}

