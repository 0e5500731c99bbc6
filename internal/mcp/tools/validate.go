package tools

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/swagman-mcp/internal/validate"
)

// ValidateSampleInput is the input for swagman_validate_sample.
type ValidateSampleInput struct {
	Sample      string `json:"sample" jsonschema:"required,JSON document to validate"`
	Schema      string `json:"schema,omitempty" jsonschema:"Schema fragment as JSON text, e.g. the schema returned by swagman_infer_schema. Either schema or schema_name is required."`
	SchemaName  string `json:"schema_name,omitempty" jsonschema:"Name of an inferred collection schema such as UsersId200"`
	Collection  string `json:"collection,omitempty" jsonschema:"Path to a Postman collection file, used with schema_name (default: SWAGMAN_COLLECTION)"`
	Environment string `json:"environment,omitempty" jsonschema:"Path to a Postman environment file (default: SWAGMAN_ENVIRONMENT)"`
}

// ValidateSampleOutput is the output for swagman_validate_sample.
type ValidateSampleOutput struct {
	Valid      bool     `json:"valid"`
	Errors     []string `json:"errors,omitzero"`
	SchemaName string   `json:"schema_name,omitempty"`
	Hint       string   `json:"hint,omitempty"`
}

// ToolValidateSample checks a JSON payload against an inferred fragment.
func ToolValidateSample(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateSampleInput) (*sdkmcp.CallToolResult, ValidateSampleOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateSampleInput) (*sdkmcp.CallToolResult, ValidateSampleOutput, error) {
		if input.Sample == "" {
			return nil, ValidateSampleOutput{}, ErrInvalidInput("sample is required")
		}
		if input.Schema == "" && input.SchemaName == "" {
			return nil, ValidateSampleOutput{}, ErrInvalidInput("either schema or schema_name is required")
		}

		var v *validate.SampleValidator
		if input.Schema != "" {
			var err error
			v, err = validate.NewSampleValidatorJSON([]byte(input.Schema))
			if err != nil {
				return nil, ValidateSampleOutput{}, ErrInvalidInput(fmt.Sprintf("invalid schema: %v", err))
			}
		} else {
			l, err := d.Load(ctx, input.Collection, input.Environment)
			if err != nil {
				return nil, ValidateSampleOutput{}, err
			}
			defs, err := l.Parser.SchemaDefinitions()
			if err != nil {
				return nil, ValidateSampleOutput{}, WrapError(err)
			}
			fragment, ok := defs.Get(input.SchemaName)
			if !ok {
				return nil, ValidateSampleOutput{}, ErrNotFound("schema", input.SchemaName)
			}
			v, err = validate.NewSampleValidator(fragment)
			if err != nil {
				return nil, ValidateSampleOutput{}, &CodedError{Code: ErrCodeValidationError, Message: "cannot compile schema " + input.SchemaName, Cause: err}
			}
		}

		if !json.Valid([]byte(input.Sample)) {
			return nil, ValidateSampleOutput{}, ErrInvalidInput("sample is not valid JSON")
		}

		res := v.Validate([]byte(input.Sample))
		out := ValidateSampleOutput{
			Valid:      res.Valid,
			Errors:     res.Errors,
			SchemaName: input.SchemaName,
		}
		if !res.Valid {
			out.Hint = "Errors are listed per JSON pointer into the sample. Inferred schemas require every key seen in the recorded example."
		}
		return nil, out, nil
	}
}
