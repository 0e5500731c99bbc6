package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/swagman-mcp/internal/openapi"
)

// GenerateOpenAPIInput is the input for swagman_generate_openapi.
type GenerateOpenAPIInput struct {
	Collection  string   `json:"collection,omitempty" jsonschema:"Path to a Postman collection file (default: SWAGMAN_COLLECTION)"`
	Environment string   `json:"environment,omitempty" jsonschema:"Path to a Postman environment file (default: SWAGMAN_ENVIRONMENT)"`
	Format      string   `json:"format,omitempty" jsonschema:"Output format: json or yaml (default: SWAGMAN_OPENAPI_FORMAT)"`
	Overlays    []string `json:"overlays,omitempty" jsonschema:"JSON overlays applied in order. A JSON array is an RFC 6902 patch, an object an RFC 7386 merge patch."`
	OutputPath  string   `json:"output_path,omitempty" jsonschema:"Write the document to this file instead of returning it"`
}

// GenerateOpenAPIOutput is the output for swagman_generate_openapi.
type GenerateOpenAPIOutput struct {
	Format      string `json:"format"`
	Document    string `json:"document,omitempty"`
	OutputPath  string `json:"output_path,omitempty"`
	PathCount   int    `json:"path_count"`
	SchemaCount int    `json:"schema_count"`
	Bytes       int    `json:"bytes"`
	Hint        string `json:"hint,omitempty"`
}

// ToolGenerateOpenAPI assembles an OpenAPI document from a collection.
func ToolGenerateOpenAPI(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input GenerateOpenAPIInput) (*sdkmcp.CallToolResult, GenerateOpenAPIOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input GenerateOpenAPIInput) (*sdkmcp.CallToolResult, GenerateOpenAPIOutput, error) {
		name := input.Format
		if name == "" {
			name = d.Config.OpenAPIFormat
		}
		format, err := openapi.ParseFormat(name)
		if err != nil {
			return nil, GenerateOpenAPIOutput{}, ErrInvalidInput(err.Error())
		}

		l, err := d.Load(ctx, input.Collection, input.Environment)
		if err != nil {
			return nil, GenerateOpenAPIOutput{}, err
		}

		doc, err := openapi.Build(l.Parser)
		if err != nil {
			return nil, GenerateOpenAPIOutput{}, WrapError(err)
		}

		overlays := make([][]byte, 0, len(input.Overlays))
		for _, o := range input.Overlays {
			overlays = append(overlays, []byte(o))
		}
		data, err := openapi.Render(doc, format, overlays...)
		if err != nil {
			return nil, GenerateOpenAPIOutput{}, ErrInvalidInput(err.Error())
		}

		out := GenerateOpenAPIOutput{
			Format:      string(format),
			PathCount:   doc.Paths.Len(),
			SchemaCount: doc.Components.Schemas.Len(),
			Bytes:       len(data),
		}

		if input.OutputPath != "" {
			if err := openapi.WriteBytes(input.OutputPath, data); err != nil {
				return nil, GenerateOpenAPIOutput{}, WrapError(err)
			}
			out.OutputPath = input.OutputPath
			out.Hint = fmt.Sprintf("Wrote %d bytes to %s.", len(data), input.OutputPath)
			return nil, out, nil
		}

		out.Document = string(data)
		if out.PathCount == 0 {
			out.Hint = "The document has no paths: the collection has no request items."
		}
		return nil, out, nil
	}
}
