package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/swagman-mcp/pkg/collection"
	"github.com/usestring/swagman-mcp/pkg/example"
	"github.com/usestring/swagman-mcp/pkg/jsonschema"
	"github.com/usestring/swagman-mcp/pkg/parser"
	"github.com/usestring/swagman-mcp/pkg/types"
)

// GetSchemasInput is the input for swagman_get_schemas.
type GetSchemasInput struct {
	Collection  string `json:"collection,omitempty" jsonschema:"Path to a Postman collection file (default: SWAGMAN_COLLECTION)"`
	Environment string `json:"environment,omitempty" jsonschema:"Path to a Postman environment file (default: SWAGMAN_ENVIRONMENT)"`
	Path        string `json:"path,omitempty" jsonschema:"Item key (raw request URI) or schema name such as UsersId200. Omit to get every item."`
}

// GetSchemasOutput is the output for swagman_get_schemas.
type GetSchemasOutput struct {
	// Key is the item key of the match when path was given.
	Key string `json:"key,omitempty"`

	// Schemas holds {name: schema} of the matched item.
	Schemas any `json:"schemas,omitempty"`

	// Items holds {uri: {name: schema}} for the whole collection.
	Items any `json:"items,omitempty"`

	ItemCount   int    `json:"item_count"`
	SchemaCount int    `json:"schema_count"`
	Hint        string `json:"hint,omitempty"`
}

// ToolGetSchemas infers response schemas of one item or the whole collection.
func ToolGetSchemas(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetSchemasInput) (*sdkmcp.CallToolResult, GetSchemasOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetSchemasInput) (*sdkmcp.CallToolResult, GetSchemasOutput, error) {
		l, err := d.Load(ctx, input.Collection, input.Environment)
		if err != nil {
			return nil, GetSchemasOutput{}, err
		}

		res, err := l.Parser.GetSchemas(input.Path)
		if err != nil {
			return nil, GetSchemasOutput{}, WrapError(err)
		}

		if input.Path != "" {
			if res.Match == nil {
				return nil, GetSchemasOutput{}, ErrNotFound("item or schema", input.Path)
			}
			return nil, GetSchemasOutput{
				Key:         res.Key,
				Schemas:     res.Match,
				ItemCount:   1,
				SchemaCount: res.Match.Len(),
				Hint:        "Use swagman_validate_sample(schema_name=...) to check a payload against one of these schemas.",
			}, nil
		}

		out := GetSchemasOutput{
			Items:     res.Items,
			ItemCount: res.Items.Len(),
		}
		for pair := res.Items.Oldest(); pair != nil; pair = pair.Next() {
			out.SchemaCount += pair.Value.Len()
		}
		if !l.Parser.MergeFolders() && out.ItemCount < l.Index.DocCount() {
			out.Hint = fmt.Sprintf("%d of %d items shown: a folder replaces earlier siblings unless SWAGMAN_MERGE_FOLDERS is set.", out.ItemCount, l.Index.DocCount())
		} else {
			out.Hint = "Use swagman_generate_openapi to assemble these schemas into an OpenAPI document."
		}
		return nil, out, nil
	}
}

// InferSchemaInput is the input for swagman_infer_schema.
type InferSchemaInput struct {
	Sample      string `json:"sample,omitempty" jsonschema:"JSON document to infer a schema from. Either sample or key is required."`
	Collection  string `json:"collection,omitempty" jsonschema:"Path to a Postman collection file (default: SWAGMAN_COLLECTION)"`
	Environment string `json:"environment,omitempty" jsonschema:"Path to a Postman environment file (default: SWAGMAN_ENVIRONMENT)"`
	Key         string `json:"key,omitempty" jsonschema:"Item key (raw request URI) whose recorded response body is the sample"`
	Status      int    `json:"status,omitempty" jsonschema:"Status code of the response to use (default: first response with a JSON body)"`
}

// ToolInferSchema infers a schema fragment and its field table from one
// example value.
func ToolInferSchema(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input InferSchemaInput) (*sdkmcp.CallToolResult, types.InferSchemaOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input InferSchemaInput) (*sdkmcp.CallToolResult, types.InferSchemaOutput, error) {
		if input.Sample == "" && input.Key == "" {
			return nil, types.InferSchemaOutput{}, ErrInvalidInput("either sample or key is required")
		}

		var value any
		var hint string
		if input.Sample != "" {
			var opts []example.DecodeOption
			if d.Config.SentinelMarkers {
				opts = append(opts, example.WithSentinelMarkers())
			}
			v, err := example.Decode([]byte(input.Sample), opts...)
			if err != nil {
				return nil, types.InferSchemaOutput{}, ErrInvalidInput(fmt.Sprintf("sample is not valid JSON: %v", err))
			}
			value = v
			hint = "Use swagman_validate_sample(schema=...) to check other payloads against this fragment."
		} else {
			l, err := d.Load(ctx, input.Collection, input.Environment)
			if err != nil {
				return nil, types.InferSchemaOutput{}, err
			}
			name, v, err := responseSample(l.Parser, input.Key, input.Status)
			if err != nil {
				return nil, types.InferSchemaOutput{}, err
			}
			value = v
			hint = fmt.Sprintf("Inferred from the response recorded as schema %s.", name)
		}

		schema, err := jsonschema.Infer(value)
		if err != nil {
			return nil, types.InferSchemaOutput{}, WrapError(err)
		}

		return nil, types.InferSchemaOutput{
			Schema: schema,
			Fields: jsonschema.Fields(schema, value),
			Hint:   hint,
		}, nil
	}
}

// responseSample finds the response of the item keyed key with the given
// status (0 picks the first JSON body) and returns its schema name and
// decoded body.
func responseSample(p *parser.Parser, key string, status int) (string, any, error) {
	res, err := p.GetItems(key)
	if err != nil {
		return "", nil, WrapError(err)
	}
	if res.Match == nil {
		return "", nil, ErrNotFound("item", key)
	}
	item := &collection.Item{Request: res.Match.Request}

	for i := range res.Match.Responses {
		resp := &res.Match.Responses[i]
		if status != 0 && resp.Code != status {
			continue
		}
		value, ok, err := resp.DecodeBody(p.DecodeOptions()...)
		if err != nil {
			return "", nil, WrapError(err)
		}
		if !ok {
			if status != 0 {
				return "", nil, ErrInvalidInput(fmt.Sprintf("the %d response of %s has no JSON body", status, key))
			}
			continue
		}
		return p.SchemaName(item, resp.Code), value, nil
	}

	if status != 0 {
		return "", nil, ErrNotFound("response", fmt.Sprintf("%s %d", key, status))
	}
	return "", nil, ErrNotFound("JSON response", key)
}
