package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/swagman-mcp/internal/query"
	"github.com/usestring/swagman-mcp/pkg/jsoncompact"
	"github.com/usestring/swagman-mcp/pkg/types"
)

// QueryInput is the input for swagman_query.
type QueryInput struct {
	Collection  string `json:"collection,omitempty" jsonschema:"Path to a Postman collection file (default: SWAGMAN_COLLECTION)"`
	Environment string `json:"environment,omitempty" jsonschema:"Path to a Postman environment file (default: SWAGMAN_ENVIRONMENT)"`
	Expression  string `json:"expression" jsonschema:"required,JQ expression run once per document. For target=bodies: CSS selector, XPath, regex, or form key also work."`
	Where       string `json:"where,omitempty" jsonschema:"Boolean expression selecting items first, over: index, key, name, folder, method, path, codes, schemas, headers, json"`
	Target      string `json:"target,omitempty" jsonschema:"Documents to query: item (request and decoded responses, default), responses (one per response), schemas (inferred schemas by name), bodies (raw response bodies of any content type)"`
	Mode        string `json:"mode,omitempty" jsonschema:"For target=bodies: jq, css, xpath, regex, form (auto-detected from content-type if omitted)"`
	Deduplicate bool   `json:"deduplicate,omitempty" jsonschema:"Remove duplicate values (default: false)"`
	MaxResults  int    `json:"max_results,omitempty" jsonschema:"Max results to return (default: 1000)"`
	Compact     bool   `json:"compact,omitempty" jsonschema:"Shorten long arrays and strings inside returned values (default: false)"`
}

// ToolQuery runs an expression over the documents of the selected items.
func ToolQuery(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryInput) (*sdkmcp.CallToolResult, types.QueryResponse, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input QueryInput) (*sdkmcp.CallToolResult, types.QueryResponse, error) {
		if input.Expression == "" {
			return nil, types.QueryResponse{}, ErrInvalidInput("expression is required")
		}
		switch input.Target {
		case "", query.TargetItem, query.TargetResponses, query.TargetSchemas, query.TargetBodies:
		default:
			return nil, types.QueryResponse{}, ErrInvalidInput("target must be 'item', 'responses', 'schemas', or 'bodies'")
		}
		if input.Mode != "" && input.Target != query.TargetBodies {
			return nil, types.QueryResponse{}, ErrInvalidInput("mode applies to target=bodies only")
		}

		l, err := d.Load(ctx, input.Collection, input.Environment)
		if err != nil {
			return nil, types.QueryResponse{}, err
		}

		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = d.Config.QueryMaxResults
		}

		resp, err := d.Query.Execute(l.Parser, l.Index, &types.QueryRequest{
			Expression:  input.Expression,
			Where:       input.Where,
			Target:      input.Target,
			Mode:        input.Mode,
			Deduplicate: input.Deduplicate,
			MaxResults:  maxResults,
		})
		if err != nil {
			return nil, types.QueryResponse{}, ErrInvalidInput(err.Error())
		}
		if input.Compact {
			for i, v := range resp.Values {
				resp.Values[i] = jsoncompact.CompactValue(v, nil)
			}
		}
		return nil, *resp, nil
	}
}
