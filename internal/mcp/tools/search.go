package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/swagman-mcp/internal/search"
	"github.com/usestring/swagman-mcp/pkg/types"
)

// SearchItemsInput is the input for swagman_search_items.
type SearchItemsInput struct {
	Collection  string              `json:"collection,omitempty" jsonschema:"Path to a Postman collection file (default: SWAGMAN_COLLECTION)"`
	Environment string              `json:"environment,omitempty" jsonschema:"Path to a Postman environment file (default: SWAGMAN_ENVIRONMENT)"`
	Query       string              `json:"query,omitempty" jsonschema:"Free text search across URL path tokens, item names, and schema names. Tokens are ANDed: all terms must match somewhere."`
	Filters     *SearchItemsFilters `json:"filters,omitempty" jsonschema:"Structured filters"`
	Limit       int                 `json:"limit,omitempty" jsonschema:"Max results (default: 10, max: 100)"`
	Offset      int                 `json:"offset,omitempty" jsonschema:"Pagination offset"`
}

// SearchItemsFilters contains filter criteria for search.
type SearchItemsFilters struct {
	Method       string `json:"method,omitempty" jsonschema:"HTTP method"`
	Status       int    `json:"status,omitempty" jsonschema:"Status code of at least one recorded response"`
	Folder       string `json:"folder,omitempty" jsonschema:"Folder path such as 'Users/Admin'; includes subfolders"`
	PathContains string `json:"path_contains,omitempty" jsonschema:"Substring of the normalized path or raw URI"`
	HeaderName   string `json:"header_name,omitempty" jsonschema:"Filter by request or response header presence (name only)"`
	JSONOnly     bool   `json:"json_only,omitempty" jsonschema:"Only items with at least one JSON response body"`
}

// SearchItemsOutput is the output for swagman_search_items.
type SearchItemsOutput struct {
	Results   []types.SearchResult `json:"results,omitzero"`
	TotalHint int                  `json:"total_hint,omitempty"`
	Hint      string               `json:"hint,omitempty"`
}

// ToolSearchItems searches collection items.
func ToolSearchItems(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchItemsInput) (*sdkmcp.CallToolResult, SearchItemsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchItemsInput) (*sdkmcp.CallToolResult, SearchItemsOutput, error) {
		l, err := d.Load(ctx, input.Collection, input.Environment)
		if err != nil {
			return nil, SearchItemsOutput{}, err
		}

		limit := input.Limit
		if limit <= 0 {
			limit = d.Config.DefaultSearchLimit
		}

		searchReq := &types.SearchRequest{
			Query:  input.Query,
			Limit:  limit,
			Offset: input.Offset,
		}
		if input.Filters != nil {
			searchReq.Filters = &types.SearchFilters{
				Method:       input.Filters.Method,
				Status:       input.Filters.Status,
				Folder:       input.Filters.Folder,
				PathContains: input.Filters.PathContains,
				HeaderName:   input.Filters.HeaderName,
				JSONOnly:     input.Filters.JSONOnly,
			}
		}

		resp := search.New(l.Index).Search(searchReq)

		var hint string
		if len(resp.Results) == 0 {
			hint = "No matches found. Try fewer query terms, or swagman_list_items to browse everything."
		} else if resp.TotalHint > input.Offset+len(resp.Results) {
			nextOffset := input.Offset + len(resp.Results)
			hint = fmt.Sprintf("Showing %d of ~%d. Add filters to narrow, or use offset=%d for next page.", len(resp.Results), resp.TotalHint, nextOffset)
		} else if len(resp.Results) == 1 && resp.Results[0].Summary != nil {
			hint = fmt.Sprintf("Single match. Use swagman_get_schemas(path=%q) for its schemas.", resp.Results[0].Summary.Key)
		} else {
			hint = "Use swagman_get_schemas with a result key, or swagman_query to extract values."
		}

		return nil, SearchItemsOutput{
			Results:   resp.Results,
			TotalHint: resp.TotalHint,
			Hint:      hint,
		}, nil
	}
}
