package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/swagman-mcp/internal/query"
	"github.com/usestring/swagman-mcp/internal/validate"
	"github.com/usestring/swagman-mcp/pkg/types"
)

// CollectionInfoInput is the input for swagman_collection_info.
type CollectionInfoInput struct {
	Collection  string `json:"collection,omitempty" jsonschema:"Path to a Postman collection file (default: SWAGMAN_COLLECTION)"`
	Environment string `json:"environment,omitempty" jsonschema:"Path to a Postman environment file (default: SWAGMAN_ENVIRONMENT)"`
	Validate    bool   `json:"validate,omitempty" jsonschema:"Validate the collection against the Postman reference schema of its version. Default: false"`
}

// CollectionInfoOutput is the output for swagman_collection_info.
type CollectionInfoOutput struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Version       string   `json:"version"`
	Host          string   `json:"host"`
	BasePath      string   `json:"base_path"`
	Schemes       []string `json:"schemes,omitzero"`
	Schema        string   `json:"schema"`
	SchemaVersion string   `json:"schema_version,omitempty"`
	ItemCount     int      `json:"item_count"`
	Folders       []string `json:"folders,omitzero"`

	Validated        bool     `json:"validated,omitempty"`
	Valid            bool     `json:"valid,omitempty"`
	ValidatedVersion string   `json:"validated_version,omitempty"`
	ValidationErrors []string `json:"validation_errors,omitzero"`

	Hint string `json:"hint,omitempty"`
}

// ToolCollectionInfo reports collection metadata and, optionally, whether the
// collection conforms to its reference schema.
func ToolCollectionInfo(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input CollectionInfoInput) (*sdkmcp.CallToolResult, CollectionInfoOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input CollectionInfoInput) (*sdkmcp.CallToolResult, CollectionInfoOutput, error) {
		l, err := d.Load(ctx, input.Collection, input.Environment)
		if err != nil {
			return nil, CollectionInfoOutput{}, err
		}
		p := l.Parser

		out := CollectionInfoOutput{
			Title:         p.Title(),
			Description:   p.Description(),
			Version:       p.Version(),
			Host:          p.Host(),
			BasePath:      p.BasePath(),
			Schemes:       p.Schemes(),
			Schema:        p.Schema(),
			SchemaVersion: p.SchemaVersion(),
			ItemCount:     l.Index.DocCount(),
			Folders:       folders(l.Index.DocCount(), func(i int) string { return l.Index.GetMeta(uint32(i)).Folder }),
		}

		if input.Validate {
			out.Validated = true
			out.ValidatedVersion = d.Validator.VersionOf(l.Collection)
			if err := d.Validator.Validate(l.Collection); err != nil {
				out.ValidationErrors = validate.ErrorMessages(err)
			} else {
				out.Valid = true
			}
		}

		switch {
		case out.ItemCount == 0:
			out.Hint = "The collection has no request items."
		case out.Validated && !out.Valid:
			out.Hint = "The collection does not match its reference schema; schema inference may still work for well-formed items."
		default:
			out.Hint = fmt.Sprintf("Use swagman_list_items to browse the %d items, or swagman_get_schemas to infer response schemas.", out.ItemCount)
		}

		return nil, out, nil
	}
}

// folders returns the distinct non-empty folder paths in first-seen order.
func folders(n int, folderAt func(int) string) []string {
	seen := make(map[string]bool)
	var out []string
	for i := range n {
		f := folderAt(i)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// ListItemsInput is the input for swagman_list_items.
type ListItemsInput struct {
	Collection  string `json:"collection,omitempty" jsonschema:"Path to a Postman collection file (default: SWAGMAN_COLLECTION)"`
	Environment string `json:"environment,omitempty" jsonschema:"Path to a Postman environment file (default: SWAGMAN_ENVIRONMENT)"`
	Where       string `json:"where,omitempty" jsonschema:"Boolean expression over item fields: index, key, name, folder, method, path, codes, schemas, headers, json. Example: method == \"POST\" && 201 in codes"`
	Limit       int    `json:"limit,omitempty" jsonschema:"Max items (default: 50)"`
	Offset      int    `json:"offset,omitempty" jsonschema:"Pagination offset"`
}

// ListItemsOutput is the output for swagman_list_items.
type ListItemsOutput struct {
	Items []*types.ItemSummary `json:"items,omitzero"`
	Total int                  `json:"total"`
	Hint  string               `json:"hint,omitempty"`
}

// ToolListItems lists the leaf items of a collection in walk order.
func ToolListItems(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ListItemsInput) (*sdkmcp.CallToolResult, ListItemsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ListItemsInput) (*sdkmcp.CallToolResult, ListItemsOutput, error) {
		var where *query.Predicate
		if input.Where != "" {
			var err error
			where, err = query.CompileWhere(input.Where)
			if err != nil {
				return nil, ListItemsOutput{}, ErrInvalidInput(err.Error())
			}
		}

		l, err := d.Load(ctx, input.Collection, input.Environment)
		if err != nil {
			return nil, ListItemsOutput{}, err
		}

		sel, err := query.Select(l.Parser, l.Index, where)
		if err != nil {
			return nil, ListItemsOutput{}, WrapError(err)
		}

		limit := input.Limit
		if limit <= 0 {
			limit = d.Config.DefaultListLimit
		}
		start, end := page(len(sel.Metas), input.Offset, limit)

		out := ListItemsOutput{
			Items: summaries(sel.Metas[start:end]),
			Total: len(sel.Metas),
		}
		switch {
		case out.Total == 0 && where != nil:
			out.Hint = "No items matched the where expression."
		case end < out.Total:
			out.Hint = fmt.Sprintf("Showing %d of %d. Use offset=%d for the next page.", end-start, out.Total, end)
		case out.Total > 0:
			out.Hint = "Use swagman_get_schemas(path=<key>) for an item's response schemas."
		}

		return nil, out, nil
	}
}
