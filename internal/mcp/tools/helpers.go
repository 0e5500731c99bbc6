// Package tools contains MCP tool implementations for swagman.
package tools

import (
	"github.com/goccy/go-json"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/swagman-mcp/internal/indexer"
	"github.com/usestring/swagman-mcp/pkg/types"
)

// MIME type constants.
const (
	MimeJSON = "application/json"
	MimeYAML = "application/yaml"
)

// MakeJSONToolResult creates a CallToolResult with JSON text content.
func MakeJSONToolResult(v any) (*sdkmcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: string(b)},
		},
	}, nil
}

// summaries converts indexed items to summaries, never returning nil.
func summaries(metas []*indexer.ItemMeta) []*types.ItemSummary {
	out := make([]*types.ItemSummary, 0, len(metas))
	for _, m := range metas {
		out = append(out, m.ToSummary())
	}
	return out
}

// page clamps offset and limit to n items.
func page(n, offset, limit int) (start, end int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end = offset + limit
	if limit <= 0 || end > n {
		end = n
	}
	return offset, end
}
