// Package types provides shared types for swagman-mcp.
// These types are used across multiple packages and are designed for external consumption.
package types

import "github.com/goccy/go-json"

// ToAny round-trips a typed value through JSON to produce an untyped any.
// Use this when a tool output field must be any (instead of json.RawMessage)
// to satisfy the MCP SDK's schema validation.
func ToAny(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ItemSummary is a compact representation of one collection leaf item.
type ItemSummary struct {
	Index       int      `json:"index"`
	Key         string   `json:"key"`
	Name        string   `json:"name,omitempty"`
	Folder      string   `json:"folder,omitempty"`
	Method      string   `json:"method"`
	Path        string   `json:"path"`
	StatusCodes []int    `json:"status_codes,omitempty"`
	SchemaNames []string `json:"schema_names,omitempty"`
}
