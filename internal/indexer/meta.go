// Package indexer provides item metadata and indexing functionality.
package indexer

import (
	"github.com/usestring/swagman-mcp/pkg/types"
)

// ItemMeta holds searchable fields for one leaf item.
// Bodies are not stored; only metadata needed for indexing and search.
type ItemMeta struct {
	DocID            uint32
	Key              string // request URI, the walker's default key
	Name             string
	Folder           string // enclosing folder names joined by "/"
	Method           string
	Path             string // normalized path with a leading "/"
	StatusCodes      []int
	SchemaNames      []string
	HeaderNamesLower []string
	HasJSONBody      bool
}

// ToSummary converts ItemMeta to ItemSummary for tool responses.
func (m *ItemMeta) ToSummary() *types.ItemSummary {
	return &types.ItemSummary{
		Index:       int(m.DocID),
		Key:         m.Key,
		Name:        m.Name,
		Folder:      m.Folder,
		Method:      m.Method,
		Path:        m.Path,
		StatusCodes: m.StatusCodes,
		SchemaNames: m.SchemaNames,
	}
}
