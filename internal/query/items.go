package query

import (
	"fmt"
	"strings"

	"github.com/usestring/swagman-mcp/internal/indexer"
	"github.com/usestring/swagman-mcp/pkg/collection"
	"github.com/usestring/swagman-mcp/pkg/parser"
	"github.com/usestring/swagman-mcp/pkg/types"
)

// Query targets.
const (
	TargetItem      = "item"      // one document per item: request and decoded responses
	TargetResponses = "responses" // one document per example response
	TargetSchemas   = "schemas"   // one document per item: its inferred schemas by name
)

// Selection is the set of items a query runs over.
type Selection struct {
	Items   []*collection.Item
	Metas   []*indexer.ItemMeta
	Skipped []types.QueryItemResult
}

// Select pairs the parser's leaves with their index metadata and keeps the
// ones matching where.
func Select(p *parser.Parser, idx *indexer.Indexer, where *Predicate) (*Selection, error) {
	leaves, err := p.Leaves()
	if err != nil {
		return nil, err
	}

	sel := &Selection{}
	for i, item := range leaves {
		meta := idx.GetMeta(uint32(i))
		if meta == nil {
			meta = indexer.MetaFor(p, item, "")
		}
		ok, err := where.Match(EnvFor(meta))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		sel.Items = append(sel.Items, item)
		sel.Metas = append(sel.Metas, meta)
	}
	return sel, nil
}

// Documents converts the selection into JSON-shaped query inputs for target.
// Items that cannot be converted are recorded in Skipped.
func (s *Selection) Documents(p *parser.Parser, target string) ([]Input, error) {
	var inputs []Input
	for i, item := range s.Items {
		meta := s.Metas[i]
		label := itemLabel(meta)

		var docs []any
		var err error
		switch target {
		case "", TargetItem:
			var doc any
			doc, err = itemDocument(p, item, meta)
			docs = []any{doc}
		case TargetResponses:
			docs, err = responseDocuments(p, item, meta)
		case TargetSchemas:
			var doc any
			doc, err = schemaDocument(p, item, meta)
			docs = []any{doc}
		default:
			return nil, fmt.Errorf("unknown target %q (want %s, %s, %s or %s)", target, TargetItem, TargetResponses, TargetSchemas, TargetBodies)
		}
		if err != nil {
			s.Skipped = append(s.Skipped, types.QueryItemResult{
				Key:        meta.Key,
				Skipped:    true,
				SkipReason: err.Error(),
			})
			continue
		}

		for _, doc := range docs {
			v, err := types.ToAny(doc)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, Input{Label: label, Value: v})
		}
	}
	return inputs, nil
}

func itemLabel(meta *indexer.ItemMeta) string {
	if meta.Key == "" {
		return fmt.Sprintf("item[%d]", meta.DocID)
	}
	return fmt.Sprintf("item[%d] %s %s", meta.DocID, meta.Method, meta.Key)
}

type responseDoc struct {
	Name   string `json:"name,omitempty"`
	Code   int    `json:"code"`
	Status string `json:"status,omitempty"`
	Body   any    `json:"body"`
	JSON   bool   `json:"json"`
}

type itemDoc struct {
	Key       string              `json:"key"`
	Name      string              `json:"name,omitempty"`
	Folder    string              `json:"folder,omitempty"`
	Method    string              `json:"method"`
	Path      string              `json:"path"`
	Request   *collection.Request `json:"request,omitempty"`
	Responses []responseDoc       `json:"responses"`
}

func decodeResponses(p *parser.Parser, item *collection.Item) ([]responseDoc, error) {
	out := make([]responseDoc, 0, len(item.Response))
	for i := range item.Response {
		resp := &item.Response[i]
		value, ok, err := resp.DecodeBody(p.DecodeOptions()...)
		if err != nil {
			return nil, err
		}
		doc := responseDoc{Name: resp.Name, Code: resp.Code, Status: resp.Status, JSON: ok}
		if ok {
			doc.Body = value
		} else if strings.TrimSpace(resp.Body) != "" {
			doc.Body = resp.Body
		}
		out = append(out, doc)
	}
	return out, nil
}

func itemDocument(p *parser.Parser, item *collection.Item, meta *indexer.ItemMeta) (any, error) {
	responses, err := decodeResponses(p, item)
	if err != nil {
		return nil, err
	}
	return itemDoc{
		Key:       meta.Key,
		Name:      meta.Name,
		Folder:    meta.Folder,
		Method:    meta.Method,
		Path:      meta.Path,
		Request:   item.Request,
		Responses: responses,
	}, nil
}

func responseDocuments(p *parser.Parser, item *collection.Item, meta *indexer.ItemMeta) ([]any, error) {
	responses, err := decodeResponses(p, item)
	if err != nil {
		return nil, err
	}
	docs := make([]any, 0, len(responses))
	for _, r := range responses {
		docs = append(docs, struct {
			Key    string `json:"key"`
			Method string `json:"method"`
			responseDoc
		}{Key: meta.Key, Method: meta.Method, responseDoc: r})
	}
	return docs, nil
}

func schemaDocument(p *parser.Parser, item *collection.Item, meta *indexer.ItemMeta) (any, error) {
	schemas, err := p.ResponseSchemas(item)
	if err != nil {
		return nil, err
	}
	return struct {
		Key     string          `json:"key"`
		Method  string          `json:"method"`
		Schemas *parser.Schemas `json:"schemas"`
	}{Key: meta.Key, Method: meta.Method, Schemas: schemas}, nil
}
