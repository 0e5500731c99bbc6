package query

import (
	"fmt"
	"strings"

	"github.com/usestring/swagman-mcp/internal/indexer"
	"github.com/usestring/swagman-mcp/pkg/contenttype"
	"github.com/usestring/swagman-mcp/pkg/parser"
	"github.com/usestring/swagman-mcp/pkg/textquery"
	"github.com/usestring/swagman-mcp/pkg/types"
)

// TargetBodies runs the expression over raw example response bodies with a
// mode chosen from each body's content type.
const TargetBodies = "bodies"

// TextEngine returns a body extraction engine whose jq mode runs on e.
func (e *Engine) TextEngine() *textquery.Engine {
	return textquery.NewEngine(
		func(data []byte, expression string, maxResults int) ([]any, []string, error) {
			r, err := e.Query(data, expression, false, maxResults)
			if err != nil {
				return nil, nil, err
			}
			return r.Values, r.Errors, nil
		},
		e.ValidateExpression,
	)
}

func (e *Engine) executeBodies(p *parser.Parser, idx *indexer.Indexer, req *types.QueryRequest) (*types.QueryResponse, error) {
	extract, err := e.TextEngine().Compile(req.Expression, req.Mode)
	if err != nil {
		return nil, err
	}

	var where *Predicate
	if req.Where != "" {
		if where, err = CompileWhere(req.Where); err != nil {
			return nil, err
		}
	}
	sel, err := Select(p, idx, where)
	if err != nil {
		return nil, err
	}

	resp := &types.QueryResponse{Values: make([]any, 0)}
	resp.Summary.ItemsProcessed = len(sel.Items)
	resp.Summary.Deduplicated = req.Deduplicate
	seen := make(map[string]bool)

items:
	for i, item := range sel.Items {
		meta := sel.Metas[i]
		count := 0
		for j := range item.Response {
			body := item.Response[j].Body
			ct := item.Response[j].ContentType()
			if strings.TrimSpace(body) == "" || contenttype.IsBinary(ct, []byte(body)) {
				continue
			}

			remaining := 0
			if req.MaxResults > 0 {
				remaining = req.MaxResults - len(resp.Values)
				if remaining <= 0 {
					resp.Summary.Truncated = true
					break items
				}
			}

			r, err := extract.Run([]byte(body), ct, remaining)
			if err != nil {
				resp.Errors = append(resp.Errors, fmt.Sprintf("%s (%d): %v", itemLabel(meta), item.Response[j].Code, err))
				continue
			}
			resp.Errors = append(resp.Errors, r.Errors...)

			for _, v := range r.Values {
				resp.Summary.TotalValues++
				count++
				if req.Deduplicate {
					key := valueKey(v)
					if seen[key] {
						continue
					}
					seen[key] = true
				}
				resp.Values = append(resp.Values, v)
			}
		}
		if count > 0 {
			resp.Summary.ItemsMatched++
			resp.Items = append(resp.Items, types.QueryItemResult{Key: meta.Key, ValueCount: count})
		}
	}

	if req.Deduplicate {
		resp.Summary.UniqueValues = len(resp.Values)
	}
	if resp.Summary.Truncated {
		resp.Hints = append(resp.Hints, "results truncated, raise max_results or narrow the query")
	}
	return resp, nil
}
