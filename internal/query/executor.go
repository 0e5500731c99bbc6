package query

import (
	"github.com/usestring/swagman-mcp/internal/indexer"
	"github.com/usestring/swagman-mcp/pkg/parser"
	"github.com/usestring/swagman-mcp/pkg/types"
)

// Execute selects items with req.Where, builds documents for req.Target and
// runs req.Expression over them. The bodies target queries raw example
// bodies instead, see TargetBodies.
func (e *Engine) Execute(p *parser.Parser, idx *indexer.Indexer, req *types.QueryRequest) (*types.QueryResponse, error) {
	if req.Target == TargetBodies {
		return e.executeBodies(p, idx, req)
	}
	if err := e.ValidateExpression(req.Expression); err != nil {
		return nil, err
	}

	var where *Predicate
	if req.Where != "" {
		var err error
		where, err = CompileWhere(req.Where)
		if err != nil {
			return nil, err
		}
	}

	sel, err := Select(p, idx, where)
	if err != nil {
		return nil, err
	}
	inputs, err := sel.Documents(p, req.Target)
	if err != nil {
		return nil, err
	}

	result, err := e.Run(inputs, req.Expression, req.Deduplicate, req.MaxResults)
	if err != nil {
		return nil, err
	}

	resp := &types.QueryResponse{
		Summary: types.QuerySummary{
			ItemsProcessed: len(sel.Items),
			ItemsSkipped:   len(sel.Skipped),
			TotalValues:    result.RawCount,
			Deduplicated:   req.Deduplicate,
			Truncated:      result.Truncated,
		},
		Values: result.Values,
		Errors: result.Errors,
	}
	if req.Deduplicate {
		resp.Summary.UniqueValues = len(result.Values)
	}

	matchedLabels := make(map[string]bool, len(result.MatchedIndices))
	for _, i := range result.MatchedIndices {
		matchedLabels[inputs[i].Label] = true
	}
	resp.Summary.ItemsMatched = len(matchedLabels)

	for _, meta := range sel.Metas {
		count := result.LabelCounts[itemLabel(meta)]
		if count == 0 {
			continue
		}
		resp.Items = append(resp.Items, types.QueryItemResult{Key: meta.Key, ValueCount: count})
	}
	resp.Items = append(resp.Items, sel.Skipped...)

	switch {
	case len(sel.Items) == 0 && req.Where != "":
		resp.Hints = append(resp.Hints, "where expression matched no items")
	case result.RawCount == 0 && len(result.Errors) > 0:
		resp.Hints = append(resp.Hints, "query produced only errors, check the document shape with '.' first")
	case result.Truncated:
		resp.Hints = append(resp.Hints, "results truncated, raise max_results or narrow the query")
	}

	return resp, nil
}
