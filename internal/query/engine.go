// Package query provides JQ queries and expr-lang predicates over the items
// of a Postman collection.
package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/itchyny/gojq"
)

// Engine executes JQ queries against JSON data.
type Engine struct{}

// NewEngine creates a new query engine.
func NewEngine() *Engine {
	return &Engine{}
}

// QueryResult contains the results of a JQ query.
type QueryResult struct {
	Values         []any          `json:"values"`                    // Extracted values
	Errors         []string       `json:"errors,omitempty"`          // Per-input errors (e.g., type mismatch)
	RawCount       int            `json:"raw_count"`                 // Count before deduplication
	MatchedIndices []int          `json:"matched_indices,omitempty"` // Indices of inputs that produced values
	LabelCounts    map[string]int `json:"label_counts,omitempty"`    // Value count per label
	Truncated      bool           `json:"truncated,omitempty"`       // maxResults was reached
}

// Input is one document a query runs against. Value must be JSON shaped:
// map[string]any, []any, float64, string, bool or nil.
type Input struct {
	Label string
	Value any
}

// Query executes a JQ expression against one JSON document.
func (e *Engine) Query(data []byte, expression string, deduplicate bool, maxResults int) (*QueryResult, error) {
	code, err := compile(expression)
	if err != nil {
		return nil, err
	}

	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("invalid JSON data: %w", err)
	}

	return run(code, []Input{{Label: "query", Value: input}}, deduplicate, maxResults), nil
}

// Run executes a JQ expression against every input in order, combining the
// results. Deduplication spans all inputs. Labels identify inputs in error
// messages; an empty label becomes "input[i]".
func (e *Engine) Run(inputs []Input, expression string, deduplicate bool, maxResults int) (*QueryResult, error) {
	code, err := compile(expression)
	if err != nil {
		return nil, err
	}
	return run(code, inputs, deduplicate, maxResults), nil
}

func compile(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return code, nil
}

func run(code *gojq.Code, inputs []Input, deduplicate bool, maxResults int) *QueryResult {
	result := &QueryResult{
		Values:      make([]any, 0),
		Errors:      make([]string, 0),
		LabelCounts: make(map[string]int),
	}

	seen := make(map[string]bool)
	seenErrors := make(map[string]bool) // Deduplicate similar errors
	matchedSet := make(map[int]bool)

	full := func() bool {
		return maxResults > 0 && len(result.Values) >= maxResults
	}

	for i, in := range inputs {
		if full() {
			result.Truncated = true
			break
		}

		label := in.Label
		if label == "" {
			label = fmt.Sprintf("input[%d]", i)
		}

		iter := code.Run(in.Value)
		for {
			if full() {
				result.Truncated = true
				break
			}

			v, ok := iter.Next()
			if !ok {
				break
			}

			if err, isErr := v.(error); isErr {
				errMsg := formatJQError(label, err)
				if !seenErrors[errMsg] {
					result.Errors = append(result.Errors, errMsg)
					seenErrors[errMsg] = true
				}
				continue
			}

			// Skip nil values
			if v == nil {
				continue
			}

			result.RawCount++
			result.LabelCounts[label]++
			matchedSet[i] = true

			if deduplicate {
				key := valueKey(v)
				if seen[key] {
					continue
				}
				seen[key] = true
			}

			result.Values = append(result.Values, v)
		}
	}

	for idx := range matchedSet {
		result.MatchedIndices = append(result.MatchedIndices, idx)
	}
	sort.Ints(result.MatchedIndices)

	return result
}

// formatJQError creates an error message for JQ execution errors, with a hint
// for common mistakes.
//
// Runtime JQ errors (like "cannot iterate over: null") are plain errors
// without typed wrappers in gojq, so hints come from string matching.
func formatJQError(label string, err error) string {
	// Check for typed errors first
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		if haltErr.Value() == nil {
			return fmt.Sprintf("%s: query halted", label)
		}
		return fmt.Sprintf("%s: query halted with: %v", label, haltErr.Value())
	}

	errStr := err.Error()

	var hint string
	switch {
	case strings.Contains(errStr, "cannot iterate over: null"):
		hint = " (the path may not exist in this item)"
	case strings.Contains(errStr, "cannot index") && strings.Contains(errStr, "with"):
		hint = " (field not found or wrong type)"
	case strings.Contains(errStr, "object") && strings.Contains(errStr, "cannot be iterated"):
		hint = " (expected array but got object, try removing '[]')"
	case strings.Contains(errStr, "array") && strings.Contains(errStr, "cannot be indexed"):
		hint = " (expected object but got array, try adding '[]')"
	}

	return fmt.Sprintf("%s: %s%s", label, errStr, hint)
}

// valueKey creates a string key for deduplication.
func valueKey(v any) string {
	switch val := v.(type) {
	case string:
		return "s:" + val
	case float64, int:
		return fmt.Sprintf("n:%v", val)
	case bool:
		return fmt.Sprintf("b:%v", val)
	case nil:
		return "null"
	default:
		// For complex types, marshal to JSON
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("?:%v", val)
		}
		return "j:" + string(b)
	}
}

// ValidateExpression checks if a JQ expression is valid without executing it.
func (e *Engine) ValidateExpression(expression string) error {
	query, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return fmt.Errorf("invalid jq expression: %w", err)
	}

	if _, err := gojq.Compile(query); err != nil {
		return fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return nil
}
