package types

// QueryRequest contains parameters for a query over walked items.
type QueryRequest struct {
	Expression  string // JQ expression, run once per item
	Where       string // optional expr-lang predicate selecting items first
	Target      string // "item", "responses", "schemas" or "bodies"
	Mode        string // extraction mode for "bodies": jq, css, xpath, regex, form; empty detects
	Deduplicate bool
	MaxResults  int // Default from config
}

// QuerySummary contains summary statistics for a query.
type QuerySummary struct {
	ItemsProcessed int  `json:"items_processed"`
	ItemsMatched   int  `json:"items_matched"`
	ItemsSkipped   int  `json:"items_skipped"`
	TotalValues    int  `json:"total_values"`
	UniqueValues   int  `json:"unique_values,omitempty"`
	Deduplicated   bool `json:"deduplicated"`
	Truncated      bool `json:"truncated,omitempty"`
}

// QueryItemResult contains per-item query results.
type QueryItemResult struct {
	Key        string `json:"key"`
	ValueCount int    `json:"value_count"`
	Skipped    bool   `json:"skipped,omitempty"`
	SkipReason string `json:"skip_reason,omitempty"`
}

// QueryResponse contains the full response from a query operation.
type QueryResponse struct {
	Summary QuerySummary      `json:"summary"`
	Values  []any             `json:"values,omitzero"`
	Items   []QueryItemResult `json:"items,omitempty"`
	Errors  []string          `json:"errors,omitempty"`
	Hints   []string          `json:"hints,omitempty"`
}
