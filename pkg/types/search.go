package types

// SearchRequest contains parameters for an item search.
type SearchRequest struct {
	Query   string         // Free text query
	Filters *SearchFilters // Optional structured filters
	Limit   int            // Default 20, max 100
	Offset  int            // Pagination offset
}

// SearchFilters contains structured filter criteria.
type SearchFilters struct {
	Method       string
	Status       int
	Folder       string // exact folder path, "/" separated
	PathContains string
	HeaderName   string
	JSONOnly     bool // only items with at least one JSON example response
}

// SearchResult represents a single search result.
type SearchResult struct {
	Summary    *ItemSummary `json:"summary"`
	Score      float64      `json:"score"`
	Highlights []string     `json:"highlights,omitempty"`
	MatchedIn  []string     `json:"matched_in,omitempty"`
}

// SearchResponse contains the search results.
type SearchResponse struct {
	Results   []SearchResult `json:"results"`
	TotalHint int            `json:"total_hint,omitempty"`
}
