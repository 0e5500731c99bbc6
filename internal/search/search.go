// Package search provides search capabilities over indexed collection items.
package search

import (
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/usestring/swagman-mcp/internal/indexer"
	"github.com/usestring/swagman-mcp/pkg/types"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// SearchEngine provides search capabilities over the indexer.
type SearchEngine struct {
	indexer *indexer.Indexer
}

// New creates a new SearchEngine.
func New(idx *indexer.Indexer) *SearchEngine {
	return &SearchEngine{indexer: idx}
}

// Search runs a query with filters and returns ranked, paginated items.
func (s *SearchEngine) Search(req *types.SearchRequest) *types.SearchResponse {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	candidates := s.planFilters(req.Filters, req.Query)
	candidates = s.applyPostFilters(candidates, req.Filters)

	totalHint := int(candidates.GetCardinality())

	results := s.scoreResults(candidates.ToArray(), req)

	// Stable, so equal scores keep collection order
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	start := req.Offset
	if start < 0 {
		start = 0
	}
	if start > len(results) {
		start = len(results)
	}
	end := start + limit
	if end > len(results) {
		end = len(results)
	}

	return &types.SearchResponse{
		Results:   results[start:end],
		TotalHint: totalHint,
	}
}

// planFilters converts SearchFilters to bitmap operations.
func (s *SearchEngine) planFilters(filters *types.SearchFilters, query string) *roaring.Bitmap {
	result := s.indexer.AllDocIDs()

	if filters == nil && query == "" {
		return result
	}

	if filters != nil {
		if filters.Method != "" {
			if bm := s.indexer.GetBitmapForMethod(filters.Method); bm != nil {
				result = roaring.And(result, bm)
			} else {
				return roaring.New() // No matches
			}
		}

		if filters.Status != 0 {
			if bm := s.indexer.GetBitmapForStatus(filters.Status); bm != nil {
				result = roaring.And(result, bm)
			} else {
				return roaring.New()
			}
		}

		if filters.Folder != "" {
			if bm := s.indexer.GetBitmapForFolder(filters.Folder); bm != nil {
				result = roaring.And(result, bm)
			} else {
				return roaring.New()
			}
		}

		if filters.HeaderName != "" {
			if bm := s.indexer.GetBitmapForHeaderName(filters.HeaderName); bm != nil {
				result = roaring.And(result, bm)
			} else {
				return roaring.New()
			}
		}

		if filters.JSONOnly {
			result = roaring.And(result, s.indexer.JSONBodies())
		}
	}

	// Free text query: OR across URL, name and schema indexes per token, AND across tokens
	if query != "" {
		for _, token := range indexer.Tokenize(query) {
			union := roaring.New()
			if bm := s.indexer.GetBitmapForToken(token); bm != nil {
				union.Or(bm)
			}
			if bm := s.indexer.GetBitmapForNameToken(token); bm != nil {
				union.Or(bm)
			}
			if bm := s.indexer.GetBitmapForSchema(token); bm != nil {
				union.Or(bm)
			}
			result = roaring.And(result, union)
		}
	}

	// PathContains requires post-filtering

	return result
}

// applyPostFilters applies substring filters that require metadata access.
func (s *SearchEngine) applyPostFilters(candidates *roaring.Bitmap, filters *types.SearchFilters) *roaring.Bitmap {
	if filters == nil || filters.PathContains == "" {
		return candidates
	}

	needle := strings.ToLower(filters.PathContains)
	result := roaring.New()
	iter := candidates.Iterator()
	for iter.HasNext() {
		docID := iter.Next()
		meta := s.indexer.GetMeta(docID)
		if meta == nil {
			continue
		}
		if strings.Contains(strings.ToLower(meta.Path), needle) ||
			strings.Contains(strings.ToLower(meta.Key), needle) {
			result.Add(docID)
		}
	}
	return result
}

// scoreResults applies ranking heuristics to produce scored results.
func (s *SearchEngine) scoreResults(docIDs []uint32, req *types.SearchRequest) []types.SearchResult {
	results := make([]types.SearchResult, 0, len(docIDs))

	var queryTokens []string
	if req.Query != "" {
		queryTokens = indexer.Tokenize(req.Query)
	}

	for _, docID := range docIDs {
		meta := s.indexer.GetMeta(docID)
		if meta == nil {
			continue
		}

		var score float64
		var highlights []string
		var matchedIn []string

		if len(queryTokens) > 0 {
			totalTokens := float64(len(queryTokens))

			// URL token matches (weight: 0.4)
			urlTokens := tokenSet(indexer.TokenizeURL(meta.Key), indexer.TokenizeURL(meta.Path))
			urlMatches := 0
			for _, qt := range queryTokens {
				if _, exists := urlTokens[qt]; exists {
					urlMatches++
					highlights = appendUnique(highlights, qt)
				}
			}
			if urlMatches > 0 {
				score += float64(urlMatches) / totalTokens * 0.4
				matchedIn = appendUnique(matchedIn, "url")
			}

			// Name token matches (weight: 0.3)
			nameTokens := tokenSet(indexer.TokenizeName(meta.Name), indexer.TokenizeName(meta.Folder))
			nameMatches := 0
			for _, qt := range queryTokens {
				if _, exists := nameTokens[qt]; exists {
					nameMatches++
					highlights = appendUnique(highlights, qt)
				}
			}
			if nameMatches > 0 {
				score += float64(nameMatches) / totalTokens * 0.3
				matchedIn = appendUnique(matchedIn, "name")
			}

			// Schema name matches (weight: 0.2)
			schemaMatches := 0
			for _, qt := range queryTokens {
				for _, name := range meta.SchemaNames {
					if strings.ToLower(name) == qt {
						schemaMatches++
						highlights = appendUnique(highlights, name)
						break
					}
				}
			}
			if schemaMatches > 0 {
				score += float64(schemaMatches) / totalTokens * 0.2
				matchedIn = appendUnique(matchedIn, "schema")
			}
		}

		// Items with JSON examples carry schemas worth looking at
		if meta.HasJSONBody {
			score += 0.1
		}

		// Base score for all results
		score += 0.1

		result := types.SearchResult{
			Summary:    meta.ToSummary(),
			Score:      score,
			Highlights: highlights,
		}
		if len(matchedIn) > 0 {
			result.MatchedIn = matchedIn
		}

		results = append(results, result)
	}

	return results
}

func tokenSet(groups ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tokens := range groups {
		for _, t := range tokens {
			set[t] = struct{}{}
		}
	}
	return set
}

// appendUnique appends a value to a slice if it's not already present.
func appendUnique(slice []string, val string) []string {
	for _, s := range slice {
		if s == val {
			return slice
		}
	}
	return append(slice, val)
}
