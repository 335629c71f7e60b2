package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Request describes one catalog search. BarID is mandatory: results never
// cross bars.
type Request struct {
	BarID string
	Query string
	Types []DocType // Empty means all types
	Limit int
	From  int
}

// Hit is one search result.
type Hit struct {
	ID    string   `json:"id"`
	Type  DocType  `json:"type"`
	Name  string   `json:"name"`
	Tags  []string `json:"tags,omitempty"`
	Score float64  `json:"score"`
}

// Result is a page of search hits.
type Result struct {
	Hits  []Hit  `json:"hits"`
	Total uint64 `json:"total"`
}

// Search runs a full-text query scoped to one bar. The text matches names,
// descriptions, and tags, with a fuzzy fallback for near-misses.
func (s *SearchIndex) Search(req Request) (*Result, error) {
	if req.BarID == "" {
		return nil, fmt.Errorf("bar id is required")
	}
	if req.Limit <= 0 {
		req.Limit = 25
	}

	barQuery := query.NewTermQuery(req.BarID)
	barQuery.SetField("bar_id")

	parts := []query.Query{barQuery}

	if req.Query != "" {
		match := bleve.NewMatchQuery(req.Query)
		match.SetBoost(2.0)

		prefix := bleve.NewPrefixQuery(req.Query)
		prefix.SetField("name")

		fuzzy := bleve.NewFuzzyQuery(req.Query)
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("name")

		parts = append(parts, bleve.NewDisjunctionQuery(match, prefix, fuzzy))
	}

	if len(req.Types) > 0 {
		typeQueries := make([]query.Query, 0, len(req.Types))
		for _, t := range req.Types {
			tq := query.NewTermQuery(string(t))
			tq.SetField("type")
			typeQueries = append(typeQueries, tq)
		}
		parts = append(parts, bleve.NewDisjunctionQuery(typeQueries...))
	}

	searchReq := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(parts...), req.Limit, req.From, false)
	searchReq.Fields = []string{"name", "type", "tags"}

	s.mu.RLock()
	res, err := s.index.Search(searchReq)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	result := &Result{Total: res.Total}
	for _, hit := range res.Hits {
		h := Hit{ID: hit.ID, Score: hit.Score}
		if name, ok := hit.Fields["name"].(string); ok {
			h.Name = name
		}
		if typ, ok := hit.Fields["type"].(string); ok {
			h.Type = DocType(typ)
		}
		switch tags := hit.Fields["tags"].(type) {
		case string:
			h.Tags = []string{tags}
		case []interface{}:
			for _, t := range tags {
				if tag, ok := t.(string); ok {
					h.Tags = append(h.Tags, tag)
				}
			}
		}
		result.Hits = append(result.Hits, h)
	}

	return result, nil
}
