package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/barkeepapp/barkeep-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search-catalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/bars/{barID}/search",
		Summary:     "Search the bar's catalog",
		Description: "Full-text search across the bar's cocktails and ingredients.",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching a bar's catalog.
type SearchInput struct {
	BarID string `path:"barID" doc:"Bar to search in"`
	Query string `query:"q" doc:"Search query"`
	Types string `query:"types" doc:"Comma-separated types to match (cocktail,ingredient). Omit for all."`
	Limit int    `query:"limit" doc:"Max results (default 25)"`
	From  int    `query:"from" doc:"Pagination offset (default 0)"`
}

// SearchOutput wraps the search result page.
type SearchOutput struct {
	Body search.Result
}

// === Handlers ===

func (s *Server) handleSearch(_ context.Context, input *SearchInput) (*SearchOutput, error) {
	req := search.Request{
		BarID: input.BarID,
		Query: input.Query,
		Limit: input.Limit,
		From:  input.From,
	}
	for _, t := range strings.Split(input.Types, ",") {
		switch search.DocType(strings.TrimSpace(t)) {
		case search.DocTypeCocktail:
			req.Types = append(req.Types, search.DocTypeCocktail)
		case search.DocTypeIngredient:
			req.Types = append(req.Types, search.DocTypeIngredient)
		}
	}

	result, err := s.index.Search(req)
	if err != nil {
		s.logger.Error("search failed", "bar_id", input.BarID, "error", err)
		return nil, huma.Error500InternalServerError("search failed")
	}

	return &SearchOutput{Body: *result}, nil
}
