package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/barkeepapp/barkeep-server/internal/domain"
	"github.com/barkeepapp/barkeep-server/internal/importer"
	"github.com/barkeepapp/barkeep-server/internal/jobs"
	"github.com/barkeepapp/barkeep-server/internal/store"
)

func (s *Server) registerImportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "start-collection-import",
		Method:        http.MethodPost,
		Path:          "/api/v1/bars/{barID}/import/collection",
		Summary:       "Import a cocktail collection",
		Description:   "Queues an asynchronous import of a submitted cocktail collection into the bar. Returns immediately; poll the job for the outcome.",
		Tags:          []string{"Import"},
		DefaultStatus: http.StatusAccepted,
	}, s.handleCollectionImport)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-import-job",
		Method:      http.MethodGet,
		Path:        "/api/v1/import/jobs/{id}",
		Summary:     "Get import job status",
		Tags:        []string{"Import"},
	}, s.handleGetImportJob)
}

// === DTOs ===

// CollectionImportInput is the collection import request.
type CollectionImportInput struct {
	BarID string `path:"barID" doc:"Target bar id"`
	Body  struct {
		UserID          string                     `json:"user_id" required:"true" doc:"User the imported cocktails are attributed to"`
		DuplicateAction string                     `json:"duplicate_action,omitempty" enum:"skip,overwrite,duplicate" doc:"What to do when a cocktail name already exists (default: skip)"`
		Collection      importer.CollectionPayload `json:"collection" required:"true" doc:"The cocktails to import"`
	}
}

// CollectionImportOutput acknowledges a queued import.
type CollectionImportOutput struct {
	Body jobs.Ack
}

// ImportJobInput identifies one import job.
type ImportJobInput struct {
	ID string `path:"id" doc:"Job id"`
}

// ImportJobOutput is the persisted state of an import job.
type ImportJobOutput struct {
	Body domain.ImportJob
}

// === Handlers ===

func (s *Server) handleCollectionImport(ctx context.Context, input *CollectionImportInput) (*CollectionImportOutput, error) {
	action, err := importer.ParseDuplicateAction(input.Body.DuplicateAction)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	if _, err := s.store.GetBarByID(ctx, input.BarID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("bar not found")
		}
		s.logger.Error("failed to load bar", "bar_id", input.BarID, "error", err)
		return nil, huma.Error500InternalServerError("failed to load bar")
	}

	if s.limiter != nil && !s.limiter.Allow(input.BarID) {
		return nil, huma.Error429TooManyRequests("import rate limit exceeded for this bar")
	}

	ack, err := s.runner.EnqueueCollectionImport(ctx, input.BarID, input.Body.UserID, input.Body.Collection, action)
	if err != nil {
		s.logger.Error("failed to queue collection import", "bar_id", input.BarID, "error", err)
		return nil, huma.Error503ServiceUnavailable("import queue unavailable")
	}

	return &CollectionImportOutput{Body: *ack}, nil
}

func (s *Server) handleGetImportJob(ctx context.Context, input *ImportJobInput) (*ImportJobOutput, error) {
	job, err := s.store.GetJob(ctx, input.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("import job not found")
		}
		s.logger.Error("failed to load job", "job_id", input.ID, "error", err)
		return nil, huma.Error500InternalServerError("failed to load job")
	}

	return &ImportJobOutput{Body: *job}, nil
}
