package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/barkeepapp/barkeep-server/internal/store"
)

func (s *Server) registerExportRoutes() {
	// Registered on chi directly: the response is a streamed zip, not a
	// JSON body.
	s.router.Get("/api/v1/bars/{barID}/export", s.handleExportBar)
}

// handleExportBar streams the bar's catalog as a bundle archive.
func (s *Server) handleExportBar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	barID := chi.URLParam(r, "barID")

	if _, err := s.store.GetBarByID(ctx, barID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "bar not found", http.StatusNotFound)
			return
		}
		s.logger.Error("failed to load bar", "bar_id", barID, "error", err)
		http.Error(w, "failed to load bar", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", barID+".zip"))

	if _, err := s.exporter.ExportBar(ctx, barID, w); err != nil {
		// Headers are already out; all we can do is log and truncate.
		s.logger.Error("bar export failed", "bar_id", barID, "error", err)
	}
}
