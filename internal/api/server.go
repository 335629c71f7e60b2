// Package api provides the HTTP API server for the catalog import engine.
// The surface is intentionally thin: trigger a collection import, poll its
// job, search the catalog, and export a bar as a bundle.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/barkeepapp/barkeep-server/internal/archive"
	"github.com/barkeepapp/barkeep-server/internal/jobs"
	"github.com/barkeepapp/barkeep-server/internal/ratelimit"
	"github.com/barkeepapp/barkeep-server/internal/search"
	"github.com/barkeepapp/barkeep-server/internal/sse"
	"github.com/barkeepapp/barkeep-server/internal/store/sqlite"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    *sqlite.Store
	runner   *jobs.Runner
	exporter *archive.Exporter
	index    *search.SearchIndex
	events   *sse.Manager
	limiter  *ratelimit.Limiter
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// events and limiter are optional; without them the stream endpoint is
// not mounted and import submissions are not throttled.
func NewServer(st *sqlite.Store, runner *jobs.Runner, exporter *archive.Exporter, index *search.SearchIndex, events *sse.Manager, limiter *ratelimit.Limiter, version string, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	humaConfig := huma.DefaultConfig("Barkeep API", version)
	humaAPI := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:    st,
		runner:   runner,
		exporter: exporter,
		index:    index,
		events:   events,
		limiter:  limiter,
		router:   router,
		api:      humaAPI,
		logger:   logger.With("component", "api"),
	}

	s.registerHealthRoutes()
	s.registerImportRoutes()
	s.registerSearchRoutes()
	s.registerExportRoutes()
	s.registerStreamRoutes()

	return s
}

// registerStreamRoutes mounts the import progress stream. SSE does not
// fit the OpenAPI surface, so it hangs off the router directly.
func (s *Server) registerStreamRoutes() {
	if s.events == nil {
		return
	}
	s.router.Method(http.MethodGet, "/api/v1/import/events", sse.NewHandler(s.events, s.logger))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) registerHealthRoutes() {
	s.router.Get("/healthz", s.handleHealthCheck)
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "healthy"}); err != nil {
		s.logger.Error("failed to write health response", "error", err)
	}
}
