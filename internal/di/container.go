// Package di provides dependency injection configuration for the Barkeep server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/barkeepapp/barkeep-server/internal/archive"
	"github.com/barkeepapp/barkeep-server/internal/config"
	"github.com/barkeepapp/barkeep-server/internal/di/providers"
	"github.com/barkeepapp/barkeep-server/internal/importer"
	"github.com/barkeepapp/barkeep-server/internal/logger"
	"github.com/barkeepapp/barkeep-server/internal/media/images"
	"github.com/barkeepapp/barkeep-server/internal/ratelimit"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Storage layer
	do.Provide(injector, providers.ProvideUploads)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideIndexer)

	// Import pipeline
	do.Provide(injector, providers.ProvideImporter)
	do.Provide(injector, providers.ProvideEventManager)
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideJobRunner)
	do.Provide(injector, providers.ProvideExporter)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns the container ready to
// serve. This triggers lazy initialization of every long-lived component.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*images.Storage](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*providers.IndexerHandle](injector)
	_ = do.MustInvoke[*importer.Importer](injector)
	_ = do.MustInvoke[*providers.EventManagerHandle](injector)
	_ = do.MustInvoke[*ratelimit.Limiter](injector)
	_ = do.MustInvoke[*providers.JobRunnerHandle](injector)
	_ = do.MustInvoke[*archive.Exporter](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
