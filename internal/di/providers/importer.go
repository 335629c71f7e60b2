package providers

import (
	"github.com/samber/do/v2"

	"github.com/barkeepapp/barkeep-server/internal/archive"
	"github.com/barkeepapp/barkeep-server/internal/importer"
	"github.com/barkeepapp/barkeep-server/internal/jobs"
	"github.com/barkeepapp/barkeep-server/internal/logger"
	"github.com/barkeepapp/barkeep-server/internal/media/images"

	"github.com/barkeepapp/barkeep-server/internal/config"
)

// ProvideImporter provides the catalog importer used by the job runner.
// Bundle imports construct their own importer around a bundle loader; the
// server-side importer only runs collection imports, so no loader is wired.
func ProvideImporter(i do.Injector) (*importer.Importer, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	uploads := do.MustInvoke[*images.Storage](i)
	indexerHandle := do.MustInvoke[*IndexerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return importer.New(storeHandle.Store, nil, uploads, indexerHandle.Indexer, log.Logger), nil
}

// JobRunnerHandle wraps the job runner with shutdown capability.
type JobRunnerHandle struct {
	*jobs.Runner
}

// Shutdown implements do.Shutdownable.
func (h *JobRunnerHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideJobRunner provides the collection import job runner.
func ProvideJobRunner(i do.Injector) (*JobRunnerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	imp := do.MustInvoke[*importer.Importer](i)
	eventsHandle := do.MustInvoke[*EventManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	runner := jobs.NewRunner(storeHandle.Store, imp, cfg.Import.QueueSize, log.Logger)
	runner.SetEventEmitter(eventsHandle.Manager)
	runner.Start()

	return &JobRunnerHandle{Runner: runner}, nil
}

// ProvideExporter provides the bar bundle exporter.
func ProvideExporter(i do.Injector) (*archive.Exporter, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	uploads := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return archive.New(storeHandle.Store, uploads, log.Logger), nil
}
