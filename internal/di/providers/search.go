package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/barkeepapp/barkeep-server/internal/config"
	"github.com/barkeepapp/barkeep-server/internal/logger"
	"github.com/barkeepapp/barkeep-server/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Search.DataPath, 0o755); err != nil {
		return nil, err
	}

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Search.DataPath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// IndexerHandle wraps the catalog indexer worker with shutdown capability.
type IndexerHandle struct {
	*search.Indexer
}

// Shutdown implements do.Shutdownable.
func (h *IndexerHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideIndexer provides the async catalog indexer. The importer takes it
// as its search marker and marks bars dirty after catalog writes.
func ProvideIndexer(i do.Injector) (*IndexerHandle, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	indexer := search.NewIndexer(indexHandle.SearchIndex, storeHandle.Store, log.Logger)
	indexer.Start()

	log.Info("Search indexer started")

	return &IndexerHandle{Indexer: indexer}, nil
}
