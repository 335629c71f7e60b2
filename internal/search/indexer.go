package search

import (
	"context"
	"log/slog"
	"sync"

	"github.com/barkeepapp/barkeep-server/internal/store/sqlite"
)

// Indexer keeps the search index in sync with the catalog. Importers mark
// bars dirty; the indexer reindexes each dirty bar on a background worker.
// Marking never blocks and indexing failures are logged, not surfaced.
type Indexer struct {
	index  *SearchIndex
	store  *sqlite.Store
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]struct{}
	notify  chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewIndexer creates an indexer over the given index and store.
func NewIndexer(index *SearchIndex, st *sqlite.Store, logger *slog.Logger) *Indexer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Indexer{
		index:   index,
		store:   st,
		logger:  logger.With("component", "search"),
		pending: make(map[string]struct{}),
		notify:  make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the reindex worker.
func (ix *Indexer) Start() {
	ix.wg.Add(1)
	go ix.worker()
}

// Stop cancels the worker and waits for the in-flight reindex to finish.
func (ix *Indexer) Stop() {
	ix.cancel()
	ix.wg.Wait()
}

// MarkBarDirty queues a bar for reindexing. Repeated marks before the
// worker runs coalesce into a single reindex.
func (ix *Indexer) MarkBarDirty(_ context.Context, barID string) {
	ix.mu.Lock()
	ix.pending[barID] = struct{}{}
	ix.mu.Unlock()

	select {
	case ix.notify <- struct{}{}:
	default:
		// Already notified
	}
}

func (ix *Indexer) worker() {
	defer ix.wg.Done()

	for {
		select {
		case <-ix.ctx.Done():
			return
		case <-ix.notify:
			for _, barID := range ix.takePending() {
				if err := ix.reindexBar(ix.ctx, barID); err != nil {
					ix.logger.Error("bar reindex failed", "bar_id", barID, "error", err)
				}
			}
		}
	}
}

func (ix *Indexer) takePending() []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	bars := make([]string, 0, len(ix.pending))
	for barID := range ix.pending {
		bars = append(bars, barID)
	}
	ix.pending = make(map[string]struct{})
	return bars
}

// reindexBar replaces every document of one bar with the current catalog
// state. Stale documents (overwritten or deleted entities) are removed
// before the fresh batch is indexed.
func (ix *Indexer) reindexBar(ctx context.Context, barID string) error {
	stale, err := ix.index.DocumentIDsForBar(barID)
	if err != nil {
		return err
	}

	cocktails, err := ix.store.ListCocktailsByBar(ctx, barID)
	if err != nil {
		return err
	}
	ingredients, err := ix.store.ListIngredientsByBar(ctx, barID)
	if err != nil {
		return err
	}

	docs := make([]*CatalogDocument, 0, len(cocktails)+len(ingredients))
	for _, c := range cocktails {
		tags, err := ix.store.ListTagsForCocktail(ctx, c.ID)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(tags))
		for _, t := range tags {
			names = append(names, t.Name)
		}
		docs = append(docs, CocktailToDocument(c, names))
	}
	for _, ing := range ingredients {
		docs = append(docs, IngredientToDocument(ing))
	}

	fresh := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		fresh[d.ID] = struct{}{}
	}
	var remove []string
	for _, id := range stale {
		if _, ok := fresh[id]; !ok {
			remove = append(remove, id)
		}
	}
	if err := ix.index.DeleteDocuments(remove); err != nil {
		return err
	}
	if err := ix.index.IndexDocuments(docs); err != nil {
		return err
	}

	ix.logger.Debug("reindexed bar",
		"bar_id", barID,
		"documents", len(docs),
		"removed", len(remove))
	return nil
}
