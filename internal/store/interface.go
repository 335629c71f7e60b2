package store

import "context"

// SearchMarker is the search-indexing collaborator: it accepts "this bar's
// catalog changed" notifications and reindexes asynchronously. The core
// never blocks on it and never sees its errors.
type SearchMarker interface {
	MarkBarDirty(ctx context.Context, barID string)
}

// NoopSearchMarker is a no-op implementation for testing.
type NoopSearchMarker struct{}

func (NoopSearchMarker) MarkBarDirty(context.Context, string) {}

// NewNoopSearchMarker creates a new no-op search marker for testing.
func NewNoopSearchMarker() SearchMarker { return NoopSearchMarker{} }
