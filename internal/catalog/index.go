// Package catalog implements the store-free core of the import pipeline:
// name index construction, dedup partitioning, and cross-reference
// resolution. Everything here is a pure function from (records, indices)
// to resolved records, so the merge semantics are testable without a
// database.
package catalog

import (
	"github.com/barkeepapp/barkeep-server/internal/store"
	"github.com/barkeepapp/barkeep-server/internal/util"
)

// NameIndex maps normalized natural keys to entity ids within one bar.
// Build it once per import run per entity kind and reuse it: lookups are
// O(1), so total resolution work stays O(existing rows + incoming rows).
type NameIndex map[string]string

// BuildNameIndex constructs a NameIndex from resolver feed rows. Keys are
// re-normalized here so the index never depends on what the query did.
func BuildNameIndex(rows []store.NameID) NameIndex {
	idx := make(NameIndex, len(rows))
	for _, r := range rows {
		idx[util.NormalizeName(r.Key)] = r.ID
	}
	return idx
}

// Resolve maps a natural-key reference to an entity id, or "" when the key
// is unknown. Unresolved references degrade to empty, never to an error:
// partial imports from incomplete reference data are expected.
func (idx NameIndex) Resolve(name string) string {
	return idx[util.NormalizeName(name)]
}

// Has reports whether a normalized key exists in the index.
func (idx NameIndex) Has(key string) bool {
	_, ok := idx[util.NormalizeName(key)]
	return ok
}

// Add records a key that was just created, so later records in the same
// run dedup against it.
func (idx NameIndex) Add(key, id string) {
	idx[util.NormalizeName(key)] = id
}
