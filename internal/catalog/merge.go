package catalog

import (
	"github.com/barkeepapp/barkeep-server/internal/bundle"
	"github.com/barkeepapp/barkeep-server/internal/util"
)

// Partition splits incoming records into fresh and duplicate by a natural
// key, against both the existing index and the batch itself (two bundle
// files carrying the same name count as one record). Duplicates are
// silently dropped rather than overwritten or rejected, which is what
// makes re-importing a bundle a no-op for anything already present.
func Partition[T any](records []T, key func(T) string, existing NameIndex) (fresh []T, skipped int) {
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		k := util.NormalizeName(key(rec))
		if k == "" {
			skipped++
			continue
		}
		if existing.Has(k) {
			skipped++
			continue
		}
		if _, dup := seen[k]; dup {
			skipped++
			continue
		}
		seen[k] = struct{}{}
		fresh = append(fresh, rec)
	}
	return fresh, skipped
}

// PartitionTaxonomies partitions taxonomy records by lowercased name.
func PartitionTaxonomies(records []bundle.TaxonomyRecord, existing NameIndex) ([]bundle.TaxonomyRecord, int) {
	return Partition(records, func(r bundle.TaxonomyRecord) string { return r.Name }, existing)
}

// PartitionIngredients partitions ingredient records by slugified name,
// the same key the ingredient's per-bar slug is derived from.
func PartitionIngredients(records []bundle.IngredientRecord, existing NameIndex) ([]bundle.IngredientRecord, int) {
	return Partition(records, func(r bundle.IngredientRecord) string { return util.Slugify(r.Name) }, existing)
}

// PartitionCocktails partitions cocktail records by slugified name.
func PartitionCocktails(records []bundle.CocktailRecord, existing NameIndex) ([]bundle.CocktailRecord, int) {
	return Partition(records, func(r bundle.CocktailRecord) string { return util.Slugify(r.Name) }, existing)
}
