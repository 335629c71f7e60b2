package bundle

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultCacheTTL is how long parsed bundle files stay memoized. Bundles
// change rarely; iterative imports against the same source path should not
// re-parse the whole YAML tree every run.
const DefaultCacheTTL = 7 * 24 * time.Hour

// Loader parses bundle files through an advisory cache.
type Loader struct {
	disk  *Disk
	cache Cache
	ttl   time.Duration
}

// NewLoader creates a Loader over a bundle disk. A nil cache disables
// memoization.
func NewLoader(disk *Disk, cache Cache, ttl time.Duration) *Loader {
	if cache == nil {
		cache = NoopCache{}
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Loader{disk: disk, cache: cache, ttl: ttl}
}

// Disk returns the underlying bundle disk.
func (l *Loader) Disk() *Disk { return l.disk }

// cacheKey namespaces a cache entry by step and absolute source path, so a
// different bundle root never hits another bundle's entries.
func (l *Loader) cacheKey(step, rel string) string {
	return "bundle:" + step + ":" + l.disk.Path(rel)
}

// Taxonomies parses one base taxonomy file. A missing file is an empty
// slice: base files are optional in partial bundles.
func (l *Loader) Taxonomies(rel string) ([]TaxonomyRecord, error) {
	if !l.disk.FileExists(rel) {
		return nil, nil
	}

	v, err := l.cache.Remember(l.cacheKey("taxonomies", rel), l.ttl, func() (any, error) {
		data, err := l.disk.ReadFile(rel)
		if err != nil {
			return nil, err
		}
		var records []TaxonomyRecord
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parse %s: %w", rel, err)
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]TaxonomyRecord), nil
}

// Ingredients parses every ingredients/*.yml file in the bundle.
func (l *Loader) Ingredients() ([]IngredientRecord, error) {
	v, err := l.cache.Remember(l.cacheKey("ingredients", IngredientsDir), l.ttl, func() (any, error) {
		files, err := l.disk.Files(IngredientsDir)
		if err != nil {
			return nil, err
		}

		records := make([]IngredientRecord, 0, len(files))
		for _, f := range files {
			data, err := l.disk.ReadFile(f)
			if err != nil {
				return nil, err
			}
			var rec IngredientRecord
			if err := yaml.Unmarshal(data, &rec); err != nil {
				return nil, fmt.Errorf("parse %s: %w", f, err)
			}
			records = append(records, rec)
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]IngredientRecord), nil
}

// Cocktails parses every cocktails/*.yml file in the bundle.
func (l *Loader) Cocktails() ([]CocktailRecord, error) {
	v, err := l.cache.Remember(l.cacheKey("cocktails", CocktailsDir), l.ttl, func() (any, error) {
		files, err := l.disk.Files(CocktailsDir)
		if err != nil {
			return nil, err
		}

		records := make([]CocktailRecord, 0, len(files))
		for _, f := range files {
			data, err := l.disk.ReadFile(f)
			if err != nil {
				return nil, err
			}
			var rec CocktailRecord
			if err := yaml.Unmarshal(data, &rec); err != nil {
				return nil, fmt.Errorf("parse %s: %w", f, err)
			}
			records = append(records, rec)
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]CocktailRecord), nil
}
