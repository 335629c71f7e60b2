package domain

import "time"

// TaxonomyKind discriminates the flat reference taxonomies a bar maintains.
type TaxonomyKind string

// Taxonomy kinds. The glass and method kinds are referenced by cocktails,
// the category kind by ingredients; utensils stand alone.
const (
	TaxonomyGlass              TaxonomyKind = "glass"
	TaxonomyMethod             TaxonomyKind = "method"
	TaxonomyUtensil            TaxonomyKind = "utensil"
	TaxonomyIngredientCategory TaxonomyKind = "ingredient_category"
)

// AllTaxonomyKinds lists every taxonomy kind in bundle-import order.
var AllTaxonomyKinds = []TaxonomyKind{
	TaxonomyGlass,
	TaxonomyMethod,
	TaxonomyUtensil,
	TaxonomyIngredientCategory,
}

// Taxonomy is a flat reference entity (glass, method, utensil, ingredient
// category) scoped to a bar. Unique per (bar_id, lowercase(name)).
// The importer only ever creates taxonomies; it never updates or deletes them.
type Taxonomy struct {
	ID            string       `json:"id"`
	BarID         string       `json:"bar_id"`
	Kind          TaxonomyKind `json:"kind"`
	Name          string       `json:"name"`
	Description   string       `json:"description,omitempty"`
	DilutionRatio float64      `json:"dilution_ratio,omitempty"` // Methods only
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
