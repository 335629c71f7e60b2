// Package bundle reads portable catalog bundles: a directory of YAML files
// holding base taxonomies, one ingredient per file, and one cocktail per
// file, with image assets alongside.
//
// Parsing is the trust boundary: files decode into the explicit record
// types below, and anything malformed fails here with the offending path.
// Untyped maps never travel further into the import pipeline.
package bundle

// Fixed base taxonomy file names at the bundle root.
const (
	BaseGlassesFile              = "base_glasses.yml"
	BaseMethodsFile              = "base_methods.yml"
	BaseUtensilsFile             = "base_utensils.yml"
	BaseIngredientCategoriesFile = "base_ingredient_categories.yml"
)

// Bundle subdirectories.
const (
	IngredientsDir      = "ingredients"
	CocktailsDir        = "cocktails"
	IngredientImagesDir = "ingredients/images"
	CocktailImagesDir   = "cocktails/images"
)

// TaxonomyRecord is one entry of a base taxonomy file.
type TaxonomyRecord struct {
	Name          string  `yaml:"name"`
	Description   string  `yaml:"description,omitempty"`
	DilutionRatio float64 `yaml:"dilution_ratio,omitempty"`
}

// ImageRecord references an asset file that lives under the entity kind's
// images directory inside the bundle.
type ImageRecord struct {
	FileName        string `yaml:"file_name"`
	Copyright       string `yaml:"copyright,omitempty"`
	Sort            int    `yaml:"sort,omitempty"`
	PlaceholderHash string `yaml:"placeholder_hash,omitempty"`
}

// IngredientRecord is one ingredients/*.yml file.
type IngredientRecord struct {
	Name        string        `yaml:"name"`
	Category    string        `yaml:"category,omitempty"` // Resolved by name against the bar's categories
	Strength    float64       `yaml:"strength,omitempty"`
	Description string        `yaml:"description,omitempty"`
	Origin      string        `yaml:"origin,omitempty"`
	Color       string        `yaml:"color,omitempty"`
	Images      []ImageRecord `yaml:"images,omitempty"`
}

// IngredientLine is one entry of a cocktail's ingredients list.
type IngredientLine struct {
	Name     string  `yaml:"name"`
	Amount   float64 `yaml:"amount"`
	Units    string  `yaml:"units"`
	Optional bool    `yaml:"optional,omitempty"`
}

// CocktailRecord is one cocktails/*.yml file. Glass and Method are names
// resolved against the bar's taxonomies at import time.
type CocktailRecord struct {
	Name         string           `yaml:"name"`
	Instructions string           `yaml:"instructions"`
	Description  string           `yaml:"description,omitempty"`
	Garnish      string           `yaml:"garnish,omitempty"`
	Source       string           `yaml:"source,omitempty"`
	Abv          float64          `yaml:"abv,omitempty"`
	Glass        string           `yaml:"glass,omitempty"`
	Method       string           `yaml:"method,omitempty"`
	Ingredients  []IngredientLine `yaml:"ingredients,omitempty"`
	Tags         []string         `yaml:"tags,omitempty"`
	Images       []ImageRecord    `yaml:"images,omitempty"`
}
