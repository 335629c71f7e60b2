package domain

import "time"

// Cocktail is a bar-scoped recipe. Identity within a bar is the slug.
// GlassID and MethodID are weak references: an unresolved name on import
// degrades to an empty reference rather than rejecting the cocktail.
type Cocktail struct {
	ID           string    `json:"id"`
	BarID        string    `json:"bar_id"`
	Slug         string    `json:"slug"`
	Name         string    `json:"name"`
	Instructions string    `json:"instructions"`
	Description  string    `json:"description,omitempty"`
	Garnish      string    `json:"garnish,omitempty"`
	Source       string    `json:"source,omitempty"`
	Abv          float64   `json:"abv,omitempty"`
	GlassID      string    `json:"glass_id,omitempty"`
	MethodID     string    `json:"method_id,omitempty"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CocktailIngredient is one ordered line of a recipe.
//
// IngredientID may be empty: the importer records a line whose ingredient
// name could not be resolved with an empty reference instead of dropping
// the line. The amount and units are still meaningful to a reader.
type CocktailIngredient struct {
	CocktailID   string  `json:"cocktail_id"`
	IngredientID string  `json:"ingredient_id,omitempty"`
	Amount       float64 `json:"amount"`
	Units        string  `json:"units"`
	Optional     bool    `json:"optional"`
	Sort         int     `json:"sort"` // 1-based position in the recipe
}
