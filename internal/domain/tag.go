package domain

import "time"

// Tag is a bar-scoped label attached to cocktails. Unique per
// (bar_id, lowercase(name)); creation is get-or-create and therefore
// idempotent, unlike every other entity kind which is skip-if-exists.
type Tag struct {
	ID        string    `json:"id"`
	BarID     string    `json:"bar_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CocktailTag links a cocktail to a tag within the same bar.
type CocktailTag struct {
	CocktailID string `json:"cocktail_id"`
	TagID      string `json:"tag_id"`
}
