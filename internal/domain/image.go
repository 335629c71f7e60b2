package domain

import "time"

// ImageableType names the entity kind that owns an image row.
type ImageableType string

// Image owner kinds.
const (
	ImageableCocktail   ImageableType = "cocktail"
	ImageableIngredient ImageableType = "ingredient"
)

// Image is a reference to a relocated asset file owned by a cocktail or
// ingredient. The owner id is only known after the owning entity is
// persisted, so during import images are staged keyed by the owner's slug
// and re-keyed to the real id before the row is written.
type Image struct {
	ID              string        `json:"id"`
	ImageableType   ImageableType `json:"imageable_type"`
	ImageableID     string        `json:"imageable_id"`
	FilePath        string        `json:"file_path"` // Relative to the uploads root
	FileExtension   string        `json:"file_extension"`
	Copyright       string        `json:"copyright,omitempty"`
	Sort            int           `json:"sort"`
	PlaceholderHash string        `json:"placeholder_hash,omitempty"` // BlurHash for progressive loading
	CreatedBy       string        `json:"created_by"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
