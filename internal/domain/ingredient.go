package domain

import "time"

// Ingredient is a bar-scoped ingredient. Identity within a bar is the slug
// (slugified name + bar id); dedup on import is evaluated against it.
type Ingredient struct {
	ID          string    `json:"id"`
	BarID       string    `json:"bar_id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	CategoryID  string    `json:"category_id,omitempty"` // Resolved taxonomy ID; empty when unresolved
	Strength    float64   `json:"strength,omitempty"`    // ABV percentage
	Description string    `json:"description,omitempty"`
	Origin      string    `json:"origin,omitempty"`
	Color       string    `json:"color,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
