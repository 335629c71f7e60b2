// Package search provides full-text catalog search using Bleve. Cocktails
// and ingredients index into one unified document shape with type
// discrimination, scoped per bar.
package search

import (
	"github.com/barkeepapp/barkeep-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeCocktail   DocType = "cocktail"
	DocTypeIngredient DocType = "ingredient"
)

// CatalogDocument is the unified document structure for the Bleve index.
//
// Tag names are denormalized into cocktail documents so a single query
// covers names, descriptions, and tags without joins at search time.
type CatalogDocument struct {
	ID          string   `json:"id"`
	Type        DocType  `json:"type"`
	BarID       string   `json:"bar_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Garnish     string   `json:"garnish,omitempty"`
	Origin      string   `json:"origin,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	CreatedAt   int64    `json:"created_at"` // Unix millis
	UpdatedAt   int64    `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but the
// mapping uses lowercase names, so we convert explicitly.
func (d *CatalogDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"type":       string(d.Type),
		"bar_id":     d.BarID,
		"name":       d.Name,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Garnish != "" {
		m["garnish"] = d.Garnish
	}
	if d.Origin != "" {
		m["origin"] = d.Origin
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}

	return m
}

// CocktailToDocument converts a cocktail to a search document. Tag names
// are provided by the caller; the search package does not read the store.
func CocktailToDocument(c *domain.Cocktail, tags []string) *CatalogDocument {
	return &CatalogDocument{
		ID:          c.ID,
		Type:        DocTypeCocktail,
		BarID:       c.BarID,
		Name:        c.Name,
		Description: c.Description,
		Garnish:     c.Garnish,
		Tags:        tags,
		CreatedAt:   c.CreatedAt.UnixMilli(),
		UpdatedAt:   c.UpdatedAt.UnixMilli(),
	}
}

// IngredientToDocument converts an ingredient to a search document.
func IngredientToDocument(i *domain.Ingredient) *CatalogDocument {
	return &CatalogDocument{
		ID:          i.ID,
		Type:        DocTypeIngredient,
		BarID:       i.BarID,
		Name:        i.Name,
		Description: i.Description,
		Origin:      i.Origin,
		CreatedAt:   i.CreatedAt.UnixMilli(),
		UpdatedAt:   i.UpdatedAt.UnixMilli(),
	}
}
