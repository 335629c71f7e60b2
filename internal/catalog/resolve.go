package catalog

import "github.com/barkeepapp/barkeep-server/internal/bundle"

// ResolvedCocktail is a cocktail record annotated with the entity ids its
// name references resolved to. An empty id means the name was not found in
// the bar; the record still imports, just without that reference.
type ResolvedCocktail struct {
	Record   bundle.CocktailRecord
	GlassID  string
	MethodID string
	// IngredientIDs is parallel to Record.Ingredients. An empty entry is
	// a recipe line kept with a null ingredient reference.
	IngredientIDs []string
}

// ResolveCocktail rewrites a cocktail record's cross-references (glass,
// method, per-line ingredient names) into resolved ids using prebuilt
// indices. Pure: same record and indices always produce the same result.
func ResolveCocktail(rec bundle.CocktailRecord, glasses, methods, ingredients NameIndex) ResolvedCocktail {
	resolved := ResolvedCocktail{
		Record:        rec,
		GlassID:       glasses.Resolve(rec.Glass),
		MethodID:      methods.Resolve(rec.Method),
		IngredientIDs: make([]string, len(rec.Ingredients)),
	}
	for i, line := range rec.Ingredients {
		resolved.IngredientIDs[i] = ingredients.Resolve(line.Name)
	}
	return resolved
}

// ResolveCategory maps an ingredient record's category name to a taxonomy
// id, or "" when the category is unknown in the bar.
func ResolveCategory(rec bundle.IngredientRecord, categories NameIndex) string {
	return categories.Resolve(rec.Category)
}
