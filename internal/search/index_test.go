package search

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/barkeepapp/barkeep-server/internal/domain"
)

func newTestIndex(t *testing.T) *SearchIndex {
	t.Helper()
	idx, err := NewSearchIndex(Options{
		DataPath: t.TempDir(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewSearchIndex: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func makeDoc(id string, docType DocType, barID, name string, tags ...string) *CatalogDocument {
	now := time.Now().UnixMilli()
	return &CatalogDocument{
		ID:        id,
		Type:      docType,
		BarID:     barID,
		Name:      name,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestIndexAndSearch(t *testing.T) {
	idx := newTestIndex(t)

	docs := []*CatalogDocument{
		makeDoc("cktl-1", DocTypeCocktail, "bar-1", "Daiquiri", "Classic", "Sour"),
		makeDoc("cktl-2", DocTypeCocktail, "bar-1", "Dark and Stormy"),
		makeDoc("ing-1", DocTypeIngredient, "bar-1", "Dark Rum"),
	}
	if err := idx.IndexDocuments(docs); err != nil {
		t.Fatalf("IndexDocuments: %v", err)
	}

	count, err := idx.DocumentCount()
	if err != nil {
		t.Fatalf("DocumentCount: %v", err)
	}
	if count != 3 {
		t.Errorf("count: got %d, want 3", count)
	}

	result, err := idx.Search(Request{BarID: "bar-1", Query: "daiquiri"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Total == 0 {
		t.Fatal("expected at least one hit")
	}
	if result.Hits[0].ID != "cktl-1" {
		t.Errorf("top hit: got %q, want cktl-1", result.Hits[0].ID)
	}
	if result.Hits[0].Name != "Daiquiri" {
		t.Errorf("hit name: got %q", result.Hits[0].Name)
	}
	if len(result.Hits[0].Tags) != 2 {
		t.Errorf("hit tags: got %+v", result.Hits[0].Tags)
	}
}

func TestSearch_ScopedToBar(t *testing.T) {
	idx := newTestIndex(t)

	docs := []*CatalogDocument{
		makeDoc("cktl-a", DocTypeCocktail, "bar-a", "Martini"),
		makeDoc("cktl-b", DocTypeCocktail, "bar-b", "Martini"),
	}
	if err := idx.IndexDocuments(docs); err != nil {
		t.Fatalf("IndexDocuments: %v", err)
	}

	result, err := idx.Search(Request{BarID: "bar-a", Query: "martini"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected 1 hit, got %d", result.Total)
	}
	if result.Hits[0].ID != "cktl-a" {
		t.Errorf("hit: got %q, want cktl-a", result.Hits[0].ID)
	}
}

func TestSearch_TypeFilter(t *testing.T) {
	idx := newTestIndex(t)

	docs := []*CatalogDocument{
		makeDoc("cktl-1", DocTypeCocktail, "bar-1", "Rum Punch"),
		makeDoc("ing-1", DocTypeIngredient, "bar-1", "Rum"),
	}
	if err := idx.IndexDocuments(docs); err != nil {
		t.Fatalf("IndexDocuments: %v", err)
	}

	result, err := idx.Search(Request{
		BarID: "bar-1",
		Query: "rum",
		Types: []DocType{DocTypeIngredient},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected 1 hit, got %d", result.Total)
	}
	if result.Hits[0].Type != DocTypeIngredient {
		t.Errorf("hit type: got %q", result.Hits[0].Type)
	}
}

func TestSearch_FuzzyMatchesTypo(t *testing.T) {
	idx := newTestIndex(t)

	if err := idx.IndexDocuments([]*CatalogDocument{
		makeDoc("cktl-1", DocTypeCocktail, "bar-1", "Negroni"),
	}); err != nil {
		t.Fatalf("IndexDocuments: %v", err)
	}

	result, err := idx.Search(Request{BarID: "bar-1", Query: "negrono"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Total == 0 {
		t.Error("expected a fuzzy hit for a one-letter typo")
	}
}

func TestSearch_RequiresBarID(t *testing.T) {
	idx := newTestIndex(t)

	if _, err := idx.Search(Request{Query: "anything"}); err == nil {
		t.Error("expected error for missing bar id")
	}
}

func TestSearch_EmptyQueryListsBar(t *testing.T) {
	idx := newTestIndex(t)

	docs := []*CatalogDocument{
		makeDoc("cktl-1", DocTypeCocktail, "bar-1", "Martini"),
		makeDoc("ing-1", DocTypeIngredient, "bar-1", "Gin"),
	}
	if err := idx.IndexDocuments(docs); err != nil {
		t.Fatalf("IndexDocuments: %v", err)
	}

	result, err := idx.Search(Request{BarID: "bar-1"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("expected 2 hits, got %d", result.Total)
	}
}

func TestDeleteDocumentsAndIDsForBar(t *testing.T) {
	idx := newTestIndex(t)

	docs := []*CatalogDocument{
		makeDoc("cktl-1", DocTypeCocktail, "bar-1", "Martini"),
		makeDoc("cktl-2", DocTypeCocktail, "bar-1", "Manhattan"),
		makeDoc("cktl-3", DocTypeCocktail, "bar-2", "Martini"),
	}
	if err := idx.IndexDocuments(docs); err != nil {
		t.Fatalf("IndexDocuments: %v", err)
	}

	ids, err := idx.DocumentIDsForBar("bar-1")
	if err != nil {
		t.Fatalf("DocumentIDsForBar: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %+v", ids)
	}

	if err := idx.DeleteDocuments(ids); err != nil {
		t.Fatalf("DeleteDocuments: %v", err)
	}

	count, err := idx.DocumentCount()
	if err != nil {
		t.Fatalf("DocumentCount: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 remaining doc, got %d", count)
	}
}

func TestCocktailToDocument(t *testing.T) {
	now := time.Now()
	c := &domain.Cocktail{
		ID:          "cktl-1",
		BarID:       "bar-1",
		Name:        "Daiquiri",
		Description: "Rum, lime, sugar.",
		Garnish:     "Lime wheel",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	doc := CocktailToDocument(c, []string{"Classic"})
	if doc.Type != DocTypeCocktail {
		t.Errorf("type: got %q", doc.Type)
	}
	if doc.ID != "cktl-1" || doc.BarID != "bar-1" {
		t.Errorf("ids: got %q/%q", doc.ID, doc.BarID)
	}
	if doc.CreatedAt != now.UnixMilli() {
		t.Errorf("CreatedAt: got %d, want %d", doc.CreatedAt, now.UnixMilli())
	}

	m := doc.ToMap()
	if m["name"] != "Daiquiri" {
		t.Errorf("map name: got %v", m["name"])
	}
	if m["garnish"] != "Lime wheel" {
		t.Errorf("map garnish: got %v", m["garnish"])
	}
	if _, ok := m["origin"]; ok {
		t.Error("expected empty origin to be omitted")
	}
}

func TestIngredientToDocument(t *testing.T) {
	now := time.Now()
	i := &domain.Ingredient{
		ID:        "ing-1",
		BarID:     "bar-1",
		Name:      "Dark Rum",
		Origin:    "Jamaica",
		CreatedAt: now,
		UpdatedAt: now,
	}

	doc := IngredientToDocument(i)
	if doc.Type != DocTypeIngredient {
		t.Errorf("type: got %q", doc.Type)
	}
	if doc.Origin != "Jamaica" {
		t.Errorf("origin: got %q", doc.Origin)
	}
}
