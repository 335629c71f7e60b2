package importer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/barkeepapp/barkeep-server/internal/domain"
	"github.com/barkeepapp/barkeep-server/internal/store"
)

func TestParseDuplicateAction(t *testing.T) {
	cases := []struct {
		in   string
		want DuplicateAction
	}{
		{"", DuplicateSkip},
		{"skip", DuplicateSkip},
		{"SKIP", DuplicateSkip},
		{" overwrite ", DuplicateOverwrite},
		{"duplicate", DuplicateKeepBoth},
	}
	for _, tc := range cases {
		got, err := ParseDuplicateAction(tc.in)
		if err != nil {
			t.Errorf("ParseDuplicateAction(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDuplicateAction(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}

	if _, err := ParseDuplicateAction("explode"); err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestImportCollection_InvalidPayload(t *testing.T) {
	h := newTestHarness(t)
	h.seedBar(t, "bar-v1", "user-v1")

	_, err := h.importer.ImportCollection(context.Background(), "bar-v1", "user-v1", CollectionPayload{}, DuplicateSkip)
	if err == nil {
		t.Fatal("expected error for empty payload, got nil")
	}
	var storeErr *store.Error
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected *store.Error, got %T: %v", err, err)
	}
	if storeErr.Code != store.ErrInvalidInput.Code {
		t.Errorf("expected status %d, got %d", store.ErrInvalidInput.Code, storeErr.Code)
	}
}

func TestImportCollection_ItemIsolation(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	h.seedBar(t, "bar-iso", "user-iso")

	payload := CollectionPayload{
		Cocktails: []CollectionCocktail{
			{Name: "Daiquiri", Instructions: "Shake and strain."},
			{Name: "Broken Drink"}, // no instructions: fails validation
			{Name: "Mojito", Instructions: "Build over crushed ice."},
		},
	}

	result, err := h.importer.ImportCollection(ctx, "bar-iso", "user-iso", payload, DuplicateSkip)
	if err != nil {
		t.Fatalf("ImportCollection: %v", err)
	}

	// The invalid item fails alone; its siblings import.
	if result.Imported != 2 {
		t.Errorf("imported: got %d, want 2", result.Imported)
	}
	if len(result.ItemErrors) != 1 {
		t.Fatalf("expected 1 item error, got %+v", result.ItemErrors)
	}
	if result.ItemErrors[0].Item != "Broken Drink" {
		t.Errorf("item error: got %q", result.ItemErrors[0].Item)
	}

	n, err := h.store.CountCocktails(ctx, "bar-iso")
	if err != nil {
		t.Fatalf("CountCocktails: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 cocktails, got %d", n)
	}

	if len(h.search.bars) != 1 {
		t.Errorf("expected one search mark, got %+v", h.search.bars)
	}
}

func TestImportCollection_ResolvesAgainstExistingEntities(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	h.seedBar(t, "bar-res", "user-res")

	now := time.Now()
	_, err := h.store.InsertTaxonomies(ctx, []*domain.Taxonomy{{
		ID: "glass-r1", BarID: "bar-res", Kind: domain.TaxonomyGlass,
		Name: "Coupe", CreatedAt: now, UpdatedAt: now,
	}})
	if err != nil {
		t.Fatalf("seed glass: %v", err)
	}
	_, err = h.store.InsertIngredients(ctx, []*domain.Ingredient{{
		ID: "ing-r1", BarID: "bar-res", Slug: "gin-bar-res", Name: "Gin",
		CreatedBy: "user-res", CreatedAt: now, UpdatedAt: now,
	}})
	if err != nil {
		t.Fatalf("seed ingredient: %v", err)
	}

	payload := CollectionPayload{
		Cocktails: []CollectionCocktail{{
			Name:         "Gimlet",
			Instructions: "Shake and strain.",
			Glass:        "coupe",
			Ingredients: []CollectionIngredient{
				{Name: "GIN", Amount: 60, Units: "ml"},
				{Name: "Lime Cordial", Amount: 22.5, Units: "ml"},
			},
			Tags: []string{"Classic"},
		}},
	}

	result, err := h.importer.ImportCollection(ctx, "bar-res", "user-res", payload, DuplicateSkip)
	if err != nil {
		t.Fatalf("ImportCollection: %v", err)
	}
	if result.Imported != 1 {
		t.Fatalf("imported: got %d, want 1", result.Imported)
	}

	c, err := h.store.GetCocktailBySlug(ctx, "gimlet-bar-res")
	if err != nil {
		t.Fatalf("GetCocktailBySlug: %v", err)
	}
	if c.GlassID != "glass-r1" {
		t.Errorf("GlassID: got %q, want glass-r1", c.GlassID)
	}

	lines, err := h.store.ListCocktailIngredients(ctx, c.ID)
	if err != nil {
		t.Fatalf("ListCocktailIngredients: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].IngredientID != "ing-r1" {
		t.Errorf("line 0: got %q, want ing-r1", lines[0].IngredientID)
	}
	// Unknown names never create ingredients; the line keeps a null ref.
	if lines[1].IngredientID != "" {
		t.Errorf("line 1: got %q, want empty", lines[1].IngredientID)
	}
	n, err := h.store.CountIngredients(ctx, "bar-res")
	if err != nil {
		t.Fatalf("CountIngredients: %v", err)
	}
	if n != 1 {
		t.Errorf("expected ingredient count unchanged at 1, got %d", n)
	}

	tags, err := h.store.ListTagsForCocktail(ctx, c.ID)
	if err != nil {
		t.Fatalf("ListTagsForCocktail: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "Classic" {
		t.Errorf("tags: got %+v", tags)
	}
}

func seedCollectionCocktail(t *testing.T, h *testHarness, barID, userID, name string) *domain.Cocktail {
	t.Helper()
	payload := CollectionPayload{
		Cocktails: []CollectionCocktail{{Name: name, Instructions: "Original build."}},
	}
	if _, err := h.importer.ImportCollection(context.Background(), barID, userID, payload, DuplicateSkip); err != nil {
		t.Fatalf("seed cocktail: %v", err)
	}
	c, err := h.store.FindCocktailByName(context.Background(), barID, name)
	if err != nil {
		t.Fatalf("find seeded cocktail: %v", err)
	}
	return c
}

func TestImportCollection_DuplicateSkip(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	h.seedBar(t, "bar-dup1", "user-dup1")
	original := seedCollectionCocktail(t, h, "bar-dup1", "user-dup1", "Negroni")

	payload := CollectionPayload{
		Cocktails: []CollectionCocktail{{Name: "NEGRONI", Instructions: "New build."}},
	}
	result, err := h.importer.ImportCollection(ctx, "bar-dup1", "user-dup1", payload, DuplicateSkip)
	if err != nil {
		t.Fatalf("ImportCollection: %v", err)
	}
	if result.Imported != 0 || result.Skipped != 1 {
		t.Errorf("got imported=%d skipped=%d, want 0/1", result.Imported, result.Skipped)
	}

	// The original row is untouched.
	got, err := h.store.FindCocktailByName(ctx, "bar-dup1", "Negroni")
	if err != nil {
		t.Fatalf("FindCocktailByName: %v", err)
	}
	if got.ID != original.ID {
		t.Errorf("expected original id %q, got %q", original.ID, got.ID)
	}
	if got.Instructions != "Original build." {
		t.Errorf("instructions: got %q", got.Instructions)
	}
}

func TestImportCollection_DuplicateOverwrite(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	h.seedBar(t, "bar-dup2", "user-dup2")
	original := seedCollectionCocktail(t, h, "bar-dup2", "user-dup2", "Negroni")

	payload := CollectionPayload{
		Cocktails: []CollectionCocktail{{Name: "Negroni", Instructions: "New build."}},
	}
	result, err := h.importer.ImportCollection(ctx, "bar-dup2", "user-dup2", payload, DuplicateOverwrite)
	if err != nil {
		t.Fatalf("ImportCollection: %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("imported: got %d, want 1", result.Imported)
	}

	got, err := h.store.FindCocktailByName(ctx, "bar-dup2", "Negroni")
	if err != nil {
		t.Fatalf("FindCocktailByName: %v", err)
	}
	if got.ID == original.ID {
		t.Error("expected a replacement row, got the original id")
	}
	if got.Instructions != "New build." {
		t.Errorf("instructions: got %q", got.Instructions)
	}

	n, err := h.store.CountCocktails(ctx, "bar-dup2")
	if err != nil {
		t.Fatalf("CountCocktails: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 cocktail after overwrite, got %d", n)
	}
}

func TestImportCollection_DuplicateKeepBoth(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	h.seedBar(t, "bar-dup3", "user-dup3")
	seedCollectionCocktail(t, h, "bar-dup3", "user-dup3", "Negroni")

	payload := CollectionPayload{
		Cocktails: []CollectionCocktail{{Name: "Negroni", Instructions: "Variation."}},
	}
	result, err := h.importer.ImportCollection(ctx, "bar-dup3", "user-dup3", payload, DuplicateKeepBoth)
	if err != nil {
		t.Fatalf("ImportCollection: %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("imported: got %d, want 1", result.Imported)
	}

	n, err := h.store.CountCocktails(ctx, "bar-dup3")
	if err != nil {
		t.Fatalf("CountCocktails: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 cocktails, got %d", n)
	}

	// The duplicate got a suffixed slug next to the original.
	slugs, err := h.store.CocktailSlugsByBar(ctx, "bar-dup3")
	if err != nil {
		t.Fatalf("CocktailSlugsByBar: %v", err)
	}
	var suffixed bool
	for _, p := range slugs {
		if p.Key != "negroni-bar-dup3" && strings.HasPrefix(p.Key, "negroni-bar-dup3-") {
			suffixed = true
		}
	}
	if !suffixed {
		t.Errorf("expected a suffixed slug, got %+v", slugs)
	}
}

func TestImportCollection_BarNotFound(t *testing.T) {
	h := newTestHarness(t)

	payload := CollectionPayload{
		Cocktails: []CollectionCocktail{{Name: "Ghost", Instructions: "Boo."}},
	}
	_, err := h.importer.ImportCollection(context.Background(), "no-bar", "no-user", payload, DuplicateSkip)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
