package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/barkeepapp/barkeep-server/internal/bundle"
	"github.com/barkeepapp/barkeep-server/internal/catalog"
	"github.com/barkeepapp/barkeep-server/internal/domain"
	"github.com/barkeepapp/barkeep-server/internal/id"
	"github.com/barkeepapp/barkeep-server/internal/store"
	"github.com/barkeepapp/barkeep-server/internal/util"
)

// DuplicateAction decides what happens when a submitted cocktail's name
// matches an existing cocktail in the bar.
type DuplicateAction string

// Duplicate policies.
const (
	DuplicateSkip      DuplicateAction = "skip"
	DuplicateOverwrite DuplicateAction = "overwrite"
	DuplicateKeepBoth  DuplicateAction = "duplicate"
)

// ParseDuplicateAction parses a policy string; empty defaults to skip.
func ParseDuplicateAction(s string) (DuplicateAction, error) {
	switch DuplicateAction(strings.ToLower(strings.TrimSpace(s))) {
	case "", DuplicateSkip:
		return DuplicateSkip, nil
	case DuplicateOverwrite:
		return DuplicateOverwrite, nil
	case DuplicateKeepBoth:
		return DuplicateKeepBoth, nil
	default:
		return "", fmt.Errorf("unknown duplicate action %q", s)
	}
}

// CollectionPayload is a user-submitted batch of cocktails.
type CollectionPayload struct {
	Name      string               `json:"name,omitempty"`
	Cocktails []CollectionCocktail `json:"cocktails" validate:"required,min=1"`
}

// CollectionCocktail is one submitted recipe. Nested ingredient names
// resolve against the bar's existing ingredients; unknown names become
// recipe lines without an ingredient reference.
type CollectionCocktail struct {
	Name         string                 `json:"name" validate:"required"`
	Instructions string                 `json:"instructions" validate:"required"`
	Description  string                 `json:"description,omitempty"`
	Garnish      string                 `json:"garnish,omitempty"`
	Source       string                 `json:"source,omitempty"`
	Abv          float64                `json:"abv,omitempty"`
	Glass        string                 `json:"glass,omitempty"`
	Method       string                 `json:"method,omitempty"`
	Ingredients  []CollectionIngredient `json:"ingredients,omitempty" validate:"dive"`
	Tags         []string               `json:"tags,omitempty"`
}

// CollectionIngredient is one recipe line of a submitted cocktail.
type CollectionIngredient struct {
	Name     string  `json:"name" validate:"required"`
	Amount   float64 `json:"amount,omitempty"`
	Units    string  `json:"units,omitempty"`
	Optional bool    `json:"optional,omitempty"`
}

// record converts a submitted cocktail to the canonical record shape so
// both import paths share resolution and persistence.
func (c CollectionCocktail) record() bundle.CocktailRecord {
	rec := bundle.CocktailRecord{
		Name:         c.Name,
		Instructions: c.Instructions,
		Description:  c.Description,
		Garnish:      c.Garnish,
		Source:       c.Source,
		Abv:          c.Abv,
		Glass:        c.Glass,
		Method:       c.Method,
		Tags:         c.Tags,
	}
	for _, line := range c.Ingredients {
		rec.Ingredients = append(rec.Ingredients, bundle.IngredientLine{
			Name:     line.Name,
			Amount:   line.Amount,
			Units:    line.Units,
			Optional: line.Optional,
		})
	}
	return rec
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// CollectionResult reports what a collection import did.
type CollectionResult struct {
	Imported   int
	Skipped    int
	ItemErrors []domain.JobError
}

// ImportCollection ingests a submitted cocktail batch into a bar. Items
// are independent: a failed item is recorded and its siblings still
// import. Only infrastructure failures (index loads) abort the whole run.
func (im *Importer) ImportCollection(ctx context.Context, barID, userID string, payload CollectionPayload, action DuplicateAction) (*CollectionResult, error) {
	if err := validate.StructCtx(ctx, payload); err != nil {
		return nil, store.ErrInvalidInput.WithCause(err)
	}

	if _, err := im.store.GetBarByID(ctx, barID); err != nil {
		return nil, fmt.Errorf("load bar %s: %w", barID, err)
	}

	glasses, err := im.taxonomyIndex(ctx, barID, domain.TaxonomyGlass)
	if err != nil {
		return nil, err
	}
	methods, err := im.taxonomyIndex(ctx, barID, domain.TaxonomyMethod)
	if err != nil {
		return nil, err
	}
	ingRows, err := im.store.IngredientNamesByBar(ctx, barID)
	if err != nil {
		return nil, err
	}
	ingredients := catalog.BuildNameIndex(ingRows)

	result := &CollectionResult{}
	for i, item := range payload.Cocktails {
		if err := im.importCollectionItem(ctx, barID, userID, item, action, glasses, methods, ingredients, result); err != nil {
			result.ItemErrors = append(result.ItemErrors, domain.JobError{
				Item:  itemLabel(item, i),
				Error: err.Error(),
			})
			im.logger.Warn("collection item failed",
				"bar_id", barID,
				"item", itemLabel(item, i),
				"error", err)
		}
	}

	im.search.MarkBarDirty(ctx, barID)

	im.logger.Info("collection import complete",
		"bar_id", barID,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"failed", len(result.ItemErrors))

	return result, nil
}

func (im *Importer) importCollectionItem(ctx context.Context, barID, userID string, item CollectionCocktail, action DuplicateAction, glasses, methods, ingredients catalog.NameIndex, result *CollectionResult) error {
	if err := validate.StructCtx(ctx, item); err != nil {
		return err
	}

	slug := util.ScopedSlug(item.Name, barID)

	existing, err := im.store.FindCocktailByName(ctx, barID, item.Name)
	switch {
	case err == nil:
		switch action {
		case DuplicateSkip:
			result.Skipped++
			return nil
		case DuplicateOverwrite:
			if err := im.store.DeleteCocktail(ctx, existing.ID); err != nil {
				return fmt.Errorf("overwrite %q: %w", item.Name, err)
			}
		case DuplicateKeepBoth:
			suffix, err := id.Suffix(4)
			if err != nil {
				return fmt.Errorf("generate slug suffix: %w", err)
			}
			slug = slug + "-" + suffix
		}
	case errors.Is(err, store.ErrNotFound):
		// New name, plain insert.
	default:
		return err
	}

	if err := im.insertCocktail(ctx, barID, userID, slug, item.record(), glasses, methods, ingredients); err != nil {
		return err
	}
	result.Imported++
	return nil
}

// insertCocktail persists one resolved cocktail with its recipe lines and
// tags. Shared by the collection path; images only exist on the bundle path.
func (im *Importer) insertCocktail(ctx context.Context, barID, userID, slug string, rec bundle.CocktailRecord, glasses, methods, ingredients catalog.NameIndex) error {
	resolved := catalog.ResolveCocktail(rec, glasses, methods, ingredients)

	cocktailID, err := id.Generate("cktl")
	if err != nil {
		return fmt.Errorf("generate id: %w", err)
	}
	now := time.Now().UTC()
	c := &domain.Cocktail{
		ID:           cocktailID,
		BarID:        barID,
		Slug:         slug,
		Name:         strings.TrimSpace(rec.Name),
		Instructions: rec.Instructions,
		Description:  rec.Description,
		Garnish:      rec.Garnish,
		Source:       rec.Source,
		Abv:          rec.Abv,
		GlassID:      resolved.GlassID,
		MethodID:     resolved.MethodID,
		CreatedBy:    userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := im.store.CreateCocktail(ctx, c); err != nil {
		return err
	}

	var lines []*domain.CocktailIngredient
	for i, line := range rec.Ingredients {
		lines = append(lines, &domain.CocktailIngredient{
			CocktailID:   c.ID,
			IngredientID: resolved.IngredientIDs[i],
			Amount:       line.Amount,
			Units:        line.Units,
			Optional:     line.Optional,
			Sort:         i + 1,
		})
	}
	if _, err := im.store.InsertCocktailIngredients(ctx, lines); err != nil {
		return err
	}

	var tagLinks []*domain.CocktailTag
	for _, name := range rec.Tags {
		tag, _, err := im.store.FindOrCreateTag(ctx, barID, name)
		if err != nil {
			return fmt.Errorf("tag %q: %w", name, err)
		}
		tagLinks = append(tagLinks, &domain.CocktailTag{CocktailID: c.ID, TagID: tag.ID})
	}
	if _, err := im.store.InsertCocktailTags(ctx, tagLinks); err != nil {
		return err
	}
	return nil
}

func itemLabel(item CollectionCocktail, index int) string {
	if item.Name != "" {
		return item.Name
	}
	return fmt.Sprintf("item %d", index+1)
}
