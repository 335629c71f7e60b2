package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/barkeepapp/barkeep-server/internal/bundle"
	"github.com/barkeepapp/barkeep-server/internal/catalog"
	"github.com/barkeepapp/barkeep-server/internal/domain"
	"github.com/barkeepapp/barkeep-server/internal/id"
	"github.com/barkeepapp/barkeep-server/internal/media/images"
	"github.com/barkeepapp/barkeep-server/internal/store"
	"github.com/barkeepapp/barkeep-server/internal/store/sqlite"
	"github.com/barkeepapp/barkeep-server/internal/util"
)

// taxonomyFiles maps each taxonomy kind to its fixed file at the bundle root.
var taxonomyFiles = map[domain.TaxonomyKind]string{
	domain.TaxonomyGlass:              bundle.BaseGlassesFile,
	domain.TaxonomyMethod:             bundle.BaseMethodsFile,
	domain.TaxonomyUtensil:            bundle.BaseUtensilsFile,
	domain.TaxonomyIngredientCategory: bundle.BaseIngredientCategoriesFile,
}

// idPrefixes keeps generated ids readable per taxonomy kind.
var idPrefixes = map[domain.TaxonomyKind]string{
	domain.TaxonomyGlass:              "glass",
	domain.TaxonomyMethod:             "method",
	domain.TaxonomyUtensil:            "utensil",
	domain.TaxonomyIngredientCategory: "cat",
}

// Importer loads a catalog bundle into a bar. All writes are scoped to the
// target bar; existing entities with the same normalized identity are
// skipped, so re-running an import is a no-op for already-loaded data.
type Importer struct {
	store   *sqlite.Store
	loader  *bundle.Loader
	uploads *images.Storage
	search  store.SearchMarker
	logger  *slog.Logger
}

// New creates a bundle importer.
func New(st *sqlite.Store, loader *bundle.Loader, uploads *images.Storage, search store.SearchMarker, logger *slog.Logger) *Importer {
	if search == nil {
		search = store.NewNoopSearchMarker()
	}
	return &Importer{
		store:   st,
		loader:  loader,
		uploads: uploads,
		search:  search,
		logger:  logger.With("component", "importer"),
	}
}

// ImportBundle runs the bundle pipeline against one bar. Base taxonomies
// always import; ingredients and cocktails run when their flags are set.
// Cocktail recipe lines resolve against the ingredients loaded in the
// same run, so the cocktails step is skipped when the ingredients step
// did not run, even if its flag was set.
// Each step commits independently: a failure aborts the run but leaves
// earlier steps' data in place.
func (im *Importer) ImportBundle(ctx context.Context, barID, userID string, flags []Flag) (*Result, error) {
	if _, err := im.store.GetBarByID(ctx, barID); err != nil {
		return nil, fmt.Errorf("load bar %s: %w", barID, err)
	}

	start := time.Now()
	result := newResult()

	im.logger.Info("starting bundle import",
		"bar_id", barID,
		"bundle", im.loader.Disk().Root(),
		"flags", flags)

	for _, kind := range domain.AllTaxonomyKinds {
		if err := im.importTaxonomies(ctx, barID, kind, result); err != nil {
			return result, fmt.Errorf("import %s: %w", kind, err)
		}
	}

	if hasFlag(flags, FlagIngredients) {
		if err := im.importIngredients(ctx, barID, userID, result); err != nil {
			return result, fmt.Errorf("import ingredients: %w", err)
		}
		if hasFlag(flags, FlagCocktails) {
			if err := im.importCocktails(ctx, barID, userID, result); err != nil {
				return result, fmt.Errorf("import cocktails: %w", err)
			}
		}
	} else if hasFlag(flags, FlagCocktails) {
		im.logger.Warn("cocktails step skipped, ingredients step not requested", "bar_id", barID)
	}

	result.Duration = time.Since(start)

	im.search.MarkBarDirty(ctx, barID)

	im.logger.Info("bundle import complete",
		"bar_id", barID,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
		"duration", result.Duration)

	return result, nil
}

func (im *Importer) importTaxonomies(ctx context.Context, barID string, kind domain.TaxonomyKind, result *Result) error {
	records, err := im.loader.Taxonomies(taxonomyFiles[kind])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	rows, err := im.store.TaxonomyNamesByBar(ctx, barID, kind)
	if err != nil {
		return err
	}
	existing := catalog.BuildNameIndex(rows)

	fresh, skipped := catalog.PartitionTaxonomies(records, existing)
	result.Skipped[string(kind)] += skipped
	if len(fresh) == 0 {
		return nil
	}

	now := time.Now().UTC()
	taxonomies := make([]*domain.Taxonomy, 0, len(fresh))
	for _, rec := range fresh {
		taxID, err := id.Generate(idPrefixes[kind])
		if err != nil {
			return fmt.Errorf("generate id: %w", err)
		}
		taxonomies = append(taxonomies, &domain.Taxonomy{
			ID:            taxID,
			BarID:         barID,
			Kind:          kind,
			Name:          strings.TrimSpace(rec.Name),
			Description:   rec.Description,
			DilutionRatio: rec.DilutionRatio,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	inserted, err := im.store.InsertTaxonomies(ctx, taxonomies)
	if err != nil {
		return err
	}
	result.Imported[string(kind)] += inserted

	im.logger.Debug("imported taxonomies", "kind", kind, "imported", inserted, "skipped", skipped)
	return nil
}

func (im *Importer) importIngredients(ctx context.Context, barID, userID string, result *Result) error {
	records, err := im.loader.Ingredients()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	existing, err := im.slugIndex(ctx, barID, im.store.IngredientSlugsByBar)
	if err != nil {
		return err
	}

	catRows, err := im.store.TaxonomyNamesByBar(ctx, barID, domain.TaxonomyIngredientCategory)
	if err != nil {
		return err
	}
	categories := catalog.BuildNameIndex(catRows)

	fresh, skipped := catalog.PartitionIngredients(records, existing)
	result.Skipped["ingredients"] += skipped
	if len(fresh) == 0 {
		return nil
	}

	now := time.Now().UTC()
	ingredients := make([]*domain.Ingredient, 0, len(fresh))
	// Image rows are staged keyed by slug and re-keyed to the inserted
	// ingredient ids once the batch has committed.
	staged := make(map[string][]*domain.Image)

	for _, rec := range fresh {
		ingID, err := id.Generate("ing")
		if err != nil {
			return fmt.Errorf("generate id: %w", err)
		}
		slug := util.Slugify(rec.Name)
		ingredients = append(ingredients, &domain.Ingredient{
			ID:          ingID,
			BarID:       barID,
			Slug:        util.ScopedSlug(rec.Name, barID),
			Name:        strings.TrimSpace(rec.Name),
			CategoryID:  catalog.ResolveCategory(rec, categories),
			Strength:    rec.Strength,
			Description: rec.Description,
			Origin:      rec.Origin,
			Color:       rec.Color,
			CreatedBy:   userID,
			CreatedAt:   now,
			UpdatedAt:   now,
		})

		imgs := im.relocateImages(rec.Images, bundle.IngredientImagesDir, "ingredients", barID, slug, userID, "ingredient_images", result)
		if len(imgs) > 0 {
			staged[util.ScopedSlug(rec.Name, barID)] = imgs
		}
	}

	inserted, err := im.store.InsertIngredients(ctx, ingredients)
	if err != nil {
		return err
	}
	result.Imported["ingredients"] += inserted

	if len(staged) > 0 {
		rows, err := im.store.IngredientSlugsByBar(ctx, barID)
		if err != nil {
			return err
		}
		byScopedSlug := make(map[string]string, len(rows))
		for _, row := range rows {
			byScopedSlug[row.Key] = row.ID
		}

		var imageRows []*domain.Image
		for slug, imgs := range staged {
			ownerID, ok := byScopedSlug[slug]
			if !ok {
				continue
			}
			for _, img := range imgs {
				img.ImageableType = domain.ImageableIngredient
				img.ImageableID = ownerID
				imageRows = append(imageRows, img)
			}
		}
		if _, err := im.store.InsertImages(ctx, imageRows); err != nil {
			return err
		}
	}

	im.logger.Debug("imported ingredients", "imported", inserted, "skipped", skipped)
	return nil
}

func (im *Importer) importCocktails(ctx context.Context, barID, userID string, result *Result) error {
	records, err := im.loader.Cocktails()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	existing, err := im.slugIndex(ctx, barID, im.store.CocktailSlugsByBar)
	if err != nil {
		return err
	}

	glasses, err := im.taxonomyIndex(ctx, barID, domain.TaxonomyGlass)
	if err != nil {
		return err
	}
	methods, err := im.taxonomyIndex(ctx, barID, domain.TaxonomyMethod)
	if err != nil {
		return err
	}
	ingRows, err := im.store.IngredientNamesByBar(ctx, barID)
	if err != nil {
		return err
	}
	ingredients := catalog.BuildNameIndex(ingRows)

	fresh, skipped := catalog.PartitionCocktails(records, existing)
	result.Skipped["cocktails"] += skipped
	if len(fresh) == 0 {
		return nil
	}

	now := time.Now().UTC()
	var (
		lines     []*domain.CocktailIngredient
		tagLinks  []*domain.CocktailTag
		imageRows []*domain.Image
	)

	for _, rec := range fresh {
		resolved := catalog.ResolveCocktail(rec, glasses, methods, ingredients)

		cocktailID, err := id.Generate("cktl")
		if err != nil {
			return fmt.Errorf("generate id: %w", err)
		}
		c := &domain.Cocktail{
			ID:           cocktailID,
			BarID:        barID,
			Slug:         util.ScopedSlug(rec.Name, barID),
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
			return fmt.Errorf("create cocktail %q: %w", rec.Name, err)
		}
		result.Imported["cocktails"]++

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

		for _, name := range rec.Tags {
			tag, _, err := im.store.FindOrCreateTag(ctx, barID, name)
			if err != nil {
				return fmt.Errorf("tag %q: %w", name, err)
			}
			tagLinks = append(tagLinks, &domain.CocktailTag{CocktailID: c.ID, TagID: tag.ID})
		}

		for _, img := range im.relocateImages(rec.Images, bundle.CocktailImagesDir, "cocktails", barID, util.Slugify(rec.Name), userID, "cocktail_images", result) {
			img.ImageableType = domain.ImageableCocktail
			img.ImageableID = c.ID
			imageRows = append(imageRows, img)
		}
	}

	if _, err := im.store.InsertCocktailIngredients(ctx, lines); err != nil {
		return err
	}
	if _, err := im.store.InsertCocktailTags(ctx, tagLinks); err != nil {
		return err
	}
	if _, err := im.store.InsertImages(ctx, imageRows); err != nil {
		return err
	}

	im.logger.Debug("imported cocktails", "imported", len(fresh), "skipped", skipped)
	return nil
}

// relocateImages copies a record's image assets from the bundle into the
// uploads tree and builds the image rows, without owner ids. A missing
// source file skips that image and records a non-fatal error; the import
// carries on.
func (im *Importer) relocateImages(recs []bundle.ImageRecord, srcDir, kind, barID, slug, userID, step string, result *Result) []*domain.Image {
	if len(recs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([]*domain.Image, 0, len(recs))
	for _, rec := range recs {
		if rec.FileName == "" {
			continue
		}
		src := im.loader.Disk().Path(path.Join(srcDir, rec.FileName))
		relPath, ext, err := im.uploads.Relocate(src, kind, barID, slug)
		if err != nil {
			if errors.Is(err, images.ErrSourceMissing) {
				im.logger.Warn("bundle image missing, skipping", "file", rec.FileName, "slug", slug)
				result.Errors = append(result.Errors, StepError{
					Step:  step,
					Item:  rec.FileName,
					Error: "source image missing",
				})
				continue
			}
			im.logger.Warn("failed to relocate image", "file", rec.FileName, "error", err)
			result.Errors = append(result.Errors, StepError{
				Step:  step,
				Item:  rec.FileName,
				Error: err.Error(),
			})
			continue
		}

		hash := rec.PlaceholderHash
		if hash == "" {
			if computed, err := images.ComputeBlurHash(im.uploads.Path(relPath)); err == nil {
				hash = computed
			} else {
				im.logger.Debug("blurhash computation failed", "file", rec.FileName, "error", err)
			}
		}

		imgID, err := id.Generate("img")
		if err != nil {
			im.logger.Warn("failed to generate image id", "error", err)
			continue
		}
		rows = append(rows, &domain.Image{
			ID:              imgID,
			FilePath:        relPath,
			FileExtension:   ext,
			Copyright:       rec.Copyright,
			Sort:            rec.Sort,
			PlaceholderHash: hash,
			CreatedBy:       userID,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	return rows
}

// slugIndex builds a dedup index from a bar's stored slugs. Stored slugs
// carry the bar id suffix; the partition step keys records by the bare
// slugified name, so the suffix is stripped here.
func (im *Importer) slugIndex(ctx context.Context, barID string, fetch func(context.Context, string) ([]store.NameID, error)) (catalog.NameIndex, error) {
	rows, err := fetch(ctx, barID)
	if err != nil {
		return nil, err
	}
	idx := make(catalog.NameIndex, len(rows))
	for _, row := range rows {
		idx.Add(strings.TrimSuffix(row.Key, "-"+barID), row.ID)
	}
	return idx, nil
}

func (im *Importer) taxonomyIndex(ctx context.Context, barID string, kind domain.TaxonomyKind) (catalog.NameIndex, error) {
	rows, err := im.store.TaxonomyNamesByBar(ctx, barID, kind)
	if err != nil {
		return nil, err
	}
	return catalog.BuildNameIndex(rows), nil
}
