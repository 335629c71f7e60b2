// Package archive exports a bar's catalog as a portable bundle: the same
// zip layout the bundle importer consumes, so an export re-imports cleanly
// into another bar or another server.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/barkeepapp/barkeep-server/internal/bundle"
	"github.com/barkeepapp/barkeep-server/internal/domain"
	"github.com/barkeepapp/barkeep-server/internal/media/images"
	"github.com/barkeepapp/barkeep-server/internal/store/sqlite"
)

// Result contains the outcome of an export.
type Result struct {
	Counts   EntityCounts
	Duration time.Duration
}

// EntityCounts tracks exported entity counts.
type EntityCounts struct {
	Taxonomies  int `json:"taxonomies"`
	Ingredients int `json:"ingredients"`
	Cocktails   int `json:"cocktails"`
	Images      int `json:"images"`
}

// Exporter writes bar catalogs as bundle archives.
type Exporter struct {
	store   *sqlite.Store
	uploads *images.Storage
	logger  *slog.Logger
}

// New creates an Exporter.
func New(st *sqlite.Store, uploads *images.Storage, logger *slog.Logger) *Exporter {
	return &Exporter{store: st, uploads: uploads, logger: logger.With("component", "archive")}
}

// taxonomyFiles mirrors the bundle's fixed base file names.
var taxonomyFiles = map[domain.TaxonomyKind]string{
	domain.TaxonomyGlass:              bundle.BaseGlassesFile,
	domain.TaxonomyMethod:             bundle.BaseMethodsFile,
	domain.TaxonomyUtensil:            bundle.BaseUtensilsFile,
	domain.TaxonomyIngredientCategory: bundle.BaseIngredientCategoriesFile,
}

// ExportBar writes one bar's full catalog as a zip bundle to w.
func (e *Exporter) ExportBar(ctx context.Context, barID string, w io.Writer) (*Result, error) {
	start := time.Now()

	if _, err := e.store.GetBarByID(ctx, barID); err != nil {
		return nil, fmt.Errorf("load bar %s: %w", barID, err)
	}

	zw := zip.NewWriter(w)
	result := &Result{}

	taxNames, err := e.exportTaxonomies(ctx, zw, barID, result)
	if err != nil {
		return nil, err
	}

	ingredientNames, err := e.exportIngredients(ctx, zw, barID, taxNames[domain.TaxonomyIngredientCategory], result)
	if err != nil {
		return nil, err
	}

	if err := e.exportCocktails(ctx, zw, barID, taxNames, ingredientNames, result); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}

	result.Duration = time.Since(start)

	e.logger.Info("exported bar",
		"bar_id", barID,
		"taxonomies", result.Counts.Taxonomies,
		"ingredients", result.Counts.Ingredients,
		"cocktails", result.Counts.Cocktails,
		"images", result.Counts.Images,
		"duration", result.Duration)

	return result, nil
}

// exportTaxonomies writes the four base files and returns id-to-name maps
// per kind so entity references can be rewritten back to names.
func (e *Exporter) exportTaxonomies(ctx context.Context, zw *zip.Writer, barID string, result *Result) (map[domain.TaxonomyKind]map[string]string, error) {
	names := make(map[domain.TaxonomyKind]map[string]string, len(domain.AllTaxonomyKinds))

	for _, kind := range domain.AllTaxonomyKinds {
		taxonomies, err := e.store.ListTaxonomiesByBar(ctx, barID, kind)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", kind, err)
		}

		names[kind] = make(map[string]string, len(taxonomies))
		records := make([]bundle.TaxonomyRecord, 0, len(taxonomies))
		for _, t := range taxonomies {
			names[kind][t.ID] = t.Name
			records = append(records, bundle.TaxonomyRecord{
				Name:          t.Name,
				Description:   t.Description,
				DilutionRatio: t.DilutionRatio,
			})
		}
		if len(records) == 0 {
			continue
		}

		if err := writeYAML(zw, taxonomyFiles[kind], records); err != nil {
			return nil, fmt.Errorf("write %s: %w", taxonomyFiles[kind], err)
		}
		result.Counts.Taxonomies += len(records)
	}

	return names, nil
}

func (e *Exporter) exportIngredients(ctx context.Context, zw *zip.Writer, barID string, categories map[string]string, result *Result) (map[string]string, error) {
	ingredients, err := e.store.ListIngredientsByBar(ctx, barID)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}

	names := make(map[string]string, len(ingredients))
	for _, ing := range ingredients {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		names[ing.ID] = ing.Name

		rec := bundle.IngredientRecord{
			Name:        ing.Name,
			Category:    categories[ing.CategoryID],
			Strength:    ing.Strength,
			Description: ing.Description,
			Origin:      ing.Origin,
			Color:       ing.Color,
		}
		rec.Images, err = e.exportImages(ctx, zw, domain.ImageableIngredient, ing.ID, bundle.IngredientImagesDir, result)
		if err != nil {
			return nil, fmt.Errorf("ingredient %s images: %w", ing.ID, err)
		}

		name := path.Join(bundle.IngredientsDir, ing.ID+".yml")
		if err := writeYAML(zw, name, rec); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
		result.Counts.Ingredients++
	}

	return names, nil
}

func (e *Exporter) exportCocktails(ctx context.Context, zw *zip.Writer, barID string, taxonomies map[domain.TaxonomyKind]map[string]string, ingredientNames map[string]string, result *Result) error {
	cocktails, err := e.store.ListCocktailsByBar(ctx, barID)
	if err != nil {
		return fmt.Errorf("list cocktails: %w", err)
	}

	for _, c := range cocktails {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rec := bundle.CocktailRecord{
			Name:         c.Name,
			Instructions: c.Instructions,
			Description:  c.Description,
			Garnish:      c.Garnish,
			Source:       c.Source,
			Abv:          c.Abv,
			Glass:        taxonomies[domain.TaxonomyGlass][c.GlassID],
			Method:       taxonomies[domain.TaxonomyMethod][c.MethodID],
		}

		lines, err := e.store.ListCocktailIngredients(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("cocktail %s lines: %w", c.ID, err)
		}
		for _, line := range lines {
			rec.Ingredients = append(rec.Ingredients, bundle.IngredientLine{
				Name:     ingredientNames[line.IngredientID],
				Amount:   line.Amount,
				Units:    line.Units,
				Optional: line.Optional,
			})
		}

		tags, err := e.store.ListTagsForCocktail(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("cocktail %s tags: %w", c.ID, err)
		}
		for _, t := range tags {
			rec.Tags = append(rec.Tags, t.Name)
		}

		rec.Images, err = e.exportImages(ctx, zw, domain.ImageableCocktail, c.ID, bundle.CocktailImagesDir, result)
		if err != nil {
			return fmt.Errorf("cocktail %s images: %w", c.ID, err)
		}

		name := path.Join(bundle.CocktailsDir, c.ID+".yml")
		if err := writeYAML(zw, name, rec); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		result.Counts.Cocktails++
	}

	return nil
}

// exportImages copies an entity's assets into the archive's images
// directory and returns the image records referencing them. A missing
// asset file is skipped, matching import behavior.
func (e *Exporter) exportImages(ctx context.Context, zw *zip.Writer, ownerType domain.ImageableType, ownerID, destDir string, result *Result) ([]bundle.ImageRecord, error) {
	rows, err := e.store.ListImagesForOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, err
	}

	var records []bundle.ImageRecord
	for i, img := range rows {
		fileName := fmt.Sprintf("%s-%d.%s", ownerID, i+1, img.FileExtension)

		src, err := os.Open(e.uploads.Path(img.FilePath))
		if err != nil {
			e.logger.Warn("image asset missing, skipping", "path", img.FilePath, "error", err)
			continue
		}

		w, err := zw.Create(path.Join(destDir, fileName))
		if err != nil {
			src.Close()
			return nil, err
		}
		if _, err := io.Copy(w, src); err != nil {
			src.Close()
			return nil, err
		}
		src.Close()

		records = append(records, bundle.ImageRecord{
			FileName:        fileName,
			Copyright:       img.Copyright,
			Sort:            img.Sort,
			PlaceholderHash: img.PlaceholderHash,
		})
		result.Counts.Images++
	}

	return records, nil
}

func writeYAML(zw *zip.Writer, name string, v any) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
