package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/barkeepapp/barkeep-server/internal/bundle"
	"github.com/barkeepapp/barkeep-server/internal/domain"
	"github.com/barkeepapp/barkeep-server/internal/importer"
	"github.com/barkeepapp/barkeep-server/internal/media/images"
	"github.com/barkeepapp/barkeep-server/internal/store/sqlite"
)

type exportHarness struct {
	store   *sqlite.Store
	uploads *images.Storage
	export  *Exporter
	logger  *slog.Logger
}

func newExportHarness(t *testing.T) *exportHarness {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	uploads, err := images.NewStorage(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}

	return &exportHarness{
		store:   st,
		uploads: uploads,
		export:  New(st, uploads, logger),
		logger:  logger,
	}
}

func (h *exportHarness) seedBar(t *testing.T, barID, userID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	err := h.store.CreateUser(ctx, &domain.User{
		ID: userID, Email: userID + "@example.com", Name: "Exporter",
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	err = h.store.CreateBar(ctx, &domain.Bar{
		ID: barID, Name: "Export Bar", CreatedBy: userID,
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed bar: %v", err)
	}
}

// seedCatalog loads a representative catalog into the bar.
func (h *exportHarness) seedCatalog(t *testing.T, barID, userID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	_, err := h.store.InsertTaxonomies(ctx, []*domain.Taxonomy{
		{ID: "glass-x1", BarID: barID, Kind: domain.TaxonomyGlass, Name: "Coupe", CreatedAt: now, UpdatedAt: now},
		{ID: "method-x1", BarID: barID, Kind: domain.TaxonomyMethod, Name: "Shake", DilutionRatio: 0.25, CreatedAt: now, UpdatedAt: now},
		{ID: "cat-x1", BarID: barID, Kind: domain.TaxonomyIngredientCategory, Name: "Spirits", CreatedAt: now, UpdatedAt: now},
	})
	if err != nil {
		t.Fatalf("seed taxonomies: %v", err)
	}

	_, err = h.store.InsertIngredients(ctx, []*domain.Ingredient{{
		ID: "ing-x1", BarID: barID, Slug: "gin-" + barID, Name: "Gin",
		CategoryID: "cat-x1", Strength: 40, CreatedBy: userID,
		CreatedAt: now, UpdatedAt: now,
	}})
	if err != nil {
		t.Fatalf("seed ingredient: %v", err)
	}

	err = h.store.CreateCocktail(ctx, &domain.Cocktail{
		ID: "cktl-x1", BarID: barID, Slug: "gimlet-" + barID, Name: "Gimlet",
		Instructions: "Shake and double strain.", GlassID: "glass-x1",
		MethodID: "method-x1", CreatedBy: userID,
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed cocktail: %v", err)
	}

	_, err = h.store.InsertCocktailIngredients(ctx, []*domain.CocktailIngredient{
		{CocktailID: "cktl-x1", IngredientID: "ing-x1", Amount: 60, Units: "ml", Sort: 1},
	})
	if err != nil {
		t.Fatalf("seed lines: %v", err)
	}

	tag, _, err := h.store.FindOrCreateTag(ctx, barID, "Classic")
	if err != nil {
		t.Fatalf("seed tag: %v", err)
	}
	_, err = h.store.InsertCocktailTags(ctx, []*domain.CocktailTag{
		{CocktailID: "cktl-x1", TagID: tag.ID},
	})
	if err != nil {
		t.Fatalf("seed tag link: %v", err)
	}
}

func readZipFile(t *testing.T, zr *zip.Reader, name string) []byte {
	t.Helper()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return data
	}
	t.Fatalf("file %s not in archive", name)
	return nil
}

func TestExportBar(t *testing.T) {
	h := newExportHarness(t)
	h.seedBar(t, "bar-ex1", "user-ex1")
	h.seedCatalog(t, "bar-ex1", "user-ex1")

	var buf bytes.Buffer
	result, err := h.export.ExportBar(context.Background(), "bar-ex1", &buf)
	if err != nil {
		t.Fatalf("ExportBar: %v", err)
	}
	if result.Counts.Taxonomies != 3 {
		t.Errorf("taxonomies: got %d, want 3", result.Counts.Taxonomies)
	}
	if result.Counts.Ingredients != 1 || result.Counts.Cocktails != 1 {
		t.Errorf("counts: got %+v", result.Counts)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	var glasses []bundle.TaxonomyRecord
	if err := yaml.Unmarshal(readZipFile(t, zr, bundle.BaseGlassesFile), &glasses); err != nil {
		t.Fatalf("parse glasses: %v", err)
	}
	if len(glasses) != 1 || glasses[0].Name != "Coupe" {
		t.Errorf("glasses: got %+v", glasses)
	}

	var methods []bundle.TaxonomyRecord
	if err := yaml.Unmarshal(readZipFile(t, zr, bundle.BaseMethodsFile), &methods); err != nil {
		t.Fatalf("parse methods: %v", err)
	}
	if len(methods) != 1 || methods[0].DilutionRatio != 0.25 {
		t.Errorf("methods: got %+v", methods)
	}

	var ing bundle.IngredientRecord
	if err := yaml.Unmarshal(readZipFile(t, zr, "ingredients/ing-x1.yml"), &ing); err != nil {
		t.Fatalf("parse ingredient: %v", err)
	}
	// Category reference is rewritten back to its name.
	if ing.Category != "Spirits" {
		t.Errorf("category: got %q, want Spirits", ing.Category)
	}

	var c bundle.CocktailRecord
	if err := yaml.Unmarshal(readZipFile(t, zr, "cocktails/cktl-x1.yml"), &c); err != nil {
		t.Fatalf("parse cocktail: %v", err)
	}
	if c.Glass != "Coupe" || c.Method != "Shake" {
		t.Errorf("references: got %q/%q", c.Glass, c.Method)
	}
	if len(c.Ingredients) != 1 || c.Ingredients[0].Name != "Gin" {
		t.Errorf("lines: got %+v", c.Ingredients)
	}
	if len(c.Tags) != 1 || c.Tags[0] != "Classic" {
		t.Errorf("tags: got %+v", c.Tags)
	}
}

func TestExportBar_IncludesImages(t *testing.T) {
	h := newExportHarness(t)
	h.seedBar(t, "bar-ex2", "user-ex2")
	h.seedCatalog(t, "bar-ex2", "user-ex2")

	// Place a managed asset and its row for the ingredient.
	srcPath := filepath.Join(t.TempDir(), "gin.jpg")
	if err := os.WriteFile(srcPath, []byte("fake image"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	rel, ext, err := h.uploads.Relocate(srcPath, "ingredients", "bar-ex2", "gin-bar-ex2")
	if err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	now := time.Now()
	_, err = h.store.InsertImages(context.Background(), []*domain.Image{{
		ID: "img-ex1", ImageableType: domain.ImageableIngredient, ImageableID: "ing-x1",
		FilePath: rel, FileExtension: ext, Copyright: "Press", Sort: 1,
		CreatedBy: "user-ex2", CreatedAt: now, UpdatedAt: now,
	}})
	if err != nil {
		t.Fatalf("InsertImages: %v", err)
	}

	var buf bytes.Buffer
	result, err := h.export.ExportBar(context.Background(), "bar-ex2", &buf)
	if err != nil {
		t.Fatalf("ExportBar: %v", err)
	}
	if result.Counts.Images != 1 {
		t.Errorf("images: got %d, want 1", result.Counts.Images)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	var ing bundle.IngredientRecord
	if err := yaml.Unmarshal(readZipFile(t, zr, "ingredients/ing-x1.yml"), &ing); err != nil {
		t.Fatalf("parse ingredient: %v", err)
	}
	if len(ing.Images) != 1 {
		t.Fatalf("image records: got %+v", ing.Images)
	}
	if ing.Images[0].Copyright != "Press" {
		t.Errorf("copyright: got %q", ing.Images[0].Copyright)
	}

	data := readZipFile(t, zr, "ingredients/images/"+ing.Images[0].FileName)
	if string(data) != "fake image" {
		t.Errorf("asset content mismatch: %q", data)
	}
}

func TestExportBar_MissingAssetSkipped(t *testing.T) {
	h := newExportHarness(t)
	h.seedBar(t, "bar-ex3", "user-ex3")
	h.seedCatalog(t, "bar-ex3", "user-ex3")

	// An image row whose asset file was lost.
	now := time.Now()
	_, err := h.store.InsertImages(context.Background(), []*domain.Image{{
		ID: "img-lost", ImageableType: domain.ImageableIngredient, ImageableID: "ing-x1",
		FilePath: "ingredients/bar-ex3/gone.jpg", FileExtension: "jpg", Sort: 1,
		CreatedBy: "user-ex3", CreatedAt: now, UpdatedAt: now,
	}})
	if err != nil {
		t.Fatalf("InsertImages: %v", err)
	}

	var buf bytes.Buffer
	result, err := h.export.ExportBar(context.Background(), "bar-ex3", &buf)
	if err != nil {
		t.Fatalf("ExportBar: %v", err)
	}
	if result.Counts.Images != 0 {
		t.Errorf("images: got %d, want 0", result.Counts.Images)
	}
}

func TestExportBar_NotFound(t *testing.T) {
	h := newExportHarness(t)

	var buf bytes.Buffer
	if _, err := h.export.ExportBar(context.Background(), "no-bar", &buf); err == nil {
		t.Fatal("expected error, got nil")
	}
}

// TestExportImportRoundTrip exports a bar and imports the result into a
// second bar, proving the archive is a valid bundle.
func TestExportImportRoundTrip(t *testing.T) {
	h := newExportHarness(t)
	ctx := context.Background()
	h.seedBar(t, "bar-src", "user-src")
	h.seedCatalog(t, "bar-src", "user-src")
	h.seedBar(t, "bar-dst", "user-dst")

	var buf bytes.Buffer
	if _, err := h.export.ExportBar(ctx, "bar-src", &buf); err != nil {
		t.Fatalf("ExportBar: %v", err)
	}

	// Unpack the archive into a bundle directory.
	bundleRoot := t.TempDir()
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	for _, f := range zr.File {
		dst := filepath.Join(bundleRoot, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", f.Name, err)
		}
	}

	disk, err := bundle.NewDisk(bundleRoot)
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	loader := bundle.NewLoader(disk, bundle.NoopCache{}, time.Minute)
	imp := importer.New(h.store, loader, h.uploads, nil, h.logger)

	result, err := imp.ImportBundle(ctx, "bar-dst", "user-dst", []importer.Flag{
		importer.FlagIngredients, importer.FlagCocktails,
	})
	if err != nil {
		t.Fatalf("ImportBundle: %v", err)
	}
	if result.Imported["ingredients"] != 1 || result.Imported["cocktails"] != 1 {
		t.Errorf("round trip imported: %+v", result.Imported)
	}

	c, err := h.store.GetCocktailBySlug(ctx, "gimlet-bar-dst")
	if err != nil {
		t.Fatalf("GetCocktailBySlug: %v", err)
	}
	// References resolved against the destination bar's own entities.
	if c.GlassID == "" || c.GlassID == "glass-x1" {
		t.Errorf("expected a fresh resolved glass, got %q", c.GlassID)
	}
}
