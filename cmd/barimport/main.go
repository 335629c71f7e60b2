// Command barimport loads a catalog bundle into a bar from the command
// line. It opens the database directly, so run it against a stopped server
// or a separate data directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/barkeepapp/barkeep-server/internal/bundle"
	"github.com/barkeepapp/barkeep-server/internal/domain"
	"github.com/barkeepapp/barkeep-server/internal/id"
	"github.com/barkeepapp/barkeep-server/internal/importer"
	"github.com/barkeepapp/barkeep-server/internal/logger"
	"github.com/barkeepapp/barkeep-server/internal/media/images"
	"github.com/barkeepapp/barkeep-server/internal/store"
	"github.com/barkeepapp/barkeep-server/internal/store/sqlite"
)

func main() {
	var (
		bundlePath  = flag.String("bundle", "", "Path to the bundle directory (required)")
		dataPath    = flag.String("data", "", "Data directory holding barkeep.db (required)")
		uploadsPath = flag.String("uploads", "", "Uploads directory (default: {data}/uploads)")
		barID       = flag.String("bar", "", "Target bar id")
		createBar   = flag.String("create-bar", "", "Create a bar with this name and import into it")
		userID      = flag.String("user", "", "User id imported entities are attributed to (required)")
		ingredients = flag.Bool("ingredients", false, "Import ingredients")
		cocktails   = flag.Bool("cocktails", false, "Import cocktails (skipped unless -ingredients is also set)")
		noCache     = flag.Bool("no-cache", false, "Bypass the bundle parse cache")
		cacheTTL    = flag.Duration("cache-ttl", bundle.DefaultCacheTTL, "Bundle parse cache lifetime")
		logLevel    = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	log := logger.New(logger.Config{
		Level: logger.ParseLevel(*logLevel),
	})

	if *bundlePath == "" || *dataPath == "" || *userID == "" {
		flag.Usage()
		os.Exit(2)
	}
	if (*barID == "") == (*createBar == "") {
		log.Fatal("exactly one of -bar or -create-bar is required")
	}

	if *uploadsPath == "" {
		*uploadsPath = filepath.Join(*dataPath, "uploads")
	}

	ctx := context.Background()

	st, err := sqlite.Open(filepath.Join(*dataPath, "barkeep.db"), log.Logger)
	if err != nil {
		log.Fatal("failed to open database", "error", err)
	}
	defer st.Close()

	uploads, err := images.NewStorage(*uploadsPath)
	if err != nil {
		log.Fatal("failed to open uploads storage", "error", err)
	}

	if *createBar != "" {
		bar := &domain.Bar{
			ID:        id.MustGenerate("bar"),
			Name:      *createBar,
			CreatedBy: *userID,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
		if err := st.CreateBar(ctx, bar); err != nil {
			log.Fatal("failed to create bar", "name", *createBar, "error", err)
		}
		*barID = bar.ID
		log.Info("created bar", "bar_id", bar.ID, "name", bar.Name)
	}

	disk, err := bundle.NewDisk(*bundlePath)
	if err != nil {
		log.Fatal("failed to open bundle", "path", *bundlePath, "error", err)
	}
	var cache bundle.Cache = bundle.NewMemoryCache()
	if *noCache {
		cache = bundle.NoopCache{}
	}
	loader := bundle.NewLoader(disk, cache, *cacheTTL)

	var flags []importer.Flag
	if *ingredients {
		flags = append(flags, importer.FlagIngredients)
	}
	if *cocktails {
		flags = append(flags, importer.FlagCocktails)
	}

	imp := importer.New(st, loader, uploads, store.NewNoopSearchMarker(), log.Logger)

	result, err := imp.ImportBundle(ctx, *barID, *userID, flags)
	if err != nil {
		log.Fatal("import failed", "error", err)
	}

	for kind, n := range result.Imported {
		fmt.Printf("imported %-20s %d\n", kind, n)
	}
	for kind, n := range result.Skipped {
		fmt.Printf("skipped  %-20s %d\n", kind, n)
	}
	for _, e := range result.Errors {
		fmt.Printf("warning  %s: %s: %s\n", e.Step, e.Item, e.Error)
	}
	fmt.Printf("done in %s\n", result.Duration)
}
