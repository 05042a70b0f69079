// Command loadcatalog bulk loads ingredients and tags into the database.
// Entries that already exist are skipped, so it is safe to run repeatedly.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/petermazzocco/foodgram/internal/config"
	"github.com/petermazzocco/foodgram/internal/importer"
	"github.com/petermazzocco/foodgram/internal/logging"
	"github.com/petermazzocco/foodgram/internal/store"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func main() {
	ingredientsPath := flag.String("ingredients", "", "ingredients file (.csv or .json)")
	tagsPath := flag.String("tags", "", "tags file (.json)")
	migrate := flag.Bool("migrate", true, "create or update tables before loading")
	flag.Parse()

	cfg, err := config.Load()
	logger := logging.New(cfg.LogLevel, !cfg.IsProduction())
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if *ingredientsPath == "" && *tagsPath == "" {
		logger.Fatal().Msg("nothing to load, pass -ingredients and/or -tags")
	}

	db, err := store.Open(cfg.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	if *migrate {
		if err := store.Migrate(db); err != nil {
			logger.Fatal().Err(err).Msg("migrate")
		}
	}

	if err := run(context.Background(), db, logger, *ingredientsPath, *tagsPath); err != nil {
		logger.Fatal().Err(err).Msg("load catalog")
	}
}

func run(ctx context.Context, db *gorm.DB, logger zerolog.Logger, ingredientsPath, tagsPath string) error {
	if ingredientsPath != "" {
		err := loadFile(logger, ingredientsPath, func(f *os.File, format importer.Format) (int, int64, error) {
			items, err := importer.ReadIngredients(f, format)
			if err != nil {
				return 0, 0, err
			}
			n, err := store.UpsertIngredients(ctx, db, items)
			return len(items), n, err
		})
		if err != nil {
			return err
		}
	}
	if tagsPath != "" {
		return loadFile(logger, tagsPath, func(f *os.File, _ importer.Format) (int, int64, error) {
			tags, err := importer.ReadTags(f)
			if err != nil {
				return 0, 0, err
			}
			n, err := store.UpsertTags(ctx, db, tags)
			return len(tags), n, err
		})
	}
	return nil
}

// loadFile opens path and hands it to load, logging how many rows were new.
func loadFile(logger zerolog.Logger, path string, load func(*os.File, importer.Format) (int, int64, error)) error {
	format, err := importer.FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	read, inserted, err := load(f, format)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	logger.Info().
		Str("path", path).
		Int("read", read).
		Int64("inserted", inserted).
		Int64("skipped", int64(read)-inserted).
		Msg("catalog loaded")
	return nil
}
