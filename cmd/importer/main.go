package main

import (
	"context"
	"flag"
	"io"
	"os"
	"time"

	"bakery-fulfillment/internal/config"
	"bakery-fulfillment/internal/db"
	"bakery-fulfillment/internal/importer"
	"bakery-fulfillment/internal/repository/closure"
	"bakery-fulfillment/internal/repository/zone"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to a delivery zone or closure CSV")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := cfg.Logger("importer")

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("open file")
	}
	defer f.Close()

	kind, err := importer.DetectKind(f)
	if err != nil {
		logger.Fatal().Err(err).Str("file", filePath).Msg("detect csv kind")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		logger.Fatal().Err(err).Msg("rewind file")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	imp := importer.NewCSVImporter(f, zone.NewPostgres(pool, logger), closure.NewPostgres(pool, logger))

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Int("imported", count).Msg("import failed")
	}

	logger.Info().
		Str("kind", string(kind)).
		Int("rows", count).
		Dur("took", time.Since(start).Truncate(time.Millisecond)).
		Msg("import finished")
}
