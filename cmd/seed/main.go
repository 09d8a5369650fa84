package main

import (
	"context"
	"flag"
	"os"

	"bakery-fulfillment/internal/config"
	"bakery-fulfillment/internal/db"
	"bakery-fulfillment/internal/registry"
	"bakery-fulfillment/internal/seed"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to a bakery YAML configuration (defaults to the built-in demo bakery)")
	flag.Parse()

	cfg := config.FromEnv()
	logger := cfg.Logger("seed")

	data, err := load(filePath)
	if err != nil {
		logger.Fatal().Err(err).Str("file", filePath).Msg("load seed")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	if err := seed.Apply(ctx, registry.NewPostgres(pool, logger), data, logger); err != nil {
		logger.Fatal().Err(err).Msg("seed apply")
	}
}

func load(path string) (seed.Data, error) {
	if path == "" {
		return seed.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return seed.Data{}, err
	}
	defer f.Close()
	return seed.Load(f)
}
