package main

import (
	"context"
	"flag"

	"bakery-fulfillment/internal/config"
	"bakery-fulfillment/internal/db"
	"bakery-fulfillment/internal/migrate"
)

func main() {
	var status bool
	flag.BoolVar(&status, "status", false, "Print the applied schema version and exit")
	flag.Parse()

	cfg := config.FromEnv()
	logger := cfg.Logger("migrate")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	if status {
		version, dirty, ok, err := migrate.Version(ctx, pool)
		if err != nil {
			logger.Fatal().Err(err).Msg("read schema version")
		}
		if !ok {
			logger.Info().Msg("no migrations applied")
			return
		}
		logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("schema version")
		return
	}

	if err := migrate.Apply(ctx, pool, logger); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}

	logger.Info().Msg("migrations applied")
}
