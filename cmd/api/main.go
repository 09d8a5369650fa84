package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bakery-fulfillment/internal/businesstime"
	"bakery-fulfillment/internal/config"
	"bakery-fulfillment/internal/db"
	"bakery-fulfillment/internal/httpserver"
	"bakery-fulfillment/internal/metrics"
	"bakery-fulfillment/internal/planner"
	"bakery-fulfillment/internal/registry"
	"bakery-fulfillment/internal/service/fulfillment"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.FromEnv()
	logger := cfg.Logger("api")

	clock, err := businesstime.New(cfg.BusinessTimezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.BusinessTimezone).Msg("load business timezone")
	}
	rollover, err := planner.ParseRolloverPolicy(cfg.CutoffRollover)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse cutoff rollover policy")
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to db")
	}
	defer dbpool.Close()

	var source registry.Source = registry.NewPostgres(dbpool, logger)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, registry cache will fall back to postgres")
		}
		source = registry.NewCached(source, rdb, cfg.RegistryCacheTTL, logger)
		logger.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.RegistryCacheTTL).Msg("registry cache enabled")
	}

	collector, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal().Err(err).Msg("register metrics")
	}

	svc := fulfillment.New(source, planner.New(clock, planner.WithRollover(rollover)), collector, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Fulfillment:    svc,
		Metrics:        collector,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init server")
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.HTTPAddr).
			Str("timezone", cfg.BusinessTimezone).
			Str("rollover", rollover.String()).
			Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("server error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		logger.Info().Msg("server stopped")
	}
}
