// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

// Package main is the entry point for the Argus server.
//
// Argus ingests detection events from home-security camera gateways over
// NATS JetStream, persists them to DuckDB, and correlates events observed
// by multiple cameras within a sliding time window into incident groups.
// A REST API exposes events, cameras, correlation groups, and operational
// stats.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, config.yaml, environment (koanf v2)
//  2. Logging: zerolog, JSON by default
//  3. Database: DuckDB with the events and cameras schema
//  4. Correlation: the multi-camera correlation engine
//  5. NATS ingest (optional): embedded or external JetStream, durable consumer
//  6. HTTP API: chi router with health, events, cameras, correlation routes
//  7. Supervisor tree: suture v4 supervising ingest and API layers
//
// # Configuration
//
// Configuration is loaded via koanf with layered sources (highest wins):
// environment variables, config file (ARGUS_CONFIG or ./config.yaml),
// built-in defaults. See internal/config for the full variable list.
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains
// connections, the NATS consumer stops and leaves unacknowledged messages
// for redelivery, and the database is closed last.
//
// # Example Usage
//
// Development with an embedded NATS server and console logs:
//
//	export NATS_STORE_DIR=/tmp/argus-jetstream
//	export DUCKDB_PATH=/tmp/argus.duckdb
//	export LOG_FORMAT=console
//	./argus
//
// Production against an external NATS cluster:
//
//	export NATS_EMBEDDED_SERVER=false
//	export NATS_URL=nats://nats.internal:4222
//	export DUCKDB_PATH=/data/argus.duckdb
//	./argus
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/argushq/argus/internal/api"
	"github.com/argushq/argus/internal/config"
	"github.com/argushq/argus/internal/correlation"
	"github.com/argushq/argus/internal/database"
	"github.com/argushq/argus/internal/logging"
	"github.com/argushq/argus/internal/supervisor"
	"github.com/argushq/argus/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Int("time_window_seconds", cfg.Correlation.TimeWindowSeconds).
		Int("buffer_max_age_seconds", cfg.Correlation.BufferMaxAgeSeconds).
		Msg("Configuration loaded")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	// The correlation engine writes through the database with a bounded
	// timeout and circuit breaker; the same instance backs both the ingest
	// pipeline and the API stats surface.
	corr := correlation.NewService(correlation.Config{
		TimeWindow:              cfg.Correlation.TimeWindow(),
		BufferMaxAge:            cfg.Correlation.BufferMaxAge(),
		PersistTimeout:          cfg.Correlation.PersistTimeout,
		BreakerFailureThreshold: cfg.Correlation.BreakerFailureThreshold,
		BreakerTimeout:          cfg.Correlation.BreakerTimeout,
	}, db)
	correlation.SetDefault(corr)
	logging.Info().Msg("Correlation engine ready")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog.
	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	ingest, err := InitIngest(cfg, db, corr)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize NATS ingest")
	}
	if ingest != nil {
		defer ingest.Shutdown(context.Background())
		tree.AddIngestService(services.NewIngestService(ingest))
		logging.Info().Msg("NATS ingest added to supervisor tree")
	}

	router := api.NewRouter(db, corr, &api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.API.CORSOrigins,
		RateLimitRequests:  cfg.API.RateLimitReqs,
		RateLimitWindow:    cfg.API.RateLimitWindow,
		RateLimitDisabled:  cfg.API.RateLimitReqs == 0,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server added to supervisor tree")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Argus stopped gracefully")
}
