// Reclens - User-Based Collaborative Filtering Recommendation Service
// Copyright 2026 Reclens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens/reclens

// Package main is the entry point for the Reclens recommendation server.
//
// Reclens serves personalized recommendations from a user-based
// collaborative filtering model, with a popularity ranking as the
// cold-start fallback.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: load settings from environment variables and
//     config files (Koanf v2)
//  2. Model store: open the versioned model directory and load the
//     latest persisted model if one exists
//  3. Training: when no persisted model is found and train_on_startup
//     is enabled, fit from the configured CSV dataset and persist the
//     result
//  4. HTTP server: Chi router with /health, /reco, /api/v1 and
//     /metrics endpoints
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (HTTP_PORT, DATASET_PATH, MODEL_PATH, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//
// # Example Usage
//
// Train from a CSV dataset on first start:
//
//	export DATASET_PATH=/data/interactions.csv
//	export MODEL_PATH=/data/models
//	./reclens
//
// Serve a previously trained model without a dataset:
//
//	export RECO_TRAIN_ON_STARTUP=false
//	export MODEL_PATH=/data/models
//	./reclens
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/reclens/reclens/internal/api"
	"github.com/reclens/reclens/internal/config"
	"github.com/reclens/reclens/internal/dataset"
	"github.com/reclens/reclens/internal/logging"
	"github.com/reclens/reclens/internal/metrics"
	"github.com/reclens/reclens/internal/popularity"
	"github.com/reclens/reclens/internal/store"
	"github.com/reclens/reclens/internal/userknn"
)

const modelName = "userknn"

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
		Str("addr", cfg.Server.Addr()).
		Str("model_path", cfg.Model.Path).
		Str("dataset_path", cfg.Model.DatasetPath).
		Msg("Starting Reclens")

	modelStore, err := store.New(cfg.Model.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open model store")
	}

	engineLogger := logging.With().Str("component", "userknn").Logger()
	engine, err := userknn.NewEngine(userknn.Config{
		NeighborUsers: cfg.Model.NeighborUsers,
		DefaultTopK:   cfg.Model.DefaultK,
		Workers:       cfg.Model.Workers,
	}, engineLogger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create engine")
	}
	top := popularity.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := prepareModels(ctx, cfg, modelStore, engine, top); err != nil {
		logging.Fatal().Err(err).Msg("Failed to prepare models")
	}

	handler := api.NewHandler(engine, top, api.HandlerConfig{
		DefaultK:  cfg.Model.DefaultK,
		MaxUserID: cfg.Model.MaxUserID,
	}, logging.With().Str("component", "api").Logger())

	mw := api.NewMiddleware(&api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.API.CORSOrigins,
		CORSAllowedMethods: []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "Authorization"},
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.API.RateLimitReqs,
		RateLimitWindow:    cfg.API.RateLimitWindow,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, mw).Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}
	logging.Info().Msg("Server stopped")
}

// prepareModels restores the latest persisted model or, when none
// exists, trains from the configured dataset. The popularity fallback
// is always fit from the dataset when it is available.
func prepareModels(ctx context.Context, cfg *config.Config, modelStore *store.Store, engine *userknn.Engine, top *popularity.Model) error {
	var state userknn.State
	if meta, err := modelStore.Load(ctx, modelName, 0, &state); err == nil {
		if err := engine.Restore(&state); err != nil {
			return err
		}
		logging.Info().
			Int("version", meta.Version).
			Int("users", meta.UserCount).
			Int("items", meta.ItemCount).
			Time("trained_at", meta.TrainedAt).
			Msg("Restored persisted model")
	} else if _, ok := modelStore.LatestVersion(modelName); ok {
		// A model exists on disk but failed to load.
		return err
	} else if !cfg.Model.TrainOnStartup {
		logging.Warn().Msg("No persisted model and training on startup disabled; serving will start unfitted")
	}

	// Training data also feeds the popularity fallback.
	records, err := dataset.Load(cfg.Model.DatasetPath)
	if err != nil {
		if engine.IsFitted() {
			logging.Warn().Err(err).Msg("Dataset unavailable; popularity fallback stays unfitted")
			return nil
		}
		if !cfg.Model.TrainOnStartup {
			return nil
		}
		return err
	}

	top.Fit(records)
	logging.Info().Int("records", len(records)).Msg("Popularity fallback fitted")

	if engine.IsFitted() || !cfg.Model.TrainOnStartup {
		return nil
	}

	start := time.Now()
	err = engine.Fit(records)
	status := engine.Status()
	metrics.RecordTraining(status.Users, status.Items, status.Interactions, status.ModelVersion, time.Since(start), err)
	if err != nil {
		return err
	}

	fitState, err := engine.State()
	if err != nil {
		return err
	}
	meta, err := modelStore.Save(ctx, modelName, fitState, store.Metadata{
		TrainedAt:        status.TrainedAt,
		InteractionCount: status.Interactions,
		UserCount:        status.Users,
		ItemCount:        status.Items,
	})
	if err != nil {
		return err
	}
	logging.Info().
		Int("version", meta.Version).
		Int64("size_bytes", meta.SizeBytes).
		Dur("train_duration", time.Since(start)).
		Msg("Model trained and persisted")
	return nil
}
