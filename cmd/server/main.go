// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

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

	"github.com/tomtom215/productrec/internal/api"
	"github.com/tomtom215/productrec/internal/auth"
	"github.com/tomtom215/productrec/internal/cache"
	"github.com/tomtom215/productrec/internal/config"
	"github.com/tomtom215/productrec/internal/logging"
	"github.com/tomtom215/productrec/internal/metrics"
	"github.com/tomtom215/productrec/internal/middleware"
	"github.com/tomtom215/productrec/internal/ratings"
	"github.com/tomtom215/productrec/internal/recommend"
	"github.com/tomtom215/productrec/internal/recommend/storage"
	"github.com/tomtom215/productrec/internal/supervisor"
	"github.com/tomtom215/productrec/internal/supervisor/services"
)

const (
	// performanceWindow is the number of recent requests kept for
	// /api/v1/admin/performance.
	performanceWindow = 1000

	lockoutCleanupInterval = 10 * time.Minute
	lockoutIdle            = time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging.LoggerConfig())

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
	logging.Info().Msg("Application stopped gracefully")
}

//nolint:gocyclo // sequential setup steps
func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("ratings_source", cfg.Source.Type).
		Str("model_store", cfg.Store.Type).
		Str("cache", cfg.Cache.Type).
		Int("neighbors", cfg.Recommend.Neighbors).
		Msg("Starting Productrec")

	src, err := ratings.Open(ctx, cfg.Source.RatingsConfig())
	if err != nil {
		return fmt.Errorf("open rating source: %w", err)
	}
	defer closeWithLog("rating source", src.Close)

	store, err := storage.Open(cfg.Store.StorageConfig())
	if err != nil {
		return fmt.Errorf("open model store: %w", err)
	}
	defer closeWithLog("model store", store.Close)

	resultCache, err := cache.Open(ctx, cfg.Cache.BackendConfig())
	if err != nil {
		return fmt.Errorf("open result cache: %w", err)
	}
	if resultCache != nil {
		defer closeWithLog("result cache", resultCache.Close)
	}

	engine, err := recommend.NewEngine(cfg.Recommend.EngineConfig(), logging.WithComponent("recommend"))
	if err != nil {
		return fmt.Errorf("create recommendation engine: %w", err)
	}
	engine.SetDataProvider(src)
	engine.SetStore(store)
	if resultCache != nil {
		engine.SetCache(resultCache)
	}
	engine.SetHooks(metrics.RecommendHooks())

	authMW, err := initAuth(&cfg.Security)
	if err != nil {
		return err
	}

	chiCfg := api.DefaultChiMiddlewareConfig()
	chiCfg.CORSAllowedOrigins = cfg.Security.CORSOrigins
	chiCfg.RateLimitRequests = cfg.Security.RateLimitReqs
	chiCfg.RateLimitWindow = cfg.Security.RateLimitWindow
	chiCfg.RateLimitDisabled = cfg.Security.RateLimitDisabled
	chiCfg.RateLimitKeyFunc = func(r *http.Request) (string, error) {
		return authMW.ClientIP(r), nil
	}

	retrain := services.NewRetrainService(engine, services.RetrainConfig{
		TrainOnStartup: cfg.Recommend.TrainOnStartup,
		Interval:       cfg.Recommend.TrainInterval,
	})

	perf := middleware.NewPerformanceMonitor(performanceWindow, middleware.DefaultSlowRequestThreshold)
	handler := api.NewHandler(engine,
		api.WithTrainer(retrain),
		api.WithPerformanceMonitor(perf),
		api.WithManualTrainInterval(cfg.Recommend.ManualTrainInterval),
	)
	router := api.NewRouter(handler, authMW, api.NewChiMiddleware(chiCfg), perf)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddDataService(retrain)
	tree.AddMaintenanceService(services.NewPeriodicService("lockout-cleanup", lockoutCleanupInterval,
		func(context.Context) {
			if n := authMW.CleanupLockouts(lockoutIdle); n > 0 {
				logging.Debug().Int("removed", n).Msg("Cleaned up idle lockout entries")
			}
		}))
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout))

	watchConfig()

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

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport() //nolint:errcheck // report is best effort
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	return nil
}

// initAuth builds the admin middleware. Without credentials the admin
// endpoints answer 403.
func initAuth(sec *config.SecurityConfig) (*auth.Middleware, error) {
	lockout := auth.NewLockout(auth.DefaultLockoutConfig())

	if !sec.AdminEnabled() {
		logging.Warn().Msg("Admin credentials not configured, admin endpoints disabled")
		return auth.NewMiddleware(nil, lockout, sec.TrustedProxies), nil
	}

	var (
		basic *auth.BasicAuthManager
		err   error
	)
	if sec.AdminPasswordHash != "" {
		basic, err = auth.NewBasicAuthManagerFromHash(sec.AdminUsername, sec.AdminPasswordHash)
	} else {
		basic, err = auth.NewBasicAuthManager(sec.AdminUsername, sec.AdminPassword)
	}
	if err != nil {
		return nil, fmt.Errorf("configure admin credentials: %w", err)
	}

	logging.Info().Str("username", basic.Username()).Msg("Admin endpoints enabled")
	return auth.NewMiddleware(basic, lockout, sec.TrustedProxies), nil
}

// watchConfig applies logging level changes from the config file.
func watchConfig() {
	path := config.FilePath()
	if path == "" {
		return
	}

	err := config.WatchConfigFile(path, func() {
		updated, err := config.LoadFile(path)
		if err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("Ignoring invalid config file change")
			return
		}
		if updated.Logging.Level != logging.GetLevel().String() {
			logging.SetLevelString(updated.Logging.Level)
			logging.Info().Str("level", updated.Logging.Level).Msg("Log level updated from config file")
		}
	})
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Config file watching disabled")
	}
}

func closeWithLog(name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logging.Error().Err(err).Str("component", name).Msg("Error closing component")
	}
}
