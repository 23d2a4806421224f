// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

// Command train builds a recommendation model from the configured rating
// source, persists it in the model store and prints a JSON summary.
//
//	train -limit 100000
//	train -config ./config.yaml -dry-run
//
// The server picks up the new version on its next start or retrain.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/productrec/internal/config"
	"github.com/tomtom215/productrec/internal/logging"
	"github.com/tomtom215/productrec/internal/ratings"
	"github.com/tomtom215/productrec/internal/recommend"
	"github.com/tomtom215/productrec/internal/recommend/storage"
)

// summary is printed to stdout after a successful run.
type summary struct {
	Version     int                  `json:"version"`
	Persisted   bool                 `json:"persisted"`
	TrainedAt   time.Time            `json:"trained_at"`
	DurationMS  int64                `json:"duration_ms"`
	Neighbors   int                  `json:"neighbors"`
	Stats       recommend.BuildStats `json:"stats"`
	SourceType  string               `json:"source_type"`
	RecordLimit int                  `json:"record_limit,omitempty"`
}

// options are the command line flags.
type options struct {
	configPath string
	limit      int
	dryRun     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "config file (default: search CONFIG_PATH and standard locations)")
	flag.IntVar(&opts.limit, "limit", -1, "keep only the first N valid records (overrides RATINGS_LIMIT)")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "train without persisting the model")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "train: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run trains once and writes the summary to w. A negative opts.limit keeps
// the configured record limit.
func run(ctx context.Context, opts options, w io.Writer) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	logging.Init(cfg.Logging.LoggerConfig())

	sourceCfg := cfg.Source.RatingsConfig()
	if opts.limit >= 0 {
		sourceCfg.Limit = opts.limit
	}

	src, err := ratings.Open(ctx, sourceCfg)
	if err != nil {
		return fmt.Errorf("open rating source: %w", err)
	}
	defer src.Close() //nolint:errcheck // read-only source

	engine, err := recommend.NewEngine(cfg.Recommend.EngineConfig(), logging.WithComponent("train"))
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	engine.SetDataProvider(src)

	if !opts.dryRun {
		store, err := storage.Open(cfg.Store.StorageConfig())
		if err != nil {
			return fmt.Errorf("open model store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing model store")
			}
		}()
		engine.SetStore(store)
	}

	start := time.Now()
	model, err := engine.Train(ctx)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}

	out := summary{
		Version:     model.Version,
		Persisted:   !opts.dryRun,
		TrainedAt:   model.TrainedAt,
		DurationMS:  time.Since(start).Milliseconds(),
		Neighbors:   model.Index.K(),
		Stats:       model.Stats,
		SourceType:  sourceCfg.Type,
		RecordLimit: sourceCfg.Limit,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
