// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package recommend

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Model contains neighbor search parameters.
	Model ModelConfig `json:"model"`

	// Training contains training schedule parameters.
	Training TrainingConfig `json:"training"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains result caching parameters.
	Cache CacheConfig `json:"cache"`
}

// ModelConfig contains neighbor search parameters.
type ModelConfig struct {
	// Neighbors is the number of nearest users consulted per request.
	// Default: 3.
	Neighbors int `json:"neighbors"`

	// ExcludeSelf removes the queried user from its own neighbor set.
	// Default: false (the user counts as its own nearest neighbor).
	ExcludeSelf bool `json:"exclude_self"`
}

// TrainingConfig contains training schedule parameters.
type TrainingConfig struct {
	// Interval is the time between scheduled training runs.
	// Zero disables periodic retraining.
	// Default: 0.
	Interval time.Duration `json:"interval"`

	// MinRecords is the minimum number of valid rating records required to train.
	// Default: 1.
	MinRecords int `json:"min_records"`

	// Timeout bounds a single training run.
	// Default: 10m.
	Timeout time.Duration `json:"timeout"`

	// TrainOnStartup triggers a training run when the service starts.
	// Default: false.
	TrainOnStartup bool `json:"train_on_startup"`

	// RetainVersions is the number of persisted model versions to keep.
	// Default: 3.
	RetainVersions int `json:"retain_versions"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultCount is the number of recommendations returned when the
	// request does not specify one.
	// Default: 5.
	DefaultCount int `json:"default_count"`

	// MaxCount is the maximum allowed count.
	// Default: 100.
	MaxCount int `json:"max_count"`

	// MaxNeighbors caps the k accepted by the neighbors diagnostics call.
	// Default: 50.
	MaxNeighbors int `json:"max_neighbors"`
}

// CacheConfig contains result caching parameters.
type CacheConfig struct {
	// Enabled controls whether caching is active.
	// Default: true.
	Enabled bool `json:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 5m.
	TTL time.Duration `json:"ttl"`
}

// DefaultConfig returns a configuration with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Neighbors:   DefaultNeighbors,
			ExcludeSelf: false,
		},
		Training: TrainingConfig{
			MinRecords:     1,
			Timeout:        10 * time.Minute,
			RetainVersions: 3,
		},
		Limits: LimitsConfig{
			DefaultCount: DefaultCount,
			MaxCount:     100,
			MaxNeighbors: 50,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Model.Neighbors < 1 {
		return fmt.Errorf("model.neighbors must be positive, got %d", c.Model.Neighbors)
	}

	if c.Training.Interval < 0 {
		return fmt.Errorf("training.interval must be non-negative, got %v", c.Training.Interval)
	}
	if c.Training.MinRecords < 1 {
		return fmt.Errorf("training.min_records must be positive, got %d", c.Training.MinRecords)
	}
	if c.Training.Timeout <= 0 {
		return fmt.Errorf("training.timeout must be positive, got %v", c.Training.Timeout)
	}
	if c.Training.RetainVersions < 1 {
		return fmt.Errorf("training.retain_versions must be positive, got %d", c.Training.RetainVersions)
	}

	if c.Limits.DefaultCount < 1 {
		return fmt.Errorf("limits.default_count must be positive, got %d", c.Limits.DefaultCount)
	}
	if c.Limits.MaxCount < c.Limits.DefaultCount {
		return fmt.Errorf("limits.max_count (%d) must be >= limits.default_count (%d)", c.Limits.MaxCount, c.Limits.DefaultCount)
	}
	if c.Limits.MaxNeighbors < 1 {
		return fmt.Errorf("limits.max_neighbors must be positive, got %d", c.Limits.MaxNeighbors)
	}

	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when caching is enabled, got %v", c.Cache.TTL)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs hold value types only.
	clone := *c
	return &clone
}

// String returns a JSON representation of the configuration.
func (c *Config) String() string {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
