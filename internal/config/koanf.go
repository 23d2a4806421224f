// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/productrec/config.yaml",
	"/etc/productrec/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            5000,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Recommend: RecommendConfig{
			Neighbors:           3,
			ExcludeSelf:         false,
			DefaultCount:        5,
			MaxCount:            100,
			MaxNeighbors:        50,
			MinRecords:          1,
			RetainVersions:      3,
			TrainInterval:       0, // Train once; periodic retraining is opt-in
			TrainOnStartup:      false,
			TrainTimeout:        10 * time.Minute,
			ManualTrainInterval: time.Minute,
			CacheTTL:            5 * time.Minute,
		},
		Source: SourceConfig{
			Type:          "csv",
			Path:          "ratings.csv",
			UserColumn:    "UserId",
			ProductColumn: "ProductId",
			RatingColumn:  "Rating",
			Mongo: MongoSourceConfig{
				ConnectTimeout: 10 * time.Second,
			},
		},
		Store: StoreConfig{
			Type: "file",
			Path: "/data/models",
			Name: "knn",
		},
		Cache: CacheConfig{
			Type:            "memory",
			TTL:             5 * time.Minute,
			Capacity:        10000,
			CleanupInterval: time.Minute,
			Redis: RedisConfig{
				Addr:    "localhost:6379",
				Prefix:  "productrec:",
				Timeout: 500 * time.Millisecond,
			},
		},
		Security: SecurityConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	return loadFrom(findConfigFile())
}

// LoadFile loads configuration like LoadWithKoanf but reads the YAML file
// at path instead of searching the default locations. Environment
// variables still take precedence.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return loadFrom(path)
}

func loadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server mappings
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Recommendation engine mappings
	"recommend_neighbors":             "recommend.neighbors",
	"recommend_exclude_self":          "recommend.exclude_self",
	"recommend_default_count":         "recommend.default_count",
	"recommend_max_count":             "recommend.max_count",
	"recommend_max_neighbors":         "recommend.max_neighbors",
	"recommend_min_records":           "recommend.min_records",
	"recommend_retain_versions":       "recommend.retain_versions",
	"recommend_train_interval":        "recommend.train_interval",
	"recommend_train_on_startup":      "recommend.train_on_startup",
	"recommend_train_timeout":         "recommend.train_timeout",
	"recommend_manual_train_interval": "recommend.manual_train_interval",
	"recommend_cache_ttl":             "recommend.cache_ttl",

	// Rating source mappings
	"ratings_source":         "source.type",
	"ratings_path":           "source.path",
	"ratings_query":          "source.query",
	"ratings_user_column":    "source.user_column",
	"ratings_product_column": "source.product_column",
	"ratings_rating_column":  "source.rating_column",
	"ratings_limit":          "source.limit",
	"mongo_uri":              "source.mongo.uri",
	"mongo_database":         "source.mongo.database",
	"mongo_collection":       "source.mongo.collection",
	"mongo_connect_timeout":  "source.mongo.connect_timeout",

	// Model store mappings
	"model_store":      "store.type",
	"model_store_path": "store.path",
	"model_name":       "store.name",

	// Cache mappings
	"cache_type":             "cache.type",
	"cache_ttl":              "cache.ttl",
	"cache_capacity":         "cache.capacity",
	"cache_cleanup_interval": "cache.cleanup_interval",
	"redis_addr":             "cache.redis.addr",
	"redis_password":         "cache.redis.password",
	"redis_db":               "cache.redis.db",
	"redis_prefix":           "cache.redis.prefix",
	"redis_timeout":          "cache.redis.timeout",

	// Security mappings
	"admin_username":      "security.admin_username",
	"admin_password":      "security.admin_password",
	"admin_password_hash": "security.admin_password_hash",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"trusted_proxies":     "security.trusted_proxies",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - RATINGS_SOURCE -> source.type
//   - REDIS_ADDR -> cache.redis.addr
//   - RECOMMEND_NEIGHBORS -> recommend.neighbors
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// Unmapped keys are skipped so unrelated environment variables
	// never pollute the configuration.
	return ""
}

// WatchConfigFile calls callback whenever the file at path changes.
// The caller is responsible for reloading and swapping configuration.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)

	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}

// FilePath returns the config file Load would read, or "" when only
// defaults and environment variables are used.
func FilePath() string {
	return findConfigFile()
}
