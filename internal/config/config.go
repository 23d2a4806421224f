// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/productrec/internal/cache"
	"github.com/tomtom215/productrec/internal/logging"
	"github.com/tomtom215/productrec/internal/ratings"
	"github.com/tomtom215/productrec/internal/recommend"
	"github.com/tomtom215/productrec/internal/recommend/storage"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Serving:
//     - Server: HTTP listener and timeouts
//     - Recommend: neighbor count, result limits, training schedule
//     - Cache: result cache backend (memory, redis, tiered, none)
//
//  2. Data:
//     - Source: where rating records are read from (csv, duckdb, mongo)
//     - Store: where trained models are persisted (badger, file, memory)
//
//  3. Security & Observability:
//     - Security: admin credentials, CORS, rate limiting
//     - Logging: log level and output format
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Recommend RecommendConfig `koanf:"recommend"`
	Source    SourceConfig    `koanf:"source"`
	Store     StoreConfig     `koanf:"store"`
	Cache     CacheConfig     `koanf:"cache"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	Environment     string        `koanf:"environment" validate:"oneof=development staging production"`
}

// Addr returns the listen address.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the server runs in production mode.
func (s *ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// RecommendConfig holds recommendation engine settings.
//
// Environment Variables:
//   - RECOMMEND_NEIGHBORS: users consulted per request (default: 3)
//   - RECOMMEND_EXCLUDE_SELF: drop the querying user from its neighbors (default: false)
//   - RECOMMEND_DEFAULT_COUNT: recommendations when count is omitted (default: 5)
//   - RECOMMEND_MAX_COUNT: largest accepted count (default: 100)
//   - RECOMMEND_TRAIN_INTERVAL: periodic retrain interval, 0 disables (default: 0)
//   - RECOMMEND_TRAIN_ON_STARTUP: train when the service starts (default: false)
//   - RECOMMEND_MANUAL_TRAIN_INTERVAL: minimum spacing of manual retrains (default: 1m)
type RecommendConfig struct {
	Neighbors      int  `koanf:"neighbors" validate:"gte=1"`
	ExcludeSelf    bool `koanf:"exclude_self"`
	DefaultCount   int  `koanf:"default_count" validate:"gte=1"`
	MaxCount       int  `koanf:"max_count" validate:"gtefield=DefaultCount"`
	MaxNeighbors   int  `koanf:"max_neighbors" validate:"gte=1"`
	MinRecords     int  `koanf:"min_records" validate:"gte=1"`
	RetainVersions int  `koanf:"retain_versions" validate:"gte=1"`

	TrainInterval       time.Duration `koanf:"train_interval" validate:"gte=0"`
	TrainOnStartup      bool          `koanf:"train_on_startup"`
	TrainTimeout        time.Duration `koanf:"train_timeout" validate:"gt=0"`
	ManualTrainInterval time.Duration `koanf:"manual_train_interval" validate:"gte=0"`

	// CacheTTL bounds how long a computed result is reused. Zero disables
	// result caching regardless of the cache backend.
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"gte=0"`
}

// EngineConfig converts the settings into a recommend.Config.
func (r *RecommendConfig) EngineConfig() *recommend.Config {
	cfg := recommend.DefaultConfig()
	cfg.Model.Neighbors = r.Neighbors
	cfg.Model.ExcludeSelf = r.ExcludeSelf
	cfg.Limits.DefaultCount = r.DefaultCount
	cfg.Limits.MaxCount = r.MaxCount
	cfg.Limits.MaxNeighbors = r.MaxNeighbors
	cfg.Training.Interval = r.TrainInterval
	cfg.Training.MinRecords = r.MinRecords
	cfg.Training.Timeout = r.TrainTimeout
	cfg.Training.TrainOnStartup = r.TrainOnStartup
	cfg.Training.RetainVersions = r.RetainVersions
	cfg.Cache.Enabled = r.CacheTTL > 0
	cfg.Cache.TTL = r.CacheTTL
	return cfg
}

// SourceConfig selects where rating records are read from.
//
// Environment Variables:
//   - RATINGS_SOURCE: csv, duckdb or mongo (default: csv)
//   - RATINGS_PATH: CSV or Parquet file (default: ratings.csv)
//   - RATINGS_QUERY: custom DuckDB query returning user, product, rating
//   - RATINGS_USER_COLUMN / RATINGS_PRODUCT_COLUMN / RATINGS_RATING_COLUMN
//   - RATINGS_LIMIT: keep only the first N valid records (default: 0, no limit)
//   - MONGO_URI / MONGO_DATABASE / MONGO_COLLECTION
type SourceConfig struct {
	Type          string            `koanf:"type" validate:"oneof=csv duckdb mongo"`
	Path          string            `koanf:"path"`
	Query         string            `koanf:"query"`
	UserColumn    string            `koanf:"user_column"`
	ProductColumn string            `koanf:"product_column"`
	RatingColumn  string            `koanf:"rating_column"`
	Limit         int               `koanf:"limit" validate:"gte=0"`
	Mongo         MongoSourceConfig `koanf:"mongo"`
}

// MongoSourceConfig holds MongoDB source settings.
type MongoSourceConfig struct {
	URI            string        `koanf:"uri"`
	Database       string        `koanf:"database"`
	Collection     string        `koanf:"collection"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"gte=0"`
}

// RatingsConfig converts the settings into a ratings.Config.
func (s *SourceConfig) RatingsConfig() ratings.Config {
	return ratings.Config{
		Type:  s.Type,
		Path:  s.Path,
		Query: s.Query,
		Columns: ratings.Columns{
			User:    s.UserColumn,
			Product: s.ProductColumn,
			Rating:  s.RatingColumn,
		},
		Mongo: ratings.MongoConfig{
			URI:            s.Mongo.URI,
			Database:       s.Mongo.Database,
			Collection:     s.Mongo.Collection,
			ConnectTimeout: s.Mongo.ConnectTimeout,
		},
		Limit: s.Limit,
	}
}

// StoreConfig selects where trained models are persisted.
type StoreConfig struct {
	Type string `koanf:"type" validate:"oneof=badger file memory"`
	Path string `koanf:"path"`
	Name string `koanf:"name" validate:"required"`
}

// StorageConfig converts the settings into a storage.Config.
func (s *StoreConfig) StorageConfig() storage.Config {
	return storage.Config{Type: s.Type, Path: s.Path, Name: s.Name}
}

// CacheConfig selects the result cache backend.
type CacheConfig struct {
	Type            string        `koanf:"type" validate:"oneof=none memory redis tiered"`
	TTL             time.Duration `koanf:"ttl" validate:"gte=0"`
	Capacity        int           `koanf:"capacity" validate:"gte=0"`
	CleanupInterval time.Duration `koanf:"cleanup_interval" validate:"gte=0"`
	Redis           RedisConfig   `koanf:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db" validate:"gte=0"`
	Prefix   string        `koanf:"prefix"`
	Timeout  time.Duration `koanf:"timeout" validate:"gte=0"`
}

// BackendConfig converts the settings into a cache.Config.
func (c *CacheConfig) BackendConfig() cache.Config {
	return cache.Config{
		Type:            cache.Type(c.Type),
		TTL:             c.TTL,
		Capacity:        c.Capacity,
		CleanupInterval: c.CleanupInterval,
		Redis: cache.RedisConfig{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Prefix:   c.Redis.Prefix,
			Timeout:  c.Redis.Timeout,
			Breaker:  cache.DefaultBreakerConfig(),
		},
	}
}

// SecurityConfig holds admin authentication, CORS and rate limiting settings.
//
// The admin account protects the retrain endpoint. Either AdminPassword
// (plaintext, hashed at startup) or AdminPasswordHash (bcrypt) may be set.
// When neither is set, the retrain endpoint is disabled.
type SecurityConfig struct {
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"`
	AdminPasswordHash string        `koanf:"admin_password_hash"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gte=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
}

// AdminEnabled reports whether admin credentials are configured.
func (s *SecurityConfig) AdminEnabled() bool {
	return s.AdminUsername != "" && (s.AdminPassword != "" || s.AdminPasswordHash != "")
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// LoggerConfig converts the settings into a logging.Config.
func (l *LoggingConfig) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = l.Level
	cfg.Format = l.Format
	cfg.Caller = l.Caller
	return cfg
}

// Load reads configuration from multiple sources with the following precedence:
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
