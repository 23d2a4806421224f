// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

/*
Package config provides centralized configuration management for Productrec.

Configuration is loaded with Koanf v2 in three layers, each overriding the
previous one:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml,
    /etc/productrec/config.yaml or /etc/productrec/config.yml
 3. Environment variables, through an explicit name mapping

Unmapped environment variables are ignored.

# Environment Variables

HTTP Server:
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 5000)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - ENVIRONMENT: development, staging or production (default: development)

Recommendation Engine:
  - RECOMMEND_NEIGHBORS: users consulted per request (default: 3)
  - RECOMMEND_EXCLUDE_SELF: exclude the querying user (default: false)
  - RECOMMEND_DEFAULT_COUNT / RECOMMEND_MAX_COUNT (default: 5 / 100)
  - RECOMMEND_MAX_NEIGHBORS: cap for the neighbors endpoint (default: 50)
  - RECOMMEND_MIN_RECORDS: valid records required to train (default: 1)
  - RECOMMEND_TRAIN_INTERVAL: periodic retraining, 0 disables (default: 0)
  - RECOMMEND_TRAIN_ON_STARTUP (default: false)
  - RECOMMEND_TRAIN_TIMEOUT (default: 10m)
  - RECOMMEND_MANUAL_TRAIN_INTERVAL: spacing of manual retrains (default: 1m)
  - RECOMMEND_RETAIN_VERSIONS: persisted versions kept (default: 3)
  - RECOMMEND_CACHE_TTL: result reuse window, 0 disables (default: 5m)

Rating Source:
  - RATINGS_SOURCE: csv, duckdb or mongo (default: csv)
  - RATINGS_PATH, RATINGS_QUERY, RATINGS_LIMIT
  - RATINGS_USER_COLUMN, RATINGS_PRODUCT_COLUMN, RATINGS_RATING_COLUMN
    (default: UserId, ProductId, Rating)
  - MONGO_URI, MONGO_DATABASE, MONGO_COLLECTION, MONGO_CONNECT_TIMEOUT

Model Store:
  - MODEL_STORE: badger, file or memory (default: file)
  - MODEL_STORE_PATH (default: /data/models)
  - MODEL_NAME (default: knn)

Result Cache:
  - CACHE_TYPE: none, memory, redis or tiered (default: memory)
  - CACHE_TTL, CACHE_CAPACITY, CACHE_CLEANUP_INTERVAL
  - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB, REDIS_PREFIX, REDIS_TIMEOUT

Security:
  - ADMIN_USERNAME with ADMIN_PASSWORD or ADMIN_PASSWORD_HASH (bcrypt)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - CORS_ORIGINS, TRUSTED_PROXIES: comma-separated lists

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: include file:line (default: false)

# Validation

Validate runs go-playground/validator struct tags first and then checks
that span fields: source settings for the selected type, store paths,
Redis addresses, admin credential completeness, wildcard CORS in
production and rate limit bounds. In production a plaintext
ADMIN_PASSWORD must satisfy DefaultPasswordPolicy.

# Conversions

Each section converts into the configuration type of the package it
drives: RecommendConfig.EngineConfig, SourceConfig.RatingsConfig,
StoreConfig.StorageConfig, CacheConfig.BackendConfig and
LoggingConfig.LoggerConfig.
*/
package config
