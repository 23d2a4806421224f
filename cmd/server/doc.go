// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

/*
Package main is the entry point for the Productrec server.

Productrec serves product recommendations computed from the ratings of
the most similar users (cosine k-nearest neighbors over the user-product
rating matrix).

# Application Architecture

	RootSupervisor ("productrec")
	├── DataSupervisor ("data-layer")
	│   └── RetrainService (load stored model, scheduled and manual retraining)
	├── MaintenanceSupervisor ("maintenance-layer")
	│   └── PeriodicService ("lockout-cleanup")
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Rating source: CSV, DuckDB or MongoDB
 4. Model store: BadgerDB, JSON files or memory
 5. Result cache: memory, Redis or tiered
 6. Recommendation engine with Prometheus hooks
 7. Admin authentication (bcrypt Basic Auth with lockout)
 8. Chi router with middleware stack
 9. Supervisor tree

The first request can be served as soon as a model is active. When no
stored model exists, the retrain service trains one at startup; until
then /api/v1/health/ready reports 503.

# Configuration

	RATINGS_SOURCE=csv           # csv, duckdb or mongo
	RATINGS_PATH=ratings.csv
	MODEL_STORE=file             # badger, file or memory
	MODEL_STORE_PATH=/data/models
	CACHE_TYPE=memory            # none, memory, redis or tiered
	RECOMMEND_NEIGHBORS=3
	RECOMMEND_TRAIN_INTERVAL=24h # 0 disables scheduled retraining
	ADMIN_USERNAME=operator      # enables POST /api/v1/recommendations/train
	ADMIN_PASSWORD_HASH=<bcrypt>
	HTTP_PORT=5000

See package config for the full list. When a config file is used, changes
to its logging level are applied without a restart.

# Signal Handling

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
in-flight requests for up to HTTP_SHUTDOWN_TIMEOUT, then the cache, model
store and rating source are closed.
*/
package main
