// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto
and exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Rejected requests (counter)
    Labels: endpoint

Recommendation Metrics:
  - recommendations_total: Requests by outcome (counter)
    Labels: outcome (ok, empty_catalog, not_found, error)
  - recommendation_duration_seconds: Engine latency (histogram)
    Labels: cache (hit, miss)

Training Metrics:
  - training_runs_total: Runs by status (counter)
  - training_duration_seconds: Run duration (histogram)
  - training_records: Input, dropped and duplicate record counts (gauge)
  - training_last_success_timestamp: Unix time of the last good run (gauge)
  - model_version, model_users, model_products: Active model shape (gauge)

Cache Metrics:
  - cache_operations_total: Gets and sets by backend and result (counter)
  - cache_entries: Entries per backend (gauge)

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_requests_total: Labels: name, result (counter)
  - circuit_breaker_state_transitions_total: Labels: name, from, to (counter)

# Engine Integration

RecommendHooks adapts the engine's event callbacks:

	engine.SetHooks(metrics.RecommendHooks())

# Example Queries

	# Recommendation p95 latency on cache misses
	histogram_quantile(0.95, rate(recommendation_duration_seconds_bucket{cache="miss"}[5m]))

	# Share of requests for unknown users
	rate(recommendations_total{outcome="not_found"}[5m]) / rate(recommendations_total[5m])
*/
package metrics
