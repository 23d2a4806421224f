// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for:
// - API endpoint latency and throughput
// - Recommendation outcomes and latency
// - Model training runs and the active model
// - Result cache efficiency
// - Circuit breakers guarding remote dependencies

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of requests rejected by rate limiting",
		},
		[]string{"endpoint"},
	)

	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"}, // "ok", "empty_catalog", "not_found", "error"
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Time to compute or fetch a recommendation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"cache"}, // "hit", "miss"
	)

	// Training Metrics
	TrainingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "training_runs_total",
			Help: "Total number of model training runs by status",
		},
		[]string{"status"}, // "success", "failure"
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "training_duration_seconds",
			Help:    "Duration of model training runs",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	TrainingRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "training_records",
			Help: "Rating records seen by the last training run",
		},
		[]string{"kind"}, // "input", "dropped", "duplicates"
	)

	TrainingLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "training_last_success_timestamp",
			Help: "Unix timestamp of the last successful training run",
		},
	)

	// Active Model Metrics
	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_version",
			Help: "Version of the model currently serving requests",
		},
	)

	ModelUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_users",
			Help: "Number of users in the active model",
		},
	)

	ModelProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_products",
			Help: "Number of products in the active model",
		},
	)

	// Cache Metrics
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Result cache operations by backend and result",
		},
		[]string{"backend", "operation", "result"},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"backend"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests through circuit breakers by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts a rejected request.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordRecommendation records the outcome and latency of one request.
func RecordRecommendation(outcome string, duration time.Duration, cacheHit bool) {
	RecommendationsTotal.WithLabelValues(outcome).Inc()
	cache := "miss"
	if cacheHit {
		cache = "hit"
	}
	RecommendationDuration.WithLabelValues(cache).Observe(duration.Seconds())
}

// TrainingResult summarizes a training run for RecordTraining.
type TrainingResult struct {
	Input      int
	Dropped    int
	Duplicates int
}

// RecordTraining records a finished training run.
func RecordTraining(duration time.Duration, result TrainingResult, err error) {
	TrainingDuration.Observe(duration.Seconds())
	if err != nil {
		TrainingRunsTotal.WithLabelValues("failure").Inc()
		return
	}

	TrainingRunsTotal.WithLabelValues("success").Inc()
	TrainingRecords.WithLabelValues("input").Set(float64(result.Input))
	TrainingRecords.WithLabelValues("dropped").Set(float64(result.Dropped))
	TrainingRecords.WithLabelValues("duplicates").Set(float64(result.Duplicates))
	TrainingLastSuccess.Set(float64(time.Now().Unix()))
}

// SetActiveModel publishes the shape of the model now serving requests.
func SetActiveModel(version, users, products int) {
	ModelVersion.Set(float64(version))
	ModelUsers.Set(float64(users))
	ModelProducts.Set(float64(products))
}

// RecordCacheOperation counts a cache get or set.
func RecordCacheOperation(backend, operation, result string) {
	CacheOperations.WithLabelValues(backend, operation, result).Inc()
}

// SetCacheEntries publishes the entry count of a cache backend.
func SetCacheEntries(backend string, n int) {
	CacheEntries.WithLabelValues(backend).Set(float64(n))
}
