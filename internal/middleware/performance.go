// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/productrec/internal/logging"
)

// DefaultSlowRequestThreshold is the latency above which a request is logged.
const DefaultSlowRequestThreshold = time.Second

// RequestMetrics is one observed request.
type RequestMetrics struct {
	Endpoint   string    `json:"endpoint"`
	Method     string    `json:"method"`
	DurationMS int64     `json:"duration_ms"`
	StatusCode int       `json:"status_code"`
	Timestamp  time.Time `json:"timestamp"`
}

// EndpointStats contains aggregated latency statistics for an endpoint
type EndpointStats struct {
	Endpoint     string  `json:"endpoint"`
	RequestCount int64   `json:"request_count"`
	ErrorCount   int64   `json:"error_count"`
	AvgDuration  float64 `json:"avg_duration_ms"`
	P50Duration  int64   `json:"p50_duration_ms"`
	P95Duration  int64   `json:"p95_duration_ms"`
	P99Duration  int64   `json:"p99_duration_ms"`
	MinDuration  int64   `json:"min_duration_ms"`
	MaxDuration  int64   `json:"max_duration_ms"`
}

// PerformanceMonitor keeps a sliding window of recent requests and reports
// per-endpoint latency percentiles over it.
type PerformanceMonitor struct {
	mu            sync.RWMutex
	metrics       []RequestMetrics
	maxMetrics    int
	slowThreshold time.Duration
}

// NewPerformanceMonitor creates a monitor that remembers the last maxMetrics
// requests. A non-positive slowThreshold uses DefaultSlowRequestThreshold.
func NewPerformanceMonitor(maxMetrics int, slowThreshold time.Duration) *PerformanceMonitor {
	if maxMetrics <= 0 {
		maxMetrics = 1000
	}
	if slowThreshold <= 0 {
		slowThreshold = DefaultSlowRequestThreshold
	}
	return &PerformanceMonitor{
		metrics:       make([]RequestMetrics, 0, maxMetrics),
		maxMetrics:    maxMetrics,
		slowThreshold: slowThreshold,
	}
}

// RecordRequest adds a request to the window, evicting the oldest.
func (pm *PerformanceMonitor) RecordRequest(metric *RequestMetrics) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.metrics = append(pm.metrics, *metric)
	if len(pm.metrics) > pm.maxMetrics {
		pm.metrics = pm.metrics[1:]
	}
}

// GetStats returns statistics per "METHOD endpoint", busiest first.
func (pm *PerformanceMonitor) GetStats() []EndpointStats {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	durations := make(map[string][]int64)
	errors := make(map[string]int64)
	for _, m := range pm.metrics {
		key := m.Method + " " + m.Endpoint
		durations[key] = append(durations[key], m.DurationMS)
		if m.StatusCode >= http.StatusInternalServerError {
			errors[key]++
		}
	}

	stats := make([]EndpointStats, 0, len(durations))
	for endpoint, values := range durations {
		sorted := make([]int64, len(values))
		copy(sorted, values)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, d := range sorted {
			sum += d
		}

		stats = append(stats, EndpointStats{
			Endpoint:     endpoint,
			RequestCount: int64(len(sorted)),
			ErrorCount:   errors[endpoint],
			AvgDuration:  float64(sum) / float64(len(sorted)),
			P50Duration:  percentile(sorted, 0.50),
			P95Duration:  percentile(sorted, 0.95),
			P99Duration:  percentile(sorted, 0.99),
			MinDuration:  sorted[0],
			MaxDuration:  sorted[len(sorted)-1],
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].RequestCount != stats[j].RequestCount {
			return stats[i].RequestCount > stats[j].RequestCount
		}
		return stats[i].Endpoint < stats[j].Endpoint
	})

	return stats
}

// GetRecentMetrics returns the most recent n requests, oldest first.
func (pm *PerformanceMonitor) GetRecentMetrics(n int) []RequestMetrics {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	n = max(0, min(n, len(pm.metrics)))
	recent := make([]RequestMetrics, n)
	copy(recent, pm.metrics[len(pm.metrics)-n:])
	return recent
}

// Middleware records every request and logs those slower than the
// configured threshold.
func (pm *PerformanceMonitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		endpoint := routeLabel(r)
		pm.RecordRequest(&RequestMetrics{
			Endpoint:   endpoint,
			Method:     r.Method,
			DurationMS: elapsed.Milliseconds(),
			StatusCode: rec.statusCode,
			Timestamp:  start,
		})

		if elapsed > pm.slowThreshold {
			logging.Ctx(r.Context()).Warn().
				Str("method", r.Method).
				Str("endpoint", endpoint).
				Int64("duration_ms", elapsed.Milliseconds()).
				Dur("threshold", pm.slowThreshold).
				Msg("Slow request detected")
		}
	})
}

// percentile picks the nearest-rank value from a sorted slice
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	index := int(float64(len(sorted)-1) * p)
	return sorted[index]
}
