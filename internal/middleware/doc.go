// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

/*
Package middleware provides chi-compatible HTTP middleware for the
recommendation API.

Key Components:

  - RequestID: X-Request-ID propagation into the logging context
  - AccessLog: one structured zerolog line per request
  - PrometheusMetrics: request count, latency and in-flight gauge
  - PerformanceMonitor: sliding-window latency percentiles and slow request logging
  - Compression: pooled gzip for clients that accept it

Metrics and performance statistics are labeled with the chi route pattern
(for example "/recommend/{userID}") rather than the raw path, so the label
set stays bounded no matter how many users are queried. Requests that match
no route are labeled "unmatched".

Usage:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
	r.Use(perf.Middleware)
	r.Use(middleware.Compression)
*/
package middleware
