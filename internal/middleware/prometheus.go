// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/productrec/internal/metrics"
)

// PrometheusMetrics records request count, latency and in-flight requests.
// Requests are labeled by route pattern so user IDs never become label values.
func PrometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		metrics.RecordAPIRequest(
			r.Method,
			routeLabel(r),
			strconv.Itoa(rec.statusCode),
			time.Since(start),
		)
	})
}
