// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package api

import (
	"net/http"
)

// defaultRecentRequests is how many raw requests the performance endpoint returns.
const defaultRecentRequests = 20

// GetPerformance handles GET /api/v1/admin/performance?recent=N
// Returns per-endpoint latency percentiles over the recent request window.
func (h *Handler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	if h.perf == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Performance monitoring is disabled", nil)
		return
	}

	recent, err := parseIntParam(r, "recent")
	if err != nil || recent < 0 {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "recent must be a non-negative integer", nil)
		return
	}
	if recent == 0 {
		recent = defaultRecentRequests
	}

	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"endpoints": h.perf.GetStats(),
		"recent":    h.perf.GetRecentMetrics(recent),
	}, 0)
}
