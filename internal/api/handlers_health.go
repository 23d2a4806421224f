// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package api

import (
	"net/http"
	"time"
)

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, 0)
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 200 OK once a model is active and 503 before that.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	status := h.engine.GetStatus()
	data := map[string]interface{}{
		"ready":         h.engine.Ready(),
		"model_version": status.ModelVersion,
		"is_training":   status.IsTraining,
	}

	if !h.engine.Ready() {
		respondJSON(w, http.StatusServiceUnavailable, &APIResponse{
			Status:   "error",
			Data:     data,
			Metadata: Metadata{Timestamp: time.Now()},
			Error: &APIError{
				Code:    ErrCodeServiceUnavailable,
				Message: "No model is loaded",
			},
		})
		return
	}

	respondSuccess(w, r, http.StatusOK, data, 0)
}
