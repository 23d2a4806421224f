// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/productrec/internal/logging"
	"github.com/tomtom215/productrec/internal/recommend"
	"github.com/tomtom215/productrec/internal/validation"
)

// recommendQuery is the validated input of the recommendation endpoints.
type recommendQuery struct {
	UserID string `validate:"required,entityid"`
	Count  int    `validate:"gte=0"`
}

// neighborsQuery is the validated input of the neighbors endpoint.
type neighborsQuery struct {
	UserID string `validate:"required,entityid"`
	K      int    `validate:"gte=0"`
}

// parseIntParam reads an optional integer query parameter. A missing value
// yields 0, which the engine replaces with its default.
func parseIntParam(r *http.Request, key string) (int, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return n, nil
}

// parseRecommendQuery extracts and validates userID and count.
func parseRecommendQuery(r *http.Request) (recommendQuery, *APIError) {
	count, err := parseIntParam(r, "count")
	if err != nil {
		return recommendQuery{}, &APIError{Code: ErrCodeBadRequest, Message: err.Error()}
	}
	q := recommendQuery{UserID: chi.URLParam(r, "userID"), Count: count}
	if verr := validation.ValidateStruct(&q); verr != nil {
		return q, toAPIError(verr)
	}
	return q, nil
}

func toAPIError(verr *validation.RequestValidationError) *APIError {
	apiErr := verr.ToAPIError()
	return &APIError{Code: apiErr.Code, Message: apiErr.Message, Details: apiErr.Details}
}

// recommend runs the engine with the request's ID and a bounded deadline.
func (h *Handler) recommend(r *http.Request, q recommendQuery) (*recommend.Response, error) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	return h.engine.Recommend(ctx, recommend.Request{
		UserID:    q.UserID,
		Count:     q.Count,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
}

// legacyRecommendation is the body of GET /recommend/{userID}.
type legacyRecommendation struct {
	UserID          string   `json:"user_id"`
	Recommendations []string `json:"recommendations"`
}

// legacyError is the error body of GET /recommend/{userID}.
type legacyError struct {
	Error string `json:"error"`
}

// Recommend handles GET /recommend/{userID}?count=N
// Returns the recommended product IDs in the compact form
// {"user_id": ..., "recommendations": [...]}.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	q, apiErr := parseRecommendQuery(r)
	if apiErr != nil {
		respondJSON(w, http.StatusBadRequest, legacyError{Error: apiErr.Message})
		return
	}

	resp, err := h.recommend(r, q)
	switch {
	case errors.Is(err, recommend.ErrUserNotFound):
		respondJSON(w, http.StatusNotFound, legacyError{Error: "User not found"})
		return
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).Str("user_id", q.UserID).Msg("Recommendation failed")
		respondJSON(w, http.StatusInternalServerError, legacyError{Error: "Internal server error"})
		return
	}

	respondJSON(w, http.StatusOK, legacyRecommendation{
		UserID:          resp.UserID,
		Recommendations: resp.ProductIDs(),
	})
}

// GetRecommendations handles GET /api/v1/recommendations/user/{userID}?count=N
// Returns scored recommendations, the neighbor set and response metadata.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	q, apiErr := parseRecommendQuery(r)
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	resp, err := h.recommend(r, q)
	switch {
	case errors.Is(err, recommend.ErrUserNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeUserNotFound, "User not found", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to generate recommendations", err)
		return
	}

	respondSuccess(w, r, http.StatusOK, resp, resp.Metadata.LatencyMS)
}

// GetNeighbors handles GET /api/v1/recommendations/user/{userID}/neighbors?k=N
// Returns the nearest users and their cosine distances.
func (h *Handler) GetNeighbors(w http.ResponseWriter, r *http.Request) {
	k, err := parseIntParam(r, "k")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	q := neighborsQuery{UserID: chi.URLParam(r, "userID"), K: k}
	if verr := validation.ValidateStruct(&q); verr != nil {
		respondAPIError(w, r, http.StatusBadRequest, toAPIError(verr))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	neighbors, err := h.engine.Neighbors(ctx, q.UserID, q.K)
	switch {
	case errors.Is(err, recommend.ErrUserNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeUserNotFound, "User not found", nil)
		return
	case errors.Is(err, recommend.ErrEmptyCatalog):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "No model is loaded", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to find neighbors", err)
		return
	}

	out := make([]neighborView, len(neighbors))
	for i, n := range neighbors {
		out[i] = neighborView{UserID: n.UserID, Distance: n.Distance, Similarity: 1 - n.Distance}
	}

	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"user_id":   q.UserID,
		"neighbors": out,
		"count":     len(out),
	}, 0)
}

// neighborView reports a neighbor with its cosine similarity alongside
// the distance.
type neighborView struct {
	UserID     string  `json:"user_id"`
	Distance   float64 `json:"distance"`
	Similarity float64 `json:"similarity"`
}

// GetRecommendationStatus handles GET /api/v1/recommendations/status
// Returns the training status, the active model and serving counters.
func (h *Handler) GetRecommendationStatus(w http.ResponseWriter, r *http.Request) {
	status := h.engine.GetStatus()
	data := map[string]interface{}{
		"ready":    h.engine.Ready(),
		"training": status,
		"metrics":  h.engine.GetMetrics(),
	}
	if m := h.engine.Model(); m != nil {
		data["model"] = map[string]interface{}{
			"version":    m.Version,
			"trained_at": m.TrainedAt,
			"users":      m.Matrix.NumUsers(),
			"products":   m.Matrix.NumProducts(),
			"neighbors":  m.Index.K(),
		}
	}

	respondSuccess(w, r, http.StatusOK, data, 0)
}

// GetRecommendationConfig handles GET /api/v1/recommendations/config
// Returns the engine configuration.
func (h *Handler) GetRecommendationConfig(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, h.engine.GetConfig(), 0)
}

// TriggerTraining handles POST /api/v1/recommendations/train
// Queues a model retrain (admin only).
func (h *Handler) TriggerTraining(w http.ResponseWriter, r *http.Request) {
	if h.trainer == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Training is not available", nil)
		return
	}

	if h.engine.GetStatus().IsTraining {
		respondError(w, r, http.StatusConflict, ErrCodeTrainingInProgress, "Training is already in progress", nil)
		return
	}

	reservation := h.trainLimiter.Reserve()
	if delay := reservation.Delay(); delay > 0 {
		reservation.Cancel()
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
		respondError(w, r, http.StatusTooManyRequests, ErrCodeTooManyRequests, "Training was triggered recently, try again later", nil)
		return
	}

	if !h.trainer.TriggerTraining("manual") {
		reservation.Cancel()
		respondError(w, r, http.StatusConflict, ErrCodeTrainingInProgress, "Training is already queued", nil)
		return
	}

	logging.Ctx(r.Context()).Info().Msg("Manual training triggered")

	respondSuccess(w, r, http.StatusAccepted, map[string]string{
		"message": "Training started",
	}, 0)
}
