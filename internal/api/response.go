// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/productrec/internal/logging"
)

// APIResponse is the envelope returned by every /api/v1 endpoint.
type APIResponse struct {
	// Status is "success" or "error"
	Status string `json:"status"`

	// Data contains the response payload (omitted on error)
	Data interface{} `json:"data,omitempty"`

	// Metadata describes the response itself
	Metadata Metadata `json:"metadata"`

	// Error contains error details (omitted on success)
	Error *APIError `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError represents an error response.
type APIError struct {
	// Code is a machine-readable error code
	Code string `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Details contains additional error details (optional)
	Details interface{} `json:"details,omitempty"`
}

// Error codes for API responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeValidationFailed   = "VALIDATION_ERROR"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeTrainingInProgress = "TRAINING_IN_PROGRESS"
)

// respondJSON writes body as JSON with the given status.
func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess writes a success envelope.
func respondSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}, queryTimeMS int64) {
	respondJSON(w, status, &APIResponse{
		Status: "success",
		Data:   data,
		Metadata: Metadata{
			Timestamp:   time.Now(),
			RequestID:   logging.RequestIDFromContext(r.Context()),
			QueryTimeMS: queryTimeMS,
		},
	})
}

// respondError writes an error envelope. err, when set, is logged but never
// sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Error().
			Str("code", code).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}

	respondJSON(w, status, &APIResponse{
		Status: "error",
		Metadata: Metadata{
			Timestamp: time.Now(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
		Error: &APIError{Code: code, Message: message},
	})
}

// respondAPIError writes a prepared APIError, such as a validation failure.
func respondAPIError(w http.ResponseWriter, r *http.Request, status int, apiErr *APIError) {
	respondJSON(w, status, &APIResponse{
		Status: "error",
		Metadata: Metadata{
			Timestamp: time.Now(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
		Error: apiErr,
	})
}

// sanitizeLogValue strips line breaks so user-influenced values cannot
// forge log lines.
func sanitizeLogValue(s string) string {
	return strings.NewReplacer("\n", "\\n", "\r", "\\r").Replace(s)
}
