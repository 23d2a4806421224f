// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package recommend

import (
	"context"
	"time"
)

// Outcome tags how a recommendation request was resolved.
type Outcome string

const (
	// OutcomeOK means the model produced a (possibly empty) ranking.
	OutcomeOK Outcome = "ok"

	// OutcomeEmptyCatalog means no model, or an empty one, was active.
	OutcomeEmptyCatalog Outcome = "empty_catalog"

	// OutcomeNotFound means the user has no row in the active model.
	OutcomeNotFound Outcome = "not_found"

	// OutcomeError means the request failed for an internal reason.
	OutcomeError Outcome = "error"
)

// Request represents a recommendation request.
type Request struct {
	// UserID is the user to generate recommendations for.
	UserID string `json:"user_id" validate:"required,max=256"`

	// Count is the number of recommendations to return.
	// Defaults to Config.Limits.DefaultCount if zero or negative.
	Count int `json:"count,omitempty" validate:"omitempty,min=0,max=1000"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// Response represents a recommendation response.
type Response struct {
	// UserID is the user the recommendations are for.
	UserID string `json:"user_id"`

	// Items is the ordered list of recommended products, best first.
	Items []ScoredProduct `json:"items"`

	// Neighbors is the neighbor set the scores were aggregated from.
	Neighbors []Neighbor `json:"neighbors,omitempty"`

	// Outcome tags how the request was resolved.
	Outcome Outcome `json:"outcome"`

	// Metadata contains timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ProductIDs returns the recommended product IDs in rank order.
func (r *Response) ProductIDs() []string {
	ids := make([]string, len(r.Items))
	for i, it := range r.Items {
		ids[i] = it.ProductID
	}
	return ids
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	// RequestID is the unique request identifier.
	RequestID string `json:"request_id"`

	// Count is the effective number of items requested.
	Count int `json:"count"`

	// LatencyMS is the total recommendation latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// CacheHit indicates whether the result was served from cache.
	CacheHit bool `json:"cache_hit"`

	// ModelVersion is the version of the model used.
	ModelVersion int `json:"model_version"`

	// TrainedAt is when the model was trained.
	TrainedAt time.Time `json:"trained_at"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`
}

// DataProvider supplies rating records for training.
// Implementations live in the ratings package.
type DataProvider interface {
	// LoadRatings returns every rating record available for training.
	LoadRatings(ctx context.Context) ([]RatingRecord, error)
}

// ModelStore persists trained models.
// Implementations live in the storage package.
type ModelStore interface {
	// Save persists a snapshot under its version.
	Save(ctx context.Context, snap *Snapshot) error

	// LoadLatest returns the newest snapshot, or ErrNoStoredModel.
	LoadLatest(ctx context.Context) (*Snapshot, error)

	// LatestVersion returns the newest stored version, or 0 if none.
	LatestVersion(ctx context.Context) (int, error)

	// Prune removes all but the newest keep versions.
	Prune(ctx context.Context, keep int) (int, error)
}

// ResultCache stores encoded responses keyed by request shape and model version.
// Implementations live in the cache package.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// TrainingStatus represents the current training state.
type TrainingStatus struct {
	// IsTraining indicates whether training is currently in progress.
	IsTraining bool `json:"is_training"`

	// LastTrainedAt is when training last completed.
	LastTrainedAt time.Time `json:"last_trained_at"`

	// LastTrainingDurationMS is how long the last training took.
	LastTrainingDurationMS int64 `json:"last_training_duration_ms"`

	// LastError contains the last training error, if any.
	LastError string `json:"last_error,omitempty"`

	// RecordCount is the number of records returned by the data provider.
	RecordCount int `json:"record_count"`

	// DroppedCount is the number of records rejected while building the matrix.
	DroppedCount int `json:"dropped_count"`

	// ProductCount is the number of distinct products.
	ProductCount int `json:"product_count"`

	// UserCount is the number of distinct users.
	UserCount int `json:"user_count"`

	// ModelVersion is the active model version.
	ModelVersion int `json:"model_version"`

	// NextScheduledTraining is when the next training is scheduled.
	NextScheduledTraining time.Time `json:"next_scheduled_training,omitempty"`
}

// Metrics contains engine counters for observability.
type Metrics struct {
	// RequestCount is the total number of recommendation requests.
	RequestCount int64 `json:"request_count"`

	// CacheHits is the number of cache hits.
	CacheHits int64 `json:"cache_hits"`

	// CacheMisses is the number of cache misses.
	CacheMisses int64 `json:"cache_misses"`

	// NotFoundCount is the number of requests for unknown users.
	NotFoundCount int64 `json:"not_found_count"`

	// EmptyCatalogCount is the number of requests served with no active model.
	EmptyCatalogCount int64 `json:"empty_catalog_count"`

	// TrainingCount is the number of training runs completed.
	TrainingCount int64 `json:"training_count"`

	// ErrorCount is the total number of errors.
	ErrorCount int64 `json:"error_count"`
}
