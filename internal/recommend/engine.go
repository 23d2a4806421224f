// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Note: This package has no dependencies on other internal packages.
// Rating sources, model stores and caches plug in through the DataProvider,
// ModelStore and ResultCache interfaces.

// Engine serves recommendations from the active Model and coordinates
// training runs that replace it. It is safe for concurrent use.
type Engine struct {
	// Configuration
	config *Config
	logger zerolog.Logger

	// Active model, swapped atomically on retraining
	model atomic.Pointer[Model]

	// Training state
	trainMu     sync.Mutex
	statusMu    sync.RWMutex
	trainStatus TrainingStatus

	// Metrics
	requestCount  atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
	notFoundCount atomic.Int64
	emptyCount    atomic.Int64
	trainingCount atomic.Int64
	errorCount    atomic.Int64

	// Collaborators
	dataProvider DataProvider
	store        ModelStore
	cache        ResultCache
	hooks        Hooks
}

// Hooks receive engine events. Nil fields are skipped.
type Hooks struct {
	// OnRecommend is called once per Recommend call.
	OnRecommend func(outcome Outcome, latency time.Duration, cacheHit bool)

	// OnTrain is called after every training attempt.
	OnTrain func(duration time.Duration, stats BuildStats, err error)

	// OnModelSwap is called after a new model becomes active.
	OnModelSwap func(m *Model)
}

// NewEngine creates a new recommendation engine with no active model.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// SetDataProvider sets the rating source used for training.
func (e *Engine) SetDataProvider(dp DataProvider) {
	e.dataProvider = dp
}

// SetStore sets the store trained models are persisted to and loaded from.
func (e *Engine) SetStore(s ModelStore) {
	e.store = s
}

// SetCache sets the result cache. A nil cache disables caching.
func (e *Engine) SetCache(c ResultCache) {
	e.cache = c
}

// SetHooks registers event callbacks. It must be called before serving.
func (e *Engine) SetHooks(h Hooks) {
	e.hooks = h
}

// Model returns the active model, or nil if none has been loaded.
func (e *Engine) Model() *Model {
	return e.model.Load()
}

// Ready reports whether a model is active.
func (e *Engine) Ready() bool {
	return e.model.Load() != nil
}

// Swap makes m the active model. Requests already running keep the model
// they started with.
func (e *Engine) Swap(m *Model) {
	if m == nil {
		return
	}
	e.model.Store(m)

	e.statusMu.Lock()
	e.trainStatus.ModelVersion = m.Version
	e.trainStatus.UserCount = m.Matrix.NumUsers()
	e.trainStatus.ProductCount = m.Matrix.NumProducts()
	e.statusMu.Unlock()

	e.logger.Info().
		Int("version", m.Version).
		Int("users", m.Matrix.NumUsers()).
		Int("products", m.Matrix.NumProducts()).
		Int("neighbors", m.Index.K()).
		Msg("model activated")

	if e.hooks.OnModelSwap != nil {
		e.hooks.OnModelSwap(m)
	}
}

// Recommend generates recommendations for a user.
//
// An unknown user returns ErrUserNotFound. When no usable model is active
// the response is empty with OutcomeEmptyCatalog rather than an error.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	if err := ctx.Err(); err != nil {
		e.errorCount.Add(1)
		e.observe(OutcomeError, start, false)
		return nil, err
	}

	req = e.prepareRequest(req)
	logger := e.createRequestLogger(req)
	logger.Debug().Msg("processing recommendation request")

	model := e.model.Load()
	if model.Empty() {
		e.emptyCount.Add(1)
		logger.Debug().Msg("no active model")
		e.observe(OutcomeEmptyCatalog, start, false)
		return e.emptyResponse(req, model, start), nil
	}

	if resp := e.tryGetCachedResponse(ctx, req, model, start, logger); resp != nil {
		e.observe(resp.Outcome, start, true)
		return resp, nil
	}

	rec := model.Recommender(WithExcludeSelf(e.config.Model.ExcludeSelf))
	items, neighbors, err := rec.RecommendScored(req.UserID, req.Count)
	switch {
	case errors.Is(err, ErrUserNotFound):
		e.notFoundCount.Add(1)
		logger.Debug().Msg("user not found")
		e.observe(OutcomeNotFound, start, false)
		return nil, err
	case errors.Is(err, ErrEmptyCatalog):
		e.emptyCount.Add(1)
		e.observe(OutcomeEmptyCatalog, start, false)
		return e.emptyResponse(req, model, start), nil
	case err != nil:
		e.errorCount.Add(1)
		e.observe(OutcomeError, start, false)
		return nil, fmt.Errorf("recommend: %w", err)
	}

	resp := &Response{
		UserID:    req.UserID,
		Items:     items,
		Neighbors: neighbors,
		Outcome:   OutcomeOK,
		Metadata:  e.buildResponseMetadata(req, model, start, false),
	}
	e.cacheResponse(ctx, req, model, resp)

	logger.Debug().
		Int("neighbors", len(neighbors)).
		Int("returned", len(items)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	e.observe(OutcomeOK, start, false)
	return resp, nil
}

// Neighbors returns the nearest users to userID in the active model.
// A k <= 0 uses the model's neighbor count; k is capped at Limits.MaxNeighbors.
func (e *Engine) Neighbors(ctx context.Context, userID string, k int) ([]Neighbor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k > e.config.Limits.MaxNeighbors {
		k = e.config.Limits.MaxNeighbors
	}

	model := e.model.Load()
	if model.Empty() {
		return nil, ErrEmptyCatalog
	}
	return model.Recommender(WithExcludeSelf(e.config.Model.ExcludeSelf)).Neighbors(userID, k)
}

// prepareRequest applies defaults and generates request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = generateRequestID()
	}

	if req.Count <= 0 {
		req.Count = e.config.Limits.DefaultCount
	}
	if req.Count > e.config.Limits.MaxCount {
		req.Count = e.config.Limits.MaxCount
	}

	return req
}

// createRequestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Str("user_id", req.UserID).
		Int("count", req.Count).
		Logger()
}

// tryGetCachedResponse attempts to retrieve a cached response.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) tryGetCachedResponse(ctx context.Context, req Request, model *Model, start time.Time, logger zerolog.Logger) *Response {
	if !e.cachingEnabled() {
		return nil
	}

	data, ok := e.cache.Get(ctx, e.cacheKey(req, model))
	if !ok {
		e.cacheMisses.Add(1)
		return nil
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		logger.Warn().Err(err).Msg("discarding undecodable cache entry")
		e.cacheMisses.Add(1)
		return nil
	}

	e.cacheHits.Add(1)
	resp.Metadata.RequestID = req.RequestID
	resp.Metadata.CacheHit = true
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	resp.Metadata.Timestamp = time.Now()
	logger.Debug().Msg("cache hit")
	return &resp
}

// cacheResponse stores the response in cache if enabled.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) cacheResponse(ctx context.Context, req Request, model *Model, resp *Response) {
	if !e.cachingEnabled() {
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		e.logger.Warn().Err(err).Msg("failed to encode response for cache")
		return
	}
	e.cache.Set(ctx, e.cacheKey(req, model), data, e.config.Cache.TTL)
}

func (e *Engine) cachingEnabled() bool {
	return e.config.Cache.Enabled && e.cache != nil
}

// cacheKey generates a cache key for a request. Keys are scoped to the
// model that produced them, so swapping models invalidates old entries.
//
//nolint:gocritic // hugeParam: req passed by value for simplicity
func (e *Engine) cacheKey(req Request, model *Model) string {
	return fmt.Sprintf("rec:%d:%d:%t:%d:%q",
		model.Version, model.TrainedAt.UnixNano(), e.config.Model.ExcludeSelf, req.Count, req.UserID)
}

// buildResponseMetadata constructs response metadata.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildResponseMetadata(req Request, model *Model, start time.Time, cacheHit bool) ResponseMetadata {
	md := ResponseMetadata{
		RequestID: req.RequestID,
		Count:     req.Count,
		LatencyMS: time.Since(start).Milliseconds(),
		CacheHit:  cacheHit,
		Timestamp: time.Now(),
	}
	if model != nil {
		md.ModelVersion = model.Version
		md.TrainedAt = model.TrainedAt
	}
	return md
}

// emptyResponse returns a successful response with no items.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) emptyResponse(req Request, model *Model, start time.Time) *Response {
	return &Response{
		UserID:   req.UserID,
		Items:    []ScoredProduct{},
		Outcome:  OutcomeEmptyCatalog,
		Metadata: e.buildResponseMetadata(req, model, start, false),
	}
}

func (e *Engine) observe(outcome Outcome, start time.Time, cacheHit bool) {
	if e.hooks.OnRecommend != nil {
		e.hooks.OnRecommend(outcome, time.Since(start), cacheHit)
	}
}

// Train builds a new model from the data provider, persists it when a
// store is configured and makes it active.
// Returns ErrTrainingInProgress immediately if another run is active.
func (e *Engine) Train(ctx context.Context) (*Model, error) {
	if !e.trainMu.TryLock() {
		return nil, ErrTrainingInProgress
	}
	defer e.trainMu.Unlock()

	if e.dataProvider == nil {
		return nil, fmt.Errorf("data provider not set")
	}

	start := time.Now()
	e.initializeTrainingStatus()
	e.logger.Info().Msg("starting model training")

	model, stats, err := e.train(ctx)
	e.finalizeTrainingStatus(start, stats, err)

	if e.hooks.OnTrain != nil {
		e.hooks.OnTrain(time.Since(start), stats, err)
	}
	if err != nil {
		e.errorCount.Add(1)
		e.logger.Error().Err(err).Msg("model training failed")
		return nil, err
	}

	e.trainingCount.Add(1)
	e.logger.Info().
		Int("version", model.Version).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("model training complete")

	return model, nil
}

func (e *Engine) train(ctx context.Context) (*Model, BuildStats, error) {
	trainCtx, cancel := context.WithTimeout(ctx, e.config.Training.Timeout)
	defer cancel()

	records, err := e.dataProvider.LoadRatings(trainCtx)
	if err != nil {
		return nil, BuildStats{}, fmt.Errorf("load ratings: %w", err)
	}

	matrix, stats := BuildMatrix(records)
	e.logger.Info().
		Int("records", stats.Input).
		Int("dropped", stats.Dropped).
		Int("duplicates", stats.Duplicates).
		Int("users", stats.Users).
		Int("products", stats.Products).
		Msg("built rating matrix")

	if valid := stats.Input - stats.Dropped; valid < e.config.Training.MinRecords {
		return nil, stats, fmt.Errorf("%w: %d < %d", ErrInsufficientData, valid, e.config.Training.MinRecords)
	}

	if err := trainCtx.Err(); err != nil {
		return nil, stats, err
	}

	model := NewModel(matrix, e.config.Model.Neighbors, stats)
	version, err := e.nextVersion(trainCtx)
	if err != nil {
		return nil, stats, err
	}
	model.Version = version

	if e.store != nil {
		if err := e.store.Save(trainCtx, model.Snapshot()); err != nil {
			return nil, stats, fmt.Errorf("save model: %w", err)
		}
		if removed, err := e.store.Prune(trainCtx, e.config.Training.RetainVersions); err != nil {
			e.logger.Warn().Err(err).Msg("failed to prune old model versions")
		} else if removed > 0 {
			e.logger.Debug().Int("removed", removed).Msg("pruned old model versions")
		}
	}

	e.Swap(model)
	return model, stats, nil
}

// nextVersion returns one past the highest version known to the engine
// or its store.
func (e *Engine) nextVersion(ctx context.Context) (int, error) {
	latest := 0
	if m := e.model.Load(); m != nil {
		latest = m.Version
	}
	if e.store != nil {
		stored, err := e.store.LatestVersion(ctx)
		if err != nil {
			return 0, fmt.Errorf("latest model version: %w", err)
		}
		if stored > latest {
			latest = stored
		}
	}
	return latest + 1, nil
}

// LoadLatest activates the newest model from the store.
// Returns ErrNoStoredModel if the store is empty and an error wrapping
// ErrCorruptModel if the stored artifact cannot be reconstructed.
func (e *Engine) LoadLatest(ctx context.Context) (*Model, error) {
	if e.store == nil {
		return nil, fmt.Errorf("model store not set")
	}

	snap, err := e.store.LoadLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	model, err := ModelFromSnapshot(snap)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("restore model: %w", err)
	}

	e.statusMu.Lock()
	e.trainStatus.LastTrainedAt = model.TrainedAt
	e.trainStatus.RecordCount = model.Stats.Input
	e.trainStatus.DroppedCount = model.Stats.Dropped
	e.statusMu.Unlock()

	e.Swap(model)
	return model, nil
}

// initializeTrainingStatus prepares the training status.
func (e *Engine) initializeTrainingStatus() {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	e.trainStatus.IsTraining = true
	e.trainStatus.LastError = ""
}

// finalizeTrainingStatus updates the training status after completion.
func (e *Engine) finalizeTrainingStatus(start time.Time, stats BuildStats, err error) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	e.trainStatus.IsTraining = false
	e.trainStatus.LastTrainingDurationMS = time.Since(start).Milliseconds()
	if err != nil {
		e.trainStatus.LastError = err.Error()
		return
	}
	e.trainStatus.LastTrainedAt = time.Now()
	e.trainStatus.RecordCount = stats.Input
	e.trainStatus.DroppedCount = stats.Dropped
}

// SetNextScheduledTraining records when the scheduler will next train.
func (e *Engine) SetNextScheduledTraining(t time.Time) {
	e.statusMu.Lock()
	e.trainStatus.NextScheduledTraining = t
	e.statusMu.Unlock()
}

// GetStatus returns the current training status.
func (e *Engine) GetStatus() TrainingStatus {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()

	return e.trainStatus
}

// GetMetrics returns the current engine metrics.
func (e *Engine) GetMetrics() Metrics {
	return Metrics{
		RequestCount:      e.requestCount.Load(),
		CacheHits:         e.cacheHits.Load(),
		CacheMisses:       e.cacheMisses.Load(),
		NotFoundCount:     e.notFoundCount.Load(),
		EmptyCatalogCount: e.emptyCount.Load(),
		TrainingCount:     e.trainingCount.Load(),
		ErrorCount:        e.errorCount.Load(),
	}
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// generateRequestID generates a unique request ID for tracing.
func generateRequestID() string {
	return "rec-" + uuid.NewString()
}
