// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package api

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/productrec/internal/middleware"
	"github.com/tomtom215/productrec/internal/recommend"
)

// requestTimeout bounds the engine work done for one request.
const requestTimeout = 10 * time.Second

// Trainer schedules a model retrain outside the request that asked for it.
type Trainer interface {
	// TriggerTraining queues a retrain and reports whether it was accepted.
	// It returns false when a retrain is already queued.
	TriggerTraining(reason string) bool
}

// Handler serves the recommendation, health and admin endpoints.
type Handler struct {
	engine       *recommend.Engine
	trainer      Trainer
	perf         *middleware.PerformanceMonitor
	trainLimiter *rate.Limiter
	startTime    time.Time
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithTrainer enables POST /api/v1/recommendations/train.
func WithTrainer(t Trainer) HandlerOption {
	return func(h *Handler) {
		h.trainer = t
	}
}

// WithPerformanceMonitor exposes latency statistics on the admin endpoint.
func WithPerformanceMonitor(pm *middleware.PerformanceMonitor) HandlerOption {
	return func(h *Handler) {
		h.perf = pm
	}
}

// WithManualTrainInterval spaces accepted manual retrains at least interval
// apart across all clients. Zero disables the throttle.
func WithManualTrainInterval(interval time.Duration) HandlerOption {
	return func(h *Handler) {
		if interval <= 0 {
			h.trainLimiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		h.trainLimiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// NewHandler creates a handler serving engine.
func NewHandler(engine *recommend.Engine, opts ...HandlerOption) *Handler {
	h := &Handler{
		engine:       engine,
		trainLimiter: rate.NewLimiter(rate.Inf, 1),
		startTime:    time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
