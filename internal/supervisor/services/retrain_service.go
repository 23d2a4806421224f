// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package services

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/productrec/internal/logging"
	"github.com/tomtom215/productrec/internal/recommend"
)

// TrainingEngine is the subset of *recommend.Engine the retrain service drives.
type TrainingEngine interface {
	LoadLatest(ctx context.Context) (*recommend.Model, error)
	Train(ctx context.Context) (*recommend.Model, error)
	SetNextScheduledTraining(t time.Time)
}

// RetrainConfig controls when the retrain service builds a new model.
type RetrainConfig struct {
	// TrainOnStartup trains once after the stored model is loaded.
	TrainOnStartup bool

	// Interval between scheduled runs. Zero disables scheduled retraining.
	Interval time.Duration
}

// RetrainService loads the newest stored model at startup and rebuilds
// the model on a schedule or on demand.
//
// A run that fails is logged and the previous model stays active. The
// service itself only returns when its context is canceled, so a bad
// ratings source never causes a restart loop.
type RetrainService struct {
	engine  TrainingEngine
	config  RetrainConfig
	trigger chan string
	name    string
}

// NewRetrainService creates the service.
func NewRetrainService(engine TrainingEngine, config RetrainConfig) *RetrainService {
	if config.Interval < 0 {
		config.Interval = 0
	}
	return &RetrainService{
		engine:  engine,
		config:  config,
		trigger: make(chan string, 1),
		name:    "retrain-service",
	}
}

// TriggerTraining queues a training run. It returns false when a run is
// already queued.
func (s *RetrainService) TriggerTraining(reason string) bool {
	select {
	case s.trigger <- reason:
		return true
	default:
		return false
	}
}

// Serve implements suture.Service.
func (s *RetrainService) Serve(ctx context.Context) error {
	loaded := s.loadStored(ctx)
	if s.config.TrainOnStartup || !loaded {
		reason := "startup"
		if !loaded {
			reason = "bootstrap"
		}
		s.run(ctx, reason)
	}

	var tick <-chan time.Time
	if s.config.Interval > 0 {
		ticker := time.NewTicker(s.config.Interval)
		defer ticker.Stop()
		tick = ticker.C
		s.engine.SetNextScheduledTraining(time.Now().Add(s.config.Interval))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			s.run(ctx, "scheduled")
			s.engine.SetNextScheduledTraining(time.Now().Add(s.config.Interval))
		case reason := <-s.trigger:
			s.run(ctx, reason)
		}
	}
}

// loadStored activates the newest persisted model and reports whether
// one was loaded.
func (s *RetrainService) loadStored(ctx context.Context) bool {
	model, err := s.engine.LoadLatest(ctx)
	switch {
	case err == nil:
		logging.Info().
			Int("version", model.Version).
			Time("trained_at", model.TrainedAt).
			Msg("Loaded stored model")
		return true
	case errors.Is(err, recommend.ErrNoStoredModel):
		logging.Info().Msg("No stored model found, training a new one")
	default:
		logging.Warn().Err(err).Msg("Failed to load stored model, training a new one")
	}
	return false
}

func (s *RetrainService) run(ctx context.Context, reason string) {
	ctx = logging.ContextWithRunID(ctx, logging.GenerateRunID())
	logger := logging.Ctx(ctx)

	logger.Info().Str("reason", reason).Msg("Model training started")
	start := time.Now()

	model, err := s.engine.Train(ctx)
	switch {
	case errors.Is(err, recommend.ErrTrainingInProgress):
		logger.Info().Str("reason", reason).Msg("Model training skipped, another run is active")
	case err != nil:
		logger.Error().Err(err).Str("reason", reason).Msg("Model training failed, keeping previous model")
	default:
		logger.Info().
			Str("reason", reason).
			Int("version", model.Version).
			Dur("duration", time.Since(start)).
			Msg("Model training finished")
	}
}

// String implements fmt.Stringer for logging.
func (s *RetrainService) String() string {
	return s.name
}
