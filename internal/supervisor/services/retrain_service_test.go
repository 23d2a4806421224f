// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/productrec/internal/recommend"
)

type fakeEngine struct {
	mu        sync.Mutex
	loadErr   error
	trainErr  error
	loads     int
	trains    int
	nextRun   time.Time
	trainedCh chan struct{}
}

func newFakeEngine(loadErr error) *fakeEngine {
	return &fakeEngine{loadErr: loadErr, trainedCh: make(chan struct{}, 16)}
}

func (f *fakeEngine) LoadLatest(context.Context) (*recommend.Model, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return &recommend.Model{Version: 1, TrainedAt: time.Now()}, nil
}

func (f *fakeEngine) Train(context.Context) (*recommend.Model, error) {
	f.mu.Lock()
	f.trains++
	version := f.trains + 1
	err := f.trainErr
	f.mu.Unlock()

	f.trainedCh <- struct{}{}
	if err != nil {
		return nil, err
	}
	return &recommend.Model{Version: version, TrainedAt: time.Now()}, nil
}

func (f *fakeEngine) SetNextScheduledTraining(t time.Time) {
	f.mu.Lock()
	f.nextRun = t
	f.mu.Unlock()
}

func (f *fakeEngine) trainCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.trains
}

func waitTrained(t *testing.T, f *fakeEngine) {
	t.Helper()
	select {
	case <-f.trainedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("training did not run")
	}
}

func TestRetrainService_Interface(t *testing.T) {
	var _ suture.Service = (*RetrainService)(nil)
}

func TestRetrainService_Startup(t *testing.T) {
	tests := []struct {
		name       string
		loadErr    error
		onStartup  bool
		wantTrains int
	}{
		{"stored model, no startup training", nil, false, 0},
		{"stored model, startup training", nil, true, 1},
		{"no stored model bootstraps", recommend.ErrNoStoredModel, false, 1},
		{"corrupt stored model retrains", recommend.ErrCorruptModel, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newFakeEngine(tt.loadErr)
			svc := NewRetrainService(engine, RetrainConfig{TrainOnStartup: tt.onStartup})

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- svc.Serve(ctx) }()

			if tt.wantTrains > 0 {
				waitTrained(t, engine)
			} else {
				time.Sleep(50 * time.Millisecond)
			}
			cancel()

			if err := <-done; !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() = %v, want context.Canceled", err)
			}
			if got := engine.trainCount(); got != tt.wantTrains {
				t.Errorf("trains = %d, want %d", got, tt.wantTrains)
			}
			if engine.loads != 1 {
				t.Errorf("loads = %d, want 1", engine.loads)
			}
		})
	}
}

func TestRetrainService_TriggerTraining(t *testing.T) {
	engine := newFakeEngine(nil)
	svc := NewRetrainService(engine, RetrainConfig{})

	if !svc.TriggerTraining("manual") {
		t.Fatal("first trigger should be queued")
	}
	if svc.TriggerTraining("manual") {
		t.Error("second trigger should be rejected while one is queued")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Serve(ctx) //nolint:errcheck // canceled below

	waitTrained(t, engine)
	if got := engine.trainCount(); got != 1 {
		t.Errorf("trains = %d, want 1", got)
	}
}

func TestRetrainService_Scheduled(t *testing.T) {
	engine := newFakeEngine(nil)
	engine.trainErr = errors.New("ratings source unavailable")
	svc := NewRetrainService(engine, RetrainConfig{Interval: 20 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	// Failed runs keep the service alive.
	waitTrained(t, engine)
	waitTrained(t, engine)
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.nextRun.IsZero() {
		t.Error("next scheduled training was not recorded")
	}
}

func TestRetrainService_NegativeIntervalDisablesSchedule(t *testing.T) {
	svc := NewRetrainService(newFakeEngine(nil), RetrainConfig{Interval: -time.Second})
	if svc.config.Interval != 0 {
		t.Errorf("Interval = %v, want 0", svc.config.Interval)
	}
	if svc.String() != "retrain-service" {
		t.Errorf("String() = %q", svc.String())
	}
}
