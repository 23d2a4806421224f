// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package services

import (
	"context"
	"time"
)

// PeriodicService calls fn every interval until its context is canceled.
//
//	svc := services.NewPeriodicService("lockout-cleanup", time.Hour, func(context.Context) {
//	    authMW.CleanupLockouts(time.Hour)
//	})
//	tree.AddMaintenanceService(svc)
type PeriodicService struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context)
}

// NewPeriodicService creates the service. A non-positive interval falls
// back to one minute.
func NewPeriodicService(name string, interval time.Duration, fn func(ctx context.Context)) *PeriodicService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PeriodicService{name: name, interval: interval, fn: fn}
}

// Serve implements suture.Service.
func (p *PeriodicService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.fn(ctx)
		}
	}
}

// String implements fmt.Stringer for logging.
func (p *PeriodicService) String() string {
	return p.name
}
