// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package cache

import (
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/productrec/internal/logging"
	"github.com/tomtom215/productrec/internal/metrics"
)

// BreakerConfig configures the circuit breaker in front of a remote cache.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens
	// the breaker.
	FailureThreshold uint32

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration

	// MaxRequests is the number of probe requests allowed while half-open.
	MaxRequests uint32
}

// DefaultBreakerConfig returns thresholds suited to a cache: a cache
// outage must never slow down recommendations, so the breaker opens fast.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
		MaxRequests:      1,
	}
}

// newBreaker creates a breaker named name. isSuccess classifies errors
// that should not count as failures (a cache miss, for example).
func newBreaker(name string, cfg BreakerConfig, isSuccess func(error) bool) *gobreaker.CircuitBreaker[[]byte] {
	def := DefaultBreakerConfig()
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = def.MaxRequests
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Minute,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: isSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
}

// stateToFloat maps breaker states to the circuit_breaker_state gauge.
func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
