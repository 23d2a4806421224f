// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package metrics

import (
	"time"

	"github.com/tomtom215/productrec/internal/recommend"
)

// RecommendHooks returns engine hooks that publish recommendation,
// training and model-swap events to Prometheus.
func RecommendHooks() recommend.Hooks {
	return recommend.Hooks{
		OnRecommend: func(outcome recommend.Outcome, latency time.Duration, cacheHit bool) {
			RecordRecommendation(string(outcome), latency, cacheHit)
		},
		OnTrain: func(duration time.Duration, stats recommend.BuildStats, err error) {
			RecordTraining(duration, TrainingResult{
				Input:      stats.Input,
				Dropped:    stats.Dropped,
				Duplicates: stats.Duplicates,
			}, err)
		},
		OnModelSwap: func(m *recommend.Model) {
			if m == nil || m.Matrix == nil {
				return
			}
			SetActiveModel(m.Version, m.Matrix.NumUsers(), m.Matrix.NumProducts())
		},
	}
}
