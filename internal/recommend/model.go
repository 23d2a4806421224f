// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package recommend

import (
	"fmt"
	"time"
)

// Model is a matrix and the index fitted on it, produced by one training
// run. Models are immutable and are replaced wholesale on retraining.
type Model struct {
	Matrix    *Matrix
	Index     *Index
	Version   int
	TrainedAt time.Time
	Stats     BuildStats
}

// NewModel fits an index with k neighbors over m.
func NewModel(m *Matrix, k int, stats BuildStats) *Model {
	return &Model{
		Matrix:    m,
		Index:     FitIndex(m, k),
		TrainedAt: time.Now().UTC(),
		Stats:     stats,
	}
}

// TrainModel builds a model directly from rating records.
func TrainModel(records []RatingRecord, k int) *Model {
	m, stats := BuildMatrix(records)
	return NewModel(m, k, stats)
}

// Empty reports whether the model can serve no recommendations.
func (m *Model) Empty() bool {
	return m == nil || m.Matrix.Empty() || m.Index == nil || m.Index.Len() == 0
}

// Recommender returns a Recommender bound to this model.
func (m *Model) Recommender(opts ...RecommenderOption) *Recommender {
	return NewRecommender(m.Matrix, m.Index, opts...)
}

// Snapshot is the persisted form of a Model.
type Snapshot struct {
	Version   int            `json:"version"`
	TrainedAt time.Time      `json:"trained_at"`
	Stats     BuildStats     `json:"stats"`
	Matrix    MatrixSnapshot `json:"matrix"`
	Index     IndexSnapshot  `json:"index"`
}

// Snapshot captures the model for persistence.
func (m *Model) Snapshot() *Snapshot {
	return &Snapshot{
		Version:   m.Version,
		TrainedAt: m.TrainedAt,
		Stats:     m.Stats,
		Matrix:    m.Matrix.Snapshot(),
		Index:     m.Index.Snapshot(),
	}
}

// ModelFromSnapshot reconstructs a model. Malformed snapshots return an
// error wrapping ErrCorruptModel.
func ModelFromSnapshot(s *Snapshot) (*Model, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ErrCorruptModel)
	}
	if s.Version < 0 {
		return nil, fmt.Errorf("%w: negative version %d", ErrCorruptModel, s.Version)
	}

	m, err := MatrixFromSnapshot(s.Matrix)
	if err != nil {
		return nil, err
	}
	ix, err := IndexFromSnapshot(s.Index, m)
	if err != nil {
		return nil, err
	}

	return &Model{
		Matrix:    m,
		Index:     ix,
		Version:   s.Version,
		TrainedAt: s.TrainedAt,
		Stats:     s.Stats,
	}, nil
}
