// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

// Package recommend implements user-based nearest-neighbor product
// recommendations.
//
// # Pipeline
//
// Rating records are pivoted into a dense user × product Matrix
// (BuildMatrix). An Index over the matrix rows answers k-nearest-neighbor
// queries under cosine distance (FitIndex). A Recommender averages the
// ratings of a user's neighbors per product, ranks the products by that
// mean and removes everything the user has already rated.
//
//	m, stats := recommend.BuildMatrix(records)
//	ix := recommend.FitIndex(m, 3)
//	ids, err := recommend.NewRecommender(m, ix).Recommend("A", 5)
//
// # Determinism
//
// Users and products are ordered lexically. Neighbors tie on user ID and
// products tie on product ID, so identical inputs always produce identical
// rankings.
//
// # Degenerate Inputs
//
//   - Records with an empty ID or a non-finite rating are dropped.
//   - Duplicate (user, product) pairs keep the last rating.
//   - A row of zeros is at MaxDistance from every query. It may still be
//     listed as a neighbor but is left out of score averaging.
//   - A user whose own row is all zeros has no neighbors and receives an
//     empty result.
//
// # Engine
//
// Engine holds the active Model behind an atomic pointer. Training builds a
// complete new Model, persists it through a ModelStore and swaps it in;
// requests already in flight finish on the model they started with.
//
// # Thread Safety
//
// Matrix, Index, Model and Recommender are immutable once built. Engine is
// safe for concurrent use; at most one training run executes at a time.
package recommend
