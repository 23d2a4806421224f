// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package recommend

import (
	"fmt"
	"sort"
)

// DefaultCount is the number of products returned when the caller does not
// ask for a specific count.
const DefaultCount = 5

// ScoredProduct is a candidate product with its aggregated neighbor score.
type ScoredProduct struct {
	ProductID string  `json:"product_id"`
	Score     float64 `json:"score"`
}

// Recommender turns neighbor ratings into a ranked product list.
// It holds no mutable state and is safe for concurrent use.
type Recommender struct {
	matrix      *Matrix
	index       *Index
	excludeSelf bool
}

// RecommenderOption configures a Recommender.
type RecommenderOption func(*Recommender)

// WithExcludeSelf removes the queried user's own row from the neighbor set.
// By default a user is a candidate neighbor of itself.
func WithExcludeSelf(exclude bool) RecommenderOption {
	return func(r *Recommender) {
		r.excludeSelf = exclude
	}
}

// NewRecommender creates a Recommender over a matrix and an index fitted on it.
func NewRecommender(m *Matrix, ix *Index, opts ...RecommenderOption) *Recommender {
	r := &Recommender{matrix: m, index: ix}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recommend returns up to count product IDs for userID, best first.
// A count <= 0 selects DefaultCount.
func (r *Recommender) Recommend(userID string, count int) ([]string, error) {
	scored, _, err := r.RecommendScored(userID, count)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(scored))
	for i, sp := range scored {
		ids[i] = sp.ProductID
	}
	return ids, nil
}

// RecommendScored is Recommend with scores and the neighbor set used.
//
// Scores are the arithmetic mean of the neighbor rows per product. Products
// are ranked by descending score, ties by ascending product ID, and every
// product the user rated above zero is removed. A user whose row is all
// zeros has no neighbors and gets an empty, successful result.
//
// Neighbors whose own row is all zeros sit at MaxDistance and carry no
// weight: they are left out of both the sum and the divisor, and out of
// the returned neighbor set. When every neighbor is degenerate the result
// is empty.
func (r *Recommender) RecommendScored(userID string, count int) ([]ScoredProduct, []Neighbor, error) {
	if r.matrix.Empty() || r.index == nil || r.index.Len() == 0 {
		return nil, nil, ErrEmptyCatalog
	}
	if count <= 0 {
		count = DefaultCount
	}

	row, ok := r.matrix.row(userID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}

	neighbors := r.weightedNeighbors(r.neighbors(userID, row, 0))
	if len(neighbors) == 0 {
		return []ScoredProduct{}, neighbors, nil
	}

	ranked := rankProducts(r.matrix.products, r.meanRatings(neighbors))
	rated := ratedProducts(r.matrix.products, row)

	out := make([]ScoredProduct, 0, count)
	for _, sp := range ranked {
		if _, seen := rated[sp.ProductID]; seen {
			continue
		}
		out = append(out, sp)
		if len(out) == count {
			break
		}
	}
	return out, neighbors, nil
}

// Neighbors returns the k nearest users to userID under the recommender's
// self-exclusion setting. A k <= 0 uses the index k.
func (r *Recommender) Neighbors(userID string, k int) ([]Neighbor, error) {
	if r.matrix.Empty() || r.index == nil || r.index.Len() == 0 {
		return nil, ErrEmptyCatalog
	}
	row, ok := r.matrix.row(userID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return r.neighbors(userID, row, k), nil
}

func (r *Recommender) neighbors(userID string, row []float64, k int) []Neighbor {
	if r.excludeSelf {
		return r.index.QueryExcluding(row, k, userID)
	}
	return r.index.Query(row, k)
}

// weightedNeighbors drops neighbors whose row has zero norm.
func (r *Recommender) weightedNeighbors(neighbors []Neighbor) []Neighbor {
	kept := make([]Neighbor, 0, len(neighbors))
	for _, n := range neighbors {
		nrow, ok := r.matrix.row(n.UserID)
		if !ok || isZeroRow(nrow) {
			continue
		}
		kept = append(kept, n)
	}
	return kept
}

func isZeroRow(row []float64) bool {
	for _, v := range row {
		if v != 0 {
			return false
		}
	}
	return true
}

// meanRatings averages the neighbor rows column by column.
func (r *Recommender) meanRatings(neighbors []Neighbor) []float64 {
	scores := make([]float64, len(r.matrix.products))
	for _, n := range neighbors {
		nrow, ok := r.matrix.row(n.UserID)
		if !ok {
			continue
		}
		for j, v := range nrow {
			scores[j] += v
		}
	}

	denom := float64(len(neighbors))
	for j := range scores {
		scores[j] /= denom
	}
	return scores
}

func rankProducts(products []string, scores []float64) []ScoredProduct {
	ranked := make([]ScoredProduct, len(products))
	for j, p := range products {
		ranked[j] = ScoredProduct{ProductID: p, Score: scores[j]}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})
	return ranked
}

func ratedProducts(products []string, row []float64) map[string]struct{} {
	rated := make(map[string]struct{})
	for j, v := range row {
		if v > 0 {
			rated[products[j]] = struct{}{}
		}
	}
	return rated
}
