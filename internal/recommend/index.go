// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package recommend

import (
	"fmt"
	"math"
)

const (
	// DefaultNeighbors is the neighbor count used when none is configured.
	DefaultNeighbors = 3

	// MaxDistance is the largest cosine distance. Rows with zero norm are
	// placed at this distance from every query.
	MaxDistance = 2.0

	// MetricCosine names the only supported distance metric.
	MetricCosine = "cosine"
)

// Neighbor is a single nearest-neighbor search hit.
type Neighbor struct {
	UserID   string  `json:"user_id"`
	Distance float64 `json:"distance"`
}

// Index answers nearest-neighbor queries over the rows of a Matrix using
// cosine distance. Row norms are computed once at fit time. An Index is
// read-only after FitIndex returns.
type Index struct {
	k     int
	dim   int
	users []string
	rows  [][]float64
	norms []float64
}

// FitIndex builds an Index over m. A k <= 0 selects DefaultNeighbors.
// The index shares row storage with m.
func FitIndex(m *Matrix, k int) *Index {
	if k <= 0 {
		k = DefaultNeighbors
	}
	ix := &Index{k: k}
	if m == nil {
		return ix
	}

	ix.dim = len(m.products)
	ix.users = m.users
	ix.rows = m.rows
	ix.norms = make([]float64, len(m.rows))
	for i, r := range m.rows {
		ix.norms[i] = norm(r)
	}
	return ix
}

// K returns the neighbor count fixed at fit time.
func (ix *Index) K() int { return ix.k }

// Len returns the number of indexed rows.
func (ix *Index) Len() int { return len(ix.rows) }

// Dim returns the expected query vector length.
func (ix *Index) Dim() int { return ix.dim }

// Query returns up to k rows nearest to vector, ordered by ascending
// distance with ties broken by ascending user ID. A k <= 0 uses the index k.
// A zero query vector, or one whose length differs from Dim, has no
// neighbors.
func (ix *Index) Query(vector []float64, k int) []Neighbor {
	return ix.query(vector, k, "")
}

// QueryExcluding behaves like Query but never returns excludeUserID.
func (ix *Index) QueryExcluding(vector []float64, k int, excludeUserID string) []Neighbor {
	return ix.query(vector, k, excludeUserID)
}

func (ix *Index) query(vector []float64, k int, exclude string) []Neighbor {
	if k <= 0 {
		k = ix.k
	}
	if len(ix.rows) == 0 || len(vector) != ix.dim {
		return []Neighbor{}
	}

	qnorm := norm(vector)
	if qnorm == 0 {
		return []Neighbor{}
	}

	best := newTopK(min(k, len(ix.rows)))
	for i, r := range ix.rows {
		if exclude != "" && ix.users[i] == exclude {
			continue
		}
		best.Push(Neighbor{
			UserID:   ix.users[i],
			Distance: cosineDistance(vector, qnorm, r, ix.norms[i]),
		})
	}
	return best.Sorted()
}

// CosineDistance returns 1 - cos(a, b) clamped to [0, MaxDistance].
// If either vector has zero norm the distance is MaxDistance.
func CosineDistance(a, b []float64) float64 {
	na := norm(a)
	if na == 0 {
		return MaxDistance
	}
	return cosineDistance(a, na, b, norm(b))
}

func cosineDistance(a []float64, na float64, b []float64, nb float64) float64 {
	if na == 0 || nb == 0 || len(a) != len(b) {
		return MaxDistance
	}

	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}

	d := 1 - dot/(na*nb)
	switch {
	case d < 0:
		return 0
	case d > MaxDistance:
		return MaxDistance
	}
	return d
}

func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// IndexSnapshot is the serializable form of an Index. Rows are not stored;
// they come from the matrix the index was fitted on.
type IndexSnapshot struct {
	K      int       `json:"k"`
	Metric string    `json:"metric"`
	Users  []string  `json:"users"`
	Norms  []float64 `json:"norms"`
}

// Snapshot returns the index parameters and precomputed norms.
func (ix *Index) Snapshot() IndexSnapshot {
	return IndexSnapshot{
		K:      ix.k,
		Metric: MetricCosine,
		Users:  append([]string(nil), ix.users...),
		Norms:  append([]float64(nil), ix.norms...),
	}
}

// normTolerance bounds the relative drift allowed between stored and
// recomputed row norms.
const normTolerance = 1e-9

// IndexFromSnapshot refits an index on m and checks it against the stored
// snapshot. Any disagreement in metric, users or norms is ErrCorruptModel.
//
//nolint:gocritic // hugeParam: snapshot passed by value, it is only read
func IndexFromSnapshot(s IndexSnapshot, m *Matrix) (*Index, error) {
	if s.Metric != MetricCosine {
		return nil, fmt.Errorf("%w: unsupported metric %q", ErrCorruptModel, s.Metric)
	}
	if s.K <= 0 {
		return nil, fmt.Errorf("%w: neighbor count %d", ErrCorruptModel, s.K)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: index without matrix", ErrCorruptModel)
	}
	if len(s.Users) != len(m.users) || len(s.Norms) != len(m.users) {
		return nil, fmt.Errorf("%w: index covers %d users, matrix has %d", ErrCorruptModel, len(s.Users), len(m.users))
	}

	ix := FitIndex(m, s.K)
	for i, u := range s.Users {
		if u != ix.users[i] {
			return nil, fmt.Errorf("%w: index user %q at %d, matrix has %q", ErrCorruptModel, u, i, ix.users[i])
		}
		if math.IsNaN(s.Norms[i]) || math.Abs(s.Norms[i]-ix.norms[i]) > normTolerance*math.Max(1, ix.norms[i]) {
			return nil, fmt.Errorf("%w: norm mismatch for user %q", ErrCorruptModel, u)
		}
	}
	return ix, nil
}
