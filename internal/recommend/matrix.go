// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package recommend

import (
	"fmt"
	"math"
	"sort"
)

// RatingRecord is a single observed rating of a product by a user.
type RatingRecord struct {
	// UserID identifies the rating user.
	UserID string `json:"user_id"`

	// ProductID identifies the rated product.
	ProductID string `json:"product_id"`

	// Rating is the numeric score. Values <= 0 are treated as "not rated"
	// when filtering recommendations.
	Rating float64 `json:"rating"`
}

// Valid reports whether the record can contribute a matrix cell.
//
//nolint:gocritic // hugeParam: value receiver keeps records immutable
func (r RatingRecord) Valid() bool {
	if r.UserID == "" || r.ProductID == "" {
		return false
	}
	return !math.IsNaN(r.Rating) && !math.IsInf(r.Rating, 0)
}

// BuildStats summarizes a BuildMatrix run.
type BuildStats struct {
	// Input is the number of records passed in.
	Input int `json:"input"`

	// Dropped is the number of records rejected as incomplete or non-finite.
	Dropped int `json:"dropped"`

	// Duplicates is the number of records that overwrote an earlier
	// rating for the same (user, product) pair.
	Duplicates int `json:"duplicates"`

	// Users is the number of distinct users (matrix rows).
	Users int `json:"users"`

	// Products is the number of distinct products (matrix columns).
	Products int `json:"products"`
}

// Matrix is a dense user × product rating matrix.
//
// Rows are ordered by ascending user ID and columns by ascending product ID.
// Cells with no rating hold 0.0, which is indistinguishable from an
// explicit zero rating. A Matrix is never modified after construction and
// may be shared between goroutines without locking.
type Matrix struct {
	users    []string
	products []string
	rows     [][]float64

	userIndex    map[string]int
	productIndex map[string]int
}

type cellKey struct {
	user    string
	product string
}

// BuildMatrix pivots rating records into a Matrix.
//
// Records with an empty user or product ID, or a NaN/Inf rating, are
// dropped and counted in BuildStats.Dropped. When the same (user, product)
// pair appears more than once, the last record in input order wins.
func BuildMatrix(records []RatingRecord) (*Matrix, BuildStats) {
	stats := BuildStats{Input: len(records)}

	cells := make(map[cellKey]float64, len(records))
	userSet := make(map[string]struct{})
	productSet := make(map[string]struct{})

	for _, r := range records {
		if !r.Valid() {
			stats.Dropped++
			continue
		}
		key := cellKey{user: r.UserID, product: r.ProductID}
		if _, seen := cells[key]; seen {
			stats.Duplicates++
		}
		cells[key] = r.Rating
		userSet[r.UserID] = struct{}{}
		productSet[r.ProductID] = struct{}{}
	}

	users := sortedKeys(userSet)
	products := sortedKeys(productSet)

	m := newMatrix(users, products)
	for key, rating := range cells {
		m.rows[m.userIndex[key.user]][m.productIndex[key.product]] = rating
	}

	stats.Users = len(users)
	stats.Products = len(products)
	return m, stats
}

// newMatrix allocates a zero-filled matrix for the given sorted axes.
func newMatrix(users, products []string) *Matrix {
	m := &Matrix{
		users:        users,
		products:     products,
		rows:         make([][]float64, len(users)),
		userIndex:    make(map[string]int, len(users)),
		productIndex: make(map[string]int, len(products)),
	}

	// One backing array keeps rows contiguous.
	cells := make([]float64, len(users)*len(products))
	for i, u := range users {
		m.rows[i] = cells[i*len(products) : (i+1)*len(products) : (i+1)*len(products)]
		m.userIndex[u] = i
	}
	for j, p := range products {
		m.productIndex[p] = j
	}
	return m
}

// Users returns the row labels in matrix order.
func (m *Matrix) Users() []string {
	return append([]string(nil), m.users...)
}

// Products returns the column labels in matrix order.
func (m *Matrix) Products() []string {
	return append([]string(nil), m.products...)
}

// NumUsers returns the number of rows.
func (m *Matrix) NumUsers() int { return len(m.users) }

// NumProducts returns the number of columns.
func (m *Matrix) NumProducts() int { return len(m.products) }

// Empty reports whether the matrix has no rows or no columns.
func (m *Matrix) Empty() bool {
	return m == nil || len(m.users) == 0 || len(m.products) == 0
}

// HasUser reports whether the user has a row.
func (m *Matrix) HasUser(userID string) bool {
	_, ok := m.userIndex[userID]
	return ok
}

// Row returns a copy of the user's rating vector.
func (m *Matrix) Row(userID string) ([]float64, bool) {
	i, ok := m.userIndex[userID]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), m.rows[i]...), true
}

// Rating returns a single cell. Unknown users or products read as 0.
func (m *Matrix) Rating(userID, productID string) float64 {
	i, ok := m.userIndex[userID]
	if !ok {
		return 0
	}
	j, ok := m.productIndex[productID]
	if !ok {
		return 0
	}
	return m.rows[i][j]
}

// row returns the shared row slice. Callers must not modify it.
func (m *Matrix) row(userID string) ([]float64, bool) {
	i, ok := m.userIndex[userID]
	if !ok {
		return nil, false
	}
	return m.rows[i], true
}

// MatrixSnapshot is the serializable form of a Matrix.
type MatrixSnapshot struct {
	Users    []string    `json:"users"`
	Products []string    `json:"products"`
	Rows     [][]float64 `json:"rows"`
}

// Snapshot returns a deep copy of the matrix contents.
func (m *Matrix) Snapshot() MatrixSnapshot {
	rows := make([][]float64, len(m.rows))
	for i, r := range m.rows {
		rows[i] = append([]float64(nil), r...)
	}
	return MatrixSnapshot{
		Users:    m.Users(),
		Products: m.Products(),
		Rows:     rows,
	}
}

// MatrixFromSnapshot rebuilds a Matrix, rejecting snapshots whose shape or
// ordering would break the matrix invariants.
//
//nolint:gocritic // hugeParam: snapshot passed by value, it is only read
func MatrixFromSnapshot(s MatrixSnapshot) (*Matrix, error) {
	if len(s.Rows) != len(s.Users) {
		return nil, fmt.Errorf("%w: %d rows for %d users", ErrCorruptModel, len(s.Rows), len(s.Users))
	}
	if err := checkStrictlySorted("user", s.Users); err != nil {
		return nil, err
	}
	if err := checkStrictlySorted("product", s.Products); err != nil {
		return nil, err
	}

	m := newMatrix(append([]string(nil), s.Users...), append([]string(nil), s.Products...))
	for i, r := range s.Rows {
		if len(r) != len(s.Products) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrCorruptModel, i, len(r), len(s.Products))
		}
		for j, v := range r {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: non-finite cell at row %d column %d", ErrCorruptModel, i, j)
			}
		}
		copy(m.rows[i], r)
	}
	return m, nil
}

func checkStrictlySorted(kind string, ids []string) error {
	for i, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: empty %s id at %d", ErrCorruptModel, kind, i)
		}
		if i > 0 && ids[i-1] >= id {
			return fmt.Errorf("%w: %s ids not strictly ascending at %d", ErrCorruptModel, kind, i)
		}
	}
	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
