// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package recommend

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func scenarioRecords() []RatingRecord {
	return []RatingRecord{
		{UserID: "A", ProductID: "p1", Rating: 5},
		{UserID: "A", ProductID: "p3", Rating: 3},
		{UserID: "B", ProductID: "p1", Rating: 4},
		{UserID: "B", ProductID: "p3", Rating: 2},
		{UserID: "C", ProductID: "p2", Rating: 5},
		{UserID: "C", ProductID: "p4", Rating: 4},
	}
}

func TestBuildMatrix(t *testing.T) {
	m, stats := BuildMatrix(scenarioRecords())

	if got, want := m.Users(), []string{"A", "B", "C"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Users() = %v, want %v", got, want)
	}
	if got, want := m.Products(), []string{"p1", "p2", "p3", "p4"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Products() = %v, want %v", got, want)
	}

	rows := map[string][]float64{
		"A": {5, 0, 3, 0},
		"B": {4, 0, 2, 0},
		"C": {0, 5, 0, 4},
	}
	for user, want := range rows {
		got, ok := m.Row(user)
		if !ok {
			t.Fatalf("Row(%q) missing", user)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Row(%q) = %v, want %v", user, got, want)
		}
	}

	want := BuildStats{Input: 6, Users: 3, Products: 4}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestBuildMatrix_RowLengthInvariant(t *testing.T) {
	records := []RatingRecord{
		{UserID: "u1", ProductID: "a", Rating: 1},
		{UserID: "u2", ProductID: "b", Rating: 2},
		{UserID: "u3", ProductID: "c", Rating: 3},
		{UserID: "u3", ProductID: "d", Rating: 4},
		{UserID: "u4", ProductID: "a", Rating: 0},
	}

	m, _ := BuildMatrix(records)
	for _, u := range m.Users() {
		row, _ := m.Row(u)
		if len(row) != m.NumProducts() {
			t.Errorf("len(Row(%q)) = %d, want %d", u, len(row), m.NumProducts())
		}
	}
}

func TestBuildMatrix_DropsInvalidRecords(t *testing.T) {
	tests := []struct {
		name   string
		record RatingRecord
	}{
		{"empty user", RatingRecord{ProductID: "p1", Rating: 1}},
		{"empty product", RatingRecord{UserID: "u1", Rating: 1}},
		{"NaN rating", RatingRecord{UserID: "u1", ProductID: "p1", Rating: math.NaN()}},
		{"positive infinity", RatingRecord{UserID: "u1", ProductID: "p1", Rating: math.Inf(1)}},
		{"negative infinity", RatingRecord{UserID: "u1", ProductID: "p1", Rating: math.Inf(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, stats := BuildMatrix([]RatingRecord{tt.record, {UserID: "ok", ProductID: "p9", Rating: 2}})
			if stats.Dropped != 1 {
				t.Errorf("Dropped = %d, want 1", stats.Dropped)
			}
			if m.NumUsers() != 1 || m.NumProducts() != 1 {
				t.Errorf("matrix shape = %dx%d, want 1x1", m.NumUsers(), m.NumProducts())
			}
		})
	}
}

func TestBuildMatrix_LastDuplicateWins(t *testing.T) {
	m, stats := BuildMatrix([]RatingRecord{
		{UserID: "u1", ProductID: "p1", Rating: 1},
		{UserID: "u1", ProductID: "p1", Rating: 4},
		{UserID: "u1", ProductID: "p1", Rating: 2},
	})

	if got := m.Rating("u1", "p1"); got != 2 {
		t.Errorf("Rating(u1, p1) = %v, want 2", got)
	}
	if stats.Duplicates != 2 {
		t.Errorf("Duplicates = %d, want 2", stats.Duplicates)
	}
}

func TestBuildMatrix_Empty(t *testing.T) {
	for _, records := range [][]RatingRecord{nil, {}, {{UserID: "", ProductID: ""}}} {
		m, _ := BuildMatrix(records)
		if !m.Empty() {
			t.Errorf("BuildMatrix(%v).Empty() = false, want true", records)
		}
		if m.NumUsers() != 0 || m.NumProducts() != 0 {
			t.Errorf("shape = %dx%d, want 0x0", m.NumUsers(), m.NumProducts())
		}
	}
}

func TestMatrix_AccessorsReturnCopies(t *testing.T) {
	m, _ := BuildMatrix(scenarioRecords())

	users := m.Users()
	users[0] = "mutated"
	row, _ := m.Row("A")
	row[0] = -1

	if m.Users()[0] != "A" {
		t.Error("Users() exposed internal slice")
	}
	if m.Rating("A", "p1") != 5 {
		t.Error("Row() exposed internal slice")
	}
}

func TestMatrixSnapshotRoundTrip(t *testing.T) {
	m, _ := BuildMatrix(scenarioRecords())

	restored, err := MatrixFromSnapshot(m.Snapshot())
	if err != nil {
		t.Fatalf("MatrixFromSnapshot() error = %v", err)
	}
	if !reflect.DeepEqual(restored.Snapshot(), m.Snapshot()) {
		t.Error("restored matrix differs from original")
	}
}

func TestMatrixFromSnapshot_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		snap MatrixSnapshot
	}{
		{
			name: "row count mismatch",
			snap: MatrixSnapshot{Users: []string{"a", "b"}, Products: []string{"p"}, Rows: [][]float64{{1}}},
		},
		{
			name: "short row",
			snap: MatrixSnapshot{Users: []string{"a"}, Products: []string{"p", "q"}, Rows: [][]float64{{1}}},
		},
		{
			name: "unsorted users",
			snap: MatrixSnapshot{Users: []string{"b", "a"}, Products: []string{"p"}, Rows: [][]float64{{1}, {2}}},
		},
		{
			name: "duplicate products",
			snap: MatrixSnapshot{Users: []string{"a"}, Products: []string{"p", "p"}, Rows: [][]float64{{1, 2}}},
		},
		{
			name: "non-finite cell",
			snap: MatrixSnapshot{Users: []string{"a"}, Products: []string{"p"}, Rows: [][]float64{{math.NaN()}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MatrixFromSnapshot(tt.snap)
			if !errors.Is(err, ErrCorruptModel) {
				t.Errorf("MatrixFromSnapshot() error = %v, want ErrCorruptModel", err)
			}
		})
	}
}
