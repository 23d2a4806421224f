// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package recommend

import (
	"errors"
	"math"
	"testing"
)

func neighborIDs(ns []Neighbor) []string {
	ids := make([]string, len(ns))
	for i, n := range ns {
		ids[i] = n.UserID
	}
	return ids
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"scaled", []float64{1, 2, 3}, []float64{2, 4, 6}, 0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 1},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, 2},
		{"zero left", []float64{0, 0}, []float64{1, 1}, MaxDistance},
		{"zero right", []float64{1, 1}, []float64{0, 0}, MaxDistance},
		{"both zero", []float64{0, 0}, []float64{0, 0}, MaxDistance},
		{"length mismatch", []float64{1}, []float64{1, 1}, MaxDistance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineDistance(tt.a, tt.b)
			if math.IsNaN(got) {
				t.Fatal("CosineDistance() = NaN")
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineDistance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIndexQuery_Scenario(t *testing.T) {
	m, _ := BuildMatrix(scenarioRecords())
	ix := FitIndex(m, 2)

	row, _ := m.Row("A")
	got := ix.Query(row, 0)
	if want := []string{"A", "B"}; !equalStrings(neighborIDs(got), want) {
		t.Errorf("Query(A) = %v, want %v", neighborIDs(got), want)
	}
	if got[0].Distance > 1e-12 {
		t.Errorf("self distance = %v, want 0", got[0].Distance)
	}
	if got[1].Distance <= 0 || got[1].Distance >= 0.01 {
		t.Errorf("distance(A, B) = %v, want small positive", got[1].Distance)
	}

	excl := ix.QueryExcluding(row, 0, "A")
	if want := []string{"B", "C"}; !equalStrings(neighborIDs(excl), want) {
		t.Errorf("QueryExcluding(A) = %v, want %v", neighborIDs(excl), want)
	}
}

func TestIndexQuery_Defaults(t *testing.T) {
	m, _ := BuildMatrix(scenarioRecords())

	t.Run("k defaults to DefaultNeighbors", func(t *testing.T) {
		ix := FitIndex(m, 0)
		if ix.K() != DefaultNeighbors {
			t.Errorf("K() = %d, want %d", ix.K(), DefaultNeighbors)
		}
	})

	t.Run("fewer rows than k returns all rows", func(t *testing.T) {
		ix := FitIndex(m, 10)
		row, _ := m.Row("C")
		if got := ix.Query(row, 0); len(got) != 3 {
			t.Errorf("len(Query) = %d, want 3", len(got))
		}
	})

	t.Run("explicit k overrides index k", func(t *testing.T) {
		ix := FitIndex(m, 3)
		row, _ := m.Row("C")
		if got := ix.Query(row, 1); len(got) != 1 || got[0].UserID != "C" {
			t.Errorf("Query(C, 1) = %v, want [C]", got)
		}
	})
}

func TestIndexQuery_DegenerateVectors(t *testing.T) {
	m, _ := BuildMatrix([]RatingRecord{
		{UserID: "a", ProductID: "p1", Rating: 1},
		{UserID: "b", ProductID: "p2", Rating: 1},
		{UserID: "z", ProductID: "p1", Rating: 0},
	})
	ix := FitIndex(m, 3)

	t.Run("zero query has no neighbors", func(t *testing.T) {
		if got := ix.Query([]float64{0, 0}, 0); len(got) != 0 {
			t.Errorf("Query(zero) = %v, want empty", got)
		}
	})

	t.Run("zero row ranks last at MaxDistance", func(t *testing.T) {
		got := ix.Query([]float64{0, 1}, 0)
		if want := []string{"b", "a", "z"}; !equalStrings(neighborIDs(got), want) {
			t.Fatalf("Query = %v, want %v", neighborIDs(got), want)
		}
		if got[2].Distance != MaxDistance {
			t.Errorf("zero row distance = %v, want %v", got[2].Distance, MaxDistance)
		}
		for _, n := range got {
			if math.IsNaN(n.Distance) {
				t.Errorf("distance for %s is NaN", n.UserID)
			}
		}
	})

	t.Run("wrong dimension has no neighbors", func(t *testing.T) {
		if got := ix.Query([]float64{1}, 0); len(got) != 0 {
			t.Errorf("Query(short) = %v, want empty", got)
		}
	})
}

func TestIndexQuery_TiesBreakByUserID(t *testing.T) {
	m, _ := BuildMatrix([]RatingRecord{
		{UserID: "c", ProductID: "p1", Rating: 2},
		{UserID: "a", ProductID: "p1", Rating: 3},
		{UserID: "b", ProductID: "p1", Rating: 1},
	})
	ix := FitIndex(m, 3)

	for i := 0; i < 5; i++ {
		got := ix.Query([]float64{7}, 0)
		if want := []string{"a", "b", "c"}; !equalStrings(neighborIDs(got), want) {
			t.Fatalf("Query = %v, want %v", neighborIDs(got), want)
		}
	}
}

func TestIndexQuery_EmptyMatrix(t *testing.T) {
	m, _ := BuildMatrix(nil)
	ix := FitIndex(m, 3)
	if ix.Len() != 0 {
		t.Errorf("Len() = %d, want 0", ix.Len())
	}
	if got := ix.Query(nil, 0); len(got) != 0 {
		t.Errorf("Query on empty index = %v, want empty", got)
	}
}

func TestIndexFromSnapshot(t *testing.T) {
	m, _ := BuildMatrix(scenarioRecords())
	ix := FitIndex(m, 2)

	t.Run("round trip", func(t *testing.T) {
		restored, err := IndexFromSnapshot(ix.Snapshot(), m)
		if err != nil {
			t.Fatalf("IndexFromSnapshot() error = %v", err)
		}
		if restored.K() != 2 || restored.Len() != 3 {
			t.Errorf("restored K=%d Len=%d, want K=2 Len=3", restored.K(), restored.Len())
		}
	})

	corrupt := []struct {
		name   string
		mutate func(*IndexSnapshot)
	}{
		{"metric", func(s *IndexSnapshot) { s.Metric = "euclidean" }},
		{"k", func(s *IndexSnapshot) { s.K = 0 }},
		{"users", func(s *IndexSnapshot) { s.Users[0] = "X" }},
		{"norm", func(s *IndexSnapshot) { s.Norms[1] += 1 }},
		{"nan norm", func(s *IndexSnapshot) { s.Norms[0] = math.NaN() }},
		{"length", func(s *IndexSnapshot) { s.Norms = s.Norms[:1] }},
	}
	for _, tt := range corrupt {
		t.Run(tt.name, func(t *testing.T) {
			snap := ix.Snapshot()
			tt.mutate(&snap)
			if _, err := IndexFromSnapshot(snap, m); !errors.Is(err, ErrCorruptModel) {
				t.Errorf("IndexFromSnapshot() error = %v, want ErrCorruptModel", err)
			}
		})
	}
}
