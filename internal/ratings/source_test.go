// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package ratings

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/productrec/internal/recommend"
)

type staticSource struct {
	records []recommend.RatingRecord
	err     error
	closed  bool
}

func (s *staticSource) LoadRatings(context.Context) ([]recommend.RatingRecord, error) {
	return s.records, s.err
}

func (s *staticSource) Name() string { return "static" }
func (s *staticSource) Close() error {
	s.closed = true
	return nil
}

func TestLimit(t *testing.T) {
	inner := &staticSource{records: []recommend.RatingRecord{
		{UserID: "u1", ProductID: "p1", Rating: 1},
		{UserID: "", ProductID: "p2", Rating: 2},
		{UserID: "u3", ProductID: "p3", Rating: 3},
		{UserID: "u4", ProductID: "p4", Rating: 4},
	}}

	tests := []struct {
		n        int
		wantLast string
		wantLen  int
	}{
		{n: 1, wantLast: "u1", wantLen: 1},
		{n: 2, wantLast: "u3", wantLen: 2},
		{n: 10, wantLast: "u4", wantLen: 3},
	}

	for _, tt := range tests {
		src := Limit(inner, tt.n)
		records, err := src.LoadRatings(context.Background())
		if err != nil {
			t.Fatalf("LoadRatings() error = %v", err)
		}
		if len(records) != tt.wantLen {
			t.Fatalf("Limit(%d) len = %d, want %d", tt.n, len(records), tt.wantLen)
		}
		if got := records[len(records)-1].UserID; got != tt.wantLast {
			t.Errorf("Limit(%d) last = %q, want %q", tt.n, got, tt.wantLast)
		}
	}

	src := Limit(inner, 2)
	if got := src.Name(); got != "static(limit=2)" {
		t.Errorf("Name() = %q", got)
	}
	if err := src.Close(); err != nil || !inner.closed {
		t.Error("Close() was not forwarded")
	}
}

func TestLimit_Error(t *testing.T) {
	wantErr := errors.New("boom")
	src := Limit(&staticSource{err: wantErr}, 5)
	if _, err := src.LoadRatings(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratings.csv")
	if err := os.WriteFile(path, []byte("UserId,ProductId,Rating\nu1,p1,5\nu2,p2,4\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	src, err := Open(context.Background(), Config{Type: TypeCSV, Path: path, Limit: 1})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer src.Close()

	records, err := src.LoadRatings(context.Background())
	if err != nil {
		t.Fatalf("LoadRatings() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}

	if _, err := Open(context.Background(), Config{Type: "excel"}); err == nil {
		t.Error("expected error for unknown type")
	}
	if _, err := Open(context.Background(), Config{Type: TypeMongo}); err == nil {
		t.Error("expected error for mongo without uri")
	}
}

func TestAsString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{in: " abc ", want: "abc"},
		{in: int32(7), want: "7"},
		{in: int64(42), want: "42"},
		{in: 3, want: "3"},
		{in: 12.0, want: "12"},
		{in: 1.5, want: "1.5"},
		{in: nil, want: ""},
		{in: true, want: ""},
	}
	for _, tt := range tests {
		if got := asString(tt.in); got != tt.want {
			t.Errorf("asString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAsFloat64(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{in: int32(4), want: 4},
		{in: int64(5), want: 5},
		{in: 2, want: 2},
		{in: 3.5, want: 3.5},
		{in: float32(1.5), want: 1.5},
		{in: "2.25", want: 2.25},
	}
	for _, tt := range tests {
		if got := asFloat64(tt.in); got != tt.want {
			t.Errorf("asFloat64(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, in := range []any{nil, "x", true} {
		if got := asFloat64(in); !math.IsNaN(got) {
			t.Errorf("asFloat64(%v) = %v, want NaN", in, got)
		}
	}
}
