// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/productrec/internal/recommend/storage"
)

const ratingsCSV = `UserId,ProductId,Rating
A,p1,5
A,p3,3
B,p1,4
D,,3
B,p3,2
C,p2,5
C,p4,4
`

// writeTrainConfig writes a rating file and a config pointing at it and
// at a file model store. It returns the config path and the store dir.
func writeTrainConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "ratings.csv")
	if err := os.WriteFile(csvPath, []byte(ratingsCSV), 0o600); err != nil {
		t.Fatal(err)
	}

	storeDir := filepath.Join(dir, "models")
	yaml := fmt.Sprintf(`source:
  type: csv
  path: %s
store:
  type: file
  path: %s
logging:
  level: error
`, csvPath, storeDir)

	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	return configPath, storeDir
}

func runTrain(t *testing.T, opts options) summary {
	t.Helper()
	var out bytes.Buffer
	if err := run(context.Background(), opts, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	var s summary
	if err := json.Unmarshal(out.Bytes(), &s); err != nil {
		t.Fatalf("decode summary %q: %v", out.String(), err)
	}
	return s
}

func storedVersions(t *testing.T, dir string) int {
	t.Helper()
	store, err := storage.NewFileStore(dir, storage.DefaultModelName)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer store.Close() //nolint:errcheck

	versions, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	return len(versions)
}

func TestRun_Persists(t *testing.T) {
	configPath, storeDir := writeTrainConfig(t)

	first := runTrain(t, options{configPath: configPath, limit: -1})
	if !first.Persisted || first.Version != 1 {
		t.Errorf("first run = %+v, want persisted version 1", first)
	}
	if first.SourceType != "csv" {
		t.Errorf("SourceType = %q, want csv", first.SourceType)
	}
	if first.Stats.Users != 3 || first.Stats.Products != 4 || first.Stats.Dropped != 1 {
		t.Errorf("Stats = %+v, want 3 users, 4 products, 1 dropped", first.Stats)
	}

	second := runTrain(t, options{configPath: configPath, limit: -1})
	if second.Version != 2 {
		t.Errorf("second run version = %d, want 2", second.Version)
	}
	if got := storedVersions(t, storeDir); got != 2 {
		t.Errorf("stored versions = %d, want 2", got)
	}
}

func TestRun_DryRun(t *testing.T) {
	configPath, storeDir := writeTrainConfig(t)

	s := runTrain(t, options{configPath: configPath, limit: -1, dryRun: true})
	if s.Persisted {
		t.Error("dry run reported Persisted = true")
	}
	if s.Stats.Users != 3 {
		t.Errorf("Stats.Users = %d, want 3", s.Stats.Users)
	}
	if got := storedVersions(t, storeDir); got != 0 {
		t.Errorf("stored versions after dry run = %d, want 0", got)
	}
}

func TestRun_RecordLimit(t *testing.T) {
	tests := []struct {
		name        string
		envLimit    string
		flagLimit   int
		wantLimit   int
		wantUsers   int
		wantDropped int
	}{
		{name: "no limit", flagLimit: -1, wantLimit: 0, wantUsers: 3, wantDropped: 1},
		{name: "env limit", envLimit: "2", flagLimit: -1, wantLimit: 2, wantUsers: 1},
		{name: "flag overrides env", envLimit: "2", flagLimit: 4, wantLimit: 4, wantUsers: 2},
		{name: "zero flag clears env", envLimit: "2", flagLimit: 0, wantLimit: 0, wantUsers: 3, wantDropped: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envLimit != "" {
				t.Setenv("RATINGS_LIMIT", tt.envLimit)
			}
			configPath, _ := writeTrainConfig(t)

			s := runTrain(t, options{configPath: configPath, limit: tt.flagLimit, dryRun: true})
			if s.RecordLimit != tt.wantLimit {
				t.Errorf("RecordLimit = %d, want %d", s.RecordLimit, tt.wantLimit)
			}
			if s.Stats.Users != tt.wantUsers {
				t.Errorf("Stats.Users = %d, want %d", s.Stats.Users, tt.wantUsers)
			}
			if s.Stats.Dropped != tt.wantDropped {
				t.Errorf("Stats.Dropped = %d, want %d", s.Stats.Dropped, tt.wantDropped)
			}
		})
	}
}

func TestRun_MissingConfig(t *testing.T) {
	err := run(context.Background(), options{configPath: filepath.Join(t.TempDir(), "missing.yaml"), limit: -1}, &bytes.Buffer{})
	if err == nil {
		t.Error("expected error for missing config file")
	}
}
