// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/productrec/internal/recommend"
)

// Backend types accepted by Open.
const (
	TypeBadger = "badger"
	TypeFile   = "file"
	TypeMemory = "memory"
)

// DefaultModelName names the model when none is configured.
const DefaultModelName = "knn"

// Metadata contains information about a stored model version.
type Metadata struct {
	// Name is the model name.
	Name string `json:"name"`

	// Version is the model version (monotonically increasing).
	Version int `json:"version"`

	// TrainedAt is when the model was trained.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the model was saved.
	SavedAt time.Time `json:"saved_at"`

	// RecordCount is the number of rating records used for training.
	RecordCount int `json:"record_count"`

	// DroppedCount is the number of records rejected while building the matrix.
	DroppedCount int `json:"dropped_count"`

	// UserCount is the number of users (matrix rows).
	UserCount int `json:"user_count"`

	// ProductCount is the number of products (matrix columns).
	ProductCount int `json:"product_count"`

	// Neighbors is the k the index was fitted with.
	Neighbors int `json:"neighbors"`

	// Checksum is the SHA-256 checksum of the encoded snapshot.
	Checksum string `json:"checksum"`

	// SizeBytes is the stored payload size in bytes.
	SizeBytes int64 `json:"size_bytes"`
}

// Store is a model store with listing and lifecycle operations on top of
// recommend.ModelStore.
type Store interface {
	recommend.ModelStore

	// Load returns a specific version. Version 0 means latest.
	Load(ctx context.Context, version int) (*recommend.Snapshot, error)

	// List returns metadata for every stored version, newest first.
	List(ctx context.Context) ([]Metadata, error)

	// Delete removes one version.
	Delete(ctx context.Context, version int) error

	// Close releases backend resources.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	// Type is one of TypeBadger, TypeFile or TypeMemory.
	Type string

	// Path is the directory for badger and file backends.
	Path string

	// Name is the model name used in keys and filenames.
	Name string
}

// Open creates the store described by cfg.
//
//nolint:gocritic // hugeParam: cfg passed by value for immutability
func Open(cfg Config) (Store, error) {
	if cfg.Name == "" {
		cfg.Name = DefaultModelName
	}

	switch cfg.Type {
	case TypeBadger:
		return OpenBadgerStore(cfg.Path, cfg.Name)
	case TypeFile:
		return NewFileStore(cfg.Path, cfg.Name)
	case TypeMemory, "":
		return NewMemoryStore(cfg.Name), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}

// newMetadata describes snap as stored under name.
func newMetadata(name string, snap *recommend.Snapshot, payload []byte) Metadata {
	return Metadata{
		Name:         name,
		Version:      snap.Version,
		TrainedAt:    snap.TrainedAt,
		SavedAt:      time.Now().UTC(),
		RecordCount:  snap.Stats.Input,
		DroppedCount: snap.Stats.Dropped,
		UserCount:    len(snap.Matrix.Users),
		ProductCount: len(snap.Matrix.Products),
		Neighbors:    snap.Index.K,
		Checksum:     checksum(payload),
		SizeBytes:    int64(len(payload)),
	}
}

func checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// verifyChecksum reports a mismatch as recommend.ErrCorruptModel.
func verifyChecksum(meta *Metadata, payload []byte) error {
	if got := checksum(payload); got != meta.Checksum {
		return fmt.Errorf("%w: checksum mismatch for version %d: expected %s, got %s",
			recommend.ErrCorruptModel, meta.Version, meta.Checksum, got)
	}
	return nil
}

func validateSnapshot(snap *recommend.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	if snap.Version < 1 {
		return fmt.Errorf("snapshot version must be positive, got %d", snap.Version)
	}
	return nil
}

// sortVersionsDesc sorts versions newest first.
func sortVersionsDesc(versions []int) {
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
}

// pruneVersions returns the versions beyond the newest keep.
func pruneVersions(versions []int, keep int) []int {
	if keep < 1 {
		keep = 1
	}
	sortVersionsDesc(versions)
	if len(versions) <= keep {
		return nil
	}
	return versions[keep:]
}
