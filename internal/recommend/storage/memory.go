// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/tomtom215/productrec/internal/recommend"
)

// MemoryStore keeps snapshots in process memory.
// This is useful for testing or when persistence is not required.
type MemoryStore struct {
	name  string
	mu    sync.RWMutex
	snaps map[int]*recommend.Snapshot
	metas map[int]Metadata
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(name string) *MemoryStore {
	if name == "" {
		name = DefaultModelName
	}
	return &MemoryStore{
		name:  name,
		snaps: make(map[int]*recommend.Snapshot),
		metas: make(map[int]Metadata),
	}
}

// Save stores snap. The snapshot is not copied; callers must not modify it.
func (s *MemoryStore) Save(_ context.Context, snap *recommend.Snapshot) error {
	if err := validateSnapshot(snap); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meta := newMetadata(s.name, snap, nil)
	meta.Checksum = ""
	s.snaps[snap.Version] = snap
	s.metas[snap.Version] = meta
	return nil
}

// LoadLatest returns the newest snapshot.
func (s *MemoryStore) LoadLatest(ctx context.Context) (*recommend.Snapshot, error) {
	return s.Load(ctx, 0)
}

// Load returns a specific version. Version 0 means latest.
func (s *MemoryStore) Load(_ context.Context, version int) (*recommend.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		version = s.latestLocked()
		if version == 0 {
			return nil, recommend.ErrNoStoredModel
		}
	}
	snap, ok := s.snaps[version]
	if !ok {
		return nil, fmt.Errorf("model version %d: %w", version, recommend.ErrNoStoredModel)
	}
	return snap, nil
}

// LatestVersion returns the newest version, or 0.
func (s *MemoryStore) LatestVersion(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestLocked(), nil
}

func (s *MemoryStore) latestLocked() int {
	latest := 0
	for v := range s.snaps {
		if v > latest {
			latest = v
		}
	}
	return latest
}

// List returns metadata for every version, newest first.
func (s *MemoryStore) List(_ context.Context) ([]Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := make([]int, 0, len(s.metas))
	for v := range s.metas {
		versions = append(versions, v)
	}
	sortVersionsDesc(versions)

	models := make([]Metadata, len(versions))
	for i, v := range versions {
		models[i] = s.metas[v]
	}
	return models, nil
}

// Delete removes one version.
func (s *MemoryStore) Delete(_ context.Context, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, version)
	delete(s.metas, version)
	return nil
}

// Prune removes all but the newest keep versions.
func (s *MemoryStore) Prune(_ context.Context, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	versions := make([]int, 0, len(s.snaps))
	for v := range s.snaps {
		versions = append(versions, v)
	}
	stale := pruneVersions(versions, keep)
	for _, v := range stale {
		delete(s.snaps, v)
		delete(s.metas, v)
	}
	return len(stale), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
