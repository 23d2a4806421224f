// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/productrec/internal/recommend"
)

// BadgerStore persists model snapshots in BadgerDB.
//
// Keys:
//
//	model:{name}:meta:{version}  JSON Metadata
//	model:{name}:data:{version}  JSON recommend.Snapshot
type BadgerStore struct {
	db     *badger.DB
	name   string
	ownsDB bool
}

// OpenBadgerStore opens (or creates) a BadgerDB at dir and wraps it.
func OpenBadgerStore(dir, name string) (*BadgerStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("badger store path is required")
	}

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	s := NewBadgerStore(db, name)
	s.ownsDB = true
	return s, nil
}

// NewBadgerStore wraps an already open BadgerDB. Close does not close db.
func NewBadgerStore(db *badger.DB, name string) *BadgerStore {
	if name == "" {
		name = DefaultModelName
	}
	return &BadgerStore{db: db, name: name}
}

func (s *BadgerStore) metaKey(version int) []byte {
	return []byte(fmt.Sprintf("model:%s:meta:%010d", s.name, version))
}

func (s *BadgerStore) dataKey(version int) []byte {
	return []byte(fmt.Sprintf("model:%s:data:%010d", s.name, version))
}

func (s *BadgerStore) metaPrefix() []byte {
	return []byte(fmt.Sprintf("model:%s:meta:", s.name))
}

// Save stores snap and its metadata in a single transaction.
func (s *BadgerStore) Save(ctx context.Context, snap *recommend.Snapshot) error {
	if err := validateSnapshot(snap); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	meta, err := json.Marshal(newMetadata(s.name, snap, data))
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(s.dataKey(snap.Version), data); err != nil {
			return err
		}
		return txn.Set(s.metaKey(snap.Version), meta)
	})
}

// LoadLatest returns the newest stored snapshot.
func (s *BadgerStore) LoadLatest(ctx context.Context) (*recommend.Snapshot, error) {
	return s.Load(ctx, 0)
}

// Load returns a specific version. Version 0 means latest.
func (s *BadgerStore) Load(ctx context.Context, version int) (*recommend.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if version == 0 {
		latest, err := s.LatestVersion(ctx)
		if err != nil {
			return nil, err
		}
		if latest == 0 {
			return nil, recommend.ErrNoStoredModel
		}
		version = latest
	}

	var meta Metadata
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.metaKey(version))
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		}); err != nil {
			return fmt.Errorf("%w: decode metadata: %v", recommend.ErrCorruptModel, err)
		}

		item, err = txn.Get(s.dataKey(version))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("model version %d: %w", version, recommend.ErrNoStoredModel)
	}
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	if err := verifyChecksum(&meta, data); err != nil {
		return nil, err
	}

	var snap recommend.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: decode snapshot: %v", recommend.ErrCorruptModel, err)
	}
	return &snap, nil
}

// LatestVersion returns the newest stored version, or 0.
func (s *BadgerStore) LatestVersion(ctx context.Context) (int, error) {
	versions, err := s.versions(ctx)
	if err != nil {
		return 0, err
	}
	latest := 0
	for _, v := range versions {
		if v > latest {
			latest = v
		}
	}
	return latest, nil
}

// versions lists stored versions by scanning metadata keys.
func (s *BadgerStore) versions(_ context.Context) ([]int, error) {
	prefix := s.metaPrefix()
	var versions []int

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			v, err := strconv.Atoi(strings.TrimPrefix(key, string(prefix)))
			if err != nil {
				continue
			}
			versions = append(versions, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan model versions: %w", err)
	}
	return versions, nil
}

// List returns metadata for every stored version, newest first.
func (s *BadgerStore) List(_ context.Context) ([]Metadata, error) {
	prefix := s.metaPrefix()
	var models []Metadata

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var meta Metadata
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &meta)
			}); err != nil {
				continue
			}
			models = append(models, meta)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	// Zero-padded keys iterate oldest first.
	for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
		models[i], models[j] = models[j], models[i]
	}
	return models, nil
}

// Delete removes one version.
func (s *BadgerStore) Delete(_ context.Context, version int) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(s.dataKey(version)); err != nil {
			return err
		}
		return txn.Delete(s.metaKey(version))
	})
}

// Prune removes all but the newest keep versions.
func (s *BadgerStore) Prune(ctx context.Context, keep int) (int, error) {
	versions, err := s.versions(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, v := range pruneVersions(versions, keep) {
		if err := s.Delete(ctx, v); err != nil {
			return removed, fmt.Errorf("delete model version %d: %w", v, err)
		}
		removed++
	}
	return removed, nil
}

// Close closes the database if the store opened it.
func (s *BadgerStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}
