// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

// Package storage persists trained recommendation models.
//
// Every backend implements recommend.ModelStore and stores one snapshot
// per model version alongside Metadata describing it. Versions increase
// monotonically; LoadLatest always returns the highest stored version.
//
// # Backends
//
//   - BadgerStore: embedded key-value store (dgraph-io/badger). JSON
//     encoded snapshots with a SHA-256 checksum per version.
//   - FileStore: one gob-encoded, gzip-compressed file per version:
//
//	{name}_v{version}.gob.gz
//
//   - MemoryStore: process-local, for tests and ephemeral deployments.
//
// # Integrity
//
// Checksums are verified on every load. A checksum mismatch or an
// undecodable payload is reported as recommend.ErrCorruptModel so the
// caller can keep serving the previous model.
//
// # Usage
//
//	store, err := storage.Open(storage.Config{Type: "badger", Path: "/data/models"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	engine.SetStore(store)
//	if _, err := engine.LoadLatest(ctx); errors.Is(err, recommend.ErrNoStoredModel) {
//	    // first start, train instead
//	}
package storage
