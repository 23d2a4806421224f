// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package cache

import (
	"context"
	"errors"
	"time"
)

// Tiered checks a local cache before a shared remote one. Remote hits are
// copied into the local tier for its default TTL.
type Tiered struct {
	local  Backend
	remote Backend
	ttl    time.Duration
}

// NewTiered combines local and remote. localTTL bounds how long a value
// fetched from remote stays in local.
func NewTiered(local, remote Backend, localTTL time.Duration) *Tiered {
	return &Tiered{local: local, remote: remote, ttl: localTTL}
}

// Name identifies the backend in metrics.
func (t *Tiered) Name() string { return t.local.Name() + "+" + t.remote.Name() }

// Get checks local, then remote.
func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool) {
	if v, ok := t.local.Get(ctx, key); ok {
		return v, true
	}
	v, ok := t.remote.Get(ctx, key)
	if ok {
		t.local.Set(ctx, key, v, t.ttl)
	}
	return v, ok
}

// Set writes both tiers. The local tier never keeps a value longer than
// the remote one.
func (t *Tiered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	localTTL := t.ttl
	if ttl > 0 && ttl < localTTL {
		localTTL = ttl
	}
	t.local.Set(ctx, key, value, localTTL)
	t.remote.Set(ctx, key, value, ttl)
}

// Close closes both tiers.
func (t *Tiered) Close() error {
	return errors.Join(t.local.Close(), t.remote.Close())
}
