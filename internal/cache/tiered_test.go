// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package cache

import (
	"context"
	"testing"
	"time"
)

func TestTiered(t *testing.T) {
	local, _ := newTestMemory(t, 10)
	remote, _ := newTestMemory(t, 10)
	tiered := NewTiered(local, remote, 30*time.Second)
	ctx := context.Background()

	if got := tiered.Name(); got != "memory+memory" {
		t.Errorf("Name() = %q", got)
	}

	tiered.Set(ctx, "k", []byte("v"), time.Minute)
	if _, ok := local.Get(ctx, "k"); !ok {
		t.Error("Set did not write local tier")
	}
	if _, ok := remote.Get(ctx, "k"); !ok {
		t.Error("Set did not write remote tier")
	}

	// A value only in remote is promoted to local.
	remote.Set(ctx, "shared", []byte("from-remote"), time.Minute)
	got, ok := tiered.Get(ctx, "shared")
	if !ok || string(got) != "from-remote" {
		t.Fatalf("Get() = %q, %v", got, ok)
	}
	if _, ok := local.Get(ctx, "shared"); !ok {
		t.Error("remote hit was not copied to local")
	}

	if _, ok := tiered.Get(ctx, "missing"); ok {
		t.Error("Expected miss")
	}

	if err := tiered.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestTiered_LocalTTLBoundedByRemote(t *testing.T) {
	local, clock := newTestMemory(t, 10)
	remote, _ := newTestMemory(t, 10)
	tiered := NewTiered(local, remote, time.Hour)
	ctx := context.Background()

	tiered.Set(ctx, "k", []byte("v"), 5*time.Second)
	clock.Advance(10 * time.Second)

	if _, ok := local.Get(ctx, "k"); ok {
		t.Error("local entry outlived the requested ttl")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	b, err := Open(ctx, Config{Type: TypeNone})
	if err != nil || b != nil {
		t.Errorf("Open(none) = %v, %v; want nil, nil", b, err)
	}

	b, err = Open(ctx, Config{Type: TypeMemory, Capacity: 5, TTL: time.Second})
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	defer b.Close()
	if b.Name() != "memory" {
		t.Errorf("Name() = %q", b.Name())
	}

	if _, err := Open(ctx, Config{Type: "memcached"}); err == nil {
		t.Error("expected error for unknown type")
	}
	if _, err := Open(ctx, Config{Type: TypeRedis}); err == nil {
		t.Error("expected error for redis without address")
	}
}
