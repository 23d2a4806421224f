// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/productrec/internal/recommend"
)

// Backend is a recommendation result cache with a lifecycle.
type Backend interface {
	recommend.ResultCache

	// Name identifies the backend in metrics and logs.
	Name() string

	// Close releases connections and background goroutines.
	Close() error
}

// Type selects a cache backend.
type Type string

const (
	// TypeNone disables result caching.
	TypeNone Type = "none"

	// TypeMemory is a process-local LRU cache with TTL (default).
	TypeMemory Type = "memory"

	// TypeRedis is a shared Redis cache.
	TypeRedis Type = "redis"

	// TypeTiered is a memory cache in front of Redis.
	TypeTiered Type = "tiered"
)

// Config holds configuration for creating a cache.
type Config struct {
	Type Type

	// TTL is the default time-to-live for memory entries.
	TTL time.Duration

	// Capacity is the maximum number of memory entries.
	Capacity int

	// CleanupInterval is how often expired memory entries are swept.
	CleanupInterval time.Duration

	Redis RedisConfig
}

// Open creates the backend described by cfg. TypeNone returns a nil
// Backend and no error.
//
//nolint:gocritic // hugeParam: cfg passed by value for immutability
func Open(ctx context.Context, cfg Config) (Backend, error) {
	switch cfg.Type {
	case TypeNone:
		return nil, nil
	case TypeMemory, "":
		return NewMemory(cfg.Capacity, cfg.TTL, cfg.CleanupInterval), nil
	case TypeRedis:
		return NewRedis(ctx, cfg.Redis)
	case TypeTiered:
		remote, err := NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		local := NewMemory(cfg.Capacity, cfg.TTL, cfg.CleanupInterval)
		return NewTiered(local, remote, local.ttl), nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}

// Verify interface implementations at compile time
var (
	_ Backend = (*Memory)(nil)
	_ Backend = (*Redis)(nil)
	_ Backend = (*Tiered)(nil)
)
