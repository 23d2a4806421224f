// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

/*
Package cache provides result caches for recommendation responses.

Every backend implements recommend.ResultCache: opaque byte values keyed
by strings, with a per-entry TTL. Keys produced by the engine embed the
model version, so a retrain makes old entries unreachable without an
explicit flush.

# Backends

  - Memory: process-local cache with TTL and an LRU capacity bound. A
    background sweep removes expired entries until Close.
  - Redis: shared cache on go-redis, behind a sony/gobreaker circuit
    breaker. Errors degrade to misses; a cache outage never fails a
    request.
  - Tiered: Memory in front of Redis.

# Usage

	backend, err := cache.Open(ctx, cache.Config{
	    Type:     cache.TypeMemory,
	    TTL:      5 * time.Minute,
	    Capacity: 10000,
	})
	if err != nil {
	    return err
	}
	if backend != nil {
	    defer backend.Close()
	    engine.SetCache(backend)
	}

# Metrics

Gets and sets are counted in cache_operations_total by backend and
result; the Redis breaker publishes circuit_breaker_state.
*/
package cache
