// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	r, err := NewRedis(context.Background(), RedisConfig{Addr: mr.Addr(), Prefix: "test:"})
	if err != nil {
		t.Fatalf("NewRedis() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

func TestRedisGetSet(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	if _, ok := r.Get(ctx, "rec:1"); ok {
		t.Error("Expected miss on empty redis")
	}

	r.Set(ctx, "rec:1", []byte(`{"items":[]}`), time.Minute)

	got, ok := r.Get(ctx, "rec:1")
	if !ok || string(got) != `{"items":[]}` {
		t.Errorf("Get() = %q, %v", got, ok)
	}

	// Keys are namespaced by the prefix.
	if !mr.Exists("test:rec:1") {
		t.Error("expected prefixed key in redis")
	}
	if ttl := mr.TTL("test:rec:1"); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok := r.Get(ctx, "rec:1"); ok {
		t.Error("Expected entry to expire")
	}
}

func TestRedisMissDoesNotTripBreaker(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		r.Get(ctx, "missing")
	}
	if state := r.breaker.State(); state != gobreaker.StateClosed {
		t.Errorf("breaker state = %v after misses, want closed", state)
	}
}

func TestRedisOutageOpensBreaker(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	r.Set(ctx, "k", []byte("v"), time.Minute)
	mr.Close()

	for i := 0; i < int(DefaultBreakerConfig().FailureThreshold); i++ {
		if _, ok := r.Get(ctx, "k"); ok {
			t.Fatal("Get succeeded with redis down")
		}
	}
	if state := r.breaker.State(); state != gobreaker.StateOpen {
		t.Fatalf("breaker state = %v, want open", state)
	}

	// Rejected calls return immediately as misses.
	start := time.Now()
	if _, ok := r.Get(ctx, "k"); ok {
		t.Error("Get succeeded with breaker open")
	}
	r.Set(ctx, "k", []byte("v"), time.Minute)
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("open breaker calls took %v", elapsed)
	}
}

func TestNewRedisErrors(t *testing.T) {
	if _, err := NewRedis(context.Background(), RedisConfig{}); err == nil {
		t.Error("expected error without address")
	}

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedis(context.Background(), RedisConfig{Addr: addr}); err == nil {
		t.Error("expected ping error for closed server")
	}
}

func TestNewRedisWithClient_DoesNotCloseClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	r := NewRedisWithClient(client, RedisConfig{})
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Errorf("shared client closed: %v", err)
	}
}
