// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/productrec/internal/logging"
	"github.com/tomtom215/productrec/internal/metrics"
)

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// Prefix is prepended to every key so several deployments can share
	// one Redis database.
	Prefix string

	// Timeout bounds every Redis round trip.
	Timeout time.Duration

	Breaker BreakerConfig
}

const defaultRedisTimeout = 200 * time.Millisecond

// Redis stores cached results in Redis behind a circuit breaker.
//
// Failures never propagate to the caller: a failed Get is a miss and a
// failed Set is dropped, so recommendations keep working while Redis is
// down.
type Redis struct {
	client     *redis.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	prefix     string
	timeout    time.Duration
	ownsClient bool
}

// NewRedis connects to Redis and pings it.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close() //nolint:errcheck // ping error takes precedence
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}

	r := NewRedisWithClient(client, cfg)
	r.ownsClient = true
	return r, nil
}

// NewRedisWithClient wraps an existing client. Close does not close it.
func NewRedisWithClient(client *redis.Client, cfg RedisConfig) *Redis {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRedisTimeout
	}
	return &Redis{
		client:  client,
		breaker: newBreaker("redis-cache", cfg.Breaker, isRedisSuccess),
		prefix:  cfg.Prefix,
		timeout: timeout,
	}
}

// isRedisSuccess treats a missing key as a successful round trip.
func isRedisSuccess(err error) bool {
	return err == nil || errors.Is(err, redis.Nil)
}

// Name identifies the backend in metrics.
func (r *Redis) Name() string { return "redis" }

// Get fetches key. Errors and an open breaker are reported as misses.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	value, err := r.breaker.Execute(func() ([]byte, error) {
		return r.client.Get(ctx, r.prefix+key).Bytes()
	})
	switch {
	case err == nil:
		r.recordBreaker("success")
		metrics.RecordCacheOperation(r.Name(), "get", "hit")
		return value, true
	case errors.Is(err, redis.Nil):
		r.recordBreaker("success")
		metrics.RecordCacheOperation(r.Name(), "get", "miss")
		return nil, false
	default:
		r.recordFailure("get", err)
		return nil, false
	}
}

// Set stores value with ttl. Errors are logged and dropped.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.breaker.Execute(func() ([]byte, error) {
		return nil, r.client.Set(ctx, r.prefix+key, value, ttl).Err()
	})
	if err != nil {
		r.recordFailure("set", err)
		return
	}
	r.recordBreaker("success")
	metrics.RecordCacheOperation(r.Name(), "set", "ok")
}

// Close closes the client if NewRedis created it.
func (r *Redis) Close() error {
	if !r.ownsClient {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) recordFailure(op string, err error) {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		r.recordBreaker("rejected")
		metrics.RecordCacheOperation(r.Name(), op, "rejected")
		return
	}
	r.recordBreaker("failure")
	metrics.RecordCacheOperation(r.Name(), op, "error")
	logging.Debug().Err(err).Str("operation", op).Msg("Redis cache operation failed")
}

func (r *Redis) recordBreaker(result string) {
	metrics.CircuitBreakerRequests.WithLabelValues("redis-cache", result).Inc()
}
