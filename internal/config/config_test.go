// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package config

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/productrec/internal/cache"
)

func TestConfigValidate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Sturdy-Admin-Pass-42"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name: "duckdb with query only",
			mutate: func(c *Config) {
				c.Source.Type = "duckdb"
				c.Source.Path = ""
				c.Source.Query = "SELECT 'u', 'p', 1.0::DOUBLE"
			},
		},
		{
			name: "duckdb without path or query",
			mutate: func(c *Config) {
				c.Source.Type = "duckdb"
				c.Source.Path = ""
			},
			wantErr: "RATINGS_PATH or RATINGS_QUERY",
		},
		{
			name: "csv without path",
			mutate: func(c *Config) {
				c.Source.Path = ""
			},
			wantErr: "RATINGS_PATH is required",
		},
		{
			name: "mongo with bad scheme",
			mutate: func(c *Config) {
				c.Source.Type = "mongo"
				c.Source.Mongo = MongoSourceConfig{URI: "http://localhost", Database: "db", Collection: "c"}
			},
			wantErr: "MONGO_URI",
		},
		{
			name: "mongo without collection",
			mutate: func(c *Config) {
				c.Source.Type = "mongo"
				c.Source.Mongo = MongoSourceConfig{URI: "mongodb://localhost:27017", Database: "db"}
			},
			wantErr: "MONGO_COLLECTION",
		},
		{
			name: "file store without path",
			mutate: func(c *Config) {
				c.Store.Path = ""
			},
			wantErr: "MODEL_STORE_PATH",
		},
		{
			name: "memory store without path",
			mutate: func(c *Config) {
				c.Store.Type = "memory"
				c.Store.Path = ""
			},
		},
		{
			name: "redis with bad address",
			mutate: func(c *Config) {
				c.Cache.Type = "redis"
				c.Cache.Redis.Addr = "localhost"
			},
			wantErr: "REDIS_ADDR",
		},
		{
			name: "max neighbors below neighbors",
			mutate: func(c *Config) {
				c.Recommend.Neighbors = 10
				c.Recommend.MaxNeighbors = 5
			},
			wantErr: "RECOMMEND_MAX_NEIGHBORS",
		},
		{
			name: "admin without password",
			mutate: func(c *Config) {
				c.Security.AdminUsername = "admin"
			},
			wantErr: "ADMIN_PASSWORD or ADMIN_PASSWORD_HASH",
		},
		{
			name: "password without admin",
			mutate: func(c *Config) {
				c.Security.AdminPassword = "secret"
			},
			wantErr: "ADMIN_USERNAME is required",
		},
		{
			name: "both password and hash",
			mutate: func(c *Config) {
				c.Security.AdminUsername = "admin"
				c.Security.AdminPassword = "secret"
				c.Security.AdminPasswordHash = string(hash)
			},
			wantErr: "only one of",
		},
		{
			name: "invalid hash",
			mutate: func(c *Config) {
				c.Security.AdminUsername = "admin"
				c.Security.AdminPasswordHash = "not-a-hash"
			},
			wantErr: "not a bcrypt hash",
		},
		{
			name: "valid hash",
			mutate: func(c *Config) {
				c.Security.AdminUsername = "admin"
				c.Security.AdminPasswordHash = string(hash)
			},
		},
		{
			name: "placeholder password",
			mutate: func(c *Config) {
				c.Security.AdminUsername = "admin"
				c.Security.AdminPassword = "changeme"
			},
			wantErr: "placeholder",
		},
		{
			name: "weak password allowed in development",
			mutate: func(c *Config) {
				c.Security.AdminUsername = "admin"
				c.Security.AdminPassword = "devpass1"
			},
		},
		{
			name: "weak password rejected in production",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.Security.CORSOrigins = []string{"https://shop.example"}
				c.Security.AdminUsername = "admin"
				c.Security.AdminPassword = "devpass1"
			},
			wantErr: "password policy",
		},
		{
			name: "wildcard cors in production with admin",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.Security.AdminUsername = "admin"
				c.Security.AdminPasswordHash = string(hash)
			},
			wantErr: "CORS_ORIGINS",
		},
		{
			name: "wildcard cors in production without admin",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
			},
		},
		{
			name: "rate limit without requests",
			mutate: func(c *Config) {
				c.Security.RateLimitReqs = 0
			},
			wantErr: "RATE_LIMIT_REQUESTS",
		},
		{
			name: "rate limit disabled",
			mutate: func(c *Config) {
				c.Security.RateLimitDisabled = true
				c.Security.RateLimitReqs = 0
			},
		},
		{
			name: "bad log format",
			mutate: func(c *Config) {
				c.Logging.Format = "xml"
			},
			wantErr: "LOG_FORMAT",
		},
		{
			name: "unknown environment",
			mutate: func(c *Config) {
				c.Server.Environment = "qa"
			},
			wantErr: "Environment",
		},
		{
			name: "zero write timeout",
			mutate: func(c *Config) {
				c.Server.WriteTimeout = 0
			},
			wantErr: "WriteTimeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestRecommendConfigEngineConfig(t *testing.T) {
	r := defaultConfig().Recommend
	r.Neighbors = 6
	r.ExcludeSelf = true
	r.TrainInterval = time.Hour
	r.CacheTTL = 0

	cfg := r.EngineConfig()
	if cfg.Model.Neighbors != 6 || !cfg.Model.ExcludeSelf {
		t.Errorf("Model = %+v", cfg.Model)
	}
	if cfg.Training.Interval != time.Hour {
		t.Errorf("Training.Interval = %v, want 1h", cfg.Training.Interval)
	}
	if cfg.Cache.Enabled {
		t.Error("zero CacheTTL should disable result caching")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("converted engine config invalid: %v", err)
	}
}

func TestSourceConfigRatingsConfig(t *testing.T) {
	s := SourceConfig{
		Type:          "mongo",
		UserColumn:    "reviewer",
		ProductColumn: "asin",
		RatingColumn:  "overall",
		Limit:         5000,
		Mongo:         MongoSourceConfig{URI: "mongodb://db:27017", Database: "shop", Collection: "reviews"},
	}

	cfg := s.RatingsConfig()
	if cfg.Columns.User != "reviewer" || cfg.Columns.Product != "asin" || cfg.Columns.Rating != "overall" {
		t.Errorf("Columns = %+v", cfg.Columns)
	}
	if cfg.Limit != 5000 {
		t.Errorf("Limit = %d, want 5000", cfg.Limit)
	}
	if cfg.Mongo.Collection != "reviews" {
		t.Errorf("Mongo.Collection = %q", cfg.Mongo.Collection)
	}
}

func TestCacheConfigBackendConfig(t *testing.T) {
	c := defaultConfig().Cache
	c.Type = "tiered"

	cfg := c.BackendConfig()
	if cfg.Type != cache.TypeTiered {
		t.Errorf("Type = %q, want tiered", cfg.Type)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.Prefix != "productrec:" {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if cfg.Redis.Breaker.FailureThreshold == 0 {
		t.Error("breaker defaults should be applied")
	}
}

func TestServerConfigAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 5000}
	if got := s.Addr(); got != "127.0.0.1:5000" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestValidateRedisAddr(t *testing.T) {
	tests := []struct {
		addr    string
		wantErr bool
	}{
		{"localhost:6379", false},
		{"10.0.0.5:6380", false},
		{"", true},
		{"localhost", true},
		{":6379", true},
		{"localhost:0", true},
		{"localhost:abc", true},
	}
	for _, tt := range tests {
		if err := validateRedisAddr(tt.addr); (err != nil) != tt.wantErr {
			t.Errorf("validateRedisAddr(%q) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
		}
	}
}

func TestValidateMongoURI(t *testing.T) {
	tests := []struct {
		uri     string
		wantErr bool
	}{
		{"mongodb://localhost:27017", false},
		{"mongodb+srv://cluster0.example.net", false},
		{"mongodb://user:pass@a:27017,b:27017/?replicaSet=rs0", false},
		{"", true},
		{"postgres://localhost", true},
		{"mongodb://", true},
	}
	for _, tt := range tests {
		if err := validateMongoURI(tt.uri); (err != nil) != tt.wantErr {
			t.Errorf("validateMongoURI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
		}
	}
}
