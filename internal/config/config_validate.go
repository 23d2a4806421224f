// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package config

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/productrec/internal/validation"
)

// validLogLevels contains valid log level values
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats contains valid log format values
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateSource(); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateRecommend checks limits that depend on each other
func (c *Config) validateRecommend() error {
	if c.Recommend.MaxNeighbors < c.Recommend.Neighbors {
		return fmt.Errorf("RECOMMEND_MAX_NEIGHBORS (%d) must be >= RECOMMEND_NEIGHBORS (%d)",
			c.Recommend.MaxNeighbors, c.Recommend.Neighbors)
	}
	return nil
}

// validateSource validates the rating source for the selected type
func (c *Config) validateSource() error {
	switch c.Source.Type {
	case "csv":
		if c.Source.Path == "" {
			return fmt.Errorf("RATINGS_PATH is required when RATINGS_SOURCE=csv")
		}
	case "duckdb":
		if c.Source.Path == "" && c.Source.Query == "" {
			return fmt.Errorf("RATINGS_PATH or RATINGS_QUERY is required when RATINGS_SOURCE=duckdb")
		}
	case "mongo":
		if err := validateMongoURI(c.Source.Mongo.URI); err != nil {
			return fmt.Errorf("MONGO_URI is invalid: %w", err)
		}
		if c.Source.Mongo.Database == "" || c.Source.Mongo.Collection == "" {
			return fmt.Errorf("MONGO_DATABASE and MONGO_COLLECTION are required when RATINGS_SOURCE=mongo")
		}
	}
	return nil
}

// validateStore validates the model store
func (c *Config) validateStore() error {
	if c.Store.Type != "memory" && c.Store.Path == "" {
		return fmt.Errorf("MODEL_STORE_PATH is required when MODEL_STORE=%s", c.Store.Type)
	}
	return nil
}

// validateCache validates the result cache backend
func (c *Config) validateCache() error {
	if c.Cache.Type != "redis" && c.Cache.Type != "tiered" {
		return nil
	}
	if err := validateRedisAddr(c.Cache.Redis.Addr); err != nil {
		return fmt.Errorf("REDIS_ADDR is invalid: %w", err)
	}
	return nil
}

// validateSecurity validates admin credentials, CORS and rate limits
func (c *Config) validateSecurity() error {
	if err := c.validateAdmin(); err != nil {
		return err
	}

	if err := c.validateCORS(); err != nil {
		return err
	}

	return c.validateRateLimits()
}

// validateAdmin checks that admin credentials are complete and, in
// production, that a plaintext password meets the password policy.
func (c *Config) validateAdmin() error {
	s := &c.Security
	hasSecret := s.AdminPassword != "" || s.AdminPasswordHash != ""

	if s.AdminUsername == "" && hasSecret {
		return fmt.Errorf("ADMIN_USERNAME is required when an admin password is set")
	}
	if s.AdminUsername != "" && !hasSecret {
		return fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required when ADMIN_USERNAME is set")
	}
	if s.AdminPassword != "" && s.AdminPasswordHash != "" {
		return fmt.Errorf("set only one of ADMIN_PASSWORD and ADMIN_PASSWORD_HASH")
	}

	if s.AdminPasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(s.AdminPasswordHash)); err != nil {
			return fmt.Errorf("ADMIN_PASSWORD_HASH is not a bcrypt hash: %w", err)
		}
	}

	if s.AdminPassword != "" {
		if containsPlaceholder(s.AdminPassword) {
			return fmt.Errorf("ADMIN_PASSWORD contains a placeholder value, set a real password")
		}
		if c.Server.IsProduction() {
			if err := DefaultPasswordPolicy().ValidateWithError(s.AdminPassword, s.AdminUsername); err != nil {
				return fmt.Errorf("ADMIN_PASSWORD does not meet the password policy: %w", err)
			}
		}
	}

	return nil
}

// validateCORS rejects wildcard origins in production when the admin
// endpoint is enabled, since browsers would send credentials from any site.
func (c *Config) validateCORS() error {
	if !c.Server.IsProduction() || !c.Security.AdminEnabled() {
		return nil
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("CORS_ORIGINS must not contain '*' in production when admin credentials are set")
		}
	}
	return nil
}

// validateRateLimits checks rate limiting bounds
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1 when rate limiting is enabled")
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_PASSWORD",
	"PLACEHOLDER",
}

func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, p := range placeholderPatterns {
		if strings.Contains(upper, p) {
			return true
		}
	}
	return false
}
