// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// validateMongoURI validates a MongoDB connection string.
// Supports: mongodb:// and mongodb+srv:// with one or more hosts.
func validateMongoURI(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("uri is required")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	if parsedURL.Scheme != "mongodb" && parsedURL.Scheme != "mongodb+srv" {
		return fmt.Errorf("scheme must be mongodb or mongodb+srv, got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("host is required (e.g., localhost:27017)")
	}

	return nil
}

// validateRedisAddr validates a Redis host:port address.
func validateRedisAddr(addr string) error {
	if addr == "" {
		return fmt.Errorf("address is required (e.g., localhost:6379)")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("must be host:port: %w", err)
	}
	if host == "" {
		return fmt.Errorf("host is required")
	}

	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got: %s", port)
	}

	return nil
}
