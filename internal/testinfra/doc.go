// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

// Package testinfra provides container-backed infrastructure for
// integration tests.
//
// Containers are started with testcontainers-go and are only compiled
// with the integration build tag:
//
//	go test -tags integration ./internal/testinfra/...
//
// # Containers
//
//   - MongoContainer runs MongoDB for the mongo rating source.
//   - RedisContainer runs Redis for the redis result cache backend.
//
// Tests call SkipIfNoDocker first so they are skipped gracefully where
// Docker is unavailable. The first run downloads the images.
package testinfra
