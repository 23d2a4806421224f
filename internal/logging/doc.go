// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

// Package logging provides centralized zerolog-based structured logging.
//
// JSON output is the default. Console output is meant for local runs.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("source", "csv:/data/Reviews.csv").Msg("Loading ratings")
//	logging.Error().Err(err).Msg("Training failed")
//
//	// Request-scoped fields
//	logging.Ctx(ctx).Info().Str("user_id", id).Msg("Recommendation served")
//
// # Configuration
//
// Level, format and caller output come from the logging section of the
// service configuration (LOG_LEVEL, LOG_FORMAT, LOG_CALLER).
//
// # Components
//
//   - Ctx: adds request_id and run_id fields found in a context
//   - WithComponent: child logger with a component field
//   - SlogHandler: slog.Handler backed by zerolog, used for sutureslog
//   - SecurityLogger: admin authentication and action events with
//     usernames masked
//
// Always terminate log chains with .Msg() or .Send(); an event that is
// never sent is never written.
package logging
