// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

// Package ratings loads user/product rating records for model training.
//
// A Source implements recommend.DataProvider. Three are available:
//
//   - CSVSource: a CSV export with a header row, parsed with encoding/csv.
//   - DuckDBSource: CSV or Parquet scanned by an in-process DuckDB
//     connection, or any custom SQL returning (user, product, rating).
//   - MongoSource: a MongoDB collection with flat rating documents.
//
// Sources do not filter. Rows with a missing ID or a non-numeric rating
// are returned as invalid records (empty ID or NaN rating) and the
// matrix builder drops and counts them, so training status can report how
// many rows were discarded.
//
// Limit wraps any source to keep only its first n valid records, which is
// how a development run trains on a slice of a large export.
package ratings
