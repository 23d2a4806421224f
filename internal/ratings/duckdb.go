// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package ratings

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver registration

	"github.com/tomtom215/productrec/internal/recommend"
)

// DuckDBSource reads rating records through an in-process DuckDB
// connection. CSV and Parquet files are scanned directly with
// read_csv_auto / read_parquet, which is considerably faster than
// encoding/csv for multi-million row exports.
type DuckDBSource struct {
	conn    *sql.DB
	path    string
	query   string
	columns Columns
}

// NewDuckDBSource opens an in-memory DuckDB connection for path.
// When query is non-empty it is executed as-is and must return user,
// product and rating as its first three columns, with the rating as DOUBLE.
func NewDuckDBSource(path, query string, columns Columns) (*DuckDBSource, error) {
	if path == "" && query == "" {
		return nil, fmt.Errorf("duckdb source requires a path or a query")
	}

	conn, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	s := &DuckDBSource{
		conn:    conn,
		path:    path,
		query:   query,
		columns: columns.withDefaults(),
	}
	if s.query == "" {
		s.query = buildRatingsQuery(path, s.columns)
	}
	return s, nil
}

// Name identifies the source.
func (s *DuckDBSource) Name() string {
	if s.path == "" {
		return "duckdb:query"
	}
	return "duckdb:" + s.path
}

// Close closes the DuckDB connection.
func (s *DuckDBSource) Close() error {
	return s.conn.Close()
}

// LoadRatings runs the ratings query. NULL or non-numeric ratings become
// NaN so the matrix builder counts them as dropped.
func (s *DuckDBSource) LoadRatings(ctx context.Context) ([]recommend.RatingRecord, error) {
	rows, err := s.conn.QueryContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // error surfaced via rows.Err

	records := make([]recommend.RatingRecord, 0, 1024)
	for rows.Next() {
		var (
			user, product sql.NullString
			rating        sql.NullFloat64
		)
		if err := rows.Scan(&user, &product, &rating); err != nil {
			return nil, fmt.Errorf("failed to scan rating row: %w", err)
		}

		rec := recommend.RatingRecord{Rating: math.NaN()}
		if user.Valid {
			rec.UserID = strings.TrimSpace(user.String)
		}
		if product.Valid {
			rec.ProductID = strings.TrimSpace(product.String)
		}
		if rating.Valid {
			rec.Rating = rating.Float64
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ratings: %w", err)
	}

	return records, nil
}

// buildRatingsQuery renders the default scan query for path. IDs are cast
// to VARCHAR so numeric-looking IDs keep their textual form, and ratings
// go through TRY_CAST so malformed values surface as NULL.
func buildRatingsQuery(path string, cols Columns) string {
	reader := fmt.Sprintf("read_csv_auto(%s, header=true, all_varchar=true)", quoteLiteral(path))
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		reader = fmt.Sprintf("read_parquet(%s)", quoteLiteral(path))
	}

	return fmt.Sprintf(
		"SELECT CAST(%s AS VARCHAR), CAST(%s AS VARCHAR), TRY_CAST(%s AS DOUBLE) FROM %s",
		quoteIdent(cols.User), quoteIdent(cols.Product), quoteIdent(cols.Rating), reader,
	)
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
