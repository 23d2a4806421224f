// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package ratings

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/productrec/internal/recommend"
)

// Source types accepted by Open.
const (
	TypeCSV    = "csv"
	TypeDuckDB = "duckdb"
	TypeMongo  = "mongo"
)

// Default column names, matching the Amazon ratings export layout.
const (
	DefaultUserColumn    = "UserId"
	DefaultProductColumn = "ProductId"
	DefaultRatingColumn  = "Rating"
)

// Source is a rating record provider with a lifecycle.
type Source interface {
	recommend.DataProvider

	// Name identifies the source in logs and metrics.
	Name() string

	// Close releases connections held by the source.
	Close() error
}

// Columns names the user, product and rating fields of a source.
type Columns struct {
	User    string
	Product string
	Rating  string
}

// withDefaults fills empty column names.
func (c Columns) withDefaults() Columns {
	if c.User == "" {
		c.User = DefaultUserColumn
	}
	if c.Product == "" {
		c.Product = DefaultProductColumn
	}
	if c.Rating == "" {
		c.Rating = DefaultRatingColumn
	}
	return c
}

// MongoConfig configures the MongoDB source.
type MongoConfig struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// Config selects and configures a rating source.
type Config struct {
	// Type is one of TypeCSV, TypeDuckDB or TypeMongo.
	Type string

	// Path is the CSV (or Parquet, for duckdb) file to read.
	Path string

	// Query replaces the generated DuckDB query when set. It must return
	// user, product and rating as its first three columns.
	Query string

	// Columns names the source fields.
	Columns Columns

	// Mongo configures the mongo source.
	Mongo MongoConfig

	// Limit keeps only the first Limit valid records. Zero means no limit.
	Limit int
}

// Open creates the source described by cfg, wrapping it with Limit when
// cfg.Limit is positive.
//
//nolint:gocritic // hugeParam: cfg passed by value for immutability
func Open(ctx context.Context, cfg Config) (Source, error) {
	cfg.Columns = cfg.Columns.withDefaults()

	var (
		src Source
		err error
	)
	switch cfg.Type {
	case TypeCSV:
		src, err = NewCSVSource(cfg.Path, cfg.Columns)
	case TypeDuckDB:
		src, err = NewDuckDBSource(cfg.Path, cfg.Query, cfg.Columns)
	case TypeMongo:
		src, err = NewMongoSource(ctx, cfg.Mongo, cfg.Columns)
	default:
		return nil, fmt.Errorf("unknown rating source type %q", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Limit > 0 {
		return Limit(src, cfg.Limit), nil
	}
	return src, nil
}

// limited truncates another source to its first n valid records.
type limited struct {
	Source
	n int
}

// Limit returns a source yielding only the first n valid records of src.
// Invalid records are skipped and do not count toward n.
func Limit(src Source, n int) Source {
	return &limited{Source: src, n: n}
}

func (l *limited) Name() string {
	return fmt.Sprintf("%s(limit=%d)", l.Source.Name(), l.n)
}

func (l *limited) LoadRatings(ctx context.Context) ([]recommend.RatingRecord, error) {
	records, err := l.Source.LoadRatings(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]recommend.RatingRecord, 0, min(len(records), l.n))
	for _, r := range records {
		if len(out) == l.n {
			break
		}
		if r.Valid() {
			out = append(out, r)
		}
	}
	return out, nil
}

// parseRating parses a rating field. Unparseable or empty values become
// NaN so the matrix builder drops and counts them.
func parseRating(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// asString converts a loosely typed document field to an ID string.
func asString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return ""
	}
}

// asFloat64 converts a loosely typed document field to a rating.
// Missing or non-numeric values become NaN.
func asFloat64(v any) float64 {
	switch x := v.(type) {
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case int:
		return float64(x)
	case float64:
		return x
	case float32:
		return float64(x)
	case string:
		return parseRating(x)
	default:
		return math.NaN()
	}
}
