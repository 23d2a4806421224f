// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package ratings

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tomtom215/productrec/internal/recommend"
)

// CSVSource reads rating records from a CSV file with a header row.
type CSVSource struct {
	path    string
	columns Columns
}

// NewCSVSource creates a source for the CSV file at path. The header row
// must contain the configured column names (matched case-insensitively).
func NewCSVSource(path string, columns Columns) (*CSVSource, error) {
	if path == "" {
		return nil, fmt.Errorf("csv source path is required")
	}
	return &CSVSource{path: path, columns: columns.withDefaults()}, nil
}

// Name identifies the source.
func (s *CSVSource) Name() string { return "csv:" + s.path }

// Close is a no-op; the file is opened per load.
func (s *CSVSource) Close() error { return nil }

// LoadRatings reads the whole file.
func (s *CSVSource) LoadRatings(ctx context.Context) ([]recommend.RatingRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open ratings file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

	return ReadCSV(ctx, f, s.columns)
}

// ReadCSV parses rating records from r.
//
// Rows with missing fields or an unparseable rating are returned as
// invalid records (empty IDs or a NaN rating) so that the matrix builder
// drops and counts them. Only a missing column in the header is an error.
func ReadCSV(ctx context.Context, r io.Reader, columns Columns) ([]recommend.RatingRecord, error) {
	columns = columns.withDefaults()

	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []recommend.RatingRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	userIdx, productIdx, ratingIdx, err := headerIndexes(header, columns)
	if err != nil {
		return nil, err
	}

	records := make([]recommend.RatingRecord, 0, 1024)
	for line := 2; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				records = append(records, recommend.RatingRecord{})
				continue
			}
			return nil, fmt.Errorf("read ratings line %d: %w", line, err)
		}

		records = append(records, recommend.RatingRecord{
			UserID:    field(row, userIdx),
			ProductID: field(row, productIdx),
			Rating:    parseRating(field(row, ratingIdx)),
		})
	}

	return records, nil
}

func headerIndexes(header []string, columns Columns) (user, product, rating int, err error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	lookup := func(name string) (int, error) {
		i, ok := index[strings.ToLower(name)]
		if !ok {
			return 0, fmt.Errorf("ratings header has no %q column", name)
		}
		return i, nil
	}

	if user, err = lookup(columns.User); err != nil {
		return
	}
	if product, err = lookup(columns.Product); err != nil {
		return
	}
	rating, err = lookup(columns.Rating)
	return
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
