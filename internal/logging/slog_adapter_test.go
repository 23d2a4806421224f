// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogHandler_Handle(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(NewTestLogger(&buf)))

	logger.Warn("service restarted",
		"service", "retrain",
		"attempt", 3,
		"ratio", 0.5,
		"backoff", 2*time.Second,
		"ok", false,
		"err", errors.New("panic recovered"),
	)

	output := buf.String()
	for _, want := range []string{
		`"level":"warn"`,
		`"message":"service restarted"`,
		`"service":"retrain"`,
		`"attempt":3`,
		`"ratio":0.5`,
		`"ok":false`,
		`"err":"panic recovered"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s: %s", want, output)
		}
	}
}

func TestSlogHandler_WithAttrsAndGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(NewTestLogger(&buf))).
		With("supervisor", "root").
		WithGroup("event").
		WithGroup("service")

	logger.Info("started", "name", "http", slog.Group("timing", "ms", 12))

	output := buf.String()
	for _, want := range []string{`"supervisor":"root"`, `"event.service.name":"http"`, `"event.service.timing.ms":12`} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s: %s", want, output)
		}
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()

	h := NewSlogHandlerWithLogger(zerolog.New(nil).Level(zerolog.WarnLevel))
	ctx := context.Background()

	if h.Enabled(ctx, slog.LevelInfo) {
		t.Error("info should be disabled on a warn logger")
	}
	if !h.Enabled(ctx, slog.LevelError) {
		t.Error("error should be enabled on a warn logger")
	}
}

func TestSlogHandler_EmptyModifiers(t *testing.T) {
	t.Parallel()

	h := NewSlogHandler()
	if h.WithGroup("") != h {
		t.Error("WithGroup(\"\") should return the same handler")
	}
	if h.WithAttrs(nil) != h {
		t.Error("WithAttrs(nil) should return the same handler")
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   slog.Level
		want zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
		{slog.LevelError + 4, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		if got := slogToZerologLevel(tt.in); got != tt.want {
			t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
