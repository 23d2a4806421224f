// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected default format 'json', got '%s'", cfg.Format)
	}
	if cfg.Caller {
		t.Error("expected default caller to be false")
	}
	if !cfg.Timestamp {
		t.Error("expected default timestamp to be true")
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Timestamp: true, Output: &buf})
	defer Init(DefaultConfig())

	Info().Str("source", "csv").Msg("loading ratings")
	Debug().Msg("debug message")

	output := buf.String()
	for _, want := range []string{`"message":"loading ratings"`, `"level":"info"`, `"source":"csv"`, "debug message"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s: %s", want, output)
		}
	}
}

func TestInit_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	defer Init(DefaultConfig())

	Info().Msg("hidden")
	Warn().Msg("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("info message written at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn message missing")
	}
}

func TestInit_Console(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "console", Output: &buf})
	defer Init(DefaultConfig())

	Info().Msg("console output")

	if strings.Contains(buf.String(), `"message"`) {
		t.Errorf("console output looks like JSON: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "console output") {
		t.Errorf("message missing: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{" ERROR ", zerolog.ErrorLevel},
		{"fatal", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSetLevelString(t *testing.T) {
	defer Init(DefaultConfig())

	SetLevelString("error")
	if GetLevel() != zerolog.ErrorLevel {
		t.Errorf("GetLevel() = %v, want error", GetLevel())
	}

	SetLevelString("nonsense")
	if GetLevel() != zerolog.InfoLevel {
		t.Errorf("GetLevel() after unknown level = %v, want info", GetLevel())
	}
}

func TestSetLoggerAndWithComponent(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	defer Init(DefaultConfig())

	logger := WithComponent("trainer")
	logger.Info().Msg("started")
	Error().Err(errors.New("boom")).Msg("failed")

	output := buf.String()
	if !strings.Contains(output, `"component":"trainer"`) {
		t.Errorf("component field missing: %s", output)
	}
	if !strings.Contains(output, `"error":"boom"`) {
		t.Errorf("error field missing: %s", output)
	}
}
