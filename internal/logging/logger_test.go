// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
	if cfg.Caller {
		t.Error("Caller = true, want false")
	}
	if !cfg.Timestamp {
		t.Error("Timestamp = false, want true")
	}
}

// Init mutates process-wide state, so these tests do not run in parallel.
func TestInit(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	l := WithComponent("sampler")
	l.Info().Int("epoch", 2).Msg("test message")

	out := buf.String()
	for _, want := range []string{`"message":"test message"`, `"level":"info"`, `"component":"sampler"`, `"epoch":2`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestInit_Console(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: "console", Output: &buf})
	defer Init(DefaultConfig())

	Info().Msg("hidden")
	Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn message missing: %s", out)
	}
}

func TestDebugAndErr(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Debug().Msg("below level")
	Err(errors.New("disk full")).Msg("command failed")

	out := buf.String()
	if strings.Contains(out, "below level") {
		t.Errorf("debug message written at info level: %s", out)
	}
	for _, want := range []string{`"level":"error"`, `"error":"disk full"`, `"message":"command failed"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}

	buf.Reset()
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	Debug().Msg("at level")
	if !strings.Contains(buf.String(), `"level":"debug"`) {
		t.Errorf("debug message missing: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestRunIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if got := RunIDFromContext(ctx); got != "" {
		t.Errorf("RunIDFromContext(empty) = %q, want empty", got)
	}

	id := NewRunID()
	if len(id) != 36 {
		t.Errorf("NewRunID() = %q, want a uuid", id)
	}
	if id == NewRunID() {
		t.Error("NewRunID() returned the same id twice")
	}

	ctx = ContextWithRunID(ctx, id)
	if got := RunIDFromContext(ctx); got != id {
		t.Errorf("RunIDFromContext() = %q, want %q", got, id)
	}

	var buf bytes.Buffer
	l := Ctx(ctx, NewTestLogger(&buf))
	l.Info().Msg("with run")
	if !strings.Contains(buf.String(), `"run_id":"`+id+`"`) {
		t.Errorf("run_id missing from output: %s", buf.String())
	}
}
