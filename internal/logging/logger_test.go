// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"disabled", zerolog.Disabled},
		{"INFO", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestInit_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Info().Str("isbn", "978-0-452-28423-4").Msg("Book created")

	out := buf.String()
	if !strings.Contains(out, `"isbn":"978-0-452-28423-4"`) {
		t.Errorf("expected structured field in output, got %q", out)
	}
	if !strings.Contains(out, `"message":"Book created"`) {
		t.Errorf("expected message in output, got %q", out)
	}
}

func TestNewTestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)

	logger.Info().Int("count", 3).Msg("test")

	if !strings.Contains(buf.String(), `"count":3`) {
		t.Errorf("expected count field, got %q", buf.String())
	}
}

func TestSlogHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	handler := &SlogHandler{logger: NewTestLogger(&buf)}
	slogger := slog.New(handler)

	slogger.Info("supervisor event", "service", "http-server", "restarts", int64(2))

	out := buf.String()
	if !strings.Contains(out, `"service":"http-server"`) {
		t.Errorf("expected service attr, got %q", out)
	}
	if !strings.Contains(out, `"restarts":2`) {
		t.Errorf("expected restarts attr, got %q", out)
	}
	if !strings.Contains(out, "supervisor event") {
		t.Errorf("expected message, got %q", out)
	}
}

func TestSlogHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	handler := &SlogHandler{logger: NewTestLogger(&buf)}
	slogger := slog.New(handler).WithGroup("suture").With("tree", "librarium")

	slogger.Warn("service failed")

	if !strings.Contains(buf.String(), `"suture.tree":"librarium"`) {
		t.Errorf("expected grouped attr, got %q", buf.String())
	}
}
