// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-json"
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
		{"panic", zerolog.PanicLevel},
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

func TestInitJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Info().Str("camera_id", "cam1").Msg("event received")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (got %q)", err, buf.String())
	}
	if entry["camera_id"] != "cam1" {
		t.Errorf("camera_id = %v, want cam1", entry["camera_id"])
	}
	if entry["message"] != "event received" {
		t.Errorf("message = %v, want 'event received'", entry["message"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Debug().Msg("should not appear")
	Info().Msg("should not appear either")
	Warn().Msg("visible")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("sub-warn messages were emitted: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn message missing from output: %q", out)
	}
}

func TestNewTestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)
	logger.Info().Str("key", "value").Msg("test")

	if !strings.Contains(buf.String(), `"key":"value"`) {
		t.Errorf("expected structured field in output, got %q", buf.String())
	}
}

func TestSlogHandlerRoutesToZerolog(t *testing.T) {
	var buf bytes.Buffer
	handler := NewSlogHandlerWithLogger(NewTestLogger(&buf))
	slogger := slog.New(handler)

	slogger.Info("supervisor event", "service", "http-server", "restarts", int64(2))

	out := buf.String()
	if !strings.Contains(out, "supervisor event") {
		t.Fatalf("message missing from output: %q", out)
	}
	if !strings.Contains(out, `"service":"http-server"`) {
		t.Errorf("string attr missing: %q", out)
	}
	if !strings.Contains(out, `"restarts":2`) {
		t.Errorf("int attr missing: %q", out)
	}
}

func TestSlogHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	handler := NewSlogHandlerWithLogger(NewTestLogger(&buf))
	slogger := slog.New(handler).WithGroup("suture").With("tree", "argus")

	slogger.Warn("service failed")

	if !strings.Contains(buf.String(), `"suture.tree":"argus"`) {
		t.Errorf("group-qualified attr missing: %q", buf.String())
	}
}
