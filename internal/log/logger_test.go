package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: FormatJSON, Component: ComponentStorage, Output: &buf})

	logger.Info("stored", FieldKey, "transactions")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if entry[FieldComponent] != ComponentStorage {
		t.Errorf("component = %v", entry[FieldComponent])
	}
	if entry[FieldKey] != "transactions" {
		t.Errorf("key = %v", entry[FieldKey])
	}
}

func TestWithComponentKeepsAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: FormatText, Output: &buf}).With(FieldRequestID, "req_1")
	logger.WithComponent(ComponentRelay).Info("hello")

	out := buf.String()
	if !strings.Contains(out, "component=relay") || !strings.Contains(out, "request_id=req_1") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestPrettyFormatWrites(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Format: FormatPretty, Output: &buf}).Warn("careful")
	if !strings.Contains(buf.String(), "careful") {
		t.Fatalf("expected message in output, got %q", buf.String())
	}
}

func TestContextLogger(t *testing.T) {
	logger := New(DefaultConfig()).WithComponent(ComponentHTTP)

	got := FromContext(NewContext(context.Background(), logger))
	if got.Component() != ComponentHTTP {
		t.Fatalf("expected http logger in context, got %q", got.Component())
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
}
