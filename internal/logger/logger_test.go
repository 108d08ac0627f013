package logger

import (
	"bytes"
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
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json", Level: slog.LevelInfo})

	log.Info("hello", "key", "value")

	out := buf.String()
	if !strings.Contains(out, `"msg":"hello"`) {
		t.Errorf("expected JSON output with msg, got %q", out)
	}
	if !strings.Contains(out, `"key":"value"`) {
		t.Errorf("expected JSON output with attribute, got %q", out)
	}
}

func TestProductionDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Environment: "production"})

	log.Info("boot")

	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("production logger should emit JSON, got %q", buf.String())
	}
}

func TestPrettyHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "pretty", Level: slog.LevelDebug})

	log.Warn("slow request", "path", "/api/v1/books")

	out := buf.String()
	if !strings.Contains(out, "WRN") {
		t.Errorf("expected WRN level marker, got %q", out)
	}
	if !strings.Contains(out, "slow request") {
		t.Errorf("expected message in output, got %q", out)
	}
	if !strings.Contains(out, "path=/api/v1/books") {
		t.Errorf("expected attribute in output, got %q", out)
	}
}

func TestPrettyHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "pretty", Level: slog.LevelWarn})

	log.Debug("should not appear")
	log.Info("should not appear either")

	if buf.Len() != 0 {
		t.Errorf("expected no output below warn level, got %q", buf.String())
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json"})

	log.WithError(errTest{}).Error("operation failed")

	if !strings.Contains(buf.String(), `"error":"boom"`) {
		t.Errorf("expected error attribute, got %q", buf.String())
	}
}

type errTest struct{}

func (errTest) Error() string { return "boom" }
