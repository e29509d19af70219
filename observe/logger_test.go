package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v\nOutput: %s", err, buf.String())
	}
	return entry
}

func TestLogger_IncludesOpFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf).WithOp(OpMeta{
		Name:       "calculate_batch",
		Endpoint:   "calculate/batch",
		Media:      "surface_water",
		Parameters: 3,
	})

	logger.Info(context.Background(), "test message")
	entry := decodeLine(t, &buf)

	want := map[string]any{
		"op.name":       "calculate_batch",
		"op.endpoint":   "calculate/batch",
		"op.media":      "surface_water",
		"op.parameters": float64(3),
		"msg":           "test message",
		"level":         "info",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %v", k, entry[k], v)
		}
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("timestamp missing")
	}
}

func TestLogger_OmitsEmptyOpFields(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter("info", &buf).WithOp(OpMeta{Name: "stats"}).Info(context.Background(), "x")
	entry := decodeLine(t, &buf)

	for _, k := range []string{"op.endpoint", "op.media", "op.parameters"} {
		if _, ok := entry[k]; ok {
			t.Errorf("%s should be omitted, got %v", k, entry[k])
		}
	}
}

func TestLogger_RedactsSensitiveFields(t *testing.T) {
	for _, key := range RedactedFields {
		t.Run(key, func(t *testing.T) {
			var buf bytes.Buffer
			NewLoggerWithWriter("debug", &buf).Info(context.Background(), "msg",
				Field{Key: key, Value: "super-secret-value"},
			)
			if strings.Contains(buf.String(), "super-secret-value") {
				t.Fatalf("field %q leaked: %s", key, buf.String())
			}
			if entry := decodeLine(t, &buf); entry[key] != "[REDACTED]" {
				t.Errorf("%s = %v, want [REDACTED]", key, entry[key])
			}
		})
	}
}

func TestLogger_ErrorValuesAreStrings(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter("info", &buf).Warn(context.Background(), "cache write failed",
		Field{Key: "error", Value: errors.New("disk full")},
	)
	entry := decodeLine(t, &buf)
	if entry["error"] != "disk full" {
		t.Errorf("error = %v, want %q", entry["error"], "disk full")
	}
	if entry["level"] != "warn" {
		t.Errorf("level = %v, want warn", entry["level"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level string
		emit  func(Logger)
		want  bool
	}{
		{"info", func(l Logger) { l.Debug(context.Background(), "m") }, false},
		{"info", func(l Logger) { l.Info(context.Background(), "m") }, true},
		{"warn", func(l Logger) { l.Info(context.Background(), "m") }, false},
		{"warn", func(l Logger) { l.Error(context.Background(), "m") }, true},
		{"error", func(l Logger) { l.Warn(context.Background(), "m") }, false},
		{"debug", func(l Logger) { l.Debug(context.Background(), "m") }, true},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		tt.emit(NewLoggerWithWriter(tt.level, &buf))
		if got := buf.Len() > 0; got != tt.want {
			t.Errorf("level %s: wrote=%v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestLogger_WithOpSharesWriter(t *testing.T) {
	var buf bytes.Buffer
	base := NewLoggerWithWriter("info", &buf)
	base.Info(context.Background(), "one")
	base.WithOp(OpMeta{Name: "calculate"}).Info(context.Background(), "two")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"error":   LevelError,
		"unknown": LevelInfo,
		"":        LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	l := NopLogger()
	l.Info(context.Background(), "ignored")
	if l.WithOp(OpMeta{Name: "calculate"}) == nil {
		t.Fatal("WithOp should return non-nil logger")
	}
}
