package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
)

func record(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(line), &out); err != nil {
		t.Fatalf("log line is not valid JSON: %q: %v", line, err)
	}
	return out
}

func TestLogger_RecordShape(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: InfoLevel, Service: "service-c", Output: &buf})

	l.Info("Processing request", map[string]interface{}{
		"trace_id": "req-123",
		"path":     "/api/process",
	})

	got := record(t, &buf)

	for _, key := range []string{"timestamp", "level", "message", "service", "trace_id"} {
		if _, ok := got[key]; !ok {
			t.Errorf("record missing key %q", key)
		}
	}
	if got["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", got["level"])
	}
	if got["message"] != "Processing request" {
		t.Errorf("message = %v, want %q", got["message"], "Processing request")
	}
	if got["service"] != "service-c" {
		t.Errorf("service = %v, want %q", got["service"], "service-c")
	}
	if got["trace_id"] != "req-123" {
		t.Errorf("trace_id = %v, want %q", got["trace_id"], "req-123")
	}
	if got["path"] != "/api/process" {
		t.Errorf("path = %v, want %q", got["path"], "/api/process")
	}

	ts, _ := got["timestamp"].(string)
	pattern := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`)
	if !pattern.MatchString(ts) {
		t.Errorf("timestamp = %q, want millisecond UTC format", ts)
	}
}

func TestLogger_TraceIDDefaultsToNull(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: InfoLevel, Service: "service-c", Output: &buf})

	l.Info("startup")

	got := record(t, &buf)
	v, ok := got["trace_id"]
	if !ok {
		t.Fatal("record missing trace_id")
	}
	if v != nil {
		t.Errorf("trace_id = %v, want null", v)
	}
}

func TestLogger_WarningLevelName(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: DebugLevel, Service: "service-c", Output: &buf})

	l.Warning("something odd")

	got := record(t, &buf)
	// Full word, not WARN.
	if got["level"] != "WARNING" {
		t.Errorf("level = %v, want WARNING", got["level"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		min       Level
		wantLines int
	}{
		{"debug passes everything", DebugLevel, 4},
		{"info drops debug", InfoLevel, 3},
		{"warning drops info", WarningLevel, 2},
		{"error only", ErrorLevel, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(Config{Level: tt.min, Service: "service-c", Output: &buf})

			l.Debug("d")
			l.Info("i")
			l.Warning("w")
			l.Error("e")

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			if buf.Len() == 0 {
				lines = nil
			}
			if len(lines) != tt.wantLines {
				t.Errorf("got %d lines, want %d", len(lines), tt.wantLines)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarningLevel},
		{"warning", WarningLevel},
		{"ERROR", ErrorLevel},
		{" error ", ErrorLevel},
		{"", InfoLevel},
		{"nonsense", InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: InfoLevel, Service: "service-c", Output: &buf})

	l := base.WithFields(map[string]interface{}{"component": "client"})
	l = l.WithField("endpoint", "/api/process")
	l.Info("calling downstream")

	got := record(t, &buf)
	if got["component"] != "client" {
		t.Errorf("component = %v, want %q", got["component"], "client")
	}
	if got["endpoint"] != "/api/process" {
		t.Errorf("endpoint = %v, want %q", got["endpoint"], "/api/process")
	}

	// The base logger is unchanged.
	buf.Reset()
	base.Info("plain")
	got = record(t, &buf)
	if _, ok := got["component"]; ok {
		t.Error("WithFields must not modify the receiver")
	}
}

func TestLogger_CallSiteFieldsWin(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: InfoLevel, Service: "service-c", Output: &buf}).
		WithField("trace_id", "bound")

	l.Info("msg", map[string]interface{}{"trace_id": "call-site"})

	got := record(t, &buf)
	if got["trace_id"] != "call-site" {
		t.Errorf("trace_id = %v, want call-site value to win", got["trace_id"])
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("sink is broken")
}

func TestLogger_BrokenSinkDoesNotPanic(t *testing.T) {
	l := New(Config{Level: InfoLevel, Service: "service-c", Output: failingWriter{}})

	// Must not panic even with an unserializable field.
	l.Info("msg", map[string]interface{}{"bad": make(chan int)})
	l.Error("msg")
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Info("msg")
	l.Error("msg")
}
