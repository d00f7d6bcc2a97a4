// Package logging provides structured JSON logging for the service.
// Every log call emits exactly one self-contained JSON object per line,
// carrying a timestamp, level, message, service name, correlation id and
// any extra structured fields. Emission is synchronous and line-atomic;
// logging failures are swallowed so the request path can never be broken
// by the log sink.
package logging

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents a log severity.
type Level int

const (
	// DebugLevel is for verbose diagnostic output.
	DebugLevel Level = iota
	// InfoLevel is for normal operational messages.
	InfoLevel
	// WarningLevel is for recoverable anomalies.
	WarningLevel
	// ErrorLevel is for failures.
	ErrorLevel
)

// String returns the level name as it appears in log records.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarningLevel:
		return "WARNING"
	case ErrorLevel:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseLevel converts a level name to a Level. Unknown names map to InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarningLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level that will be emitted.
	Level Level

	// Service is stamped on every record as the "service" field.
	Service string

	// Output is the log sink. Defaults to os.Stdout.
	Output io.Writer
}

// sink serializes writes so concurrent requests never interleave mid-line.
type sink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *sink) writeLine(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.w.Write(append(b, '\n'))
}

// Logger emits structured JSON log records.
type Logger struct {
	service string
	level   Level
	sink    *sink
	fields  map[string]interface{}
}

// New creates a Logger from the given configuration.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	return &Logger{
		service: cfg.Service,
		level:   cfg.Level,
		sink:    &sink{w: out},
	}
}

// WithFields returns a logger that stamps the given fields on every record.
// The receiver is not modified; the returned logger shares the same sink.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{
		service: l.service,
		level:   l.level,
		sink:    l.sink,
		fields:  merged,
	}
}

// WithField returns a logger with one additional bound field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// Debug logs a message at debug level.
func (l *Logger) Debug(message string, fields ...map[string]interface{}) {
	l.emit(DebugLevel, message, fields...)
}

// Info logs a message at info level.
func (l *Logger) Info(message string, fields ...map[string]interface{}) {
	l.emit(InfoLevel, message, fields...)
}

// Warning logs a message at warning level.
func (l *Logger) Warning(message string, fields ...map[string]interface{}) {
	l.emit(WarningLevel, message, fields...)
}

// Error logs a message at error level.
func (l *Logger) Error(message string, fields ...map[string]interface{}) {
	l.emit(ErrorLevel, message, fields...)
}

func (l *Logger) emit(level Level, message string, fields ...map[string]interface{}) {
	if l == nil || level < l.level {
		return
	}
	// A broken sink or an unserializable field must never take down the
	// request being handled.
	defer func() {
		_ = recover()
	}()

	record := map[string]interface{}{
		"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		"level":     level.String(),
		"message":   message,
		"service":   l.service,
		"trace_id":  nil,
	}
	for k, v := range l.fields {
		record[k] = v
	}
	for _, extra := range fields {
		for k, v := range extra {
			record[k] = v
		}
	}

	line, err := json.Marshal(record)
	if err != nil {
		return
	}
	l.sink.writeLine(line)
}
