package log

import (
	"fmt"
	"strings"
)

// Logger is the structured logger used across the client.
type Logger interface {
	// Debug logs low-level details such as individual frames.
	// keysAndValues are treated as key-value pairs (e.g., "method", m).
	Debug(msg string, keysAndValues ...any)
	// Info logs routine progress such as connection state changes.
	Info(msg string, keysAndValues ...any)
	// Warn logs unexpected situations the client can recover from.
	Warn(msg string, keysAndValues ...any)
	// Error logs failures that abort an operation.
	Error(msg string, keysAndValues ...any)
	// Fatal logs an unrecoverable failure; backends may terminate the process.
	Fatal(msg string, keysAndValues ...any)
	// WithKV returns a logger that attaches the pair to every future entry.
	WithKV(key string, value any) Logger
	// GetAllKV returns the pairs attached with WithKV.
	GetAllKV() []any
	// WithName returns a logger scoped to a component name.
	WithName(name string) Logger
	// Name returns the component name of the logger.
	Name() string
	// AddCallerSkip returns a logger that skips extra stack frames when
	// reporting the caller. Backends without caller info return themselves.
	AddCallerSkip(skip int) Logger
}

// Level is the severity of a log entry.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// ParseLevel converts a case-insensitive level name into a Level.
func ParseLevel(s string) (Level, error) {
	switch lvl := Level(strings.ToLower(strings.TrimSpace(s))); lvl {
	case LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal:
		return lvl, nil
	case "warning":
		return LevelWarn, nil
	case "":
		return LevelInfo, nil
	default:
		return "", fmt.Errorf("unknown log level %q", s)
	}
}

// SpanEventRecorder records log entries onto a trace span.
type SpanEventRecorder interface {
	TraceID() string
	SpanID() string

	// RecordEvent adds an event; keysAndValues become span attributes.
	RecordEvent(name string, keysAndValues ...any)
	// RecordError adds an event and marks the span as failed.
	RecordError(name string, keysAndValues ...any)
}
