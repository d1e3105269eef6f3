package dtable

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with dtable-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithTable adds a table name field to the logger.
func (l *Logger) WithTable(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("table", name),
	}
}

// WithRows adds a row count field to the logger.
func (l *Logger) WithRows(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("rows", n),
	}
}

// LogSelect logs a selection.
func (l *Logger) LogSelect(ctx context.Context, path string, rows int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "select failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "select completed",
			"path", path,
			"rows", rows,
			"duration", d,
		)
	}
}

// LogAggregate logs an aggregation.
func (l *Logger) LogAggregate(ctx context.Context, by []string, groups int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "aggregate failed",
			"by", by,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "aggregate completed",
			"by", by,
			"groups", groups,
			"duration", d,
		)
	}
}

// LogMutation logs a column assignment or drop.
func (l *Logger) LogMutation(ctx context.Context, column string, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "mutation failed",
			"column", column,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "mutation completed",
			"column", column,
			"rows", rows,
		)
	}
}

// LogJoin logs a join.
func (l *Logger) LogJoin(ctx context.Context, kind string, on []string, rows int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "join failed",
			"kind", kind,
			"on", on,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "join completed",
			"kind", kind,
			"on", on,
			"rows", rows,
			"duration", d,
		)
	}
}

// LogSetKey logs a key change.
func (l *Logger) LogSetKey(ctx context.Context, key []string, rows int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "set key failed",
			"key", key,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "key set",
			"key", key,
			"rows", rows,
			"duration", d,
		)
	}
}
