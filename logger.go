package topovec

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with topovec-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithEstimator adds an estimator field to the logger.
func (l *Logger) WithEstimator(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("estimator", name),
	}
}

// WithDimension adds a homology dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogFit logs a fit operation.
func (l *Logger) LogFit(ctx context.Context, samples int, dims []int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "fit failed",
			"samples", samples,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "fit completed",
			"samples", samples,
			"dimensions", dims,
			"duration", duration,
		)
	}
}

// LogTransform logs a transform operation.
func (l *Logger) LogTransform(ctx context.Context, samples, features int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "transform failed",
			"samples", samples,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "transform completed",
			"samples", samples,
			"features", features,
			"duration", duration,
		)
	}
}

// LogQuantize logs the clustering of one homology dimension.
func (l *Logger) LogQuantize(ctx context.Context, dim, points, clusters int, err error) {
	if err != nil {
		l.WarnContext(ctx, "quantization failed",
			"dimension", dim,
			"points", points,
			"clusters", clusters,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "quantization completed",
			"dimension", dim,
			"points", points,
			"clusters", clusters,
		)
	}
}

// LogSave logs a model save operation.
func (l *Logger) LogSave(ctx context.Context, name string, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "model save failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "model saved",
			"name", name,
			"bytes", size,
		)
	}
}

// LogLoad logs a model load operation.
func (l *Logger) LogLoad(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "model load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "model loaded",
			"name", name,
		)
	}
}
