// ABOUTME: This file provides context-aware structured logging for the recommendation pipeline
// ABOUTME: Supports video ID, search query, and processing stage propagation with JSON output format
package logger

import (
	"context"
	"log/slog"
	"os"
)

type ContextKey string

const (
	// Business context keys, following OpenTelemetry semantic
	// conventions with a 'reco.' prefix
	VideoIDKey         ContextKey = "reco.video.id"
	SearchQueryKey     ContextKey = "reco.search.query"
	ProcessingStageKey ContextKey = "reco.processing.stage"
)

// ContextLogger provides context-aware logging with pipeline business context
type ContextLogger struct {
	logger      *slog.Logger
	serviceName string
}

// NewContextLogger creates a new context-aware logger
func NewContextLogger(serviceName string) *ContextLogger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	}
	handler := slog.NewJSONHandler(os.Stdout, opts)

	return &ContextLogger{
		logger:      slog.New(handler),
		serviceName: serviceName,
	}
}

// WithContext returns a logger with context values extracted and added as fields
func (cl *ContextLogger) WithContext(ctx context.Context) *slog.Logger {
	logger := cl.logger.With("service", cl.serviceName)

	var fields []any

	if videoID := ctx.Value(VideoIDKey); videoID != nil {
		fields = append(fields, string(VideoIDKey), videoID)
	}
	if query := ctx.Value(SearchQueryKey); query != nil {
		fields = append(fields, string(SearchQueryKey), query)
	}
	if stage := ctx.Value(ProcessingStageKey); stage != nil {
		fields = append(fields, string(ProcessingStageKey), stage)
	}

	if len(fields) > 0 {
		logger = logger.With(fields...)
	}

	return logger
}

// Context helper functions

// WithVideoID adds video ID to context for observability
func WithVideoID(ctx context.Context, videoID string) context.Context {
	return context.WithValue(ctx, VideoIDKey, videoID)
}

// WithSearchQuery adds the search query to context for observability
func WithSearchQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, SearchQueryKey, query)
}

// WithProcessingStage adds processing stage to context for observability
func WithProcessingStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, ProcessingStageKey, stage)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug", "DEBUG":
		return slog.LevelDebug
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn
	case "error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
