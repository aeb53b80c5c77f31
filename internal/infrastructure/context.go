package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	apperrors "spicongress/internal/errors"
)

// GenerateTraceID returns a random run ID. One report run is one trace.
func GenerateTraceID() string {
	return uuid.NewString()
}

// EnsureTraceID returns ctx unchanged when it already carries a run ID
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, GenerateTraceID())
}

// LoggerWithContext is the package logger bound to the run ID in ctx
func LoggerWithContext(ctx context.Context) *slog.Logger {
	id := GetTraceID(ctx)
	if id == "" {
		return GetLogger()
	}
	return GetLogger().With(slog.String("trace_id", id))
}

// WithComponent tags logger with the pipeline component name. A nil logger
// falls back to the package logger.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With(slog.String("component", component))
}

// WithError attaches err and, for AppErrors, its error_type
func WithError(logger *slog.Logger, err error) *slog.Logger {
	if err == nil {
		return logger
	}
	attrs := []any{slog.String("error", err.Error())}
	if t := apperrors.TypeOf(err); t != "" {
		attrs = append(attrs, slog.String("error_type", string(t)))
	}
	return logger.With(attrs...)
}
