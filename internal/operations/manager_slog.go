package operations

import (
	"context"
	"log/slog"
	"time"

	"spicongress/internal/infrastructure"
)

// logOperationStart logs the start of an operation execution
func (m *Manager) logOperationStart(ctx context.Context, operationID string, steps int) {
	m.logger.InfoContext(ctx, "operation_start",
		slog.String("operation_id", operationID),
		slog.Int("step_count", steps))
}

// logOperationComplete logs the completion of an operation execution
func (m *Manager) logOperationComplete(ctx context.Context, operationID string, duration time.Duration, status string) {
	m.logger.InfoContext(ctx, "operation_complete",
		slog.String("operation_id", operationID),
		slog.String("status", status),
		slog.Duration("duration", duration))
}

// logOperationError logs an operation error
func (m *Manager) logOperationError(ctx context.Context, operationID string, err error) {
	infrastructure.WithError(m.logger, err).ErrorContext(ctx, "operation_error",
		slog.String("operation_id", operationID))
}

// logStageStart logs the start of a Step execution
func (m *Manager) logStageStart(ctx context.Context, operationID, stepID string) {
	m.logger.InfoContext(ctx, "step_start",
		slog.String("operation_id", operationID),
		slog.String("step", stepID))
}

// logStageComplete logs the completion of a Step execution
func (m *Manager) logStageComplete(ctx context.Context, operationID, stepID string, duration time.Duration, status StepStatus, rows int) {
	m.logger.InfoContext(ctx, "step_complete",
		slog.String("operation_id", operationID),
		slog.String("step", stepID),
		slog.String("status", string(status)),
		slog.Int("rows", rows),
		slog.Duration("duration", duration))
}

// logStageError logs a Step error with its domain error type
func (m *Manager) logStageError(ctx context.Context, operationID, stepID string, err error) {
	infrastructure.WithError(m.logger, err).ErrorContext(ctx, "step_error",
		slog.String("operation_id", operationID),
		slog.String("step", stepID))
}
