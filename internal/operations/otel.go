package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"spicongress/internal/cache"
	apperrors "spicongress/internal/errors"
	"spicongress/internal/infrastructure"
)

// OperationTracer provides OpenTelemetry instrumentation for pipeline runs
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer on the run's providers
func NewOperationTracer(providers *infrastructure.OTelProviders) (*OperationTracer, error) {
	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	return &OperationTracer{
		tracer:  providers.Tracer,
		metrics: metrics,
	}, nil
}

// TraceOperationExecution creates a span for the entire run
func (pt *OperationTracer) TraceOperationExecution(ctx context.Context, operationID string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "pipeline.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
		),
	)
}

// TraceStageExecution creates a span for one step
func (pt *OperationTracer) TraceStageExecution(ctx context.Context, operationID, stepID string) (context.Context, trace.Span) {
	spanName := fmt.Sprintf("pipeline.step.%s", stepID)
	return pt.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("step.id", stepID),
		),
	)
}

// TraceDataProcessing creates a child span for work inside a step
func (pt *OperationTracer) TraceDataProcessing(ctx context.Context, operation string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, fmt.Sprintf("pipeline.data.%s", operation),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("data.operation", operation),
		),
	)
}

// RecordStageCompletion records step metrics and closes out the span status
func (pt *OperationTracer) RecordStageCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, status StepStatus, rows int) {
	span.SetAttributes(
		attribute.String("step.status", string(status)),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
		attribute.Int("step.rows", rows),
	)

	attrs := metric.WithAttributes(
		attribute.String("step", stepID),
		attribute.String("status", string(status)),
	)
	pt.metrics.StepExecutions.Add(ctx, 1, attrs)
	pt.metrics.StepDuration.Record(ctx, duration.Seconds(), attrs)
	if rows > 0 {
		pt.metrics.RowsProduced.Add(ctx, int64(rows),
			metric.WithAttributes(attribute.String("step", stepID)))
	}

	span.AddEvent("step.completed", trace.WithAttributes(
		attribute.String("step.id", stepID),
		attribute.String("status", string(status)),
	))

	if status == StepStatusFailed {
		span.SetStatus(codes.Error, "step execution failed")
	} else {
		span.SetStatus(codes.Ok, "step completed")
	}
}

// RecordStageError records a step error on the span and counts it by type
func (pt *OperationTracer) RecordStageError(ctx context.Context, stepID string, err error) {
	errType := string(apperrors.TypeOf(err))
	if errType == "" {
		errType = string(GetErrorType(err))
	}

	infrastructure.RecordError(ctx, err,
		trace.WithAttributes(
			attribute.String("step.id", stepID),
			attribute.String("error.type", errType),
		),
	)

	pt.metrics.PipelineErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("step", stepID),
			attribute.String("error_type", errType),
		),
	)
}

// RecordCacheLookup counts a joined table cache lookup
func (pt *OperationTracer) RecordCacheLookup(ctx context.Context, outcome cache.Outcome) {
	pt.metrics.CacheLookups.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", string(outcome))))

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attribute.String("cache.outcome", string(outcome)))
	}
}

// RecordOperationCompletion closes out the run span
func (pt *OperationTracer) RecordOperationCompletion(span trace.Span, duration time.Duration, status OperationStatus) {
	span.SetAttributes(
		attribute.String("operation.status", string(status)),
		attribute.Float64("operation.duration_seconds", duration.Seconds()),
	)

	if status == OperationStatusCompleted {
		span.SetStatus(codes.Ok, "operation completed successfully")
	} else {
		span.SetStatus(codes.Error, fmt.Sprintf("operation finished with status: %s", status))
	}
}
