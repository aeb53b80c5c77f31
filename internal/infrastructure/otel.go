package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"spicongress/internal/config"
	apperrors "spicongress/internal/errors"
)

const (
	ServiceName         = config.AppName
	InstrumentationName = "spicongress"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	TraceExporter  string // "stdout", "file", "none"
	// TraceWriter receives spans for the "stdout" exporter. Nil means os.Stderr.
	TraceWriter io.Writer
	TraceFile   string
	// MetricsFile receives a Prometheus textfile on Shutdown when set.
	MetricsFile string
}

// OTelProviders holds the OpenTelemetry providers of a run
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prometheus.Registry
	Logger         *slog.Logger

	metricsFile string
	traceFile   *os.File
}

// OTelConfigFrom maps the telemetry section of the app config
func OTelConfigFrom(cfg config.TelemetryConfig) *OTelConfig {
	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: config.AppVersion,
		TraceExporter:  cfg.TraceExporter,
		TraceFile:      cfg.TraceFile,
		MetricsFile:    cfg.MetricsFile,
	}
}

// DefaultOTelConfig returns a configuration with tracing off and metrics kept
// in memory only
func DefaultOTelConfig() *OTelConfig {
	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: config.AppVersion,
		TraceExporter:  "none",
	}
}

// InitializeOTel sets up tracing and metrics for one pipeline run
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	)

	providers := &OTelProviders{
		Logger:      logger,
		metricsFile: cfg.MetricsFile,
	}

	if err := initializeTracing(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
		providers.closeTraceFile()
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.InfoContext(ctx, "OpenTelemetry initialized",
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metrics_file", cfg.MetricsFile))

	return providers, nil
}

// initializeTracing sets up the tracer provider. With exporter "none" a noop
// tracer is installed so callers never branch on it.
func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var w io.Writer

	switch cfg.TraceExporter {
	case "", "none":
		providers.Tracer = noop.NewTracerProvider().Tracer(InstrumentationName)
		return nil
	case "stdout":
		w = cfg.TraceWriter
		if w == nil {
			w = os.Stderr
		}
	case "file":
		if cfg.TraceFile == "" {
			return apperrors.NewConfigError("trace exporter \"file\" needs a trace file", nil)
		}
		if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
			return apperrors.NewStorageError("failed to create trace directory", err)
		}
		file, err := os.Create(cfg.TraceFile)
		if err != nil {
			return apperrors.NewStorageError("failed to create trace file", err)
		}
		providers.traceFile = file
		w = file
	default:
		return apperrors.NewConfigError(fmt.Sprintf("unsupported trace exporter %q", cfg.TraceExporter), nil)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		providers.closeTraceFile()
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// Synchronous export: the run is short and spans must land before exit
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetTracerProvider(tp)

	providers.Logger.DebugContext(ctx, "Tracing initialized", slog.String("exporter", cfg.TraceExporter))
	return nil
}

// initializeMetrics backs the meter provider with a Prometheus exporter on a
// dedicated registry
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.Registry = registry
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(InstrumentationName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetMeterProvider(mp)

	providers.Logger.DebugContext(ctx, "Metrics initialized")
	return nil
}

// Shutdown flushes spans, writes the metrics textfile if configured and
// releases the providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if err := p.closeTraceFile(); err != nil {
		errs = append(errs, fmt.Errorf("trace file close: %w", err))
	}

	if p.metricsFile != "" && p.Registry != nil {
		if err := os.MkdirAll(filepath.Dir(p.metricsFile), 0755); err != nil {
			errs = append(errs, fmt.Errorf("metrics directory: %w", err))
		} else if err := prometheus.WriteToTextfile(p.metricsFile, p.Registry); err != nil {
			errs = append(errs, fmt.Errorf("metrics textfile: %w", err))
		} else {
			p.Logger.InfoContext(ctx, "Metrics written", slog.String("path", p.metricsFile))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %w", errors.Join(errs...))
	}
	return nil
}

func (p *OTelProviders) closeTraceFile() error {
	if p.traceFile == nil {
		return nil
	}
	err := p.traceFile.Close()
	p.traceFile = nil
	return err
}

// PipelineMetrics holds the instruments recorded during a run
type PipelineMetrics struct {
	StepExecutions metric.Int64Counter
	StepDuration   metric.Float64Histogram
	RowsProduced   metric.Int64Counter
	CacheLookups   metric.Int64Counter
	PipelineErrors metric.Int64Counter
}

// CreatePipelineMetrics creates the run's instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	stepExecutions, err := meter.Int64Counter(
		"pipeline_step_executions",
		metric.WithDescription("Number of pipeline step executions"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"pipeline_step_duration",
		metric.WithDescription("Pipeline step duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	rowsProduced, err := meter.Int64Counter(
		"pipeline_rows_produced",
		metric.WithDescription("Rows produced by pipeline steps"),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter(
		"pipeline_cache_lookups",
		metric.WithDescription("Joined table cache lookups by outcome"),
	)
	if err != nil {
		return nil, err
	}

	pipelineErrors, err := meter.Int64Counter(
		"pipeline_errors",
		metric.WithDescription("Pipeline errors by type"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		StepExecutions: stepExecutions,
		StepDuration:   stepDuration,
		RowsProduced:   rowsProduced,
		CacheLookups:   cacheLookups,
		PipelineErrors: pipelineErrors,
	}, nil
}

// TraceIDFromContext extracts the OpenTelemetry trace ID from context
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError marks the current span failed. AppErrors also set
// error.type on the span.
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if err == nil || !span.IsRecording() {
		return
	}

	if t := apperrors.TypeOf(err); t != "" {
		span.SetAttributes(attribute.String("error.type", string(t)))
	}
	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes copies attrs onto the current span. Values other than
// strings, ints, floats and bools are formatted with %v.
func SetSpanAttributes(ctx context.Context, attrs map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			kvs = append(kvs, attribute.String(k, val))
		case int:
			kvs = append(kvs, attribute.Int(k, val))
		case int64:
			kvs = append(kvs, attribute.Int64(k, val))
		case float64:
			kvs = append(kvs, attribute.Float64(k, val))
		case bool:
			kvs = append(kvs, attribute.Bool(k, val))
		default:
			kvs = append(kvs, attribute.String(k, fmt.Sprint(val)))
		}
	}
	span.SetAttributes(kvs...)
}
