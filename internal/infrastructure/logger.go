package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"spicongress/internal/config"
	apperrors "spicongress/internal/errors"
)

// consoleWriter receives "console" output. Stdout carries the regression
// summary and nothing else.
var consoleWriter io.Writer = os.Stderr

// runLogger is the process-wide logger and the log file it may own
var runLogger struct {
	once   sync.Once
	mu     sync.Mutex
	logger *slog.Logger
	file   *os.File
}

type contextKey string

// TraceIDContextKey stores the run ID in a context
const TraceIDContextKey contextKey = "trace_id"

// InitializeLogger builds the process logger from cfg and installs it as the
// slog default. Later calls return the first logger.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var err error
	runLogger.once.Do(func() {
		var out io.Writer
		out, err = logOutput(cfg)
		if err != nil {
			return
		}
		runLogger.logger = NewLogger(out, cfg)
		slog.SetDefault(runLogger.logger)
	})
	return runLogger.logger, err
}

// GetLogger returns the process logger, or slog's default before
// InitializeLogger has run
func GetLogger() *slog.Logger {
	if runLogger.logger == nil {
		return slog.Default()
	}
	return runLogger.logger
}

// NewLogger builds a standalone logger writing to w. Debug level adds source
// locations.
func NewLogger(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	level := parseLogLevel(cfg.Level)
	opts := &slog.HandlerOptions{
		AddSource: level == slog.LevelDebug,
		Level:     level,
	}

	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(&traceHandler{Handler: handler})
}

// logOutput resolves cfg.Output to a writer, opening the log file when the
// output includes one
func logOutput(cfg config.LoggingConfig) (io.Writer, error) {
	output := strings.ToLower(cfg.Output)
	if output != "file" && output != "both" {
		return consoleWriter, nil
	}

	file, err := openLogFile(cfg.FilePath)
	if err != nil {
		return nil, err
	}
	runLogger.mu.Lock()
	runLogger.file = file
	runLogger.mu.Unlock()

	if output == "both" {
		return io.MultiWriter(consoleWriter, file), nil
	}
	return file, nil
}

// traceHandler stamps records logged with a run context with its trace_id,
// and with otel_trace_id when the context also carries a span
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := GetTraceID(ctx); id != "" {
		r.AddAttrs(slog.String("trace_id", id))
	}
	if id := TraceIDFromContext(ctx); id != "" {
		r.AddAttrs(slog.String("otel_trace_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

// parseLogLevel maps a configured level name to slog. Unknown names are info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// WithTraceID returns ctx carrying the run ID
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID returns the run ID in ctx, or "" when there is none
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(TraceIDContextKey).(string)
	return id
}

// CloseLogFile closes the log file opened by InitializeLogger, if any
func CloseLogFile() error {
	runLogger.mu.Lock()
	defer runLogger.mu.Unlock()

	if runLogger.file == nil {
		return nil
	}
	err := runLogger.file.Close()
	runLogger.file = nil
	return err
}

// ResetLoggerForTesting drops the process logger so a test can initialize a
// fresh one
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	runLogger.logger = nil
	runLogger.once = sync.Once{}
}

// openLogFile opens filePath for appending, creating its directory
func openLogFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return nil, apperrors.NewConfigError("logging output needs a file_path", nil)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create log directory", err).
			WithContext("path", filePath)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open log file", err).
			WithContext("path", filePath)
	}
	return file, nil
}
