package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spicongress/internal/config"
	apperrors "spicongress/internal/errors"
	"spicongress/internal/infrastructure"
	"spicongress/internal/operations"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Stdout)
	stop()
	os.Exit(code)
}

// run executes one report and returns the process exit code. The regression
// summary goes to stdout; logs go to the configured log outputs.
func run(ctx context.Context, stdout io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	paths, err := config.WorkingPaths()
	if err != nil {
		slog.Error("Failed to resolve working directory", slog.String("error", err.Error()))
		return 1
	}
	cfg.ResolvePaths(paths)

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", slog.String("error", err.Error()))
		return 1
	}
	defer infrastructure.CloseLogFile()

	ctx = infrastructure.EnsureTraceID(ctx)
	logger = infrastructure.LoggerWithContext(ctx)

	logger.Info("Starting report",
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion))
	paths.LogPathResolution(logger, cfg)

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	if err := execute(ctx, cfg, providers, stdout, logger); err != nil {
		failed := infrastructure.WithError(logger, err)
		if apperrors.TypeOf(err) == "" {
			// Cancellation and other step-level failures
			failed = failed.With(slog.String("error_type", string(operations.GetErrorType(err))))
		}
		failed.Error("Report failed")
		return 1
	}
	return 0
}

func execute(ctx context.Context, cfg *config.Config, providers *infrastructure.OTelProviders, stdout io.Writer, logger *slog.Logger) error {
	tracer, err := operations.NewOperationTracer(providers)
	if err != nil {
		return err
	}

	manager, err := operations.NewPipeline(cfg, nil, tracer, stdout, logger)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	state, err := manager.Execute(ctx, infrastructure.GetTraceID(ctx))
	if err != nil {
		return err
	}

	outcome, _ := state.CacheOutcome()
	logger.Info("Report complete",
		slog.String("cache", string(outcome)),
		slog.String("party_plot", cfg.Report.PartyPlot),
		slog.String("overall_plot", cfg.Report.OverallPlot),
		slog.Duration("duration", state.Duration()))
	return nil
}
