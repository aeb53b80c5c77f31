package operations

import (
	"io"
	"log/slog"

	"spicongress/internal/cache"
	"spicongress/internal/config"
	"spicongress/internal/exporter"
	"spicongress/internal/infrastructure"
	"spicongress/internal/report"
	"spicongress/internal/validation"
)

// NewPipeline registers the joined table, export and report steps on a new
// Manager. The regression summary is written to out.
func NewPipeline(cfg *config.Config, store cache.Store, tracer *OperationTracer, out io.Writer, logger *slog.Logger) (*Manager, error) {
	if store == nil {
		store = cache.NewFileStore(cfg.Cache.Path)
	}

	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	validator := validation.NewFileValidator(logger)
	manager := NewManager(nil, tracer, logger)
	steps := []Step{
		NewJoinedTableStep(cfg, store, validator, tracer, logger),
		NewExportStep(cfg.Export.Workbook, exporter.NewWorkbookWriter(nil), validator, logger),
		NewReportStep(
			report.NewReporter(cfg.Report, cfg.Columns, out, logger),
			validator,
			cfg.Report.PartyPlot, cfg.Report.OverallPlot,
		),
	}
	for _, step := range steps {
		if err := manager.RegisterStage(step); err != nil {
			return nil, err
		}
	}
	return manager, nil
}
