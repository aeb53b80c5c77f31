package operations

import (
	"context"
	"log/slog"
	"strings"

	"spicongress/internal/cache"
	"spicongress/internal/config"
	"spicongress/internal/dataprocessing"
	apperrors "spicongress/internal/errors"
	"spicongress/internal/exporter"
	"spicongress/internal/infrastructure"
	"spicongress/internal/report"
	"spicongress/internal/validation"
)

// JoinedTableStep produces the joined legislator table, from the cache when
// it exists and from the four sources otherwise
type JoinedTableStep struct {
	BaseStage
	cfg       *config.Config
	store     cache.Store
	validator *validation.FileValidator
	tracer    *OperationTracer
	logger    *slog.Logger
}

// NewJoinedTableStep creates the joined table step
func NewJoinedTableStep(cfg *config.Config, store cache.Store, validator *validation.FileValidator, tracer *OperationTracer, logger *slog.Logger) *JoinedTableStep {
	return &JoinedTableStep{
		BaseStage: NewBaseStage(StepIDJoinedTable, StepNameJoinedTable),
		cfg:       cfg,
		store:     store,
		validator: validator,
		tracer:    tracer,
		logger:    logger,
	}
}

// Execute loads or builds the joined table and stores it in the state
func (s *JoinedTableStep) Execute(ctx context.Context, state *OperationState) error {
	table, outcome, err := cache.LoadOrCompute(ctx, s.store, s.build)
	if outcome != "" {
		s.tracer.RecordCacheLookup(ctx, outcome)
	}
	if err != nil {
		return err
	}

	state.SetContext(ContextKeyJoinedTable, table)
	state.SetContext(ContextKeyCacheOutcome, outcome)
	if stepState := state.GetStage(s.ID()); stepState != nil {
		stepState.SetRows(table.Len())
	}

	s.logger.InfoContext(ctx, "Joined table ready",
		slog.Int("rows", table.Len()),
		slog.Int("columns", len(table.Columns)),
		slog.String("cache", string(outcome)))

	if s.logger.Enabled(ctx, slog.LevelDebug) {
		var preview strings.Builder
		head := table.Head(previewRows)
		if err := exporter.EncodeCSV(&preview, head.Columns, head.Rows); err == nil {
			s.logger.DebugContext(ctx, "Joined table preview",
				slog.String("preview", preview.String()))
		}
	}
	return nil
}

// build reads the four sources and joins them
func (s *JoinedTableStep) build(ctx context.Context) (*dataprocessing.Table, error) {
	src, err := s.readSources(ctx)
	if err != nil {
		return nil, err
	}

	matcher, err := dataprocessing.NewMatcher(s.cfg.Matching)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.TraceDataProcessing(ctx, "join")
	defer span.End()

	joiner := dataprocessing.NewJoiner(s.cfg.Columns, s.cfg.Join.Strict, s.logger)
	table, err := joiner.Build(src, matcher)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"match.strategy": s.cfg.Matching.Strategy,
		"join.strict":    s.cfg.Join.Strict,
		"join.rows":      table.Len(),
	})
	return table, nil
}

func (s *JoinedTableStep) readSources(ctx context.Context) (dataprocessing.Sources, error) {
	ctx, span := s.tracer.TraceDataProcessing(ctx, "read_inputs")
	defer span.End()

	var src dataprocessing.Sources
	inputs := []struct {
		name string
		path string
		dst  **dataprocessing.Table
	}{
		{"social_progress", s.cfg.Inputs.SocialProgress, &src.SocialProgress},
		{"state_metadata", s.cfg.Inputs.StateMetadata, &src.StateMetadata},
		{"house", s.cfg.Inputs.House, &src.House},
		{"senate", s.cfg.Inputs.Senate, &src.Senate},
	}

	rows := make(map[string]interface{}, len(inputs))
	for _, in := range inputs {
		table, err := s.readSource(in.path)
		if err != nil {
			infrastructure.RecordError(ctx, err)
			return dataprocessing.Sources{}, err
		}
		*in.dst = table
		rows["source."+in.name+".rows"] = table.Len()
	}
	infrastructure.SetSpanAttributes(ctx, rows)
	return src, nil
}

func (s *JoinedTableStep) readSource(path string) (*dataprocessing.Table, error) {
	if err := s.validator.ValidateSource(path); err != nil {
		return nil, err
	}
	return dataprocessing.ReadTable(path)
}

// ExportStep writes an xlsx copy of the joined table when one is configured
type ExportStep struct {
	BaseStage
	path      string
	writer    *exporter.WorkbookWriter
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewExportStep creates the workbook export step. An empty path makes the
// step a no-op.
func NewExportStep(path string, writer *exporter.WorkbookWriter, validator *validation.FileValidator, logger *slog.Logger) *ExportStep {
	return &ExportStep{
		BaseStage: NewBaseStage(StepIDExport, StepNameExport),
		path:      path,
		writer:    writer,
		validator: validator,
		logger:    logger,
	}
}

// Validate requires the joined table and a writable workbook directory
func (s *ExportStep) Validate(state *OperationState) error {
	if _, ok := state.JoinedTable(); !ok {
		return NewValidationError(s.ID(), "joined table not available")
	}
	return s.validator.ValidateOutputDirectory(s.path)
}

// Execute writes the workbook
func (s *ExportStep) Execute(ctx context.Context, state *OperationState) error {
	stepState := state.GetStage(s.ID())
	if s.path == "" {
		if stepState != nil {
			stepState.Skip("no workbook configured")
		}
		return nil
	}

	table, _ := state.JoinedTable()
	if err := s.writer.WriteTable(s.path, table); err != nil {
		return apperrors.NewStorageError("failed to export workbook", err).
			WithContext("path", s.path)
	}
	if stepState != nil {
		stepState.SetRows(table.Len())
	}

	s.logger.InfoContext(ctx, "Workbook exported",
		slog.String("path", s.path),
		slog.Int("rows", table.Len()))
	return nil
}

// ReportStep draws the charts and writes the regression summary
type ReportStep struct {
	BaseStage
	reporter  *report.Reporter
	outputs   []string
	validator *validation.FileValidator
}

// NewReportStep creates the report step. outputs are the chart paths the
// reporter writes.
func NewReportStep(reporter *report.Reporter, validator *validation.FileValidator, outputs ...string) *ReportStep {
	return &ReportStep{
		BaseStage: NewBaseStage(StepIDReport, StepNameReport),
		reporter:  reporter,
		outputs:   outputs,
		validator: validator,
	}
}

// Validate requires the joined table and writable chart directories
func (s *ReportStep) Validate(state *OperationState) error {
	if _, ok := state.JoinedTable(); !ok {
		return NewValidationError(s.ID(), "joined table not available")
	}
	return s.validator.ValidateOutputDirectory(s.outputs...)
}

// Execute runs the reporter over the joined table
func (s *ReportStep) Execute(ctx context.Context, state *OperationState) error {
	table, _ := state.JoinedTable()
	result, err := s.reporter.Run(ctx, table)
	if err != nil {
		return err
	}

	state.SetContext(ContextKeyReport, result)
	if stepState := state.GetStage(s.ID()); stepState != nil {
		stepState.SetRows(result.Fit.NObs)
	}
	return nil
}
