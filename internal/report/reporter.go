package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"spicongress/internal/analysis"
	"spicongress/internal/config"
	"spicongress/internal/dataprocessing"
	"spicongress/internal/infrastructure"
)

// Reporter draws the charts and writes the regression summary
type Reporter struct {
	cfg    config.ReportConfig
	party  string
	out    io.Writer
	logger *slog.Logger
}

// Result describes what a report run produced
type Result struct {
	PartyPlot   string
	OverallPlot string
	Fit         *analysis.OLSResult
	Design      *analysis.Design
}

// NewReporter creates a reporter writing the summary to out
func NewReporter(cfg config.ReportConfig, columns config.ColumnsConfig, out io.Writer, logger *slog.Logger) *Reporter {
	return &Reporter{
		cfg:    cfg,
		party:  columns.Party,
		out:    out,
		logger: infrastructure.WithComponent(logger, "reporter"),
	}
}

// Run renders both charts and then writes the OLS summary
func (r *Reporter) Run(ctx context.Context, table *dataprocessing.Table) (*Result, error) {
	if err := r.PlotByParty(ctx, table); err != nil {
		return nil, err
	}
	if err := r.PlotOverall(ctx, table); err != nil {
		return nil, err
	}

	design, fit, err := r.Regress(table)
	if err != nil {
		return nil, err
	}
	if err := analysis.Summary(r.out, fit, r.cfg.Dependent); err != nil {
		return nil, err
	}

	return &Result{
		PartyPlot:   r.cfg.PartyPlot,
		OverallPlot: r.cfg.OverallPlot,
		Fit:         fit,
		Design:      design,
	}, nil
}

// PlotByParty draws the party-colored scatter with one smooth per party
func (r *Reporter) PlotByParty(ctx context.Context, table *dataprocessing.Table) error {
	groups, order, err := analysis.ScatterPoints(table, r.cfg.Independent, r.cfg.Dependent, r.party)
	if err != nil {
		return err
	}

	p := newChart(r.cfg.Independent, r.cfg.Dependent)
	for _, party := range order {
		s := series{label: party, color: partyColor(party), points: groups[party]}
		s.smooth = r.smooth(ctx, party, s.points, r.cfg.PartyDegree)
		if err := addSeries(p, s); err != nil {
			return err
		}
	}

	if err := savePNG(p, r.cfg.PartyPlot, r.cfg.WidthInches, r.cfg.HeightInches); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "Chart written",
		slog.String("path", r.cfg.PartyPlot),
		slog.Int("groups", len(order)))
	return nil
}

// PlotOverall draws the ungrouped scatter with a single smooth
func (r *Reporter) PlotOverall(ctx context.Context, table *dataprocessing.Table) error {
	groups, _, err := analysis.ScatterPoints(table, r.cfg.Independent, r.cfg.Dependent, "")
	if err != nil {
		return err
	}
	points := groups[""]

	p := newChart(r.cfg.Independent, r.cfg.Dependent)
	s := series{
		color:  defaultPointColor,
		curve:  smoothColor,
		points: points,
		smooth: r.smooth(ctx, "all", points, r.cfg.OverallDegree),
	}
	if err := addSeries(p, s); err != nil {
		return err
	}

	if err := savePNG(p, r.cfg.OverallPlot, r.cfg.WidthInches, r.cfg.HeightInches); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "Chart written",
		slog.String("path", r.cfg.OverallPlot),
		slog.Int("points", points.Len()))
	return nil
}

// smooth fits the trend for one group; groups too small to fit are drawn
// without a curve
func (r *Reporter) smooth(ctx context.Context, group string, points analysis.Points, degree int) *analysis.Smooth {
	s, err := analysis.FitSmooth(points.X, points.Y, degree, r.cfg.SmoothPoints, r.cfg.ConfidenceLevel)
	if err != nil {
		r.logger.WarnContext(ctx, "Skipping smooth",
			slog.String("group", group),
			slog.Int("points", points.Len()),
			slog.String("error", err.Error()))
		return nil
	}
	return s
}

// Regress fits dependent ~ senate + party + independent over the table
func (r *Reporter) Regress(table *dataprocessing.Table) (*analysis.Design, *analysis.OLSResult, error) {
	design, err := analysis.BuildDesign(table, analysis.DesignSpec{
		Dependent:   r.cfg.Dependent,
		Independent: r.cfg.Independent,
		Senate:      config.SenateColumn,
		Party:       r.party,
	})
	if err != nil {
		return nil, nil, err
	}
	if design.Dropped > 0 {
		r.logger.Warn("Rows with missing values left out of the regression",
			slog.Int("dropped", design.Dropped))
	}

	fit, err := analysis.FitOLS(design.Y, design.X, design.Names)
	if err != nil {
		return nil, nil, fmt.Errorf("regression failed: %w", err)
	}
	r.logger.Info("Regression fitted",
		slog.Int("observations", fit.NObs),
		slog.Int("rank", fit.Rank),
		slog.Float64("r_squared", fit.RSquared))
	return design, fit, nil
}
