package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/agbru/coinsim/internal/cli"
	"github.com/agbru/coinsim/internal/config"
	apperrors "github.com/agbru/coinsim/internal/errors"
	"github.com/agbru/coinsim/internal/export"
	"github.com/agbru/coinsim/internal/format"
	"github.com/agbru/coinsim/internal/logging"
	"github.com/agbru/coinsim/internal/metrics"
	"github.com/agbru/coinsim/internal/orchestration"
	"github.com/agbru/coinsim/internal/telemetry"
	"github.com/agbru/coinsim/internal/tui"
)

// runSimulation samples the configured mode, presents the analysis and
// exports the results.
func (a *Application) runSimulation(ctx context.Context, cfg config.AppConfig, out io.Writer) error {
	s, err := a.openSession(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := withLifecycle(ctx, cfg.Timeout)
	defer stop()

	plan := orchestration.NewPlan(cfg)
	plan.Observer = s.metrics
	s.logger.Debug("simulation plan",
		logging.String("mode", string(plan.Mode)),
		logging.Uint64("seed", plan.BaseSeed),
		logging.Int("workers", plan.Workers),
		logging.Int("batch_size", plan.BatchSize),
		logging.Int("records", plan.TotalRecords()))

	finish := s.metrics.StartSimulation(string(plan.Mode))
	memory := metrics.NewMemoryCollector()
	before := memory.Snapshot()
	start := time.Now()

	var (
		dataset export.Dataset
		report  orchestration.Report
	)
	job := func(ctx context.Context, reporter orchestration.ProgressReporter) (orchestration.Report, error) {
		var err error
		dataset, report, err = s.simulate(ctx, plan, reporter)
		return report, err
	}

	switch {
	case cfg.TUI:
		report, err = tui.Run(ctx, plan, Version, job)
	case cfg.Quiet:
		_, err = job(ctx, orchestration.NullProgressReporter{})
	default:
		cli.PrintExecutionConfig(cfg, plan, out)
		_, err = job(ctx, cli.CLIProgressReporter{})
	}
	elapsed := time.Since(start)
	if err != nil {
		finish(outcomeOf(err))
		return timeoutError(err, string(plan.Mode), cfg.Timeout)
	}
	finish("success")
	s.logger.Info("simulation complete",
		logging.Int("records", dataset.Len()),
		logging.Duration("elapsed", elapsed))

	switch {
	case cfg.Quiet:
		cli.QuietPresenter{}.PresentReport(report, out)
	case !cfg.TUI:
		cli.CLIResultPresenter{MaxRows: maxConsoleRows}.PresentReport(report, out)
		fmt.Fprintf(out, "\nSimulated %s records in %s.\n",
			format.FormatCount(int64(dataset.Len())), format.FormatExecutionDuration(elapsed))
		if cfg.Verbose {
			cli.DisplayMemoryStats(memory.Snapshot().Sub(before), out)
		}
	}

	m := export.Manifest{
		Seed:       plan.BaseSeed,
		Runs:       plan.Runs,
		MaxRuns:    plan.MaxRuns,
		Parameters: plan.Parameters,
		Trim:       cfg.TrimFraction,
		TrimCount:  cfg.TrimCount,
		Workers:    plan.Workers,
		BatchSize:  plan.BatchSize,
		StartedAt:  start,
		Duration:   elapsed,
	}
	return s.export(ctx, dataset, report, m)
}

// maxConsoleRows caps the rows printed per table; the exported files hold
// all of them.
const maxConsoleRows = 40

// simulate runs the sampling and the analysis of plan, each inside its own
// span.
func (s *session) simulate(ctx context.Context, plan orchestration.Plan, reporter orchestration.ProgressReporter) (export.Dataset, orchestration.Report, error) {
	d := export.Dataset{Mode: plan.Mode}
	progressOut := s.out
	if s.cfg.Quiet || s.cfg.TUI {
		progressOut = io.Discard
	}

	sctx, span := telemetry.StartSpan(ctx, "simulate",
		attribute.String("mode", string(plan.Mode)),
		attribute.Int("records", plan.TotalRecords()),
		attribute.Int64("seed", int64(plan.BaseSeed)))
	var err error
	switch plan.Mode {
	case config.ModeConvergence:
		d.Convergence, err = orchestration.ExecuteConvergence(sctx, plan, reporter, progressOut)
	case config.ModeProgressive:
		d.Progressive, err = orchestration.ExecuteProgressive(sctx, plan, reporter, progressOut)
	default:
		d.Streak, err = orchestration.ExecuteStreak(sctx, plan, reporter, progressOut)
	}
	telemetry.EndSpan(span, err)
	if err != nil {
		return d, orchestration.Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return d, orchestration.Report{}, err
	}
	return d, s.analyze(ctx, d), nil
}

// analyze aggregates and fits a dataset and records fit failures.
func (s *session) analyze(ctx context.Context, d export.Dataset) orchestration.Report {
	_, span := telemetry.StartSpan(ctx, "analyze", attribute.String("mode", string(d.Mode)), attribute.Int("records", d.Len()))
	defer span.End()

	opts := orchestration.NewAnalysisOptions(s.cfg)
	var r orchestration.Report
	switch d.Mode {
	case config.ModeConvergence:
		r = orchestration.AnalyzeConvergence(d.Convergence, opts)
	case config.ModeProgressive:
		r = orchestration.AnalyzeProgressive(d.Progressive, opts)
	default:
		r = orchestration.AnalyzeStreak(d.Streak, opts)
	}
	for _, f := range r.Fits {
		if f.Err != nil {
			s.metrics.FitFailed(f.Family)
			s.logger.Warn("model fit failed",
				logging.String("analysis", f.Analysis),
				logging.String("family", f.Family),
				logging.Err(f.Err))
		}
	}
	for _, t := range r.Tables {
		for _, row := range t.Rows {
			if row.TrimErr != nil {
				s.logger.Debug("trimmed statistics unavailable",
					logging.String("analysis", t.Analysis.Name),
					logging.Int("parameter", row.ParameterValue),
					logging.Err(row.TrimErr))
			}
		}
	}
	return r
}

// export writes the results unless exporting is disabled.
func (s *session) export(ctx context.Context, d export.Dataset, r orchestration.Report, m export.Manifest) error {
	if s.cfg.NoExport {
		return nil
	}
	ctx, span := telemetry.StartSpan(ctx, "export", attribute.StringSlice("formats", s.cfg.Formats))
	dir, err := export.NewExporter(s.cfg, s.logger).Export(ctx, d, r, m)
	telemetry.EndSpan(span, err)
	if err != nil {
		return apperrors.WrapError(err, "exporting results")
	}
	if !s.cfg.Quiet {
		cli.DisplayExportSummary(dir, s.out)
	}
	return nil
}

// outcomeOf labels a failed simulation for the simulations_total metric.
func outcomeOf(err error) string {
	switch apperrors.ExitCodeFor(err) {
	case apperrors.ExitErrorTimeout:
		return "timeout"
	case apperrors.ExitErrorCanceled:
		return "canceled"
	default:
		return "error"
	}
}
