package app

import (
	"context"
	"io"
	"time"

	"github.com/agbru/coinsim/internal/cli"
	"github.com/agbru/coinsim/internal/config"
	apperrors "github.com/agbru/coinsim/internal/errors"
	"github.com/agbru/coinsim/internal/export"
	"github.com/agbru/coinsim/internal/logging"
)

// runAnalyze re-aggregates a record file. When modeGiven is set the detected
// record kind must match cfg.AnalyzeMode.
func (a *Application) runAnalyze(ctx context.Context, cfg config.AppConfig, modeGiven bool, out io.Writer) error {
	s, err := a.openSession(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := withLifecycle(ctx, cfg.Timeout)
	defer stop()

	start := time.Now()
	d, err := export.ReadCSVFile(cfg.InputFile)
	if err != nil {
		return err
	}
	if modeGiven && d.Mode != cfg.AnalyzeMode {
		return apperrors.NewConfigError("%s holds %s records, not %s", cfg.InputFile, d.Mode, cfg.AnalyzeMode)
	}
	s.logger.Info("records loaded",
		logging.String("input", cfg.InputFile),
		logging.String("mode", string(d.Mode)),
		logging.Int("records", d.Len()))

	report := s.analyze(ctx, d)
	if cfg.Quiet {
		cli.QuietPresenter{}.PresentReport(report, out)
	} else {
		cli.CLIResultPresenter{MaxRows: maxConsoleRows}.PresentReport(report, out)
	}

	return s.export(ctx, d, report, export.Manifest{
		Trim:      cfg.TrimFraction,
		TrimCount: cfg.TrimCount,
		StartedAt: start,
		Duration:  time.Since(start),
	})
}
