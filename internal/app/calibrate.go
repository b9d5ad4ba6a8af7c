package app

import (
	"context"
	"fmt"
	"io"

	"github.com/agbru/coinsim/internal/calibration"
	"github.com/agbru/coinsim/internal/config"
	apperrors "github.com/agbru/coinsim/internal/errors"
	"github.com/agbru/coinsim/internal/logging"
)

// runCalibrate benchmarks the engine and saves the resulting profile.
func (a *Application) runCalibrate(ctx context.Context, cfg config.AppConfig, quick bool, out io.Writer) error {
	cfg.TUI = false
	s, err := a.openSession(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := withLifecycle(ctx, cfg.Timeout)
	defer stop()

	opts := calibration.DefaultOptions()
	opts.Quick = quick
	opts.Logger = s.logger
	if seed, ok := cfg.SeedValue(); ok {
		opts.Seed = seed
	}

	profile, err := calibration.Calibrate(ctx, opts, out)
	if err != nil {
		return timeoutError(err, "calibration", cfg.Timeout)
	}

	path := cfg.CalibrationProfile
	if path == "" {
		path = calibration.GetDefaultProfilePath()
	}
	if err := profile.SaveProfile(path); err != nil {
		return apperrors.WrapError(err, "saving calibration profile")
	}
	s.logger.Info("calibration profile saved", logging.String("path", path))
	fmt.Fprintf(out, "\nProfile saved to %s\n", path)
	return nil
}
