package app

import (
	"context"
	"errors"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/coinsim/internal/config"
	apperrors "github.com/agbru/coinsim/internal/errors"
	"github.com/agbru/coinsim/internal/logging"
	"github.com/agbru/coinsim/internal/metrics"
	"github.com/agbru/coinsim/internal/server"
	"github.com/agbru/coinsim/internal/telemetry"
	"github.com/agbru/coinsim/internal/ui"
)

// session holds the per-command infrastructure: logger, metrics, the
// optional metrics server and the tracer provider.
type session struct {
	cfg     config.AppConfig
	out     io.Writer
	logger  logging.Logger
	metrics *metrics.SimulationMetrics

	server        *server.Server
	stopTelemetry telemetry.ShutdownFunc
}

// openSession prepares logging, theme, tracing and metrics for cfg.
func (a *Application) openSession(ctx context.Context, cfg config.AppConfig, out io.Writer) (*session, error) {
	switch {
	case cfg.Verbose:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case cfg.Quiet:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	ui.InitTheme(cfg.NoColor)

	var logger logging.Logger = logging.NewConsoleLogger(a.ErrWriter, "coinsim")
	if cfg.TUI {
		// The dashboard owns the terminal.
		logger = logging.Nop()
	}

	s := &session{cfg: cfg, out: out, logger: logger, metrics: metrics.NewSimulationMetrics()}

	stop, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Trace,
		ServiceName:    "coinsim",
		ServiceVersion: Version,
		Writer:         a.ErrWriter,
	})
	if err != nil {
		return nil, apperrors.WrapError(err, "initializing tracing")
	}
	s.stopTelemetry = stop

	if cfg.MetricsAddr != "" {
		s.server = server.New(cfg.MetricsAddr, s.metrics, logger, server.DefaultSecurityConfig())
		if err := s.server.Start(); err != nil {
			s.Close()
			return nil, apperrors.NewConfigError("metrics server: %v", err)
		}
		logger.Info("serving metrics", logging.String("addr", s.server.Addr()))
	}
	return s, nil
}

// Close stops the metrics server and flushes pending spans.
func (s *session) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			s.logger.Warn("metrics server shutdown", logging.Err(err))
		}
	}
	if s.stopTelemetry != nil {
		if err := s.stopTelemetry(ctx); err != nil {
			s.logger.Warn("flushing spans", logging.Err(err))
		}
	}
}

// withLifecycle bounds ctx by the configured timeout and cancels it on
// SIGINT or SIGTERM.
func withLifecycle(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	cancelTimeout := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancelTimeout = context.WithTimeout(ctx, timeout)
	}
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	return ctx, func() {
		stopSignals()
		cancelTimeout()
	}
}

// timeoutError turns a deadline error into a TimeoutError naming the
// operation and the configured limit.
func timeoutError(err error, operation string, limit time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.TimeoutError{Operation: operation, Limit: limit}
	}
	return err
}
