// Package calibration measures flip throughput for combinations of worker
// count and batch size and caches the best combination as a JSON profile.
package calibration

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/agbru/coinsim/internal/config"
	"github.com/agbru/coinsim/internal/logging"
	"github.com/agbru/coinsim/internal/orchestration"
)

// Options controls a calibration run.
type Options struct {
	// Quick benchmarks a reduced candidate set.
	Quick bool
	// MaxStreak and Runs size the streak workload of every candidate.
	MaxStreak int
	Runs      int
	Seed      uint64
	Logger    logging.Logger
}

// DefaultOptions returns a workload of roughly ten million flips.
func DefaultOptions() Options {
	return Options{MaxStreak: 14, Runs: 300, Seed: 0x5eed}
}

type calibrationResult struct {
	Workers   int
	BatchSize int
	Flips     int64
	Duration  time.Duration
	Err       error
}

func (r calibrationResult) throughput() float64 {
	if r.Err != nil || r.Duration <= 0 {
		return 0
	}
	return float64(r.Flips) / r.Duration.Seconds()
}

type flipCounter struct{ flips atomic.Int64 }

func (c *flipCounter) ObserveRun(_ string, _ int, flips int64, _ time.Duration) {
	c.flips.Add(flips)
}

// Calibrate benchmarks every candidate, prints the results to out and
// returns a profile holding the fastest combination. Every candidate runs
// the same seeded workload, so all of them draw the same flips.
func Calibrate(ctx context.Context, opts Options, out io.Writer) (*CalibrationProfile, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	workers, batches := GenerateWorkerCounts(), GenerateBatchSizes()
	if opts.Quick {
		workers, batches = GenerateQuickWorkerCounts(), GenerateQuickBatchSizes()
	}

	start := time.Now()
	var results []calibrationResult
	for _, w := range workers {
		for _, b := range batches {
			res := measure(ctx, opts, w, b)
			if res.Err != nil && ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Debug("calibration candidate",
				logging.Int("workers", w), logging.Int("batch_size", b),
				logging.Duration("duration", res.Duration), logging.Int64("flips", res.Flips))
			results = append(results, res)
		}
	}

	best, ok := bestResult(results)
	if !ok {
		return nil, errors.New("calibration failed: no candidate completed")
	}
	printCalibrationResults(out, results, best)

	p := NewProfile()
	p.OptimalWorkers = best.Workers
	p.OptimalBatchSize = best.BatchSize
	p.FlipsPerSecond = best.throughput()
	p.CalibrationFlips = best.Flips
	p.CalibrationTime = time.Since(start).Round(time.Millisecond).String()
	return p, nil
}

func measure(ctx context.Context, opts Options, workers, batch int) calibrationResult {
	counter := &flipCounter{}
	plan := orchestration.Plan{
		Mode:      config.ModeStreak,
		Runs:      opts.Runs,
		BaseSeed:  opts.Seed,
		BatchSize: batch,
		Workers:   workers,
		Observer:  counter,
	}
	for n := 1; n <= opts.MaxStreak; n++ {
		plan.Parameters = append(plan.Parameters, n)
	}
	start := time.Now()
	_, err := orchestration.ExecuteStreak(ctx, plan, orchestration.NullProgressReporter{}, io.Discard)
	return calibrationResult{
		Workers:   workers,
		BatchSize: batch,
		Flips:     counter.flips.Load(),
		Duration:  time.Since(start),
		Err:       err,
	}
}

// bestResult picks the highest throughput; ties go to fewer workers, then
// the smaller batch.
func bestResult(results []calibrationResult) (calibrationResult, bool) {
	var best calibrationResult
	found := false
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if !found || r.throughput() > best.throughput() {
			best, found = r, true
		}
	}
	return best, found
}

// ApplyProfile fills Workers and BatchSize from the profile when they are
// still unset.
func ApplyProfile(cfg config.AppConfig, p *CalibrationProfile) config.AppConfig {
	if p == nil {
		return cfg
	}
	if cfg.Workers == 0 && p.OptimalWorkers > 0 {
		cfg.Workers = p.OptimalWorkers
	}
	if cfg.BatchSize == 0 && p.OptimalBatchSize > 0 {
		cfg.BatchSize = p.OptimalBatchSize
	}
	return cfg
}

// LoadCachedCalibration applies the cached profile at path (the default path
// when empty) if it is valid and not stale. It reports whether a profile was
// applied.
func LoadCachedCalibration(cfg config.AppConfig, path string) (config.AppConfig, bool) {
	if path == "" {
		path = GetDefaultProfilePath()
	}
	p, err := loadProfile(path)
	if err != nil || !p.IsValid() || p.IsStale(DefaultMaxAge) {
		return cfg, false
	}
	return ApplyProfile(cfg, p), true
}
