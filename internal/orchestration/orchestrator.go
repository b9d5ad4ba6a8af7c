package orchestration

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/coinsim/internal/config"
	"github.com/agbru/coinsim/internal/convergence"
	apperrors "github.com/agbru/coinsim/internal/errors"
	"github.com/agbru/coinsim/internal/flip"
	"github.com/agbru/coinsim/internal/progress"
	"github.com/agbru/coinsim/internal/records"
	"github.com/agbru/coinsim/internal/streak"
)

// ProgressBufferMultiplier defines the buffer size multiplier for the progress
// channel. A larger buffer reduces the likelihood of blocking workers when the
// UI is slow to consume updates.
const ProgressBufferMultiplier = 5

// ExecuteStreak runs plan.Runs streak searches for every target in the plan.
// Records are ordered by run, then by target. On failure the first error is
// returned and the records are discarded.
func ExecuteStreak(ctx context.Context, plan Plan, reporter ProgressReporter, out io.Writer) ([]records.StreakResult, error) {
	results := make([]records.StreakResult, plan.TotalRecords())
	obs := plan.observer()
	err := execute(ctx, plan, plan.runJobs(plan.Runs), reporter, out, func(ctx context.Context, src *flip.Source, j job) error {
		target := plan.Parameters[j.lane]
		d := streak.Detector{Target: target, BatchSize: plan.BatchSize, FlipCap: plan.FlipCap}
		for run := j.first; run <= j.last; run++ {
			src.Reset(flip.DeriveSeed(plan.BaseSeed, labelStreak, uint64(run), uint64(target)))
			start := time.Now()
			flips, err := d.Detect(ctx, src)
			if err != nil {
				return simulationError(plan.Mode, target, err)
			}
			obs.ObserveRun(string(config.ModeStreak), target, flips, time.Since(start))
			results[plan.slot(run, j.lane)] = records.StreakResult{RunIndex: run, StreakTarget: target, FlipsRequired: flips}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ExecuteConvergence samples plan.Runs sequences for every length in the
// plan. Records are ordered by run, then by length.
func ExecuteConvergence(ctx context.Context, plan Plan, reporter ProgressReporter, out io.Writer) ([]records.ConvergenceResult, error) {
	results := make([]records.ConvergenceResult, plan.TotalRecords())
	obs := plan.observer()
	err := execute(ctx, plan, plan.runJobs(plan.Runs), reporter, out, func(ctx context.Context, src *flip.Source, j job) error {
		length := plan.Parameters[j.lane]
		s := convergence.Sampler{Length: length, BatchSize: plan.BatchSize}
		for run := j.first; run <= j.last; run++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			src.Reset(flip.DeriveSeed(plan.BaseSeed, labelConvergence, uint64(run), uint64(length)))
			start := time.Now()
			res, err := s.Sample(src)
			if err != nil {
				return simulationError(plan.Mode, length, err)
			}
			obs.ObserveRun(string(config.ModeConvergence), length, int64(length), time.Since(start))
			results[plan.slot(run, j.lane)] = records.ConvergenceResult{RunIndex: run, SequenceLength: length, Heads: res.Heads}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ExecuteProgressive repeats the streak simulation with 1, 2, ... MaxRuns
// runs per target. Every sweep uses fresh streams. Records are ordered by
// sweep size, run and target.
func ExecuteProgressive(ctx context.Context, plan Plan, reporter ProgressReporter, out io.Writer) ([]records.ProgressiveResult, error) {
	results := make([]records.ProgressiveResult, plan.TotalRecords())
	obs := plan.observer()
	err := execute(ctx, plan, plan.progressiveJobs(), reporter, out, func(ctx context.Context, src *flip.Source, j job) error {
		target := plan.Parameters[j.lane]
		d := streak.Detector{Target: target, BatchSize: plan.BatchSize, FlipCap: plan.FlipCap}
		for run := j.first; run <= j.last; run++ {
			src.Reset(flip.DeriveSeed(plan.BaseSeed, labelProgressive, uint64(j.total), uint64(run), uint64(target)))
			start := time.Now()
			flips, err := d.Detect(ctx, src)
			if err != nil {
				return simulationError(plan.Mode, target, err)
			}
			obs.ObserveRun(string(config.ModeProgressive), target, flips, time.Since(start))
			r := records.StreakResult{RunIndex: run, StreakTarget: target, FlipsRequired: flips}
			results[plan.progressiveSlot(j.total, run, j.lane)] = records.NewProgressiveResult(j.total, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// execute runs jobs on an errgroup bounded by plan.workers(). Each job gets
// its own flip.Source; work reseeds it for every run. Progress is reported
// per lane after each job. The reporter goroutine is always drained and
// joined before execute returns.
func execute(ctx context.Context, plan Plan, jobs []job, reporter ProgressReporter, out io.Writer, work func(ctx context.Context, src *flip.Source, j job) error) error {
	if reporter == nil {
		reporter = NullProgressReporter{}
	}
	lanes := plan.Lanes()
	progressChan := make(chan progress.ProgressUpdate, max(1, lanes)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, lanes, out)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(plan.workers())
	done := make([]atomic.Int64, lanes)
	perLane := float64(plan.RecordsPerLane())

	for _, j := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src := flip.NewSource(flip.Seed{})
			if err := work(gctx, src, j); err != nil {
				return err
			}
			n := done[j.lane].Add(int64(j.size()))
			select {
			case progressChan <- progress.ProgressUpdate{Lane: j.lane, Value: float64(n) / perLane, Records: n}:
			case <-gctx.Done():
			}
			return nil
		})
	}

	err := g.Wait()
	close(progressChan)
	displayWg.Wait()

	if err == nil {
		err = ctx.Err()
	}
	return err
}

// simulationError keeps context errors unwrapped so that callers can map
// them to timeout and cancellation exit codes.
func simulationError(mode config.Mode, parameter int, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperrors.SimulationError{Mode: string(mode), Parameter: parameter, Cause: err}
}
