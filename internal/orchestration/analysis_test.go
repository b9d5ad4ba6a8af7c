package orchestration

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/coinsim/internal/config"
	"github.com/agbru/coinsim/internal/fit"
	"github.com/agbru/coinsim/internal/stats"
)

func TestAnalyzeStreak(t *testing.T) {
	t.Parallel()
	plan := testPlan(config.ModeStreak, 1, 2, 3, 4, 5, 6)
	plan.Runs = 200
	rs, err := ExecuteStreak(context.Background(), plan, nil, io.Discard)
	require.NoError(t, err)

	r := AnalyzeStreak(rs, AnalysisOptions{Trim: stats.TrimSpec{Fraction: 0.02}})
	assert.Equal(t, config.ModeStreak, r.Mode)
	assert.Equal(t, 1200, r.Records)
	table, ok := r.Table("streak")
	require.True(t, ok)
	require.Len(t, table.Rows, 6)
	for _, row := range table.Rows {
		assert.Equal(t, 200, row.Count)
		assert.Less(t, row.TrimmedCount, row.Count)
	}
	row, _ := table.Row(1)
	assert.Equal(t, 1.0, row.Mean)

	require.Len(t, r.Fits, 1)
	assert.Equal(t, "scaled_exponential", r.Fits[0].Family)
	require.NoError(t, r.Fits[0].Err)
	assert.InDelta(t, 1, r.Fits[0].Model.Params[1], 0.2, "growth rate close to doubling")
}

func TestAnalyzeConvergence(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Mode = config.ModeConvergence
	cfg.MaxFlips = 60
	plan := testPlan(config.ModeConvergence, cfg.Parameters()...)
	plan.Runs = 300
	rs, err := ExecuteConvergence(context.Background(), plan, nil, io.Discard)
	require.NoError(t, err)

	r := AnalyzeConvergence(rs, NewAnalysisOptions(cfg))
	require.Len(t, r.Tables, 2)
	spread, ok := r.Table("convergence")
	require.True(t, ok)
	assert.Len(t, spread.Rows, 59)
	exact, ok := r.Table("exact_half")
	require.True(t, ok)
	assert.Len(t, exact.Rows, 30, "only even lengths have exact halves")
	require.NotNil(t, r.Findings)

	require.Len(t, r.Fits, 2)
	families := map[string]FitOutcome{}
	for _, f := range r.Fits {
		families[f.Family] = f
	}
	pl := families["power_law"]
	require.NoError(t, pl.Err)
	assert.InDelta(t, -0.5, pl.Model.Params[1], 0.1)
	assert.Contains(t, families, "exp_decay")
}

func TestAnalyzeProgressive(t *testing.T) {
	t.Parallel()
	plan := testPlan(config.ModeProgressive, 1, 2, 3)
	rs, err := ExecuteProgressive(context.Background(), plan, nil, io.Discard)
	require.NoError(t, err)

	r := AnalyzeProgressive(rs, AnalysisOptions{NoFit: true})
	require.NotNil(t, r.Progressive)
	assert.Len(t, r.Progressive.Absolute.Rows, plan.MaxRuns)
	assert.Len(t, r.Tables, 3)
	assert.Empty(t, r.Fits)
}

func TestAnalyzeFitFailureIsReported(t *testing.T) {
	t.Parallel()
	plan := testPlan(config.ModeStreak, 1, 2)
	rs, err := ExecuteStreak(context.Background(), plan, nil, io.Discard)
	require.NoError(t, err)

	r := AnalyzeStreak(rs, AnalysisOptions{})
	require.Len(t, r.Fits, 1)
	assert.Error(t, r.Fits[0].Err, "two points cannot fit three parameters")
	assert.Nil(t, r.Fits[0].Model)
	assert.Len(t, r.Tables[0].Rows, 2)
}

func TestNewAnalysisOptions(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.TrimCount = 3
	cfg.Fit.ExpDecay = config.FitProfile{Initial: []float64{0.4, 0.2, 0}, MaxIterations: 50}

	opts := NewAnalysisOptions(cfg)
	assert.Equal(t, 3, opts.Trim.Count)
	assert.Equal(t, cfg.TrimFraction, opts.Trim.Fraction)
	ed := opts.FitOptions[fit.ExpDecay{}.Name()]
	assert.Equal(t, []float64{0.4, 0.2, 0}, ed.Initial)
	assert.Equal(t, 50, ed.MaxIterations)
	assert.Nil(t, opts.FitOptions[fit.PowerLaw{}.Name()].Initial)
}

func TestScenario_StreakThousandRuns(t *testing.T) {
	t.Parallel()
	plan := testPlan(config.ModeStreak, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	plan.Runs = 1000
	plan.Workers = 4
	plan.BatchSize = 4096
	rs, err := ExecuteStreak(context.Background(), plan, nil, io.Discard)
	require.NoError(t, err)
	require.Len(t, rs, 10_000)
	for _, r := range rs {
		require.GreaterOrEqual(t, r.FlipsRequired, int64(r.StreakTarget))
	}

	report := AnalyzeStreak(rs, AnalysisOptions{Trim: stats.TrimSpec{Fraction: 0.05}, NoFit: true})
	table, ok := report.Table("streak")
	require.True(t, ok)
	row, ok := table.Row(10)
	require.True(t, ok)
	assert.Equal(t, 1000, row.Count)
	assert.Greater(t, row.Median, 1024.0/20)
	assert.Less(t, row.Median, 1024.0*20)
}

func TestScenario_ConvergenceLength100(t *testing.T) {
	t.Parallel()
	plan := testPlan(config.ModeConvergence, 100)
	plan.Runs = 10_000
	plan.Workers = 4
	rs, err := ExecuteConvergence(context.Background(), plan, nil, io.Discard)
	require.NoError(t, err)
	require.Len(t, rs, 10_000)

	report := AnalyzeConvergence(rs, AnalysisOptions{NoFit: true})
	table, ok := report.Table("convergence")
	require.True(t, ok)
	row, ok := table.Row(100)
	require.True(t, ok)
	assert.InDelta(t, 0.5, row.Mean, 0.01)
	assert.InEpsilon(t, 0.05, row.StdDev, 0.3)
}

// TestStreakMedianGrowsSuperLinearly checks the doubling trend of the median
// waiting time across targets.
func TestStreakMedianGrowsSuperLinearly(t *testing.T) {
	t.Parallel()
	plan := testPlan(config.ModeStreak, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	plan.Runs = 500
	plan.BaseSeed = 2024
	rs, err := ExecuteStreak(context.Background(), plan, nil, io.Discard)
	require.NoError(t, err)

	table, ok := AnalyzeStreak(rs, AnalysisOptions{NoFit: true}).Table("streak")
	require.True(t, ok)
	median := func(n int) float64 {
		row, ok := table.Row(n)
		require.True(t, ok, "target %d", n)
		return row.Median
	}

	assert.Equal(t, 1.0, median(1))
	for k := 2; k <= 5; k++ {
		assert.Greater(t, median(2*k), 2*median(k), "median(%d) vs median(%d)", 2*k, k)
	}
	for n := 6; n < 10; n++ {
		ratio := median(n+1) / median(n)
		assert.Greater(t, ratio, 1.4, "median(%d)/median(%d)", n+1, n)
		assert.Less(t, ratio, 2.8, "median(%d)/median(%d)", n+1, n)
	}
}
