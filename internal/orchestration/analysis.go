package orchestration

import (
	"github.com/agbru/coinsim/internal/config"
	"github.com/agbru/coinsim/internal/fit"
	"github.com/agbru/coinsim/internal/records"
	"github.com/agbru/coinsim/internal/stats"
)

// FitOutcome is the result of fitting one model family to one table. Exactly
// one of Model and Err is set.
type FitOutcome struct {
	Analysis string
	Family   string
	Model    *fit.FittedModel
	Err      error
}

// Report gathers everything derived from one set of records.
type Report struct {
	Mode        config.Mode
	Records     int
	Tables      []stats.Table
	Fits        []FitOutcome
	Findings    *stats.ConvergenceFindings
	Progressive *stats.ProgressiveSummary
}

// Table returns the table produced by the named analysis.
func (r Report) Table(name string) (stats.Table, bool) {
	for _, t := range r.Tables {
		if t.Analysis.Name == name {
			return t, true
		}
	}
	return stats.Table{}, false
}

// AnalysisOptions controls aggregation and fitting.
type AnalysisOptions struct {
	Trim  stats.TrimSpec
	NoFit bool
	// FitOptions overrides per model family; missing families use defaults.
	FitOptions map[string]fit.Options
}

// NewAnalysisOptions derives the analysis options from the configuration.
func NewAnalysisOptions(cfg config.AppConfig) AnalysisOptions {
	return AnalysisOptions{
		Trim:  stats.TrimSpec{Fraction: cfg.TrimFraction, Count: cfg.TrimCount},
		NoFit: cfg.NoFit,
		FitOptions: map[string]fit.Options{
			fit.ScaledExponential{}.Name(): fitOptions(cfg.Fit.ScaledExponential),
			fit.PowerLaw{}.Name():          fitOptions(cfg.Fit.PowerLaw),
			fit.ExpDecay{}.Name():          fitOptions(cfg.Fit.ExpDecay),
		},
	}
}

func fitOptions(p config.FitProfile) fit.Options {
	return fit.Options{
		Initial:       p.Initial,
		Lower:         p.Lower,
		Upper:         p.Upper,
		MaxIterations: p.MaxIterations,
	}
}

// AnalyzeStreak aggregates waiting times per target, compares the trimmed
// mean with 2^n and fits the scaled exponential family.
func AnalyzeStreak(rs []records.StreakResult, opts AnalysisOptions) Report {
	t := stats.Aggregate(records.FlipsObservations(rs), stats.StreakAnalysis(opts.Trim))
	r := Report{Mode: config.ModeStreak, Records: len(rs), Tables: []stats.Table{t}}
	r.fit(opts, t, stats.StatTrimmedMean, fit.ScaledExponential{})
	return r
}

// AnalyzeConvergence aggregates head fractions and exact-half indicators per
// length, fits a power law to the spread and an exponential decay to the
// exact-half rate, and extracts the convergence findings.
func AnalyzeConvergence(rs []records.ConvergenceResult, opts AnalysisOptions) Report {
	spread := stats.Aggregate(records.FractionObservations(rs), stats.ConvergenceAnalysis(opts.Trim))
	exact := stats.Aggregate(records.ExactHalfObservations(rs), stats.ExactHalfAnalysis())
	findings := stats.FindConvergence(spread)
	r := Report{
		Mode:     config.ModeConvergence,
		Records:  len(rs),
		Tables:   []stats.Table{spread, exact},
		Findings: &findings,
	}
	r.fit(opts, spread, stats.StatStdDev, fit.PowerLaw{})
	r.fit(opts, exact, stats.StatMean, fit.ExpDecay{})
	return r
}

// AnalyzeProgressive summarizes the deviation from 2^n per sweep size and
// aggregates all progressive records as one streak table.
func AnalyzeProgressive(rs []records.ProgressiveResult, opts AnalysisOptions) Report {
	summary := stats.SummarizeProgressive(rs)
	t := stats.Aggregate(records.FlipsObservations(records.ProgressiveStreakResults(rs)), stats.StreakAnalysis(opts.Trim))
	r := Report{
		Mode:        config.ModeProgressive,
		Records:     len(rs),
		Tables:      []stats.Table{t, summary.Absolute, summary.Percentage},
		Progressive: &summary,
	}
	r.fit(opts, t, stats.StatTrimmedMean, fit.ScaledExponential{})
	return r
}

func (r *Report) fit(opts AnalysisOptions, t stats.Table, s stats.Statistic, m fit.Model) {
	if opts.NoFit {
		return
	}
	xs, ys := t.Series(s)
	fm, err := fit.Fit(m, xs, ys, opts.FitOptions[m.Name()])
	r.Fits = append(r.Fits, FitOutcome{Analysis: t.Analysis.Name, Family: m.Name(), Model: fm, Err: err})
}
