package export

import (
	"github.com/agbru/coinsim/internal/config"
	"github.com/agbru/coinsim/internal/records"
)

// Dataset holds the records of one simulation. Only the slice matching Mode
// is populated.
type Dataset struct {
	Mode        config.Mode
	Streak      []records.StreakResult
	Convergence []records.ConvergenceResult
	Progressive []records.ProgressiveResult
}

// Len returns the number of records.
func (d Dataset) Len() int {
	switch d.Mode {
	case config.ModeConvergence:
		return len(d.Convergence)
	case config.ModeProgressive:
		return len(d.Progressive)
	default:
		return len(d.Streak)
	}
}

// Column names, shared by every format.
var (
	streakColumns      = []string{"run_index", "streak_target", "flips_required"}
	convergenceColumns = []string{"run_index", "sequence_length", "heads", "head_fraction", "is_exact_half"}
	progressiveColumns = []string{"total_runs", "run_index", "streak_target", "flips_required", "theoretical", "absolute_difference", "percentage_difference"}
	tableColumns       = []string{"parameter_value", "count", "mean", "std_dev", "median", "q1", "q3", "min", "max", "trimmed_mean", "trimmed_median", "trimmed_count", "empirical", "empirical_untrimmed", "theoretical_value", "absolute_difference", "percentage_difference"}
	fitColumns         = []string{"analysis", "family", "expression", "params", "std_errors", "ssr", "r_squared", "iterations", "degenerate", "error"}
)

// Columns returns the record header of the dataset's mode.
func (d Dataset) Columns() []string {
	switch d.Mode {
	case config.ModeConvergence:
		return convergenceColumns
	case config.ModeProgressive:
		return progressiveColumns
	default:
		return streakColumns
	}
}

// Rows returns the records as cell values in Columns order.
func (d Dataset) Rows() [][]any {
	var rows [][]any
	switch d.Mode {
	case config.ModeConvergence:
		rows = make([][]any, len(d.Convergence))
		for i, r := range d.Convergence {
			rows[i] = []any{r.RunIndex, r.SequenceLength, r.Heads, r.HeadFraction(), r.IsExactHalf()}
		}
	case config.ModeProgressive:
		rows = make([][]any, len(d.Progressive))
		for i, r := range d.Progressive {
			rows[i] = []any{r.TotalRuns, r.RunIndex, r.StreakTarget, r.FlipsRequired, r.Theoretical, r.AbsoluteDifference, r.PercentageDifference}
		}
	default:
		rows = make([][]any, len(d.Streak))
		for i, r := range d.Streak {
			rows[i] = []any{r.RunIndex, r.StreakTarget, r.FlipsRequired}
		}
	}
	return rows
}
