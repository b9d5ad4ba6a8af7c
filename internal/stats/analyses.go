package stats

import (
	"math"

	"github.com/agbru/coinsim/internal/records"
)

// StreakAnalysis compares the trimmed mean waiting time with 2^n.
func StreakAnalysis(trim TrimSpec) Analysis {
	return Analysis{Name: "streak", Baseline: StreakBaseline, Compare: StatTrimmedMean, Trim: trim}
}

// ConvergenceAnalysis compares the spread of the head fraction with 1/(2√n).
func ConvergenceAnalysis(trim TrimSpec) Analysis {
	return Analysis{Name: "convergence", Baseline: ConvergenceStdDev, Compare: StatStdDev, Trim: trim}
}

// ExactHalfAnalysis compares the rate of exact half splits with
// C(n, n/2)·0.5^n. Indicator groups are never trimmed.
func ExactHalfAnalysis() Analysis {
	return Analysis{Name: "exact_half", Baseline: ExactHalfProbability, Compare: StatMean}
}

// ConvergenceFindings are the headline facts of a convergence table.
type ConvergenceFindings struct {
	// StablePoint is the first length whose std dev is below StableStdDev,
	// 0 when none is.
	StablePoint int
	// MaxMeanDeviation is the largest |mean - 0.5| and where it occurs.
	MaxMeanDeviation   float64
	MaxMeanDeviationAt int
	// MaxDistance is the largest |value - 0.5| seen in any run.
	MaxDistance   float64
	MaxDistanceAt int
	// IQRWithinPoint is the first length whose Q1 and Q3 both lie within
	// IQRBand of 0.5, 0 when none does.
	IQRWithinPoint int
}

// Thresholds used by the convergence findings.
const (
	StableStdDev = 0.05
	IQRBand      = 0.1
)

// FindConvergence extracts the convergence findings from a head-fraction
// table.
func FindConvergence(t Table) ConvergenceFindings {
	var f ConvergenceFindings
	for _, r := range t.Rows {
		if f.StablePoint == 0 && r.Count > 1 && r.StdDev < StableStdDev {
			f.StablePoint = r.ParameterValue
		}
		if d := math.Abs(r.Mean - 0.5); d > f.MaxMeanDeviation {
			f.MaxMeanDeviation, f.MaxMeanDeviationAt = d, r.ParameterValue
		}
		if d := math.Max(math.Abs(r.Min-0.5), math.Abs(r.Max-0.5)); d > f.MaxDistance {
			f.MaxDistance, f.MaxDistanceAt = d, r.ParameterValue
		}
		if f.IQRWithinPoint == 0 && r.Q1 >= 0.5-IQRBand && r.Q3 <= 0.5+IQRBand {
			f.IQRWithinPoint = r.ParameterValue
		}
	}
	return f
}

// ProgressiveSummary groups progressive records by sweep size and summarizes
// their absolute and percentage deviations from 2^n.
type ProgressiveSummary struct {
	Absolute   Table
	Percentage Table
}

// SummarizeProgressive builds the progressive deviation tables.
func SummarizeProgressive(rs []records.ProgressiveResult) ProgressiveSummary {
	abs := make([]records.Observation, len(rs))
	pct := make([]records.Observation, len(rs))
	for i, r := range rs {
		abs[i] = records.Observation{Parameter: r.TotalRuns, Value: r.AbsoluteDifference}
		pct[i] = records.Observation{Parameter: r.TotalRuns, Value: r.PercentageDifference}
	}
	return ProgressiveSummary{
		Absolute:   Aggregate(abs, Analysis{Name: "progressive_absolute"}),
		Percentage: Aggregate(pct, Analysis{Name: "progressive_percentage"}),
	}
}
