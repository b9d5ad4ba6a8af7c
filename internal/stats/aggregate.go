package stats

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	apperrors "github.com/agbru/coinsim/internal/errors"
	"github.com/agbru/coinsim/internal/records"
)

// Statistic selects the per-group statistic compared with the baseline.
type Statistic int

const (
	StatMean Statistic = iota
	StatMedian
	StatStdDev
	StatTrimmedMean
	StatTrimmedMedian
)

var statisticNames = map[Statistic]string{
	StatMean:          "mean",
	StatMedian:        "median",
	StatStdDev:        "std_dev",
	StatTrimmedMean:   "trimmed_mean",
	StatTrimmedMedian: "trimmed_median",
}

func (s Statistic) String() string { return statisticNames[s] }

// Trimmed reports whether the statistic is computed on trimmed data.
func (s Statistic) Trimmed() bool { return s == StatTrimmedMean || s == StatTrimmedMedian }

// Of extracts the statistic from a summary. Trimmed statistics fall back to
// their untrimmed counterpart when the group was too small to trim.
func (s Statistic) Of(sum Summary) float64 {
	switch s {
	case StatMedian:
		return sum.Median
	case StatStdDev:
		return sum.StdDev
	case StatTrimmedMean:
		if sum.TrimmedAvailable() {
			return sum.TrimmedMean
		}
		return sum.Mean
	case StatTrimmedMedian:
		if sum.TrimmedAvailable() {
			return sum.TrimmedMedian
		}
		return sum.Median
	default:
		return sum.Mean
	}
}

// Analysis parameterizes one aggregation: which baseline to compare against,
// which statistic to compare and how to trim.
type Analysis struct {
	Name     string
	Baseline Baseline
	Compare  Statistic
	Trim     TrimSpec
}

// AggregateRow is the summary of one parameter value.
type AggregateRow struct {
	ParameterValue int
	Summary
	// Empirical is the compared statistic.
	Empirical float64
	// EmpiricalUntrimmed is set when a trimmed statistic was asked for but
	// the group was too small to trim, so Empirical holds the untrimmed one.
	EmpiricalUntrimmed   bool
	TheoreticalValue     float64
	AbsoluteDifference   float64
	PercentageDifference float64
}

// Table is the result of one Analysis.
type Table struct {
	Analysis Analysis
	Rows     []AggregateRow

	// Across-row deviation metrics. NaN when undefined.
	MAPE     float64
	RMSE     float64
	Pearson  float64
	PValue   float64
	RSquared float64
}

// Aggregate groups observations by parameter and summarizes each group. The
// result does not depend on the order of obs.
func Aggregate(obs []records.Observation, a Analysis) Table {
	groups := make(map[int][]float64)
	for _, o := range obs {
		groups[o.Parameter] = append(groups[o.Parameter], o.Value)
	}
	params := make([]int, 0, len(groups))
	for p := range groups {
		params = append(params, p)
	}
	slices.Sort(params)

	t := Table{Analysis: a, Rows: make([]AggregateRow, 0, len(params))}
	for _, p := range params {
		sum := Summarize(groups[p], a.Trim)
		if ae, ok := sum.TrimErr.(apperrors.ArithmeticError); ok {
			ae.Parameter = p
			sum.TrimErr = ae
		}
		row := AggregateRow{
			ParameterValue:       p,
			Summary:              sum,
			Empirical:            a.Compare.Of(sum),
			EmpiricalUntrimmed:   a.Compare.Trimmed() && !sum.TrimmedAvailable(),
			TheoreticalValue:     math.NaN(),
			AbsoluteDifference:   math.NaN(),
			PercentageDifference: math.NaN(),
		}
		if a.Baseline != nil {
			row.TheoreticalValue = a.Baseline(p)
			row.AbsoluteDifference, row.PercentageDifference = Deviation(row.Empirical, row.TheoreticalValue)
		}
		t.Rows = append(t.Rows, row)
	}
	t.computeFit()
	return t
}

// Deviation returns |emp - theory| and the signed percentage difference
// (emp - theory)/theory·100. The percentage is NaN for a zero baseline.
func Deviation(emp, theory float64) (abs, pct float64) {
	abs = math.Abs(emp - theory)
	if theory == 0 || math.IsNaN(theory) {
		return abs, math.NaN()
	}
	return abs, (emp - theory) / theory * 100
}

func (t *Table) computeFit() {
	t.MAPE, t.RMSE, t.Pearson, t.PValue, t.RSquared = math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()
	if t.Analysis.Baseline == nil {
		return
	}
	var emp, theo []float64
	var apeSum float64
	apeN := 0
	for _, r := range t.Rows {
		if !finite(r.Empirical) || !finite(r.TheoreticalValue) {
			continue
		}
		emp = append(emp, r.Empirical)
		theo = append(theo, r.TheoreticalValue)
		if !math.IsNaN(r.PercentageDifference) {
			apeSum += math.Abs(r.PercentageDifference)
			apeN++
		}
	}
	if apeN > 0 {
		t.MAPE = apeSum / float64(apeN)
	}
	if len(emp) == 0 {
		return
	}
	t.RMSE = RMSE(emp, theo)
	t.RSquared = RSquared(emp, theo)
	t.Pearson, t.PValue = Pearson(emp, theo)
}

// RMSE is the root mean squared difference of two equal-length series.
func RMSE(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return math.NaN()
	}
	var ss float64
	for i := range a {
		d := a[i] - b[i]
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(a)))
}

// RSquared is 1 - SS_res/SS_tot of predicted against observed, with SS_tot
// taken around the observed mean. It is NaN when observed is constant.
func RSquared(observed, predicted []float64) float64 {
	if len(observed) == 0 || len(observed) != len(predicted) {
		return math.NaN()
	}
	mean := stat.Mean(observed, nil)
	var ssRes, ssTot float64
	for i := range observed {
		ssRes += (observed[i] - predicted[i]) * (observed[i] - predicted[i])
		ssTot += (observed[i] - mean) * (observed[i] - mean)
	}
	if ssTot == 0 {
		return math.NaN()
	}
	return 1 - ssRes/ssTot
}

// Pearson returns the correlation coefficient of x and y and its two-sided
// p-value under the t distribution with n-2 degrees of freedom. Both are NaN
// for fewer than three points or a constant series.
func Pearson(x, y []float64) (r, p float64) {
	n := len(x)
	if n < 3 || n != len(y) {
		return math.NaN(), math.NaN()
	}
	r = stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return r, math.NaN()
	}
	r = math.Max(-1, math.Min(1, r))
	if math.Abs(r) == 1 {
		return r, 0
	}
	df := float64(n - 2)
	tv := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return r, 2 * (1 - dist.CDF(math.Abs(tv)))
}

// Series returns the (parameter, statistic) pairs of the table, skipping
// non-finite values. It feeds the model fitter.
func (t Table) Series(s Statistic) (xs, ys []float64) {
	for _, r := range t.Rows {
		v := s.Of(r.Summary)
		if !finite(v) {
			continue
		}
		xs = append(xs, float64(r.ParameterValue))
		ys = append(ys, v)
	}
	return xs, ys
}

// Row returns the row for a parameter value.
func (t Table) Row(param int) (AggregateRow, bool) {
	i, ok := slices.BinarySearchFunc(t.Rows, param, func(r AggregateRow, p int) int { return r.ParameterValue - p })
	if !ok {
		return AggregateRow{}, false
	}
	return t.Rows[i], true
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
