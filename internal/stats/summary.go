package stats

import (
	"math"
	"slices"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	apperrors "github.com/agbru/coinsim/internal/errors"
)

// TrimSpec selects how many samples are discarded from each end of a sorted
// group. Count, when positive, wins over Fraction.
type TrimSpec struct {
	Fraction float64
	Count    int
}

// Enabled reports whether any trimming is requested.
func (t TrimSpec) Enabled() bool { return t.Count > 0 || t.Fraction > 0 }

// PerSide returns the number of samples removed from each end of a group of
// n samples. A positive fraction always removes at least one sample.
func (t TrimSpec) PerSide(n int) int {
	if t.Count > 0 {
		return t.Count
	}
	if t.Fraction <= 0 {
		return 0
	}
	return max(1, int(math.Floor(float64(n)*t.Fraction)))
}

// Trim returns the middle of sorted after discarding PerSide samples from
// both ends. It fails with an ArithmeticError when nothing would be left.
func Trim(sorted []float64, spec TrimSpec) ([]float64, error) {
	k := spec.PerSide(len(sorted))
	if k == 0 {
		return sorted, nil
	}
	if len(sorted) <= 2*k {
		return nil, apperrors.ArithmeticError{
			Operation: "trim",
			GroupSize: len(sorted),
			Message:   "trimming would remove every sample",
		}
	}
	return sorted[k : len(sorted)-k], nil
}

// Summary holds the descriptive statistics of one group.
type Summary struct {
	Count  int
	Mean   float64
	StdDev float64
	Median float64
	Q1     float64
	Q3     float64
	Min    float64
	Max    float64

	// Trimmed statistics are NaN when TrimErr is set.
	TrimmedMean   float64
	TrimmedMedian float64
	TrimmedCount  int
	TrimErr       error
}

// TrimmedAvailable reports whether the trimmed statistics were computed.
func (s Summary) TrimmedAvailable() bool { return s.TrimErr == nil && s.TrimmedCount > 0 }

// Summarize computes the statistics of values. The input is not modified.
// The sample standard deviation of a single value is reported as 0.
func Summarize(values []float64, trim TrimSpec) Summary {
	if len(values) == 0 {
		nan := math.NaN()
		return Summary{
			Mean: nan, StdDev: nan, Median: nan, Q1: nan, Q3: nan, Min: nan, Max: nan,
			TrimmedMean: nan, TrimmedMedian: nan,
			TrimErr: apperrors.ArithmeticError{Operation: "summary", Message: "empty group"},
		}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	s := Summary{Count: len(sorted)}
	s.Mean, _ = mstats.Mean(sorted)
	s.Median, _ = mstats.Median(sorted)
	s.Min, _ = mstats.Min(sorted)
	s.Max, _ = mstats.Max(sorted)
	if len(sorted) > 1 {
		s.StdDev, _ = mstats.StandardDeviationSample(sorted)
	}
	s.Q1 = stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	s.Q3 = stat.Quantile(0.75, stat.LinInterp, sorted, nil)
	// a constant group has exact moments; summing would add rounding error
	constant := s.Min == s.Max
	if constant {
		s.Mean, s.StdDev = s.Min, 0
	}

	trimmed, err := Trim(sorted, trim)
	if err != nil {
		s.TrimErr = err
		s.TrimmedMean, s.TrimmedMedian = math.NaN(), math.NaN()
		return s
	}
	s.TrimmedCount = len(trimmed)
	s.TrimmedMean, _ = mstats.Mean(trimmed)
	s.TrimmedMedian, _ = mstats.Median(trimmed)
	if constant {
		s.TrimmedMean = s.Min
	}
	return s
}
