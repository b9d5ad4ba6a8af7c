// Package records defines the immutable per-run records produced by the
// simulation driver and the observations the aggregator derives from them.
package records

import "math"

// StreakResult records how many flips one run needed to see a streak.
type StreakResult struct {
	RunIndex      int   `json:"run_index" db:"run_index"`
	StreakTarget  int   `json:"streak_target" db:"streak_target"`
	FlipsRequired int64 `json:"flips_required" db:"flips_required"`
}

// ConvergenceResult records the head count of one sampled sequence.
type ConvergenceResult struct {
	RunIndex       int `json:"run_index" db:"run_index"`
	SequenceLength int `json:"sequence_length" db:"sequence_length"`
	Heads          int `json:"heads" db:"heads"`
}

// HeadFraction returns Heads/SequenceLength.
func (r ConvergenceResult) HeadFraction() float64 {
	if r.SequenceLength == 0 {
		return 0
	}
	return float64(r.Heads) / float64(r.SequenceLength)
}

// IsExactHalf reports whether exactly half of the flips were heads.
func (r ConvergenceResult) IsExactHalf() bool {
	return r.SequenceLength%2 == 0 && 2*r.Heads == r.SequenceLength
}

// ProgressiveResult is a streak record produced inside a progressive sweep,
// carrying the sweep size and its deviation from 2^n.
type ProgressiveResult struct {
	TotalRuns int `json:"total_runs" db:"total_runs"`
	StreakResult
	Theoretical          float64 `json:"theoretical" db:"theoretical"`
	AbsoluteDifference   float64 `json:"absolute_difference" db:"absolute_difference"`
	PercentageDifference float64 `json:"percentage_difference" db:"percentage_difference"`
}

// NewProgressiveResult fills the deviation fields of a progressive record.
func NewProgressiveResult(totalRuns int, r StreakResult) ProgressiveResult {
	theory := math.Exp2(float64(r.StreakTarget))
	diff := float64(r.FlipsRequired) - theory
	return ProgressiveResult{
		TotalRuns:            totalRuns,
		StreakResult:         r,
		Theoretical:          theory,
		AbsoluteDifference:   math.Abs(diff),
		PercentageDifference: diff / theory * 100,
	}
}

// Observation is one (parameter, value) pair fed to the aggregator.
type Observation struct {
	Parameter int
	Value     float64
}

// FlipsObservations maps streak records to (target, flips) observations.
func FlipsObservations(rs []StreakResult) []Observation {
	out := make([]Observation, len(rs))
	for i, r := range rs {
		out[i] = Observation{Parameter: r.StreakTarget, Value: float64(r.FlipsRequired)}
	}
	return out
}

// FractionObservations maps convergence records to (length, head fraction)
// observations.
func FractionObservations(rs []ConvergenceResult) []Observation {
	out := make([]Observation, len(rs))
	for i, r := range rs {
		out[i] = Observation{Parameter: r.SequenceLength, Value: r.HeadFraction()}
	}
	return out
}

// ExactHalfObservations maps convergence records to (length, 0/1) indicators
// of an exact half split. Odd lengths are skipped.
func ExactHalfObservations(rs []ConvergenceResult) []Observation {
	out := make([]Observation, 0, len(rs))
	for _, r := range rs {
		if r.SequenceLength%2 != 0 {
			continue
		}
		v := 0.0
		if r.IsExactHalf() {
			v = 1
		}
		out = append(out, Observation{Parameter: r.SequenceLength, Value: v})
	}
	return out
}

// ProgressiveStreakResults strips the progressive metadata.
func ProgressiveStreakResults(rs []ProgressiveResult) []StreakResult {
	out := make([]StreakResult, len(rs))
	for i, r := range rs {
		out[i] = r.StreakResult
	}
	return out
}
