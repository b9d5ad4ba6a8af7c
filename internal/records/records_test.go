package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvergenceResult(t *testing.T) {
	t.Parallel()
	r := ConvergenceResult{RunIndex: 1, SequenceLength: 8, Heads: 4}
	assert.Equal(t, 0.5, r.HeadFraction())
	assert.True(t, r.IsExactHalf())

	odd := ConvergenceResult{RunIndex: 1, SequenceLength: 7, Heads: 3}
	assert.False(t, odd.IsExactHalf())
	assert.InDelta(t, 3.0/7, odd.HeadFraction(), 1e-12)
}

func TestNewProgressiveResult(t *testing.T) {
	t.Parallel()
	r := NewProgressiveResult(5, StreakResult{RunIndex: 2, StreakTarget: 3, FlipsRequired: 10})
	assert.Equal(t, 5, r.TotalRuns)
	assert.Equal(t, 8.0, r.Theoretical)
	assert.Equal(t, 2.0, r.AbsoluteDifference)
	assert.Equal(t, 25.0, r.PercentageDifference)
	assert.Equal(t, []StreakResult{r.StreakResult}, ProgressiveStreakResults([]ProgressiveResult{r}))

	fast := NewProgressiveResult(1, StreakResult{RunIndex: 1, StreakTarget: 4, FlipsRequired: 4})
	assert.Equal(t, 12.0, fast.AbsoluteDifference)
	assert.Equal(t, -75.0, fast.PercentageDifference, "streaks found early undershoot 2^n")
}

func TestObservations(t *testing.T) {
	t.Parallel()
	streaks := []StreakResult{{1, 1, 1}, {1, 2, 6}}
	assert.Equal(t, []Observation{{1, 1}, {2, 6}}, FlipsObservations(streaks))

	conv := []ConvergenceResult{{1, 2, 1}, {1, 3, 2}, {1, 4, 3}}
	assert.Equal(t, []Observation{{2, 0.5}, {3, 2.0 / 3}, {4, 0.75}}, FractionObservations(conv))
	assert.Equal(t, []Observation{{2, 1}, {4, 0}}, ExactHalfObservations(conv))
}
