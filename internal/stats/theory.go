package stats

import (
	"math"
	"math/big"
)

// Baseline maps a parameter value to its theoretical counterpart.
type Baseline func(n int) float64

// StreakBaseline is the reference waiting time 2^n for a streak of length n.
func StreakBaseline(n int) float64 {
	return math.Exp2(float64(n))
}

// ExactHalfProbability returns C(n, n/2)·0.5^n, the probability that exactly
// half of n fair flips are heads. It is 0 for odd or non-positive n.
//
// The value is computed as an exact rational before the final rounding, so it
// stays accurate for n in the thousands.
func ExactHalfProbability(n int) float64 {
	r := ExactHalfProbabilityRat(n)
	f, _ := r.Float64()
	return f
}

// ExactHalfProbabilityRat is the exact rational form of ExactHalfProbability.
func ExactHalfProbabilityRat(n int) *big.Rat {
	if n <= 0 || n%2 != 0 {
		return new(big.Rat)
	}
	num := new(big.Int).Binomial(int64(n), int64(n/2))
	den := new(big.Int).Lsh(big.NewInt(1), uint(n))
	return new(big.Rat).SetFrac(num, den)
}

// ConvergenceStdDev is the standard deviation 1/(2√n) of the head fraction
// of n fair flips.
func ConvergenceStdDev(n int) float64 {
	if n <= 0 {
		return math.NaN()
	}
	return 1 / (2 * math.Sqrt(float64(n)))
}
