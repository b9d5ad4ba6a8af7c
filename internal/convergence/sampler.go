// Package convergence samples the fraction of heads in fixed-length
// sequences of fair coin flips.
package convergence

import (
	"errors"

	"github.com/agbru/coinsim/internal/flip"
)

// Result is the outcome of one sampled sequence.
type Result struct {
	Length int
	Heads  int
}

// Fraction returns Heads/Length.
func (r Result) Fraction() float64 {
	if r.Length == 0 {
		return 0
	}
	return float64(r.Heads) / float64(r.Length)
}

// IsExactHalf reports whether exactly half of the flips were heads. It is
// always false for odd lengths.
func (r Result) IsExactHalf() bool {
	return r.Length%2 == 0 && 2*r.Heads == r.Length
}

// DistanceFromHalf returns |Fraction - 0.5|.
func (r Result) DistanceFromHalf() float64 {
	d := r.Fraction() - 0.5
	if d < 0 {
		return -d
	}
	return d
}

// Sampler draws sequences of a fixed length.
type Sampler struct {
	Length    int
	BatchSize int
}

// Sample draws exactly Length outcomes from src, in batches of at most
// BatchSize, and counts the heads.
func (s Sampler) Sample(src flip.Stream) (Result, error) {
	if s.Length < 1 {
		return Result{}, errors.New("sequence length must be at least 1")
	}
	batch := s.BatchSize
	if batch < 1 {
		batch = s.Length
	}
	heads := 0
	for left := s.Length; left > 0; {
		n := min(batch, left)
		heads += flip.CountHeads(src.NextBatch(n))
		left -= n
	}
	return Result{Length: s.Length, Heads: heads}, nil
}
