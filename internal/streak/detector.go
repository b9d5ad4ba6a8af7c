// Package streak measures how many flips it takes before a run of identical
// outcomes of a given length first appears.
package streak

import (
	"context"
	"errors"
	"math"

	"github.com/agbru/coinsim/internal/flip"
)

// ErrFlipCapExceeded is returned when a Detector with a FlipCap gives up.
var ErrFlipCapExceeded = errors.New("flip cap exceeded before the streak appeared")

// minChunk is the first request size made to the stream. Requests double up
// to the configured batch size, so short streaks do not pull a full batch.
const minChunk = 64

// Detector finds the first streak of Target identical outcomes.
type Detector struct {
	// Target is the streak length to wait for. Must be >= 1.
	Target int
	// BatchSize caps the number of outcomes requested from the stream at once.
	BatchSize int
	// FlipCap aborts the search after this many flips. Zero means no cap.
	FlipCap int64
}

// Detect consumes outcomes from src until a streak of Target identical
// outcomes has been seen and returns the number of flips consumed, the
// streak-completing flip included.
//
// The first flip seeds the run with length 1; a Target of 1 therefore returns
// 1. The context is only checked when a new batch is requested.
func (d Detector) Detect(ctx context.Context, src flip.Stream) (int64, error) {
	if d.Target < 1 {
		return 0, errors.New("streak target must be at least 1")
	}
	maxChunk := d.BatchSize
	if maxChunk < 1 {
		maxChunk = minChunk
	}
	chunk := min(minChunk, maxChunk)

	batch := src.NextBatch(chunk)
	last := batch[0]
	run := 1
	flips := int64(1)
	if run == d.Target {
		return flips, nil
	}

	i := 1
	for {
		if i == len(batch) {
			if err := ctx.Err(); err != nil {
				return flips, err
			}
			if d.FlipCap > 0 && flips >= d.FlipCap {
				return flips, ErrFlipCapExceeded
			}
			chunk = min(chunk*2, maxChunk)
			batch = src.NextBatch(chunk)
			i = 0
		}
		o := batch[i]
		i++
		flips++
		if o == last {
			run++
			if run == d.Target {
				return flips, nil
			}
		} else {
			run = 1
			last = o
		}
	}
}

// ExpectedFlips is the exact mean waiting time for a run of n identical
// outcomes of either face with a fair coin: 2^n - 1. Reported baselines use
// 2^n; the analysis report quotes this value next to them.
func ExpectedFlips(n int) float64 {
	if n < 1 {
		return 0
	}
	return math.Exp2(float64(n)) - 1
}
