package streak

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/agbru/coinsim/internal/flip"
)

// scriptedStream replays a fixed outcome sequence, splitting it into batches
// of at most maxBatch regardless of the requested size.
type scriptedStream struct {
	seq      []flip.Outcome
	pos      int
	maxBatch int
	calls    int
}

func (s *scriptedStream) NextBatch(size int) []flip.Outcome {
	s.calls++
	if s.maxBatch > 0 && size > s.maxBatch {
		size = s.maxBatch
	}
	if s.pos+size > len(s.seq) {
		panic("scripted stream exhausted")
	}
	out := s.seq[s.pos : s.pos+size]
	s.pos += size
	return out
}

func parse(s string) []flip.Outcome {
	out := make([]flip.Outcome, len(s))
	for i, c := range s {
		if c == 'H' {
			out[i] = flip.Heads
		}
	}
	return out
}

func TestDetectScripted(t *testing.T) {
	t.Parallel()
	pad := "HTHTHTHTHTHTHTHTHTHTHTHTHTHTHTHTHTHTHTHTHTHTHTHTHTHTHTHTHTHTHTHT"
	tests := []struct {
		name   string
		seq    string
		target int
		want   int64
	}{
		{"target one returns the seed flip", "T" + pad, 1, 1},
		{"immediate pair", "HH" + pad, 2, 2},
		{"pair after alternation", "HTHTT" + pad, 2, 5},
		{"tails streak", "HTTT" + pad, 3, 4},
		{"run resets on change", "HHTHHH" + pad, 3, 6},
		{"longer streak", "THHHTTTTT" + pad, 5, 9},
	}
	for _, tt := range tests {
		for _, maxBatch := range []int{1, 2, 3, 64} {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				src := &scriptedStream{seq: parse(tt.seq + tt.seq), maxBatch: maxBatch}
				got, err := Detector{Target: tt.target, BatchSize: 8}.Detect(context.Background(), src)
				if err != nil {
					t.Fatalf("Detect error: %v", err)
				}
				if got != tt.want {
					t.Errorf("Detect(%s, target %d, batch %d) = %d, want %d", tt.seq[:10], tt.target, maxBatch, got, tt.want)
				}
			})
		}
	}
}

func TestDetectInvalidTarget(t *testing.T) {
	t.Parallel()
	if _, err := (Detector{Target: 0}).Detect(context.Background(), flip.NewSource(flip.Seed{})); err == nil {
		t.Error("expected error for target 0")
	}
}

func TestDetectCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &scriptedStream{seq: parse(stringsRepeat("HT", 200))}
	_, err := Detector{Target: 3, BatchSize: 4}.Detect(ctx, src)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDetectFlipCap(t *testing.T) {
	t.Parallel()
	src := &scriptedStream{seq: parse(stringsRepeat("HT", 200))}
	flips, err := Detector{Target: 2, BatchSize: 4, FlipCap: 10}.Detect(context.Background(), src)
	if !errors.Is(err, ErrFlipCapExceeded) {
		t.Fatalf("expected ErrFlipCapExceeded, got %v", err)
	}
	if flips < 10 {
		t.Errorf("gave up after %d flips, cap was 10", flips)
	}
}

func stringsRepeat(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

// TestDetectProperties checks flips_required >= target for random seeds.
func TestDetectProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("flips required is at least the target", prop.ForAll(
		func(seed uint64, target int, batch int) bool {
			src := flip.NewSource(flip.DeriveSeed(seed))
			n, err := Detector{Target: target, BatchSize: batch}.Detect(context.Background(), src)
			return err == nil && n >= int64(target)
		},
		gen.UInt64(),
		gen.IntRange(1, 8),
		gen.IntRange(1, 512),
	))

	properties.Property("target one always takes one flip", prop.ForAll(
		func(seed uint64) bool {
			n, err := Detector{Target: 1, BatchSize: 1024}.Detect(context.Background(), flip.NewSource(flip.DeriveSeed(seed)))
			return err == nil && n == 1
		},
		gen.UInt64(),
	))

	properties.TestingRun(t)
}

// TestDetectMean compares the sample mean for target 4 with the exact
// expectation 2^4 - 1 = 15.
func TestDetectMean(t *testing.T) {
	t.Parallel()
	const runs = 20000
	var sum, sumSq float64
	for run := 0; run < runs; run++ {
		src := flip.NewSource(flip.DeriveSeed(7, uint64(run)))
		n, err := Detector{Target: 4, BatchSize: 256}.Detect(context.Background(), src)
		if err != nil {
			t.Fatal(err)
		}
		sum += float64(n)
		sumSq += float64(n) * float64(n)
	}
	mean := sum / runs
	std := math.Sqrt(sumSq/runs - mean*mean)
	if d := math.Abs(mean - ExpectedFlips(4)); d > 5*std/math.Sqrt(runs) {
		t.Errorf("mean = %.3f, want %.1f ± %.3f", mean, ExpectedFlips(4), 5*std/math.Sqrt(runs))
	}
}

func TestExpectedFlips(t *testing.T) {
	t.Parallel()
	for n, want := range map[int]float64{0: 0, 1: 1, 2: 3, 3: 7, 10: 1023} {
		if got := ExpectedFlips(n); got != want {
			t.Errorf("ExpectedFlips(%d) = %v, want %v", n, got, want)
		}
	}
}
