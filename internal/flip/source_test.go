package flip

import (
	"math"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func collect(s *Source, sizes []int) []Outcome {
	var out []Outcome
	for _, n := range sizes {
		out = append(out, s.NextBatch(n)...)
	}
	return out
}

func TestSourceDeterministic(t *testing.T) {
	t.Parallel()
	seed := DeriveSeed(42, 1, 2)
	a := collect(NewSource(seed), []int{1000})
	b := collect(NewSource(seed), []int{1000})
	if !slices.Equal(a, b) {
		t.Fatal("same seed produced different sequences")
	}
	c := collect(NewSource(DeriveSeed(42, 1, 3)), []int{1000})
	if slices.Equal(a, c) {
		t.Fatal("different labels produced identical sequences")
	}
}

func TestSourceReset(t *testing.T) {
	t.Parallel()
	seed := Seed{Hi: 7, Lo: 9}
	s := NewSource(seed)
	first := slices.Clone(s.NextBatch(130))
	s.NextBatch(17)
	s.Reset(seed)
	if s.Drawn() != 0 {
		t.Errorf("Drawn after Reset = %d, want 0", s.Drawn())
	}
	if again := s.NextBatch(130); !slices.Equal(first, again) {
		t.Error("Reset did not restart the sequence")
	}
}

func TestNextBatchEmpty(t *testing.T) {
	t.Parallel()
	s := NewSource(Seed{})
	if got := s.NextBatch(0); len(got) != 0 {
		t.Errorf("NextBatch(0) returned %d outcomes", len(got))
	}
	if got := s.NextBatch(-5); len(got) != 0 {
		t.Errorf("NextBatch(-5) returned %d outcomes", len(got))
	}
}

// TestBatchScheduleIndependence checks that slicing the stream differently
// never changes the sequence of outcomes.
func TestBatchScheduleIndependence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("sequence independent of batch sizes", prop.ForAll(
		func(seed uint64, sizes []int) bool {
			total := 0
			for _, n := range sizes {
				total += n
			}
			want := collect(NewSource(DeriveSeed(seed)), []int{total})
			got := collect(NewSource(DeriveSeed(seed)), sizes)
			return slices.Equal(want, got)
		},
		gen.UInt64(),
		gen.SliceOf(gen.IntRange(1, 300)),
	))

	properties.TestingRun(t)
}

// TestSourceFairness checks the heads rate and the lag-1 agreement rate stay
// within five standard deviations of 1/2.
func TestSourceFairness(t *testing.T) {
	t.Parallel()
	const n = 1 << 20
	s := NewSource(DeriveSeed(2024))
	var heads, agree int
	prev := Outcome(255)
	for _, batch := range []int{1, 63, 4096, n - 4096 - 64} {
		for _, o := range s.NextBatch(batch) {
			heads += int(o)
			if o == prev {
				agree++
			}
			prev = o
		}
	}
	sigma := math.Sqrt(n * 0.25)
	if d := math.Abs(float64(heads) - n/2); d > 5*sigma {
		t.Errorf("heads = %d, deviates %.0f from n/2 (5σ = %.0f)", heads, d, 5*sigma)
	}
	if d := math.Abs(float64(agree) - (n-1)/2.0); d > 5*sigma {
		t.Errorf("consecutive agreements = %d, deviates %.0f (5σ = %.0f)", agree, d, 5*sigma)
	}
}

func TestDeriveSeedStable(t *testing.T) {
	t.Parallel()
	if DeriveSeed(1, 2, 3) != DeriveSeed(1, 2, 3) {
		t.Error("DeriveSeed is not deterministic")
	}
	if DeriveSeed(1, 2, 3) == DeriveSeed(1, 3, 2) {
		t.Error("DeriveSeed ignores label order")
	}
	seen := make(map[Seed]bool)
	for run := uint64(0); run < 1000; run++ {
		s := DeriveSeed(99, 1, run)
		if seen[s] {
			t.Fatalf("collision at run %d", run)
		}
		seen[s] = true
	}
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()
	if Heads.String() != "H" || Tails.String() != "T" {
		t.Errorf("unexpected outcome strings %q %q", Heads, Tails)
	}
	if got := CountHeads([]Outcome{Heads, Tails, Heads}); got != 2 {
		t.Errorf("CountHeads() = %d, want 2", got)
	}
}
