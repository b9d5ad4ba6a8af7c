package fit

import (
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/coinsim/internal/errors"
)

func series(from, to, step int, f func(x float64) float64) (xs, ys []float64) {
	for n := from; n <= to; n += step {
		xs = append(xs, float64(n))
		ys = append(ys, f(float64(n)))
	}
	return xs, ys
}

func TestFitPowerLaw(t *testing.T) {
	t.Parallel()
	xs, ys := series(2, 200, 2, func(x float64) float64 { return 0.5 * math.Pow(x, -0.5) })

	fm, err := Fit(PowerLaw{}, xs, ys, Options{})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, fm.Params[0], 1e-6)
	assert.InDelta(t, -0.5, fm.Params[1], 1e-6)
	assert.InDelta(t, 1, fm.RSquared, 1e-9)
	assert.False(t, fm.Degenerate)
	assert.Equal(t, "power_law", fm.Family)
	assert.Equal(t, "0.5000 * n^(-0.5000)", fm.Expression)
	assert.InDelta(t, 0.05, fm.Func(100), 1e-6)
}

func TestFitPowerLawNoisy(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewPCG(7, 11))
	xs, ys := series(2, 400, 2, func(x float64) float64 {
		return 0.5 * math.Pow(x, -0.5) * (1 + 0.05*r.NormFloat64())
	})

	fm, err := Fit(PowerLaw{}, xs, ys, Options{})
	require.NoError(t, err)
	assert.InDelta(t, -0.5, fm.Params[1], 0.05)
	for i, se := range fm.StdErrors {
		assert.True(t, se > 0 && !math.IsInf(se, 0), "std error %d = %v", i, se)
	}
	assert.Greater(t, fm.SSR, 0.0)
}

func TestFitExpDecay(t *testing.T) {
	t.Parallel()
	xs, ys := series(2, 100, 2, func(x float64) float64 { return 0.8*math.Exp(-0.05*x) + 0.1 })

	fm, err := Fit(ExpDecay{}, xs, ys, Options{})
	require.NoError(t, err)
	assert.InDelta(t, 0.8, fm.Params[0], 1e-4)
	assert.InDelta(t, 0.05, fm.Params[1], 1e-4)
	assert.InDelta(t, 0.1, fm.Params[2], 1e-4)
}

func TestFitExpDecayRespectsBounds(t *testing.T) {
	t.Parallel()
	// the best unconstrained offset is negative
	xs, ys := series(2, 60, 2, func(x float64) float64 { return 0.9*math.Exp(-0.1*x) - 0.2 })

	fm, err := Fit(ExpDecay{}, xs, ys, Options{})
	require.NoError(t, err)
	for i, v := range fm.Params {
		assert.GreaterOrEqual(t, v, 0.0, "param %d", i)
		assert.LessOrEqual(t, v, 1.0, "param %d", i)
	}
	assert.InDelta(t, 0.0, fm.Params[2], 1e-9)
}

func TestFitScaledExponential(t *testing.T) {
	t.Parallel()
	xs, ys := series(1, 12, 1, func(x float64) float64 { return math.Exp2(x + 1) })

	fm, err := Fit(ScaledExponential{}, xs, ys, Options{})
	require.NoError(t, err)
	assert.True(t, fm.Degenerate, "a and c are aliased")
	for i, x := range xs {
		assert.InEpsilon(t, ys[i], fm.Func(x), 1e-6)
	}
	assert.InDelta(t, 1, fm.Params[1], 1e-6)
	require.Len(t, fm.StdErrors, 3)
	for i, se := range fm.StdErrors {
		assert.False(t, math.IsNaN(se) || math.IsInf(se, 0), "std error %d comes from the pseudo-inverse", i)
		assert.GreaterOrEqual(t, se, 0.0)
	}
	require.NotNil(t, fm.Covariance)
	assert.Equal(t, fm.Covariance.At(0, 2), fm.Covariance.At(2, 0))
}

func TestFitCustomOptions(t *testing.T) {
	t.Parallel()
	xs, ys := series(1, 10, 1, func(x float64) float64 { return 3 * math.Pow(x, 1.5) })

	fm, err := Fit(PowerLaw{}, xs, ys, Options{Initial: []float64{1, 1}, MaxIterations: 500})
	require.NoError(t, err)
	assert.InDelta(t, 3, fm.Params[0], 1e-6)
	assert.InDelta(t, 1.5, fm.Params[1], 1e-6)
	assert.Positive(t, fm.Iterations)
}

func TestFitExactlyDetermined(t *testing.T) {
	t.Parallel()
	fm, err := Fit(PowerLaw{}, []float64{1, 4}, []float64{2, 4}, Options{})
	require.NoError(t, err)
	assert.InDelta(t, 2, fm.Params[0], 1e-9)
	assert.InDelta(t, 0.5, fm.Params[1], 1e-9)
	for _, se := range fm.StdErrors {
		assert.True(t, math.IsInf(se, 1))
	}
}

func TestFitErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		model  Model
		xs, ys []float64
		opts   Options
		reason string
	}{
		{"length mismatch", PowerLaw{}, []float64{1, 2}, []float64{1}, Options{}, "y values"},
		{"too few distinct points", ExpDecay{}, []float64{2, 2, 4, 4}, []float64{0.5, 0.5, 0.4, 0.4}, Options{}, "distinct"},
		{"non-finite points dropped", PowerLaw{}, []float64{1, 2, 3}, []float64{1, math.NaN(), math.Inf(1)}, Options{}, "distinct"},
		{"non-positive x", PowerLaw{}, []float64{0, 1, 2}, []float64{1, 1, 1}, Options{}, "positive"},
		{"bad bounds", ExpDecay{}, []float64{1, 2, 3}, []float64{1, 1, 1}, Options{Lower: []float64{1, 1, 1}, Upper: []float64{0, 0, 0}}, "invalid options"},
		{"wrong initial length", PowerLaw{}, []float64{1, 2, 3}, []float64{1, 2, 3}, Options{Initial: []float64{1}}, "invalid options"},
		{"overflowing start", ScaledExponential{}, []float64{1, 2, 3}, []float64{1, 2, 3}, Options{Initial: []float64{1, 2000, 0}, Lower: []float64{}, Upper: []float64{}}, "non-finite"},
		{"iteration limit", ExpDecay{}, nil, nil, Options{MaxIterations: 1}, "converge"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			xs, ys := tt.xs, tt.ys
			if xs == nil {
				xs, ys = series(2, 100, 2, func(x float64) float64 { return 0.9*math.Exp(-0.02*x) + 0.05 })
			}
			fm, err := Fit(tt.model, xs, ys, tt.opts)
			require.Error(t, err)
			assert.Nil(t, fm)
			var fe apperrors.FitError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.model.Name(), fe.Model)
			assert.True(t, strings.Contains(err.Error(), tt.reason), "error %q should mention %q", err, tt.reason)
		})
	}
}

func TestFitDoesNotModifyInputs(t *testing.T) {
	t.Parallel()
	xs, ys := series(2, 20, 2, func(x float64) float64 { return 0.5 * math.Pow(x, -0.5) })
	xs0, ys0 := append([]float64(nil), xs...), append([]float64(nil), ys...)
	initial := []float64{1, -1}

	_, err := Fit(PowerLaw{}, xs, ys, Options{Initial: initial})
	require.NoError(t, err)
	assert.Equal(t, xs0, xs)
	assert.Equal(t, ys0, ys)
	assert.Equal(t, []float64{1, -1}, initial)
}

func TestGradientsMatchFiniteDifferences(t *testing.T) {
	t.Parallel()
	cases := []struct {
		model Model
		p     []float64
	}{
		{ScaledExponential{}, []float64{1.3, 0.9, 0.2}},
		{PowerLaw{}, []float64{0.5, -0.5}},
		{ExpDecay{}, []float64{0.6, 0.07, 0.1}},
	}
	for _, c := range cases {
		for _, x := range []float64{1, 3.5, 10} {
			grad := make([]float64, len(c.p))
			c.model.Gradient(x, c.p, grad)
			for i := range c.p {
				h := 1e-6 * math.Max(1, math.Abs(c.p[i]))
				up := append([]float64(nil), c.p...)
				down := append([]float64(nil), c.p...)
				up[i] += h
				down[i] -= h
				numeric := (c.model.Eval(x, up) - c.model.Eval(x, down)) / (2 * h)
				assert.InDelta(t, numeric, grad[i], 1e-4*math.Max(1, math.Abs(numeric)), "%s d/dp%d at x=%v", c.model.Name(), i, x)
			}
		}
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"scaled_exponential", "power_law", "exp_decay"} {
		m, ok := Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, name, m.Name())
	}
	_, ok := Lookup("cubic")
	assert.False(t, ok)
}
