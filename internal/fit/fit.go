package fit

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	apperrors "github.com/agbru/coinsim/internal/errors"
)

// Defaults for Options fields left at zero.
const (
	DefaultMaxIterations = 200
	DefaultTolerance     = 1e-8
)

// Options control a fit. Nil slices take the model's defaults; an empty
// bound slice means unbounded.
type Options struct {
	Initial       []float64
	Lower         []float64
	Upper         []float64
	MaxIterations int
	Tolerance     float64
}

// FittedModel is the outcome of a successful fit.
type FittedModel struct {
	Family string
	Params []float64
	// StdErrors are the square roots of the covariance diagonal. They are
	// +Inf when there are no more points than parameters.
	StdErrors  []float64
	Covariance *mat.SymDense
	SSR        float64
	RSquared   float64
	Points     int
	Iterations int
	// Degenerate is set when the Jacobian at the solution is rank deficient;
	// the covariance is then a pseudo-inverse.
	Degenerate bool
	Expression string
	Func       func(x float64) float64
}

// Fit adjusts the parameters of m to the points (xs, ys) by bounded
// Levenberg-Marquardt. Non-finite points are ignored. The inputs are not
// modified.
func Fit(m Model, xs, ys []float64, opts Options) (*FittedModel, error) {
	fail := func(points int, reason string, cause error) error {
		return apperrors.FitError{Model: m.Name(), Points: points, Reason: reason, Cause: cause}
	}
	if len(xs) != len(ys) {
		return nil, fail(0, fmt.Sprintf("%d x values but %d y values", len(xs), len(ys)), nil)
	}

	var px, py []float64
	for i := range xs {
		if finite(xs[i]) && finite(ys[i]) {
			px = append(px, xs[i])
			py = append(py, ys[i])
		}
	}
	k := len(m.Params())
	distinct := countDistinct(px)
	if distinct < k {
		return nil, fail(distinct, fmt.Sprintf("need at least %d distinct points", k), nil)
	}
	if _, ok := m.(PowerLaw); ok && slices.Min(px) <= 0 {
		return nil, fail(distinct, "power law needs positive x", nil)
	}

	opts = resolveOptions(m, px, py, opts)
	if err := opts.validate(k); err != nil {
		return nil, fail(distinct, "invalid options", err)
	}

	p, iters, err := levenbergMarquardt(m, px, py, opts)
	if err != nil {
		return nil, fail(distinct, err.Error(), nil)
	}

	fm := &FittedModel{
		Family:     m.Name(),
		Params:     p,
		Points:     len(px),
		Iterations: iters,
		Expression: m.Expression(p),
	}
	params := slices.Clone(p)
	fm.Func = func(x float64) float64 { return m.Eval(x, params) }

	r := residuals(m, px, py, p, nil)
	fm.SSR = sumSquares(r)
	fm.RSquared = rSquared(py, fm.SSR)

	cov, rank := covariance(jacobian(m, px, p, nil), fm.SSR)
	if rank == 0 {
		return nil, fail(distinct, "singular Jacobian", nil)
	}
	fm.Covariance = cov
	fm.Degenerate = rank < k
	fm.StdErrors = make([]float64, k)
	for i := range k {
		fm.StdErrors[i] = math.Sqrt(cov.At(i, i))
	}
	return fm, nil
}

func resolveOptions(m Model, xs, ys []float64, opts Options) Options {
	def := m.Defaults(xs, ys)
	if opts.Initial == nil {
		opts.Initial = def.Initial
	}
	if opts.Lower == nil {
		opts.Lower = def.Lower
	}
	if opts.Upper == nil {
		opts.Upper = def.Upper
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultTolerance
	}
	k := len(opts.Initial)
	if len(opts.Lower) == 0 {
		opts.Lower = filled(k, math.Inf(-1))
	}
	if len(opts.Upper) == 0 {
		opts.Upper = filled(k, math.Inf(1))
	}
	return opts
}

func (o Options) validate(k int) error {
	if len(o.Initial) != k || len(o.Lower) != k || len(o.Upper) != k {
		return fmt.Errorf("want %d initial values and bounds, got %d/%d/%d", k, len(o.Initial), len(o.Lower), len(o.Upper))
	}
	for i := range k {
		if math.IsNaN(o.Initial[i]) || !(o.Lower[i] <= o.Upper[i]) {
			return fmt.Errorf("parameter %d: initial %g outside usable bounds [%g, %g]", i, o.Initial[i], o.Lower[i], o.Upper[i])
		}
	}
	return nil
}

// covariance returns the scaled pseudo-inverse of JᵀJ computed from the
// singular values of J, and the numerical rank of J.
func covariance(j *mat.Dense, ssr float64) (*mat.SymDense, int) {
	rows, k := j.Dims()
	cov := mat.NewSymDense(k, nil)

	var svd mat.SVD
	if !svd.Factorize(j, mat.SVDThin) {
		return cov, 0
	}
	s := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	threshold := 0.0
	if len(s) > 0 {
		threshold = eps * float64(max(rows, k)) * s[0]
	}
	rank := 0
	for i, si := range s {
		if si <= threshold {
			continue
		}
		rank++
		inv := 1 / (si * si)
		for a := range k {
			for b := a; b < k; b++ {
				cov.SetSym(a, b, cov.At(a, b)+inv*v.At(a, i)*v.At(b, i))
			}
		}
	}

	if rows > k {
		cov.ScaleSym(ssr/float64(rows-k), cov)
	} else {
		for a := range k {
			for b := a; b < k; b++ {
				cov.SetSym(a, b, math.Inf(1))
			}
		}
	}
	return cov, rank
}

func rSquared(ys []float64, ssr float64) float64 {
	var mean float64
	for _, y := range ys {
		mean += y
	}
	mean /= float64(len(ys))
	var tot float64
	for _, y := range ys {
		tot += (y - mean) * (y - mean)
	}
	if tot == 0 {
		return math.NaN()
	}
	return 1 - ssr/tot
}

func countDistinct(xs []float64) int {
	s := slices.Clone(xs)
	slices.Sort(s)
	return len(slices.Compact(s))
}

func filled(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
