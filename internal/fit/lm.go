package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	eps = 2.220446049250313e-16

	lambdaInit = 1e-3
	lambdaUp   = 10
	lambdaDown = 10
	lambdaMax  = 1e16
)

var errNonFinite = errors.New("non-finite residuals at the initial guess")

// levenbergMarquardt minimizes the sum of squared residuals of m over the
// box [opts.Lower, opts.Upper]. Every trial point is projected onto the box
// and accepted only if it lowers the cost. It returns the solution and the
// number of iterations taken.
func levenbergMarquardt(m Model, xs, ys []float64, opts Options) ([]float64, int, error) {
	k := len(opts.Initial)
	p := clamp(opts.Initial, opts.Lower, opts.Upper)
	r := residuals(m, xs, ys, p, nil)
	cost := sumSquares(r)
	if !finite(cost) {
		return nil, 0, errNonFinite
	}

	var (
		j      = mat.NewDense(len(xs), k, nil)
		jtj    mat.Dense
		grad   mat.VecDense
		delta  mat.VecDense
		chol   mat.Cholesky
		damped = mat.NewSymDense(k, nil)
		trial  = make([]float64, k)
		tr     = make([]float64, len(xs))
		lambda = lambdaInit
	)

	for iter := 1; iter <= opts.MaxIterations; iter++ {
		if cost == 0 {
			return p, iter - 1, nil
		}
		jacobian(m, xs, p, j)
		jtj.Mul(j.T(), j)
		grad.MulVec(j.T(), mat.NewVecDense(len(r), r))
		if mat.Norm(&grad, math.Inf(1)) <= eps {
			return p, iter - 1, nil
		}

		accepted := false
		for !accepted {
			if lambda > lambdaMax {
				// no descent direction left inside the box
				return p, iter, nil
			}
			for a := range k {
				for b := a; b < k; b++ {
					damped.SetSym(a, b, jtj.At(a, b))
				}
				d := jtj.At(a, a)
				if d == 0 {
					d = 1
				}
				damped.SetSym(a, a, jtj.At(a, a)+lambda*d)
			}
			if !chol.Factorize(damped) {
				lambda *= lambdaUp
				continue
			}
			if err := chol.SolveVecTo(&delta, &grad); err != nil {
				lambda *= lambdaUp
				continue
			}
			for i := range k {
				trial[i] = p[i] + delta.AtVec(i)
			}
			trial = clamp(trial, opts.Lower, opts.Upper)
			residuals(m, xs, ys, trial, tr)
			trialCost := sumSquares(tr)
			if !finite(trialCost) || trialCost >= cost {
				lambda *= lambdaUp
				continue
			}

			accepted = true
			step := distance(trial, p)
			reduction := cost - trialCost
			copy(p, trial)
			copy(r, tr)
			cost = trialCost
			lambda /= lambdaDown
			if reduction <= opts.Tolerance*cost || step <= opts.Tolerance*(norm(p)+opts.Tolerance) {
				return p, iter, nil
			}
		}
	}
	return nil, opts.MaxIterations, fmt.Errorf("did not converge in %d iterations", opts.MaxIterations)
}

// residuals writes y - f(x; p) into dst, allocating it when nil.
func residuals(m Model, xs, ys, p, dst []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(xs))
	}
	for i := range xs {
		dst[i] = ys[i] - m.Eval(xs[i], p)
	}
	return dst
}

// jacobian writes ∂f/∂p for every point into dst, allocating it when nil.
func jacobian(m Model, xs, p []float64, dst *mat.Dense) *mat.Dense {
	k := len(p)
	if dst == nil {
		dst = mat.NewDense(len(xs), k, nil)
	}
	row := make([]float64, k)
	for i, x := range xs {
		m.Gradient(x, p, row)
		dst.SetRow(i, row)
	}
	return dst
}

func clamp(p, lower, upper []float64) []float64 {
	out := make([]float64, len(p))
	for i, v := range p {
		out[i] = math.Min(math.Max(v, lower[i]), upper[i])
	}
	return out
}

func sumSquares(r []float64) float64 {
	var s float64
	for _, v := range r {
		s += v * v
	}
	return s
}

func distance(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Sqrt(s)
}

func norm(p []float64) float64 { return math.Sqrt(sumSquares(p)) }
