package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Model is a parametric curve y = f(x; p) fitted by least squares.
type Model interface {
	// Name identifies the family in reports and errors.
	Name() string
	// Params names the parameters in vector order.
	Params() []string
	// Eval returns f(x; p).
	Eval(x float64, p []float64) float64
	// Gradient writes ∂f/∂p at x into grad, which has len(Params()).
	Gradient(x float64, p []float64, grad []float64)
	// Expression renders the fitted function.
	Expression(p []float64) string
	// Defaults returns the starting point and bounds used when the caller
	// leaves them unset. The data may be used to form the initial guess.
	Defaults(xs, ys []float64) Options
}

// ScaledExponential is a·2^(b·n + c), the streak waiting-time family.
// a and c are not identifiable separately, so its fits are reported as
// degenerate with a pseudo-inverse covariance.
type ScaledExponential struct{}

func (ScaledExponential) Name() string     { return "scaled_exponential" }
func (ScaledExponential) Params() []string { return []string{"a", "b", "c"} }

func (ScaledExponential) Eval(x float64, p []float64) float64 {
	return p[0] * math.Exp2(p[1]*x+p[2])
}

func (ScaledExponential) Gradient(x float64, p []float64, grad []float64) {
	e := math.Exp2(p[1]*x + p[2])
	grad[0] = e
	grad[1] = p[0] * e * math.Ln2 * x
	grad[2] = p[0] * e * math.Ln2
}

func (ScaledExponential) Expression(p []float64) string {
	return fmt.Sprintf("%.4f * 2^(%.4f*n + %.4f)", p[0], p[1], p[2])
}

func (ScaledExponential) Defaults(_, _ []float64) Options {
	return Options{
		Initial: []float64{1, 1, 0},
		Lower:   []float64{0.1, 0.1, -10},
		Upper:   []float64{10, 2, 10},
	}
}

// PowerLaw is a·n^b, used for the spread of the head fraction. It requires
// strictly positive x.
type PowerLaw struct{}

func (PowerLaw) Name() string     { return "power_law" }
func (PowerLaw) Params() []string { return []string{"a", "b"} }

func (PowerLaw) Eval(x float64, p []float64) float64 {
	return p[0] * math.Pow(x, p[1])
}

func (PowerLaw) Gradient(x float64, p []float64, grad []float64) {
	pw := math.Pow(x, p[1])
	grad[0] = pw
	grad[1] = p[0] * pw * math.Log(x)
}

func (PowerLaw) Expression(p []float64) string {
	return fmt.Sprintf("%.4f * n^(%.4f)", p[0], p[1])
}

// Defaults starts from the straight-line fit of log y on log x over the
// positive points.
func (PowerLaw) Defaults(xs, ys []float64) Options {
	var lx, ly []float64
	for i := range xs {
		if xs[i] > 0 && ys[i] > 0 {
			lx = append(lx, math.Log(xs[i]))
			ly = append(ly, math.Log(ys[i]))
		}
	}
	initial := []float64{1, -0.5}
	if len(lx) >= 2 {
		alpha, beta := stat.LinearRegression(lx, ly, nil, false)
		if !math.IsNaN(alpha) && !math.IsNaN(beta) {
			initial = []float64{math.Exp(alpha), beta}
		}
	}
	return Options{Initial: initial}
}

// ExpDecay is a·e^(−b·n) + c, used for the exact-half rate. All three
// parameters are bounded to [0, 1].
type ExpDecay struct{}

func (ExpDecay) Name() string     { return "exp_decay" }
func (ExpDecay) Params() []string { return []string{"a", "b", "c"} }

func (ExpDecay) Eval(x float64, p []float64) float64 {
	return p[0]*math.Exp(-p[1]*x) + p[2]
}

func (ExpDecay) Gradient(x float64, p []float64, grad []float64) {
	e := math.Exp(-p[1] * x)
	grad[0] = e
	grad[1] = -p[0] * x * e
	grad[2] = 1
}

func (ExpDecay) Expression(p []float64) string {
	return fmt.Sprintf("%.4f * exp(-%.4f*n) + %.4f", p[0], p[1], p[2])
}

func (ExpDecay) Defaults(_, _ []float64) Options {
	return Options{
		Initial: []float64{0.5, 0.1, 0},
		Lower:   []float64{0, 0, 0},
		Upper:   []float64{1, 1, 1},
	}
}

// Lookup returns the model family with the given name.
func Lookup(name string) (Model, bool) {
	switch name {
	case ScaledExponential{}.Name():
		return ScaledExponential{}, true
	case PowerLaw{}.Name():
		return PowerLaw{}, true
	case ExpDecay{}.Name():
		return ExpDecay{}, true
	}
	return nil, false
}
