// Package fit adjusts the closed-form model families of the simulator to
// aggregated data by bounded nonlinear least squares.
//
// The solver is a projected Levenberg-Marquardt iteration on the normal
// equations (JᵀJ + λ·diag(JᵀJ))δ = Jᵀr. Standard errors come from the
// pseudo-inverse of JᵀJ built from the singular values of the Jacobian at the
// solution, scaled by the residual variance SSR/(m-k).
//
// Failures are reported as apperrors.FitError and never abort the analysis
// that asked for the fit.
package fit
