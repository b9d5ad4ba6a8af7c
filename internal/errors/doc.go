// Package apperrors defines structured application error types,
// allowing a clear distinction between error classes (configuration,
// simulation, fitting, arithmetic) and carrying the underlying cause.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// Error types that carry a cause implement Unwrap() to support errors.Is() and errors.As().
package apperrors
