package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
const (
	ExitSuccess       = 0   // Successful execution (fit failures included).
	ExitErrorGeneric  = 1   // Generic error.
	ExitErrorTimeout  = 2   // The simulation exceeded its wall-clock limit.
	ExitErrorConfig   = 4   // Invalid configuration, rejected before sampling.
	ExitErrorCanceled = 130 // Canceled by the user (e.g., SIGINT).
)

// ConfigError represents an invalid simulation configuration. It is always
// raised before any sampling starts, so no partial results exist when it is
// returned.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// SimulationError wraps a failure raised while sampling, keeping the mode
// and parameter value that was being simulated.
type SimulationError struct {
	// Mode is the simulation mode ("streak", "convergence", ...).
	Mode string
	// Parameter is the streak target or sequence length being sampled.
	Parameter int
	// Cause is the underlying error.
	Cause error
}

// Error returns a message naming the mode and parameter.
func (e SimulationError) Error() string {
	return fmt.Sprintf("%s simulation failed at parameter %d: %v", e.Mode, e.Parameter, e.Cause)
}

// Unwrap returns the underlying cause.
func (e SimulationError) Unwrap() error { return e.Cause }

// FitError reports that a model could not be fitted. It never aborts the
// aggregation that produced the data points.
type FitError struct {
	// Model is the name of the model family.
	Model string
	// Points is the number of distinct data points available.
	Points int
	// Reason is a short human-readable explanation.
	Reason string
	// Cause is an optional underlying error.
	Cause error
}

// Error returns a message describing the failed fit.
func (e FitError) Error() string {
	msg := fmt.Sprintf("fit %s failed on %d points: %s", e.Model, e.Points, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e FitError) Unwrap() error { return e.Cause }

// ArithmeticError reports a statistic that cannot be computed for a group,
// such as a trim that would discard every sample.
type ArithmeticError struct {
	// Operation names the statistic ("trim", "std_dev", ...).
	Operation string
	// Parameter is the group's parameter value.
	Parameter int
	// GroupSize is the number of samples in the group.
	GroupSize int
	// Message explains the failure.
	Message string
}

// Error returns a message including the group parameter and size.
func (e ArithmeticError) Error() string {
	return fmt.Sprintf("%s unavailable for parameter %d (group size %d): %s",
		e.Operation, e.Parameter, e.GroupSize, e.Message)
}

// TimeoutError represents a simulation timeout. It captures the operation
// name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCodeFor maps an error returned by a command to a process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var cfgErr ConfigError
	var valErr ValidationError
	var toErr TimeoutError
	switch {
	case errors.As(err, &cfgErr), errors.As(err, &valErr):
		return ExitErrorConfig
	case errors.As(err, &toErr), errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	default:
		return ExitErrorGeneric
	}
}
