// Package apperrors provides tests for application error types.
package apperrors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestConfigError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		err         error
		expected    string
		checkTypeAs bool
	}{
		{
			name:     "Error returns message",
			err:      ConfigError{Message: "num_runs must be positive"},
			expected: "num_runs must be positive",
		},
		{
			name:     "NewConfigError creates formatted error",
			err:      NewConfigError("invalid value %d for flag %s", 0, "--runs"),
			expected: "invalid value 0 for flag --runs",
		},
		{
			name:        "ConfigError type assertion",
			err:         NewConfigError("max_flips must be even"),
			expected:    "max_flips must be even",
			checkTypeAs: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.err.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.err.Error())
			}
			if tt.checkTypeAs {
				var configErr ConfigError
				if !errors.As(tt.err, &configErr) {
					t.Error("expected error to be ConfigError type")
				}
			}
		})
	}
}

func TestSimulationError(t *testing.T) {
	t.Parallel()
	err := SimulationError{Mode: "streak", Parameter: 12, Cause: context.Canceled}
	if !strings.Contains(err.Error(), "parameter 12") {
		t.Errorf("message %q should name the parameter", err.Error())
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("errors.Is should see the wrapped cause")
	}
}

func TestFitError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      FitError
		contains []string
	}{
		{
			name:     "without cause",
			err:      FitError{Model: "power_law", Points: 1, Reason: "not enough distinct points"},
			contains: []string{"power_law", "1 points", "not enough distinct points"},
		},
		{
			name:     "with cause",
			err:      FitError{Model: "exp_decay", Points: 9, Reason: "did not converge", Cause: errors.New("max iterations")},
			contains: []string{"exp_decay", "did not converge", "max iterations"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			for _, s := range tt.contains {
				if !strings.Contains(tt.err.Error(), s) {
					t.Errorf("message %q missing %q", tt.err.Error(), s)
				}
			}
		})
	}

	wrapped := fmt.Errorf("aggregate: %w", FitError{Model: "m", Reason: "r"})
	var fe FitError
	if !errors.As(wrapped, &fe) || fe.Model != "m" {
		t.Error("errors.As should recover FitError")
	}
}

func TestArithmeticError(t *testing.T) {
	t.Parallel()
	err := ArithmeticError{Operation: "trim", Parameter: 7, GroupSize: 2, Message: "trim removes all samples"}
	msg := err.Error()
	for _, s := range []string{"trim", "parameter 7", "group size 2"} {
		if !strings.Contains(msg, s) {
			t.Errorf("message %q missing %q", msg, s)
		}
	}
}

func TestTimeoutError(t *testing.T) {
	t.Parallel()
	err := TimeoutError{Operation: "streak", Limit: 5 * time.Minute}
	expected := `operation "streak" timed out after 5m0s`
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()
	err := ValidationError{Field: "trim", Message: "must be in [0, 0.5)"}
	expected := `validation error for "trim": must be in [0, 0.5)`
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestWrapError(t *testing.T) {
	t.Parallel()
	if WrapError(nil, "context") != nil {
		t.Error("WrapError(nil) should return nil")
	}
	base := errors.New("disk full")
	wrapped := WrapError(base, "writing %s", "records.csv")
	if wrapped.Error() != "writing records.csv: disk full" {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error should match base with errors.Is")
	}
}

func TestIsContextError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"canceled", context.Canceled, true},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped canceled", fmt.Errorf("run: %w", context.Canceled), true},
		{"other", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsContextError(tt.err); got != tt.want {
				t.Errorf("IsContextError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"config", NewConfigError("bad"), ExitErrorConfig},
		{"wrapped validation", fmt.Errorf("x: %w", ValidationError{Field: "f"}), ExitErrorConfig},
		{"timeout", TimeoutError{Operation: "op", Limit: time.Second}, ExitErrorTimeout},
		{"deadline", context.DeadlineExceeded, ExitErrorTimeout},
		{"canceled", context.Canceled, ExitErrorCanceled},
		{"generic", errors.New("boom"), ExitErrorGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExitCodeFor(tt.err); got != tt.want {
				t.Errorf("ExitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
