package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/coinsim/internal/errors"
)

// run executes the binary's command tree in-process.
func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	// Keep a cached calibration profile in the home directory out of the run.
	profile := filepath.Join(t.TempDir(), "profile.json")
	full := append([]string{"coinsim"}, args...)
	if len(args) > 0 && args[0] != "version" {
		full = append(full, "--calibration-profile", profile, "--no-color")
	}
	code = New(full, &errOut).Run(context.Background(), &out)
	return code, out.String(), errOut.String()
}

func TestRun_Version(t *testing.T) {
	code, out, _ := run(t, "version")
	assert.Equal(t, apperrors.ExitSuccess, code)
	assert.True(t, strings.HasPrefix(out, "coinsim "+Version))
}

func TestRun_Help(t *testing.T) {
	code, out, _ := run(t)
	assert.Equal(t, apperrors.ExitSuccess, code)
	for _, cmd := range []string{"streak", "convergence", "progressive", "analyze", "calibrate"} {
		assert.Contains(t, out, cmd)
	}
}

func TestRun_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"streak", "--bogus"}, "unknown flag"},
		{"zero runs", []string{"streak", "--runs", "0"}, "num_runs must be positive"},
		{"streak too long", []string{"streak", "--max-streak", "41"}, "at most 40"},
		{"odd even-only", []string{"convergence", "--even-only", "--max-flips", "9"}, "must be even"},
		{"bad format", []string{"streak", "--format", "parquet"}, "unknown export format"},
		{"quiet tui", []string{"streak", "--quiet", "--tui"}, "mutually exclusive"},
		{"analyze without input", []string{"analyze"}, "requires --input"},
		{"bad trim", []string{"streak", "--trim", "0.5"}, "trim"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := run(t, tt.args...)
			assert.Equal(t, apperrors.ExitErrorConfig, code)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestRun_StreakQuiet(t *testing.T) {
	code, out, _ := run(t, "streak", "--runs", "20", "--max-streak", "4", "--seed", "1", "--quiet", "--no-export")
	require.Equal(t, apperrors.ExitSuccess, code)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	for i, l := range lines {
		fields := strings.Split(l, "\t")
		assert.Equal(t, "streak", fields[0])
		assert.Equal(t, []string{"1", "2", "3", "4"}[i], fields[1])
	}
}

func TestRun_SeedIsReproducible(t *testing.T) {
	args := []string{"convergence", "--runs", "50", "--max-flips", "10", "--seed", "99", "--quiet", "--no-export", "--no-fit"}
	_, first, _ := run(t, args...)
	_, second, _ := run(t, args...)
	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestRun_ExportAndAnalyze(t *testing.T) {
	dir := t.TempDir()
	code, out, stderr := run(t, "streak", "--runs", "30", "--max-streak", "5", "--seed", "7", "--output-dir", dir, "--compress")
	require.Equal(t, apperrors.ExitSuccess, code, stderr)
	assert.Contains(t, out, "--- Execution Configuration ---")
	assert.Contains(t, out, "streak analysis")
	assert.Contains(t, out, "Results saved to")

	matches, err := filepath.Glob(filepath.Join(dir, "streak_*", "streak_records.csv.zst"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	_, err = os.Stat(filepath.Join(filepath.Dir(matches[0]), "manifest.json"))
	require.NoError(t, err)

	analyzed := t.TempDir()
	code, out, stderr = run(t, "analyze", "--input", matches[0], "--output-dir", analyzed, "--quiet")
	require.Equal(t, apperrors.ExitSuccess, code, stderr)
	assert.Equal(t, 5, strings.Count(out, "streak\t"))

	code, _, stderr = run(t, "analyze", "--input", matches[0], "--mode", "convergence", "--no-export")
	assert.Equal(t, apperrors.ExitErrorConfig, code)
	assert.Contains(t, stderr, "holds streak records")
}

func TestRun_Timeout(t *testing.T) {
	code, _, stderr := run(t, "streak", "--runs", "100000", "--max-streak", "30", "--timeout", "1ms", "--quiet", "--no-export")
	assert.Equal(t, apperrors.ExitErrorTimeout, code)
	assert.Contains(t, stderr, "timed out")
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, "timeout", outcomeOf(context.DeadlineExceeded))
	assert.Equal(t, "canceled", outcomeOf(context.Canceled))
	assert.Equal(t, "error", outcomeOf(assert.AnError))
}

func TestTimeoutError(t *testing.T) {
	err := timeoutError(context.DeadlineExceeded, "streak", 0)
	var te apperrors.TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "streak", te.Operation)
	assert.Equal(t, context.Canceled, timeoutError(context.Canceled, "streak", 0))
}
