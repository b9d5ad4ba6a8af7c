// This file contains the environment variable and changed-flag overlays.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// ─────────────────────────────────────────────────────────────────────────────
// Environment Variable Utilities
// ─────────────────────────────────────────────────────────────────────────────

// isFlagSet checks if a flag was explicitly set on the command line.
func isFlagSet(fs *pflag.FlagSet, name string) bool {
	if fs == nil {
		return false
	}
	f := fs.Lookup(name)
	return f != nil && f.Changed
}

// setting declares one configuration key: its flag name, its environment
// key (without the COINSIM_ prefix) and how to apply a textual value.
type setting struct {
	envKey string
	flag   string
	apply  func(*AppConfig, string)
}

func intSetter(dst func(*AppConfig) *int) func(*AppConfig, string) {
	return func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst(c) = parsed
		}
	}
}

func boolSetter(dst func(*AppConfig) *bool) func(*AppConfig, string) {
	return func(c *AppConfig, v string) {
		p := dst(c)
		*p = parseBoolEnv(v, *p)
	}
}

func stringSetter(dst func(*AppConfig) *string) func(*AppConfig, string) {
	return func(c *AppConfig, v string) { *dst(c) = v }
}

// settings is the declarative table of every overridable key.
var settings = []setting{
	// Numeric
	{"RUNS", "runs", intSetter(func(c *AppConfig) *int { return &c.Runs })},
	{"MAX_STREAK", "max-streak", intSetter(func(c *AppConfig) *int { return &c.MaxStreak })},
	{"MAX_FLIPS", "max-flips", intSetter(func(c *AppConfig) *int { return &c.MaxFlips })},
	{"MAX_RUNS", "max-runs", intSetter(func(c *AppConfig) *int { return &c.MaxRuns })},
	{"WORKERS", "workers", intSetter(func(c *AppConfig) *int { return &c.Workers })},
	{"BATCH_SIZE", "batch-size", intSetter(func(c *AppConfig) *int { return &c.BatchSize })},
	{"TRIM_COUNT", "trim-count", intSetter(func(c *AppConfig) *int { return &c.TrimCount })},
	{"TRIM", "trim", func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			c.TrimFraction = parsed
		}
	}},
	{"SEED", "seed", func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64); err == nil {
			c.Seed = &parsed
		}
	}},
	{"FLIP_CAP", "flip-cap", func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			c.FlipCap = parsed
		}
	}},

	// Duration
	{"TIMEOUT", "timeout", func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.Timeout = parsed
		}
	}},

	// String
	{"OUTPUT_DIR", "output-dir", stringSetter(func(c *AppConfig) *string { return &c.OutputDir })},
	{"METRICS_ADDR", "metrics-addr", stringSetter(func(c *AppConfig) *string { return &c.MetricsAddr })},
	{"CALIBRATION_PROFILE", "calibration-profile", stringSetter(func(c *AppConfig) *string { return &c.CalibrationProfile })},
	{"INPUT", "input", stringSetter(func(c *AppConfig) *string { return &c.InputFile })},
	{"ANALYZE_MODE", "mode", func(c *AppConfig, v string) { c.AnalyzeMode = Mode(v) }},
	{"FORMAT", "format", func(c *AppConfig, v string) {
		var formats []string
		for _, f := range strings.Split(strings.Trim(v, "[]"), ",") {
			if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
				formats = append(formats, f)
			}
		}
		c.Formats = formats
	}},
	{"CONFIG", "config", stringSetter(func(c *AppConfig) *string { return &c.ConfigFile })},

	// Boolean
	{"EVEN_ONLY", "even-only", boolSetter(func(c *AppConfig) *bool { return &c.EvenOnly })},
	{"COMPRESS", "compress", boolSetter(func(c *AppConfig) *bool { return &c.Compress })},
	{"NO_EXPORT", "no-export", boolSetter(func(c *AppConfig) *bool { return &c.NoExport })},
	{"NO_FIT", "no-fit", boolSetter(func(c *AppConfig) *bool { return &c.NoFit })},
	{"QUIET", "quiet", boolSetter(func(c *AppConfig) *bool { return &c.Quiet })},
	{"VERBOSE", "verbose", boolSetter(func(c *AppConfig) *bool { return &c.Verbose })},
	{"NO_COLOR", "no-color", boolSetter(func(c *AppConfig) *bool { return &c.NoColor })},
	{"TUI", "tui", boolSetter(func(c *AppConfig) *bool { return &c.TUI })},
	{"TRACE", "trace", boolSetter(func(c *AppConfig) *bool { return &c.Trace })},
}

// parseBoolEnv parses a boolean value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
// Returns defaultVal if the value is not recognized.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies COINSIM_* variables for every key whose flag was
// not explicitly set on the command line. Invalid values are ignored.
func applyEnvOverrides(config *AppConfig, fs *pflag.FlagSet) {
	for _, s := range settings {
		if isFlagSet(fs, s.flag) {
			continue
		}
		if val := os.Getenv(EnvPrefix + s.envKey); val != "" {
			s.apply(config, val)
		}
	}
}

// applyChangedFlags copies every explicitly set flag into config.
func applyChangedFlags(config *AppConfig, fs *pflag.FlagSet) {
	for _, s := range settings {
		if !isFlagSet(fs, s.flag) {
			continue
		}
		f := fs.Lookup(s.flag)
		val := f.Value.String()
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			val = strings.Join(sv.GetSlice(), ",")
		}
		s.apply(config, val)
	}
}
