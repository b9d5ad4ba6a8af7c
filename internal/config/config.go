// Package config resolves the simulator configuration from command-line
// flags, COINSIM_* environment variables, an optional YAML file, a cached
// calibration profile and hardware-based defaults.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/coinsim/internal/errors"
)

// EnvPrefix prefixes every environment variable read by the simulator.
const EnvPrefix = "COINSIM_"

// Mode selects what the simulator does.
type Mode string

const (
	ModeStreak      Mode = "streak"
	ModeConvergence Mode = "convergence"
	ModeProgressive Mode = "progressive"
	ModeAnalyze     Mode = "analyze"
)

// Export formats.
const (
	FormatCSV    = "csv"
	FormatXLSX   = "xlsx"
	FormatSQLite = "sqlite"
)

// Static defaults.
const (
	DefaultRuns         = 100
	DefaultMaxStreak    = 15
	DefaultMaxFlips     = 100
	DefaultMaxRuns      = 20
	DefaultTrimFraction = 0.02
	DefaultTimeout      = 30 * time.Minute
	DefaultOutputDir    = "results"
	// MaxStreakLimit keeps 2^n and the flip counters well inside int64.
	MaxStreakLimit = 40
)

// FitProfile overrides the initial guess, bounds and iteration budget of one
// model family. Empty slices keep the family defaults.
type FitProfile struct {
	Initial       []float64 `yaml:"initial"`
	Lower         []float64 `yaml:"lower"`
	Upper         []float64 `yaml:"upper"`
	MaxIterations int       `yaml:"max_iterations"`
}

// FitConfig groups the per-family fit profiles.
type FitConfig struct {
	ScaledExponential FitProfile `yaml:"scaled_exponential"`
	PowerLaw          FitProfile `yaml:"power_law"`
	ExpDecay          FitProfile `yaml:"exp_decay"`
}

// AppConfig aggregates the simulator's configuration parameters.
type AppConfig struct {
	Mode Mode `yaml:"-"`

	// Simulation size.
	Runs      int  `yaml:"runs"`
	MaxStreak int  `yaml:"max_streak"`
	MaxFlips  int  `yaml:"max_flips"`
	MaxRuns   int  `yaml:"max_runs"`
	EvenOnly  bool `yaml:"even_only"`

	// Aggregation.
	TrimFraction float64   `yaml:"trim"`
	TrimCount    int       `yaml:"trim_count"`
	NoFit        bool      `yaml:"no_fit"`
	Fit          FitConfig `yaml:"fit"`

	// Sampling engine.
	Seed      *uint64       `yaml:"seed,omitempty"`
	Workers   int           `yaml:"workers"`
	BatchSize int           `yaml:"batch_size"`
	Timeout   time.Duration `yaml:"timeout"`
	FlipCap   int64         `yaml:"flip_cap"`

	// Output.
	OutputDir string   `yaml:"output_dir"`
	Formats   []string `yaml:"formats"`
	Compress  bool     `yaml:"compress"`
	NoExport  bool     `yaml:"no_export"`

	// Analyze mode.
	InputFile   string `yaml:"-"`
	AnalyzeMode Mode   `yaml:"-"`

	// Presentation and observability.
	Quiet       bool   `yaml:"quiet"`
	Verbose     bool   `yaml:"verbose"`
	NoColor     bool   `yaml:"no_color"`
	TUI         bool   `yaml:"tui"`
	MetricsAddr string `yaml:"metrics_addr"`
	Trace       bool   `yaml:"trace"`

	ConfigFile         string `yaml:"-"`
	EnvFile            string `yaml:"-"`
	CalibrationProfile string `yaml:"calibration_profile"`
}

// Default returns the static defaults. Workers and BatchSize are left at zero
// so that the calibration profile or the adaptive estimate can fill them.
func Default() AppConfig {
	return AppConfig{
		Runs:         DefaultRuns,
		MaxStreak:    DefaultMaxStreak,
		MaxFlips:     DefaultMaxFlips,
		MaxRuns:      DefaultMaxRuns,
		TrimFraction: DefaultTrimFraction,
		Timeout:      DefaultTimeout,
		OutputDir:    DefaultOutputDir,
		Formats:      []string{FormatCSV},
		AnalyzeMode:  ModeStreak,
	}
}

// BindGlobalFlags registers the flags shared by every simulation command.
func BindGlobalFlags(fs *pflag.FlagSet, cfg *AppConfig) {
	fs.Uint64("seed", 0, "base seed for the random streams (random when unset)")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of sampling workers (0 = auto)")
	fs.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "outcomes drawn per batch (0 = auto)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "maximum wall-clock time for the simulation")
	fs.Int64Var(&cfg.FlipCap, "flip-cap", cfg.FlipCap, "abort a single streak search after this many flips (0 = no cap)")
	fs.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "directory receiving the results")
	fs.StringSliceVar(&cfg.Formats, "format", cfg.Formats, "record export formats: csv, xlsx, sqlite")
	fs.BoolVar(&cfg.Compress, "compress", cfg.Compress, "zstd-compress CSV record files")
	fs.BoolVar(&cfg.NoExport, "no-export", cfg.NoExport, "do not write any result files")
	fs.BoolVar(&cfg.NoFit, "no-fit", cfg.NoFit, "skip model fitting")
	fs.BoolVarP(&cfg.Quiet, "quiet", "q", cfg.Quiet, "only print the essential results")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "enable debug logging")
	fs.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "disable colored output")
	fs.BoolVar(&cfg.TUI, "tui", cfg.TUI, "show the interactive dashboard while sampling")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address")
	fs.BoolVar(&cfg.Trace, "trace", cfg.Trace, "print OpenTelemetry spans to stderr")
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML configuration file")
	fs.StringVar(&cfg.EnvFile, "env-file", cfg.EnvFile, "dotenv file to load (default .env when present)")
	fs.StringVar(&cfg.CalibrationProfile, "calibration-profile", cfg.CalibrationProfile, "calibration profile path")
	fs.Float64Var(&cfg.TrimFraction, "trim", cfg.TrimFraction, "fraction trimmed from each end of a group")
	fs.IntVar(&cfg.TrimCount, "trim-count", cfg.TrimCount, "fixed number of samples trimmed from each end (overrides --trim)")
}

// BindStreakFlags registers the streak command flags.
func BindStreakFlags(fs *pflag.FlagSet, cfg *AppConfig) {
	fs.IntVarP(&cfg.Runs, "runs", "r", cfg.Runs, "number of independent runs")
	fs.IntVarP(&cfg.MaxStreak, "max-streak", "s", cfg.MaxStreak, "largest streak target")
}

// BindConvergenceFlags registers the convergence command flags.
func BindConvergenceFlags(fs *pflag.FlagSet, cfg *AppConfig) {
	fs.IntVarP(&cfg.Runs, "runs", "r", cfg.Runs, "number of independent runs")
	fs.IntVarP(&cfg.MaxFlips, "max-flips", "f", cfg.MaxFlips, "largest sequence length")
	fs.BoolVar(&cfg.EvenOnly, "even-only", cfg.EvenOnly, "only sample even lengths and analyse exact halves")
}

// BindProgressiveFlags registers the progressive command flags.
func BindProgressiveFlags(fs *pflag.FlagSet, cfg *AppConfig) {
	fs.IntVar(&cfg.MaxRuns, "max-runs", cfg.MaxRuns, "largest number of runs in the sweep")
	fs.IntVarP(&cfg.MaxStreak, "max-streak", "s", cfg.MaxStreak, "largest streak target")
}

// BindAnalyzeFlags registers the analyze command flags.
func BindAnalyzeFlags(fs *pflag.FlagSet, cfg *AppConfig) {
	fs.StringVarP(&cfg.InputFile, "input", "i", cfg.InputFile, "record file to analyse (.csv or .csv.zst)")
	fs.StringVar((*string)(&cfg.AnalyzeMode), "mode", string(cfg.AnalyzeMode), "record kind: streak, convergence or progressive")
}

// LoadDotEnv loads a dotenv file into the process environment. Variables
// already set are kept. A missing default .env is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return apperrors.NewConfigError("loading env file %s: %v", path, err)
	}
	return nil
}

// LoadFile overlays a YAML file onto cfg.
func LoadFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.NewConfigError("reading config file: %v", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return apperrors.NewConfigError("parsing config file %s: %v", path, err)
	}
	return nil
}

// Resolve builds the effective configuration for mode.
//
// flagged holds the values bound to fs. The result starts from the static
// defaults, then applies the YAML file, then COINSIM_* variables for flags
// not given on the command line, then every flag that was given.
// Calibration and adaptive defaults are applied later by the caller.
func Resolve(mode Mode, flagged *AppConfig, fs *pflag.FlagSet) (AppConfig, error) {
	cfg := Default()
	cfg.Mode = mode

	path := flagged.ConfigFile
	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
		cfg.ConfigFile = path
	}

	applyEnvOverrides(&cfg, fs)
	applyChangedFlags(&cfg, fs)
	cfg.Mode = mode
	return cfg, nil
}

// SeedValue returns the configured base seed and whether one was given.
func (c AppConfig) SeedValue() (uint64, bool) {
	if c.Seed == nil {
		return 0, false
	}
	return *c.Seed, true
}

// Parameters lists the parameter values sampled by the configured mode:
// streak targets 1..MaxStreak or sequence lengths 2..MaxFlips (even only
// when EvenOnly is set).
func (c AppConfig) Parameters() []int {
	var out []int
	switch c.Mode {
	case ModeConvergence:
		step, start := 1, 2
		if c.EvenOnly {
			step = 2
		}
		for l := start; l <= c.MaxFlips; l += step {
			out = append(out, l)
		}
	default:
		for n := 1; n <= c.MaxStreak; n++ {
			out = append(out, n)
		}
	}
	return out
}

// Validate rejects inconsistent configurations before any sampling starts.
func (c AppConfig) Validate() error {
	switch c.Mode {
	case ModeStreak:
		if c.Runs <= 0 {
			return apperrors.NewConfigError("num_runs must be positive, got %d", c.Runs)
		}
		if err := validateMaxStreak(c.MaxStreak); err != nil {
			return err
		}
	case ModeConvergence:
		if c.Runs <= 0 {
			return apperrors.NewConfigError("num_runs must be positive, got %d", c.Runs)
		}
		if c.MaxFlips < 2 {
			return apperrors.NewConfigError("max_flips must be at least 2, got %d", c.MaxFlips)
		}
		if c.EvenOnly && c.MaxFlips%2 != 0 {
			return apperrors.NewConfigError("max_flips must be even when --even-only is set, got %d", c.MaxFlips)
		}
	case ModeProgressive:
		if c.MaxRuns <= 0 {
			return apperrors.NewConfigError("max_runs must be positive, got %d", c.MaxRuns)
		}
		if err := validateMaxStreak(c.MaxStreak); err != nil {
			return err
		}
	case ModeAnalyze:
		if c.InputFile == "" {
			return apperrors.NewConfigError("analyze requires --input")
		}
		if !slices.Contains([]Mode{ModeStreak, ModeConvergence, ModeProgressive}, c.AnalyzeMode) {
			return apperrors.NewConfigError("unknown record kind %q (valid: streak, convergence, progressive)", c.AnalyzeMode)
		}
	default:
		return apperrors.NewConfigError("unknown mode %q", c.Mode)
	}

	if c.TrimFraction < 0 || c.TrimFraction >= 0.5 {
		return apperrors.ValidationError{Field: "trim", Message: fmt.Sprintf("must be in [0, 0.5), got %g", c.TrimFraction)}
	}
	if c.TrimCount < 0 {
		return apperrors.ValidationError{Field: "trim-count", Message: fmt.Sprintf("must not be negative, got %d", c.TrimCount)}
	}
	if c.Workers < 0 || c.BatchSize < 0 || c.FlipCap < 0 {
		return apperrors.NewConfigError("workers, batch-size and flip-cap must not be negative")
	}
	if c.Timeout < 0 {
		return apperrors.NewConfigError("timeout must not be negative, got %s", c.Timeout)
	}
	for _, f := range c.Formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case FormatCSV, FormatXLSX, FormatSQLite:
		default:
			return apperrors.NewConfigError("unknown export format %q (valid: csv, xlsx, sqlite)", f)
		}
	}
	if c.Quiet && c.TUI {
		return apperrors.NewConfigError("--quiet and --tui are mutually exclusive")
	}
	return nil
}

func validateMaxStreak(n int) error {
	if n <= 0 {
		return apperrors.NewConfigError("max_streak must be positive, got %d", n)
	}
	if n > MaxStreakLimit {
		return apperrors.NewConfigError("max_streak must be at most %d, got %d", MaxStreakLimit, n)
	}
	return nil
}
