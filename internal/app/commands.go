package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agbru/coinsim/internal/calibration"
	"github.com/agbru/coinsim/internal/config"
)

// commandSpec describes one simulation command.
type commandSpec struct {
	mode    config.Mode
	short   string
	long    string
	example string
	bind    func(fs *pflag.FlagSet, cfg *config.AppConfig)
}

var streakCommand = commandSpec{
	mode:  config.ModeStreak,
	short: "Measure the flips needed to see n heads in a row",
	long: `For every target n in 1..max-streak, flip until n consecutive heads
appear and record the number of flips. The trimmed mean per target is
compared with the theoretical 2^n and a scaled exponential is fitted.`,
	example: "  coinsim streak --runs 1000 --max-streak 12 --seed 42",
	bind:    config.BindStreakFlags,
}

var convergenceCommand = commandSpec{
	mode:  config.ModeConvergence,
	short: "Measure how the head fraction converges to one half",
	long: `For every sequence length L in 2..max-flips, flip L coins and record
the number of heads. The spread of the head fraction is compared with
1/(2√L) and the rate of exact half splits with the binomial probability.`,
	example: "  coinsim convergence --runs 10000 --max-flips 100 --even-only",
	bind:    config.BindConvergenceFlags,
}

var progressiveCommand = commandSpec{
	mode:  config.ModeProgressive,
	short: "Sweep the number of runs and track the deviation from 2^n",
	long: `For k = 1..max-runs, repeat the streak experiment with k runs per
target and summarize how far the mean waiting time lies from 2^n as k
grows.`,
	example: "  coinsim progressive --max-runs 50 --max-streak 10",
	bind:    config.BindProgressiveFlags,
}

func (a *Application) newSimulationCommand(spec commandSpec) *cobra.Command {
	flagged := config.Default()
	cmd := &cobra.Command{
		Use:     string(spec.mode),
		Short:   spec.short,
		Long:    spec.long,
		Example: spec.example,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.resolve(spec.mode, &flagged, cmd.Flags())
			if err != nil {
				return err
			}
			return a.runSimulation(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
	spec.bind(cmd.Flags(), &flagged)
	config.BindGlobalFlags(cmd.Flags(), &flagged)
	return cmd
}

func (a *Application) newAnalyzeCommand() *cobra.Command {
	flagged := config.Default()
	cmd := &cobra.Command{
		Use:   string(config.ModeAnalyze),
		Short: "Re-aggregate and refit a previously exported record file",
		Long: `Read a record file written by a previous run (.csv or .csv.zst), then
aggregate, fit and export it again with the current trim and fit settings.
The record kind is detected from the header; --mode only asserts it.`,
		Example: "  coinsim analyze --input results/streak_20260101_120000_ab12cd34/streak_records.csv",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.resolve(config.ModeAnalyze, &flagged, cmd.Flags())
			if err != nil {
				return err
			}
			return a.runAnalyze(cmd.Context(), cfg, cmd.Flags().Changed("mode"), cmd.OutOrStdout())
		},
	}
	config.BindAnalyzeFlags(cmd.Flags(), &flagged)
	config.BindGlobalFlags(cmd.Flags(), &flagged)
	return cmd
}

func (a *Application) newCalibrateCommand() *cobra.Command {
	flagged := config.Default()
	var quick bool
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Benchmark worker counts and batch sizes and cache the fastest",
		Long: `Run the same seeded streak workload with every candidate worker count
and batch size, then store the fastest combination in the calibration
profile. Later runs use it when --workers and --batch-size are not given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(flagged.EnvFile); err != nil {
				return err
			}
			cfg, err := config.Resolve(config.ModeStreak, &flagged, cmd.Flags())
			if err != nil {
				return err
			}
			return a.runCalibrate(cmd.Context(), cfg, quick, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&quick, "quick", false, "benchmark a reduced candidate set")
	config.BindGlobalFlags(cmd.Flags(), &flagged)
	return cmd
}

// resolve builds the effective configuration of a command: dotenv, file,
// environment and flags, then the cached calibration profile and the
// adaptive defaults for whatever is still unset.
func (a *Application) resolve(mode config.Mode, flagged *config.AppConfig, fs *pflag.FlagSet) (config.AppConfig, error) {
	if err := config.LoadDotEnv(flagged.EnvFile); err != nil {
		return config.AppConfig{}, err
	}
	cfg, err := config.Resolve(mode, flagged, fs)
	if err != nil {
		return cfg, err
	}
	if withProfile, ok := calibration.LoadCachedCalibration(cfg, cfg.CalibrationProfile); ok {
		cfg = withProfile
	}
	cfg = config.ApplyAdaptiveDefaults(cfg)
	return cfg, cfg.Validate()
}
