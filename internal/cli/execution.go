package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/coinsim/internal/config"
	"github.com/agbru/coinsim/internal/format"
	"github.com/agbru/coinsim/internal/orchestration"
	"github.com/agbru/coinsim/internal/ui"
)

// PrintExecutionConfig displays the resolved simulation plan: what is
// sampled, how many records it yields, the seed needed to reproduce it and
// the engine settings.
func PrintExecutionConfig(cfg config.AppConfig, plan orchestration.Plan, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Mode: %s%s%s, %s.\n", ui.ColorPrimary(), plan.Mode, ui.ColorReset(), describePlan(cfg, plan))
	fmt.Fprintf(out, "Records: %s%s%s, timeout %s%s%s.\n",
		ui.ColorInfo(), format.FormatCount(int64(plan.TotalRecords())), ui.ColorReset(),
		ui.ColorInfo(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Seed: %s%d%s (pass --seed %d to reproduce).\n",
		ui.ColorInfo(), plan.BaseSeed, ui.ColorReset(), plan.BaseSeed)
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorInfo(), runtime.NumCPU(), ui.ColorReset(), ui.ColorInfo(), runtime.Version(), ui.ColorReset())
	fmt.Fprintf(out, "Engine: %s%d%s workers, batches of %s%d%s flips.\n",
		ui.ColorInfo(), plan.Workers, ui.ColorReset(), ui.ColorInfo(), plan.BatchSize, ui.ColorReset())
	fmt.Fprintf(out, "\n--- Starting Simulation ---\n")
}

func describePlan(cfg config.AppConfig, plan orchestration.Plan) string {
	switch plan.Mode {
	case config.ModeConvergence:
		kind := "all lengths"
		if cfg.EvenOnly {
			kind = "even lengths"
		}
		return fmt.Sprintf("%d runs per sequence length, %s 2..%d", plan.Runs, kind, cfg.MaxFlips)
	case config.ModeProgressive:
		return fmt.Sprintf("sweeps of 1..%d runs, streaks 1..%d", plan.MaxRuns, cfg.MaxStreak)
	default:
		return fmt.Sprintf("%d runs per streak target, targets 1..%d", plan.Runs, cfg.MaxStreak)
	}
}
