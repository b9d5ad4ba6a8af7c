package calibration

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/agbru/coinsim/internal/format"
	"github.com/agbru/coinsim/internal/ui"
)

// printCalibrationResults formats and prints the calibration results table.
func printCalibrationResults(out io.Writer, results []calibrationResult, best calibrationResult) {
	fmt.Fprintf(out, "\n--- Calibration Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  %sWorkers%s\t%sBatch%s\t│ %sTime%s\t%sFlips/s%s\n",
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())
	fmt.Fprintf(tw, "  %s\n", strings.Repeat("─", 48))
	for _, res := range results {
		duration := ui.Colorize(ui.ColorBad(), "N/A")
		rate := ""
		if res.Err == nil {
			duration = format.FormatExecutionDuration(res.Duration)
			rate = format.FormatCount(int64(res.throughput()))
		}
		highlight := ""
		if res.Err == nil && res.Workers == best.Workers && res.BatchSize == best.BatchSize {
			highlight = " " + ui.Colorize(ui.ColorGood(), "(Optimal)")
		}
		fmt.Fprintf(tw, "  %s%d%s\t%d\t│ %s%s%s\t%s%s\n",
			ui.ColorInfo(), res.Workers, ui.ColorReset(), res.BatchSize,
			ui.ColorWarn(), duration, ui.ColorReset(), rate, highlight)
	}
	tw.Flush()
}

// PrintProfileApplied reports the engine settings taken from a profile.
func PrintProfileApplied(p *CalibrationProfile, out io.Writer) {
	fmt.Fprintf(out, "%sCalibration profile%s: workers=%s%d%s, batch size=%s%d%s\n",
		ui.ColorGood(), ui.ColorReset(),
		ui.ColorWarn(), p.OptimalWorkers, ui.ColorReset(),
		ui.ColorWarn(), p.OptimalBatchSize, ui.ColorReset())
}
