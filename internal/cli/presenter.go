package cli

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/agbru/coinsim/internal/format"
	"github.com/agbru/coinsim/internal/metrics"
	"github.com/agbru/coinsim/internal/orchestration"
	"github.com/agbru/coinsim/internal/progress"
	"github.com/agbru/coinsim/internal/stats"
	"github.com/agbru/coinsim/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter with a
// spinner and progress bar.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress delegates to DisplayProgress.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numLanes int, out io.Writer) {
	DisplayProgress(wg, progressChan, numLanes, out)
}

// CLIResultPresenter renders reports as colored console tables.
type CLIResultPresenter struct {
	// MaxRows limits the rows printed per table; 0 prints all of them.
	MaxRows int
}

var _ orchestration.ResultPresenter = CLIResultPresenter{}

// warnPercent is the deviation above which a row is highlighted.
const warnPercent = 10.0

// PresentReport prints every table of the report, then the fitted models and
// the convergence findings.
func (p CLIResultPresenter) PresentReport(r orchestration.Report, out io.Writer) {
	fmt.Fprintf(out, "\n%s--- %s analysis (%s records) ---%s\n",
		ui.ColorBold(), r.Mode, format.FormatCount(int64(r.Records)), ui.ColorReset())
	for _, t := range r.Tables {
		p.presentTable(t, out)
	}
	if len(r.Fits) > 0 {
		PresentFits(r.Fits, out)
	}
	if r.Findings != nil {
		PresentFindings(*r.Findings, out)
	}
}

func (p CLIResultPresenter) presentTable(t stats.Table, out io.Writer) {
	fmt.Fprintf(out, "\n%s%s%s\n", ui.ColorPrimary(), t.Analysis.Name, ui.ColorReset())

	header := []string{"n", "count", "mean", "std", "median", "min", "max"}
	withBaseline := t.Analysis.Baseline != nil
	if withBaseline {
		header = append(header, t.Analysis.Compare.String(), "theory", "abs diff", "diff %")
	}

	rows := t.Rows
	truncated := 0
	if p.MaxRows > 0 && len(rows) > p.MaxRows {
		truncated = len(rows) - p.MaxRows
		rows = rows[:p.MaxRows]
	}

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		line := []string{
			fmt.Sprint(r.ParameterValue),
			format.FormatCount(int64(r.Count)),
			format.FormatStat(r.Mean),
			format.FormatStat(r.StdDev),
			format.FormatStat(r.Median),
			format.FormatStat(r.Min),
			format.FormatStat(r.Max),
		}
		if withBaseline {
			line = append(line,
				format.FormatStat(r.Empirical),
				format.FormatStat(r.TheoreticalValue),
				format.FormatStat(r.AbsoluteDifference),
				format.FormatPercent(r.PercentageDifference))
		}
		cells = append(cells, line)
	}

	widths := columnWidths(header, cells)
	for i, h := range header {
		fmt.Fprintf(out, "%s%s%s%s  ", ui.ColorUnderline(), h, ui.ColorReset(), padRight("", widths[i]-len(h)))
	}
	fmt.Fprintln(out)
	for i, line := range cells {
		color := ""
		if withBaseline && math.Abs(rows[i].PercentageDifference) > warnPercent {
			color = ui.ColorWarn()
		}
		for j, c := range line {
			if j == len(line)-1 && color != "" {
				c = ui.Colorize(color, c)
			}
			fmt.Fprintf(out, "%s%s  ", c, padRight("", widths[j]-visibleLen(line[j])))
		}
		fmt.Fprintln(out)
	}
	if truncated > 0 {
		fmt.Fprintf(out, "%s... %d more rows in the exported files%s\n", ui.ColorSecondary(), truncated, ui.ColorReset())
	}
	if withBaseline {
		fmt.Fprintf(out, "MAPE %s  RMSE %s  Pearson r %s (p %s)  R² %s\n",
			format.FormatPercent(t.MAPE), format.FormatStat(t.RMSE),
			format.FormatStat(t.Pearson), format.FormatStat(t.PValue), format.FormatStat(t.RSquared))
	}
	for _, r := range t.Rows {
		if r.TrimErr != nil && t.Analysis.Trim.Enabled() {
			fmt.Fprintf(out, "%snote: %v%s\n", ui.ColorSecondary(), r.TrimErr, ui.ColorReset())
		}
	}
}

// PresentFits prints each fitted model or the reason it failed.
func PresentFits(fits []orchestration.FitOutcome, out io.Writer) {
	fmt.Fprintf(out, "\n%sFitted models%s\n", ui.ColorPrimary(), ui.ColorReset())
	for _, f := range fits {
		if f.Err != nil {
			fmt.Fprintf(out, "  %s%s on %s: %v%s\n", ui.ColorBad(), f.Family, f.Analysis, f.Err, ui.ColorReset())
			continue
		}
		m := f.Model
		status := ui.Colorize(ui.ColorGood(), "ok")
		if m.Degenerate {
			status = ui.Colorize(ui.ColorWarn(), "degenerate")
		}
		fmt.Fprintf(out, "  %s on %s [%s]\n", f.Family, f.Analysis, status)
		fmt.Fprintf(out, "    y = %s%s%s\n", ui.ColorInfo(), m.Expression, ui.ColorReset())
		errs := make([]string, len(m.StdErrors))
		for i, e := range m.StdErrors {
			errs[i] = format.FormatStat(e)
		}
		fmt.Fprintf(out, "    std errors [%s]  R² %s  SSR %s  points %d  iterations %d\n",
			strings.Join(errs, ", "), format.FormatStat(m.RSquared), format.FormatStat(m.SSR), m.Points, m.Iterations)
	}
}

// PresentFindings prints the headline facts of a convergence analysis.
func PresentFindings(f stats.ConvergenceFindings, out io.Writer) {
	fmt.Fprintf(out, "\n%sKey findings%s\n", ui.ColorPrimary(), ui.ColorReset())
	if f.StablePoint > 0 {
		fmt.Fprintf(out, "  std dev below %.2f from n = %d\n", stats.StableStdDev, f.StablePoint)
	} else {
		fmt.Fprintf(out, "  std dev never below %.2f\n", stats.StableStdDev)
	}
	fmt.Fprintf(out, "  largest mean deviation from 0.5: %s at n = %d\n", format.FormatStat(f.MaxMeanDeviation), f.MaxMeanDeviationAt)
	fmt.Fprintf(out, "  largest single-run distance from 0.5: %s at n = %d\n", format.FormatStat(f.MaxDistance), f.MaxDistanceAt)
	if f.IQRWithinPoint > 0 {
		fmt.Fprintf(out, "  IQR within 0.5 ± %.1f from n = %d\n", stats.IQRBand, f.IQRWithinPoint)
	} else {
		fmt.Fprintf(out, "  IQR never within 0.5 ± %.1f\n", stats.IQRBand)
	}
}

// DisplayMemoryStats shows the memory used by a simulation.
func DisplayMemoryStats(snap metrics.MemorySnapshot, out io.Writer) {
	fmt.Fprintf(out, "\nMemory Stats:\n")
	fmt.Fprintf(out, "  Heap in use:     %s\n", format.FormatBytes(snap.HeapAlloc))
	fmt.Fprintf(out, "  Total allocated: %s\n", format.FormatBytes(snap.TotalAlloc))
	fmt.Fprintf(out, "  GC cycles:       %d\n", snap.NumGC)
	fmt.Fprintf(out, "  GC pause total:  %.2fms\n", float64(snap.PauseTotalNs)/1e6)
}

func columnWidths(header []string, rows [][]string) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = visibleLen(h)
	}
	for _, r := range rows {
		for i, c := range r {
			widths[i] = max(widths[i], visibleLen(c))
		}
	}
	return widths
}

func visibleLen(s string) int { return len([]rune(s)) }

// padRight returns s followed by length spaces.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + strings.Repeat(" ", length)
}
