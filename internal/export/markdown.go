package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/agbru/coinsim/internal/format"
	"github.com/agbru/coinsim/internal/orchestration"
	"github.com/agbru/coinsim/internal/stats"
)

// WriteMarkdown renders the report as a Markdown document: one section per
// aggregate table with its deviation metrics, the fitted models and the
// convergence findings when present.
func WriteMarkdown(w io.Writer, m Manifest, r orchestration.Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s analysis\n\n", titleCase(string(r.Mode)))
	fmt.Fprintf(&b, "- Records: %d\n", r.Records)
	fmt.Fprintf(&b, "- Seed: %d\n", m.Seed)
	if m.RunID != "" {
		fmt.Fprintf(&b, "- Run: %s\n", m.RunID)
	}
	if m.Trim > 0 || m.TrimCount > 0 {
		fmt.Fprintf(&b, "- Trim: fraction %g, count %d per side\n", m.Trim, m.TrimCount)
	}
	b.WriteString("\n")

	for _, t := range r.Tables {
		writeTable(&b, t)
	}

	if len(r.Fits) > 0 {
		b.WriteString("## Fitted models\n\n")
		b.WriteString("| Analysis | Family | Model | Std errors | R² | Note |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, f := range r.Fits {
			if f.Err != nil {
				fmt.Fprintf(&b, "| %s | %s | | | | %s |\n", f.Analysis, f.Family, escape(f.Err.Error()))
				continue
			}
			note := ""
			if f.Model.Degenerate {
				note = "degenerate: parameters not separately identifiable"
			}
			fmt.Fprintf(&b, "| %s | %s | `%s` | %s | %s | %s |\n",
				f.Analysis, f.Family, f.Model.Expression, joinStats(f.Model.StdErrors), format.FormatStat(f.Model.RSquared), note)
		}
		b.WriteString("\n")
	}

	if f := r.Findings; f != nil {
		b.WriteString("## Key findings\n\n")
		if f.StablePoint > 0 {
			fmt.Fprintf(&b, "- Standard deviation falls below %g at %d flips\n", stats.StableStdDev, f.StablePoint)
		} else {
			fmt.Fprintf(&b, "- Standard deviation never falls below %g\n", stats.StableStdDev)
		}
		fmt.Fprintf(&b, "- Largest mean deviation from 0.5: %s at %d flips\n", format.FormatStat(f.MaxMeanDeviation), f.MaxMeanDeviationAt)
		fmt.Fprintf(&b, "- Largest single-run distance from 0.5: %s at %d flips\n", format.FormatStat(f.MaxDistance), f.MaxDistanceAt)
		if f.IQRWithinPoint > 0 {
			fmt.Fprintf(&b, "- Interquartile range within 0.5 ± %g from %d flips\n", stats.IQRBand, f.IQRWithinPoint)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeTable(b *strings.Builder, t stats.Table) {
	fmt.Fprintf(b, "## %s\n\n", titleCase(strings.ReplaceAll(t.Analysis.Name, "_", " ")))
	hasBaseline := t.Analysis.Baseline != nil
	if hasBaseline {
		fmt.Fprintf(b, "- Compared statistic: %s\n", t.Analysis.Compare)
		fmt.Fprintf(b, "- MAPE: %s\n", format.FormatPercent(t.MAPE))
		fmt.Fprintf(b, "- RMSE: %s\n", format.FormatStat(t.RMSE))
		if !math.IsNaN(t.Pearson) {
			fmt.Fprintf(b, "- Pearson r: %s (p = %.4g)\n", format.FormatStat(t.Pearson), t.PValue)
		}
		if !math.IsNaN(t.RSquared) {
			fmt.Fprintf(b, "- R²: %s\n", format.FormatStat(t.RSquared))
		}
		b.WriteString("\n")
		b.WriteString("| n | Count | Mean | Std | Median | Trimmed mean | Theoretical | Abs diff | Diff % |\n")
		b.WriteString("|---|---|---|---|---|---|---|---|---|\n")
	} else {
		b.WriteString("| n | Count | Mean | Std | Median | Min | Max |\n")
		b.WriteString("|---|---|---|---|---|---|---|\n")
	}
	for _, r := range t.Rows {
		if hasBaseline {
			fmt.Fprintf(b, "| %d | %d | %s | %s | %s | %s | %s | %s | %s |\n",
				r.ParameterValue, r.Count, format.FormatStat(r.Mean), format.FormatStat(r.StdDev), format.FormatStat(r.Median),
				format.FormatStat(r.TrimmedMean), format.FormatStat(r.TheoreticalValue),
				format.FormatStat(r.AbsoluteDifference), format.FormatPercent(r.PercentageDifference))
			continue
		}
		fmt.Fprintf(b, "| %d | %d | %s | %s | %s | %s | %s |\n",
			r.ParameterValue, r.Count, format.FormatStat(r.Mean), format.FormatStat(r.StdDev),
			format.FormatStat(r.Median), format.FormatStat(r.Min), format.FormatStat(r.Max))
	}
	b.WriteString("\n")
}

func joinStats(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = format.FormatStat(x)
	}
	return strings.Join(parts, ", ")
}

func escape(s string) string { return strings.ReplaceAll(s, "|", `\|`) }

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
