package tui

import (
	"fmt"
	"strings"

	"github.com/agbru/coinsim/internal/format"
	"github.com/agbru/coinsim/internal/orchestration"
	"github.com/agbru/coinsim/internal/stats"
)

// ResultsModel renders the finished report as a scrollable list of lines.
type ResultsModel struct {
	lines  []string
	offset int
	width  int
	height int
}

// SetReport replaces the content with a rendering of r.
func (r *ResultsModel) SetReport(rep orchestration.Report) {
	r.lines = reportLines(rep)
	r.offset = 0
}

// SetError shows err instead of a report.
func (r *ResultsModel) SetError(err error) {
	r.lines = []string{errorStyle.Render("Error: " + err.Error())}
	r.offset = 0
}

// HasContent reports whether a report or error has been set.
func (r ResultsModel) HasContent() bool { return len(r.lines) > 0 }

// SetSize updates dimensions.
func (r *ResultsModel) SetSize(w, h int) {
	r.width, r.height = w, h
	r.Scroll(0)
}

// Scroll moves the visible window by delta lines.
func (r *ResultsModel) Scroll(delta int) {
	r.offset = max(0, min(r.offset+delta, len(r.lines)-r.visibleRows()))
}

func (r ResultsModel) visibleRows() int { return max(r.height-3, 1) }

// View renders the panel.
func (r ResultsModel) View() string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render(" Results"))
	end := min(r.offset+r.visibleRows(), len(r.lines))
	for _, l := range r.lines[r.offset:end] {
		b.WriteString("\n ")
		b.WriteString(l)
	}
	return panelStyle.Width(max(r.width-2, 0)).Height(max(r.height-2, 0)).Render(b.String())
}

func reportLines(rep orchestration.Report) []string {
	lines := []string{metricLabelStyle.Render("Records: ") + metricValueStyle.Render(format.FormatCount(int64(rep.Records)))}
	for _, t := range rep.Tables {
		lines = append(lines, "")
		lines = append(lines, tableLines(t)...)
	}
	if f := rep.Findings; f != nil {
		lines = append(lines, "", titleStyle.Render("Convergence"))
		lines = append(lines,
			findingLine("Stable (std < 0.05) from", f.StablePoint),
			findingLine("IQR within ±0.1 from", f.IQRWithinPoint),
			fmt.Sprintf("%s %s at %d", metricLabelStyle.Render("Max mean deviation"), metricValueStyle.Render(format.FormatStat(f.MaxMeanDeviation)), f.MaxMeanDeviationAt),
			fmt.Sprintf("%s %s at %d", metricLabelStyle.Render("Max distance"), metricValueStyle.Render(format.FormatStat(f.MaxDistance)), f.MaxDistanceAt),
		)
	}
	if len(rep.Fits) > 0 {
		lines = append(lines, "", titleStyle.Render("Model fits"))
		for _, f := range rep.Fits {
			name := metricLabelStyle.Render(fmt.Sprintf("%s/%s", f.Analysis, f.Family))
			if f.Err != nil {
				lines = append(lines, name+" "+errorStyle.Render(f.Err.Error()))
				continue
			}
			line := fmt.Sprintf("%s %s R²=%s", name, metricValueStyle.Render(f.Model.Expression), format.FormatStat(f.Model.RSquared))
			if f.Model.Degenerate {
				line += " " + warnStyle.Render("(degenerate)")
			}
			lines = append(lines, line)
		}
	}
	return lines
}

func findingLine(label string, at int) string {
	v := "never"
	if at > 0 {
		v = fmt.Sprint(at)
	}
	return metricLabelStyle.Render(label) + " " + metricValueStyle.Render(v)
}

func tableLines(t stats.Table) []string {
	lines := []string{titleStyle.Render(t.Analysis.Name)}
	hasBaseline := t.Analysis.Baseline != nil
	header := fmt.Sprintf("%8s %8s %12s %12s", "param", "n", "mean", "median")
	if hasBaseline {
		header += fmt.Sprintf(" %12s %12s %9s", t.Analysis.Compare.String(), "theory", "diff %")
	}
	lines = append(lines, dimStyle.Render(header))
	for _, row := range t.Rows {
		line := fmt.Sprintf("%8d %8d %12s %12s", row.ParameterValue, row.Count, format.FormatStat(row.Mean), format.FormatStat(row.Median))
		if hasBaseline {
			diff := fmt.Sprintf(" %9s", format.FormatPercent(row.PercentageDifference))
			line += fmt.Sprintf(" %12s %12s", format.FormatStat(row.Empirical), format.FormatStat(row.TheoreticalValue))
			if abs := row.PercentageDifference; abs > 10 || abs < -10 {
				diff = warnStyle.Render(diff)
			}
			line += diff
		}
		lines = append(lines, line)
	}
	if hasBaseline {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("MAPE %s  RMSE %s  r %s (p %s)  R² %s",
			format.FormatPercent(t.MAPE), format.FormatStat(t.RMSE), format.FormatStat(t.Pearson),
			format.FormatStat(t.PValue), format.FormatStat(t.RSquared))))
	}
	return lines
}
