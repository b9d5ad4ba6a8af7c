// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Present* and Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [PresentFits], [DisplayQuietReport], [DisplayProgress].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatQuietRow].

package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/agbru/coinsim/internal/export"
	"github.com/agbru/coinsim/internal/orchestration"
	"github.com/agbru/coinsim/internal/stats"
	"github.com/agbru/coinsim/internal/ui"
)

// FormatQuietRow formats one aggregate row as a tab-separated line:
// analysis, parameter, count, compared statistic, theoretical value and
// percentage difference. NaN values are written as "NaN".
func FormatQuietRow(analysis string, r stats.AggregateRow) string {
	return fmt.Sprintf("%s\t%d\t%d\t%s\t%s\t%s", analysis, r.ParameterValue, r.Count,
		quietFloat(r.Empirical), quietFloat(r.TheoreticalValue), quietFloat(r.PercentageDifference))
}

func quietFloat(v float64) string { return strconv.FormatFloat(v, 'g', 10, 64) }

// DisplayQuietReport writes one FormatQuietRow line per table row, for
// scripting.
func DisplayQuietReport(r orchestration.Report, out io.Writer) {
	for _, t := range r.Tables {
		for _, row := range t.Rows {
			fmt.Fprintln(out, FormatQuietRow(t.Analysis.Name, row))
		}
	}
}

// QuietPresenter is the ResultPresenter used with --quiet.
type QuietPresenter struct{}

var _ orchestration.ResultPresenter = QuietPresenter{}

// PresentReport delegates to DisplayQuietReport.
func (QuietPresenter) PresentReport(r orchestration.Report, out io.Writer) {
	DisplayQuietReport(r, out)
}

// DisplayExportSummary lists the files of a results directory.
func DisplayExportSummary(dir *export.RunDir, out io.Writer) {
	if dir == nil {
		return
	}
	fmt.Fprintf(out, "\n%s✓ Results saved to: %s%s%s\n", ui.ColorGood(), ui.ColorInfo(), dir.Path, ui.ColorReset())
	entries, err := os.ReadDir(dir.Path)
	if err != nil {
		return
	}
	for _, e := range entries {
		fmt.Fprintf(out, "  %s\n", e.Name())
	}
}
