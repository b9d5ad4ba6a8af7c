package export

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/agbru/coinsim/internal/config"
	"github.com/agbru/coinsim/internal/logging"
	"github.com/agbru/coinsim/internal/orchestration"
)

// Exporter writes every configured artifact of a run.
type Exporter struct {
	BaseDir  string
	Formats  []string
	Compress bool
	Logger   logging.Logger
	// Now is overridable for tests.
	Now func() time.Time
}

// NewExporter builds an exporter from the configuration.
func NewExporter(cfg config.AppConfig, logger logging.Logger) *Exporter {
	formats := cfg.Formats
	if len(formats) == 0 {
		formats = []string{config.FormatCSV}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Exporter{BaseDir: cfg.OutputDir, Formats: formats, Compress: cfg.Compress, Logger: logger, Now: time.Now}
}

// Export creates a run directory and writes the records in every format, the
// per-table summaries as CSV, the Markdown report and the manifest. It
// returns the run directory.
func (e *Exporter) Export(ctx context.Context, d Dataset, report orchestration.Report, m Manifest) (*RunDir, error) {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	logger := e.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	dir, err := NewRunDir(e.BaseDir, d.Mode, now())
	if err != nil {
		return nil, err
	}
	base := string(d.Mode)
	m.RunID = dir.ID.String()
	var files []string

	for _, f := range e.Formats {
		if err := ctx.Err(); err != nil {
			return dir, err
		}
		var path string
		switch f {
		case config.FormatCSV:
			path, err = WriteCSVFile(dir.File(base+"_records.csv"), d, e.Compress)
		case config.FormatXLSX:
			path = dir.File(base + "_results.xlsx")
			err = WriteXLSX(path, d, report)
		case config.FormatSQLite:
			path = dir.File(base + "_results.db")
			err = WriteSQLite(ctx, path, d, report)
		default:
			err = fmt.Errorf("unknown export format %q", f)
		}
		if err != nil {
			return dir, fmt.Errorf("export %s: %w", f, err)
		}
		files = append(files, path)
		logger.Debug("exported records", logging.String("format", f), logging.String("path", path))
	}

	for _, t := range report.Tables {
		path := dir.File(t.Analysis.Name + "_summary.csv")
		if err := writeFile(path, func(f *os.File) error { return WriteTableCSV(f, t) }); err != nil {
			return dir, fmt.Errorf("export summary: %w", err)
		}
		files = append(files, path)
	}

	reportPath := dir.File("analysis_report.md")
	if err := writeFile(reportPath, func(f *os.File) error { return WriteMarkdown(f, m, report) }); err != nil {
		return dir, fmt.Errorf("export report: %w", err)
	}
	files = append(files, reportPath)

	m.Mode = d.Mode
	m.Records = d.Len()
	m.Files = files
	if _, err := dir.WriteManifest(m); err != nil {
		return dir, fmt.Errorf("export manifest: %w", err)
	}
	logger.Info("results exported", logging.String("dir", dir.Path), logging.Int("files", len(files)+1))
	return dir, nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
