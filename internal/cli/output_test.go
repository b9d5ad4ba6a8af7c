package cli

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/agbru/coinsim/internal/config"
	"github.com/agbru/coinsim/internal/export"
	"github.com/agbru/coinsim/internal/orchestration"
	"github.com/agbru/coinsim/internal/stats"
)

func TestFormatQuietRow(t *testing.T) {
	t.Parallel()
	row := stats.AggregateRow{
		ParameterValue:       3,
		Summary:              stats.Summary{Count: 10},
		Empirical:            8.5,
		TheoreticalValue:     8,
		PercentageDifference: 6.25,
	}
	if got, want := FormatQuietRow("streak", row), "streak\t3\t10\t8.5\t8\t6.25"; got != want {
		t.Errorf("FormatQuietRow = %q, want %q", got, want)
	}

	row.TheoreticalValue, row.PercentageDifference = math.NaN(), math.NaN()
	if got := FormatQuietRow("x", row); !strings.HasSuffix(got, "\tNaN\tNaN") {
		t.Errorf("NaN values should be written as NaN, got %q", got)
	}
}

func TestQuietPresenter(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	QuietPresenter{}.PresentReport(streakReport(), &out)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want one per row:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "streak\t1\t10\t") {
		t.Errorf("first line = %q", lines[0])
	}
}

func TestDisplayExportSummary(t *testing.T) {
	noColor(t)
	dir, err := export.NewRunDir(t.TempDir(), config.ModeStreak, time.Date(2025, 4, 19, 10, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := dir.WriteManifest(export.Manifest{Mode: config.ModeStreak}); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	DisplayExportSummary(dir, &out)
	if !strings.Contains(out.String(), dir.Path) || !strings.Contains(out.String(), "manifest.json") {
		t.Errorf("summary = %q", out.String())
	}

	out.Reset()
	DisplayExportSummary(nil, &out)
	if out.Len() != 0 {
		t.Error("nil directory should print nothing")
	}
}

func TestPrintExecutionConfig(t *testing.T) {
	noColor(t)
	tests := []struct {
		name string
		cfg  config.AppConfig
		want []string
	}{
		{
			name: "streak",
			cfg:  config.AppConfig{Mode: config.ModeStreak, Runs: 10, MaxStreak: 5, Timeout: time.Minute, Workers: 2, BatchSize: 1024},
			want: []string{"Mode: streak", "10 runs per streak target, targets 1..5", "Records: 50", "--seed 7", "2 workers"},
		},
		{
			name: "convergence even",
			cfg:  config.AppConfig{Mode: config.ModeConvergence, Runs: 3, MaxFlips: 10, EvenOnly: true, Workers: 1, BatchSize: 64},
			want: []string{"even lengths 2..10", "Records: 15"},
		},
		{
			name: "progressive",
			cfg:  config.AppConfig{Mode: config.ModeProgressive, MaxRuns: 4, MaxStreak: 2, Workers: 1, BatchSize: 64},
			want: []string{"sweeps of 1..4 runs, streaks 1..2", "Records: 20"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed := uint64(7)
			tt.cfg.Seed = &seed
			plan := orchestration.NewPlan(tt.cfg)
			var out bytes.Buffer
			PrintExecutionConfig(tt.cfg, plan, &out)
			for _, w := range tt.want {
				if !strings.Contains(out.String(), w) {
					t.Errorf("missing %q in:\n%s", w, out.String())
				}
			}
		})
	}
}
