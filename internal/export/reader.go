package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/agbru/coinsim/internal/config"
	apperrors "github.com/agbru/coinsim/internal/errors"
	"github.com/agbru/coinsim/internal/records"
)

// ReadCSVFile loads a record file written by WriteCSVFile. Files ending in
// ZstdSuffix are decompressed on the fly.
func ReadCSVFile(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, apperrors.NewConfigError("cannot open input %q: %v", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ZstdSuffix) {
		dec, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return Dataset{}, fmt.Errorf("zstd decoder: %w", err)
		}
		defer dec.Close()
		r = dec
	}
	return ReadCSV(r)
}

// ReadCSV parses records. The mode is detected from the header: a
// total_runs column marks progressive records, sequence_length convergence
// records and flips_required streak records. Extra columns are ignored.
func ReadCSV(r io.Reader) (Dataset, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return Dataset{}, apperrors.ValidationError{Field: "input", Message: fmt.Sprintf("missing header: %v", err)}
	}
	header = slices.Clone(header)
	ds := Dataset{Mode: detectMode(header)}
	if ds.Mode == "" {
		return Dataset{}, apperrors.ValidationError{Field: "input", Message: fmt.Sprintf("unrecognized header %v", header)}
	}
	idx, err := columnIndex(header, ds.Mode)
	if err != nil {
		return Dataset{}, err
	}

	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Dataset{}, apperrors.ValidationError{Field: "input", Message: err.Error()}
		}
		p := rowParser{row: row, idx: idx, line: line}
		switch ds.Mode {
		case config.ModeStreak:
			sr := p.streak()
			if p.err == nil {
				ds.Streak = append(ds.Streak, sr)
			}
		case config.ModeConvergence:
			rec := records.ConvergenceResult{
				RunIndex:       p.int("run_index"),
				SequenceLength: p.int("sequence_length"),
				Heads:          p.int("heads"),
			}
			if p.err == nil && (rec.SequenceLength < 1 || rec.Heads < 0 || rec.Heads > rec.SequenceLength) {
				p.fail("heads", "out of range")
			}
			if p.err == nil {
				ds.Convergence = append(ds.Convergence, rec)
			}
		case config.ModeProgressive:
			total := p.int("total_runs")
			sr := p.streak()
			if p.err == nil {
				ds.Progressive = append(ds.Progressive, records.NewProgressiveResult(total, sr))
			}
		}
		if p.err != nil {
			return Dataset{}, p.err
		}
	}
	if ds.Len() == 0 {
		return Dataset{}, apperrors.ValidationError{Field: "input", Message: "no records"}
	}
	return ds, nil
}

func detectMode(header []string) config.Mode {
	switch {
	case slices.Contains(header, "total_runs"):
		return config.ModeProgressive
	case slices.Contains(header, "sequence_length"):
		return config.ModeConvergence
	case slices.Contains(header, "flips_required"):
		return config.ModeStreak
	}
	return ""
}

// columnIndex maps the required columns of mode to their header position.
// Derived columns (head_fraction, theoretical, ...) are recomputed and not
// required.
func columnIndex(header []string, mode config.Mode) (map[string]int, error) {
	required := map[config.Mode][]string{
		config.ModeStreak:      {"run_index", "streak_target", "flips_required"},
		config.ModeConvergence: {"run_index", "sequence_length", "heads"},
		config.ModeProgressive: {"total_runs", "run_index", "streak_target", "flips_required"},
	}[mode]
	idx := make(map[string]int, len(required))
	for _, c := range required {
		i := slices.Index(header, c)
		if i < 0 {
			return nil, apperrors.ValidationError{Field: "input", Message: fmt.Sprintf("missing column %q", c)}
		}
		idx[c] = i
	}
	return idx, nil
}

type rowParser struct {
	row  []string
	idx  map[string]int
	line int
	err  error
}

func (p *rowParser) int(col string) int {
	return int(p.int64(col))
}

func (p *rowParser) int64(col string) int64 {
	if p.err != nil {
		return 0
	}
	i := p.idx[col]
	if i >= len(p.row) {
		p.fail(col, "missing value")
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(p.row[i]), 10, 64)
	if err != nil {
		p.fail(col, err.Error())
	}
	return v
}

func (p *rowParser) streak() records.StreakResult {
	sr := records.StreakResult{
		RunIndex:      p.int("run_index"),
		StreakTarget:  p.int("streak_target"),
		FlipsRequired: p.int64("flips_required"),
	}
	if p.err == nil && (sr.StreakTarget < 1 || sr.FlipsRequired < int64(sr.StreakTarget)) {
		p.fail("flips_required", "fewer flips than the streak target")
	}
	return sr
}

func (p *rowParser) fail(col, msg string) {
	if p.err == nil {
		p.err = apperrors.ValidationError{Field: col, Message: fmt.Sprintf("line %d: %s", p.line, msg)}
	}
}
