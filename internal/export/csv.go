package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/agbru/coinsim/internal/fit"
	"github.com/agbru/coinsim/internal/stats"
)

// ZstdSuffix marks compressed record files.
const ZstdSuffix = ".zst"

// WriteCSV writes the dataset records with a header row.
func WriteCSV(w io.Writer, d Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Columns()); err != nil {
		return err
	}
	for _, row := range d.Rows() {
		if err := cw.Write(cells(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the records to path, zstd-compressing them when
// compress is set. The ZstdSuffix is appended to compressed file names. It
// returns the path written.
func WriteCSVFile(path string, d Dataset, compress bool) (string, error) {
	if compress && !strings.HasSuffix(path, ZstdSuffix) {
		path += ZstdSuffix
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	var w io.Writer = bw
	var enc *zstd.Encoder
	if compress {
		enc, err = zstd.NewWriter(bw, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return "", fmt.Errorf("zstd encoder: %w", err)
		}
		w = enc
	}
	if err := WriteCSV(w, d); err != nil {
		return "", err
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return "", err
		}
	}
	if err := bw.Flush(); err != nil {
		return "", err
	}
	return path, f.Close()
}

// WriteTableCSV writes an aggregate table, one row per parameter value.
func WriteTableCSV(w io.Writer, t stats.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tableColumns); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if err := cw.Write(cells(tableRow(r))); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func tableRow(r stats.AggregateRow) []any {
	return []any{
		r.ParameterValue, r.Count, r.Mean, r.StdDev, r.Median, r.Q1, r.Q3, r.Min, r.Max,
		r.TrimmedMean, r.TrimmedMedian, r.TrimmedCount,
		r.Empirical, r.EmpiricalUntrimmed, r.TheoreticalValue, r.AbsoluteDifference, r.PercentageDifference,
	}
}

func fitRow(analysis, family string, fm *fit.FittedModel, err error) []any {
	if err != nil || fm == nil {
		msg := ""
		if err != nil {
			msg = err.Error()
		}
		return []any{analysis, family, "", "", "", "", "", "", "", msg}
	}
	return []any{
		analysis, family, fm.Expression, floats(fm.Params), floats(fm.StdErrors),
		fm.SSR, fm.RSquared, fm.Iterations, fm.Degenerate, "",
	}
}

func floats(v []float64) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strings.Join(parts, ";")
}

func cells(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = cell(v)
	}
	return out
}

func cell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
