package export

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/agbru/coinsim/internal/orchestration"
)

const recordsSheet = "Records"

// WriteXLSX writes a workbook with the records, one summary sheet per
// aggregate table and a sheet of fitted models.
func WriteXLSX(path string, d Dataset, report orchestration.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(recordsSheet)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", anyRow(d.Columns())); err != nil {
		return err
	}
	for i, row := range d.Rows() {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	for _, t := range report.Tables {
		sheet := sheetName("Summary " + t.Analysis.Name)
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := setRow(f, sheet, 1, anyRow(tableColumns)); err != nil {
			return err
		}
		for i, r := range t.Rows {
			if err := setRow(f, sheet, i+2, tableRow(r)); err != nil {
				return err
			}
		}
	}

	if len(report.Fits) > 0 {
		if _, err := f.NewSheet("Fits"); err != nil {
			return err
		}
		if err := setRow(f, "Fits", 1, anyRow(fitColumns)); err != nil {
			return err
		}
		for i, fo := range report.Fits {
			if err := setRow(f, "Fits", i+2, fitRow(fo.Analysis, fo.Family, fo.Model, fo.Err)); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		values[i] = xlsxValue(v)
	}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	return f.SetSheetRow(sheet, cell, &values)
}

// xlsxValue replaces non-finite numbers, which spreadsheets cannot store,
// with an empty cell.
func xlsxValue(v any) any {
	if x, ok := v.(float64); ok && (math.IsNaN(x) || math.IsInf(x, 0)) {
		return ""
	}
	return v
}

// sheetName truncates to the 31 characters a worksheet name may hold.
func sheetName(s string) string {
	if len(s) > 31 {
		return s[:31]
	}
	return s
}

func anyRow(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
