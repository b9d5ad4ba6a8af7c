// Package export persists simulation records and reports. Records go to CSV
// (optionally zstd-compressed), an XLSX workbook or a SQLite database inside
// a per-run results directory; the analysis is written as a Markdown report.
// The CSV reader loads record files back for the analyze command.
package export
