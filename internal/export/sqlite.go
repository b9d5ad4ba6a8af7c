package export

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/agbru/coinsim/internal/config"
	"github.com/agbru/coinsim/internal/orchestration"
)

const schema = `
CREATE TABLE IF NOT EXISTS streak_results (
	run_index      INTEGER NOT NULL,
	streak_target  INTEGER NOT NULL,
	flips_required INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS convergence_results (
	run_index       INTEGER NOT NULL,
	sequence_length INTEGER NOT NULL,
	heads           INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS progressive_results (
	total_runs            INTEGER NOT NULL,
	run_index             INTEGER NOT NULL,
	streak_target         INTEGER NOT NULL,
	flips_required        INTEGER NOT NULL,
	theoretical           REAL NOT NULL,
	absolute_difference   REAL NOT NULL,
	percentage_difference REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS aggregate_rows (
	analysis              TEXT NOT NULL,
	parameter_value       INTEGER NOT NULL,
	count                 INTEGER NOT NULL,
	mean                  REAL,
	std_dev               REAL,
	median                REAL,
	trimmed_mean          REAL,
	trimmed_median        REAL,
	empirical             REAL,
	empirical_untrimmed   INTEGER NOT NULL,
	theoretical_value     REAL,
	absolute_difference   REAL,
	percentage_difference REAL
);
CREATE TABLE IF NOT EXISTS fits (
	analysis   TEXT NOT NULL,
	family     TEXT NOT NULL,
	expression TEXT,
	params     TEXT,
	std_errors TEXT,
	ssr        REAL,
	r_squared  REAL,
	degenerate INTEGER,
	error      TEXT
);`

var insertQueries = map[string]string{
	"streak_results":      `INSERT INTO streak_results (run_index, streak_target, flips_required) VALUES (:run_index, :streak_target, :flips_required)`,
	"convergence_results": `INSERT INTO convergence_results (run_index, sequence_length, heads) VALUES (:run_index, :sequence_length, :heads)`,
	"progressive_results": `INSERT INTO progressive_results (total_runs, run_index, streak_target, flips_required, theoretical, absolute_difference, percentage_difference)
		VALUES (:total_runs, :run_index, :streak_target, :flips_required, :theoretical, :absolute_difference, :percentage_difference)`,
}

// OpenSQLite opens (creating if needed) a results database and applies the
// schema.
func OpenSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

// WriteSQLite stores the records, aggregate tables and fits in one
// transaction.
func WriteSQLite(ctx context.Context, path string, d Dataset, report orchestration.Report) error {
	db, err := OpenSQLite(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := insertRecords(ctx, tx, d); err != nil {
		return err
	}
	for _, t := range report.Tables {
		for _, r := range t.Rows {
			_, err := tx.ExecContext(ctx, `INSERT INTO aggregate_rows
				(analysis, parameter_value, count, mean, std_dev, median, trimmed_mean, trimmed_median, empirical, empirical_untrimmed, theoretical_value, absolute_difference, percentage_difference)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				t.Analysis.Name, r.ParameterValue, r.Count, nullable(r.Mean), nullable(r.StdDev), nullable(r.Median),
				nullable(r.TrimmedMean), nullable(r.TrimmedMedian), nullable(r.Empirical), r.EmpiricalUntrimmed, nullable(r.TheoreticalValue),
				nullable(r.AbsoluteDifference), nullable(r.PercentageDifference))
			if err != nil {
				return fmt.Errorf("insert aggregate row: %w", err)
			}
		}
	}
	for _, fo := range report.Fits {
		row := fitRow(fo.Analysis, fo.Family, fo.Model, fo.Err)
		var ssr, r2 any
		if fo.Model != nil {
			ssr, r2 = nullable(fo.Model.SSR), nullable(fo.Model.RSquared)
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO fits
			(analysis, family, expression, params, std_errors, ssr, r_squared, degenerate, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			row[0], row[1], row[2], row[3], row[4], ssr, r2, fo.Model != nil && fo.Model.Degenerate, row[9])
		if err != nil {
			return fmt.Errorf("insert fit: %w", err)
		}
	}
	return tx.Commit()
}

func insertRecords(ctx context.Context, tx *sqlx.Tx, d Dataset) error {
	var (
		table string
		rows  []any
	)
	switch d.Mode {
	case config.ModeConvergence:
		table = "convergence_results"
		for _, r := range d.Convergence {
			rows = append(rows, r)
		}
	case config.ModeProgressive:
		table = "progressive_results"
		for _, r := range d.Progressive {
			rows = append(rows, r)
		}
	default:
		table = "streak_results"
		for _, r := range d.Streak {
			rows = append(rows, r)
		}
	}
	stmt, err := tx.PrepareNamedContext(ctx, insertQueries[table])
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return nil
}

// nullable stores non-finite statistics as NULL.
func nullable(v float64) any {
	if !finite(v) {
		return nil
	}
	return v
}
