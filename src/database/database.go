package database

import (
	"database/sql"
	"fmt"
	stdlog "log"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/username/dividendtax/backend/src/logger"
	"github.com/username/dividendtax/backend/src/models"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS report_runs (
		id TEXT PRIMARY KEY,
		input_file TEXT NOT NULL,
		statement_currency TEXT NOT NULL,
		home_currency TEXT NOT NULL,
		total_tax_due REAL NOT NULL,
		total_net_home REAL NOT NULL,
		generated_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS dividend_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		date TEXT NOT NULL,
		instrument TEXT NOT NULL,
		shares INTEGER,
		per_share_amount REAL,
		net_dividend REAL,
		currency TEXT,
		withholding_pct REAL,
		withholding_amount REAL,
		date_d_minus_1 TEXT,
		fx_rate_d_minus_1 REAL,
		tax_due REAL,
		tax_due_nil BOOLEAN NOT NULL DEFAULT FALSE,
		degraded BOOLEAN NOT NULL DEFAULT FALSE,
		FOREIGN KEY(run_id) REFERENCES report_runs(id),
		UNIQUE(run_id, date, instrument)
	);
	`

	if _, err = DB.Exec(createTableStatement); err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}

	if logger.L != nil {
		logger.L.Info("Database initialized", "databasePath", databasePath)
	}
}

// SaveReport persists one completed run and its events in a single
// transaction, returning the generated run id.
func SaveReport(inputFile string, report *models.DividendReport, events []models.DividendEvent) (string, error) {
	runID := uuid.NewString()

	dbTx, err := DB.Begin()
	if err != nil {
		return "", fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	_, err = dbTx.Exec(
		`INSERT INTO report_runs (id, input_file, statement_currency, home_currency, total_tax_due, total_net_home, generated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, inputFile, report.StatementCurrency, report.HomeCurrency,
		report.TotalTaxDue, report.TotalNetHome, report.GeneratedAt.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("error inserting report run: %w", err)
	}

	stmt, err := dbTx.Prepare(`INSERT INTO dividend_events (run_id, date, instrument, shares, per_share_amount, net_dividend, currency, withholding_pct, withholding_amount, date_d_minus_1, fx_rate_d_minus_1, tax_due, tax_due_nil, degraded) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for _, event := range events {
		_, err := stmt.Exec(
			runID,
			event.Date.Format("2006-01-02"),
			event.Instrument,
			event.Shares,
			event.PerShareAmount,
			event.NetDividend,
			event.Currency,
			event.WithholdingPct,
			event.WithholdingAmount,
			event.DateDMinus1.Format("2006-01-02"),
			event.FxRateDMinus1,
			event.TaxDue,
			event.TaxDueNil,
			event.Degraded,
		)
		if err != nil {
			return "", fmt.Errorf("error inserting dividend event (%s %s): %w",
				event.Date.Format("2006-01-02"), event.Instrument, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return "", fmt.Errorf("error committing report run: %w", err)
	}

	logger.L.Info("Saved dividend report", "runID", runID, "events", len(events))
	return runID, nil
}

// ReportRun is one persisted run summary.
type ReportRun struct {
	ID                string
	InputFile         string
	StatementCurrency string
	HomeCurrency      string
	TotalTaxDue       float64
	TotalNetHome      float64
	GeneratedAt       string
	EventCount        int
}

// ListRuns returns persisted run summaries, newest first.
func ListRuns(limit int) ([]ReportRun, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := DB.Query(`
		SELECT r.id, r.input_file, r.statement_currency, r.home_currency,
		       r.total_tax_due, r.total_net_home, r.generated_at,
		       (SELECT COUNT(*) FROM dividend_events e WHERE e.run_id = r.id)
		FROM report_runs r
		ORDER BY r.generated_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying report runs: %w", err)
	}
	defer rows.Close()

	var runs []ReportRun
	for rows.Next() {
		var run ReportRun
		if err := rows.Scan(&run.ID, &run.InputFile, &run.StatementCurrency, &run.HomeCurrency,
			&run.TotalTaxDue, &run.TotalNetHome, &run.GeneratedAt, &run.EventCount); err != nil {
			return nil, fmt.Errorf("error scanning report run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
