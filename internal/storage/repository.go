// Package storage archives normalized imports in SQLite so the dashboard
// can serve the last known-good dataset without re-reading the exports.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"hoadash/internal/core"

	_ "modernc.org/sqlite"
)

// ImportRun records one import of the account exports.
type ImportRun struct {
	ID               string
	ImportedAt       time.Time
	CheckingSource   string
	SavingsSource    string
	TransactionCount int
	SnapshotCount    int
	MissingAmounts   int
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveImportRun archives one normalized import atomically: the run record,
// its transactions in normalized order, and its savings snapshots.
// Missing Amount/Balance values are stored as NULL, never as zero.
func (r *SQLiteRepository) SaveImportRun(ctx context.Context, run ImportRun, txns []core.Transaction, snaps []core.SavingsSnapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO import_runs (id, checking_source, savings_source, transaction_count, snapshot_count, missing_amounts)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.CheckingSource, run.SavingsSource, len(txns), len(snaps), run.MissingAmounts)
	if err != nil {
		return fmt.Errorf("insert import run: %w", err)
	}

	insertTxn, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions (run_id, seq, post_date, description, amount_cents, balance_cents, vendor, auto_vendor, category, auto_category)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare transaction insert: %w", err)
	}
	defer insertTxn.Close()

	for i, t := range txns {
		_, err = insertTxn.ExecContext(ctx,
			run.ID, i, t.PostDate.String(), t.Description,
			nullCents(t.Amount, t.AmountKnown), nullCents(t.Balance, t.BalanceKnown),
			t.Vendor, t.AutoVendor, t.Category, t.AutoCategory)
		if err != nil {
			return fmt.Errorf("insert transaction %d: %w", i, err)
		}
	}

	insertSnap, err := tx.PrepareContext(ctx,
		`INSERT INTO savings_snapshots (run_id, post_date, balance_cents) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer insertSnap.Close()

	for i, s := range snaps {
		if _, err = insertSnap.ExecContext(ctx, run.ID, s.PostDate.String(), s.Balance.Cents); err != nil {
			return fmt.Errorf("insert snapshot %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import run: %w", err)
	}

	slog.InfoContext(ctx, "Import run archived",
		"run_id", run.ID,
		"transactions", len(txns),
		"snapshots", len(snaps),
		"missing_amounts", run.MissingAmounts)
	return nil
}

// LatestRun returns the most recently archived import run.
func (r *SQLiteRepository) LatestRun(ctx context.Context) (ImportRun, error) {
	var run ImportRun
	err := r.db.QueryRowContext(ctx,
		`SELECT id, imported_at, checking_source, savings_source, transaction_count, snapshot_count, missing_amounts
		 FROM import_runs ORDER BY imported_at DESC, id DESC LIMIT 1`).
		Scan(&run.ID, &run.ImportedAt, &run.CheckingSource, &run.SavingsSource,
			&run.TransactionCount, &run.SnapshotCount, &run.MissingAmounts)
	if err == sql.ErrNoRows {
		return ImportRun{}, fmt.Errorf("%w: no archived import runs", core.ErrSourceNotFound)
	}
	if err != nil {
		return ImportRun{}, fmt.Errorf("query latest run: %w", err)
	}
	return run, nil
}

// GetRun returns one import run by ID.
func (r *SQLiteRepository) GetRun(ctx context.Context, runID string) (ImportRun, error) {
	var run ImportRun
	err := r.db.QueryRowContext(ctx,
		`SELECT id, imported_at, checking_source, savings_source, transaction_count, snapshot_count, missing_amounts
		 FROM import_runs WHERE id = ?`, runID).
		Scan(&run.ID, &run.ImportedAt, &run.CheckingSource, &run.SavingsSource,
			&run.TransactionCount, &run.SnapshotCount, &run.MissingAmounts)
	if err == sql.ErrNoRows {
		return ImportRun{}, fmt.Errorf("import run %s not found", runID)
	}
	if err != nil {
		return ImportRun{}, fmt.Errorf("query run %s: %w", runID, err)
	}
	return run, nil
}

// TransactionsByRun returns a run's transactions in their normalized order.
func (r *SQLiteRepository) TransactionsByRun(ctx context.Context, runID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT post_date, description, amount_cents, balance_cents, vendor, auto_vendor, category, auto_category
		 FROM transactions WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query transactions for run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t       core.Transaction
			date    string
			amount  sql.NullInt64
			balance sql.NullInt64
		)
		if err := rows.Scan(&date, &t.Description, &amount, &balance,
			&t.Vendor, &t.AutoVendor, &t.Category, &t.AutoCategory); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.PostDate, err = core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("archived post date %q: %w", date, err)
		}
		if amount.Valid {
			t.Amount = core.Money{Cents: amount.Int64}
			t.AmountKnown = true
		}
		if balance.Valid {
			t.Balance = core.Money{Cents: balance.Int64}
			t.BalanceKnown = true
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SnapshotsByRun returns a run's savings snapshots.
func (r *SQLiteRepository) SnapshotsByRun(ctx context.Context, runID string) ([]core.SavingsSnapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT post_date, balance_cents FROM savings_snapshots WHERE run_id = ? ORDER BY post_date`, runID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots for run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []core.SavingsSnapshot
	for rows.Next() {
		var (
			s    core.SavingsSnapshot
			date string
		)
		if err := rows.Scan(&date, &s.Balance.Cents); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.PostDate, err = core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("archived snapshot date %q: %w", date, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func nullCents(m core.Money, known bool) any {
	if !known {
		return nil
	}
	return m.Cents
}
