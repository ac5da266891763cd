// Package storage implements the ledger's persistence collaborators:
// keyed whole-collection snapshots over SQLite, Postgres or process
// memory.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tally/internal/core"
	"tally/internal/ledger"

	_ "modernc.org/sqlite"
)

// SQLitePersister stores snapshots in a local SQLite database.
type SQLitePersister struct {
	db *sql.DB
}

func NewSQLitePersister(dbPath string) (*SQLitePersister, error) {
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

	return &SQLitePersister{db: db}, nil
}

func (p *SQLitePersister) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// Load reads the whole snapshot. An empty database yields empty
// collections, not an error.
func (p *SQLitePersister) Load(ctx context.Context) (ledger.Snapshot, error) {
	var snap ledger.Snapshot

	rows, err := p.db.QueryContext(ctx, `
		SELECT id, kind, tx_date, amount_cents, category, note,
		       recur_every, recur_end, recur_count, created_at
		FROM transactions ORDER BY id`)
	if err != nil {
		return snap, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			tx                          core.Transaction
			txDate, createdAt           string
			recurEvery, recurEnd        sql.NullString
			recurCount                  sql.NullInt64
		)
		if err := rows.Scan(&tx.ID, &tx.Kind, &txDate, &tx.Amount.Cents, &tx.Category,
			&tx.Note, &recurEvery, &recurEnd, &recurCount, &createdAt); err != nil {
			return snap, fmt.Errorf("scan transaction: %w", err)
		}
		if tx.Date, err = parseDate(txDate); err != nil {
			return snap, fmt.Errorf("parse transaction date: %w", err)
		}
		if tx.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return snap, fmt.Errorf("parse created_at: %w", err)
		}
		if recurEvery.Valid && recurEvery.String != "" {
			r := &core.Recurrence{Every: core.Frequency(recurEvery.String)}
			if recurEnd.Valid && recurEnd.String != "" {
				if r.EndDate, err = parseDate(recurEnd.String); err != nil {
					return snap, fmt.Errorf("parse recurrence end: %w", err)
				}
			}
			if recurCount.Valid {
				r.Count = int(recurCount.Int64)
			}
			tx.Recurrence = r
		}
		snap.Transactions = append(snap.Transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterate transactions: %w", err)
	}

	brows, err := p.db.QueryContext(ctx, `SELECT category, limit_cents FROM budgets ORDER BY rowid`)
	if err != nil {
		return snap, fmt.Errorf("query budgets: %w", err)
	}
	defer brows.Close()
	for brows.Next() {
		var b core.Budget
		if err := brows.Scan(&b.Category, &b.Limit.Cents); err != nil {
			return snap, fmt.Errorf("scan budget: %w", err)
		}
		snap.Budgets = append(snap.Budgets, b)
	}
	if err := brows.Err(); err != nil {
		return snap, fmt.Errorf("iterate budgets: %w", err)
	}

	srows, err := p.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return snap, fmt.Errorf("query settings: %w", err)
	}
	defer srows.Close()
	for srows.Next() {
		var k, v string
		if err := srows.Scan(&k, &v); err != nil {
			return snap, fmt.Errorf("scan setting: %w", err)
		}
		if snap.Settings == nil {
			snap.Settings = make(map[string]string)
		}
		snap.Settings[k] = v
	}
	if err := srows.Err(); err != nil {
		return snap, fmt.Errorf("iterate settings: %w", err)
	}

	return snap, nil
}

// Save replaces the stored snapshot atomically.
func (p *SQLitePersister) Save(ctx context.Context, snap ledger.Snapshot) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"transactions", "budgets", "settings"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, t := range snap.Transactions {
		var recurEvery, recurEnd string
		var recurCount int64
		if t.Recurrence != nil {
			recurEvery = string(t.Recurrence.Every)
			if !t.Recurrence.EndDate.IsZero() {
				recurEnd = t.Recurrence.EndDate.Format("2006-01-02")
			}
			recurCount = int64(t.Recurrence.Count)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO transactions
				(id, kind, tx_date, amount_cents, category, note,
				 recur_every, recur_end, recur_count, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, string(t.Kind), t.Date.Format("2006-01-02"), t.Amount.Cents,
			t.Category, t.Note, recurEvery, recurEnd, recurCount,
			t.CreatedAt.Format(time.RFC3339)); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	for _, b := range snap.Budgets {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (category, limit_cents) VALUES (?, ?)`,
			b.Category, b.Limit.Cents); err != nil {
			return fmt.Errorf("insert budget %s: %w", b.Category, err)
		}
	}

	for k, v := range snap.Settings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("insert setting %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.DebugContext(ctx, "Snapshot saved to SQLite",
		"transactions", len(snap.Transactions),
		"budgets", len(snap.Budgets))
	return nil
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return core.Date{}, err
	}
	return core.Date{Time: t}, nil
}
