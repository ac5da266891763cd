package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tally/internal/core"
	"tally/internal/ledger"
)

// PostgresPersister stores snapshots in Postgres for deployments where
// the ledger outlives a single host.
type PostgresPersister struct {
	pool *pgxpool.Pool
}

func NewPostgresPersister(ctx context.Context, dsn string) (*PostgresPersister, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	p := &PostgresPersister{pool: pool}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *PostgresPersister) Close() {
	p.pool.Close()
}

func (p *PostgresPersister) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS transactions (
			id           TEXT PRIMARY KEY,
			kind         TEXT NOT NULL,
			tx_date      DATE NOT NULL,
			amount_cents BIGINT NOT NULL,
			category     TEXT NOT NULL,
			note         TEXT NOT NULL DEFAULT '',
			recur_every  TEXT NOT NULL DEFAULT '',
			recur_end    DATE,
			recur_count  INTEGER NOT NULL DEFAULT 0,
			created_at   TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions (tx_date)`,
		`CREATE TABLE IF NOT EXISTS budgets (
			category    TEXT PRIMARY KEY,
			limit_cents BIGINT NOT NULL,
			position    SERIAL
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (p *PostgresPersister) Load(ctx context.Context) (ledger.Snapshot, error) {
	var snap ledger.Snapshot

	rows, err := p.pool.Query(ctx, `
		SELECT id, kind, tx_date, amount_cents, category, note,
		       recur_every, recur_end, recur_count, created_at
		FROM transactions ORDER BY id`)
	if err != nil {
		return snap, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			tx         core.Transaction
			txDate     time.Time
			recurEvery string
			recurEnd   *time.Time
			recurCount int
		)
		if err := rows.Scan(&tx.ID, &tx.Kind, &txDate, &tx.Amount.Cents, &tx.Category,
			&tx.Note, &recurEvery, &recurEnd, &recurCount, &tx.CreatedAt); err != nil {
			return snap, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Date = core.NewDate(txDate.Year(), int(txDate.Month()), txDate.Day())
		if recurEvery != "" {
			r := &core.Recurrence{Every: core.Frequency(recurEvery), Count: recurCount}
			if recurEnd != nil {
				r.EndDate = core.NewDate(recurEnd.Year(), int(recurEnd.Month()), recurEnd.Day())
			}
			tx.Recurrence = r
		}
		snap.Transactions = append(snap.Transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterate transactions: %w", err)
	}

	brows, err := p.pool.Query(ctx, `SELECT category, limit_cents FROM budgets ORDER BY position`)
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

	srows, err := p.pool.Query(ctx, `SELECT key, value FROM settings`)
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

func (p *PostgresPersister) Save(ctx context.Context, snap ledger.Snapshot) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"transactions", "budgets", "settings"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := insertTransactions(ctx, tx, snap.Transactions); err != nil {
		return err
	}
	for _, b := range snap.Budgets {
		if _, err := tx.Exec(ctx,
			`INSERT INTO budgets (category, limit_cents) VALUES ($1, $2)`,
			b.Category, b.Limit.Cents); err != nil {
			return fmt.Errorf("insert budget %s: %w", b.Category, err)
		}
	}
	for k, v := range snap.Settings {
		if _, err := tx.Exec(ctx,
			`INSERT INTO settings (key, value) VALUES ($1, $2)`, k, v); err != nil {
			return fmt.Errorf("insert setting %s: %w", k, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func insertTransactions(ctx context.Context, tx pgx.Tx, txs []core.Transaction) error {
	for _, t := range txs {
		var recurEvery string
		var recurEnd any
		var recurCount int
		if t.Recurrence != nil {
			recurEvery = string(t.Recurrence.Every)
			if !t.Recurrence.EndDate.IsZero() {
				recurEnd = t.Recurrence.EndDate.Time
			}
			recurCount = t.Recurrence.Count
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO transactions
				(id, kind, tx_date, amount_cents, category, note,
				 recur_every, recur_end, recur_count, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			t.ID, string(t.Kind), t.Date.Time, t.Amount.Cents, t.Category,
			t.Note, recurEvery, recurEnd, recurCount, t.CreatedAt); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}
	return nil
}
