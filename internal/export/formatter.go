// Package export shapes query and aggregate results for external
// serialization. It produces generic tables and key/value bundles;
// rendering those to concrete bytes is the sink's job, never done
// here.
package export

import (
	"errors"
	"fmt"
	"strconv"

	"tally/internal/core"
	"tally/internal/ledger"
	"tally/internal/query"
	"tally/internal/report"
)

// Dataset selects what to export.
type Dataset string

const (
	DatasetTransactions Dataset = "transactions"
	DatasetBudgets      Dataset = "budgets"
	DatasetReports      Dataset = "reports"
	DatasetEverything   Dataset = "everything"
)

// Format names a downstream serialization target. The formatter only
// checks membership of the known set; byte production lives in sinks.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrUnknownDataset    = errors.New("unknown export dataset")
)

// Scope optionally narrows an export to a date range (inclusive).
type Scope struct {
	Range *query.DateRange
}

// Table is the tabular shape: an ordered header list plus rows of
// stringified cells. Nested values are flattened to portable text.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Result is either a table or, for the composite bundle, a key/value
// document.
type Result struct {
	Dataset Dataset
	Format  Format
	Table   *Table
	Bundle  map[string]any
}

// Formatter resolves datasets against the ledger store.
type Formatter struct {
	store *ledger.Store
	agg   *report.Aggregator
}

func NewFormatter(store *ledger.Store) *Formatter {
	return &Formatter{store: store, agg: report.NewAggregator(store)}
}

// Build resolves the dataset under the scope and shapes it for the
// given format. Unknown formats fail with ErrUnsupportedFormat even
// when the dataset itself would resolve to no rows.
func (f *Formatter) Build(dataset Dataset, format Format, scope Scope) (*Result, error) {
	switch format {
	case FormatCSV, FormatJSON, FormatPDF:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	res := &Result{Dataset: dataset, Format: format}
	switch dataset {
	case DatasetTransactions:
		res.Table = f.transactionTable(scope)
	case DatasetBudgets:
		res.Table = f.budgetTable()
	case DatasetReports:
		res.Table = f.seriesTable()
	case DatasetEverything:
		res.Bundle = f.bundle()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, dataset)
	}
	return res, nil
}

func (f *Formatter) transactionTable(scope Scope) *Table {
	txs := query.Apply(f.store.Transactions(), query.Filter{Range: scope.Range})
	t := &Table{
		Headers: []string{"ID", "Date", "Kind", "Category", "Amount", "Note", "Recurrence", "Created At"},
		Rows:    make([][]string, 0, len(txs)),
	}
	for _, tx := range txs {
		t.Rows = append(t.Rows, []string{
			tx.ID,
			tx.Date.Format("2006-01-02"),
			string(tx.Kind),
			tx.Category,
			tx.Amount.String(),
			tx.Note,
			flattenRecurrence(tx.Recurrence),
			tx.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return t
}

func (f *Formatter) budgetTable() *Table {
	budgets := f.store.Budgets()
	t := &Table{
		Headers: []string{"Category", "Monthly Limit"},
		Rows:    make([][]string, 0, len(budgets)),
	}
	for _, b := range budgets {
		t.Rows = append(t.Rows, []string{b.Category, b.Limit.String()})
	}
	return t
}

func (f *Formatter) seriesTable() *Table {
	series := f.agg.MonthlySeries()
	t := &Table{
		Headers: []string{"Period", "Income", "Expense", "Savings", "Transactions"},
		Rows:    make([][]string, 0, len(series)),
	}
	for _, p := range series {
		t.Rows = append(t.Rows, []string{
			p.Period.Label(),
			p.Income.String(),
			p.Expense.String(),
			p.Savings.String(),
			strconv.Itoa(p.Count),
		})
	}
	return t
}

func (f *Formatter) bundle() map[string]any {
	return map[string]any{
		"transactions": f.store.Transactions(),
		"budgets":      f.store.Budgets(),
		"settings":     f.store.Settings(),
	}
}

// flattenRecurrence encodes a recurrence descriptor as portable text,
// e.g. "monthly", "monthly until 2026-12-31" or "weekly x12".
func flattenRecurrence(r *core.Recurrence) string {
	if r == nil {
		return ""
	}
	out := string(r.Every)
	if !r.EndDate.IsZero() {
		out += " until " + r.EndDate.Format("2006-01-02")
	}
	if r.Count > 0 {
		out += " x" + strconv.Itoa(r.Count)
	}
	return out
}
