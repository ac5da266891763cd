package trend

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"tally/internal/config"
	"tally/internal/core"
	"tally/internal/ledger"
	"tally/internal/storage"
)

var analysisNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func seedStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(context.Background(), storage.NewMemoryPersister(),
		config.DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("ledger.Open() error = %v", err)
	}
	return store
}

func add(t *testing.T, store *ledger.Store, kind core.Kind, date core.Date, cents int64, category string) {
	t.Helper()
	_, err := store.AddTransaction(context.Background(), core.Transaction{
		Kind: kind, Date: date, Amount: core.Money{Cents: cents}, Category: category,
	})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
}

func TestParsePeriod(t *testing.T) {
	for _, ok := range []string{"current", "last-3", "last-6", "last-12", "all"} {
		if _, err := ParsePeriod(ok); err != nil {
			t.Errorf("ParsePeriod(%q) error = %v", ok, err)
		}
	}
	if _, err := ParsePeriod("fortnight"); !errors.Is(err, ErrUnknownPeriod) {
		t.Errorf("ParsePeriod(fortnight) error = %v, want ErrUnknownPeriod", err)
	}
}

func TestCategoryAnalysisPercentages(t *testing.T) {
	store := seedStore(t)
	add(t, store, core.Expense, core.NewDate(2026, 8, 3), 7500, "Groceries")
	add(t, store, core.Expense, core.NewDate(2026, 8, 9), 2500, "Transport")
	// Income must not bleed into an expense analysis.
	add(t, store, core.Income, core.NewDate(2026, 8, 1), 100000, "Salary")

	a := NewAnalyzer(store).CategoryAnalysis(core.Expense, PeriodCurrent, analysisNow)
	if a.GrandTotal.Cents != 10000 {
		t.Fatalf("grand total = %d, want 10000", a.GrandTotal.Cents)
	}
	if len(a.Categories) != 2 {
		t.Fatalf("got %d categories, want 2", len(a.Categories))
	}
	if a.Categories[0].Category != "Groceries" || a.Categories[0].Percent != 75 {
		t.Errorf("top share = %+v, want Groceries at 75%%", a.Categories[0])
	}

	var sum float64
	for _, c := range a.Categories {
		sum += c.Percent
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("percentages sum to %v, want 100", sum)
	}
}

func TestCategoryAnalysisZeroTotal(t *testing.T) {
	store := seedStore(t)
	a := NewAnalyzer(store).CategoryAnalysis(core.Expense, PeriodAll, analysisNow)
	if a.GrandTotal.Cents != 0 {
		t.Errorf("grand total = %d, want 0", a.GrandTotal.Cents)
	}
	for _, c := range a.Categories {
		if c.Percent != 0 {
			t.Errorf("share for %s = %v, want 0 when nothing was spent", c.Category, c.Percent)
		}
	}
}

func TestCategoryAnalysisWindows(t *testing.T) {
	store := seedStore(t)
	add(t, store, core.Expense, core.NewDate(2026, 8, 1), 1000, "Misc") // current
	add(t, store, core.Expense, core.NewDate(2026, 6, 1), 2000, "Misc") // within last-3
	add(t, store, core.Expense, core.NewDate(2026, 1, 1), 4000, "Misc") // within last-12
	add(t, store, core.Expense, core.NewDate(2024, 12, 1), 8000, "Misc")

	analyzer := NewAnalyzer(store)
	tests := []struct {
		period Period
		want   int64
	}{
		{PeriodCurrent, 1000},
		{PeriodLast3, 3000},
		{PeriodLast12, 7000},
		{PeriodAll, 15000},
	}
	for _, tt := range tests {
		a := analyzer.CategoryAnalysis(core.Expense, tt.period, analysisNow)
		if a.GrandTotal.Cents != tt.want {
			t.Errorf("%s grand total = %d, want %d", tt.period, a.GrandTotal.Cents, tt.want)
		}
	}
}

func TestCategoryTrendShape(t *testing.T) {
	store := seedStore(t)
	add(t, store, core.Expense, core.NewDate(2026, 8, 5), 4200, "Groceries")
	add(t, store, core.Expense, core.NewDate(2026, 8, 20), 1800, "Groceries")
	add(t, store, core.Expense, core.NewDate(2026, 2, 10), 9000, "Groceries")
	// Off-window and off-category rows must not appear.
	add(t, store, core.Expense, core.NewDate(2024, 8, 1), 5000, "Groceries")
	add(t, store, core.Expense, core.NewDate(2026, 8, 1), 7777, "Rent")

	points := NewAnalyzer(store).CategoryTrend("Groceries", core.Expense, analysisNow)
	if len(points) != TrendPoints {
		t.Fatalf("got %d points, want %d", len(points), TrendPoints)
	}

	first, last := points[0], points[len(points)-1]
	if first.Period != (core.PeriodKey{Year: 2025, Month: 9}) {
		t.Errorf("oldest point = %+v, want 2025-09", first.Period)
	}
	if last.Period != (core.PeriodKey{Year: 2026, Month: 8}) {
		t.Errorf("newest point = %+v, want 2026-08", last.Period)
	}
	if last.Total.Cents != 6000 {
		t.Errorf("current month total = %d, want 6000", last.Total.Cents)
	}

	var withData int
	for _, p := range points {
		if p.Total.Cents != 0 {
			withData++
		}
		if p.Label == "" {
			t.Errorf("point %+v has no label", p.Period)
		}
	}
	if withData != 2 {
		t.Errorf("%d months carry data, want 2 (rest zero-filled)", withData)
	}
}

func TestCategoryTrendEmptyStore(t *testing.T) {
	store := seedStore(t)
	points := NewAnalyzer(store).CategoryTrend("Groceries", core.Expense, analysisNow)
	if len(points) != TrendPoints {
		t.Fatalf("got %d points, want %d even with no data", len(points), TrendPoints)
	}
	for _, p := range points {
		if p.Total.Cents != 0 {
			t.Errorf("empty store must give zero totals, got %+v", p)
		}
	}
}
