package report

import (
	"context"
	"testing"

	"tally/internal/config"
	"tally/internal/core"
	"tally/internal/ledger"
	"tally/internal/storage"
)

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

func TestCategoryTotals(t *testing.T) {
	txs := []core.Transaction{
		{Category: "Groceries", Amount: core.Money{Cents: 3000}},
		{Category: "Rent", Amount: core.Money{Cents: 120000}},
		{Category: "Groceries", Amount: core.Money{Cents: 1500}},
	}

	totals := CategoryTotals(txs)
	if len(totals) != 2 {
		t.Fatalf("got %d categories, want 2", len(totals))
	}
	if totals[0].Category != "Rent" || totals[0].Total.Cents != 120000 {
		t.Errorf("largest first: got %+v", totals[0])
	}
	if totals[1].Category != "Groceries" || totals[1].Total.Cents != 4500 || totals[1].Count != 2 {
		t.Errorf("groceries rollup = %+v", totals[1])
	}

	// Sum of category totals equals the sum of inputs.
	var want, got int64
	for _, tx := range txs {
		want += tx.Amount.Cents
	}
	for _, ct := range totals {
		got += ct.Total.Cents
	}
	if got != want {
		t.Errorf("category totals sum to %d, inputs sum to %d", got, want)
	}
}

func TestCategoryTotalsTieKeepsFirstEncounterOrder(t *testing.T) {
	txs := []core.Transaction{
		{Category: "B", Amount: core.Money{Cents: 100}},
		{Category: "A", Amount: core.Money{Cents: 100}},
	}
	totals := CategoryTotals(txs)
	if totals[0].Category != "B" || totals[1].Category != "A" {
		t.Errorf("tied totals must keep encounter order, got %v then %v",
			totals[0].Category, totals[1].Category)
	}
}

func TestMonthlySummary(t *testing.T) {
	store := seedStore(t)
	agg := NewAggregator(store)

	add(t, store, core.Income, core.NewDate(2026, 8, 1), 250000, "Salary")
	add(t, store, core.Expense, core.NewDate(2026, 8, 5), 120000, "Rent")
	add(t, store, core.Expense, core.NewDate(2026, 8, 12), 4250, "Groceries")
	// Another month, must not leak into the August numbers.
	add(t, store, core.Expense, core.NewDate(2026, 7, 20), 9999, "Groceries")

	s := agg.MonthlySummary(2026, 8)
	if s.Income.Cents != 250000 {
		t.Errorf("income = %d, want 250000", s.Income.Cents)
	}
	if s.Expense.Cents != 124250 {
		t.Errorf("expense = %d, want 124250", s.Expense.Cents)
	}
	if s.Balance.Cents != 125750 {
		t.Errorf("balance = %d, want 125750", s.Balance.Cents)
	}
	if len(s.ExpenseByCategory) != 2 {
		t.Fatalf("expense categories = %d, want 2", len(s.ExpenseByCategory))
	}
	if s.ExpenseByCategory[0].Category != "Rent" {
		t.Errorf("largest expense category first, got %s", s.ExpenseByCategory[0].Category)
	}
	// Recent is global, so the July transaction counts too.
	if len(s.Recent) != 4 {
		t.Errorf("recent = %d transactions, want all 4", len(s.Recent))
	}
}

func TestMonthlySummaryEmptyMonth(t *testing.T) {
	store := seedStore(t)
	s := NewAggregator(store).MonthlySummary(2026, 8)
	if s.Income.Cents != 0 || s.Expense.Cents != 0 || s.Balance.Cents != 0 {
		t.Errorf("empty month should be all zeros, got %+v", s)
	}
	if len(s.ExpenseByCategory) != 0 {
		t.Errorf("empty month should have no category rows")
	}
}

func TestRecentIsCappedAndNewestFirst(t *testing.T) {
	store := seedStore(t)
	for day := 1; day <= 8; day++ {
		add(t, store, core.Expense, core.NewDate(2026, 8, day), 100, "Misc")
	}

	s := NewAggregator(store).MonthlySummary(2026, 8)
	if len(s.Recent) != RecentLimit {
		t.Fatalf("recent = %d, want %d", len(s.Recent), RecentLimit)
	}
	for i := 1; i < len(s.Recent); i++ {
		if s.Recent[i].Date.After(s.Recent[i-1].Date.Time) {
			t.Errorf("recent not sorted newest first at %d", i)
		}
	}
	if s.Recent[0].Date.Day() != 8 {
		t.Errorf("newest transaction day = %d, want 8", s.Recent[0].Date.Day())
	}
}

func TestBudgetSummary(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()
	agg := NewAggregator(store)

	store.SetBudget(ctx, core.Budget{Category: "Groceries", Limit: core.Money{Cents: 40000}})
	store.SetBudget(ctx, core.Budget{Category: "Fun", Limit: core.Money{Cents: 10000}})

	add(t, store, core.Expense, core.NewDate(2026, 8, 3), 25000, "Groceries")
	add(t, store, core.Expense, core.NewDate(2026, 8, 9), 20000, "Groceries")
	// Income in a budgeted category never counts as spend.
	add(t, store, core.Income, core.NewDate(2026, 8, 9), 5000, "Fun")

	statuses := agg.BudgetSummary(2026, 8)
	if len(statuses) != 2 {
		t.Fatalf("got %d statuses, want 2", len(statuses))
	}

	groceries := statuses[0]
	if groceries.Spent.Cents != 45000 {
		t.Errorf("groceries spent = %d, want 45000", groceries.Spent.Cents)
	}
	if groceries.Remaining.Cents != -5000 {
		t.Errorf("blown budget remaining = %d, want -5000", groceries.Remaining.Cents)
	}

	fun := statuses[1]
	if fun.Spent.Cents != 0 {
		t.Errorf("fun spent = %d, want 0 (no expense rows)", fun.Spent.Cents)
	}
	if fun.Remaining.Cents != 10000 {
		t.Errorf("fun remaining = %d, want full limit", fun.Remaining.Cents)
	}
}

func TestBudgetSummaryNoBudgets(t *testing.T) {
	store := seedStore(t)
	if got := NewAggregator(store).BudgetSummary(2026, 8); got != nil {
		t.Errorf("no budgets should give nil, got %v", got)
	}
}

func TestMonthlySeries(t *testing.T) {
	store := seedStore(t)
	agg := NewAggregator(store)

	add(t, store, core.Income, core.NewDate(2026, 7, 1), 200000, "Salary")
	add(t, store, core.Expense, core.NewDate(2026, 7, 10), 50000, "Rent")
	add(t, store, core.Income, core.NewDate(2026, 8, 1), 210000, "Salary")
	add(t, store, core.Expense, core.NewDate(2026, 8, 10), 60000, "Rent")
	add(t, store, core.Expense, core.NewDate(2026, 8, 11), 10000, "Groceries")

	series := agg.MonthlySeries()
	if len(series) != 2 {
		t.Fatalf("got %d points, want 2", len(series))
	}

	august := series[0]
	if august.Period != (core.PeriodKey{Year: 2026, Month: 8}) {
		t.Fatalf("newest period first, got %+v", august.Period)
	}
	if august.Savings.Cents != 140000 {
		t.Errorf("august savings = %d, want 140000", august.Savings.Cents)
	}
	if august.Count != 3 {
		t.Errorf("august count = %d, want 3", august.Count)
	}

	july := series[1]
	if july.Savings.Cents != 150000 {
		t.Errorf("july savings = %d, want 150000", july.Savings.Cents)
	}
}

func TestMonthlySeriesSkipsEmptyMonths(t *testing.T) {
	store := seedStore(t)
	add(t, store, core.Expense, core.NewDate(2026, 3, 1), 100, "Misc")
	add(t, store, core.Expense, core.NewDate(2026, 8, 1), 100, "Misc")

	series := NewAggregator(store).MonthlySeries()
	if len(series) != 2 {
		t.Errorf("series has %d points, want 2 (no zero-filled months)", len(series))
	}
}
