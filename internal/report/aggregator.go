// Package report computes category sums, monthly summaries and
// budget-vs-spend comparisons over ledger snapshots. Everything here
// is read-only: no function mutates a transaction or budget.
package report

import (
	"sort"

	"tally/internal/core"
	"tally/internal/ledger"
	"tally/internal/query"
)

// RecentLimit is how many globally most-recent transactions a monthly
// summary carries.
const RecentLimit = 5

// CategoryTotal is one row of a per-category aggregation.
type CategoryTotal struct {
	Category string
	Total    core.Money
	Count    int
}

// Summary is the aggregate view of a single calendar month.
type Summary struct {
	Period  core.PeriodKey
	Income  core.Money
	Expense core.Money
	Balance core.Money
	// Recent holds the most recent transactions overall, not scoped to
	// the summarized month.
	Recent            []core.Transaction
	ExpenseByCategory []CategoryTotal
}

// BudgetStatus compares one budget against the period's actual spend.
// Remaining goes negative when the budget is blown.
type BudgetStatus struct {
	Category  string
	Limit     core.Money
	Spent     core.Money
	Remaining core.Money
}

// MonthPoint is one entry of the month-by-month series.
type MonthPoint struct {
	Period  core.PeriodKey
	Income  core.Money
	Expense core.Money
	Savings core.Money
	Count   int
}

// Aggregator reads snapshots from the ledger store.
type Aggregator struct {
	store *ledger.Store
}

func NewAggregator(store *ledger.Store) *Aggregator {
	return &Aggregator{store: store}
}

// CategoryTotals groups transactions by category and sums amounts.
// Results are sorted by total descending; the sort is stable, so ties
// keep first-encounter order and output is reproducible.
func CategoryTotals(transactions []core.Transaction) []CategoryTotal {
	index := make(map[string]int, len(transactions))
	out := make([]CategoryTotal, 0, len(transactions))
	for _, tx := range transactions {
		i, ok := index[tx.Category]
		if !ok {
			i = len(out)
			index[tx.Category] = i
			out = append(out, CategoryTotal{Category: tx.Category})
		}
		out[i].Total.Cents += tx.Amount.Cents
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.Cents > out[j].Total.Cents
	})
	return out
}

// MonthlySummary aggregates income, expense and balance for one month,
// the global recency list, and that month's expense category totals.
func (a *Aggregator) MonthlySummary(year, month int) Summary {
	all := a.store.Transactions()
	period := core.PeriodOf(year, month)

	monthly := query.Apply(all, query.ForPeriod(period))
	s := Summary{Period: period}
	var monthExpenses []core.Transaction
	for _, tx := range monthly {
		switch tx.Kind {
		case core.Income:
			s.Income.Cents += tx.Amount.Cents
		case core.Expense:
			s.Expense.Cents += tx.Amount.Cents
			monthExpenses = append(monthExpenses, tx)
		}
	}
	s.Balance = core.Money{Cents: s.Income.Cents - s.Expense.Cents}

	recent := query.Apply(all, query.Filter{})
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	s.Recent = recent
	s.ExpenseByCategory = CategoryTotals(monthExpenses)
	return s
}

// BudgetSummary evaluates every configured budget against the period's
// expense spend. Budgets with no matching transactions appear with
// spend 0, not as absent rows.
func (a *Aggregator) BudgetSummary(year, month int) []BudgetStatus {
	budgets := a.store.Budgets()
	if len(budgets) == 0 {
		return nil
	}

	spent := make(map[string]int64, len(budgets))
	period := core.PeriodOf(year, month)
	for _, tx := range a.store.Transactions() {
		if tx.Kind == core.Expense && period.Contains(tx.Date) {
			spent[tx.Category] += tx.Amount.Cents
		}
	}

	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		sp := spent[b.Category]
		out = append(out, BudgetStatus{
			Category:  b.Category,
			Limit:     b.Limit,
			Spent:     core.Money{Cents: sp},
			Remaining: core.Money{Cents: b.Limit.Cents - sp},
		})
	}
	return out
}

// MonthlySeries produces one point per distinct period present in the
// transaction set, newest period first. Periods come from the data,
// not from a fixed calendar window.
func (a *Aggregator) MonthlySeries() []MonthPoint {
	index := make(map[core.PeriodKey]int)
	out := make([]MonthPoint, 0)
	for _, tx := range a.store.Transactions() {
		p := tx.Date.Period()
		i, ok := index[p]
		if !ok {
			i = len(out)
			index[p] = i
			out = append(out, MonthPoint{Period: p})
		}
		switch tx.Kind {
		case core.Income:
			out[i].Income.Cents += tx.Amount.Cents
		case core.Expense:
			out[i].Expense.Cents += tx.Amount.Cents
		}
		out[i].Count++
	}
	for i := range out {
		out[i].Savings = core.Money{Cents: out[i].Income.Cents - out[i].Expense.Cents}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].Period.Before(out[i].Period)
	})
	return out
}
