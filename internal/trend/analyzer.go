// Package trend computes rolling multi-month series and period-scoped
// category breakdowns. The reference clock is always an explicit
// parameter so results are pure functions of snapshot plus time.
package trend

import (
	"errors"
	"time"

	"tally/internal/core"
	"tally/internal/ledger"
	"tally/internal/query"
	"tally/internal/report"
)

// Period selects the analysis window.
type Period string

const (
	PeriodCurrent Period = "current"
	PeriodLast3   Period = "last-3"
	PeriodLast6   Period = "last-6"
	PeriodLast12  Period = "last-12"
	PeriodAll     Period = "all"
)

// TrendPoints is the fixed length of a category trend series.
const TrendPoints = 12

var ErrUnknownPeriod = errors.New("unknown analysis period")

// ParsePeriod validates a period selector.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodCurrent, PeriodLast3, PeriodLast6, PeriodLast12, PeriodAll:
		return Period(s), nil
	}
	return "", ErrUnknownPeriod
}

// months returns the window size; 0 means unbounded.
func (p Period) months() int {
	switch p {
	case PeriodCurrent:
		return 1
	case PeriodLast3:
		return 3
	case PeriodLast6:
		return 6
	case PeriodLast12:
		return 12
	}
	return 0
}

// CategoryShare is one category's total and share of the grand total.
type CategoryShare struct {
	Category string
	Total    core.Money
	Percent  float64
}

// Analysis is a period-scoped category breakdown.
type Analysis struct {
	Kind       core.Kind
	Period     Period
	GrandTotal core.Money
	Categories []CategoryShare
}

// TrendPoint is one month of a category trend.
type TrendPoint struct {
	Period core.PeriodKey
	Label  string
	Total  core.Money
}

// Analyzer reads snapshots from the ledger store.
type Analyzer struct {
	store *ledger.Store
}

func NewAnalyzer(store *ledger.Store) *Analyzer {
	return &Analyzer{store: store}
}

// CategoryAnalysis breaks a kind's transactions down by category over
// the selected window ending at now's month. Percentages are 0 when
// the grand total is 0; they never come out NaN.
func (a *Analyzer) CategoryAnalysis(kind core.Kind, period Period, now time.Time) Analysis {
	all := a.store.Transactions()

	var scoped []core.Transaction
	if n := period.months(); n > 0 {
		current := core.PeriodOf(now.Year(), int(now.Month()))
		for i := 0; i < n; i++ {
			p := current.AddMonths(-i)
			scoped = append(scoped, query.Apply(all, query.Filter{
				Year: p.Year, Month: p.Month, Kind: kind,
			})...)
		}
	} else {
		scoped = query.Apply(all, query.Filter{Kind: kind})
	}

	totals := report.CategoryTotals(scoped)
	out := Analysis{Kind: kind, Period: period}
	for _, ct := range totals {
		out.GrandTotal.Cents += ct.Total.Cents
	}
	out.Categories = make([]CategoryShare, len(totals))
	for i, ct := range totals {
		share := CategoryShare{Category: ct.Category, Total: ct.Total}
		if out.GrandTotal.Cents > 0 {
			share.Percent = float64(ct.Total.Cents) / float64(out.GrandTotal.Cents) * 100
		}
		out.Categories[i] = share
	}
	return out
}

// CategoryTrend returns exactly TrendPoints monthly sums for one
// category and kind, oldest month first, ending at now's month. Months
// with no matching transactions are zero-filled, never omitted.
func (a *Analyzer) CategoryTrend(category string, kind core.Kind, now time.Time) []TrendPoint {
	sums := make(map[core.PeriodKey]int64)
	for _, tx := range a.store.Transactions() {
		if tx.Kind == kind && tx.Category == category {
			sums[tx.Date.Period()] += tx.Amount.Cents
		}
	}

	current := core.PeriodOf(now.Year(), int(now.Month()))
	out := make([]TrendPoint, 0, TrendPoints)
	for i := TrendPoints - 1; i >= 0; i-- {
		p := current.AddMonths(-i)
		out = append(out, TrendPoint{
			Period: p,
			Label:  p.Label(),
			Total:  core.Money{Cents: sums[p]},
		})
	}
	return out
}
