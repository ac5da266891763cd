// Package query builds filtered, sorted views over transaction
// snapshots. Filtering never mutates the source slice.
package query

import (
	"sort"

	"tally/internal/core"
)

// DateRange bounds a filter inclusively on both ends.
type DateRange struct {
	Start core.Date
	End   core.Date
}

// Filter is a conjunctive filter: every supplied
// predicate must hold. Zero values mean "no filter" (the empty
// Category string is the no-filter sentinel).
type Filter struct {
	Year     int       // 0 = any year
	Month    int       // 1-12; 0 = any month
	Kind     core.Kind // "" = any kind
	Category string    // "" = any category
	Range    *DateRange
}

func (f Filter) matches(tx core.Transaction) bool {
	if f.Year != 0 && tx.Date.Year() != f.Year {
		return false
	}
	if f.Month != 0 && tx.Date.Month() != f.Month {
		return false
	}
	if f.Kind != "" && tx.Kind != f.Kind {
		return false
	}
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	if f.Range != nil {
		if tx.Date.Before(f.Range.Start.Time) || tx.Date.After(f.Range.End.Time) {
			return false
		}
	}
	return true
}

// Apply returns the transactions matching the filter, sorted by date
// descending. The sort is stable so equal-date results keep their
// input order and output stays deterministic.
func Apply(transactions []core.Transaction, f Filter) []core.Transaction {
	out := make([]core.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if f.matches(tx) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

// ForPeriod is a convenience filter for a single calendar month.
func ForPeriod(p core.PeriodKey) Filter {
	return Filter{Year: p.Year, Month: p.Month}
}
