package query

import (
	"testing"

	"tally/internal/core"
)

func tx(id string, kind core.Kind, y, m, d int, cents int64, category string) core.Transaction {
	return core.Transaction{
		ID:       id,
		Kind:     kind,
		Date:     core.NewDate(y, m, d),
		Amount:   core.Money{Cents: cents},
		Category: category,
	}
}

func sample() []core.Transaction {
	return []core.Transaction{
		tx("a", core.Expense, 2026, 8, 1, 1000, "Groceries"),
		tx("b", core.Income, 2026, 8, 5, 250000, "Salary"),
		tx("c", core.Expense, 2026, 7, 20, 4500, "Transport"),
		tx("d", core.Expense, 2026, 8, 5, 700, "Groceries"),
		tx("e", core.Expense, 2025, 8, 2, 900, "Groceries"),
	}
}

func ids(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func TestApplyMonthYear(t *testing.T) {
	got := Apply(sample(), Filter{Year: 2026, Month: 8})
	want := []string{"b", "d", "a"}
	if len(got) != len(want) {
		t.Fatalf("got %d results, want %d", len(got), len(want))
	}
	for i, id := range ids(got) {
		if id != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, id, want[i])
		}
	}
}

func TestApplyYearOnlyMatchesAnyMonth(t *testing.T) {
	got := Apply(sample(), Filter{Year: 2026})
	if len(got) != 4 {
		t.Fatalf("got %d results, want 4", len(got))
	}
}

func TestApplyConjunctive(t *testing.T) {
	got := Apply(sample(), Filter{Year: 2026, Month: 8, Kind: core.Expense, Category: "Groceries"})
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	for _, r := range got {
		if r.Category != "Groceries" || r.Kind != core.Expense || r.Date.Year() != 2026 || r.Date.Month() != 8 {
			t.Fatalf("result %s does not satisfy every predicate", r.ID)
		}
	}
}

func TestApplyDateRangeInclusive(t *testing.T) {
	got := Apply(sample(), Filter{Range: &DateRange{
		Start: core.NewDate(2026, 7, 20),
		End:   core.NewDate(2026, 8, 5),
	}})
	if len(got) != 4 {
		t.Fatalf("got %d results, want 4 (bounds are inclusive)", len(got))
	}
}

func TestApplyStableOnEqualDates(t *testing.T) {
	src := []core.Transaction{
		tx("first", core.Expense, 2026, 8, 5, 100, "A"),
		tx("second", core.Expense, 2026, 8, 5, 200, "B"),
	}
	got := Apply(src, Filter{})
	if got[0].ID != "first" || got[1].ID != "second" {
		t.Fatalf("equal dates must keep input order, got %v", ids(got))
	}
}

func TestApplyDoesNotMutateSource(t *testing.T) {
	src := sample()
	Apply(src, Filter{})
	if src[0].ID != "a" || src[4].ID != "e" {
		t.Fatal("source slice was reordered")
	}
}

func TestApplyEmpty(t *testing.T) {
	if got := Apply(nil, Filter{Year: 2026}); len(got) != 0 {
		t.Fatalf("got %d results from empty input", len(got))
	}
}
