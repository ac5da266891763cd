package core

import (
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Kind:     Expense,
		Date:     NewDate(2026, 8, 15),
		Amount:   Money{Cents: 1250},
		Category: "Groceries",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Kind: "transfer", Date: NewDate(2026, 8, 15), Amount: Money{Cents: 1}, Category: "c"},
		{Kind: Expense, Date: Date{Time: time.Time{}}, Amount: Money{Cents: 1}, Category: "c"},
		{Kind: Expense, Date: NewDate(2026, 8, 15), Amount: Money{Cents: 0}, Category: "c"},
		{Kind: Expense, Date: NewDate(2026, 8, 15), Amount: Money{Cents: -5}, Category: "c"},
		{Kind: Expense, Date: NewDate(2026, 8, 15), Amount: Money{Cents: 1}, Category: "  "},
		{Kind: Income, Date: NewDate(2026, 8, 15), Amount: Money{Cents: 1}, Category: "c",
			Recurrence: &Recurrence{Every: "fortnightly"}},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBudgetValidate(t *testing.T) {
	if err := (Budget{Category: "Rent", Limit: Money{Cents: 120000}}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Budget{Category: "", Limit: Money{Cents: 1}}).Validate(); err == nil {
		t.Fatal("expected error for empty category")
	}
	if err := (Budget{Category: "Rent", Limit: Money{Cents: 0}}).Validate(); err == nil {
		t.Fatal("expected error for zero limit")
	}
}

func TestPeriodKeyAddMonths(t *testing.T) {
	cases := []struct {
		in   PeriodKey
		n    int
		want PeriodKey
	}{
		{PeriodKey{2026, 8}, 0, PeriodKey{2026, 8}},
		{PeriodKey{2026, 8}, -1, PeriodKey{2026, 7}},
		{PeriodKey{2026, 1}, -1, PeriodKey{2025, 12}},
		{PeriodKey{2026, 2}, -14, PeriodKey{2024, 12}},
		{PeriodKey{2025, 11}, 3, PeriodKey{2026, 2}},
	}
	for i, tc := range cases {
		if got := tc.in.AddMonths(tc.n); got != tc.want {
			t.Fatalf("case %d: got %+v, want %+v", i, got, tc.want)
		}
	}
}

func TestPeriodKeyBefore(t *testing.T) {
	if !(PeriodKey{2025, 12}).Before(PeriodKey{2026, 1}) {
		t.Fatal("Dec 2025 should precede Jan 2026")
	}
	if (PeriodKey{2026, 3}).Before(PeriodKey{2026, 3}) {
		t.Fatal("a period does not precede itself")
	}
}

func TestPeriodKeyLabel(t *testing.T) {
	if got := (PeriodKey{2026, 8}).Label(); got != "Aug 2026" {
		t.Fatalf("got %q", got)
	}
}
