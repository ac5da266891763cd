package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tally/internal/config"
	"tally/internal/core"
	"tally/internal/ledger"
	"tally/internal/storage"
)

var evalNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

type capturePublisher struct {
	mu        sync.Mutex
	published []Advisory
	failWith  error
}

func (p *capturePublisher) PublishAdvisory(_ context.Context, adv Advisory) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return p.failWith
	}
	p.published = append(p.published, adv)
	return nil
}

func (p *capturePublisher) all() []Advisory {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Advisory(nil), p.published...)
}

func newTestStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(context.Background(), storage.NewMemoryPersister(),
		config.DefaultSettings(), nil)
	if err != nil {
		t.Fatalf("ledger.Open() error = %v", err)
	}
	return store
}

func expense(cents int64, category string) core.Transaction {
	return core.Transaction{
		Kind:     core.Expense,
		Date:     core.NewDate(2026, 8, 15),
		Amount:   core.Money{Cents: cents},
		Category: category,
	}
}

func TestEvaluateBudgetApproachingAtExactLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	m := NewMonitor(store, nil, nil).WithClock(func() time.Time { return evalNow })

	store.SetBudget(ctx, core.Budget{Category: "Rent", Limit: core.Money{Cents: 120000}})
	tx, err := store.AddTransaction(ctx, expense(120000, "Rent"))
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}

	advs := m.Evaluate(tx, evalNow)
	var budget *Advisory
	for i := range advs {
		if advs[i].Type == BudgetApproaching || advs[i].Type == BudgetExceeded {
			budget = &advs[i]
		}
	}
	if budget == nil {
		t.Fatal("spend at the limit should raise a budget advisory")
	}
	if budget.Type != BudgetApproaching {
		t.Errorf("type = %s, want approaching (limit reached, not crossed)", budget.Type)
	}
	if budget.Spent.Cents != 120000 || budget.Limit.Cents != 120000 {
		t.Errorf("spent/limit = %d/%d, want 120000/120000", budget.Spent.Cents, budget.Limit.Cents)
	}
}

func TestEvaluateBudgetExceeded(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	m := NewMonitor(store, nil, nil).WithClock(func() time.Time { return evalNow })

	store.SetBudget(ctx, core.Budget{Category: "Groceries", Limit: core.Money{Cents: 40000}})
	store.AddTransaction(ctx, expense(30000, "Groceries"))
	tx, _ := store.AddTransaction(ctx, expense(15000, "Groceries"))

	advs := m.Evaluate(tx, evalNow)
	found := false
	for _, adv := range advs {
		if adv.Type == BudgetExceeded {
			found = true
			if adv.Spent.Cents != 45000 {
				t.Errorf("spent = %d, want 45000 including the new transaction", adv.Spent.Cents)
			}
		}
	}
	if !found {
		t.Fatal("spend past the limit should raise budget-exceeded")
	}
}

func TestEvaluateBudgetBelowThreshold(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	m := NewMonitor(store, nil, nil).WithClock(func() time.Time { return evalNow })

	store.SetBudget(ctx, core.Budget{Category: "Fun", Limit: core.Money{Cents: 10000}})
	tx, _ := store.AddTransaction(ctx, expense(5000, "Fun"))

	for _, adv := range m.Evaluate(tx, evalNow) {
		if adv.Type == BudgetApproaching || adv.Type == BudgetExceeded {
			t.Errorf("spend at half the limit raised %s", adv.Type)
		}
	}
}

func TestEvaluateLargeExpenseThreshold(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	m := NewMonitor(store, nil, nil).WithClock(func() time.Time { return evalNow })

	// Default threshold is 100.00.
	big, _ := store.AddTransaction(ctx, expense(15000, "Shopping"))
	small, _ := store.AddTransaction(ctx, expense(5000, "Shopping"))

	advs := m.Evaluate(big, evalNow)
	if len(advs) != 1 || advs[0].Type != LargeExpense {
		t.Fatalf("15000 over a 10000 threshold should raise exactly one large-expense, got %+v", advs)
	}
	if advs[0].Amount.Cents != 15000 {
		t.Errorf("advisory amount = %d, want 15000", advs[0].Amount.Cents)
	}

	if advs := m.Evaluate(small, evalNow); len(advs) != 0 {
		t.Errorf("5000 under the threshold raised %+v", advs)
	}
}

func TestEvaluateIncomeNeverAlerts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	m := NewMonitor(store, nil, nil).WithClock(func() time.Time { return evalNow })

	store.SetBudget(ctx, core.Budget{Category: "Salary", Limit: core.Money{Cents: 100}})
	tx, err := store.AddTransaction(ctx, core.Transaction{
		Kind: core.Income, Date: core.NewDate(2026, 8, 1),
		Amount: core.Money{Cents: 500000}, Category: "Salary",
	})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if advs := m.Evaluate(tx, evalNow); len(advs) != 0 {
		t.Errorf("income raised %+v", advs)
	}
}

func TestEvaluateRespectsNotificationToggles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	m := NewMonitor(store, nil, nil).WithClock(func() time.Time { return evalNow })

	store.SetBudget(ctx, core.Budget{Category: "Rent", Limit: core.Money{Cents: 1000}})
	tx, _ := store.AddTransaction(ctx, expense(50000, "Rent"))

	settings := store.Settings()
	settings.Notifications.Enabled = false
	if err := store.UpdateSettings(ctx, settings); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	if advs := m.Evaluate(tx, evalNow); advs != nil {
		t.Errorf("disabled notifications still raised %+v", advs)
	}

	settings.Notifications.Enabled = true
	settings.Notifications.BudgetAlerts = false
	settings.Notifications.LargeExpenseAlerts = false
	if err := store.UpdateSettings(ctx, settings); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	if advs := m.Evaluate(tx, evalNow); len(advs) != 0 {
		t.Errorf("disabled alert kinds still raised %+v", advs)
	}
}

func TestMonitorPublishesOnInsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	pub := &capturePublisher{}
	NewMonitor(store, pub, nil).WithClock(func() time.Time { return evalNow })

	store.SetBudget(ctx, core.Budget{Category: "Groceries", Limit: core.Money{Cents: 10000}})
	store.AddTransaction(ctx, expense(25000, "Groceries"))

	advs := pub.all()
	if len(advs) != 2 {
		t.Fatalf("published %d advisories, want budget-exceeded plus large-expense", len(advs))
	}
	if advs[0].Type != BudgetExceeded || advs[1].Type != LargeExpense {
		t.Errorf("published types = %s, %s", advs[0].Type, advs[1].Type)
	}
}

func TestPublishFailureDoesNotBlockMutation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	pub := &capturePublisher{failWith: errors.New("broker down")}
	NewMonitor(store, pub, nil).WithClock(func() time.Time { return evalNow })

	if _, err := store.AddTransaction(ctx, expense(25000, "Shopping")); err != nil {
		t.Fatalf("a failing publisher must not surface through AddTransaction, got %v", err)
	}
	if len(store.Transactions()) != 1 {
		t.Error("transaction must be committed despite the publish failure")
	}
}
