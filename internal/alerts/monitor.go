// Package alerts evaluates budget thresholds and large-expense checks
// on transaction insertion and emits advisory events. Advisories are
// informational: they never reject or alter a transaction.
package alerts

import (
	"context"
	"time"

	"tally/internal/core"
	"tally/internal/ledger"
	"tally/internal/log"
	"tally/internal/query"
)

// AdvisoryType classifies an advisory event.
type AdvisoryType string

const (
	BudgetExceeded    AdvisoryType = "budget-exceeded"
	BudgetApproaching AdvisoryType = "budget-approaching"
	LargeExpense      AdvisoryType = "large-expense"
)

// approachingNumerator/Denominator encode the 0.9×limit threshold in
// integer cents arithmetic.
const (
	approachingNumerator   = 9
	approachingDenominator = 10
)

// Advisory is one emitted event.
type Advisory struct {
	Type          AdvisoryType
	Category      string
	TransactionID string
	Amount        core.Money
	Spent         core.Money // current-month spend, budget advisories only
	Limit         core.Money // budget advisories only
	Period        core.PeriodKey
	OccurredAt    time.Time
}

// Publisher hands advisories to an external transport. Publish
// failures are logged, never propagated to the mutation path.
type Publisher interface {
	PublishAdvisory(ctx context.Context, adv Advisory) error
}

// Monitor watches ledger mutations and evaluates advisory rules.
type Monitor struct {
	store  *ledger.Store
	pub    Publisher
	logger *log.Logger
	now    func() time.Time
}

// NewMonitor creates a monitor and subscribes it to the store's
// mutation events. pub may be nil; advisories are then only logged.
func NewMonitor(store *ledger.Store, pub Publisher, logger *log.Logger) *Monitor {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	m := &Monitor{
		store:  store,
		pub:    pub,
		logger: logger.WithComponent(log.ComponentAlerts),
		now:    time.Now,
	}
	store.Subscribe(m.onMutation)
	return m
}

// WithClock injects the reference clock (tests).
func (m *Monitor) WithClock(now func() time.Time) *Monitor {
	m.now = now
	return m
}

func (m *Monitor) onMutation(ev ledger.Event) {
	if ev.Op != ledger.OpTransactionAdded || ev.Transaction == nil {
		return
	}
	ctx := context.Background()
	for _, adv := range m.Evaluate(*ev.Transaction, m.now()) {
		m.dispatch(ctx, adv)
	}
}

// Evaluate classifies a just-inserted transaction against the budget
// and large-expense rules. The transaction is already in the store, so
// current-month spend includes it.
func (m *Monitor) Evaluate(tx core.Transaction, now time.Time) []Advisory {
	settings := m.store.Settings().Notifications
	if !settings.Enabled {
		return nil
	}

	var out []Advisory
	period := core.PeriodOf(now.Year(), int(now.Month()))

	if tx.Kind == core.Expense && settings.BudgetAlerts {
		if limit, ok := m.budgetFor(tx.Category); ok {
			spent := m.periodSpend(tx.Category, period)
			adv := Advisory{
				Category:      tx.Category,
				TransactionID: tx.ID,
				Amount:        tx.Amount,
				Spent:         spent,
				Limit:         limit,
				Period:        period,
				OccurredAt:    now,
			}
			switch {
			case spent.Cents > limit.Cents:
				adv.Type = BudgetExceeded
				out = append(out, adv)
			case spent.Cents*approachingDenominator >= limit.Cents*approachingNumerator:
				adv.Type = BudgetApproaching
				out = append(out, adv)
			}
		}
	}

	if tx.Kind == core.Expense && settings.LargeExpenseAlerts &&
		tx.Amount.Cents >= settings.LargeExpenseThreshold.Cents {
		out = append(out, Advisory{
			Type:          LargeExpense,
			Category:      tx.Category,
			TransactionID: tx.ID,
			Amount:        tx.Amount,
			Period:        period,
			OccurredAt:    now,
		})
	}

	return out
}

func (m *Monitor) budgetFor(category string) (core.Money, bool) {
	for _, b := range m.store.Budgets() {
		if b.Category == category {
			return b.Limit, true
		}
	}
	return core.Money{}, false
}

func (m *Monitor) periodSpend(category string, period core.PeriodKey) core.Money {
	matched := query.Apply(m.store.Transactions(), query.Filter{
		Year:     period.Year,
		Month:    period.Month,
		Kind:     core.Expense,
		Category: category,
	})
	var total int64
	for _, tx := range matched {
		total += tx.Amount.Cents
	}
	return core.Money{Cents: total}
}

func (m *Monitor) dispatch(ctx context.Context, adv Advisory) {
	m.logger.InfoContext(ctx, "Advisory emitted",
		log.FieldAdvisory, string(adv.Type),
		log.FieldCategory, adv.Category,
		log.FieldTransactionID, adv.TransactionID,
		log.FieldAmountCents, adv.Amount.Cents)

	if m.pub == nil {
		return
	}
	if err := m.pub.PublishAdvisory(ctx, adv); err != nil {
		// The transaction is already committed; a lost advisory is a
		// notification gap, not a ledger problem.
		m.logger.ErrorContext(ctx, "Failed to publish advisory",
			log.FieldAdvisory, string(adv.Type),
			log.FieldError, err)
	}
}
