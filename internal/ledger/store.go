// Package ledger owns the authoritative in-memory collections of
// transactions and budgets and every mutation on them. Aggregation
// packages consume read-only snapshots taken from here.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"tally/internal/config"
	"tally/internal/core"
	"tally/internal/log"
)

// ErrSyncFailed marks a mutation whose durable sync did not complete.
// The in-memory mutation is already applied and is never rolled back;
// callers may retry persistence or surface a warning.
var ErrSyncFailed = errors.New("ledger sync failed")

// Store serializes all mutations behind a single writer lock and
// pushes a whole-collection snapshot to the persister after each one.
type Store struct {
	mu        sync.RWMutex
	persister Persister
	logger    *log.Logger

	now   func() time.Time
	newID func() string

	transactions []core.Transaction
	budgets      []core.Budget
	settings     core.Settings
	version      uint64

	// saveMu keeps snapshot writes ordered without blocking readers.
	saveMu    sync.Mutex
	listeners []func(Event)
}

// Option configures a Store.
type Option func(*Store)

// WithClock injects the reference clock used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides transaction identifier generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Open loads the persisted snapshot and returns a ready store. Absent
// stored data is not an error: collections start empty and settings
// fall back to defaults, with persisted overrides winning per key.
func Open(ctx context.Context, p Persister, defaults core.Settings, logger *log.Logger, opts ...Option) (*Store, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	s := &Store{
		persister: p,
		logger:    logger.WithComponent(log.ComponentLedger),
		now:       time.Now,
		newID:     newTransactionID,
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger snapshot: %w", err)
	}
	s.transactions = snap.Transactions
	s.budgets = snap.Budgets
	s.settings = config.MergeSettings(defaults, snap.Settings)

	s.logger.InfoContext(ctx, "Ledger loaded",
		"transactions", len(s.transactions),
		"budgets", len(s.budgets))
	return s, nil
}

// newTransactionID returns a UUIDv7: opaque, unique and sortable by
// creation time.
func newTransactionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Subscribe registers a mutation listener. Listeners run synchronously
// after the mutation is applied, outside the store lock.
func (s *Store) Subscribe(fn func(Event)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// AddTransaction validates the draft, assigns a fresh identifier and
// creation timestamp, and appends it. A validation failure leaves the
// store unchanged.
func (s *Store) AddTransaction(ctx context.Context, draft core.Transaction) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	s.mu.Lock()
	draft.ID = s.newID()
	draft.CreatedAt = s.now()
	s.transactions = append(s.transactions, draft)
	s.version++
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Transaction added",
		log.FieldTransactionID, draft.ID,
		log.FieldKind, string(draft.Kind),
		log.FieldCategory, draft.Category,
		log.FieldAmountCents, draft.Amount.Cents)

	err := s.sync(ctx)
	s.notify(Event{Op: OpTransactionAdded, Transaction: &draft})
	return draft, err
}

// UpdateTransaction merges the supplied fields onto an existing record.
// The second return value is false when the identifier is unknown.
// Fields not supplied are not re-validated.
func (s *Store) UpdateTransaction(ctx context.Context, id string, patch TransactionPatch) (core.Transaction, bool, error) {
	if err := patch.validate(); err != nil {
		return core.Transaction{}, false, fmt.Errorf("validate patch: %w", err)
	}

	s.mu.Lock()
	idx := -1
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return core.Transaction{}, false, nil
	}
	patch.apply(&s.transactions[idx])
	updated := s.transactions[idx]
	s.version++
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Transaction updated", log.FieldTransactionID, id)

	err := s.sync(ctx)
	s.notify(Event{Op: OpTransactionUpdated, Transaction: &updated})
	return updated, true, err
}

// DeleteTransaction removes a record by identifier and reports whether
// one was found.
func (s *Store) DeleteTransaction(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	idx := -1
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}
	removed := s.transactions[idx]
	s.transactions = append(s.transactions[:idx], s.transactions[idx+1:]...)
	s.version++
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, id)

	err := s.sync(ctx)
	s.notify(Event{Op: OpTransactionDeleted, Transaction: &removed})
	return true, err
}

// SetBudget upserts the budget for a category.
func (s *Store) SetBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("validate budget: %w", err)
	}

	s.mu.Lock()
	found := false
	for i := range s.budgets {
		if s.budgets[i].Category == b.Category {
			s.budgets[i].Limit = b.Limit
			found = true
			break
		}
	}
	if !found {
		s.budgets = append(s.budgets, b)
	}
	s.version++
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Budget set",
		log.FieldCategory, b.Category,
		log.FieldAmountCents, b.Limit.Cents)

	err := s.sync(ctx)
	s.notify(Event{Op: OpBudgetSet, Budget: &b})
	return err
}

// DeleteBudget removes a budget by category key and reports whether
// one was found.
func (s *Store) DeleteBudget(ctx context.Context, category string) (bool, error) {
	s.mu.Lock()
	idx := -1
	for i := range s.budgets {
		if s.budgets[i].Category == category {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}
	removed := s.budgets[idx]
	s.budgets = append(s.budgets[:idx], s.budgets[idx+1:]...)
	s.version++
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Budget deleted", log.FieldCategory, category)

	err := s.sync(ctx)
	s.notify(Event{Op: OpBudgetDeleted, Budget: &removed})
	return true, err
}

// UpdateSettings replaces the settings and persists them.
func (s *Store) UpdateSettings(ctx context.Context, settings core.Settings) error {
	s.mu.Lock()
	s.settings = settings
	s.version++
	s.mu.Unlock()
	return s.sync(ctx)
}

// Transactions returns a copy of the transaction collection.
func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.transactions...)
}

// Budgets returns a copy of the budget collection in insertion order.
func (s *Store) Budgets() []core.Budget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Budget(nil), s.budgets...)
}

// Settings returns the current settings.
func (s *Store) Settings() core.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.settings
	out.IncomeCategories = append([]string(nil), s.settings.IncomeCategories...)
	out.ExpenseCategories = append([]string(nil), s.settings.ExpenseCategories...)
	return out
}

// Version increments on every mutation; callers use it to invalidate
// derived caches.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// sync pushes a whole-collection snapshot to the persister. The
// mutation is already visible to readers when this runs; a failed sync
// is surfaced as ErrSyncFailed but never undoes it.
func (s *Store) sync(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	s.mu.RLock()
	snap := Snapshot{
		Transactions: append([]core.Transaction(nil), s.transactions...),
		Budgets:      append([]core.Budget(nil), s.budgets...),
		Settings:     config.EncodeSettings(s.settings),
	}
	s.mu.RUnlock()

	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if err := s.persister.Save(ctx, snap); err != nil {
		s.logger.ErrorContext(ctx, "Ledger sync failed", log.FieldError, err)
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	return nil
}

func (s *Store) notify(ev Event) {
	s.mu.RLock()
	listeners := append([](func(Event))(nil), s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}
