package ledger

import (
	"context"

	"tally/internal/core"
)

// Snapshot is the whole-collection state exchanged with the persister.
// Settings travel as encoded key/value overrides so that unspecified
// keys keep their defaults on load.
type Snapshot struct {
	Transactions []core.Transaction
	Budgets      []core.Budget
	Settings     map[string]string
}

// Persister is the durable-storage collaborator. Load returning an
// empty snapshot is the normal first-run case, not an error.
type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Op identifies a store mutation.
type Op string

const (
	OpTransactionAdded   Op = "transaction_added"
	OpTransactionUpdated Op = "transaction_updated"
	OpTransactionDeleted Op = "transaction_deleted"
	OpBudgetSet          Op = "budget_set"
	OpBudgetDeleted      Op = "budget_deleted"
)

// Event describes a completed mutation, delivered to subscribers after
// the store state has changed.
type Event struct {
	Op          Op
	Transaction *core.Transaction
	Budget      *core.Budget
}
