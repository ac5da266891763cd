package storage

import (
	"context"
	"sync"

	"tally/internal/core"
	"tally/internal/ledger"
)

// MemoryPersister keeps the snapshot in process memory. It backs the
// default development mode and the test suite.
type MemoryPersister struct {
	mu   sync.Mutex
	snap ledger.Snapshot
	// FailNext makes the next Save return an error (tests exercise the
	// sync-failure path with it).
	FailNext error
	saves    int
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (m *MemoryPersister) Load(_ context.Context) (ledger.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySnapshot(m.snap), nil
}

func (m *MemoryPersister) Save(_ context.Context, snap ledger.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext != nil {
		err := m.FailNext
		m.FailNext = nil
		return err
	}
	m.snap = copySnapshot(snap)
	m.saves++
	return nil
}

// Saves reports how many snapshots were accepted.
func (m *MemoryPersister) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func copySnapshot(in ledger.Snapshot) ledger.Snapshot {
	out := ledger.Snapshot{
		Transactions: append([]core.Transaction(nil), in.Transactions...),
		Budgets:      append([]core.Budget(nil), in.Budgets...),
	}
	if in.Settings != nil {
		out.Settings = make(map[string]string, len(in.Settings))
		for k, v := range in.Settings {
			out.Settings[k] = v
		}
	}
	return out
}
