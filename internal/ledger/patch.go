package ledger

import (
	"strings"

	"tally/internal/core"
)

// TransactionPatch carries the fields of a partial update. Nil fields
// are left untouched on the target record and are not re-validated.
type TransactionPatch struct {
	Kind       *core.Kind
	Date       *core.Date
	Amount     *core.Money
	Category   *string
	Note       *string
	Recurrence *core.Recurrence
	// ClearRecurrence removes the recurrence descriptor. It wins over
	// Recurrence when both are set.
	ClearRecurrence bool
}

// validate checks only the fields the patch supplies.
func (p TransactionPatch) validate() error {
	if p.Kind != nil && !p.Kind.Valid() {
		return core.ErrInvalidKind
	}
	if p.Date != nil {
		if err := p.Date.Validate(); err != nil {
			return err
		}
	}
	if p.Amount != nil {
		if err := p.Amount.Validate(); err != nil {
			return err
		}
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return core.ErrEmptyCategory
	}
	if p.Note != nil && len(*p.Note) > 200 {
		return core.ErrNoteTooLong
	}
	if p.Recurrence != nil && !p.ClearRecurrence {
		if err := p.Recurrence.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (p TransactionPatch) apply(tx *core.Transaction) {
	if p.Kind != nil {
		tx.Kind = *p.Kind
	}
	if p.Date != nil {
		tx.Date = *p.Date
	}
	if p.Amount != nil {
		tx.Amount = *p.Amount
	}
	if p.Category != nil {
		tx.Category = *p.Category
	}
	if p.Note != nil {
		tx.Note = *p.Note
	}
	switch {
	case p.ClearRecurrence:
		tx.Recurrence = nil
	case p.Recurrence != nil:
		r := *p.Recurrence
		tx.Recurrence = &r
	}
}
