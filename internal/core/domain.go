package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

type (
	// Kind classifies a transaction as income or expense.
	Kind string

	// Frequency is the repetition cadence of a recurrence descriptor.
	Frequency string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Recurrence describes how a transaction repeats. It is descriptive
	// metadata only; the engine never materializes future occurrences.
	Recurrence struct {
		Every   Frequency
		EndDate Date // optional
		Count   int  // optional, 0 means unbounded
	}

	// Transaction is a single ledger record. ID is assigned at creation
	// and never changes afterwards.
	Transaction struct {
		ID         string
		Kind       Kind
		Date       Date
		Amount     Money
		Category   string
		Note       string
		Recurrence *Recurrence
		CreatedAt  time.Time
	}

	// Budget is a per-category monthly spending limit. At most one
	// budget exists per category.
	Budget struct {
		Category string
		Limit    Money
	}

	// PeriodKey identifies a calendar month, the grouping unit for all
	// monthly aggregation.
	PeriodKey struct {
		Year  int
		Month int // 1-12
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidFrequency = errors.New("invalid recurrence frequency")
	ErrEmptyCategory    = errors.New("empty category")
	ErrNoteTooLong      = errors.New("note too long (max 200 characters)")
)

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// NewDate creates a Date at day granularity in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month.
func (d Date) Day() int { return d.Time.Day() }

// Month returns the calendar month as an int (1-12).
func (d Date) Month() int { return int(d.Time.Month()) }

// Year returns the calendar year.
func (d Date) Year() int { return d.Time.Year() }

// Period returns the period key the date falls in.
func (d Date) Period() PeriodKey {
	return PeriodKey{Year: d.Time.Year(), Month: int(d.Time.Month())}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (r Recurrence) Validate() error {
	if !r.Every.Valid() {
		return ErrInvalidFrequency
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Note) > 200 {
		return ErrNoteTooLong
	}
	if t.Recurrence != nil {
		if err := t.Recurrence.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	return b.Limit.Validate()
}

// PeriodOf builds the period key for a (year, month) pair.
func PeriodOf(year, month int) PeriodKey {
	return PeriodKey{Year: year, Month: month}
}

// Contains reports whether d falls inside the period.
func (p PeriodKey) Contains(d Date) bool {
	return d.Year() == p.Year && d.Month() == p.Month
}

// AddMonths returns the period n months after p (n may be negative).
// Month arithmetic is normalized through time.Date.
func (p PeriodKey) AddMonths(n int) PeriodKey {
	t := time.Date(p.Year, time.Month(p.Month+n), 1, 0, 0, 0, 0, time.UTC)
	return PeriodKey{Year: t.Year(), Month: int(t.Month())}
}

// Label renders a short human label such as "Aug 2026".
func (p PeriodKey) Label() string {
	return time.Month(p.Month).String()[:3] + " " + strconv.Itoa(p.Year)
}

// Before orders periods chronologically.
func (p PeriodKey) Before(q PeriodKey) bool {
	if p.Year != q.Year {
		return p.Year < q.Year
	}
	return p.Month < q.Month
}
