package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tally/internal/core"
	"tally/internal/ledger"
	"tally/internal/query"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a bounded JSON body into dst, rejecting unknown
// fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// monthParams holds year/month query values, defaulting to now.
type monthParams struct {
	Year  int
	Month int
}

func parseMonthParams(query url.Values, now time.Time) (monthParams, error) {
	params := monthParams{Year: now.Year(), Month: int(now.Month())}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return params, fmt.Errorf("invalid year %q", v)
		}
		params.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return params, fmt.Errorf("invalid month %q", v)
		}
		params.Month = m
	}
	return params, nil
}

// parseFilter builds a query filter from list parameters. year=0 means
// unfiltered, unlike the report endpoints which default to now.
func parseFilter(values url.Values) (query.Filter, error) {
	var f query.Filter

	if v := strings.TrimSpace(values.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("invalid year %q", v)
		}
		f.Year = y
	}
	if v := strings.TrimSpace(values.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return f, fmt.Errorf("invalid month %q", v)
		}
		f.Month = m
	}
	if v := strings.TrimSpace(values.Get("kind")); v != "" {
		kind := core.Kind(v)
		if !kind.Valid() {
			return f, fmt.Errorf("invalid kind %q", v)
		}
		f.Kind = kind
	}
	f.Category = strings.TrimSpace(values.Get("category"))

	rng, err := parseDateRange(values)
	if err != nil {
		return f, err
	}
	f.Range = rng

	return f, nil
}

// parseDateRange reads from/to parameters; both must be present to
// form a range.
func parseDateRange(values url.Values) (*query.DateRange, error) {
	from := strings.TrimSpace(values.Get("from"))
	to := strings.TrimSpace(values.Get("to"))
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("from and to must be supplied together")
	}

	start, err := parseISODate(from)
	if err != nil {
		return nil, fmt.Errorf("invalid from date %q", from)
	}
	end, err := parseISODate(to)
	if err != nil {
		return nil, fmt.Errorf("invalid to date %q", to)
	}
	if end.Before(start.Time) {
		return nil, fmt.Errorf("to date precedes from date")
	}
	return &query.DateRange{Start: start, End: end}, nil
}

func parseISODate(s string) (core.Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return core.Date{}, err
	}
	return core.Date{Time: t}, nil
}

// recurrencePayload mirrors core.Recurrence on the wire.
type recurrencePayload struct {
	Every   string `json:"every"`
	EndDate string `json:"end_date,omitempty"`
	Count   int    `json:"count,omitempty"`
}

func (p *recurrencePayload) toCore() (*core.Recurrence, error) {
	r := &core.Recurrence{Every: core.Frequency(p.Every), Count: p.Count}
	if p.EndDate != "" {
		end, err := parseISODate(p.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid recurrence end date %q", p.EndDate)
		}
		r.EndDate = end
	}
	return r, nil
}

// transactionPayload is the create/update body. Amount is a decimal
// string ("12.34"); the parser owns rounding and sign rules.
type transactionPayload struct {
	Kind       string             `json:"kind"`
	Date       string             `json:"date"`
	Amount     string             `json:"amount"`
	Category   string             `json:"category"`
	Note       string             `json:"note"`
	Recurrence *recurrencePayload `json:"recurrence,omitempty"`
}

func (p *transactionPayload) toDraft() (core.Transaction, error) {
	var draft core.Transaction

	draft.Kind = core.Kind(p.Kind)
	draft.Category = strings.TrimSpace(p.Category)
	draft.Note = strings.TrimSpace(p.Note)

	date, err := parseISODate(p.Date)
	if err != nil {
		return draft, fmt.Errorf("invalid date %q", p.Date)
	}
	draft.Date = date

	cents, err := core.ParseAmountToCents(p.Amount)
	if err != nil {
		return draft, err
	}
	draft.Amount = core.Money{Cents: cents}

	if p.Recurrence != nil {
		r, err := p.Recurrence.toCore()
		if err != nil {
			return draft, err
		}
		draft.Recurrence = r
	}
	return draft, nil
}

// transactionPatchPayload distinguishes absent fields from zero values
// with pointers.
type transactionPatchPayload struct {
	Kind            *string            `json:"kind,omitempty"`
	Date            *string            `json:"date,omitempty"`
	Amount          *string            `json:"amount,omitempty"`
	Category        *string            `json:"category,omitempty"`
	Note            *string            `json:"note,omitempty"`
	Recurrence      *recurrencePayload `json:"recurrence,omitempty"`
	ClearRecurrence bool               `json:"clear_recurrence,omitempty"`
}

func (p *transactionPatchPayload) toPatch() (ledger.TransactionPatch, error) {
	var patch ledger.TransactionPatch

	if p.Kind != nil {
		kind := core.Kind(*p.Kind)
		patch.Kind = &kind
	}
	if p.Date != nil {
		date, err := parseISODate(*p.Date)
		if err != nil {
			return patch, fmt.Errorf("invalid date %q", *p.Date)
		}
		patch.Date = &date
	}
	if p.Amount != nil {
		cents, err := core.ParseAmountToCents(*p.Amount)
		if err != nil {
			return patch, err
		}
		patch.Amount = &core.Money{Cents: cents}
	}
	if p.Category != nil {
		category := strings.TrimSpace(*p.Category)
		patch.Category = &category
	}
	if p.Note != nil {
		note := strings.TrimSpace(*p.Note)
		patch.Note = &note
	}
	if p.Recurrence != nil {
		r, err := p.Recurrence.toCore()
		if err != nil {
			return patch, err
		}
		patch.Recurrence = r
	}
	patch.ClearRecurrence = p.ClearRecurrence

	return patch, nil
}

// budgetPayload is the budget upsert body.
type budgetPayload struct {
	Limit string `json:"limit"`
}
