package amqp

import (
	"encoding/json"
	"time"

	"tally/internal/alerts"
)

// AdvisoryMessage is the wire form of an advisory event. It carries the
// full advisory so consumers need no ledger access to render it.
type AdvisoryMessage struct {
	Type          string    `json:"type"`
	Category      string    `json:"category"`
	TransactionID string    `json:"transaction_id"`
	AmountCents   int64     `json:"amount_cents"`
	SpentCents    int64     `json:"spent_cents,omitempty"`
	LimitCents    int64     `json:"limit_cents,omitempty"`
	Year          int       `json:"year"`
	Month         int       `json:"month"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewAdvisoryMessage converts an advisory to its wire form.
func NewAdvisoryMessage(adv alerts.Advisory) *AdvisoryMessage {
	return &AdvisoryMessage{
		Type:          string(adv.Type),
		Category:      adv.Category,
		TransactionID: adv.TransactionID,
		AmountCents:   adv.Amount.Cents,
		SpentCents:    adv.Spent.Cents,
		LimitCents:    adv.Limit.Cents,
		Year:          adv.Period.Year,
		Month:         adv.Period.Month,
		OccurredAt:    adv.OccurredAt,
	}
}

// ToJSON converts the message to JSON bytes.
func (m *AdvisoryMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AdvisoryMessageFromJSON parses a message from JSON bytes.
func AdvisoryMessageFromJSON(data []byte) (*AdvisoryMessage, error) {
	var msg AdvisoryMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
