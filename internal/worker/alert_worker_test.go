package worker

import (
	"context"
	"strings"
	"testing"
	"time"

	"tally/internal/amqp"
	"tally/internal/config"
	"tally/internal/ledger"
	"tally/internal/log"
	"tally/internal/storage"
)

type captureNotifier struct {
	subjects []string
	bodies   []string
}

func (c *captureNotifier) Notify(_ context.Context, subject, body string) error {
	c.subjects = append(c.subjects, subject)
	c.bodies = append(c.bodies, body)
	return nil
}

func newTestStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(context.Background(), storage.NewMemoryPersister(),
		config.DefaultSettings(), log.New(log.DefaultConfig()))
	if err != nil {
		t.Fatalf("ledger.Open() error = %v", err)
	}
	return store
}

func TestHandleAdvisoryRendersBudgetExceeded(t *testing.T) {
	notifier := &captureNotifier{}
	w := NewAlertWorker(newTestStore(t), nil, notifier, nil, time.Minute)

	msg := &amqp.AdvisoryMessage{
		Type:       "budget-exceeded",
		Category:   "Groceries",
		SpentCents: 45000,
		LimitCents: 40000,
	}
	if err := w.HandleAdvisory(context.Background(), msg); err != nil {
		t.Fatalf("HandleAdvisory() error = %v", err)
	}

	if len(notifier.subjects) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifier.subjects))
	}
	if !strings.Contains(notifier.subjects[0], "Budget exceeded") {
		t.Errorf("subject = %q, want budget exceeded mention", notifier.subjects[0])
	}
	if !strings.Contains(notifier.bodies[0], "450.00") || !strings.Contains(notifier.bodies[0], "400.00") {
		t.Errorf("body = %q, want spent and limit amounts", notifier.bodies[0])
	}
}

func TestHandleAdvisoryRendersLargeExpense(t *testing.T) {
	notifier := &captureNotifier{}
	w := NewAlertWorker(newTestStore(t), nil, notifier, nil, time.Minute)

	msg := &amqp.AdvisoryMessage{
		Type:        "large-expense",
		Category:    "Electronics",
		AmountCents: 89999,
	}
	if err := w.HandleAdvisory(context.Background(), msg); err != nil {
		t.Fatalf("HandleAdvisory() error = %v", err)
	}
	if !strings.Contains(notifier.bodies[0], "899.99") {
		t.Errorf("body = %q, want amount 899.99", notifier.bodies[0])
	}
}

func TestReminderDue(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		mark string
		want bool
	}{
		{"before mark", time.Date(2026, 8, 30, 19, 59, 0, 0, time.UTC), "20:00", false},
		{"at mark", time.Date(2026, 8, 30, 20, 0, 0, 0, time.UTC), "20:00", true},
		{"after mark", time.Date(2026, 8, 30, 23, 30, 0, 0, time.UTC), "20:00", true},
		{"malformed mark", time.Date(2026, 8, 30, 23, 30, 0, 0, time.UTC), "8pm", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reminderDue(tt.now, tt.mark); got != tt.want {
				t.Errorf("reminderDue(%v, %q) = %v, want %v", tt.now, tt.mark, got, tt.want)
			}
		})
	}
}

func TestMaybeRemindOncePerDay(t *testing.T) {
	notifier := &captureNotifier{}
	now := time.Date(2026, 8, 30, 21, 0, 0, 0, time.UTC)
	w := NewAlertWorker(newTestStore(t), nil, notifier, nil, time.Minute).
		WithClock(func() time.Time { return now })

	ctx := context.Background()
	w.maybeRemind(ctx)
	w.maybeRemind(ctx)
	if len(notifier.subjects) != 1 {
		t.Fatalf("got %d reminders, want 1", len(notifier.subjects))
	}

	// Next day the reminder fires again.
	now = now.AddDate(0, 0, 1)
	w.maybeRemind(ctx)
	if len(notifier.subjects) != 2 {
		t.Fatalf("got %d reminders after day rollover, want 2", len(notifier.subjects))
	}
}
