// Package worker runs the advisory consumer and the daily reminder
// loop as a separate process from the API server.
package worker

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"tally/internal/alerts"
	"tally/internal/amqp"
	"tally/internal/ledger"
	"tally/internal/log"
)

// Notifier delivers a rendered notification to the user. The default
// implementation just logs it.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// AdvisoryConsumer is the slice of the AMQP client the worker needs.
type AdvisoryConsumer interface {
	ConsumeAdvisories(ctx context.Context, handler func(*amqp.AdvisoryMessage) error) error
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	Logger *log.Logger
}

func (n *LogNotifier) Notify(ctx context.Context, subject, body string) error {
	n.Logger.InfoContext(ctx, "Notification", "subject", subject, "body", body)
	return nil
}

// AlertWorker consumes advisory messages and fires the daily reminder
// configured in the ledger's notification settings.
type AlertWorker struct {
	store    *ledger.Store
	consumer AdvisoryConsumer
	notifier Notifier
	logger   *log.Logger
	tick     time.Duration
	now      func() time.Time

	lastReminder string // date of the last reminder sent, "2006-01-02"
}

func NewAlertWorker(store *ledger.Store, consumer AdvisoryConsumer, notifier Notifier, logger *log.Logger, tick time.Duration) *AlertWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentWorker)
	if notifier == nil {
		notifier = &LogNotifier{Logger: logger}
	}
	if tick <= 0 {
		tick = time.Minute
	}
	return &AlertWorker{
		store:    store,
		consumer: consumer,
		notifier: notifier,
		logger:   logger,
		tick:     tick,
		now:      time.Now,
	}
}

// WithClock injects the reference clock (tests).
func (w *AlertWorker) WithClock(now func() time.Time) *AlertWorker {
	w.now = now
	return w
}

// Run blocks until ctx is cancelled, driving both loops.
func (w *AlertWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if w.consumer != nil {
		g.Go(func() error {
			err := w.consumer.ConsumeAdvisories(ctx, func(msg *amqp.AdvisoryMessage) error {
				return w.HandleAdvisory(ctx, msg)
			})
			if err == context.Canceled {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		return w.reminderLoop(ctx)
	})

	return g.Wait()
}

// HandleAdvisory renders one advisory message and notifies the user.
func (w *AlertWorker) HandleAdvisory(ctx context.Context, msg *amqp.AdvisoryMessage) error {
	subject, body := renderAdvisory(msg)
	if err := w.notifier.Notify(ctx, subject, body); err != nil {
		return fmt.Errorf("notify advisory: %w", err)
	}
	w.logger.InfoContext(ctx, "Advisory delivered",
		log.FieldAdvisory, msg.Type,
		log.FieldCategory, msg.Category,
		log.FieldTransactionID, msg.TransactionID)
	return nil
}

func renderAdvisory(msg *amqp.AdvisoryMessage) (subject, body string) {
	amount := formatCents(msg.AmountCents)
	switch msg.Type {
	case string(alerts.BudgetExceeded):
		subject = fmt.Sprintf("Budget exceeded: %s", msg.Category)
		body = fmt.Sprintf("Spending in %s reached %s against a %s limit.",
			msg.Category, formatCents(msg.SpentCents), formatCents(msg.LimitCents))
	case string(alerts.BudgetApproaching):
		subject = fmt.Sprintf("Budget almost reached: %s", msg.Category)
		body = fmt.Sprintf("Spending in %s reached %s of the %s limit.",
			msg.Category, formatCents(msg.SpentCents), formatCents(msg.LimitCents))
	case string(alerts.LargeExpense):
		subject = fmt.Sprintf("Large expense: %s", msg.Category)
		body = fmt.Sprintf("An expense of %s was recorded in %s.", amount, msg.Category)
	default:
		subject = "Ledger advisory"
		body = fmt.Sprintf("%s in %s for %s.", msg.Type, msg.Category, amount)
	}
	return subject, body
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func (w *AlertWorker) reminderLoop(ctx context.Context) error {
	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.maybeRemind(ctx)
		}
	}
}

// maybeRemind sends at most one reminder per day, once the configured
// local time has passed.
func (w *AlertWorker) maybeRemind(ctx context.Context) {
	settings := w.store.Settings().Notifications
	if !settings.Enabled || settings.DailyReminderTime == "" {
		return
	}

	now := w.now()
	today := now.Format("2006-01-02")
	if w.lastReminder == today {
		return
	}
	if !reminderDue(now, settings.DailyReminderTime) {
		return
	}

	w.lastReminder = today
	if err := w.notifier.Notify(ctx, "Daily reminder", "Don't forget to record today's expenses."); err != nil {
		w.logger.ErrorContext(ctx, "Failed to send daily reminder", log.FieldError, err)
	}
}

// reminderDue reports whether now is at or past the "HH:MM" mark.
func reminderDue(now time.Time, hhmm string) bool {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return false
	}
	mark := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	return !now.Before(mark)
}
