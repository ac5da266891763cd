package config

import (
	"encoding/json"
	"strconv"

	"tally/internal/core"
)

// Setting keys as stored by the persistence collaborator. Values are
// textual; list values are JSON-encoded.
const (
	KeyCurrency              = "currency"
	KeyFirstDayOfWeek        = "first_day_of_week"
	KeyIncomeCategories      = "income_categories"
	KeyExpenseCategories     = "expense_categories"
	KeyNotificationsEnabled  = "notifications_enabled"
	KeyDailyReminderTime     = "daily_reminder_time"
	KeyBudgetAlerts          = "budget_alerts"
	KeyLargeExpenseAlerts    = "large_expense_alerts"
	KeyLargeExpenseThreshold = "large_expense_threshold_cents"
)

// DefaultSettings returns the documented configuration defaults.
func DefaultSettings() core.Settings {
	return core.Settings{
		Currency:       "€",
		FirstDayOfWeek: 1, // Monday
		IncomeCategories: []string{
			"Salary", "Freelance", "Investments", "Gifts", "Other",
		},
		ExpenseCategories: []string{
			"Rent", "Groceries", "Transport", "Utilities", "Health",
			"Dining", "Entertainment", "Shopping", "Travel", "Other",
		},
		Notifications: core.NotificationSettings{
			Enabled:               true,
			DailyReminderTime:     "20:00",
			BudgetAlerts:          true,
			LargeExpenseAlerts:    true,
			LargeExpenseThreshold: core.Money{Cents: 10000},
		},
	}
}

// MergeSettings applies persisted overrides on top of the defaults.
// Persisted values win per key; keys absent from the overrides keep
// their default. Unknown keys are ignored.
func MergeSettings(defaults core.Settings, overrides map[string]string) core.Settings {
	out := defaults
	out.IncomeCategories = append([]string(nil), defaults.IncomeCategories...)
	out.ExpenseCategories = append([]string(nil), defaults.ExpenseCategories...)

	for key, raw := range overrides {
		switch key {
		case KeyCurrency:
			out.Currency = raw
		case KeyFirstDayOfWeek:
			if v, err := strconv.Atoi(raw); err == nil && v >= 0 && v <= 6 {
				out.FirstDayOfWeek = v
			}
		case KeyIncomeCategories:
			if cats := decodeList(raw); cats != nil {
				out.IncomeCategories = cats
			}
		case KeyExpenseCategories:
			if cats := decodeList(raw); cats != nil {
				out.ExpenseCategories = cats
			}
		case KeyNotificationsEnabled:
			if v, err := strconv.ParseBool(raw); err == nil {
				out.Notifications.Enabled = v
			}
		case KeyDailyReminderTime:
			out.Notifications.DailyReminderTime = raw
		case KeyBudgetAlerts:
			if v, err := strconv.ParseBool(raw); err == nil {
				out.Notifications.BudgetAlerts = v
			}
		case KeyLargeExpenseAlerts:
			if v, err := strconv.ParseBool(raw); err == nil {
				out.Notifications.LargeExpenseAlerts = v
			}
		case KeyLargeExpenseThreshold:
			if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
				out.Notifications.LargeExpenseThreshold = core.Money{Cents: v}
			}
		}
	}
	return out
}

// EncodeSettings renders every setting as a key/value pair for the
// persistence collaborator.
func EncodeSettings(s core.Settings) map[string]string {
	return map[string]string{
		KeyCurrency:              s.Currency,
		KeyFirstDayOfWeek:        strconv.Itoa(s.FirstDayOfWeek),
		KeyIncomeCategories:      encodeList(s.IncomeCategories),
		KeyExpenseCategories:     encodeList(s.ExpenseCategories),
		KeyNotificationsEnabled:  strconv.FormatBool(s.Notifications.Enabled),
		KeyDailyReminderTime:     s.Notifications.DailyReminderTime,
		KeyBudgetAlerts:          strconv.FormatBool(s.Notifications.BudgetAlerts),
		KeyLargeExpenseAlerts:    strconv.FormatBool(s.Notifications.LargeExpenseAlerts),
		KeyLargeExpenseThreshold: strconv.FormatInt(s.Notifications.LargeExpenseThreshold.Cents, 10),
	}
}

func encodeList(items []string) string {
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeList(raw string) []string {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
