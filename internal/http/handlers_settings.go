package http

import (
	"fmt"
	"net/http"
	"strings"

	"tally/internal/core"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, toSettingsDTO(s.store.Settings()))
}

// settingsPayload updates the whole settings surface; absent fields
// keep their current value.
type settingsPayload struct {
	Currency          *string  `json:"currency,omitempty"`
	FirstDayOfWeek    *int     `json:"first_day_of_week,omitempty"`
	IncomeCategories  []string `json:"income_categories,omitempty"`
	ExpenseCategories []string `json:"expense_categories,omitempty"`
	Notifications     *struct {
		Enabled               *bool   `json:"enabled,omitempty"`
		DailyReminderTime     *string `json:"daily_reminder_time,omitempty"`
		BudgetAlerts          *bool   `json:"budget_alerts,omitempty"`
		LargeExpenseAlerts    *bool   `json:"large_expense_alerts,omitempty"`
		LargeExpenseThreshold *string `json:"large_expense_threshold,omitempty"`
	} `json:"notifications,omitempty"`
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var payload settingsPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings := s.store.Settings()

	if payload.Currency != nil {
		currency := strings.TrimSpace(*payload.Currency)
		if currency == "" {
			writeError(w, http.StatusBadRequest, "currency cannot be empty")
			return
		}
		settings.Currency = currency
	}
	if payload.FirstDayOfWeek != nil {
		if *payload.FirstDayOfWeek < 0 || *payload.FirstDayOfWeek > 6 {
			writeError(w, http.StatusBadRequest, "first_day_of_week must be 0-6")
			return
		}
		settings.FirstDayOfWeek = *payload.FirstDayOfWeek
	}
	if payload.IncomeCategories != nil {
		settings.IncomeCategories = payload.IncomeCategories
	}
	if payload.ExpenseCategories != nil {
		settings.ExpenseCategories = payload.ExpenseCategories
	}
	if n := payload.Notifications; n != nil {
		if n.Enabled != nil {
			settings.Notifications.Enabled = *n.Enabled
		}
		if n.DailyReminderTime != nil {
			if !validReminderTime(*n.DailyReminderTime) {
				writeError(w, http.StatusBadRequest,
					fmt.Sprintf("invalid daily_reminder_time %q, want HH:MM", *n.DailyReminderTime))
				return
			}
			settings.Notifications.DailyReminderTime = *n.DailyReminderTime
		}
		if n.BudgetAlerts != nil {
			settings.Notifications.BudgetAlerts = *n.BudgetAlerts
		}
		if n.LargeExpenseAlerts != nil {
			settings.Notifications.LargeExpenseAlerts = *n.LargeExpenseAlerts
		}
		if n.LargeExpenseThreshold != nil {
			cents, err := core.ParseAmountToCents(*n.LargeExpenseThreshold)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			settings.Notifications.LargeExpenseThreshold = core.Money{Cents: cents}
		}
	}

	if err := s.store.UpdateSettings(r.Context(), settings); err != nil {
		s.writeMutationError(w, r, err)
		return
	}
	writeOK(w, toSettingsDTO(settings))
}

func validReminderTime(v string) bool {
	if len(v) != 5 || v[2] != ':' {
		return false
	}
	hh := v[:2]
	mm := v[3:]
	for _, c := range hh + mm {
		if c < '0' || c > '9' {
			return false
		}
	}
	h := int(hh[0]-'0')*10 + int(hh[1]-'0')
	m := int(mm[0]-'0')*10 + int(mm[1]-'0')
	return h < 24 && m < 60
}
