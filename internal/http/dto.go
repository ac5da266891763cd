package http

import (
	"tally/internal/core"
	"tally/internal/report"
	"tally/internal/trend"
)

// Wire shapes. Amounts travel as decimal strings plus raw cents, so
// clients can render without re-parsing.

type moneyDTO struct {
	Amount string `json:"amount"`
	Cents  int64  `json:"cents"`
}

func toMoneyDTO(m core.Money) moneyDTO {
	return moneyDTO{Amount: m.String(), Cents: m.Cents}
}

type recurrenceDTO struct {
	Every   string `json:"every"`
	EndDate string `json:"end_date,omitempty"`
	Count   int    `json:"count,omitempty"`
}

type transactionDTO struct {
	ID         string         `json:"id"`
	Kind       string         `json:"kind"`
	Date       string         `json:"date"`
	Amount     moneyDTO       `json:"amount"`
	Category   string         `json:"category"`
	Note       string         `json:"note,omitempty"`
	Recurrence *recurrenceDTO `json:"recurrence,omitempty"`
	CreatedAt  string         `json:"created_at"`
}

func toTransactionDTO(tx core.Transaction) transactionDTO {
	dto := transactionDTO{
		ID:        tx.ID,
		Kind:      string(tx.Kind),
		Date:      tx.Date.Format("2006-01-02"),
		Amount:    toMoneyDTO(tx.Amount),
		Category:  tx.Category,
		Note:      tx.Note,
		CreatedAt: tx.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if tx.Recurrence != nil {
		r := &recurrenceDTO{Every: string(tx.Recurrence.Every), Count: tx.Recurrence.Count}
		if !tx.Recurrence.EndDate.IsZero() {
			r.EndDate = tx.Recurrence.EndDate.Format("2006-01-02")
		}
		dto.Recurrence = r
	}
	return dto
}

func toTransactionDTOs(txs []core.Transaction) []transactionDTO {
	out := make([]transactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionDTO(tx))
	}
	return out
}

type budgetDTO struct {
	Category string   `json:"category"`
	Limit    moneyDTO `json:"limit"`
}

func toBudgetDTOs(budgets []core.Budget) []budgetDTO {
	out := make([]budgetDTO, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, budgetDTO{Category: b.Category, Limit: toMoneyDTO(b.Limit)})
	}
	return out
}

type categoryTotalDTO struct {
	Category string   `json:"category"`
	Total    moneyDTO `json:"total"`
	Count    int      `json:"count"`
}

type summaryDTO struct {
	Year              int                `json:"year"`
	Month             int                `json:"month"`
	Label             string             `json:"label"`
	Income            moneyDTO           `json:"income"`
	Expense           moneyDTO           `json:"expense"`
	Balance           moneyDTO           `json:"balance"`
	Recent            []transactionDTO   `json:"recent"`
	ExpenseByCategory []categoryTotalDTO `json:"expense_by_category"`
}

func toSummaryDTO(s report.Summary) summaryDTO {
	dto := summaryDTO{
		Year:    s.Period.Year,
		Month:   s.Period.Month,
		Label:   s.Period.Label(),
		Income:  toMoneyDTO(s.Income),
		Expense: toMoneyDTO(s.Expense),
		Balance: toMoneyDTO(s.Balance),
		Recent:  toTransactionDTOs(s.Recent),
	}
	dto.ExpenseByCategory = make([]categoryTotalDTO, 0, len(s.ExpenseByCategory))
	for _, ct := range s.ExpenseByCategory {
		dto.ExpenseByCategory = append(dto.ExpenseByCategory, categoryTotalDTO{
			Category: ct.Category,
			Total:    toMoneyDTO(ct.Total),
			Count:    ct.Count,
		})
	}
	return dto
}

type budgetStatusDTO struct {
	Category  string   `json:"category"`
	Limit     moneyDTO `json:"limit"`
	Spent     moneyDTO `json:"spent"`
	Remaining moneyDTO `json:"remaining"`
}

func toBudgetStatusDTOs(statuses []report.BudgetStatus) []budgetStatusDTO {
	out := make([]budgetStatusDTO, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, budgetStatusDTO{
			Category:  st.Category,
			Limit:     toMoneyDTO(st.Limit),
			Spent:     toMoneyDTO(st.Spent),
			Remaining: toMoneyDTO(st.Remaining),
		})
	}
	return out
}

type monthPointDTO struct {
	Year    int      `json:"year"`
	Month   int      `json:"month"`
	Label   string   `json:"label"`
	Income  moneyDTO `json:"income"`
	Expense moneyDTO `json:"expense"`
	Savings moneyDTO `json:"savings"`
	Count   int      `json:"count"`
}

func toMonthPointDTOs(points []report.MonthPoint) []monthPointDTO {
	out := make([]monthPointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, monthPointDTO{
			Year:    p.Period.Year,
			Month:   p.Period.Month,
			Label:   p.Period.Label(),
			Income:  toMoneyDTO(p.Income),
			Expense: toMoneyDTO(p.Expense),
			Savings: toMoneyDTO(p.Savings),
			Count:   p.Count,
		})
	}
	return out
}

type categoryShareDTO struct {
	Category string   `json:"category"`
	Total    moneyDTO `json:"total"`
	Percent  float64  `json:"percent"`
}

type analysisDTO struct {
	Kind       string             `json:"kind"`
	Period     string             `json:"period"`
	GrandTotal moneyDTO           `json:"grand_total"`
	Categories []categoryShareDTO `json:"categories"`
}

func toAnalysisDTO(a trend.Analysis) analysisDTO {
	dto := analysisDTO{
		Kind:       string(a.Kind),
		Period:     string(a.Period),
		GrandTotal: toMoneyDTO(a.GrandTotal),
		Categories: make([]categoryShareDTO, 0, len(a.Categories)),
	}
	for _, c := range a.Categories {
		dto.Categories = append(dto.Categories, categoryShareDTO{
			Category: c.Category,
			Total:    toMoneyDTO(c.Total),
			Percent:  c.Percent,
		})
	}
	return dto
}

type trendPointDTO struct {
	Year  int      `json:"year"`
	Month int      `json:"month"`
	Label string   `json:"label"`
	Total moneyDTO `json:"total"`
}

func toTrendPointDTOs(points []trend.TrendPoint) []trendPointDTO {
	out := make([]trendPointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, trendPointDTO{
			Year:  p.Period.Year,
			Month: p.Period.Month,
			Label: p.Label,
			Total: toMoneyDTO(p.Total),
		})
	}
	return out
}

type notificationSettingsDTO struct {
	Enabled               bool     `json:"enabled"`
	DailyReminderTime     string   `json:"daily_reminder_time"`
	BudgetAlerts          bool     `json:"budget_alerts"`
	LargeExpenseAlerts    bool     `json:"large_expense_alerts"`
	LargeExpenseThreshold moneyDTO `json:"large_expense_threshold"`
}

type settingsDTO struct {
	Currency          string                  `json:"currency"`
	FirstDayOfWeek    int                     `json:"first_day_of_week"`
	IncomeCategories  []string                `json:"income_categories"`
	ExpenseCategories []string                `json:"expense_categories"`
	Notifications     notificationSettingsDTO `json:"notifications"`
}

func toSettingsDTO(s core.Settings) settingsDTO {
	return settingsDTO{
		Currency:          s.Currency,
		FirstDayOfWeek:    s.FirstDayOfWeek,
		IncomeCategories:  s.IncomeCategories,
		ExpenseCategories: s.ExpenseCategories,
		Notifications: notificationSettingsDTO{
			Enabled:               s.Notifications.Enabled,
			DailyReminderTime:     s.Notifications.DailyReminderTime,
			BudgetAlerts:          s.Notifications.BudgetAlerts,
			LargeExpenseAlerts:    s.Notifications.LargeExpenseAlerts,
			LargeExpenseThreshold: toMoneyDTO(s.Notifications.LargeExpenseThreshold),
		},
	}
}
