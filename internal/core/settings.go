package core

// NotificationSettings controls advisory emission. Advisories are
// events handed to the presentation layer, never validation failures.
type NotificationSettings struct {
	Enabled               bool
	DailyReminderTime     string // "HH:MM", local time
	BudgetAlerts          bool
	LargeExpenseAlerts    bool
	LargeExpenseThreshold Money
}

// Settings is the flat configuration surface persisted alongside the
// ledger. Category sets are independent of stored transactions: a
// transaction may reference a category later removed from the set.
type Settings struct {
	Currency          string
	FirstDayOfWeek    int // 0 = Sunday, 1 = Monday
	IncomeCategories  []string
	ExpenseCategories []string
	Notifications     NotificationSettings
}

// CategoriesFor returns the configured category set for a kind.
func (s Settings) CategoriesFor(kind Kind) []string {
	if kind == Income {
		return s.IncomeCategories
	}
	return s.ExpenseCategories
}
