package models

// View models returned by the forecast engine and the dashboard service.
// All dates are ISO strings and all money values are rounded to two
// decimals before they leave the engine.

type ReminderRisk string

const (
	RiskDanger  ReminderRisk = "danger"  // paying would overdraw the account or blow the credit limit
	RiskAutopay ReminderRisk = "autopay" // will pay itself, informational
	RiskManual  ReminderRisk = "manual"  // needs a human to act
)

// ScheduleSummary describes one recurring entry over a reporting window:
// when it fires, what that is worth, and what actually got posted.
type ScheduleSummary struct {
	EntryID       int64     `json:"entry_id"`
	Name          string    `json:"name"`
	EntryType     EntryType `json:"entry_type"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Cadence       Cadence   `json:"cadence"`
	Occurrences   []string  `json:"occurrences"`
	ForecastTotal float64   `json:"forecast_total"`
	ActualTotal   float64   `json:"actual_total"`
	MatchedCount  int       `json:"matched_count"`
}

// UpcomingReminder is one projected occurrence with its payability risk.
type UpcomingReminder struct {
	EntryID        int64        `json:"entry_id"`
	Name           string       `json:"name"`
	EntryType      EntryType    `json:"entry_type"`
	Amount         float64      `json:"amount"`
	Currency       string       `json:"currency"`
	AccountID      *int64       `json:"account_id,omitempty"`
	OccurrenceDate string       `json:"occurrence_date"`
	ReminderDate   string       `json:"reminder_date"`
	DaysUntil      int          `json:"days_until"`
	IsAutopay      bool         `json:"is_autopay"`
	Risk           ReminderRisk `json:"risk"`
}

type PeriodTotals struct {
	Income            float64 `json:"income"`
	Expenses          float64 `json:"expenses"`
	Net               float64 `json:"net"`
	ProjectedIncome   float64 `json:"projected_income"`
	ProjectedExpenses float64 `json:"projected_expenses"`
	ProjectedNet      float64 `json:"projected_net"`
}

// EnvelopeStatus is the consumption state of one budget-type allocation.
type EnvelopeStatus struct {
	AllocationID int64   `json:"allocation_id"`
	Name         string  `json:"name"`
	Limit        float64 `json:"limit"`
	Spent        float64 `json:"spent"`
	Remaining    float64 `json:"remaining"`
	UsagePct     float64 `json:"usage_pct"`
}

// CategorySpend is one slice of the period's expense breakdown. Name is
// resolved by the service layer; the engine only knows the id.
type CategorySpend struct {
	CategoryID int64   `json:"category_id"`
	Name       string  `json:"name,omitempty"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// DashboardSnapshot is the engine's one-call answer for a reporting period.
type DashboardSnapshot struct {
	ReferenceDate       string             `json:"reference_date"`
	PeriodStart         string             `json:"period_start"`
	PeriodEnd           string             `json:"period_end"`
	ReportingCurrency   string             `json:"reporting_currency"`
	TotalBalance        float64            `json:"total_balance"`
	Totals              PeriodTotals       `json:"totals"`
	ProjectedEndBalance float64            `json:"projected_end_balance"`
	Schedules           []ScheduleSummary  `json:"schedules"`
	Envelopes           []EnvelopeStatus   `json:"envelopes"`
	TopCategories       []CategorySpend    `json:"top_categories"`
	Reminders           []UpcomingReminder `json:"reminders"`
}

// CashflowPeriod is one month of the projected timeline. Unposted rows
// already recorded for the month reduce the projected net so they are not
// counted twice against the recurring schedule.
type CashflowPeriod struct {
	PeriodLabel      string  `json:"period_label"` // e.g. "January 2025"
	PeriodStart      string  `json:"period_start"`
	PeriodEnd        string  `json:"period_end"` // exclusive
	OpeningBalance   float64 `json:"opening_balance"`
	Income           float64 `json:"income"`
	Expenses         float64 `json:"expenses"`
	UnpostedExpenses float64 `json:"unposted_expenses"`
	Net              float64 `json:"net"`
	ClosingBalance   float64 `json:"closing_balance"`
}

// DisposableIncome is the monthly-equivalent view of the recurring
// schedule: income minus committed expenses, before discretionary spend.
type DisposableIncome struct {
	MonthlyIncome     float64 `json:"monthly_income"`
	MonthlyExpenses   float64 `json:"monthly_expenses"`
	MonthlyDisposable float64 `json:"monthly_disposable"`
}

// UpcomingItem is one row of the merged upcoming-money feed: projected
// occurrences of recurring entries plus already-recorded unposted
// transactions, both inside the lookahead window. EntryType carries the
// entry direction for schedule rows and the raw transaction type for
// unposted rows.
type UpcomingItem struct {
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	DueDate   string  `json:"due_date"`
	EntryType string  `json:"entry_type"`
	Source    string  `json:"source"` // "budget_entry" or "transaction"
	SourceID  int64   `json:"source_id"`
}

type GoalProgress struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"target_amount"`
	CurrentAmount float64 `json:"current_amount"`
	ProgressPct   float64 `json:"progress_pct"`
	Remaining     float64 `json:"remaining"`
}

// WishlistNextUp is the dashboard's short affordability teaser for the
// highest-priority unpurchased items.
type WishlistNextUp struct {
	ID           int64            `json:"id"`
	Name         string           `json:"name"`
	Cost         float64          `json:"cost"`
	Priority     WishlistPriority `json:"priority"`
	AffordableBy string           `json:"affordable_by"`
}

// WishlistPlanItem is one step of the sequential savings plan: items are
// bought in priority order, each scheduled after the previous one has
// been saved up for.
type WishlistPlanItem struct {
	ItemID                int64   `json:"item_id"`
	Name                  string  `json:"name"`
	EstimatedCost         float64 `json:"estimated_cost"`
	EstimatedPurchaseDate string  `json:"estimated_purchase_date"`
	CumulativeMonths      int     `json:"cumulative_months"`
}

type WishlistPlan struct {
	MonthlyDisposable float64            `json:"monthly_disposable"`
	SavingsRate       float64            `json:"savings_rate"`
	Items             []WishlistPlanItem `json:"items"`
}

// WishlistReadiness is the per-item affordability advisory.
type WishlistReadiness struct {
	ItemID                int64   `json:"item_id"`
	Name                  string  `json:"name"`
	EstimatedCost         float64 `json:"estimated_cost"`
	MonthlyDisposable     float64 `json:"monthly_disposable"`
	SavingsRate           float64 `json:"savings_rate"`
	MonthsNeeded          int     `json:"months_needed"`
	EstimatedPurchaseDate string  `json:"estimated_purchase_date"`
	AffordableNow         bool    `json:"affordable_now"`
}

type AccountBalance struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
}

type BalanceSummary struct {
	Total     float64          `json:"total"`
	ByAccount []AccountBalance `json:"by_account"`
}

// DashboardView is the API-facing composition around the snapshot: every
// number the dashboard page renders, in one response.
type DashboardView struct {
	Snapshot            DashboardSnapshot `json:"snapshot"`
	Balances            BalanceSummary    `json:"balances"`
	UpcomingThisMonth   []UpcomingItem    `json:"upcoming_this_month"`
	MonthlySummary      DisposableIncome  `json:"monthly_summary"`
	ForecastNext3Months []CashflowPeriod  `json:"forecast_next_3_months"`
	GoalsProgress       []GoalProgress    `json:"goals_progress"`
	WishlistNextUp      []WishlistNextUp  `json:"wishlist_next_up"`
}
