package forecast

import (
	"time"

	"github.com/username/tallytrace/backend/src/models"
)

// SnapshotInput carries everything the aggregator needs for one reporting
// period. The engine never touches storage; callers load the slices and
// are responsible for scoping them to one entity and, for balances, one
// currency.
type SnapshotInput struct {
	Accounts          []models.Account
	Transactions      []models.Transaction
	Entries           []models.BudgetEntry
	Allocations       []models.Allocation
	PeriodStart       time.Time
	PeriodEnd         time.Time
	Now               time.Time
	ReportingCurrency string
}

// OccurrenceGenerator projects the occurrence dates of a recurring entry
// inside an inclusive date range.
type OccurrenceGenerator interface {
	Generate(entry models.BudgetEntry, rangeStart, rangeEnd time.Time) []time.Time
}

// ActualsMatcher partitions posted transactions by the budget entry they
// were booked against.
type ActualsMatcher interface {
	Match(transactions []models.Transaction, windowStart, windowEnd time.Time) map[int64][]models.Transaction
}

// ReminderScheduler turns projected occurrences into dated, risk-classified
// reminders.
type ReminderScheduler interface {
	Schedule(entries []models.BudgetEntry, accounts []models.Account, windowStart, windowEnd time.Time) []models.UpcomingReminder
}

// SnapshotAggregator computes the dashboard snapshot for one reporting
// period.
type SnapshotAggregator interface {
	Aggregate(input SnapshotInput) models.DashboardSnapshot
}

// CashflowProjector builds the month-by-month timeline and the derived
// monthly-equivalent views.
type CashflowProjector interface {
	Project(accounts []models.Account, entries []models.BudgetEntry, unposted []models.Transaction, months int, reference time.Time) []models.CashflowPeriod
	Disposable(entries []models.BudgetEntry) models.DisposableIncome
	Upcoming(entries []models.BudgetEntry, unposted []models.Transaction, days int, reference time.Time) []models.UpcomingItem
}
