package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tallytrace/backend/src/models"
)

func newTestAggregator() SnapshotAggregator {
	generator := NewOccurrenceGenerator(DefaultMaxIterations)
	return NewSnapshotAggregator(
		generator,
		NewActualsMatcher(),
		NewReminderScheduler(generator),
		DefaultReminderLookaheadDays,
	)
}

func januaryInput() SnapshotInput {
	rent := monthlyBill("2025-01-20")
	rent.ID = 1
	rent.Name = "Rent"
	rent.Amount = 12000
	salary := monthlyBill("2025-01-25")
	salary.ID = 2
	salary.Name = "Salary"
	salary.EntryType = models.EntryTypeIncome
	salary.Amount = 50000

	return SnapshotInput{
		Accounts: []models.Account{
			{ID: 1, Name: "Checking", AccountType: models.AccountTypeChecking, Balance: 30000, Currency: "PHP", IsActive: true},
			{ID: 2, Name: "Savings", AccountType: models.AccountTypeSavings, Balance: 70000, Currency: "PHP", IsActive: true},
			{ID: 3, Name: "Old wallet", AccountType: models.AccountTypeEWallet, Balance: 999, Currency: "PHP", IsActive: false},
		},
		Transactions: []models.Transaction{
			{ID: 1, AccountID: int64Ptr(1), CategoryID: int64Ptr(5), Amount: 2500, TransactionType: models.TransactionTypeDebit, TransactionDate: "2025-01-10", IsPosted: true},
			{ID: 2, AccountID: int64Ptr(1), BudgetEntryID: int64Ptr(1), Amount: 12000, TransactionType: models.TransactionTypeDebit, TransactionDate: "2025-01-20", IsPosted: true},
			{ID: 3, AccountID: int64Ptr(1), Amount: 1000, TransactionType: models.TransactionTypeCredit, TransactionDate: "2025-01-12", IsPosted: true},
			// unposted rows and out-of-period rows must not count
			{ID: 4, AccountID: int64Ptr(1), Amount: 800, TransactionType: models.TransactionTypeDebit, TransactionDate: "2025-01-28", IsPosted: false},
			{ID: 5, AccountID: int64Ptr(1), Amount: 700, TransactionType: models.TransactionTypeDebit, TransactionDate: "2024-12-28", IsPosted: true},
		},
		Entries: []models.BudgetEntry{rent, salary},
		Allocations: []models.Allocation{
			{ID: 1, Name: "Groceries", AllocationType: models.AllocationTypeBudget, MonthlyTarget: 8000, CurrentAmount: 6000, IsActive: true},
			{ID: 2, Name: "Laptop fund", AllocationType: models.AllocationTypeGoal, TargetAmount: 60000, CurrentAmount: 15000, IsActive: true},
		},
		PeriodStart:       date(2025, time.January, 1),
		PeriodEnd:         date(2025, time.January, 31),
		Now:               date(2025, time.January, 15),
		ReportingCurrency: "PHP",
	}
}

func TestAggregateTotalBalanceSkipsInactiveAccounts(t *testing.T) {
	snapshot := newTestAggregator().Aggregate(januaryInput())
	assert.Equal(t, 100000.0, snapshot.TotalBalance)
}

func TestAggregateActualTotals(t *testing.T) {
	snapshot := newTestAggregator().Aggregate(januaryInput())

	assert.Equal(t, 1000.0, snapshot.Totals.Income)
	assert.Equal(t, 14500.0, snapshot.Totals.Expenses)
	assert.Equal(t, -13500.0, snapshot.Totals.Net)
}

func TestAggregateProjectedTotalsAndEndBalance(t *testing.T) {
	snapshot := newTestAggregator().Aggregate(januaryInput())

	assert.Equal(t, 50000.0, snapshot.Totals.ProjectedIncome)
	assert.Equal(t, 12000.0, snapshot.Totals.ProjectedExpenses)
	assert.Equal(t, 38000.0, snapshot.Totals.ProjectedNet)
	// totalBalance + (projectedNet - actualNet) = 100000 + (38000 - -13500)
	assert.Equal(t, 151500.0, snapshot.ProjectedEndBalance)
}

func TestAggregateProjectionsFilterByCurrency(t *testing.T) {
	input := januaryInput()
	input.Entries[1].Currency = "USD" // salary drops out of the PHP projection

	snapshot := newTestAggregator().Aggregate(input)

	assert.Equal(t, 0.0, snapshot.Totals.ProjectedIncome)
	assert.Equal(t, 12000.0, snapshot.Totals.ProjectedExpenses)
	assert.Len(t, snapshot.Schedules, 1)
	assert.Equal(t, "Rent", snapshot.Schedules[0].Name)
}

func TestAggregateScheduleSummaries(t *testing.T) {
	snapshot := newTestAggregator().Aggregate(januaryInput())

	require.Len(t, snapshot.Schedules, 2)
	rent := snapshot.Schedules[0]
	assert.Equal(t, int64(1), rent.EntryID)
	assert.Equal(t, []string{"2025-01-20"}, rent.Occurrences)
	assert.Equal(t, 12000.0, rent.ForecastTotal)
	assert.Equal(t, 12000.0, rent.ActualTotal)
	assert.Equal(t, 1, rent.MatchedCount)

	salary := snapshot.Schedules[1]
	assert.Equal(t, 50000.0, salary.ForecastTotal)
	assert.Zero(t, salary.ActualTotal)
	assert.Zero(t, salary.MatchedCount)
}

func TestAggregateEnvelopes(t *testing.T) {
	snapshot := newTestAggregator().Aggregate(januaryInput())

	require.Len(t, snapshot.Envelopes, 1)
	envelope := snapshot.Envelopes[0]
	assert.Equal(t, "Groceries", envelope.Name)
	assert.Equal(t, 8000.0, envelope.Limit)
	assert.Equal(t, 6000.0, envelope.Spent)
	assert.Equal(t, 2000.0, envelope.Remaining)
	assert.Equal(t, 75.0, envelope.UsagePct)
}

func TestAggregateEnvelopeOverspendClampsAtZeroAndHundred(t *testing.T) {
	input := januaryInput()
	input.Allocations = []models.Allocation{
		{ID: 1, Name: "Dining", AllocationType: models.AllocationTypeBudget, TargetAmount: 1000, CurrentAmount: 1500, IsActive: true},
	}

	snapshot := newTestAggregator().Aggregate(input)

	require.Len(t, snapshot.Envelopes, 1)
	assert.Equal(t, 0.0, snapshot.Envelopes[0].Remaining)
	assert.Equal(t, 100.0, snapshot.Envelopes[0].UsagePct)
}

func TestAggregateEnvelopeWithoutLimitIsExcluded(t *testing.T) {
	input := januaryInput()
	input.Allocations = []models.Allocation{
		{ID: 1, Name: "Misc", AllocationType: models.AllocationTypeBudget, CurrentAmount: 300, IsActive: true},
	}

	snapshot := newTestAggregator().Aggregate(input)

	assert.Empty(t, snapshot.Envelopes)
}

func TestAggregateCategoryBreakdownPercentages(t *testing.T) {
	input := januaryInput()
	input.Entries = nil
	input.Transactions = []models.Transaction{
		{ID: 1, CategoryID: int64Ptr(1), Amount: 300, TransactionType: models.TransactionTypeDebit, TransactionDate: "2025-01-05", IsPosted: true},
		{ID: 2, CategoryID: int64Ptr(2), Amount: 200, TransactionType: models.TransactionTypeDebit, TransactionDate: "2025-01-06", IsPosted: true},
		{ID: 3, CategoryID: int64Ptr(3), Amount: 100, TransactionType: models.TransactionTypeDebit, TransactionDate: "2025-01-07", IsPosted: true},
	}

	snapshot := newTestAggregator().Aggregate(input)

	require.Len(t, snapshot.TopCategories, 3)
	assert.Equal(t, 50.0, snapshot.TopCategories[0].Percentage)
	assert.Equal(t, 33.3, snapshot.TopCategories[1].Percentage)
	assert.Equal(t, 16.7, snapshot.TopCategories[2].Percentage)
	assert.Equal(t, int64(1), snapshot.TopCategories[0].CategoryID)
}

func TestAggregateCategoryBreakdownTopFiveOnly(t *testing.T) {
	input := januaryInput()
	input.Entries = nil
	input.Transactions = nil
	for i := int64(1); i <= 7; i++ {
		input.Transactions = append(input.Transactions, models.Transaction{
			ID:              i,
			CategoryID:      int64Ptr(i),
			Amount:          float64(i * 10),
			TransactionType: models.TransactionTypeDebit,
			TransactionDate: "2025-01-10",
			IsPosted:        true,
		})
	}

	snapshot := newTestAggregator().Aggregate(input)

	require.Len(t, snapshot.TopCategories, 5)
	// largest spender first, smallest two dropped
	assert.Equal(t, int64(7), snapshot.TopCategories[0].CategoryID)
	assert.Equal(t, int64(3), snapshot.TopCategories[4].CategoryID)
}

func TestAggregateUncategorizedStaysInDenominator(t *testing.T) {
	input := januaryInput()
	input.Entries = nil
	input.Transactions = []models.Transaction{
		{ID: 1, CategoryID: int64Ptr(1), Amount: 300, TransactionType: models.TransactionTypeDebit, TransactionDate: "2025-01-05", IsPosted: true},
		{ID: 2, Amount: 300, TransactionType: models.TransactionTypeDebit, TransactionDate: "2025-01-06", IsPosted: true},
	}

	snapshot := newTestAggregator().Aggregate(input)

	assert.Equal(t, 600.0, snapshot.Totals.Expenses)
	require.Len(t, snapshot.TopCategories, 1)
	assert.Equal(t, 50.0, snapshot.TopCategories[0].Percentage)
}

func TestAggregateIncludesReminders(t *testing.T) {
	snapshot := newTestAggregator().Aggregate(januaryInput())

	// Now is Jan 15; both entries fire inside the 30-day lookahead.
	require.Len(t, snapshot.Reminders, 2)
	assert.Equal(t, "2025-01-20", snapshot.Reminders[0].OccurrenceDate)
	assert.Equal(t, "2025-01-25", snapshot.Reminders[1].OccurrenceDate)
}

func TestAggregateIsDeterministic(t *testing.T) {
	aggregator := newTestAggregator()
	input := januaryInput()

	first := aggregator.Aggregate(input)
	second := aggregator.Aggregate(input)

	assert.Equal(t, first, second)
}

func TestAggregateEmptyInput(t *testing.T) {
	snapshot := newTestAggregator().Aggregate(SnapshotInput{
		PeriodStart:       date(2025, time.January, 1),
		PeriodEnd:         date(2025, time.January, 31),
		Now:               date(2025, time.January, 15),
		ReportingCurrency: "PHP",
	})

	assert.Zero(t, snapshot.TotalBalance)
	assert.NotNil(t, snapshot.Schedules)
	assert.NotNil(t, snapshot.Envelopes)
	assert.NotNil(t, snapshot.TopCategories)
	assert.NotNil(t, snapshot.Reminders)
	assert.Empty(t, snapshot.Schedules)
}
