package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tallytrace/backend/src/models"
)

func TestProjectChainsMonthlyBalances(t *testing.T) {
	accounts := []models.Account{
		{ID: 1, Balance: 10000, IsActive: true},
		{ID: 2, Balance: 5000, IsActive: false},
	}
	rent := monthlyBill("2025-01-10")
	rent.Amount = 1200
	salary := monthlyBill("2025-01-05")
	salary.ID = 2
	salary.EntryType = models.EntryTypeIncome
	salary.Amount = 3000

	timeline := NewCashflowProjector(DefaultMaxIterations).
		Project(accounts, []models.BudgetEntry{rent, salary}, nil, 3, date(2025, time.January, 15))

	require.Len(t, timeline, 3)
	assert.Equal(t, "January 2025", timeline[0].PeriodLabel)
	assert.Equal(t, "2025-01-01", timeline[0].PeriodStart)
	assert.Equal(t, "2025-02-01", timeline[0].PeriodEnd)
	assert.Equal(t, 10000.0, timeline[0].OpeningBalance)
	assert.Equal(t, 3000.0, timeline[0].Income)
	assert.Equal(t, 1200.0, timeline[0].Expenses)
	assert.Equal(t, 1800.0, timeline[0].Net)
	assert.Equal(t, 11800.0, timeline[0].ClosingBalance)

	assert.Equal(t, "February 2025", timeline[1].PeriodLabel)
	assert.Equal(t, 11800.0, timeline[1].OpeningBalance)
	assert.Equal(t, 13600.0, timeline[1].ClosingBalance)

	assert.Equal(t, "March 2025", timeline[2].PeriodLabel)
	assert.Equal(t, 15400.0, timeline[2].ClosingBalance)
}

func TestProjectUnpostedTransactions(t *testing.T) {
	accounts := []models.Account{{ID: 1, Balance: 1000, IsActive: true}}
	unposted := []models.Transaction{
		{ID: 1, Amount: 200, TransactionType: models.TransactionTypeCredit, TransactionDate: "2025-01-10", IsPosted: false},
		{ID: 2, Amount: 500, TransactionType: models.TransactionTypeDebit, TransactionDate: "2025-02-15", IsPosted: false},
		{ID: 3, Amount: 999, TransactionType: models.TransactionTypeDebit, TransactionDate: "2025-01-05", IsPosted: true},
		{ID: 4, Amount: 50, TransactionType: models.TransactionTypeDebit, TransactionDate: "2025-03-02", IsPosted: false},
		{ID: 5, Amount: 80, TransactionType: models.TransactionTypeTransfer, TransactionDate: "2025-01-12", IsPosted: false},
	}

	timeline := NewCashflowProjector(DefaultMaxIterations).
		Project(accounts, nil, unposted, 2, date(2025, time.January, 1))

	require.Len(t, timeline, 2)
	// a pending credit shows up as negative unposted expense
	assert.Equal(t, -200.0, timeline[0].UnpostedExpenses)
	assert.Equal(t, 200.0, timeline[0].Net)
	assert.Equal(t, 1200.0, timeline[0].ClosingBalance)

	assert.Equal(t, 500.0, timeline[1].UnpostedExpenses)
	assert.Equal(t, -500.0, timeline[1].Net)
	assert.Equal(t, 700.0, timeline[1].ClosingBalance)
}

func TestProjectHonorsOccurrenceBudget(t *testing.T) {
	entry := monthlyBill("2025-01-10")
	entry.EndMode = models.EndModeAfterOccurrences
	entry.MaxOccurrences = intPtr(2)

	timeline := NewCashflowProjector(DefaultMaxIterations).
		Project(nil, []models.BudgetEntry{entry}, nil, 4, date(2025, time.January, 1))

	require.Len(t, timeline, 4)
	assert.Equal(t, 1500.0, timeline[0].Expenses)
	assert.Equal(t, 1500.0, timeline[1].Expenses)
	assert.Zero(t, timeline[2].Expenses)
	assert.Zero(t, timeline[3].Expenses)
	assert.Equal(t, -3000.0, timeline[3].ClosingBalance)
}

func TestProjectDailyCadenceCoversHorizon(t *testing.T) {
	entry := monthlyBill("2025-01-01")
	entry.Cadence = models.CadenceDaily
	entry.Amount = 10

	timeline := NewCashflowProjector(DefaultMaxIterations).
		Project(nil, []models.BudgetEntry{entry}, nil, 2, date(2025, time.January, 1))

	require.Len(t, timeline, 2)
	assert.Equal(t, 310.0, timeline[0].Expenses)
	assert.Equal(t, 280.0, timeline[1].Expenses)
}

func TestProjectMinimumOneMonth(t *testing.T) {
	timeline := NewCashflowProjector(DefaultMaxIterations).
		Project(nil, nil, nil, 0, date(2025, time.January, 15))

	require.Len(t, timeline, 1)
	assert.Equal(t, "January 2025", timeline[0].PeriodLabel)
}

func TestDisposableNormalizesCadences(t *testing.T) {
	entries := []models.BudgetEntry{
		{ID: 1, EntryType: models.EntryTypeIncome, Amount: 30000, Cadence: models.CadenceMonthly, IsActive: true},
		{ID: 2, EntryType: models.EntryTypeIncome, Amount: 12000, Cadence: models.CadenceAnnual, IsActive: true},
		{ID: 3, EntryType: models.EntryTypeExpense, Amount: 3000, Cadence: models.CadenceQuarterly, IsActive: true},
		{ID: 4, EntryType: models.EntryTypeExpense, Amount: 700, Cadence: models.CadenceWeekly, IsActive: true},
		{ID: 5, EntryType: models.EntryTypeExpense, Amount: 9999, Cadence: models.CadenceMonthly, IsActive: false},
	}

	result := NewCashflowProjector(DefaultMaxIterations).Disposable(entries)

	assert.Equal(t, 31000.0, result.MonthlyIncome)
	assert.Equal(t, 4033.33, result.MonthlyExpenses)
	assert.Equal(t, 26966.67, result.MonthlyDisposable)
}

func TestUpcomingMergesEntriesAndUnposted(t *testing.T) {
	rent := monthlyBill("2025-02-01")
	rent.Name = "Rent"
	unposted := []models.Transaction{
		{ID: 7, Description: "Car insurance", Amount: 2500, TransactionType: models.TransactionTypeDebit, TransactionDate: "2025-01-20", IsPosted: false},
		{ID: 3, Amount: 400, TransactionType: models.TransactionTypeCredit, TransactionDate: "2025-01-20", IsPosted: false},
	}

	items := NewCashflowProjector(DefaultMaxIterations).
		Upcoming([]models.BudgetEntry{rent}, unposted, 30, date(2025, time.January, 15))

	require.Len(t, items, 3)
	assert.Equal(t, "Unposted transaction", items[0].Name)
	assert.Equal(t, "credit", items[0].EntryType)
	assert.Equal(t, "transaction", items[0].Source)
	assert.Equal(t, "Car insurance", items[1].Name)
	assert.Equal(t, "Rent", items[2].Name)
	assert.Equal(t, "2025-02-01", items[2].DueDate)
	assert.Equal(t, "expense", items[2].EntryType)
	assert.Equal(t, "budget_entry", items[2].Source)
	assert.Equal(t, int64(1), items[2].SourceID)
}

func TestUpcomingWindowIsInclusive(t *testing.T) {
	unposted := []models.Transaction{
		{ID: 1, Amount: 100, TransactionType: models.TransactionTypeDebit, TransactionDate: "2025-02-14", IsPosted: false},
		{ID: 2, Amount: 100, TransactionType: models.TransactionTypeDebit, TransactionDate: "2025-02-15", IsPosted: false},
		{ID: 3, Amount: 100, TransactionType: models.TransactionTypeDebit, TransactionDate: "2025-01-14", IsPosted: false},
	}

	items := NewCashflowProjector(DefaultMaxIterations).
		Upcoming(nil, unposted, 30, date(2025, time.January, 15))

	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].SourceID)
}

func TestUpcomingSkipsPostedTransactions(t *testing.T) {
	unposted := []models.Transaction{
		{ID: 1, Amount: 100, TransactionType: models.TransactionTypeDebit, TransactionDate: "2025-01-20", IsPosted: true},
	}

	items := NewCashflowProjector(DefaultMaxIterations).
		Upcoming(nil, unposted, 30, date(2025, time.January, 15))

	assert.Empty(t, items)
}

func TestUpcomingTransferKeepsRawType(t *testing.T) {
	unposted := []models.Transaction{
		{ID: 1, Amount: 5000, TransactionType: models.TransactionTypeTransfer, TransactionDate: "2025-01-18", IsPosted: false},
	}

	items := NewCashflowProjector(DefaultMaxIterations).
		Upcoming(nil, unposted, 30, date(2025, time.January, 15))

	require.Len(t, items, 1)
	assert.Equal(t, "transfer", items[0].EntryType)
}
