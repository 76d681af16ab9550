package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/username/tallytrace/backend/src/models"
)

func newTestScheduler() ReminderScheduler {
	return NewReminderScheduler(NewOccurrenceGenerator(DefaultMaxIterations))
}

func TestScheduleLeadTimeAndDaysUntil(t *testing.T) {
	scheduler := newTestScheduler()
	entry := monthlyBill("2025-01-20")
	entry.LeadTimeDays = 3

	reminders := scheduler.Schedule(
		[]models.BudgetEntry{entry}, nil,
		date(2025, time.January, 10), date(2025, time.February, 9),
	)

	assert.Len(t, reminders, 1)
	assert.Equal(t, "2025-01-20", reminders[0].OccurrenceDate)
	assert.Equal(t, "2025-01-17", reminders[0].ReminderDate)
	assert.Equal(t, 10, reminders[0].DaysUntil)
}

func TestScheduleReminderDateNeverBeforeWindowStart(t *testing.T) {
	scheduler := newTestScheduler()
	entry := monthlyBill("2025-01-12")
	entry.LeadTimeDays = 7

	reminders := scheduler.Schedule(
		[]models.BudgetEntry{entry}, nil,
		date(2025, time.January, 10), date(2025, time.February, 9),
	)

	assert.Len(t, reminders, 1)
	// Jan 12 minus 7 days is in the past; the reminder clamps to "now".
	assert.Equal(t, "2025-01-10", reminders[0].ReminderDate)
	assert.Equal(t, 2, reminders[0].DaysUntil)
}

func TestScheduleSortedByOccurrenceDate(t *testing.T) {
	scheduler := newTestScheduler()
	rent := monthlyBill("2025-01-25")
	rent.ID = 1
	rent.Name = "Rent"
	salary := monthlyBill("2025-01-05")
	salary.ID = 2
	salary.Name = "Salary"
	salary.EntryType = models.EntryTypeIncome

	reminders := scheduler.Schedule(
		[]models.BudgetEntry{rent, salary}, nil,
		date(2025, time.January, 1), date(2025, time.January, 31),
	)

	assert.Len(t, reminders, 2)
	assert.Equal(t, "Salary", reminders[0].Name)
	assert.Equal(t, "Rent", reminders[1].Name)
}

func TestScheduleOverdraftRisk(t *testing.T) {
	scheduler := newTestScheduler()
	account := models.Account{ID: 7, AccountType: models.AccountTypeChecking, Balance: 100, IsActive: true}
	entry := monthlyBill("2025-01-15")
	entry.Amount = 150
	entry.AccountID = int64Ptr(7)

	reminders := scheduler.Schedule(
		[]models.BudgetEntry{entry}, []models.Account{account},
		date(2025, time.January, 1), date(2025, time.January, 31),
	)

	assert.Len(t, reminders, 1)
	assert.Equal(t, models.RiskDanger, reminders[0].Risk)
}

func TestScheduleCreditLimitRisk(t *testing.T) {
	account := models.Account{ID: 7, AccountType: models.AccountTypeCredit, Balance: 500, CreditLimit: 1000, IsActive: true}

	tests := []struct {
		name   string
		amount float64
		want   models.ReminderRisk
	}{
		{name: "charge exceeding the limit is danger", amount: 600, want: models.RiskDanger},
		{name: "charge within the limit falls through", amount: 400, want: models.RiskManual},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduler := newTestScheduler()
			entry := monthlyBill("2025-01-15")
			entry.Amount = tt.amount
			entry.AccountID = int64Ptr(7)

			reminders := scheduler.Schedule(
				[]models.BudgetEntry{entry}, []models.Account{account},
				date(2025, time.January, 1), date(2025, time.January, 31),
			)

			assert.Len(t, reminders, 1)
			assert.Equal(t, tt.want, reminders[0].Risk)
		})
	}
}

func TestScheduleCreditAccountWithoutLimitSkipsBalanceCheck(t *testing.T) {
	scheduler := newTestScheduler()
	account := models.Account{ID: 7, AccountType: models.AccountTypeCredit, Balance: 5000, CreditLimit: 0, IsActive: true}
	entry := monthlyBill("2025-01-15")
	entry.Amount = 100000
	entry.AccountID = int64Ptr(7)
	entry.IsAutopay = true

	reminders := scheduler.Schedule(
		[]models.BudgetEntry{entry}, []models.Account{account},
		date(2025, time.January, 1), date(2025, time.January, 31),
	)

	assert.Len(t, reminders, 1)
	assert.Equal(t, models.RiskAutopay, reminders[0].Risk)
}

func TestScheduleNoLinkedAccountIsNeverDanger(t *testing.T) {
	scheduler := newTestScheduler()
	entry := monthlyBill("2025-01-15")
	entry.Amount = 1e9

	reminders := scheduler.Schedule(
		[]models.BudgetEntry{entry}, nil,
		date(2025, time.January, 1), date(2025, time.January, 31),
	)

	assert.Len(t, reminders, 1)
	assert.Equal(t, models.RiskManual, reminders[0].Risk)
}

func TestScheduleDanglingAccountLinkIsNeverDanger(t *testing.T) {
	scheduler := newTestScheduler()
	entry := monthlyBill("2025-01-15")
	entry.AccountID = int64Ptr(404)
	entry.IsAutopay = true

	reminders := scheduler.Schedule(
		[]models.BudgetEntry{entry}, nil,
		date(2025, time.January, 1), date(2025, time.January, 31),
	)

	assert.Len(t, reminders, 1)
	assert.Equal(t, models.RiskAutopay, reminders[0].Risk)
}

func TestScheduleDangerTakesPrecedenceOverAutopay(t *testing.T) {
	scheduler := newTestScheduler()
	account := models.Account{ID: 7, AccountType: models.AccountTypeSavings, Balance: 10, IsActive: true}
	entry := monthlyBill("2025-01-15")
	entry.Amount = 500
	entry.AccountID = int64Ptr(7)
	entry.IsAutopay = true

	reminders := scheduler.Schedule(
		[]models.BudgetEntry{entry}, []models.Account{account},
		date(2025, time.January, 1), date(2025, time.January, 31),
	)

	assert.Len(t, reminders, 1)
	assert.Equal(t, models.RiskDanger, reminders[0].Risk)
}

func TestScheduleMultipleOccurrencesEvaluatedIndependently(t *testing.T) {
	scheduler := newTestScheduler()
	account := models.Account{ID: 7, AccountType: models.AccountTypeChecking, Balance: 120, IsActive: true}
	entry := monthlyBill("2025-01-05")
	entry.Cadence = models.CadenceWeekly
	entry.Amount = 100
	entry.AccountID = int64Ptr(7)

	reminders := scheduler.Schedule(
		[]models.BudgetEntry{entry}, []models.Account{account},
		date(2025, time.January, 1), date(2025, time.January, 31),
	)

	// Static check: every occurrence sees today's balance of 120, so none
	// is danger even though paying all four would overdraw.
	assert.Len(t, reminders, 4)
	for _, reminder := range reminders {
		assert.Equal(t, models.RiskManual, reminder.Risk)
	}
}
