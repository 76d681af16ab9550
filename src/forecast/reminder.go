package forecast

import (
	"sort"
	"time"

	"github.com/username/tallytrace/backend/src/models"
	"github.com/username/tallytrace/backend/src/utils"
)

type reminderSchedulerImpl struct {
	generator OccurrenceGenerator
}

// NewReminderScheduler creates a ReminderScheduler on top of an
// OccurrenceGenerator.
func NewReminderScheduler(generator OccurrenceGenerator) ReminderScheduler {
	return &reminderSchedulerImpl{generator: generator}
}

// Schedule projects every active entry over [windowStart, windowEnd] and
// emits one reminder per occurrence, sorted by occurrence date. The
// reminder date is the occurrence minus the entry's lead time, floored at
// windowStart so a reminder is never reported in the past relative to the
// caller's "now".
func (s *reminderSchedulerImpl) Schedule(entries []models.BudgetEntry, accounts []models.Account, windowStart, windowEnd time.Time) []models.UpcomingReminder {
	windowStart = utils.DateOf(windowStart)
	windowEnd = utils.DateOf(windowEnd)

	accountsByID := make(map[int64]models.Account, len(accounts))
	for _, account := range accounts {
		accountsByID[account.ID] = account
	}

	reminders := make([]models.UpcomingReminder, 0)
	for _, entry := range entries {
		for _, occurrence := range s.generator.Generate(entry, windowStart, windowEnd) {
			reminderDate := occurrence.AddDate(0, 0, -entry.LeadTimeDays)
			if reminderDate.Before(windowStart) {
				reminderDate = windowStart
			}
			daysUntil := int(occurrence.Sub(windowStart).Hours() / 24)
			if daysUntil < 0 {
				daysUntil = 0
			}

			var account *models.Account
			if entry.AccountID != nil {
				if linked, ok := accountsByID[*entry.AccountID]; ok {
					account = &linked
				}
			}

			reminders = append(reminders, models.UpcomingReminder{
				EntryID:        entry.ID,
				Name:           entry.Name,
				EntryType:      entry.EntryType,
				Amount:         round2(entry.Amount),
				Currency:       entry.Currency,
				AccountID:      entry.AccountID,
				OccurrenceDate: utils.FormatDate(occurrence),
				ReminderDate:   utils.FormatDate(reminderDate),
				DaysUntil:      daysUntil,
				IsAutopay:      entry.IsAutopay,
				Risk:           classifyRisk(entry, account),
			})
		}
	}

	sort.SliceStable(reminders, func(i, j int) bool {
		if reminders[i].OccurrenceDate != reminders[j].OccurrenceDate {
			return reminders[i].OccurrenceDate < reminders[j].OccurrenceDate
		}
		return reminders[i].EntryID < reminders[j].EntryID
	})
	return reminders
}

// classifyRisk grades one occurrence against the linked account's current
// balance. The check is static: each reminder is evaluated against today's
// balance independently, so several bills hitting one account in sequence
// can understate the combined risk. An entry with no linked account is
// never danger; without a balance there is nothing to judge.
func classifyRisk(entry models.BudgetEntry, account *models.Account) models.ReminderRisk {
	if account != nil {
		if account.AccountType == models.AccountTypeCredit && account.CreditLimit > 0 {
			if account.Balance+entry.Amount > account.CreditLimit {
				return models.RiskDanger
			}
		} else if account.AccountType != models.AccountTypeCredit {
			if account.Balance-entry.Amount < 0 {
				return models.RiskDanger
			}
		}
	}
	if entry.IsAutopay {
		return models.RiskAutopay
	}
	return models.RiskManual
}
