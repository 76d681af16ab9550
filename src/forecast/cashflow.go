package forecast

import (
	"sort"
	"time"

	"github.com/username/tallytrace/backend/src/models"
	"github.com/username/tallytrace/backend/src/utils"
)

type cashflowProjectorImpl struct {
	maxIterations int
}

// NewCashflowProjector creates a CashflowProjector. maxIterations is the
// floor for the per-entry walk bound; long horizons widen it so a daily
// entry still covers the whole projection.
func NewCashflowProjector(maxIterations int) CashflowProjector {
	if maxIterations < 1 {
		maxIterations = DefaultMaxIterations
	}
	return &cashflowProjectorImpl{maxIterations: maxIterations}
}

func (p *cashflowProjectorImpl) horizonGenerator(iterations int) OccurrenceGenerator {
	if iterations < p.maxIterations {
		iterations = p.maxIterations
	}
	return NewOccurrenceGenerator(iterations)
}

// Project builds a month-by-month cash-flow timeline starting at the
// first of reference's month. Each period chains its closing balance into
// the next period's opening. Unposted transactions already recorded for a
// month reduce that month's net separately from the recurring schedule.
func (p *cashflowProjectorImpl) Project(accounts []models.Account, entries []models.BudgetEntry, unposted []models.Transaction, months int, reference time.Time) []models.CashflowPeriod {
	if months < 1 {
		months = 1
	}
	horizonStart := utils.MonthStart(reference)
	horizonEnd := horizonStart.AddDate(0, months, 0)

	opening := 0.0
	for _, account := range accounts {
		if account.IsActive {
			opening += account.Balance
		}
	}

	type monthFlow struct {
		income   float64
		expenses float64
		unposted float64
	}
	buckets := make([]monthFlow, months)

	// One generator pass per entry over the whole horizon, bucketed by
	// month. 31 iterations per month keeps daily cadences covered.
	generator := p.horizonGenerator((months + 1) * 31)
	for _, entry := range entries {
		for _, occurrence := range generator.Generate(entry, horizonStart, horizonEnd.AddDate(0, 0, -1)) {
			idx := monthIndex(horizonStart, occurrence)
			if idx < 0 || idx >= months {
				continue
			}
			if entry.EntryType == models.EntryTypeIncome {
				buckets[idx].income += entry.Amount
			} else {
				buckets[idx].expenses += entry.Amount
			}
		}
	}

	for _, tx := range unposted {
		if tx.IsPosted {
			continue
		}
		txDate := utils.ParseDate(tx.TransactionDate)
		if txDate.IsZero() {
			continue
		}
		idx := monthIndex(horizonStart, txDate)
		if idx < 0 || idx >= months {
			continue
		}
		switch tx.TransactionType {
		case models.TransactionTypeDebit:
			buckets[idx].unposted += tx.Amount
		case models.TransactionTypeCredit:
			buckets[idx].unposted -= tx.Amount
		}
	}

	timeline := make([]models.CashflowPeriod, 0, months)
	for i := 0; i < months; i++ {
		periodStart := horizonStart.AddDate(0, i, 0)
		periodEnd := horizonStart.AddDate(0, i+1, 0)
		net := buckets[i].income - buckets[i].expenses - buckets[i].unposted
		closing := opening + net

		timeline = append(timeline, models.CashflowPeriod{
			PeriodLabel:      periodStart.Format("January 2006"),
			PeriodStart:      utils.FormatDate(periodStart),
			PeriodEnd:        utils.FormatDate(periodEnd),
			OpeningBalance:   round2(opening),
			Income:           round2(buckets[i].income),
			Expenses:         round2(buckets[i].expenses),
			UnpostedExpenses: round2(buckets[i].unposted),
			Net:              round2(net),
			ClosingBalance:   round2(closing),
		})
		opening = closing
	}
	return timeline
}

// monthIndex returns how many whole calendar months date lies after
// horizonStart (which is always a first-of-month).
func monthIndex(horizonStart, date time.Time) int {
	return (date.Year()-horizonStart.Year())*12 + int(date.Month()) - int(horizonStart.Month())
}

// Disposable normalizes every active entry to its monthly equivalent and
// reports income, committed expenses, and the difference.
func (p *cashflowProjectorImpl) Disposable(entries []models.BudgetEntry) models.DisposableIncome {
	var monthlyIncome, monthlyExpenses float64
	for _, entry := range entries {
		if !entry.IsActive {
			continue
		}
		monthly := MonthlyEquivalent(entry.Amount, entry.Cadence)
		if entry.EntryType == models.EntryTypeIncome {
			monthlyIncome += monthly
		} else {
			monthlyExpenses += monthly
		}
	}
	return models.DisposableIncome{
		MonthlyIncome:     round2(monthlyIncome),
		MonthlyExpenses:   round2(monthlyExpenses),
		MonthlyDisposable: round2(monthlyIncome - monthlyExpenses),
	}
}

// Upcoming merges projected entry occurrences with unposted transactions
// over the next days, sorted by due date. Unposted rows keep their raw
// transaction type in EntryType, including transfers.
func (p *cashflowProjectorImpl) Upcoming(entries []models.BudgetEntry, unposted []models.Transaction, days int, reference time.Time) []models.UpcomingItem {
	if days < 1 {
		days = 1
	}
	windowStart := utils.DateOf(reference)
	windowEnd := windowStart.AddDate(0, 0, days)

	items := make([]models.UpcomingItem, 0)
	generator := p.horizonGenerator(days + 1)
	for _, entry := range entries {
		for _, occurrence := range generator.Generate(entry, windowStart, windowEnd) {
			items = append(items, models.UpcomingItem{
				Name:      entry.Name,
				Amount:    round2(entry.Amount),
				DueDate:   utils.FormatDate(occurrence),
				EntryType: string(entry.EntryType),
				Source:    "budget_entry",
				SourceID:  entry.ID,
			})
		}
	}

	for _, tx := range unposted {
		if tx.IsPosted {
			continue
		}
		txDate := utils.ParseDate(tx.TransactionDate)
		if txDate.IsZero() || txDate.Before(windowStart) || txDate.After(windowEnd) {
			continue
		}
		name := tx.Description
		if name == "" {
			name = "Unposted transaction"
		}
		items = append(items, models.UpcomingItem{
			Name:      name,
			Amount:    round2(tx.Amount),
			DueDate:   tx.TransactionDate,
			EntryType: string(tx.TransactionType),
			Source:    "transaction",
			SourceID:  tx.ID,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].DueDate != items[j].DueDate {
			return items[i].DueDate < items[j].DueDate
		}
		if items[i].Source != items[j].Source {
			return items[i].Source < items[j].Source
		}
		return items[i].SourceID < items[j].SourceID
	})
	return items
}
