package forecast

import (
	"sort"

	"github.com/username/tallytrace/backend/src/models"
	"github.com/username/tallytrace/backend/src/utils"
)

// DefaultReminderLookaheadDays is the reminder window the aggregator hands
// the scheduler, measured from the input's Now.
const DefaultReminderLookaheadDays = 30

// topCategoryCount caps the ranked category breakdown.
const topCategoryCount = 5

type snapshotAggregatorImpl struct {
	generator         OccurrenceGenerator
	matcher           ActualsMatcher
	scheduler         ReminderScheduler
	reminderLookahead int
}

// NewSnapshotAggregator composes the engine components into the snapshot
// pipeline. reminderLookaheadDays below 1 falls back to the default.
func NewSnapshotAggregator(generator OccurrenceGenerator, matcher ActualsMatcher, scheduler ReminderScheduler, reminderLookaheadDays int) SnapshotAggregator {
	if reminderLookaheadDays < 1 {
		reminderLookaheadDays = DefaultReminderLookaheadDays
	}
	return &snapshotAggregatorImpl{
		generator:         generator,
		matcher:           matcher,
		scheduler:         scheduler,
		reminderLookahead: reminderLookaheadDays,
	}
}

// Aggregate computes the full dashboard snapshot for one reporting period.
// Pure derivation: same input, same snapshot, no I/O and no mutation.
func (a *snapshotAggregatorImpl) Aggregate(input SnapshotInput) models.DashboardSnapshot {
	periodStart := utils.DateOf(input.PeriodStart)
	periodEnd := utils.DateOf(input.PeriodEnd)
	now := utils.DateOf(input.Now)

	// 1. Total balance across active accounts. No currency conversion
	// happens here; the caller pre-filters to one currency or accepts a
	// blended sum.
	totalBalance := 0.0
	for _, account := range input.Accounts {
		if account.IsActive {
			totalBalance += account.Balance
		}
	}

	// 2. Actual totals from posted transactions inside the period.
	// Credits are income, debits are expenses, transfers move money
	// between own accounts and count as neither.
	var actualIncome, actualExpenses float64
	for _, tx := range input.Transactions {
		if !tx.IsPosted {
			continue
		}
		txDate := utils.ParseDate(tx.TransactionDate)
		if txDate.IsZero() || txDate.Before(periodStart) || txDate.After(periodEnd) {
			continue
		}
		switch tx.TransactionType {
		case models.TransactionTypeCredit:
			actualIncome += tx.Amount
		case models.TransactionTypeDebit:
			actualExpenses += tx.Amount
		}
	}
	actualNet := actualIncome - actualExpenses

	// 3. Projected totals and per-entry summaries, restricted to entries
	// in the reporting currency.
	matchedByEntry := a.matcher.Match(input.Transactions, periodStart, periodEnd)
	schedules := make([]models.ScheduleSummary, 0)
	var projectedIncome, projectedExpenses float64
	for _, entry := range input.Entries {
		if !entry.IsActive || entry.Currency != input.ReportingCurrency {
			continue
		}
		occurrences := a.generator.Generate(entry, periodStart, periodEnd)
		forecastTotal := entry.Amount * float64(len(occurrences))
		if entry.EntryType == models.EntryTypeIncome {
			projectedIncome += forecastTotal
		} else {
			projectedExpenses += forecastTotal
		}

		matched := matchedByEntry[entry.ID]
		actualTotal := 0.0
		for _, tx := range matched {
			actualTotal += tx.Amount
		}

		dates := make([]string, 0, len(occurrences))
		for _, occurrence := range occurrences {
			dates = append(dates, utils.FormatDate(occurrence))
		}
		schedules = append(schedules, models.ScheduleSummary{
			EntryID:       entry.ID,
			Name:          entry.Name,
			EntryType:     entry.EntryType,
			Amount:        round2(entry.Amount),
			Currency:      entry.Currency,
			Cadence:       entry.Cadence,
			Occurrences:   dates,
			ForecastTotal: round2(forecastTotal),
			ActualTotal:   round2(actualTotal),
			MatchedCount:  len(matched),
		})
	}
	projectedNet := projectedIncome - projectedExpenses

	// 4. Projected end-of-period balance: today's balance plus the
	// forecasted remainder of the period's net flow beyond what already
	// posted. A forward projection, not a reconciliation.
	projectedEnd := totalBalance + (projectedNet - actualNet)

	// 5. Envelope usage for budget-type allocations with a positive limit.
	envelopes := make([]models.EnvelopeStatus, 0)
	for _, allocation := range input.Allocations {
		if allocation.AllocationType != models.AllocationTypeBudget || !allocation.IsActive {
			continue
		}
		limit := allocation.TargetAmount
		if limit <= 0 {
			limit = allocation.MonthlyTarget
		}
		if limit <= 0 {
			continue
		}
		spent := allocation.CurrentAmount
		remaining := limit - spent
		if remaining < 0 {
			remaining = 0
		}
		envelopes = append(envelopes, models.EnvelopeStatus{
			AllocationID: allocation.ID,
			Name:         allocation.Name,
			Limit:        round2(limit),
			Spent:        round2(spent),
			Remaining:    round2(remaining),
			UsagePct:     round1(utils.ClampFloat(spent/limit*100, 0, 100)),
		})
	}

	// 6. Category breakdown of period debits. Uncategorized spending is
	// excluded from the ranking but stays in the step-2 expense total,
	// which is also the percentage denominator.
	spendByCategory := make(map[int64]float64)
	for _, tx := range input.Transactions {
		if !tx.IsPosted || tx.TransactionType != models.TransactionTypeDebit || tx.CategoryID == nil {
			continue
		}
		txDate := utils.ParseDate(tx.TransactionDate)
		if txDate.IsZero() || txDate.Before(periodStart) || txDate.After(periodEnd) {
			continue
		}
		spendByCategory[*tx.CategoryID] += tx.Amount
	}
	topCategories := make([]models.CategorySpend, 0, len(spendByCategory))
	for categoryID, amount := range spendByCategory {
		pct := 0.0
		if actualExpenses > 0 {
			pct = amount / actualExpenses * 100
		}
		topCategories = append(topCategories, models.CategorySpend{
			CategoryID: categoryID,
			Amount:     round2(amount),
			Percentage: round1(pct),
		})
	}
	sort.Slice(topCategories, func(i, j int) bool {
		if topCategories[i].Amount != topCategories[j].Amount {
			return topCategories[i].Amount > topCategories[j].Amount
		}
		return topCategories[i].CategoryID < topCategories[j].CategoryID
	})
	topCategories = topCategories[:utils.MinInt(len(topCategories), topCategoryCount)]

	// 7. Reminders over the lookahead window from now.
	reminderEnd := now.AddDate(0, 0, a.reminderLookahead)
	reminders := a.scheduler.Schedule(input.Entries, input.Accounts, now, reminderEnd)

	return models.DashboardSnapshot{
		ReferenceDate:     utils.FormatDate(now),
		PeriodStart:       utils.FormatDate(periodStart),
		PeriodEnd:         utils.FormatDate(periodEnd),
		ReportingCurrency: input.ReportingCurrency,
		TotalBalance:      round2(totalBalance),
		Totals: models.PeriodTotals{
			Income:            round2(actualIncome),
			Expenses:          round2(actualExpenses),
			Net:               round2(actualNet),
			ProjectedIncome:   round2(projectedIncome),
			ProjectedExpenses: round2(projectedExpenses),
			ProjectedNet:      round2(projectedNet),
		},
		ProjectedEndBalance: round2(projectedEnd),
		Schedules:           schedules,
		Envelopes:           envelopes,
		TopCategories:       topCategories,
		Reminders:           reminders,
	}
}
