// backend/src/services/dashboard_service.go
package services

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/tallytrace/backend/src/config"
	"github.com/username/tallytrace/backend/src/database"
	"github.com/username/tallytrace/backend/src/forecast"
	"github.com/username/tallytrace/backend/src/logger"
	"github.com/username/tallytrace/backend/src/models"
	"github.com/username/tallytrace/backend/src/utils"
)

const (
	// Cache keys all start with the entity prefix so invalidation can sweep
	// every derived result for one entity in a single pass.
	ckSnapshot   = "entity_%d_snapshot_%s_%s_%s_%s"
	ckDashboard  = "entity_%d_dashboard_%s"
	ckCashflow   = "entity_%d_cashflow_%d_%s"
	ckUpcoming   = "entity_%d_upcoming_%d_%s"
	ckReminders  = "entity_%d_reminders_%d_%s"
	ckDisposable = "entity_%d_disposable"
	ckGoals      = "entity_%d_goals"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute

	// savingsRateFactor assumes half of disposable income goes to wishlist
	// savings.
	savingsRateFactor = 0.5
	// unaffordableMonths is the sentinel horizon when there is no savings
	// capacity at all.
	unaffordableMonths = 9999

	dashboardUpcomingDays   = 30
	dashboardForecastMonths = 3
	wishlistNextUpCount     = 3
)

type dashboardServiceImpl struct {
	aggregator  forecast.SnapshotAggregator
	projector   forecast.CashflowProjector
	reminders   forecast.ReminderScheduler
	reportCache *cache.Cache
}

func NewDashboardService(
	aggregator forecast.SnapshotAggregator,
	projector forecast.CashflowProjector,
	reminders forecast.ReminderScheduler,
	reportCache *cache.Cache,
) DashboardService {
	return &dashboardServiceImpl{
		aggregator:  aggregator,
		projector:   projector,
		reminders:   reminders,
		reportCache: reportCache,
	}
}

func (s *dashboardServiceImpl) GetSnapshot(entityID int64, periodStart, periodEnd, now time.Time, currency string) (*models.DashboardSnapshot, error) {
	if currency == "" {
		currency = resolveCurrency(entityID)
	}
	cacheKey := fmt.Sprintf(ckSnapshot, entityID, utils.FormatDate(periodStart), utils.FormatDate(periodEnd), utils.FormatDate(now), currency)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for snapshot", "entityID", entityID)
		return cached.(*models.DashboardSnapshot), nil
	}
	logger.L.Info("Cache miss for snapshot, computing", "entityID", entityID, "periodStart", utils.FormatDate(periodStart))

	accounts, err := fetchAccounts(entityID)
	if err != nil {
		return nil, err
	}
	transactions, err := fetchTransactions(entityID)
	if err != nil {
		return nil, err
	}
	entries, err := fetchBudgetEntries(entityID)
	if err != nil {
		return nil, err
	}
	allocations, err := fetchAllocations(entityID)
	if err != nil {
		return nil, err
	}
	categories, err := fetchCategories(entityID)
	if err != nil {
		return nil, err
	}

	snapshot := s.aggregator.Aggregate(forecast.SnapshotInput{
		Accounts:          accounts,
		Transactions:      transactions,
		Entries:           entries,
		Allocations:       allocations,
		PeriodStart:       periodStart,
		PeriodEnd:         periodEnd,
		Now:               now,
		ReportingCurrency: currency,
	})
	fillCategoryNames(snapshot.TopCategories, categories)

	s.reportCache.Set(cacheKey, &snapshot, DefaultCacheExpiration)
	return &snapshot, nil
}

func (s *dashboardServiceImpl) GetDashboard(entityID int64, now time.Time) (*models.DashboardView, error) {
	cacheKey := fmt.Sprintf(ckDashboard, entityID, utils.FormatDate(now))
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for dashboard", "entityID", entityID)
		return cached.(*models.DashboardView), nil
	}
	logger.L.Info("Cache miss for dashboard, computing", "entityID", entityID)

	currency := resolveCurrency(entityID)
	periodStart := utils.MonthStart(now)
	periodEnd := periodStart.AddDate(0, 1, 0).AddDate(0, 0, -1)

	snapshot, err := s.GetSnapshot(entityID, periodStart, periodEnd, now, currency)
	if err != nil {
		return nil, err
	}

	accounts, err := fetchAccounts(entityID)
	if err != nil {
		return nil, err
	}
	entries, err := fetchBudgetEntries(entityID)
	if err != nil {
		return nil, err
	}
	unposted, err := fetchUnpostedTransactions(entityID)
	if err != nil {
		return nil, err
	}
	allocations, err := fetchAllocations(entityID)
	if err != nil {
		return nil, err
	}
	wishlistItems, err := fetchWishlistItems(entityID, true)
	if err != nil {
		return nil, err
	}

	disposable := s.projector.Disposable(entries)
	view := &models.DashboardView{
		Snapshot:            *snapshot,
		Balances:            balanceSummary(accounts),
		UpcomingThisMonth:   s.projector.Upcoming(entries, unposted, dashboardUpcomingDays, now),
		MonthlySummary:      disposable,
		ForecastNext3Months: s.projector.Project(accounts, entries, unposted, dashboardForecastMonths, now),
		GoalsProgress:       goalsProgress(allocations),
		WishlistNextUp:      wishlistNextUp(wishlistItems, disposable.MonthlyDisposable, now, wishlistNextUpCount),
	}

	s.reportCache.Set(cacheKey, view, DefaultCacheExpiration)
	return view, nil
}

func (s *dashboardServiceImpl) GetCashflow(entityID int64, months int, reference time.Time) ([]models.CashflowPeriod, error) {
	cacheKey := fmt.Sprintf(ckCashflow, entityID, months, utils.FormatDate(utils.MonthStart(reference)))
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for cashflow", "entityID", entityID, "months", months)
		return cached.([]models.CashflowPeriod), nil
	}

	accounts, err := fetchAccounts(entityID)
	if err != nil {
		return nil, err
	}
	entries, err := fetchBudgetEntries(entityID)
	if err != nil {
		return nil, err
	}
	unposted, err := fetchUnpostedTransactions(entityID)
	if err != nil {
		return nil, err
	}

	timeline := s.projector.Project(accounts, entries, unposted, months, reference)
	s.reportCache.Set(cacheKey, timeline, DefaultCacheExpiration)
	return timeline, nil
}

func (s *dashboardServiceImpl) GetUpcoming(entityID int64, days int, reference time.Time) ([]models.UpcomingItem, error) {
	cacheKey := fmt.Sprintf(ckUpcoming, entityID, days, utils.FormatDate(reference))
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for upcoming items", "entityID", entityID, "days", days)
		return cached.([]models.UpcomingItem), nil
	}

	entries, err := fetchBudgetEntries(entityID)
	if err != nil {
		return nil, err
	}
	unposted, err := fetchUnpostedTransactions(entityID)
	if err != nil {
		return nil, err
	}

	items := s.projector.Upcoming(entries, unposted, days, reference)
	s.reportCache.Set(cacheKey, items, DefaultCacheExpiration)
	return items, nil
}

func (s *dashboardServiceImpl) GetReminders(entityID int64, days int, reference time.Time) ([]models.UpcomingReminder, error) {
	cacheKey := fmt.Sprintf(ckReminders, entityID, days, utils.FormatDate(reference))
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for reminders", "entityID", entityID, "days", days)
		return cached.([]models.UpcomingReminder), nil
	}

	entries, err := fetchBudgetEntries(entityID)
	if err != nil {
		return nil, err
	}
	accounts, err := fetchAccounts(entityID)
	if err != nil {
		return nil, err
	}

	reminders := s.reminders.Schedule(entries, accounts, reference, reference.AddDate(0, 0, days))
	s.reportCache.Set(cacheKey, reminders, DefaultCacheExpiration)
	return reminders, nil
}

func (s *dashboardServiceImpl) GetDisposable(entityID int64) (models.DisposableIncome, error) {
	cacheKey := fmt.Sprintf(ckDisposable, entityID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(models.DisposableIncome), nil
	}

	entries, err := fetchBudgetEntries(entityID)
	if err != nil {
		return models.DisposableIncome{}, err
	}

	result := s.projector.Disposable(entries)
	s.reportCache.Set(cacheKey, result, DefaultCacheExpiration)
	return result, nil
}

func (s *dashboardServiceImpl) GetGoalsProgress(entityID int64) ([]models.GoalProgress, error) {
	cacheKey := fmt.Sprintf(ckGoals, entityID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.([]models.GoalProgress), nil
	}

	allocations, err := fetchAllocations(entityID)
	if err != nil {
		return nil, err
	}

	progress := goalsProgress(allocations)
	s.reportCache.Set(cacheKey, progress, DefaultCacheExpiration)
	return progress, nil
}

func (s *dashboardServiceImpl) GetWishlistNextUp(entityID int64, now time.Time) ([]models.WishlistNextUp, error) {
	disposable, err := s.GetDisposable(entityID)
	if err != nil {
		return nil, err
	}
	items, err := fetchWishlistItems(entityID, true)
	if err != nil {
		return nil, err
	}
	return wishlistNextUp(items, disposable.MonthlyDisposable, now, wishlistNextUpCount), nil
}

// GetWishlistPlan schedules every unpurchased item sequentially: each item is
// bought after the previous one has been saved up for.
func (s *dashboardServiceImpl) GetWishlistPlan(entityID int64, now time.Time) (*models.WishlistPlan, error) {
	disposable, err := s.GetDisposable(entityID)
	if err != nil {
		return nil, err
	}
	items, err := fetchWishlistItems(entityID, true)
	if err != nil {
		return nil, err
	}

	savingsRate := math.Max(disposable.MonthlyDisposable*savingsRateFactor, 0.01)
	cumulativeMonths := 0
	planItems := make([]models.WishlistPlanItem, 0, len(items))
	for _, item := range items {
		monthsNeeded := int(math.Ceil(item.EstimatedCost / savingsRate))
		cumulativeMonths += monthsNeeded
		planItems = append(planItems, models.WishlistPlanItem{
			ItemID:                item.ID,
			Name:                  item.Name,
			EstimatedCost:         item.EstimatedCost,
			EstimatedPurchaseDate: utils.FormatDate(now.AddDate(0, 0, cumulativeMonths*30)),
			CumulativeMonths:      cumulativeMonths,
		})
	}

	return &models.WishlistPlan{
		MonthlyDisposable: disposable.MonthlyDisposable,
		SavingsRate:       utils.RoundFloat(savingsRate, 2),
		Items:             planItems,
	}, nil
}

// GetWishlistReadiness answers "when can I afford this item" for one item.
// Unlike the plan, the savings rate here is not floored: with no disposable
// income the item is simply unaffordable.
func (s *dashboardServiceImpl) GetWishlistReadiness(entityID, itemID int64, now time.Time) (*models.WishlistReadiness, error) {
	item, err := fetchWishlistItem(entityID, itemID)
	if err != nil {
		return nil, err
	}
	disposable, err := s.GetDisposable(entityID)
	if err != nil {
		return nil, err
	}

	savingsRate := disposable.MonthlyDisposable * savingsRateFactor
	monthsNeeded := unaffordableMonths
	affordableNow := false
	if savingsRate > 0 {
		monthsNeeded = int(math.Ceil(item.EstimatedCost / savingsRate))
		affordableNow = item.EstimatedCost <= disposable.MonthlyDisposable
	}

	return &models.WishlistReadiness{
		ItemID:                item.ID,
		Name:                  item.Name,
		EstimatedCost:         item.EstimatedCost,
		MonthlyDisposable:     disposable.MonthlyDisposable,
		SavingsRate:           utils.RoundFloat(savingsRate, 2),
		MonthsNeeded:          monthsNeeded,
		EstimatedPurchaseDate: utils.FormatDate(now.AddDate(0, 0, monthsNeeded*30)),
		AffordableNow:         affordableNow,
	}, nil
}

// InvalidateEntityCache clears every cached result for an entity. Unscoped
// results blend all entities, so those are swept too.
func (s *dashboardServiceImpl) InvalidateEntityCache(entityID int64) {
	prefixes := []string{fmt.Sprintf("entity_%d_", entityID)}
	if entityID != 0 {
		prefixes = append(prefixes, "entity_0_")
	}
	for key := range s.reportCache.Items() {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				s.reportCache.Delete(key)
				break
			}
		}
	}
	logger.L.Info("Invalidated caches for entity", "entityID", entityID)
}

// --- derivation helpers ---

func balanceSummary(accounts []models.Account) models.BalanceSummary {
	total := 0.0
	byAccount := make([]models.AccountBalance, 0, len(accounts))
	for _, account := range accounts {
		if !account.IsActive {
			continue
		}
		total += account.Balance
		byAccount = append(byAccount, models.AccountBalance{
			ID:       account.ID,
			Name:     account.Name,
			Balance:  utils.RoundFloat(account.Balance, 2),
			Currency: account.Currency,
		})
	}
	return models.BalanceSummary{
		Total:     utils.RoundFloat(total, 2),
		ByAccount: byAccount,
	}
}

func goalsProgress(allocations []models.Allocation) []models.GoalProgress {
	progress := make([]models.GoalProgress, 0)
	for _, allocation := range allocations {
		if allocation.AllocationType != models.AllocationTypeGoal || !allocation.IsActive {
			continue
		}
		pct := 0.0
		remaining := 0.0
		if allocation.TargetAmount > 0 {
			pct = utils.RoundFloat(allocation.CurrentAmount/allocation.TargetAmount*100, 1)
			remaining = utils.RoundFloat(math.Max(allocation.TargetAmount-allocation.CurrentAmount, 0), 2)
		}
		progress = append(progress, models.GoalProgress{
			ID:            allocation.ID,
			Name:          allocation.Name,
			TargetAmount:  allocation.TargetAmount,
			CurrentAmount: allocation.CurrentAmount,
			ProgressPct:   pct,
			Remaining:     remaining,
		})
	}
	return progress
}

func wishlistNextUp(items []models.WishlistItem, monthlyDisposable float64, now time.Time, limit int) []models.WishlistNextUp {
	savingsRate := math.Max(monthlyDisposable*savingsRateFactor, 0.01)
	nextUp := make([]models.WishlistNextUp, 0, limit)
	for _, item := range items {
		if len(nextUp) >= limit {
			break
		}
		monthsNeeded := int(math.Ceil(item.EstimatedCost / savingsRate))
		nextUp = append(nextUp, models.WishlistNextUp{
			ID:           item.ID,
			Name:         item.Name,
			Cost:         item.EstimatedCost,
			Priority:     item.Priority,
			AffordableBy: utils.FormatDate(now.AddDate(0, 0, monthsNeeded*30)),
		})
	}
	return nextUp
}

func fillCategoryNames(spends []models.CategorySpend, categories []models.Category) {
	if len(spends) == 0 {
		return
	}
	names := make(map[int64]string, len(categories))
	for _, category := range categories {
		names[category.ID] = category.Name
	}
	for i := range spends {
		spends[i].Name = names[spends[i].CategoryID]
	}
}

func resolveCurrency(entityID int64) string {
	if entityID != 0 {
		var currency string
		err := database.DB.QueryRow(`SELECT default_currency FROM entities WHERE id = ?`, entityID).Scan(&currency)
		if err == nil && currency != "" {
			return currency
		}
		if err != nil && err != sql.ErrNoRows {
			logger.L.Error("Error resolving entity currency", "entityID", entityID, "error", err)
		}
	}
	if config.Cfg != nil {
		return config.Cfg.DefaultCurrency
	}
	return "PHP"
}

// --- row fetchers ---
// entityID 0 fetches across all entities.

func nullableID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func scopedQuery(base string, entityID int64, conditions []string, args []interface{}) (string, []interface{}) {
	if entityID != 0 {
		conditions = append(conditions, "entity_id = ?")
		args = append(args, entityID)
	}
	if len(conditions) > 0 {
		base += " WHERE " + strings.Join(conditions, " AND ")
	}
	return base, args
}

func fetchAccounts(entityID int64) ([]models.Account, error) {
	query, args := scopedQuery(
		`SELECT id, entity_id, name, account_type, balance, currency, credit_limit, is_active, created_at, updated_at FROM accounts`,
		entityID, nil, nil)
	rows, err := database.DB.Query(query+` ORDER BY id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying accounts for entity %d: %w", entityID, err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		var entID sql.NullInt64
		var createdAt, updatedAt sql.NullString
		if err := rows.Scan(&account.ID, &entID, &account.Name, &account.AccountType, &account.Balance,
			&account.Currency, &account.CreditLimit, &account.IsActive, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("error scanning account row: %w", err)
		}
		account.EntityID = nullableID(entID)
		account.CreatedAt = createdAt.String
		account.UpdatedAt = updatedAt.String
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func fetchTransactions(entityID int64) ([]models.Transaction, error) {
	return fetchTransactionsWhere(entityID, nil, nil)
}

func fetchUnpostedTransactions(entityID int64) ([]models.Transaction, error) {
	return fetchTransactionsWhere(entityID, []string{"is_posted = 0"}, nil)
}

func fetchTransactionsWhere(entityID int64, conditions []string, args []interface{}) ([]models.Transaction, error) {
	query, args := scopedQuery(
		`SELECT id, entity_id, account_id, category_id, budget_entry_id, allocation_id, description, amount,
			transaction_type, transaction_date, is_posted, transfer_from_account_id, transfer_to_account_id,
			import_hash, created_at, updated_at FROM transactions`,
		entityID, conditions, args)
	rows, err := database.DB.Query(query+` ORDER BY transaction_date ASC, id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions for entity %d: %w", entityID, err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var entID, accountID, categoryID, budgetEntryID, allocationID, transferFrom, transferTo sql.NullInt64
		var description, importHash, createdAt, updatedAt sql.NullString
		if err := rows.Scan(&tx.ID, &entID, &accountID, &categoryID, &budgetEntryID, &allocationID,
			&description, &tx.Amount, &tx.TransactionType, &tx.TransactionDate, &tx.IsPosted,
			&transferFrom, &transferTo, &importHash, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("error scanning transaction row: %w", err)
		}
		tx.EntityID = nullableID(entID)
		tx.AccountID = nullableID(accountID)
		tx.CategoryID = nullableID(categoryID)
		tx.BudgetEntryID = nullableID(budgetEntryID)
		tx.AllocationID = nullableID(allocationID)
		tx.TransferFromAccountID = nullableID(transferFrom)
		tx.TransferToAccountID = nullableID(transferTo)
		tx.Description = description.String
		tx.ImportHash = importHash.String
		tx.CreatedAt = createdAt.String
		tx.UpdatedAt = updatedAt.String
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func fetchBudgetEntries(entityID int64) ([]models.BudgetEntry, error) {
	query, args := scopedQuery(
		`SELECT id, entity_id, account_id, category_id, allocation_id, name, entry_type, amount, currency,
			cadence, next_occurrence, lead_time_days, end_mode, end_date, max_occurrences, is_autopay,
			is_active, created_at, updated_at FROM budget_entries`,
		entityID, nil, nil)
	rows, err := database.DB.Query(query+` ORDER BY id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying budget entries for entity %d: %w", entityID, err)
	}
	defer rows.Close()

	var entries []models.BudgetEntry
	for rows.Next() {
		var entry models.BudgetEntry
		var entID, accountID, categoryID, allocationID, maxOccurrences sql.NullInt64
		var endDate, createdAt, updatedAt sql.NullString
		if err := rows.Scan(&entry.ID, &entID, &accountID, &categoryID, &allocationID, &entry.Name,
			&entry.EntryType, &entry.Amount, &entry.Currency, &entry.Cadence, &entry.NextOccurrence,
			&entry.LeadTimeDays, &entry.EndMode, &endDate, &maxOccurrences, &entry.IsAutopay,
			&entry.IsActive, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("error scanning budget entry row: %w", err)
		}
		entry.EntityID = nullableID(entID)
		entry.AccountID = nullableID(accountID)
		entry.CategoryID = nullableID(categoryID)
		entry.AllocationID = nullableID(allocationID)
		entry.EndDate = endDate.String
		if maxOccurrences.Valid {
			count := int(maxOccurrences.Int64)
			entry.MaxOccurrences = &count
		}
		entry.CreatedAt = createdAt.String
		entry.UpdatedAt = updatedAt.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func fetchAllocations(entityID int64) ([]models.Allocation, error) {
	query, args := scopedQuery(
		`SELECT id, entity_id, account_id, name, allocation_type, target_amount, monthly_target,
			current_amount, is_active, created_at, updated_at FROM allocations`,
		entityID, nil, nil)
	rows, err := database.DB.Query(query+` ORDER BY id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying allocations for entity %d: %w", entityID, err)
	}
	defer rows.Close()

	var allocations []models.Allocation
	for rows.Next() {
		var allocation models.Allocation
		var entID, accountID sql.NullInt64
		var createdAt, updatedAt sql.NullString
		if err := rows.Scan(&allocation.ID, &entID, &accountID, &allocation.Name, &allocation.AllocationType,
			&allocation.TargetAmount, &allocation.MonthlyTarget, &allocation.CurrentAmount,
			&allocation.IsActive, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("error scanning allocation row: %w", err)
		}
		allocation.EntityID = nullableID(entID)
		allocation.AccountID = nullableID(accountID)
		allocation.CreatedAt = createdAt.String
		allocation.UpdatedAt = updatedAt.String
		allocations = append(allocations, allocation)
	}
	return allocations, rows.Err()
}

func fetchCategories(entityID int64) ([]models.Category, error) {
	query, args := scopedQuery(
		`SELECT id, entity_id, name, description, color, is_expense, is_active, created_at, updated_at FROM categories`,
		entityID, nil, nil)
	rows, err := database.DB.Query(query+` ORDER BY name ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying categories for entity %d: %w", entityID, err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		var entID sql.NullInt64
		var description, color, createdAt, updatedAt sql.NullString
		if err := rows.Scan(&category.ID, &entID, &category.Name, &description, &color,
			&category.IsExpense, &category.IsActive, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("error scanning category row: %w", err)
		}
		category.EntityID = nullableID(entID)
		category.Description = description.String
		category.Color = color.String
		category.CreatedAt = createdAt.String
		category.UpdatedAt = updatedAt.String
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// wishlistPriorityOrder mirrors WishlistPriority.Rank for SQL sorting.
const wishlistPriorityOrder = `CASE priority WHEN 'critical' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END`

func fetchWishlistItems(entityID int64, unpurchasedOnly bool) ([]models.WishlistItem, error) {
	var conditions []string
	if unpurchasedOnly {
		conditions = append(conditions, "is_purchased = 0")
	}
	query, args := scopedQuery(
		`SELECT id, entity_id, category_id, name, estimated_cost, currency, priority, url, notes,
			target_date, is_purchased, purchased_at, created_at, updated_at FROM wishlist_items`,
		entityID, conditions, nil)
	rows, err := database.DB.Query(query+` ORDER BY `+wishlistPriorityOrder+`, created_at ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying wishlist items for entity %d: %w", entityID, err)
	}
	defer rows.Close()

	var items []models.WishlistItem
	for rows.Next() {
		item, err := scanWishlistItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func fetchWishlistItem(entityID, itemID int64) (*models.WishlistItem, error) {
	query, args := scopedQuery(
		`SELECT id, entity_id, category_id, name, estimated_cost, currency, priority, url, notes,
			target_date, is_purchased, purchased_at, created_at, updated_at FROM wishlist_items`,
		entityID, []string{"id = ?"}, []interface{}{itemID})
	row := database.DB.QueryRow(query, args...)
	item, err := scanWishlistItem(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func scanWishlistItem(scan func(dest ...interface{}) error) (models.WishlistItem, error) {
	var item models.WishlistItem
	var entID, categoryID sql.NullInt64
	var url, notes, targetDate, purchasedAt, createdAt, updatedAt sql.NullString
	err := scan(&item.ID, &entID, &categoryID, &item.Name, &item.EstimatedCost, &item.Currency,
		&item.Priority, &url, &notes, &targetDate, &item.IsPurchased, &purchasedAt, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return item, err
		}
		return item, fmt.Errorf("error scanning wishlist item row: %w", err)
	}
	item.EntityID = nullableID(entID)
	item.CategoryID = nullableID(categoryID)
	item.URL = url.String
	item.Notes = notes.String
	item.TargetDate = targetDate.String
	item.PurchasedAt = purchasedAt.String
	item.CreatedAt = createdAt.String
	item.UpdatedAt = updatedAt.String
	return item, nil
}
