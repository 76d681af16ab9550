// backend/src/store/planning_store.go
package store

import (
	"database/sql"

	"github.com/username/tallytrace/backend/src/models"
)

// wishlistPriorityOrder ranks rows critical, high, medium, low.
const wishlistPriorityOrder = `CASE priority WHEN 'critical' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END`

// --- budget entries ---

func CreateBudgetEntry(db *sql.DB, entry *models.BudgetEntry) error {
	stmt, err := db.Prepare(`INSERT INTO budget_entries (entity_id, account_id, category_id, allocation_id, name, entry_type, amount, currency, cadence, next_occurrence, lead_time_days, end_mode, end_date, max_occurrences, is_autopay, is_active) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	var maxOccurrences interface{}
	if entry.MaxOccurrences != nil {
		maxOccurrences = *entry.MaxOccurrences
	}
	res, err := stmt.Exec(idArg(entry.EntityID), idArg(entry.AccountID), idArg(entry.CategoryID),
		idArg(entry.AllocationID), entry.Name, string(entry.EntryType), entry.Amount, entry.Currency,
		string(entry.Cadence), entry.NextOccurrence, entry.LeadTimeDays, string(entry.EndMode),
		textArg(entry.EndDate), maxOccurrences, entry.IsAutopay, entry.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

func GetBudgetEntryByID(db *sql.DB, id int64) (*models.BudgetEntry, error) {
	var entry models.BudgetEntry
	var entID, accountID, categoryID, allocationID, maxOccurrences sql.NullInt64
	var endDate, createdAt, updatedAt sql.NullString
	err := db.QueryRow(
		`SELECT id, entity_id, account_id, category_id, allocation_id, name, entry_type, amount, currency,
			cadence, next_occurrence, lead_time_days, end_mode, end_date, max_occurrences, is_autopay,
			is_active, created_at, updated_at FROM budget_entries WHERE id = ?`,
		id,
	).Scan(&entry.ID, &entID, &accountID, &categoryID, &allocationID, &entry.Name,
		&entry.EntryType, &entry.Amount, &entry.Currency, &entry.Cadence, &entry.NextOccurrence,
		&entry.LeadTimeDays, &entry.EndMode, &endDate, &maxOccurrences, &entry.IsAutopay,
		&entry.IsActive, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
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
	return &entry, nil
}

func ListBudgetEntries(db *sql.DB, entityID int64, activeOnly bool) ([]models.BudgetEntry, error) {
	var conditions []string
	if activeOnly {
		conditions = append(conditions, "is_active = 1")
	}
	query, args := scoped(
		`SELECT id, entity_id, account_id, category_id, allocation_id, name, entry_type, amount, currency,
			cadence, next_occurrence, lead_time_days, end_mode, end_date, max_occurrences, is_autopay,
			is_active, created_at, updated_at FROM budget_entries`,
		entityID, conditions, nil)
	rows, err := db.Query(query+` ORDER BY next_occurrence ASC, id ASC`, args...)
	if err != nil {
		return nil, err
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
			return nil, err
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

func UpdateBudgetEntry(db *sql.DB, entry *models.BudgetEntry) error {
	var maxOccurrences interface{}
	if entry.MaxOccurrences != nil {
		maxOccurrences = *entry.MaxOccurrences
	}
	res, err := db.Exec(
		`UPDATE budget_entries SET entity_id = ?, account_id = ?, category_id = ?, allocation_id = ?, name = ?, entry_type = ?, amount = ?, currency = ?, cadence = ?, next_occurrence = ?, lead_time_days = ?, end_mode = ?, end_date = ?, max_occurrences = ?, is_autopay = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		idArg(entry.EntityID), idArg(entry.AccountID), idArg(entry.CategoryID), idArg(entry.AllocationID),
		entry.Name, string(entry.EntryType), entry.Amount, entry.Currency, string(entry.Cadence),
		entry.NextOccurrence, entry.LeadTimeDays, string(entry.EndMode), textArg(entry.EndDate),
		maxOccurrences, entry.IsAutopay, entry.IsActive, entry.ID)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res)
}

func DeleteBudgetEntry(db *sql.DB, id int64) error {
	res, err := db.Exec(`DELETE FROM budget_entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res)
}

// AdvanceBudgetEntryAnchor moves the recurrence anchor forward after an
// occurrence is settled.
func AdvanceBudgetEntryAnchor(db *sql.DB, id int64, nextOccurrence string) error {
	res, err := db.Exec(
		`UPDATE budget_entries SET next_occurrence = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		nextOccurrence, id)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res)
}

// --- allocations ---

func CreateAllocation(db *sql.DB, allocation *models.Allocation) error {
	stmt, err := db.Prepare(`INSERT INTO allocations (entity_id, account_id, name, allocation_type, target_amount, monthly_target, current_amount, is_active) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(idArg(allocation.EntityID), idArg(allocation.AccountID), allocation.Name,
		string(allocation.AllocationType), allocation.TargetAmount, allocation.MonthlyTarget,
		allocation.CurrentAmount, allocation.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	allocation.ID = id
	return nil
}

func GetAllocationByID(db *sql.DB, id int64) (*models.Allocation, error) {
	var allocation models.Allocation
	var entID, accountID sql.NullInt64
	var createdAt, updatedAt sql.NullString
	err := db.QueryRow(
		`SELECT id, entity_id, account_id, name, allocation_type, target_amount, monthly_target,
			current_amount, is_active, created_at, updated_at FROM allocations WHERE id = ?`,
		id,
	).Scan(&allocation.ID, &entID, &accountID, &allocation.Name, &allocation.AllocationType,
		&allocation.TargetAmount, &allocation.MonthlyTarget, &allocation.CurrentAmount,
		&allocation.IsActive, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	allocation.EntityID = nullableID(entID)
	allocation.AccountID = nullableID(accountID)
	allocation.CreatedAt = createdAt.String
	allocation.UpdatedAt = updatedAt.String
	return &allocation, nil
}

// ListAllocations filters by type when allocationType is non-empty.
func ListAllocations(db *sql.DB, entityID int64, allocationType string) ([]models.Allocation, error) {
	var conditions []string
	var args []interface{}
	if allocationType != "" {
		conditions = append(conditions, "allocation_type = ?")
		args = append(args, allocationType)
	}
	query, args := scoped(
		`SELECT id, entity_id, account_id, name, allocation_type, target_amount, monthly_target,
			current_amount, is_active, created_at, updated_at FROM allocations`,
		entityID, conditions, args)
	rows, err := db.Query(query+` ORDER BY name ASC`, args...)
	if err != nil {
		return nil, err
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
			return nil, err
		}
		allocation.EntityID = nullableID(entID)
		allocation.AccountID = nullableID(accountID)
		allocation.CreatedAt = createdAt.String
		allocation.UpdatedAt = updatedAt.String
		allocations = append(allocations, allocation)
	}
	return allocations, rows.Err()
}

func UpdateAllocation(db *sql.DB, allocation *models.Allocation) error {
	res, err := db.Exec(
		`UPDATE allocations SET entity_id = ?, account_id = ?, name = ?, allocation_type = ?, target_amount = ?, monthly_target = ?, current_amount = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		idArg(allocation.EntityID), idArg(allocation.AccountID), allocation.Name,
		string(allocation.AllocationType), allocation.TargetAmount, allocation.MonthlyTarget,
		allocation.CurrentAmount, allocation.IsActive, allocation.ID)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res)
}

func DeleteAllocation(db *sql.DB, id int64) error {
	res, err := db.Exec(`DELETE FROM allocations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res)
}

// --- wishlist ---

func CreateWishlistItem(db *sql.DB, item *models.WishlistItem) error {
	stmt, err := db.Prepare(`INSERT INTO wishlist_items (entity_id, category_id, name, estimated_cost, currency, priority, url, notes, target_date, is_purchased, purchased_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(idArg(item.EntityID), idArg(item.CategoryID), item.Name, item.EstimatedCost,
		item.Currency, string(item.Priority), textArg(item.URL), textArg(item.Notes),
		textArg(item.TargetDate), item.IsPurchased, textArg(item.PurchasedAt))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	item.ID = id
	return nil
}

func GetWishlistItemByID(db *sql.DB, id int64) (*models.WishlistItem, error) {
	var item models.WishlistItem
	var entID, categoryID sql.NullInt64
	var url, notes, targetDate, purchasedAt, createdAt, updatedAt sql.NullString
	err := db.QueryRow(
		`SELECT id, entity_id, category_id, name, estimated_cost, currency, priority, url, notes,
			target_date, is_purchased, purchased_at, created_at, updated_at FROM wishlist_items WHERE id = ?`,
		id,
	).Scan(&item.ID, &entID, &categoryID, &item.Name, &item.EstimatedCost, &item.Currency,
		&item.Priority, &url, &notes, &targetDate, &item.IsPurchased, &purchasedAt, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	item.EntityID = nullableID(entID)
	item.CategoryID = nullableID(categoryID)
	item.URL = url.String
	item.Notes = notes.String
	item.TargetDate = targetDate.String
	item.PurchasedAt = purchasedAt.String
	item.CreatedAt = createdAt.String
	item.UpdatedAt = updatedAt.String
	return &item, nil
}

// ListWishlistItems returns items most urgent first, oldest first within the
// same priority.
func ListWishlistItems(db *sql.DB, entityID int64, includePurchased bool) ([]models.WishlistItem, error) {
	var conditions []string
	if !includePurchased {
		conditions = append(conditions, "is_purchased = 0")
	}
	query, args := scoped(
		`SELECT id, entity_id, category_id, name, estimated_cost, currency, priority, url, notes,
			target_date, is_purchased, purchased_at, created_at, updated_at FROM wishlist_items`,
		entityID, conditions, nil)
	rows, err := db.Query(query+` ORDER BY `+wishlistPriorityOrder+`, created_at ASC, id ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.WishlistItem
	for rows.Next() {
		var item models.WishlistItem
		var entID, categoryID sql.NullInt64
		var url, notes, targetDate, purchasedAt, createdAt, updatedAt sql.NullString
		if err := rows.Scan(&item.ID, &entID, &categoryID, &item.Name, &item.EstimatedCost, &item.Currency,
			&item.Priority, &url, &notes, &targetDate, &item.IsPurchased, &purchasedAt,
			&createdAt, &updatedAt); err != nil {
			return nil, err
		}
		item.EntityID = nullableID(entID)
		item.CategoryID = nullableID(categoryID)
		item.URL = url.String
		item.Notes = notes.String
		item.TargetDate = targetDate.String
		item.PurchasedAt = purchasedAt.String
		item.CreatedAt = createdAt.String
		item.UpdatedAt = updatedAt.String
		items = append(items, item)
	}
	return items, rows.Err()
}

func UpdateWishlistItem(db *sql.DB, item *models.WishlistItem) error {
	res, err := db.Exec(
		`UPDATE wishlist_items SET entity_id = ?, category_id = ?, name = ?, estimated_cost = ?, currency = ?, priority = ?, url = ?, notes = ?, target_date = ?, is_purchased = ?, purchased_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		idArg(item.EntityID), idArg(item.CategoryID), item.Name, item.EstimatedCost, item.Currency,
		string(item.Priority), textArg(item.URL), textArg(item.Notes), textArg(item.TargetDate),
		item.IsPurchased, textArg(item.PurchasedAt), item.ID)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res)
}

func DeleteWishlistItem(db *sql.DB, id int64) error {
	res, err := db.Exec(`DELETE FROM wishlist_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res)
}
