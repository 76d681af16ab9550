// backend/src/store/finance_store.go
package store

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/username/tallytrace/backend/src/models"
)

// ErrNotFound is returned by lookups and row-targeting writes when the id
// does not exist. Services and handlers test for it with errors.Is.
var ErrNotFound = errors.New("record not found")

// entityID 0 means unscoped throughout this package: rows of every entity,
// including rows with no entity at all.

func idArg(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func textArg(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func scoped(base string, entityID int64, conditions []string, args []interface{}) (string, []interface{}) {
	if entityID != 0 {
		conditions = append(conditions, "entity_id = ?")
		args = append(args, entityID)
	}
	if len(conditions) > 0 {
		base += " WHERE " + strings.Join(conditions, " AND ")
	}
	return base, args
}

func rowsAffectedOrNotFound(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- entities ---

// CreateEntity inserts a new entity and sets its generated id.
func CreateEntity(db *sql.DB, entity *models.Entity) error {
	stmt, err := db.Prepare(`INSERT INTO entities (name, entity_type, description, default_currency, is_active) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(entity.Name, string(entity.EntityType), textArg(entity.Description), entity.DefaultCurrency, entity.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	entity.ID = id
	return nil
}

func GetEntityByID(db *sql.DB, id int64) (*models.Entity, error) {
	var entity models.Entity
	var description, createdAt, updatedAt sql.NullString
	err := db.QueryRow(
		`SELECT id, name, entity_type, description, default_currency, is_active, created_at, updated_at FROM entities WHERE id = ?`,
		id,
	).Scan(&entity.ID, &entity.Name, &entity.EntityType, &description, &entity.DefaultCurrency,
		&entity.IsActive, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	entity.Description = description.String
	entity.CreatedAt = createdAt.String
	entity.UpdatedAt = updatedAt.String
	return &entity, nil
}

func ListEntities(db *sql.DB, activeOnly bool) ([]models.Entity, error) {
	query := `SELECT id, name, entity_type, description, default_currency, is_active, created_at, updated_at FROM entities`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	rows, err := db.Query(query + ` ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []models.Entity
	for rows.Next() {
		var entity models.Entity
		var description, createdAt, updatedAt sql.NullString
		if err := rows.Scan(&entity.ID, &entity.Name, &entity.EntityType, &description,
			&entity.DefaultCurrency, &entity.IsActive, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		entity.Description = description.String
		entity.CreatedAt = createdAt.String
		entity.UpdatedAt = updatedAt.String
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

func UpdateEntity(db *sql.DB, entity *models.Entity) error {
	res, err := db.Exec(
		`UPDATE entities SET name = ?, entity_type = ?, description = ?, default_currency = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		entity.Name, string(entity.EntityType), textArg(entity.Description), entity.DefaultCurrency, entity.IsActive, entity.ID)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res)
}

func DeleteEntity(db *sql.DB, id int64) error {
	res, err := db.Exec(`DELETE FROM entities WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res)
}

// EntityNameExists reports whether another entity already uses the name.
// excludeID skips the row being updated; pass 0 on create.
func EntityNameExists(db *sql.DB, name string, excludeID int64) (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM entities WHERE name = ? AND id != ?`, name, excludeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// --- accounts ---

func CreateAccount(db *sql.DB, account *models.Account) error {
	stmt, err := db.Prepare(`INSERT INTO accounts (entity_id, name, account_type, balance, currency, credit_limit, is_active) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(idArg(account.EntityID), account.Name, string(account.AccountType),
		account.Balance, account.Currency, account.CreditLimit, account.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	account.ID = id
	return nil
}

func GetAccountByID(db *sql.DB, id int64) (*models.Account, error) {
	var account models.Account
	var entID sql.NullInt64
	var createdAt, updatedAt sql.NullString
	err := db.QueryRow(
		`SELECT id, entity_id, name, account_type, balance, currency, credit_limit, is_active, created_at, updated_at FROM accounts WHERE id = ?`,
		id,
	).Scan(&account.ID, &entID, &account.Name, &account.AccountType, &account.Balance,
		&account.Currency, &account.CreditLimit, &account.IsActive, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	account.EntityID = nullableID(entID)
	account.CreatedAt = createdAt.String
	account.UpdatedAt = updatedAt.String
	return &account, nil
}

func ListAccounts(db *sql.DB, entityID int64, activeOnly bool) ([]models.Account, error) {
	var conditions []string
	if activeOnly {
		conditions = append(conditions, "is_active = 1")
	}
	query, args := scoped(
		`SELECT id, entity_id, name, account_type, balance, currency, credit_limit, is_active, created_at, updated_at FROM accounts`,
		entityID, conditions, nil)
	rows, err := db.Query(query+` ORDER BY name ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		var entID sql.NullInt64
		var createdAt, updatedAt sql.NullString
		if err := rows.Scan(&account.ID, &entID, &account.Name, &account.AccountType, &account.Balance,
			&account.Currency, &account.CreditLimit, &account.IsActive, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		account.EntityID = nullableID(entID)
		account.CreatedAt = createdAt.String
		account.UpdatedAt = updatedAt.String
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func UpdateAccount(db *sql.DB, account *models.Account) error {
	res, err := db.Exec(
		`UPDATE accounts SET entity_id = ?, name = ?, account_type = ?, balance = ?, currency = ?, credit_limit = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		idArg(account.EntityID), account.Name, string(account.AccountType), account.Balance,
		account.Currency, account.CreditLimit, account.IsActive, account.ID)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res)
}

func DeleteAccount(db *sql.DB, id int64) error {
	res, err := db.Exec(`DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res)
}

func AccountNameExists(db *sql.DB, entityID int64, name string, excludeID int64) (bool, error) {
	query, args := scoped(`SELECT COUNT(*) FROM accounts`, entityID,
		[]string{"name = ?", "id != ?"}, []interface{}{name, excludeID})
	var count int
	if err := db.QueryRow(query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// --- categories ---

func CreateCategory(db *sql.DB, category *models.Category) error {
	stmt, err := db.Prepare(`INSERT INTO categories (entity_id, name, description, color, is_expense, is_active) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(idArg(category.EntityID), category.Name, textArg(category.Description),
		textArg(category.Color), category.IsExpense, category.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	category.ID = id
	return nil
}

func GetCategoryByID(db *sql.DB, id int64) (*models.Category, error) {
	var category models.Category
	var entID sql.NullInt64
	var description, color, createdAt, updatedAt sql.NullString
	err := db.QueryRow(
		`SELECT id, entity_id, name, description, color, is_expense, is_active, created_at, updated_at FROM categories WHERE id = ?`,
		id,
	).Scan(&category.ID, &entID, &category.Name, &description, &color,
		&category.IsExpense, &category.IsActive, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	category.EntityID = nullableID(entID)
	category.Description = description.String
	category.Color = color.String
	category.CreatedAt = createdAt.String
	category.UpdatedAt = updatedAt.String
	return &category, nil
}

// ListCategories returns categories in name order. expenseOnly is tri-state:
// nil lists everything, otherwise filters on is_expense.
func ListCategories(db *sql.DB, entityID int64, expenseOnly *bool) ([]models.Category, error) {
	var conditions []string
	var args []interface{}
	if expenseOnly != nil {
		conditions = append(conditions, "is_expense = ?")
		args = append(args, *expenseOnly)
	}
	query, args := scoped(
		`SELECT id, entity_id, name, description, color, is_expense, is_active, created_at, updated_at FROM categories`,
		entityID, conditions, args)
	rows, err := db.Query(query+` ORDER BY name ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		var entID sql.NullInt64
		var description, color, createdAt, updatedAt sql.NullString
		if err := rows.Scan(&category.ID, &entID, &category.Name, &description, &color,
			&category.IsExpense, &category.IsActive, &createdAt, &updatedAt); err != nil {
			return nil, err
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

func UpdateCategory(db *sql.DB, category *models.Category) error {
	res, err := db.Exec(
		`UPDATE categories SET entity_id = ?, name = ?, description = ?, color = ?, is_expense = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		idArg(category.EntityID), category.Name, textArg(category.Description), textArg(category.Color),
		category.IsExpense, category.IsActive, category.ID)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res)
}

func DeleteCategory(db *sql.DB, id int64) error {
	res, err := db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res)
}

func CategoryNameExists(db *sql.DB, entityID int64, name string, excludeID int64) (bool, error) {
	query, args := scoped(`SELECT COUNT(*) FROM categories`, entityID,
		[]string{"name = ?", "id != ?"}, []interface{}{name, excludeID})
	var count int
	if err := db.QueryRow(query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// --- transactions ---

// TransactionFilter narrows ListTransactions. Zero values mean no filter;
// Limit 0 returns every match.
type TransactionFilter struct {
	AccountID  *int64
	CategoryID *int64
	From       string // ISO date, inclusive
	To         string // ISO date, inclusive
	IsPosted   *bool
	Limit      int
}

func CreateTransaction(db *sql.DB, tx *models.Transaction) error {
	stmt, err := db.Prepare(`INSERT INTO transactions (entity_id, account_id, category_id, budget_entry_id, allocation_id, description, amount, transaction_type, transaction_date, is_posted, transfer_from_account_id, transfer_to_account_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(idArg(tx.EntityID), idArg(tx.AccountID), idArg(tx.CategoryID),
		idArg(tx.BudgetEntryID), idArg(tx.AllocationID), tx.Description, tx.Amount,
		string(tx.TransactionType), tx.TransactionDate, tx.IsPosted,
		idArg(tx.TransferFromAccountID), idArg(tx.TransferToAccountID))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	tx.ID = id
	return nil
}

func GetTransactionByID(db *sql.DB, id int64) (*models.Transaction, error) {
	var tx models.Transaction
	var entID, accountID, categoryID, budgetEntryID, allocationID, transferFrom, transferTo sql.NullInt64
	var description, importHash, createdAt, updatedAt sql.NullString
	err := db.QueryRow(
		`SELECT id, entity_id, account_id, category_id, budget_entry_id, allocation_id, description, amount,
			transaction_type, transaction_date, is_posted, transfer_from_account_id, transfer_to_account_id,
			import_hash, created_at, updated_at FROM transactions WHERE id = ?`,
		id,
	).Scan(&tx.ID, &entID, &accountID, &categoryID, &budgetEntryID, &allocationID,
		&description, &tx.Amount, &tx.TransactionType, &tx.TransactionDate, &tx.IsPosted,
		&transferFrom, &transferTo, &importHash, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
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
	return &tx, nil
}

// ListTransactions returns matches newest first.
func ListTransactions(db *sql.DB, entityID int64, filter TransactionFilter) ([]models.Transaction, error) {
	var conditions []string
	var args []interface{}
	if filter.AccountID != nil {
		conditions = append(conditions, "account_id = ?")
		args = append(args, *filter.AccountID)
	}
	if filter.CategoryID != nil {
		conditions = append(conditions, "category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.From != "" {
		conditions = append(conditions, "transaction_date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		conditions = append(conditions, "transaction_date <= ?")
		args = append(args, filter.To)
	}
	if filter.IsPosted != nil {
		conditions = append(conditions, "is_posted = ?")
		args = append(args, *filter.IsPosted)
	}

	query, args := scoped(
		`SELECT id, entity_id, account_id, category_id, budget_entry_id, allocation_id, description, amount,
			transaction_type, transaction_date, is_posted, transfer_from_account_id, transfer_to_account_id,
			import_hash, created_at, updated_at FROM transactions`,
		entityID, conditions, args)
	query += ` ORDER BY transaction_date DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
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
			return nil, err
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

// UpdateTransaction rewrites every caller-editable column. The import hash
// is not touched; it belongs to the import pipeline.
func UpdateTransaction(db *sql.DB, tx *models.Transaction) error {
	res, err := db.Exec(
		`UPDATE transactions SET entity_id = ?, account_id = ?, category_id = ?, budget_entry_id = ?, allocation_id = ?, description = ?, amount = ?, transaction_type = ?, transaction_date = ?, is_posted = ?, transfer_from_account_id = ?, transfer_to_account_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		idArg(tx.EntityID), idArg(tx.AccountID), idArg(tx.CategoryID), idArg(tx.BudgetEntryID),
		idArg(tx.AllocationID), tx.Description, tx.Amount, string(tx.TransactionType),
		tx.TransactionDate, tx.IsPosted, idArg(tx.TransferFromAccountID), idArg(tx.TransferToAccountID), tx.ID)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res)
}

func DeleteTransaction(db *sql.DB, id int64) error {
	res, err := db.Exec(`DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return rowsAffectedOrNotFound(res)
}
