// backend/src/services/portability_service.go
package services

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/username/tallytrace/backend/src/database"
	"github.com/username/tallytrace/backend/src/logger"
	"github.com/username/tallytrace/backend/src/models"
	"github.com/username/tallytrace/backend/src/portability"
	"github.com/username/tallytrace/backend/src/store"
)

type portabilityServiceImpl struct {
	parser    *portability.TransactionCSVParser
	dashboard DashboardService
}

// NewPortabilityService wires the CSV codec to the database. The dashboard
// service is needed to invalidate derived results after an import.
func NewPortabilityService(dashboard DashboardService) PortabilityService {
	return &portabilityServiceImpl{
		parser:    portability.NewTransactionCSVParser(),
		dashboard: dashboard,
	}
}

func (s *portabilityServiceImpl) ExportJSON(entityID int64) (*models.ExportBundle, error) {
	return collectBundle(entityID)
}

func (s *portabilityServiceImpl) ExportTableCSV(entityID int64, table string) ([]byte, error) {
	if !portability.IsPortableTable(table) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	bundle, err := collectBundle(entityID)
	if err != nil {
		return nil, err
	}
	return portability.CSVForTable(table, bundle)
}

func (s *portabilityServiceImpl) ExportZIP(entityID int64) ([]byte, error) {
	bundle, err := collectBundle(entityID)
	if err != nil {
		return nil, err
	}
	return portability.BuildZIP(bundle)
}

// ImportTransactionsCSV parses a portable transactions CSV and inserts the
// rows, deduplicating on the transaction fingerprint both against the file
// itself and against what is already stored for this entity.
func (s *portabilityServiceImpl) ImportTransactionsCSV(fileReader io.Reader, entityID int64) (*models.ImportSummary, error) {
	overallStartTime := time.Now()
	logger.L.Info("ImportTransactionsCSV START", "entityID", entityID)

	transactions, rowErrors, err := s.parser.Parse(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
	}

	summary := &models.ImportSummary{
		TotalRows:      len(transactions) + len(rowErrors),
		InvalidSkipped: len(rowErrors),
		Errors:         rowErrors,
	}
	if len(transactions) == 0 {
		logger.L.Info("ImportTransactionsCSV END, nothing to import", "entityID", entityID, "invalidRows", len(rowErrors))
		return summary, nil
	}

	seen, err := existingImportHashes(entityID)
	if err != nil {
		return nil, err
	}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`INSERT INTO transactions (entity_id, account_id, category_id, description, amount, transaction_type, transaction_date, is_posted, import_hash) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	var entityValue interface{}
	if entityID != 0 {
		entityValue = entityID
	}

	for _, tx := range transactions {
		if seen[tx.ImportHash] {
			summary.DuplicatesSkipped++
			continue
		}
		_, err := stmt.Exec(entityValue, optionalIDValue(tx.AccountID), optionalIDValue(tx.CategoryID),
			tx.Description, tx.Amount, string(tx.TransactionType), tx.TransactionDate, tx.IsPosted, tx.ImportHash)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
				logger.L.Debug("Skipping duplicate transaction on import", "entityID", entityID, "importHash", tx.ImportHash)
				summary.DuplicatesSkipped++
				continue
			}
			return nil, fmt.Errorf("error inserting imported transaction (%s %s): %w", tx.TransactionDate, tx.Description, err)
		}
		seen[tx.ImportHash] = true
		summary.Imported++
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing imported transactions: %w", err)
	}

	s.dashboard.InvalidateEntityCache(entityID)
	logger.L.Info("ImportTransactionsCSV END", "entityID", entityID,
		"imported", summary.Imported, "duplicates", summary.DuplicatesSkipped,
		"invalid", summary.InvalidSkipped, "duration", time.Since(overallStartTime))
	return summary, nil
}

func optionalIDValue(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func existingImportHashes(entityID int64) (map[string]bool, error) {
	query, args := scopedQuery(
		`SELECT import_hash FROM transactions`,
		entityID, []string{"import_hash IS NOT NULL"}, nil)
	rows, err := database.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying existing import hashes for entity %d: %w", entityID, err)
	}
	defer rows.Close()

	hashes := make(map[string]bool)
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("error scanning import hash: %w", err)
		}
		hashes[hash] = true
	}
	return hashes, rows.Err()
}

func collectBundle(entityID int64) (*models.ExportBundle, error) {
	var entity *models.Entity
	if entityID != 0 {
		fetched, err := store.GetEntityByID(database.DB, entityID)
		if err != nil {
			return nil, err
		}
		entity = fetched
	}

	accounts, err := fetchAccounts(entityID)
	if err != nil {
		return nil, err
	}
	transactions, err := fetchTransactions(entityID)
	if err != nil {
		return nil, err
	}
	categories, err := fetchCategories(entityID)
	if err != nil {
		return nil, err
	}
	allocations, err := fetchAllocations(entityID)
	if err != nil {
		return nil, err
	}
	budgetEntries, err := fetchBudgetEntries(entityID)
	if err != nil {
		return nil, err
	}
	wishlistItems, err := fetchWishlistItems(entityID, false)
	if err != nil {
		return nil, err
	}

	if accounts == nil {
		accounts = []models.Account{}
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	if categories == nil {
		categories = []models.Category{}
	}
	if allocations == nil {
		allocations = []models.Allocation{}
	}
	if budgetEntries == nil {
		budgetEntries = []models.BudgetEntry{}
	}
	if wishlistItems == nil {
		wishlistItems = []models.WishlistItem{}
	}

	return &models.ExportBundle{
		Entity:        entity,
		ExportedAt:    time.Now().UTC().Format(time.RFC3339),
		Accounts:      accounts,
		Transactions:  transactions,
		Categories:    categories,
		Allocations:   allocations,
		BudgetEntries: budgetEntries,
		WishlistItems: wishlistItems,
	}, nil
}

