package portability

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tallytrace/backend/src/models"
)

func int64Ptr(v int64) *int64 { return &v }

func sampleBundle() *models.ExportBundle {
	return &models.ExportBundle{
		Entity:     &models.Entity{ID: 7, Name: "Personal", EntityType: models.EntityTypePersonal},
		ExportedAt: "2025-06-01T00:00:00Z",
		Accounts: []models.Account{
			{ID: 1, EntityID: int64Ptr(7), Name: "Checking", AccountType: models.AccountTypeChecking, Balance: 1234.5, Currency: "PHP", IsActive: true},
		},
		Transactions: []models.Transaction{
			{ID: 1, EntityID: int64Ptr(7), AccountID: int64Ptr(1), Description: "=SUM(A1:A9)", Amount: 100,
				TransactionType: models.TransactionTypeDebit, TransactionDate: "2025-05-20", IsPosted: true},
		},
		Categories:    []models.Category{{ID: 1, EntityID: int64Ptr(7), Name: "Food", IsExpense: true, IsActive: true}},
		Allocations:   []models.Allocation{{ID: 1, EntityID: int64Ptr(7), Name: "Groceries", AllocationType: models.AllocationTypeBudget, MonthlyTarget: 8000, IsActive: true}},
		BudgetEntries: []models.BudgetEntry{{ID: 1, EntityID: int64Ptr(7), Name: "Rent", EntryType: models.EntryTypeExpense, Amount: 12000, Currency: "PHP", Cadence: models.CadenceMonthly, NextOccurrence: "2025-06-05", EndMode: models.EndModeIndefinite, IsActive: true}},
		WishlistItems: []models.WishlistItem{{ID: 1, EntityID: int64Ptr(7), Name: "Laptop", EstimatedCost: 60000, Currency: "PHP", Priority: models.WishlistPriorityHigh}},
	}
}

func parseCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVForTableTransactions(t *testing.T) {
	data, err := CSVForTable("transactions", sampleBundle())
	require.NoError(t, err)

	records := parseCSV(t, data)
	require.Len(t, records, 2)
	header, row := records[0], records[1]

	assert.Equal(t, "transaction_date", header[9])
	assert.Equal(t, "2025-05-20", row[9])
	assert.Equal(t, "debit", row[8])
	assert.Equal(t, "100", row[7])
	// formula-bearing text must come out quoted so spreadsheets treat it as text
	assert.Equal(t, "'=SUM(A1:A9)", row[6])
}

func TestCSVForTableAccounts(t *testing.T) {
	data, err := CSVForTable("accounts", sampleBundle())
	require.NoError(t, err)

	records := parseCSV(t, data)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"id", "entity_id", "name", "account_type", "balance", "currency", "credit_limit", "is_active", "created_at", "updated_at"}, records[0])
	assert.Equal(t, "1234.5", records[1][4])
	assert.Equal(t, "true", records[1][7])
}

func TestCSVForTableUnknown(t *testing.T) {
	_, err := CSVForTable("users", sampleBundle())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown table")
}

func TestBuildZIPContainsEveryTable(t *testing.T) {
	data, err := BuildZIP(sampleBundle())
	require.NoError(t, err)

	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	names := make([]string, 0, len(archive.File))
	for _, file := range archive.File {
		names = append(names, file.Name)
	}
	assert.ElementsMatch(t, []string{
		"accounts.csv", "transactions.csv", "categories.csv",
		"allocations.csv", "budget_entries.csv", "wishlist_items.csv",
	}, names)
}

func TestExportFilenames(t *testing.T) {
	at := time.Date(2025, time.June, 1, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, "tally_trace_entity_7_20250601.json", JSONFilename(7, at))
	assert.Equal(t, "tally_trace_entity_7_transactions_20250601.csv", CSVFilename(7, "transactions", at))
	assert.Equal(t, "tally_trace_entity_7_20250601.zip", ZIPFilename(7, at))
}

func TestIsPortableTable(t *testing.T) {
	assert.True(t, IsPortableTable("budget_entries"))
	assert.False(t, IsPortableTable("entities"))
	assert.False(t, IsPortableTable(""))
}
