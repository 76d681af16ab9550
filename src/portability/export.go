package portability

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/username/tallytrace/backend/src/models"
	"github.com/username/tallytrace/backend/src/security/validation"
)

// PortableTables lists every table the CSV and ZIP exports cover, in the
// order they appear in the archive.
var PortableTables = []string{"accounts", "transactions", "categories", "allocations", "budget_entries", "wishlist_items"}

func IsPortableTable(name string) bool {
	for _, table := range PortableTables {
		if table == name {
			return true
		}
	}
	return false
}

// CSVForTable renders one table of the bundle as CSV bytes. Free-text cells
// are sanitized against spreadsheet formula injection.
func CSVForTable(table string, bundle *models.ExportBundle) ([]byte, error) {
	switch table {
	case "accounts":
		return accountsCSV(bundle.Accounts)
	case "transactions":
		return transactionsCSV(bundle.Transactions)
	case "categories":
		return categoriesCSV(bundle.Categories)
	case "allocations":
		return allocationsCSV(bundle.Allocations)
	case "budget_entries":
		return budgetEntriesCSV(bundle.BudgetEntries)
	case "wishlist_items":
		return wishlistItemsCSV(bundle.WishlistItems)
	default:
		return nil, fmt.Errorf("unknown table %q", table)
	}
}

// BuildZIP packs one CSV per portable table into a single archive.
func BuildZIP(bundle *models.ExportBundle) ([]byte, error) {
	var buffer bytes.Buffer
	archive := zip.NewWriter(&buffer)
	for _, table := range PortableTables {
		data, err := CSVForTable(table, bundle)
		if err != nil {
			return nil, err
		}
		entry, err := archive.Create(table + ".csv")
		if err != nil {
			return nil, fmt.Errorf("failed to create zip entry for %s: %w", table, err)
		}
		if _, err := entry.Write(data); err != nil {
			return nil, fmt.Errorf("failed to write zip entry for %s: %w", table, err)
		}
	}
	if err := archive.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize zip archive: %w", err)
	}
	return buffer.Bytes(), nil
}

func JSONFilename(entityID int64, at time.Time) string {
	return exportFilename(entityID, "", "json", at)
}

func CSVFilename(entityID int64, table string, at time.Time) string {
	return exportFilename(entityID, table, "csv", at)
}

func ZIPFilename(entityID int64, at time.Time) string {
	return exportFilename(entityID, "", "zip", at)
}

func exportFilename(entityID int64, table, extension string, at time.Time) string {
	stamp := at.Format("20060102")
	if table != "" {
		return fmt.Sprintf("tally_trace_entity_%d_%s_%s.%s", entityID, table, stamp, extension)
	}
	return fmt.Sprintf("tally_trace_entity_%d_%s.%s", entityID, stamp, extension)
}

// --- per-table writers ---

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)
	if err := writer.Write(header); err != nil {
		return nil, err
	}
	if err := writer.WriteAll(rows); err != nil {
		return nil, err
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func text(s string) string {
	return validation.SanitizeForFormulaInjection(s)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func boolean(v bool) string {
	return strconv.FormatBool(v)
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

func optionalID(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func accountsCSV(accounts []models.Account) ([]byte, error) {
	header := []string{"id", "entity_id", "name", "account_type", "balance", "currency", "credit_limit", "is_active", "created_at", "updated_at"}
	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, []string{
			id(a.ID), optionalID(a.EntityID), text(a.Name), string(a.AccountType), number(a.Balance),
			a.Currency, number(a.CreditLimit), boolean(a.IsActive), a.CreatedAt, a.UpdatedAt,
		})
	}
	return writeCSV(header, rows)
}

func transactionsCSV(transactions []models.Transaction) ([]byte, error) {
	header := []string{"id", "entity_id", "account_id", "category_id", "budget_entry_id", "allocation_id",
		"description", "amount", "transaction_type", "transaction_date", "is_posted",
		"transfer_from_account_id", "transfer_to_account_id", "created_at", "updated_at"}
	rows := make([][]string, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, []string{
			id(t.ID), optionalID(t.EntityID), optionalID(t.AccountID), optionalID(t.CategoryID),
			optionalID(t.BudgetEntryID), optionalID(t.AllocationID), text(t.Description), number(t.Amount),
			string(t.TransactionType), t.TransactionDate, boolean(t.IsPosted),
			optionalID(t.TransferFromAccountID), optionalID(t.TransferToAccountID), t.CreatedAt, t.UpdatedAt,
		})
	}
	return writeCSV(header, rows)
}

func categoriesCSV(categories []models.Category) ([]byte, error) {
	header := []string{"id", "entity_id", "name", "description", "color", "is_expense", "is_active", "created_at", "updated_at"}
	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{
			id(c.ID), optionalID(c.EntityID), text(c.Name), text(c.Description), c.Color,
			boolean(c.IsExpense), boolean(c.IsActive), c.CreatedAt, c.UpdatedAt,
		})
	}
	return writeCSV(header, rows)
}

func allocationsCSV(allocations []models.Allocation) ([]byte, error) {
	header := []string{"id", "entity_id", "account_id", "name", "allocation_type", "target_amount",
		"monthly_target", "current_amount", "is_active", "created_at", "updated_at"}
	rows := make([][]string, 0, len(allocations))
	for _, a := range allocations {
		rows = append(rows, []string{
			id(a.ID), optionalID(a.EntityID), optionalID(a.AccountID), text(a.Name), string(a.AllocationType),
			number(a.TargetAmount), number(a.MonthlyTarget), number(a.CurrentAmount),
			boolean(a.IsActive), a.CreatedAt, a.UpdatedAt,
		})
	}
	return writeCSV(header, rows)
}

func budgetEntriesCSV(entries []models.BudgetEntry) ([]byte, error) {
	header := []string{"id", "entity_id", "account_id", "category_id", "allocation_id", "name", "entry_type",
		"amount", "currency", "cadence", "next_occurrence", "lead_time_days", "end_mode", "end_date",
		"max_occurrences", "is_autopay", "is_active", "created_at", "updated_at"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			id(e.ID), optionalID(e.EntityID), optionalID(e.AccountID), optionalID(e.CategoryID),
			optionalID(e.AllocationID), text(e.Name), string(e.EntryType), number(e.Amount), e.Currency,
			string(e.Cadence), e.NextOccurrence, strconv.Itoa(e.LeadTimeDays), string(e.EndMode), e.EndDate,
			optionalInt(e.MaxOccurrences), boolean(e.IsAutopay), boolean(e.IsActive), e.CreatedAt, e.UpdatedAt,
		})
	}
	return writeCSV(header, rows)
}

func wishlistItemsCSV(items []models.WishlistItem) ([]byte, error) {
	header := []string{"id", "entity_id", "category_id", "name", "estimated_cost", "currency", "priority",
		"url", "notes", "target_date", "is_purchased", "purchased_at", "created_at", "updated_at"}
	rows := make([][]string, 0, len(items))
	for _, w := range items {
		rows = append(rows, []string{
			id(w.ID), optionalID(w.EntityID), optionalID(w.CategoryID), text(w.Name), number(w.EstimatedCost),
			w.Currency, string(w.Priority), text(w.URL), text(w.Notes), w.TargetDate,
			boolean(w.IsPurchased), w.PurchasedAt, w.CreatedAt, w.UpdatedAt,
		})
	}
	return writeCSV(header, rows)
}
