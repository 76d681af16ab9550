package portability

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/username/tallytrace/backend/src/models"
	"github.com/username/tallytrace/backend/src/security/validation"
	"github.com/username/tallytrace/backend/src/utils"
)

// Required and optional header columns of the portable transactions CSV.
// The format matches the transactions table export, so an exported file can
// be imported back unchanged; extra columns are ignored.
var requiredImportColumns = []string{"transaction_date", "amount", "transaction_type"}

type TransactionCSVParser struct{}

func NewTransactionCSVParser() *TransactionCSVParser {
	return &TransactionCSVParser{}
}

// Parse reads transactions from the portable CSV format. Structural problems
// (unreadable CSV, missing required columns) fail the whole parse; bad
// individual rows are reported in rowErrors and skipped so one typo does not
// reject a whole statement.
func (p *TransactionCSVParser) Parse(file io.Reader) ([]models.Transaction, []string, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range requiredImportColumns {
		if _, ok := columns[required]; !ok {
			return nil, nil, fmt.Errorf("missing required column %q in CSV header", required)
		}
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read all CSV records: %w", err)
	}

	field := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var transactions []models.Transaction
	var rowErrors []string
	for i, record := range records {
		rowNum := i + 2 // header is row 1

		rawDate := field(record, "transaction_date")
		date := utils.ParseDate(rawDate)
		if date.IsZero() {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: invalid transaction_date %q", rowNum, rawDate))
			continue
		}

		amount, err := strconv.ParseFloat(field(record, "amount"), 64)
		if err != nil || amount <= 0 {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: invalid amount %q", rowNum, field(record, "amount")))
			continue
		}

		txType := models.TransactionType(strings.ToLower(field(record, "transaction_type")))
		if !txType.IsValid() {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: invalid transaction_type %q", rowNum, field(record, "transaction_type")))
			continue
		}

		isPosted := true
		if raw := field(record, "is_posted"); raw != "" {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				rowErrors = append(rowErrors, fmt.Sprintf("row %d: invalid is_posted %q", rowNum, raw))
				continue
			}
			isPosted = parsed
		}

		accountID, ok := parseOptionalID(field(record, "account_id"))
		if !ok {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: invalid account_id %q", rowNum, field(record, "account_id")))
			continue
		}
		categoryID, ok := parseOptionalID(field(record, "category_id"))
		if !ok {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: invalid category_id %q", rowNum, field(record, "category_id")))
			continue
		}

		description := strings.TrimSpace(validation.StripUnprintable(field(record, "description")))
		isoDate := utils.FormatDate(date)

		transactions = append(transactions, models.Transaction{
			AccountID:       accountID,
			CategoryID:      categoryID,
			Description:     description,
			Amount:          amount,
			TransactionType: txType,
			TransactionDate: isoDate,
			IsPosted:        isPosted,
			ImportHash:      TransactionFingerprint(isoDate, amount, string(txType), description),
		})
	}
	return transactions, rowErrors, nil
}

func parseOptionalID(raw string) (*int64, bool) {
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return nil, false
	}
	return &id, true
}

// TransactionFingerprint is the dedup key for imported rows: the same date,
// amount, type, and description always hash to the same value, regardless of
// how the number was spelled in the file.
func TransactionFingerprint(isoDate string, amount float64, txType, description string) string {
	payload := fmt.Sprintf("%s|%.2f|%s|%s", isoDate, amount, txType, description)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
