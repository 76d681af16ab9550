package portability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tallytrace/backend/src/models"
)

func TestParseTransactionsCSV(t *testing.T) {
	input := strings.Join([]string{
		"transaction_date,description,amount,transaction_type,account_id,category_id,is_posted",
		"2025-01-10,Groceries,2500.50,debit,1,5,true",
		"2025-01-15,Salary,50000,credit,1,,true",
		"2025-02-01,Rent,12000,debit,,,false",
	}, "\n")

	parser := NewTransactionCSVParser()
	transactions, rowErrors, err := parser.Parse(strings.NewReader(input))

	require.NoError(t, err)
	assert.Empty(t, rowErrors)
	require.Len(t, transactions, 3)

	first := transactions[0]
	assert.Equal(t, "2025-01-10", first.TransactionDate)
	assert.Equal(t, "Groceries", first.Description)
	assert.Equal(t, 2500.50, first.Amount)
	assert.Equal(t, models.TransactionTypeDebit, first.TransactionType)
	require.NotNil(t, first.AccountID)
	assert.Equal(t, int64(1), *first.AccountID)
	require.NotNil(t, first.CategoryID)
	assert.Equal(t, int64(5), *first.CategoryID)
	assert.True(t, first.IsPosted)
	assert.NotEmpty(t, first.ImportHash)

	assert.Nil(t, transactions[1].CategoryID)
	assert.False(t, transactions[2].IsPosted)
	assert.Nil(t, transactions[2].AccountID)
}

func TestParseAcceptsShuffledColumnsAndExtras(t *testing.T) {
	input := strings.Join([]string{
		"id,amount,notes,transaction_type,transaction_date",
		"99,150,ignored,credit,2025-03-03",
	}, "\n")

	transactions, rowErrors, err := NewTransactionCSVParser().Parse(strings.NewReader(input))

	require.NoError(t, err)
	assert.Empty(t, rowErrors)
	require.Len(t, transactions, 1)
	assert.Equal(t, models.TransactionTypeCredit, transactions[0].TransactionType)
	// exported row ids are not preserved on import
	assert.Zero(t, transactions[0].ID)
}

func TestParseReportsBadRowsAndKeepsGoodOnes(t *testing.T) {
	input := strings.Join([]string{
		"transaction_date,description,amount,transaction_type",
		"not-a-date,Bad date,100,debit",
		"2025-01-10,Bad amount,zero,debit",
		"2025-01-11,Negative,-5,debit",
		"2025-01-12,Bad type,100,withdrawal",
		"2025-01-13,Good,100,debit",
	}, "\n")

	transactions, rowErrors, err := NewTransactionCSVParser().Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "Good", transactions[0].Description)
	require.Len(t, rowErrors, 4)
	assert.Contains(t, rowErrors[0], "row 2")
	assert.Contains(t, rowErrors[0], "transaction_date")
	assert.Contains(t, rowErrors[3], "transaction_type")
}

func TestParseMissingRequiredColumn(t *testing.T) {
	input := "transaction_date,description\n2025-01-10,No amount here"

	_, _, err := NewTransactionCSVParser().Parse(strings.NewReader(input))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount")
}

func TestParseStripsUnprintableFromDescription(t *testing.T) {
	input := "transaction_date,description,amount,transaction_type\n2025-01-10,Caf\x00e visit,100,debit"

	transactions, rowErrors, err := NewTransactionCSVParser().Parse(strings.NewReader(input))

	require.NoError(t, err)
	assert.Empty(t, rowErrors)
	require.Len(t, transactions, 1)
	assert.Equal(t, "Cafe visit", transactions[0].Description)
}

func TestTransactionFingerprintNormalizesAmountSpelling(t *testing.T) {
	a := TransactionFingerprint("2025-01-10", 1500, "debit", "Rent")
	b := TransactionFingerprint("2025-01-10", 1500.00, "debit", "Rent")
	c := TransactionFingerprint("2025-01-10", 1500, "debit", "Rent January")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestParsedRowsShareFingerprintWithReimports(t *testing.T) {
	input := "transaction_date,description,amount,transaction_type\n2025-01-10,Rent,1500,debit"
	reimport := "transaction_date,description,amount,transaction_type\n2025-01-10,Rent,1500.00,debit"

	first, _, err := NewTransactionCSVParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	second, _, err := NewTransactionCSVParser().Parse(strings.NewReader(reimport))
	require.NoError(t, err)

	assert.Equal(t, first[0].ImportHash, second[0].ImportHash)
}
