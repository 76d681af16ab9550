package forecast

import (
	"time"

	"github.com/username/tallytrace/backend/src/models"
	"github.com/username/tallytrace/backend/src/utils"
)

type actualsMatcherImpl struct{}

// NewActualsMatcher creates an ActualsMatcher.
func NewActualsMatcher() ActualsMatcher {
	return &actualsMatcherImpl{}
}

// Match partitions posted transactions by budget entry id, keeping only
// those dated inside [windowStart, windowEnd]. Transactions without a
// budget entry link are simply not part of the result; that is the normal
// state of unmatched spending, not an error.
func (m *actualsMatcherImpl) Match(transactions []models.Transaction, windowStart, windowEnd time.Time) map[int64][]models.Transaction {
	windowStart = utils.DateOf(windowStart)
	windowEnd = utils.DateOf(windowEnd)

	matched := make(map[int64][]models.Transaction)
	for _, tx := range transactions {
		if !tx.IsPosted || tx.BudgetEntryID == nil {
			continue
		}
		txDate := utils.ParseDate(tx.TransactionDate)
		if txDate.IsZero() || txDate.Before(windowStart) || txDate.After(windowEnd) {
			continue
		}
		matched[*tx.BudgetEntryID] = append(matched[*tx.BudgetEntryID], tx)
	}
	return matched
}
