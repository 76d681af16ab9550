// backend/src/handlers/transaction_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/tallytrace/backend/src/database"
	"github.com/username/tallytrace/backend/src/logger"
	"github.com/username/tallytrace/backend/src/models"
	"github.com/username/tallytrace/backend/src/security/validation"
	"github.com/username/tallytrace/backend/src/services"
	"github.com/username/tallytrace/backend/src/store"
	"github.com/username/tallytrace/backend/src/utils"
)

const maxTransactionPageSize = 1000

type TransactionHandler struct {
	dashboardService services.DashboardService
}

func NewTransactionHandler(dashboardService services.DashboardService) *TransactionHandler {
	return &TransactionHandler{dashboardService: dashboardService}
}

func (h *TransactionHandler) validate(tx *models.Transaction) error {
	if tx.Amount <= 0 {
		return fmt.Errorf("amount must be positive; direction comes from transaction_type")
	}
	if !tx.TransactionType.IsValid() {
		return fmt.Errorf("invalid transaction_type %q", tx.TransactionType)
	}
	if tx.TransactionDate == "" || utils.ParseDate(tx.TransactionDate).IsZero() {
		return fmt.Errorf("transaction_date must be a date in %s format", utils.DefaultDateFormat)
	}
	tx.Description = strings.TrimSpace(validation.StripUnprintable(tx.Description))
	if tx.TransactionType == models.TransactionTypeTransfer &&
		tx.TransferFromAccountID == nil && tx.TransferToAccountID == nil {
		return fmt.Errorf("a transfer needs transfer_from_account_id or transfer_to_account_id")
	}
	return nil
}

func (h *TransactionHandler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	var tx models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if tx.EntityID == nil && entityID != 0 {
		tx.EntityID = &entityID
	}
	if err := h.validate(&tx); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := store.CreateTransaction(database.DB, &tx); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error creating transaction: %v", err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(recordEntityID(tx.EntityID))
	writeJSON(w, http.StatusCreated, tx)
}

func (h *TransactionHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)

	var filter store.TransactionFilter
	var err error
	if filter.AccountID, err = int64QueryParam(r, "account_id"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if filter.CategoryID, err = int64QueryParam(r, "category_id"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if filter.From, err = dateQueryParam(r, "from"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if filter.To, err = dateQueryParam(r, "to"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if filter.IsPosted, err = boolQueryParam(r, "is_posted"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if filter.Limit, err = utils.IntQueryParam(r, "limit", 0, 1, maxTransactionPageSize); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	transactions, err := store.ListTransactions(database.DB, entityID, filter)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error listing transactions for entity %d: %v", entityID, err), http.StatusInternalServerError)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (h *TransactionHandler) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	tx, err := store.GetTransactionByID(database.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("transaction %d not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error loading transaction %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *TransactionHandler) HandleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var tx models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	tx.ID = id
	if err := h.validate(&tx); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := store.UpdateTransaction(database.DB, &tx); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.SendJSONError(w, fmt.Sprintf("transaction %d not found", id), http.StatusNotFound)
			return
		}
		utils.SendJSONError(w, fmt.Sprintf("error updating transaction %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(recordEntityID(tx.EntityID))

	updated, err := store.GetTransactionByID(database.DB, id)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error reloading transaction %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *TransactionHandler) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	tx, err := store.GetTransactionByID(database.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("transaction %d not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error loading transaction %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	if err := store.DeleteTransaction(database.DB, id); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error deleting transaction %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(recordEntityID(tx.EntityID))
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("transaction %d deleted", id)})
}

// HandleDeleteAllTransactions wipes every transaction in the request's
// entity scope. Unscoped requests wipe the whole table.
func (h *TransactionHandler) HandleDeleteAllTransactions(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)

	query := `DELETE FROM transactions`
	args := []interface{}{}
	if entityID != 0 {
		query += ` WHERE entity_id = ?`
		args = append(args, entityID)
	}
	res, err := database.DB.Exec(query, args...)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error deleting transactions for entity %d: %v", entityID, err), http.StatusInternalServerError)
		return
	}
	deleted, _ := res.RowsAffected()
	logger.L.Info("Deleted transactions in scope", "entityID", entityID, "count", deleted)

	h.dashboardService.InvalidateEntityCache(entityID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "transactions deleted",
		"count":   deleted,
	})
}
