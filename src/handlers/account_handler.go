// backend/src/handlers/account_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/tallytrace/backend/src/config"
	"github.com/username/tallytrace/backend/src/database"
	"github.com/username/tallytrace/backend/src/models"
	"github.com/username/tallytrace/backend/src/services"
	"github.com/username/tallytrace/backend/src/store"
	"github.com/username/tallytrace/backend/src/utils"
)

type AccountHandler struct {
	dashboardService services.DashboardService
}

func NewAccountHandler(dashboardService services.DashboardService) *AccountHandler {
	return &AccountHandler{dashboardService: dashboardService}
}

func (h *AccountHandler) validate(account *models.Account) error {
	account.Name = strings.TrimSpace(account.Name)
	if account.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !account.AccountType.IsValid() {
		return fmt.Errorf("invalid account_type %q", account.AccountType)
	}
	if account.Currency == "" {
		account.Currency = config.Cfg.DefaultCurrency
	}
	account.Currency = utils.NormalizeCurrency(account.Currency)
	if !utils.IsSupportedCurrency(account.Currency) {
		return fmt.Errorf("unsupported currency %q, supported: %s", account.Currency, strings.Join(utils.SupportedCurrencyCodes(), ", "))
	}
	if account.CreditLimit < 0 {
		return fmt.Errorf("credit_limit cannot be negative")
	}
	return nil
}

func (h *AccountHandler) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	var account models.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	account.IsActive = true
	if account.EntityID == nil && entityID != 0 {
		account.EntityID = &entityID
	}
	if err := h.validate(&account); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	exists, err := store.AccountNameExists(database.DB, recordEntityID(account.EntityID), account.Name, 0)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error checking account name: %v", err), http.StatusInternalServerError)
		return
	}
	if exists {
		utils.SendJSONError(w, fmt.Sprintf("an account named %q already exists", account.Name), http.StatusConflict)
		return
	}

	if err := store.CreateAccount(database.DB, &account); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error creating account: %v", err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(recordEntityID(account.EntityID))
	writeJSON(w, http.StatusCreated, account)
}

func (h *AccountHandler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	active, err := boolQueryParam(r, "active")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	accounts, err := store.ListAccounts(database.DB, entityID, active != nil && *active)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error listing accounts for entity %d: %v", entityID, err), http.StatusInternalServerError)
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *AccountHandler) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	account, err := store.GetAccountByID(database.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("account %d not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error loading account %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) HandleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var account models.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	account.ID = id
	if err := h.validate(&account); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	exists, err := store.AccountNameExists(database.DB, recordEntityID(account.EntityID), account.Name, id)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error checking account name: %v", err), http.StatusInternalServerError)
		return
	}
	if exists {
		utils.SendJSONError(w, fmt.Sprintf("an account named %q already exists", account.Name), http.StatusConflict)
		return
	}

	if err := store.UpdateAccount(database.DB, &account); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.SendJSONError(w, fmt.Sprintf("account %d not found", id), http.StatusNotFound)
			return
		}
		utils.SendJSONError(w, fmt.Sprintf("error updating account %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(recordEntityID(account.EntityID))

	updated, err := store.GetAccountByID(database.DB, id)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error reloading account %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *AccountHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	account, err := store.GetAccountByID(database.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("account %d not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error loading account %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	if err := store.DeleteAccount(database.DB, id); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error deleting account %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(recordEntityID(account.EntityID))
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("account %d deleted", id)})
}
