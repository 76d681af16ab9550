// backend/src/handlers/budget_entry_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/tallytrace/backend/src/config"
	"github.com/username/tallytrace/backend/src/database"
	"github.com/username/tallytrace/backend/src/forecast"
	"github.com/username/tallytrace/backend/src/models"
	"github.com/username/tallytrace/backend/src/services"
	"github.com/username/tallytrace/backend/src/store"
	"github.com/username/tallytrace/backend/src/utils"
)

type BudgetEntryHandler struct {
	dashboardService services.DashboardService
}

func NewBudgetEntryHandler(dashboardService services.DashboardService) *BudgetEntryHandler {
	return &BudgetEntryHandler{dashboardService: dashboardService}
}

func (h *BudgetEntryHandler) validate(entry *models.BudgetEntry) error {
	entry.Name = strings.TrimSpace(entry.Name)
	if entry.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !entry.EntryType.IsValid() {
		return fmt.Errorf("invalid entry_type %q", entry.EntryType)
	}
	if entry.Amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if entry.Currency == "" {
		entry.Currency = config.Cfg.DefaultCurrency
	}
	entry.Currency = utils.NormalizeCurrency(entry.Currency)
	if !utils.IsSupportedCurrency(entry.Currency) {
		return fmt.Errorf("unsupported currency %q, supported: %s", entry.Currency, strings.Join(utils.SupportedCurrencyCodes(), ", "))
	}
	if !entry.Cadence.IsValid() {
		return fmt.Errorf("invalid cadence %q", entry.Cadence)
	}
	if entry.NextOccurrence == "" || utils.ParseDate(entry.NextOccurrence).IsZero() {
		return fmt.Errorf("next_occurrence must be a date in %s format", utils.DefaultDateFormat)
	}
	if entry.LeadTimeDays < 0 {
		return fmt.Errorf("lead_time_days cannot be negative")
	}
	if entry.EndMode == "" {
		entry.EndMode = models.EndModeIndefinite
	}
	if !entry.EndMode.IsValid() {
		return fmt.Errorf("invalid end_mode %q", entry.EndMode)
	}
	switch entry.EndMode {
	case models.EndModeOnDate:
		if entry.EndDate == "" || utils.ParseDate(entry.EndDate).IsZero() {
			return fmt.Errorf("end_mode %q needs end_date in %s format", models.EndModeOnDate, utils.DefaultDateFormat)
		}
	case models.EndModeAfterOccurrences:
		if entry.MaxOccurrences == nil || *entry.MaxOccurrences < 1 {
			return fmt.Errorf("end_mode %q needs a positive max_occurrences", models.EndModeAfterOccurrences)
		}
	default:
		entry.EndDate = ""
		entry.MaxOccurrences = nil
	}
	return nil
}

func (h *BudgetEntryHandler) HandleCreateBudgetEntry(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	var entry models.BudgetEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	entry.IsActive = true
	if entry.EntityID == nil && entityID != 0 {
		entry.EntityID = &entityID
	}
	if err := h.validate(&entry); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := store.CreateBudgetEntry(database.DB, &entry); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error creating budget entry: %v", err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(recordEntityID(entry.EntityID))
	writeJSON(w, http.StatusCreated, entry)
}

func (h *BudgetEntryHandler) HandleListBudgetEntries(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	active, err := boolQueryParam(r, "active")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	entries, err := store.ListBudgetEntries(database.DB, entityID, active != nil && *active)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error listing budget entries for entity %d: %v", entityID, err), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.BudgetEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *BudgetEntryHandler) HandleGetBudgetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	entry, err := store.GetBudgetEntryByID(database.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("budget entry %d not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error loading budget entry %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *BudgetEntryHandler) HandleUpdateBudgetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var entry models.BudgetEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	entry.ID = id
	if err := h.validate(&entry); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := store.UpdateBudgetEntry(database.DB, &entry); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.SendJSONError(w, fmt.Sprintf("budget entry %d not found", id), http.StatusNotFound)
			return
		}
		utils.SendJSONError(w, fmt.Sprintf("error updating budget entry %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(recordEntityID(entry.EntityID))

	updated, err := store.GetBudgetEntryByID(database.DB, id)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error reloading budget entry %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *BudgetEntryHandler) HandleDeleteBudgetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	entry, err := store.GetBudgetEntryByID(database.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("budget entry %d not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error loading budget entry %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	if err := store.DeleteBudgetEntry(database.DB, id); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error deleting budget entry %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(recordEntityID(entry.EntityID))
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("budget entry %d deleted", id)})
}

// HandleAdvanceBudgetEntry moves the entry's anchor one cadence step
// forward, for marking an occurrence as settled without importing the
// matching transaction.
func (h *BudgetEntryHandler) HandleAdvanceBudgetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	entry, err := store.GetBudgetEntryByID(database.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("budget entry %d not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error loading budget entry %d: %v", id, err), http.StatusInternalServerError)
		return
	}

	anchor := utils.ParseDate(entry.NextOccurrence)
	if anchor.IsZero() {
		utils.SendJSONError(w, fmt.Sprintf("budget entry %d has an unparsable next_occurrence %q", id, entry.NextOccurrence), http.StatusConflict)
		return
	}
	next := forecast.NextOccurrence(anchor, entry.Cadence)
	if !next.After(anchor) {
		utils.SendJSONError(w, fmt.Sprintf("cadence %q does not advance", entry.Cadence), http.StatusConflict)
		return
	}

	if err := store.AdvanceBudgetEntryAnchor(database.DB, id, utils.FormatDate(next)); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error advancing budget entry %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(recordEntityID(entry.EntityID))

	updated, err := store.GetBudgetEntryByID(database.DB, id)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error reloading budget entry %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
