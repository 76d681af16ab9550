// backend/src/handlers/wishlist_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/username/tallytrace/backend/src/config"
	"github.com/username/tallytrace/backend/src/database"
	"github.com/username/tallytrace/backend/src/models"
	"github.com/username/tallytrace/backend/src/services"
	"github.com/username/tallytrace/backend/src/store"
	"github.com/username/tallytrace/backend/src/utils"
)

// purchasedAtFormat matches the SQLite CURRENT_TIMESTAMP shape used by the
// created_at and updated_at columns.
const purchasedAtFormat = "2006-01-02 15:04:05"

type WishlistHandler struct {
	dashboardService services.DashboardService
}

func NewWishlistHandler(dashboardService services.DashboardService) *WishlistHandler {
	return &WishlistHandler{dashboardService: dashboardService}
}

func (h *WishlistHandler) validate(item *models.WishlistItem) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return fmt.Errorf("name is required")
	}
	if item.EstimatedCost <= 0 {
		return fmt.Errorf("estimated_cost must be positive")
	}
	if item.Priority == "" {
		item.Priority = models.WishlistPriorityMedium
	}
	if !item.Priority.IsValid() {
		return fmt.Errorf("invalid priority %q", item.Priority)
	}
	if item.Currency == "" {
		item.Currency = config.Cfg.DefaultCurrency
	}
	item.Currency = utils.NormalizeCurrency(item.Currency)
	if !utils.IsSupportedCurrency(item.Currency) {
		return fmt.Errorf("unsupported currency %q, supported: %s", item.Currency, strings.Join(utils.SupportedCurrencyCodes(), ", "))
	}
	if item.TargetDate != "" && utils.ParseDate(item.TargetDate).IsZero() {
		return fmt.Errorf("target_date must be a date in %s format", utils.DefaultDateFormat)
	}
	return nil
}

func (h *WishlistHandler) HandleCreateWishlistItem(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	var item models.WishlistItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if item.EntityID == nil && entityID != 0 {
		item.EntityID = &entityID
	}
	if err := h.validate(&item); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if item.IsPurchased && item.PurchasedAt == "" {
		item.PurchasedAt = time.Now().UTC().Format(purchasedAtFormat)
	}

	if err := store.CreateWishlistItem(database.DB, &item); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error creating wishlist item: %v", err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(recordEntityID(item.EntityID))
	writeJSON(w, http.StatusCreated, item)
}

func (h *WishlistHandler) HandleListWishlistItems(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	includePurchased, err := boolQueryParam(r, "include_purchased")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	items, err := store.ListWishlistItems(database.DB, entityID, includePurchased != nil && *includePurchased)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error listing wishlist items for entity %d: %v", entityID, err), http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.WishlistItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *WishlistHandler) HandleGetWishlistItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	item, err := store.GetWishlistItemByID(database.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("wishlist item %d not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error loading wishlist item %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *WishlistHandler) HandleUpdateWishlistItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	current, err := store.GetWishlistItemByID(database.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("wishlist item %d not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error loading wishlist item %d: %v", id, err), http.StatusInternalServerError)
		return
	}

	var item models.WishlistItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	item.ID = id
	if err := h.validate(&item); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The purchase timestamp follows the is_purchased flag: stamped on the
	// transition to purchased, kept while purchased, cleared when undone.
	switch {
	case item.IsPurchased && !current.IsPurchased:
		item.PurchasedAt = time.Now().UTC().Format(purchasedAtFormat)
	case item.IsPurchased:
		if item.PurchasedAt == "" {
			item.PurchasedAt = current.PurchasedAt
		}
	default:
		item.PurchasedAt = ""
	}

	if err := store.UpdateWishlistItem(database.DB, &item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.SendJSONError(w, fmt.Sprintf("wishlist item %d not found", id), http.StatusNotFound)
			return
		}
		utils.SendJSONError(w, fmt.Sprintf("error updating wishlist item %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(recordEntityID(item.EntityID))

	updated, err := store.GetWishlistItemByID(database.DB, id)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error reloading wishlist item %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *WishlistHandler) HandleDeleteWishlistItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	item, err := store.GetWishlistItemByID(database.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("wishlist item %d not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error loading wishlist item %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	if err := store.DeleteWishlistItem(database.DB, id); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error deleting wishlist item %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(recordEntityID(item.EntityID))
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("wishlist item %d deleted", id)})
}

// HandleGetWishlistPlan sequences every unpurchased item into a savings
// schedule funded by half the monthly disposable income.
func (h *WishlistHandler) HandleGetWishlistPlan(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	plan, err := h.dashboardService.GetWishlistPlan(entityID, time.Now())
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error building wishlist plan for entity %d: %v", entityID, err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// HandleGetWishlistNextUp returns the few items the dashboard surfaces, with
// their affordability dates.
func (h *WishlistHandler) HandleGetWishlistNextUp(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	items, err := h.dashboardService.GetWishlistNextUp(entityID, time.Now())
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error fetching wishlist next-up for entity %d: %v", entityID, err), http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.WishlistNextUp{}
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleGetWishlistReadiness reports whether one item is affordable now and
// how long saving for it would take.
func (h *WishlistHandler) HandleGetWishlistReadiness(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	readiness, err := h.dashboardService.GetWishlistReadiness(entityID, id, time.Now())
	if errors.Is(err, services.ErrNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("wishlist item %d not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error computing readiness for wishlist item %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, readiness)
}
