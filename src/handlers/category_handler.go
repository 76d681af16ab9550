// backend/src/handlers/category_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/tallytrace/backend/src/database"
	"github.com/username/tallytrace/backend/src/models"
	"github.com/username/tallytrace/backend/src/services"
	"github.com/username/tallytrace/backend/src/store"
	"github.com/username/tallytrace/backend/src/utils"
)

type CategoryHandler struct {
	dashboardService services.DashboardService
}

func NewCategoryHandler(dashboardService services.DashboardService) *CategoryHandler {
	return &CategoryHandler{dashboardService: dashboardService}
}

func (h *CategoryHandler) validate(category *models.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return fmt.Errorf("name is required")
	}
	category.Description = strings.TrimSpace(category.Description)
	category.Color = strings.TrimSpace(category.Color)
	return nil
}

func (h *CategoryHandler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	var category models.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	category.IsActive = true
	if category.EntityID == nil && entityID != 0 {
		category.EntityID = &entityID
	}
	if err := h.validate(&category); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	exists, err := store.CategoryNameExists(database.DB, recordEntityID(category.EntityID), category.Name, 0)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error checking category name: %v", err), http.StatusInternalServerError)
		return
	}
	if exists {
		utils.SendJSONError(w, fmt.Sprintf("a category named %q already exists", category.Name), http.StatusConflict)
		return
	}

	if err := store.CreateCategory(database.DB, &category); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error creating category: %v", err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(recordEntityID(category.EntityID))
	writeJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	expense, err := boolQueryParam(r, "expense")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	categories, err := store.ListCategories(database.DB, entityID, expense)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error listing categories for entity %d: %v", entityID, err), http.StatusInternalServerError)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) HandleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	category, err := store.GetCategoryByID(database.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("category %d not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error loading category %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var category models.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	category.ID = id
	if err := h.validate(&category); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	exists, err := store.CategoryNameExists(database.DB, recordEntityID(category.EntityID), category.Name, id)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error checking category name: %v", err), http.StatusInternalServerError)
		return
	}
	if exists {
		utils.SendJSONError(w, fmt.Sprintf("a category named %q already exists", category.Name), http.StatusConflict)
		return
	}

	if err := store.UpdateCategory(database.DB, &category); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.SendJSONError(w, fmt.Sprintf("category %d not found", id), http.StatusNotFound)
			return
		}
		utils.SendJSONError(w, fmt.Sprintf("error updating category %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(recordEntityID(category.EntityID))

	updated, err := store.GetCategoryByID(database.DB, id)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error reloading category %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *CategoryHandler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	category, err := store.GetCategoryByID(database.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("category %d not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error loading category %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	if err := store.DeleteCategory(database.DB, id); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error deleting category %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(recordEntityID(category.EntityID))
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("category %d deleted", id)})
}
