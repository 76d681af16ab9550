// backend/src/handlers/allocation_handler.go
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

type AllocationHandler struct {
	dashboardService services.DashboardService
}

func NewAllocationHandler(dashboardService services.DashboardService) *AllocationHandler {
	return &AllocationHandler{dashboardService: dashboardService}
}

func (h *AllocationHandler) validate(allocation *models.Allocation) error {
	allocation.Name = strings.TrimSpace(allocation.Name)
	if allocation.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !allocation.AllocationType.IsValid() {
		return fmt.Errorf("invalid allocation_type %q", allocation.AllocationType)
	}
	if allocation.TargetAmount < 0 || allocation.MonthlyTarget < 0 || allocation.CurrentAmount < 0 {
		return fmt.Errorf("amounts cannot be negative")
	}
	return nil
}

func (h *AllocationHandler) HandleCreateAllocation(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	var allocation models.Allocation
	if err := json.NewDecoder(r.Body).Decode(&allocation); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	allocation.IsActive = true
	if allocation.EntityID == nil && entityID != 0 {
		allocation.EntityID = &entityID
	}
	if err := h.validate(&allocation); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := store.CreateAllocation(database.DB, &allocation); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error creating allocation: %v", err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(recordEntityID(allocation.EntityID))
	writeJSON(w, http.StatusCreated, allocation)
}

func (h *AllocationHandler) HandleListAllocations(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	allocationType := r.URL.Query().Get("type")
	if allocationType != "" && !models.AllocationType(allocationType).IsValid() {
		utils.SendJSONError(w, fmt.Sprintf("invalid allocation type filter %q", allocationType), http.StatusBadRequest)
		return
	}
	allocations, err := store.ListAllocations(database.DB, entityID, allocationType)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error listing allocations for entity %d: %v", entityID, err), http.StatusInternalServerError)
		return
	}
	if allocations == nil {
		allocations = []models.Allocation{}
	}
	writeJSON(w, http.StatusOK, allocations)
}

func (h *AllocationHandler) HandleGetAllocation(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	allocation, err := store.GetAllocationByID(database.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("allocation %d not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error loading allocation %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, allocation)
}

func (h *AllocationHandler) HandleUpdateAllocation(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var allocation models.Allocation
	if err := json.NewDecoder(r.Body).Decode(&allocation); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	allocation.ID = id
	if err := h.validate(&allocation); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := store.UpdateAllocation(database.DB, &allocation); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.SendJSONError(w, fmt.Sprintf("allocation %d not found", id), http.StatusNotFound)
			return
		}
		utils.SendJSONError(w, fmt.Sprintf("error updating allocation %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(recordEntityID(allocation.EntityID))

	updated, err := store.GetAllocationByID(database.DB, id)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error reloading allocation %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *AllocationHandler) HandleDeleteAllocation(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	allocation, err := store.GetAllocationByID(database.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("allocation %d not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error loading allocation %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	if err := store.DeleteAllocation(database.DB, id); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error deleting allocation %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(recordEntityID(allocation.EntityID))
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("allocation %d deleted", id)})
}

// HandleGetGoalsProgress reports progress toward each goal allocation's
// target in the request's entity scope.
func (h *AllocationHandler) HandleGetGoalsProgress(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	progress, err := h.dashboardService.GetGoalsProgress(entityID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error computing goals progress for entity %d: %v", entityID, err), http.StatusInternalServerError)
		return
	}
	if progress == nil {
		progress = []models.GoalProgress{}
	}
	writeJSON(w, http.StatusOK, progress)
}
