// backend/src/handlers/entity_handler.go
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

type EntityHandler struct {
	dashboardService services.DashboardService
}

func NewEntityHandler(dashboardService services.DashboardService) *EntityHandler {
	return &EntityHandler{dashboardService: dashboardService}
}

func (h *EntityHandler) validate(entity *models.Entity) error {
	entity.Name = strings.TrimSpace(entity.Name)
	if entity.Name == "" {
		return fmt.Errorf("name is required")
	}
	if entity.EntityType == "" {
		entity.EntityType = models.EntityTypePersonal
	}
	if !entity.EntityType.IsValid() {
		return fmt.Errorf("invalid entity_type %q", entity.EntityType)
	}
	if entity.DefaultCurrency == "" {
		entity.DefaultCurrency = config.Cfg.DefaultCurrency
	}
	entity.DefaultCurrency = utils.NormalizeCurrency(entity.DefaultCurrency)
	if !utils.IsSupportedCurrency(entity.DefaultCurrency) {
		return fmt.Errorf("unsupported currency %q, supported: %s", entity.DefaultCurrency, strings.Join(utils.SupportedCurrencyCodes(), ", "))
	}
	return nil
}

func (h *EntityHandler) HandleCreateEntity(w http.ResponseWriter, r *http.Request) {
	var entity models.Entity
	if err := json.NewDecoder(r.Body).Decode(&entity); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	entity.IsActive = true
	if err := h.validate(&entity); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	exists, err := store.EntityNameExists(database.DB, entity.Name, 0)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error checking entity name: %v", err), http.StatusInternalServerError)
		return
	}
	if exists {
		utils.SendJSONError(w, fmt.Sprintf("an entity named %q already exists", entity.Name), http.StatusConflict)
		return
	}

	if err := store.CreateEntity(database.DB, &entity); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error creating entity: %v", err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(entity.ID)
	writeJSON(w, http.StatusCreated, entity)
}

func (h *EntityHandler) HandleListEntities(w http.ResponseWriter, r *http.Request) {
	active, err := boolQueryParam(r, "active")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	entities, err := store.ListEntities(database.DB, active != nil && *active)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error listing entities: %v", err), http.StatusInternalServerError)
		return
	}
	if entities == nil {
		entities = []models.Entity{}
	}
	writeJSON(w, http.StatusOK, entities)
}

func (h *EntityHandler) HandleGetEntity(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	entity, err := store.GetEntityByID(database.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.SendJSONError(w, fmt.Sprintf("entity %d not found", id), http.StatusNotFound)
		return
	}
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error loading entity %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entity)
}

func (h *EntityHandler) HandleUpdateEntity(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var entity models.Entity
	if err := json.NewDecoder(r.Body).Decode(&entity); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	entity.ID = id
	if err := h.validate(&entity); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	exists, err := store.EntityNameExists(database.DB, entity.Name, id)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error checking entity name: %v", err), http.StatusInternalServerError)
		return
	}
	if exists {
		utils.SendJSONError(w, fmt.Sprintf("an entity named %q already exists", entity.Name), http.StatusConflict)
		return
	}

	if err := store.UpdateEntity(database.DB, &entity); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.SendJSONError(w, fmt.Sprintf("entity %d not found", id), http.StatusNotFound)
			return
		}
		utils.SendJSONError(w, fmt.Sprintf("error updating entity %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(id)

	updated, err := store.GetEntityByID(database.DB, id)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error reloading entity %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *EntityHandler) HandleDeleteEntity(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := store.DeleteEntity(database.DB, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.SendJSONError(w, fmt.Sprintf("entity %d not found", id), http.StatusNotFound)
			return
		}
		utils.SendJSONError(w, fmt.Sprintf("error deleting entity %d: %v", id, err), http.StatusInternalServerError)
		return
	}
	h.dashboardService.InvalidateEntityCache(id)
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("entity %d deleted", id)})
}
