// backend/src/handlers/dashboard_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/username/tallytrace/backend/src/logger"
	"github.com/username/tallytrace/backend/src/services"
	"github.com/username/tallytrace/backend/src/utils"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// HandleGetDashboard serves the combined dashboard view with ETag support,
// so a polling frontend only re-downloads when something actually changed.
func (h *DashboardHandler) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	logger.L.Debug("Handling dashboard request", "entityID", entityID)

	view, err := h.dashboardService.GetDashboard(entityID, time.Now())
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error building dashboard for entity %d: %v", entityID, err), http.StatusInternalServerError)
		return
	}

	currentETag, etagErr := utils.GenerateETag(view)
	if etagErr != nil {
		logger.L.Error("Failed to generate ETag for dashboard", "entityID", entityID, "error", etagErr)
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		clientETag := r.Header.Get("If-None-Match")
		for _, cETag := range strings.Split(clientETag, ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				logger.L.Debug("ETag match for dashboard", "entityID", entityID, "etag", currentETag)
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	writeJSON(w, http.StatusOK, view)
}

// HandleGetSnapshot serves the raw period snapshot for an arbitrary
// reporting window. start and end default to the current calendar month;
// currency defaults to the scoped entity's currency.
func (h *DashboardHandler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	now := time.Now()

	startParam, err := dateQueryParam(r, "start")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	endParam, err := dateQueryParam(r, "end")
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	periodStart := utils.MonthStart(now)
	periodEnd := periodStart.AddDate(0, 1, 0).AddDate(0, 0, -1)
	if startParam != "" {
		periodStart = utils.ParseDate(startParam)
	}
	if endParam != "" {
		periodEnd = utils.ParseDate(endParam)
	}
	if periodEnd.Before(periodStart) {
		utils.SendJSONError(w, "end cannot be before start", http.StatusBadRequest)
		return
	}

	currency := r.URL.Query().Get("currency")
	if currency != "" {
		currency = utils.NormalizeCurrency(currency)
		if !utils.IsSupportedCurrency(currency) {
			utils.SendJSONError(w, fmt.Sprintf("unsupported currency %q, supported: %s", currency, strings.Join(utils.SupportedCurrencyCodes(), ", ")), http.StatusBadRequest)
			return
		}
	}

	snapshot, err := h.dashboardService.GetSnapshot(entityID, periodStart, periodEnd, now, currency)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error computing snapshot for entity %d: %v", entityID, err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}
