// backend/src/handlers/forecast_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/username/tallytrace/backend/src/config"
	"github.com/username/tallytrace/backend/src/models"
	"github.com/username/tallytrace/backend/src/services"
	"github.com/username/tallytrace/backend/src/utils"
)

const (
	maxCashflowMonths   = 24
	defaultUpcomingDays = 30
	maxUpcomingDays     = 365
)

type ForecastHandler struct {
	dashboardService services.DashboardService
}

func NewForecastHandler(dashboardService services.DashboardService) *ForecastHandler {
	return &ForecastHandler{dashboardService: dashboardService}
}

// HandleGetCashflow projects month-by-month income, expenses and balances.
func (h *ForecastHandler) HandleGetCashflow(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	months, err := utils.IntQueryParam(r, "months", config.Cfg.CashflowDefaultMonths, 1, maxCashflowMonths)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	periods, err := h.dashboardService.GetCashflow(entityID, months, time.Now())
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error projecting cashflow for entity %d: %v", entityID, err), http.StatusInternalServerError)
		return
	}
	if periods == nil {
		periods = []models.CashflowPeriod{}
	}
	writeJSON(w, http.StatusOK, periods)
}

// HandleGetUpcoming merges scheduled occurrences and unposted transactions
// due within the requested number of days.
func (h *ForecastHandler) HandleGetUpcoming(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	days, err := utils.IntQueryParam(r, "days", defaultUpcomingDays, 1, maxUpcomingDays)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	items, err := h.dashboardService.GetUpcoming(entityID, days, time.Now())
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error collecting upcoming items for entity %d: %v", entityID, err), http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.UpcomingItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleGetReminders lists risk-classified reminders for occurrences due
// within the requested number of days.
func (h *ForecastHandler) HandleGetReminders(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	days, err := utils.IntQueryParam(r, "days", config.Cfg.ReminderLookaheadDays, 1, maxUpcomingDays)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	reminders, err := h.dashboardService.GetReminders(entityID, days, time.Now())
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error collecting reminders for entity %d: %v", entityID, err), http.StatusInternalServerError)
		return
	}
	if reminders == nil {
		reminders = []models.UpcomingReminder{}
	}
	writeJSON(w, http.StatusOK, reminders)
}

// HandleGetDisposable reports cadence-normalized monthly income, expenses
// and what is left over.
func (h *ForecastHandler) HandleGetDisposable(w http.ResponseWriter, r *http.Request) {
	entityID := EntityIDFromRequest(r)
	disposable, err := h.dashboardService.GetDisposable(entityID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error computing disposable income for entity %d: %v", entityID, err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, disposable)
}
