package api

import (
	"net/http"

	"github.com/shunichi-ikebuchi/budget-planner/pkg/model"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/state"
)

// ReportsHandler handles read-only aggregate endpoints and settings.
type ReportsHandler struct {
	store *state.Store
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(s *state.Store) *ReportsHandler {
	return &ReportsHandler{store: s}
}

// Summary handles GET /api/v1/summary?period=.
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	period, err := model.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid period")
		return
	}
	writeJSON(w, http.StatusOK, h.store.Summary(period))
}

// Trend handles GET /api/v1/trend.
func (h *ReportsHandler) Trend(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"months": h.store.MonthlyTrend()})
}

// Categories handles GET /api/v1/categories.
func (h *ReportsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	catalog := h.store.Catalog()
	writeJSON(w, http.StatusOK, map[string]any{
		"expense": catalog.Expense(),
		"income":  catalog.Income(),
	})
}

// Settings handles GET /api/v1/settings.
func (h *ReportsHandler) Settings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Settings())
}

// ToggleDarkMode handles POST /api/v1/settings/dark-mode.
func (h *ReportsHandler) ToggleDarkMode(w http.ResponseWriter, r *http.Request) {
	h.store.ToggleDarkMode()
	writeJSON(w, http.StatusOK, h.store.Settings())
}

// Templates handles GET /api/v1/budgets/templates.
func (h *ReportsHandler) Templates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"templates": state.TemplateNames()})
}
