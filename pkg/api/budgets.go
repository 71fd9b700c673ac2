package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/state"
)

// BudgetsHandler handles budget endpoints.
type BudgetsHandler struct {
	store *state.Store
}

// NewBudgetsHandler creates a new BudgetsHandler.
func NewBudgetsHandler(s *state.Store) *BudgetsHandler {
	return &BudgetsHandler{store: s}
}

// List handles GET /api/v1/budgets.
// It returns the limits and the current month's usage per category.
func (h *BudgetsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"budgets": h.store.Budgets(),
		"usage":   h.store.AllBudgetUsage(),
	})
}

// SetBudgetRequest is the body of PUT /api/v1/budgets/{category}.
type SetBudgetRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Set handles PUT /api/v1/budgets/{category}.
func (h *BudgetsHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req SetBudgetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Amount.IsNegative() {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Amount must not be negative")
		return
	}

	category := chi.URLParam(r, "category")
	h.store.SetBudget(category, req.Amount)
	writeJSON(w, http.StatusOK, map[string]any{"usage": h.store.BudgetUsage(category)})
}

// TemplateRequest is the body of POST /api/v1/budgets/template.
type TemplateRequest struct {
	Template string `json:"template"`
}

// ApplyTemplate handles POST /api/v1/budgets/template.
func (h *BudgetsHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.store.ApplyBudgetTemplate(req.Template); err != nil {
		if errors.Is(err, state.ErrUnknownTemplate) {
			writeJSONError(w, http.StatusBadRequest, "unknown_template", err.Error())
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to apply template")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"budgets": h.store.Budgets()})
}
