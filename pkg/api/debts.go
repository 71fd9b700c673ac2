package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/model"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/state"
)

// DebtsHandler handles debt endpoints.
type DebtsHandler struct {
	store *state.Store
}

// NewDebtsHandler creates a new DebtsHandler.
func NewDebtsHandler(s *state.Store) *DebtsHandler {
	return &DebtsHandler{store: s}
}

// List handles GET /api/v1/debts.
func (h *DebtsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"debts": h.store.Debts()})
}

// Create handles POST /api/v1/debts.
func (h *DebtsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.DebtInput
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Missing name")
		return
	}
	if req.Principal.IsNegative() || req.Rate.IsNegative() || req.Payment.IsNegative() {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Principal, rate and payment must not be negative")
		return
	}

	d := h.store.AddDebt(req)
	writeJSON(w, http.StatusCreated, map[string]any{"debt": d})
}

// Update handles PATCH /api/v1/debts/{id}.
func (h *DebtsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.DebtPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	d, ok := h.store.UpdateDebt(chi.URLParam(r, "id"), patch)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "Debt not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"debt": d})
}

// Delete handles DELETE /api/v1/debts/{id}.
func (h *DebtsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.store.DeleteDebt(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// PayoffResponse is the body of GET /api/v1/debts/{id}/payoff.
type PayoffResponse struct {
	DebtID string `json:"debtId"`
	Months int    `json:"months"`
}

// Payoff handles GET /api/v1/debts/{id}/payoff.
func (h *DebtsHandler) Payoff(w http.ResponseWriter, r *http.Request) {
	d, ok := h.store.Debt(chi.URLParam(r, "id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "Debt not found")
		return
	}

	months, err := h.store.DebtPayoff(d)
	switch {
	case errors.Is(err, state.ErrNoPayment):
		writeJSONError(w, http.StatusUnprocessableEntity, "no_payment", err.Error())
		return
	case errors.Is(err, state.ErrUnpayable):
		writeJSONError(w, http.StatusUnprocessableEntity, "unpayable", err.Error())
		return
	case err != nil:
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to compute payoff")
		return
	}

	writeJSON(w, http.StatusOK, PayoffResponse{DebtID: d.ID, Months: months})
}
