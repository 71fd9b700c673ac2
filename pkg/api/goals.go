package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/model"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/state"
)

// GoalsHandler handles savings goal endpoints.
type GoalsHandler struct {
	store *state.Store
}

// NewGoalsHandler creates a new GoalsHandler.
func NewGoalsHandler(s *state.Store) *GoalsHandler {
	return &GoalsHandler{store: s}
}

// goalView is a goal with its progress percentage.
type goalView struct {
	model.Goal
	Progress float64 `json:"progress"`
}

func viewGoal(g model.Goal) goalView {
	return goalView{Goal: g, Progress: state.GoalProgress(g)}
}

// List handles GET /api/v1/goals.
func (h *GoalsHandler) List(w http.ResponseWriter, r *http.Request) {
	goals := h.store.Goals()
	views := make([]goalView, len(goals))
	for i, g := range goals {
		views[i] = viewGoal(g)
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": views})
}

// Create handles POST /api/v1/goals.
func (h *GoalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.GoalInput
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Missing name")
		return
	}
	if !req.Target.IsPositive() {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Target must be positive")
		return
	}
	if req.Current.IsNegative() {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Current must not be negative")
		return
	}

	g := h.store.AddGoal(req)
	writeJSON(w, http.StatusCreated, map[string]any{"goal": viewGoal(g)})
}

// Update handles PATCH /api/v1/goals/{id}.
func (h *GoalsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.GoalPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	g, ok := h.store.UpdateGoal(chi.URLParam(r, "id"), patch)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "Goal not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goal": viewGoal(g)})
}

// ContributeRequest is the body of POST /api/v1/goals/{id}/contribute.
type ContributeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Contribute handles POST /api/v1/goals/{id}/contribute.
func (h *GoalsHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	var req ContributeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.Amount.IsPositive() {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Amount must be positive")
		return
	}

	g, ok := h.store.ContributeToGoal(chi.URLParam(r, "id"), req.Amount)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "Goal not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goal": viewGoal(g)})
}

// Delete handles DELETE /api/v1/goals/{id}.
func (h *GoalsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.store.DeleteGoal(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
