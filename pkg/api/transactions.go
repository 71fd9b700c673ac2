package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/model"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/state"
)

// TransactionsHandler handles transaction endpoints.
type TransactionsHandler struct {
	store *state.Store
}

// NewTransactionsHandler creates a new TransactionsHandler.
func NewTransactionsHandler(s *state.Store) *TransactionsHandler {
	return &TransactionsHandler{store: s}
}

// List handles GET /api/v1/transactions.
// Query parameters search, type, category and period filter the result.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	period, err := model.ParsePeriod(q.Get("period"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid period")
		return
	}
	txType := q.Get("type")
	if txType != "" && txType != "all" && !model.TxType(txType).Valid() {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid type")
		return
	}

	txs := h.store.FilteredTransactions(state.Filter{
		Search:   q.Get("search"),
		Type:     txType,
		Category: q.Get("category"),
		Period:   period,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": txs,
	})
}

// Get handles GET /api/v1/transactions/{id}.
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tx, ok := h.store.Transaction(chi.URLParam(r, "id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "Transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transaction": tx})
}

// Create handles POST /api/v1/transactions.
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.TransactionInput
	if !decodeBody(w, r, &req) {
		return
	}

	if !req.Type.Valid() {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Type must be income or expense")
		return
	}
	if req.Amount.IsNegative() {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Amount must not be negative")
		return
	}
	if req.Category == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Missing category")
		return
	}
	if req.Recurring != "" && !req.Recurring.Valid() {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid recurring")
		return
	}
	if req.Date.IsZero() {
		req.Date = model.DateOf(h.store.Now())
	}

	tx := h.store.AddTransaction(req)
	writeJSON(w, http.StatusCreated, map[string]any{"transaction": tx})
}

// Update handles PATCH /api/v1/transactions/{id}.
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.TransactionPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	if patch.Type != nil && !patch.Type.Valid() {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Type must be income or expense")
		return
	}
	if patch.Amount != nil && patch.Amount.IsNegative() {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Amount must not be negative")
		return
	}

	tx, ok := h.store.UpdateTransaction(chi.URLParam(r, "id"), patch)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "Transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transaction": tx})
}

// Delete handles DELETE /api/v1/transactions/{id}.
// Deleting an unknown ID succeeds.
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.store.DeleteTransaction(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
