package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shunichi-ikebuchi/budget-planner/pkg/state"
)

// maxImportSize bounds an import request body.
const maxImportSize = 10 << 20

// DataHandler handles export and import.
type DataHandler struct {
	store *state.Store
}

// NewDataHandler creates a new DataHandler.
func NewDataHandler(s *state.Store) *DataHandler {
	return &DataHandler{store: s}
}

// Export handles GET /api/v1/export.
func (h *DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.ExportJSON()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to export data")
		return
	}

	filename := fmt.Sprintf("budget-planner-%s.json", h.store.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Import handles POST /api/v1/import.
func (h *DataHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportSize))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to read request body")
		return
	}

	if err := h.store.ImportJSON(data); err != nil {
		if errors.Is(err, state.ErrMalformedImport) {
			writeJSONError(w, http.StatusBadRequest, "malformed_import", err.Error())
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Failed to import data")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": len(h.store.Transactions()),
		"goals":        len(h.store.Goals()),
		"debts":        len(h.store.Debts()),
		"budgets":      len(h.store.Budgets()),
	})
}
