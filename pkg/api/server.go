package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/state"
)

// SyncStatus reports the remote sync state for /health.
type SyncStatus interface {
	RemoteActive() bool
	Identity() string
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Remote   bool   `json:"remote"`
	Identity string `json:"identity,omitempty"`
}

// NewRouter builds the HTTP routes over store. status may be nil.
func NewRouter(store *state.Store, hub *Hub, status SyncStatus) http.Handler {
	transactionsHandler := NewTransactionsHandler(store)
	goalsHandler := NewGoalsHandler(store)
	debtsHandler := NewDebtsHandler(store)
	budgetsHandler := NewBudgetsHandler(store)
	reportsHandler := NewReportsHandler(store)
	dataHandler := NewDataHandler(store)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok"}
		if status != nil {
			resp.Remote = status.RemoteActive()
			resp.Identity = status.Identity()
		}
		writeJSON(w, http.StatusOK, resp)
	})

	// The change stream is long-lived and stays outside the timeout.
	r.Get("/ws", hub.ServeWS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", transactionsHandler.List)
			r.Post("/", transactionsHandler.Create)
			r.Get("/{id}", transactionsHandler.Get)
			r.Patch("/{id}", transactionsHandler.Update)
			r.Delete("/{id}", transactionsHandler.Delete)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Get("/", goalsHandler.List)
			r.Post("/", goalsHandler.Create)
			r.Patch("/{id}", goalsHandler.Update)
			r.Delete("/{id}", goalsHandler.Delete)
			r.Post("/{id}/contribute", goalsHandler.Contribute)
		})

		r.Route("/debts", func(r chi.Router) {
			r.Get("/", debtsHandler.List)
			r.Post("/", debtsHandler.Create)
			r.Patch("/{id}", debtsHandler.Update)
			r.Delete("/{id}", debtsHandler.Delete)
			r.Get("/{id}/payoff", debtsHandler.Payoff)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", budgetsHandler.List)
			r.Get("/templates", reportsHandler.Templates)
			r.Post("/template", budgetsHandler.ApplyTemplate)
			r.Put("/{category}", budgetsHandler.Set)
		})

		r.Get("/summary", reportsHandler.Summary)
		r.Get("/trend", reportsHandler.Trend)
		r.Get("/categories", reportsHandler.Categories)
		r.Get("/settings", reportsHandler.Settings)
		r.Post("/settings/dark-mode", reportsHandler.ToggleDarkMode)

		r.Get("/export", dataHandler.Export)
		r.Post("/import", dataHandler.Import)
	})

	return r
}
