package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/model"
)

// ErrMalformedImport is returned by ImportJSON when the document cannot be
// parsed or carries none of the expected collections.
var ErrMalformedImport = errors.New("malformed import document")

// Export is the JSON document produced by ExportJSON.
type Export struct {
	Transactions []model.Transaction        `json:"transactions"`
	Budgets      map[string]decimal.Decimal `json:"budgets"`
	Goals        []model.Goal               `json:"goals"`
	Debts        []model.Debt               `json:"debts"`
	ExportedAt   *time.Time                 `json:"exportedAt,omitempty"`
}

// ExportJSON serializes all collections as an indented JSON document.
func (s *Store) ExportJSON() ([]byte, error) {
	snap := s.Snapshot()
	now := s.now()
	doc := Export{
		Transactions: snap.Transactions,
		Budgets:      snap.Budgets,
		Goals:        snap.Goals,
		Debts:        snap.Debts,
		ExportedAt:   &now,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	return data, nil
}

// ImportJSON replaces each collection present in data. On success it
// notifies observers and persists; on failure the store is left untouched.
func (s *Store) ImportJSON(data []byte) error {
	var doc Export
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Error("Failed to import data", "error", err)
		return fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	if doc.Transactions == nil && doc.Budgets == nil && doc.Goals == nil && doc.Debts == nil {
		return fmt.Errorf("%w: no transactions, budgets, goals or debts found", ErrMalformedImport)
	}
	if err := doc.validate(); err != nil {
		s.logger.Error("Rejected import", "error", err)
		return fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}

	s.mutate(func() {
		if doc.Transactions != nil {
			s.transactions = doc.Transactions
		}
		if doc.Budgets != nil {
			s.budgets = doc.Budgets
		}
		if doc.Goals != nil {
			s.goals = doc.Goals
		}
		if doc.Debts != nil {
			s.debts = doc.Debts
		}
	})
	s.logger.Info("Imported data",
		"transactions", len(doc.Transactions),
		"budgets", len(doc.Budgets),
		"goals", len(doc.Goals),
		"debts", len(doc.Debts),
	)
	return nil
}

func (doc *Export) validate() error {
	ids := map[string]bool{}
	for i, t := range doc.Transactions {
		switch {
		case t.ID == "" || ids[t.ID]:
			return fmt.Errorf("transaction %d: missing or duplicate id %q", i, t.ID)
		case !t.Type.Valid():
			return fmt.Errorf("transaction %s: invalid type %q", t.ID, t.Type)
		case t.Amount.IsNegative():
			return fmt.Errorf("transaction %s: negative amount", t.ID)
		case t.Date.IsZero():
			return fmt.Errorf("transaction %s: missing date", t.ID)
		case t.Recurring != "" && !t.Recurring.Valid():
			return fmt.Errorf("transaction %s: invalid recurrence %q", t.ID, t.Recurring)
		}
		ids[t.ID] = true
	}

	for cat, limit := range doc.Budgets {
		if limit.IsNegative() {
			return fmt.Errorf("budget %s: negative limit", cat)
		}
	}

	ids = map[string]bool{}
	for i, g := range doc.Goals {
		switch {
		case g.ID == "" || ids[g.ID]:
			return fmt.Errorf("goal %d: missing or duplicate id %q", i, g.ID)
		case !g.Target.IsPositive():
			return fmt.Errorf("goal %s: target must be positive", g.ID)
		case g.Current.IsNegative():
			return fmt.Errorf("goal %s: negative current amount", g.ID)
		}
		ids[g.ID] = true
	}

	ids = map[string]bool{}
	for i, d := range doc.Debts {
		switch {
		case d.ID == "" || ids[d.ID]:
			return fmt.Errorf("debt %d: missing or duplicate id %q", i, d.ID)
		case d.Principal.IsNegative() || d.Rate.IsNegative() || d.Payment.IsNegative():
			return fmt.Errorf("debt %s: negative principal, rate or payment", d.ID)
		}
		ids[d.ID] = true
	}
	return nil
}
