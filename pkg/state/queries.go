package state

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/model"
)

// ErrUnknownTemplate is returned by ApplyBudgetTemplate for an unknown name.
var ErrUnknownTemplate = errors.New("unknown budget template")

// Budget template names.
const (
	Template503020    = "50-30-20"
	TemplateZeroBased = "zero-based"
)

type allocation struct {
	category string
	share    decimal.Decimal
}

func share(parts ...string) decimal.Decimal {
	out := decimal.NewFromInt(1)
	for _, p := range parts {
		out = out.Mul(decimal.RequireFromString(p))
	}
	return out
}

// budgetTemplates maps template names to per-category shares of monthly
// income. 50-30-20 splits income into needs (50%), wants (30%) and savings
// (20%) and then distributes each bucket.
var budgetTemplates = map[string][]allocation{
	Template503020: {
		{"housing", share("0.5", "0.5")},
		{"utilities", share("0.5", "0.15")},
		{"food", share("0.5", "0.25")},
		{"transportation", share("0.5", "0.1")},
		{"entertainment", share("0.3", "0.4")},
		{"shopping", share("0.3", "0.3")},
		{"personal", share("0.3", "0.3")},
		{"healthcare", share("0.2", "0.25")},
		{"education", share("0.2", "0.25")},
		{"other-expense", share("0.2", "0.5")},
	},
	TemplateZeroBased: {
		{"housing", share("0.30")},
		{"utilities", share("0.08")},
		{"food", share("0.12")},
		{"transportation", share("0.10")},
		{"entertainment", share("0.05")},
		{"shopping", share("0.08")},
		{"personal", share("0.05")},
		{"healthcare", share("0.07")},
		{"education", share("0.05")},
		{"other-expense", share("0.10")},
	},
}

// TemplateNames lists the available budget templates.
func TemplateNames() []string {
	return []string{Template503020, TemplateZeroBased}
}

// ApplyBudgetTemplate replaces the whole budget mapping with the named
// template applied to the current month's income.
func (s *Store) ApplyBudgetTemplate(name string) error {
	allocs, ok := budgetTemplates[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}

	s.mutate(func() {
		income := MonthlyIncome(s.transactions, s.now())
		budgets := make(map[string]decimal.Decimal, len(allocs))
		for _, a := range allocs {
			budgets[a.category] = income.Mul(a.share)
		}
		s.budgets = budgets
	})
	s.logger.Debug("Applied budget template", "template", name)
	return nil
}

// FilteredTransactions returns the transactions matching f.
func (s *Store) FilteredTransactions(f Filter) []model.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterTransactions(s.transactions, f, s.now())
}

// BudgetUsage returns the current month's usage of category's budget.
func (s *Store) BudgetUsage(category string) Usage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return BudgetUsage(s.transactions, s.budgets, category, s.now())
}

// AllBudgetUsage returns usage for every expense category in the catalog,
// followed by any other budgeted category in name order.
func (s *Store) AllBudgetUsage() []Usage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	seen := map[string]bool{}
	var out []Usage
	for _, info := range s.catalog.Expense() {
		seen[info.ID] = true
		out = append(out, BudgetUsage(s.transactions, s.budgets, info.ID, now))
	}
	for _, cat := range sortedKeys(s.budgets) {
		if !seen[cat] {
			out = append(out, BudgetUsage(s.transactions, s.budgets, cat, now))
		}
	}
	return out
}

// Summary returns the summary for period p.
func (s *Store) Summary(p model.Period) Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Summarize(s.transactions, s.budgets, p, s.now())
}

// MonthlyTrend returns the six-month income and expense trend.
func (s *Store) MonthlyTrend() []MonthTrend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return MonthlyTrend(s.transactions, s.now())
}

// MonthlyIncome returns the current month's income.
func (s *Store) MonthlyIncome() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return MonthlyIncome(s.transactions, s.now())
}

// DebtPayoff returns the payoff duration in months of d.
func (s *Store) DebtPayoff(d model.Debt) (int, error) {
	return DebtPayoff(d)
}
