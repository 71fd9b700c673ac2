package state

import (
	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/model"
)

// AddTransaction assigns an ID and creation time to in and inserts it at the
// front of the transaction list.
func (s *Store) AddTransaction(in model.TransactionInput) model.Transaction {
	tx := model.Transaction{
		ID:          s.newID(),
		Type:        in.Type,
		Amount:      in.Amount,
		Date:        in.Date,
		Category:    in.Category,
		Description: in.Description,
		Recurring:   in.Recurring,
		CreatedAt:   s.now(),
	}
	if tx.Recurring == "" {
		tx.Recurring = model.RecurNone
	}

	s.mutate(func() {
		s.transactions = append([]model.Transaction{tx}, s.transactions...)
	})
	return tx
}

// UpdateTransaction merges patch over the transaction with the given ID.
// It reports false, without notifying or persisting, if the ID is unknown.
func (s *Store) UpdateTransaction(id string, patch model.TransactionPatch) (model.Transaction, bool) {
	var updated model.Transaction
	found := s.mutateIf(func() bool {
		i := indexOf(s.transactions, id, txID)
		if i < 0 {
			return false
		}
		updated = patch.Apply(s.transactions[i])
		s.transactions[i] = updated
		return true
	})
	return updated, found
}

// DeleteTransaction removes the transaction with the given ID, if present.
func (s *Store) DeleteTransaction(id string) {
	s.mutate(func() {
		s.transactions = removeID(s.transactions, id, txID)
	})
}

// AddGoal appends a new goal.
func (s *Store) AddGoal(in model.GoalInput) model.Goal {
	g := model.Goal{
		ID:        s.newID(),
		Name:      in.Name,
		Target:    in.Target,
		Current:   in.Current,
		Deadline:  in.Deadline,
		Icon:      in.Icon,
		CreatedAt: s.now(),
	}

	s.mutate(func() {
		s.goals = append(s.goals, g)
	})
	return g
}

// UpdateGoal merges patch over the goal with the given ID.
func (s *Store) UpdateGoal(id string, patch model.GoalPatch) (model.Goal, bool) {
	var updated model.Goal
	found := s.mutateIf(func() bool {
		i := indexOf(s.goals, id, goalID)
		if i < 0 {
			return false
		}
		updated = patch.Apply(s.goals[i])
		s.goals[i] = updated
		return true
	})
	return updated, found
}

// ContributeToGoal adds amount to a goal's current savings.
func (s *Store) ContributeToGoal(id string, amount decimal.Decimal) (model.Goal, bool) {
	var updated model.Goal
	found := s.mutateIf(func() bool {
		i := indexOf(s.goals, id, goalID)
		if i < 0 {
			return false
		}
		s.goals[i].Current = s.goals[i].Current.Add(amount)
		updated = s.goals[i]
		return true
	})
	return updated, found
}

// DeleteGoal removes the goal with the given ID, if present.
func (s *Store) DeleteGoal(id string) {
	s.mutate(func() {
		s.goals = removeID(s.goals, id, goalID)
	})
}

// AddDebt appends a new debt.
func (s *Store) AddDebt(in model.DebtInput) model.Debt {
	d := model.Debt{
		ID:        s.newID(),
		Name:      in.Name,
		Principal: in.Principal,
		Rate:      in.Rate,
		Payment:   in.Payment,
		CreatedAt: s.now(),
	}

	s.mutate(func() {
		s.debts = append(s.debts, d)
	})
	return d
}

// UpdateDebt merges patch over the debt with the given ID.
func (s *Store) UpdateDebt(id string, patch model.DebtPatch) (model.Debt, bool) {
	var updated model.Debt
	found := s.mutateIf(func() bool {
		i := indexOf(s.debts, id, debtID)
		if i < 0 {
			return false
		}
		updated = patch.Apply(s.debts[i])
		s.debts[i] = updated
		return true
	})
	return updated, found
}

// DeleteDebt removes the debt with the given ID, if present.
func (s *Store) DeleteDebt(id string) {
	s.mutate(func() {
		s.debts = removeID(s.debts, id, debtID)
	})
}

// SetBudget sets the monthly limit for a category.
func (s *Store) SetBudget(category string, amount decimal.Decimal) {
	s.mutate(func() {
		s.budgets[category] = amount
	})
}

// ToggleDarkMode flips the dark mode setting.
func (s *Store) ToggleDarkMode() {
	s.mutate(func() {
		s.settings.DarkMode = !s.settings.DarkMode
	})
}
