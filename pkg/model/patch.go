package model

import "github.com/shopspring/decimal"

// TransactionInput carries the fields of a transaction before it is assigned
// an ID and creation time.
type TransactionInput struct {
	Type        TxType          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Date        Date            `json:"date"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Recurring   Recurrence      `json:"recurring,omitempty"`
}

// TransactionPatch is a shallow partial update. Nil fields are left unchanged.
type TransactionPatch struct {
	Type        *TxType          `json:"type,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Date        *Date            `json:"date,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Description *string          `json:"description,omitempty"`
	Recurring   *Recurrence      `json:"recurring,omitempty"`
}

// Apply returns t with the patch's non-nil fields merged over it.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Recurring != nil {
		t.Recurring = *p.Recurring
	}
	return t
}

// GoalInput carries the fields of a new goal. Current defaults to zero.
type GoalInput struct {
	Name     string          `json:"name"`
	Target   decimal.Decimal `json:"target"`
	Current  decimal.Decimal `json:"current"`
	Deadline *Date           `json:"deadline,omitempty"`
	Icon     string          `json:"icon,omitempty"`
}

// GoalPatch is a shallow partial update of a goal.
type GoalPatch struct {
	Name     *string          `json:"name,omitempty"`
	Target   *decimal.Decimal `json:"target,omitempty"`
	Current  *decimal.Decimal `json:"current,omitempty"`
	Deadline *Date            `json:"deadline,omitempty"`
	Icon     *string          `json:"icon,omitempty"`
}

// Apply returns g with the patch's non-nil fields merged over it.
func (p GoalPatch) Apply(g Goal) Goal {
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.Target != nil {
		g.Target = *p.Target
	}
	if p.Current != nil {
		g.Current = *p.Current
	}
	if p.Deadline != nil {
		d := *p.Deadline
		g.Deadline = &d
	}
	if p.Icon != nil {
		g.Icon = *p.Icon
	}
	return g
}

// DebtInput carries the fields of a new debt.
type DebtInput struct {
	Name      string          `json:"name"`
	Principal decimal.Decimal `json:"principal"`
	Rate      decimal.Decimal `json:"rate"`
	Payment   decimal.Decimal `json:"payment"`
}

// DebtPatch is a shallow partial update of a debt.
type DebtPatch struct {
	Name      *string          `json:"name,omitempty"`
	Principal *decimal.Decimal `json:"principal,omitempty"`
	Rate      *decimal.Decimal `json:"rate,omitempty"`
	Payment   *decimal.Decimal `json:"payment,omitempty"`
}

// Apply returns d with the patch's non-nil fields merged over it.
func (p DebtPatch) Apply(d Debt) Debt {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Principal != nil {
		d.Principal = *p.Principal
	}
	if p.Rate != nil {
		d.Rate = *p.Rate
	}
	if p.Payment != nil {
		d.Payment = *p.Payment
	}
	return d
}
