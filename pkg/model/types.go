// Package model defines the budget planner's domain entities and the snapshot
// schema shared by local persistence and remote sync.
package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Snapshots written by earlier clients store amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// TxType is the direction of a transaction.
type TxType string

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

// Valid reports whether t is income or expense.
func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

// Recurrence describes how often a transaction repeats.
type Recurrence string

const (
	RecurNone    Recurrence = "none"
	RecurDaily   Recurrence = "daily"
	RecurWeekly  Recurrence = "weekly"
	RecurMonthly Recurrence = "monthly"
	RecurYearly  Recurrence = "yearly"
)

// Valid reports whether r is a known recurrence.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurNone, RecurDaily, RecurWeekly, RecurMonthly, RecurYearly:
		return true
	}
	return false
}

// Period is a reporting window selector.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod parses a period name. An empty string yields PeriodMonth.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "":
		return PeriodMonth, nil
	case PeriodWeek, PeriodMonth, PeriodYear:
		return Period(s), nil
	}
	return "", fmt.Errorf("invalid period %q: expected week, month or year", s)
}

// Transaction is a single income or expense record.
// Amount is always a positive magnitude; the sign is implied by Type.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TxType          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Date        Date            `json:"date"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Recurring   Recurrence      `json:"recurring,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Goal is a savings target. Current may exceed Target.
type Goal struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Target    decimal.Decimal `json:"target"`
	Current   decimal.Decimal `json:"current"`
	Deadline  *Date           `json:"deadline,omitempty"`
	Icon      string          `json:"icon,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Debt is an amortizing liability. Rate is an annual percentage.
type Debt struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Principal decimal.Decimal `json:"principal"`
	Rate      decimal.Decimal `json:"rate"`
	Payment   decimal.Decimal `json:"payment"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Settings holds user preferences.
type Settings struct {
	DarkMode    bool   `json:"darkMode"`
	DefaultView Period `json:"defaultView"`
	Currency    string `json:"currency"`
}

// DefaultSettings returns the settings used before anything is loaded.
func DefaultSettings() Settings {
	return Settings{
		DarkMode:    false,
		DefaultView: PeriodMonth,
		Currency:    "DZD",
	}
}
