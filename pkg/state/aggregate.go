package state

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/model"
)

var (
	// ErrNoPayment is returned by DebtPayoff when the monthly payment is not positive.
	ErrNoPayment = errors.New("debt has no monthly payment")

	// ErrUnpayable is returned by DebtPayoff when the payment never covers the interest.
	ErrUnpayable = errors.New("debt cannot be paid off with this payment")
)

var hundred = decimal.NewFromInt(100)

// Filter selects transactions for listing. Empty or "all" values disable
// the corresponding criterion. Period defaults to month.
type Filter struct {
	Search   string
	Type     string
	Category string
	Period   model.Period
}

// Usage is the spending against one category's monthly budget.
type Usage struct {
	Category   string          `json:"category"`
	Limit      decimal.Decimal `json:"limit"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"`
}

// Summary aggregates transactions over a reporting period.
type Summary struct {
	Period           model.Period               `json:"period"`
	Income           decimal.Decimal            `json:"income"`
	Expenses         decimal.Decimal            `json:"expenses"`
	Balance          decimal.Decimal            `json:"balance"`
	SavingsRate      float64                    `json:"savingsRate"`
	TotalBudget      decimal.Decimal            `json:"totalBudget"`
	BudgetUsed       float64                    `json:"budgetUsed"`
	Categories       map[string]decimal.Decimal `json:"categories"`
	TransactionCount int                        `json:"transactionCount"`
}

// MonthTrend is the income and expense total of one calendar month.
type MonthTrend struct {
	Label    string          `json:"month"`
	Year     int             `json:"year"`
	Month    time.Month      `json:"monthNumber"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// FilterTransactions applies f to txs. The period criterion is a rolling
// lookback from now: the last 7 days, 1 calendar month or 1 calendar year.
func FilterTransactions(txs []model.Transaction, f Filter, now time.Time) []model.Transaction {
	search := strings.ToLower(f.Search)
	start := lookbackStart(now, f.Period)

	out := []model.Transaction{}
	for _, t := range txs {
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Description), search) &&
			!strings.Contains(strings.ToLower(t.Category), search) {
			continue
		}
		if isActive(f.Type) && string(t.Type) != f.Type {
			continue
		}
		if isActive(f.Category) && t.Category != f.Category {
			continue
		}
		if t.Date.Before(start) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func isActive(v string) bool {
	return v != "" && v != "all"
}

func lookbackStart(now time.Time, p model.Period) time.Time {
	switch p {
	case model.PeriodWeek:
		return now.AddDate(0, 0, -7)
	case model.PeriodYear:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, -1, 0)
	}
}

// inSummaryWindow uses calendar windows: the trailing 7 days for week, the
// current calendar month for month and the current calendar year for year.
// This intentionally differs from lookbackStart.
func inSummaryWindow(d model.Date, now time.Time, p model.Period) bool {
	switch p {
	case model.PeriodWeek:
		return !d.Before(now.AddDate(0, 0, -7))
	case model.PeriodMonth:
		return d.SameMonth(now)
	default:
		return d.Year() == now.Year()
	}
}

// Summarize computes the summary of txs for period p.
func Summarize(txs []model.Transaction, budgets map[string]decimal.Decimal, p model.Period, now time.Time) Summary {
	if p == "" {
		p = model.PeriodMonth
	}
	sum := Summary{
		Period:     p,
		Categories: map[string]decimal.Decimal{},
	}

	for _, t := range txs {
		if !inSummaryWindow(t.Date, now, p) {
			continue
		}
		sum.TransactionCount++
		switch t.Type {
		case model.Income:
			sum.Income = sum.Income.Add(t.Amount)
		case model.Expense:
			sum.Expenses = sum.Expenses.Add(t.Amount)
			sum.Categories[t.Category] = sum.Categories[t.Category].Add(t.Amount)
		}
	}

	sum.Balance = sum.Income.Sub(sum.Expenses)
	sum.SavingsRate = percent(sum.Balance, sum.Income)
	for _, b := range budgets {
		sum.TotalBudget = sum.TotalBudget.Add(b)
	}
	sum.BudgetUsed = percent(sum.Expenses, sum.TotalBudget)
	return sum
}

// percent returns part/whole*100, or 0 when whole is not positive.
func percent(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Mul(hundred).InexactFloat64()
}

// BudgetUsage computes spending in category during the calendar month of now.
func BudgetUsage(txs []model.Transaction, budgets map[string]decimal.Decimal, category string, now time.Time) Usage {
	limit := budgets[category]
	spent := decimal.Zero
	for _, t := range txs {
		if t.Type == model.Expense && t.Category == category && t.Date.SameMonth(now) {
			spent = spent.Add(t.Amount)
		}
	}
	return Usage{
		Category:   category,
		Limit:      limit,
		Spent:      spent,
		Remaining:  limit.Sub(spent),
		Percentage: percent(spent, limit),
	}
}

// MonthlyIncome sums income during the calendar month of now.
func MonthlyIncome(txs []model.Transaction, now time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.Type == model.Income && t.Date.SameMonth(now) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// MonthlyTrend returns the last six calendar months including the current
// one, oldest first.
func MonthlyTrend(txs []model.Transaction, now time.Time) []MonthTrend {
	months := make([]MonthTrend, 0, 6)
	for i := 5; i >= 0; i-- {
		first := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location())
		m := MonthTrend{
			Label: first.Format("Jan"),
			Year:  first.Year(),
			Month: first.Month(),
		}
		for _, t := range txs {
			if !t.Date.SameMonth(first) {
				continue
			}
			switch t.Type {
			case model.Income:
				m.Income = m.Income.Add(t.Amount)
			case model.Expense:
				m.Expenses = m.Expenses.Add(t.Amount)
			}
		}
		months = append(months, m)
	}
	return months
}

// DebtPayoff returns the number of monthly payments needed to repay d.
func DebtPayoff(d model.Debt) (int, error) {
	if !d.Payment.IsPositive() {
		return 0, ErrNoPayment
	}

	principal := d.Principal.InexactFloat64()
	payment := d.Payment.InexactFloat64()
	monthlyRate := d.Rate.InexactFloat64() / 100 / 12

	if monthlyRate == 0 {
		return int(math.Ceil(principal / payment)), nil
	}

	months := -math.Log(1-(monthlyRate*principal)/payment) / math.Log(1+monthlyRate)
	if math.IsNaN(months) || math.IsInf(months, 0) {
		return 0, ErrUnpayable
	}
	return int(math.Ceil(months)), nil
}

// GoalProgress returns current/target*100, or 0 for a non-positive target.
func GoalProgress(g model.Goal) float64 {
	return percent(g.Current, g.Target)
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
