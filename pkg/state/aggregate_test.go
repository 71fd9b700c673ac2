package state

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/budget-planner/pkg/model"
)

func sampleTransactions() []model.Transaction {
	return []model.Transaction{
		{ID: "1", Type: model.Income, Amount: dec("3000"), Date: model.NewDate(2026, 10, 1), Category: "salary", Description: "October pay"},
		{ID: "2", Type: model.Expense, Amount: dec("120.50"), Date: model.NewDate(2026, 10, 14), Category: "food", Description: "Groceries"},
		{ID: "3", Type: model.Expense, Amount: dec("900"), Date: model.NewDate(2026, 10, 2), Category: "housing", Description: "Rent"},
		{ID: "4", Type: model.Expense, Amount: dec("40"), Date: model.NewDate(2026, 9, 25), Category: "food", Description: "Pizza night"},
		{ID: "5", Type: model.Income, Amount: dec("2800"), Date: model.NewDate(2026, 9, 1), Category: "salary", Description: "September pay"},
		{ID: "6", Type: model.Expense, Amount: dec("75"), Date: model.NewDate(2025, 11, 3), Category: "shopping", Description: "Shoes"},
		{ID: "7", Type: model.Expense, Amount: dec("15"), Date: model.NewDate(2026, 10, 12), Category: "transportation", Description: "Bus pass"},
		{ID: "8", Type: model.Expense, Amount: dec("60"), Date: model.NewDate(2024, 1, 5), Category: "food", Description: "Old dinner"},
	}
}

func ids(txs []model.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterTransactions(t *testing.T) {
	txs := sampleTransactions()

	tests := []struct {
		name     string
		filter   Filter
		expected []string
	}{
		{"month lookback includes late previous month", Filter{Period: model.PeriodMonth}, []string{"1", "2", "3", "4", "7"}},
		{"default period is month", Filter{}, []string{"1", "2", "3", "4", "7"}},
		{"week lookback", Filter{Period: model.PeriodWeek}, []string{"2"}},
		{"year lookback spans calendar years", Filter{Period: model.PeriodYear}, []string{"1", "2", "3", "4", "5", "6", "7"}},
		{"search description case-insensitive", Filter{Search: "PIZZA", Period: model.PeriodYear}, []string{"4"}},
		{"search matches category", Filter{Search: "hous", Period: model.PeriodYear}, []string{"3"}},
		{"type filter", Filter{Type: "income", Period: model.PeriodYear}, []string{"1", "5"}},
		{"type all passes", Filter{Type: "all", Period: model.PeriodWeek}, []string{"2"}},
		{"category filter", Filter{Category: "food", Period: model.PeriodYear}, []string{"2", "4"}},
		{"filters compose", Filter{Search: "pay", Type: "income", Category: "salary", Period: model.PeriodMonth}, []string{"1"}},
		{"no match", Filter{Search: "yacht", Period: model.PeriodYear}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ids(FilterTransactions(txs, tt.filter, testNow))
			if !equalIDs(result, tt.expected) {
				t.Errorf("FilterTransactions(%+v) = %v, expected %v", tt.filter, result, tt.expected)
			}
		})
	}
}

func TestSummarizeUsesCalendarWindows(t *testing.T) {
	txs := sampleTransactions()

	tests := []struct {
		name     string
		period   model.Period
		income   string
		expenses string
		count    int
	}{
		{"month is the calendar month", model.PeriodMonth, "3000", "1035.5", 4},
		{"week is the trailing seven days", model.PeriodWeek, "0", "120.5", 1},
		{"year is the calendar year", model.PeriodYear, "5800", "1075.5", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := Summarize(txs, nil, tt.period, testNow)
			if !sum.Income.Equal(dec(tt.income)) {
				t.Errorf("Income = %s, expected %s", sum.Income, tt.income)
			}
			if !sum.Expenses.Equal(dec(tt.expenses)) {
				t.Errorf("Expenses = %s, expected %s", sum.Expenses, tt.expenses)
			}
			if sum.TransactionCount != tt.count {
				t.Errorf("TransactionCount = %d, expected %d", sum.TransactionCount, tt.count)
			}
			if !sum.Income.Sub(sum.Expenses).Equal(sum.Balance) {
				t.Errorf("Balance %s != income - expenses", sum.Balance)
			}
		})
	}
}

func TestSummarizeRatesAndBreakdown(t *testing.T) {
	txs := sampleTransactions()
	budgets := map[string]decimal.Decimal{"food": dec("300"), "housing": dec("1000"), "utilities": dec("200")}

	sum := Summarize(txs, budgets, model.PeriodMonth, testNow)

	if !sum.TotalBudget.Equal(dec("1500")) {
		t.Errorf("TotalBudget = %s, expected 1500", sum.TotalBudget)
	}
	// (3000 - 1035.5) / 3000 * 100
	if math.Abs(sum.SavingsRate-65.48333333333333) > 1e-9 {
		t.Errorf("SavingsRate = %v, expected ~65.483", sum.SavingsRate)
	}
	// 1035.5 / 1500 * 100
	if math.Abs(sum.BudgetUsed-69.03333333333333) > 1e-9 {
		t.Errorf("BudgetUsed = %v, expected ~69.033", sum.BudgetUsed)
	}
	if !sum.Categories["food"].Equal(dec("120.5")) || !sum.Categories["housing"].Equal(dec("900")) {
		t.Errorf("Categories = %v", sum.Categories)
	}
	if _, ok := sum.Categories["salary"]; ok {
		t.Error("income categories should not appear in the expense breakdown")
	}
}

func TestSummarizeZeroIncome(t *testing.T) {
	txs := []model.Transaction{
		{ID: "1", Type: model.Expense, Amount: dec("50"), Date: model.NewDate(2026, 10, 3), Category: "food"},
	}

	sum := Summarize(txs, nil, model.PeriodMonth, testNow)
	if sum.SavingsRate != 0 || sum.BudgetUsed != 0 {
		t.Errorf("SavingsRate=%v BudgetUsed=%v, expected 0 and 0", sum.SavingsRate, sum.BudgetUsed)
	}
	if math.IsNaN(sum.SavingsRate) || math.IsInf(sum.SavingsRate, 0) {
		t.Error("SavingsRate must be finite")
	}
	if !sum.Balance.Equal(dec("-50")) {
		t.Errorf("Balance = %s, expected -50", sum.Balance)
	}
}

func TestBudgetUsage(t *testing.T) {
	txs := sampleTransactions()
	budgets := map[string]decimal.Decimal{"food": dec("200")}

	u := BudgetUsage(txs, budgets, "food", testNow)
	if !u.Limit.Equal(dec("200")) || !u.Spent.Equal(dec("120.5")) || !u.Remaining.Equal(dec("79.5")) {
		t.Errorf("BudgetUsage(food) = %+v", u)
	}
	if u.Percentage != 60.25 {
		t.Errorf("Percentage = %v, expected 60.25", u.Percentage)
	}

	noBudget := BudgetUsage(txs, budgets, "housing", testNow)
	if !noBudget.Limit.IsZero() || noBudget.Percentage != 0 {
		t.Errorf("unbudgeted category should have zero limit and percentage, got %+v", noBudget)
	}
	if !noBudget.Spent.Equal(dec("900")) || !noBudget.Remaining.Equal(dec("-900")) {
		t.Errorf("unbudgeted spend = %+v", noBudget)
	}
}

func TestMonthlyTrend(t *testing.T) {
	trend := MonthlyTrend(sampleTransactions(), testNow)

	if len(trend) != 6 {
		t.Fatalf("len(trend) = %d, expected 6", len(trend))
	}
	labels := []string{"May", "Jun", "Jul", "Aug", "Sep", "Oct"}
	for i, m := range trend {
		if m.Label != labels[i] {
			t.Errorf("trend[%d].Label = %q, expected %q", i, m.Label, labels[i])
		}
		if m.Year != 2026 {
			t.Errorf("trend[%d].Year = %d, expected 2026", i, m.Year)
		}
	}
	if !trend[4].Income.Equal(dec("2800")) || !trend[4].Expenses.Equal(dec("40")) {
		t.Errorf("September = %+v", trend[4])
	}
	if !trend[5].Income.Equal(dec("3000")) || !trend[5].Expenses.Equal(dec("1035.5")) {
		t.Errorf("October = %+v", trend[5])
	}
	if !trend[0].Income.IsZero() || !trend[0].Expenses.IsZero() {
		t.Errorf("May should be empty, got %+v", trend[0])
	}
}

func TestMonthlyTrendCrossesYearBoundary(t *testing.T) {
	now := time.Date(2026, time.February, 10, 9, 0, 0, 0, time.Local)
	txs := []model.Transaction{
		{ID: "1", Type: model.Income, Amount: dec("10"), Date: model.NewDate(2025, 9, 30)},
		{ID: "2", Type: model.Income, Amount: dec("20"), Date: model.NewDate(2025, 12, 31)},
	}

	trend := MonthlyTrend(txs, now)
	expected := []struct {
		label string
		year  int
	}{{"Sep", 2025}, {"Oct", 2025}, {"Nov", 2025}, {"Dec", 2025}, {"Jan", 2026}, {"Feb", 2026}}
	for i, e := range expected {
		if trend[i].Label != e.label || trend[i].Year != e.year {
			t.Errorf("trend[%d] = %s %d, expected %s %d", i, trend[i].Label, trend[i].Year, e.label, e.year)
		}
	}
	if !trend[0].Income.Equal(dec("10")) || !trend[3].Income.Equal(dec("20")) {
		t.Errorf("unexpected totals: %+v", trend)
	}
}

func TestDebtPayoff(t *testing.T) {
	tests := []struct {
		name      string
		debt      model.Debt
		expected  int
		expectErr error
	}{
		{"zero rate", model.Debt{Principal: dec("1200"), Rate: dec("0"), Payment: dec("100")}, 12, nil},
		{"zero rate rounds up", model.Debt{Principal: dec("1250"), Payment: dec("100")}, 13, nil},
		{"no payment", model.Debt{Principal: dec("1000"), Rate: dec("12"), Payment: dec("0")}, 0, ErrNoPayment},
		{"negative payment", model.Debt{Principal: dec("1000"), Rate: dec("12"), Payment: dec("-5")}, 0, ErrNoPayment},
		{"amortizing", model.Debt{Principal: dec("1000"), Rate: dec("12"), Payment: dec("100")}, 11, nil},
		{"payment below interest", model.Debt{Principal: dec("10000"), Rate: dec("24"), Payment: dec("50")}, 0, ErrUnpayable},
		{"nothing owed", model.Debt{Principal: dec("0"), Rate: dec("5"), Payment: dec("10")}, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			months, err := DebtPayoff(tt.debt)
			if !errors.Is(err, tt.expectErr) {
				t.Fatalf("DebtPayoff() error = %v, expected %v", err, tt.expectErr)
			}
			if months != tt.expected {
				t.Errorf("DebtPayoff() = %d, expected %d", months, tt.expected)
			}
		})
	}
}

func TestGoalProgress(t *testing.T) {
	tests := []struct {
		name     string
		goal     model.Goal
		expected float64
	}{
		{"half way", model.Goal{Target: dec("200"), Current: dec("100")}, 50},
		{"exceeded", model.Goal{Target: dec("100"), Current: dec("150")}, 150},
		{"no target", model.Goal{Current: dec("10")}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GoalProgress(tt.goal); got != tt.expected {
				t.Errorf("GoalProgress() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestStoreQueriesUseClock(t *testing.T) {
	s := newTestStore()
	s.Init(&model.Snapshot{Transactions: sampleTransactions()})
	s.SetBudget("food", dec("200"))

	if got := s.BudgetUsage("food"); !got.Spent.Equal(dec("120.5")) {
		t.Errorf("BudgetUsage(food).Spent = %s, expected 120.5", got.Spent)
	}
	if got := s.MonthlyIncome(); !got.Equal(dec("3000")) {
		t.Errorf("MonthlyIncome() = %s, expected 3000", got)
	}
	if got := len(s.MonthlyTrend()); got != 6 {
		t.Errorf("len(MonthlyTrend()) = %d, expected 6", got)
	}
	if got := s.Summary(model.PeriodMonth).TransactionCount; got != 4 {
		t.Errorf("Summary(month).TransactionCount = %d, expected 4", got)
	}

	usage := s.AllBudgetUsage()
	if len(usage) != len(s.Catalog().Expense()) {
		t.Errorf("AllBudgetUsage() returned %d entries, expected one per expense category", len(usage))
	}
	s.SetBudget("crypto", dec("50"))
	usage = s.AllBudgetUsage()
	if last := usage[len(usage)-1]; last.Category != "crypto" {
		t.Errorf("custom budget category should be listed last, got %q", last.Category)
	}
}
