package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/budget-planner/pkg/model"
)

var summaryPeriod string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print income, expenses and budget usage",
	Long: `Print the totals for a calendar period together with the current
month's budget usage per category.

Example:
  budget-planner summary
  budget-planner summary --period year --user alice`,
	Run: runSummary,
}

func init() {
	summaryCmd.Flags().StringVarP(&summaryPeriod, "period", "p", "month", "period: week, month or year")
}

func runSummary(cmd *cobra.Command, args []string) {
	period, err := model.ParsePeriod(summaryPeriod)
	exitOnError(err, "invalid flag")

	ctx := context.Background()
	a := openApp(ctx, true)
	defer a.Close()
	a.start(ctx)

	sum := a.store.Summary(period)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Summary (%s)\n", period)
	fmt.Fprintf(out, "  Income:       %s\n", sum.Income.StringFixed(2))
	fmt.Fprintf(out, "  Expenses:     %s\n", sum.Expenses.StringFixed(2))
	fmt.Fprintf(out, "  Balance:      %s\n", sum.Balance.StringFixed(2))
	fmt.Fprintf(out, "  Savings rate: %.1f%%\n", sum.SavingsRate)
	fmt.Fprintf(out, "  Transactions: %d\n", sum.TransactionCount)

	usage := a.store.AllBudgetUsage()
	var budgeted int
	for _, u := range usage {
		if u.Limit.IsPositive() {
			budgeted++
		}
	}
	if budgeted == 0 {
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Budgets (this month)")
	catalog := a.store.Catalog()
	for _, u := range usage {
		if !u.Limit.IsPositive() {
			continue
		}
		fmt.Fprintf(out, "  %-16s %10s / %-10s %6.1f%%\n",
			catalog.Lookup(u.Category).Name,
			u.Spent.StringFixed(2),
			u.Limit.StringFixed(2),
			u.Percentage,
		)
	}
}
