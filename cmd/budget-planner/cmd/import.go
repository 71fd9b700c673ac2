package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a JSON export",
	Long: `Import a document produced by export. Each collection present in the
file replaces the current one; absent collections are kept. A file that
cannot be parsed leaves the data untouched.

Example:
  budget-planner import backup.json --user alice`,
	Args: cobra.ExactArgs(1),
	Run:  runImport,
}

func runImport(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	exitOnError(err, "failed to read import file")

	ctx := context.Background()
	a := openApp(ctx, true)
	defer a.Close()
	a.start(ctx)

	exitOnError(a.store.ImportJSON(data), "failed to import data")
	a.session.Flush()

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transactions, %d budgets, %d goals, %d debts\n",
		len(a.store.Transactions()),
		len(a.store.Budgets()),
		len(a.store.Goals()),
		len(a.store.Debts()),
	)
}
