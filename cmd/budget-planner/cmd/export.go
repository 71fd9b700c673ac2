package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export transactions, budgets, goals and debts as JSON",
	Long: `Export every collection of the current user as an indented JSON
document. Settings are not exported.

By default the file is written to BUDGET_EXPORT_DIR as
budget-planner-<user>-YYYY-MM-DD.json. Use --out - to write to stdout.

Example:
  budget-planner export --user alice
  budget-planner export --out backup.json`,
	Run: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file, or - for stdout")
}

func runExport(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	a := openApp(ctx, true)
	defer a.Close()
	a.start(ctx)

	data, err := a.store.ExportJSON()
	exitOnError(err, "failed to export data")

	if exportOut == "-" {
		_, err := cmd.OutOrStdout().Write(append(data, '\n'))
		exitOnError(err, "failed to write export")
		return
	}

	path := exportOut
	if path == "" {
		path = a.paths.GetExportPath(a.identity, a.store.Now())
	}
	exitOnError(a.paths.EnsureParentDir(path), "failed to create export directory")
	exitOnError(os.WriteFile(path, data, 0o600), "failed to write export")

	slog.Info("Exported data", "path", path, "transactions", len(a.store.Transactions()))
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
}
