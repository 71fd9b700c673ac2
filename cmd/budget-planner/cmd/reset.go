package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the locally stored data of a user",
	Long: `Delete the local snapshot and sync history of --user (or the
anonymous snapshot when no user is given). Data stored in Redis is not
touched, so the next start with Redis configured loads it again.

Example:
  budget-planner reset --user alice --yes`,
	Run: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm deletion")
}

func runReset(cmd *cobra.Command, args []string) {
	if !resetYes {
		exitOnError(fmt.Errorf("refusing to delete data without --yes"), "reset not confirmed")
	}

	a := openApp(context.Background(), false)
	defer a.Close()

	a.local.SetUser(a.identity)
	exitOnError(a.local.Clear(), "failed to clear local data")

	removed, err := a.history.DeleteHistory(a.identity)
	exitOnError(err, "failed to delete sync history")

	slog.Info("Reset local data", "key", a.local.Key(), "history", removed)
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s and %d sync records\n", a.local.Key(), removed)
}
