package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsLimit int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show storage and sync statistics",
	Long: `Show the users stored locally and the remote sync history.

Without --user the statistics cover every user.

Example:
  budget-planner stats
  budget-planner stats --user alice --limit 20`,
	Run: runStats,
}

func init() {
	statsCmd.Flags().IntVarP(&statsLimit, "limit", "n", 10, "number of recent syncs to list")
}

func runStats(cmd *cobra.Command, args []string) {
	a := openApp(context.Background(), false)
	defer a.Close()
	out := cmd.OutOrStdout()

	users, err := a.local.Users()
	exitOnError(err, "failed to list local users")

	fmt.Fprintln(out, "Local Storage")
	fmt.Fprintln(out, "=============")
	fmt.Fprintf(out, "Backend:  %s\n", a.cfg.Storage.Backend)
	fmt.Fprintf(out, "Database: %s\n", a.conn.Path())
	fmt.Fprintf(out, "Users:    %d\n", len(users))
	for _, u := range users {
		if u == "" {
			u = "(anonymous)"
		}
		fmt.Fprintf(out, "  - %s\n", u)
	}

	stats, err := a.history.GetStats(a.identity)
	exitOnError(err, "failed to get sync statistics")

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Remote Sync")
	fmt.Fprintln(out, "===========")
	if a.cfg.RemoteEnabled() {
		fmt.Fprintf(out, "Redis:          %s\n", a.cfg.Redis.Addr)
	} else {
		fmt.Fprintln(out, "Redis:          not configured")
	}
	fmt.Fprintf(out, "Total writes:   %d\n", stats.TotalWrites)
	fmt.Fprintf(out, "Failed writes:  %d\n", stats.FailedWrites)
	fmt.Fprintf(out, "Last revision:  %d\n", stats.LastRevision)
	if stats.LastSync.Valid {
		fmt.Fprintf(out, "Last sync:      %s\n", stats.LastSync.String)
	}
	if stats.LastError.Valid && stats.LastError.String != "" {
		fmt.Fprintf(out, "Last error:     %s\n", stats.LastError.String)
	}

	if a.identity == "" {
		return
	}

	if source, err := a.history.GetMetadata(a.historyKey("last_source")); err == nil && source != "" {
		fmt.Fprintf(out, "Last loaded:    %s\n", source)
	}

	records, err := a.history.GetRecent(a.identity, statsLimit)
	exitOnError(err, "failed to get recent syncs")
	if len(records) == 0 {
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Recent syncs (%s)\n", a.identity)
	for _, r := range records {
		line := fmt.Sprintf("  %s  rev %-6d %s", r.SyncedAt.Format("2006-01-02 15:04:05"), r.Revision, r.Status)
		if r.Error != "" {
			line += "  " + r.Error
		}
		fmt.Fprintln(out, line)
	}
}
