package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "bboard",
	Short: "Bounty board - shared team kanban with point bounties",
	Long: `Bounty board (bboard) is a small team kanban board. Tasks flow from a
shared backlog into per-developer columns and end in a completed state
with a recorded bounty payout.

State is one JSON document in a central key-value store, so every client
sees the same board. Developer standings (points, completed tasks, hours)
are always derived from the task list, never stored as ground truth.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bboard %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
