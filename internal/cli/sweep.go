package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/bounty-board/internal/observability"
)

var sweepWatch bool

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Reconcile orphaned task assignments",
	Long: `Reset any non-completed task whose assigned developer no longer exists
back to the backlog. This compensates for clients that removed a developer
without going through the removal flow.

With --watch, keeps running the sweep on the configured interval.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		board, err := openBoard(ctx)
		if err != nil {
			return err
		}

		reset := board.ReconcileOrphans()
		if reset > 0 {
			observability.Record(EventLog, observability.EventSweepReset,
				"orphaned tasks returned to backlog", map[string]any{"reset": reset})
			if err := persistBoard(ctx, board); err != nil {
				return err
			}
		}
		fmt.Printf("Sweep reset %d task(s)\n", reset)

		if sweepWatch {
			interval := Config.SweepInterval
			fmt.Printf("Sweeping every %s (ctrl+c to stop)\n", interval)
			board.RunSweeper(ctx, interval)
		}
		return nil
	},
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Force an immediate save of the board to the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		board, err := openBoard(ctx)
		if err != nil {
			return err
		}
		if err := persistBoard(ctx, board); err != nil {
			return err
		}
		fmt.Println("Board saved")
		return nil
	},
}

func init() {
	sweepCmd.Flags().BoolVar(&sweepWatch, "watch", false, "Keep sweeping on the configured interval")

	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(saveCmd)
}
