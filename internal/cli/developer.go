package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/bounty-board/internal/observability"
	"github.com/valter-silva-au/bounty-board/pkg/models"
)

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Manage developers (add, rename, remove, list)",
	Long: `Developer management commands.

Developers usually appear on the board implicitly, provisioned the first
time a task is assigned to an unseen id. These commands cover the explicit
management actions: adding a developer ahead of any assignment, renaming,
and removing one (which returns their unfinished tasks to the backlog).`,
}

var devAddName string

var devAddCmd = &cobra.Command{
	Use:   "add <developer-id>",
	Short: "Add a developer to the board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		devID := args[0]
		name := devAddName
		if name == "" {
			name = devID
		}

		ctx := cmd.Context()
		board, err := openBoard(ctx)
		if err != nil {
			return err
		}

		if !board.IsDeveloperNameAvailable(name, "") {
			return fmt.Errorf("adding developer: name %q is already in use", name)
		}
		if err := board.AddDeveloper(models.Developer{ID: devID, Name: name}); err != nil {
			return fmt.Errorf("adding developer: %w", err)
		}
		observability.Record(EventLog, observability.EventDeveloperAdded, "developer added",
			map[string]any{"id": devID, "name": name})

		if err := persistBoard(ctx, board); err != nil {
			return err
		}

		fmt.Printf("Added developer %s (%q)\n", devID, name)
		return nil
	},
}

var devRenameCmd = &cobra.Command{
	Use:   "rename <developer-id> <new-name>",
	Short: "Rename a developer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		devID, name := args[0], args[1]

		ctx := cmd.Context()
		board, err := openBoard(ctx)
		if err != nil {
			return err
		}

		dev := board.DeveloperByID(devID)
		if dev == nil {
			return fmt.Errorf("renaming developer: developer %s not found", devID)
		}
		if !board.IsDeveloperNameAvailable(name, devID) {
			return fmt.Errorf("renaming developer: name %q is already in use", name)
		}

		board.UpdateDeveloper(models.Developer{ID: devID, Name: name})

		if err := persistBoard(ctx, board); err != nil {
			return err
		}

		fmt.Printf("Renamed developer %s to %q\n", devID, name)
		return nil
	},
}

var devRemoveCmd = &cobra.Command{
	Use:   "remove <developer-id>",
	Short: "Remove a developer from the board",
	Long: `Remove a developer. Their assigned, unfinished tasks return to the
backlog; completed tasks keep the developer id in their payout history.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		devID := args[0]

		ctx := cmd.Context()
		board, err := openBoard(ctx)
		if err != nil {
			return err
		}

		if board.DeveloperByID(devID) == nil {
			return fmt.Errorf("removing developer: developer %s not found", devID)
		}

		board.DeleteDeveloper(devID)
		observability.Record(EventLog, observability.EventDeveloperRemoved, "developer removed",
			map[string]any{"id": devID})

		if err := persistBoard(ctx, board); err != nil {
			return err
		}

		fmt.Printf("Removed developer %s\n", devID)
		return nil
	},
}

var devListCmd = &cobra.Command{
	Use:   "list",
	Short: "List developers with their derived standings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		board, err := openBoard(ctx)
		if err != nil {
			return err
		}

		developers := board.State().Developers
		if len(developers) == 0 {
			fmt.Println("No developers")
			return nil
		}
		for _, d := range developers {
			fmt.Printf("%-14s %-20s %4d points  %3d completed  %6.1fh\n",
				d.ID, d.Name, d.TotalPoints, d.CompletedTasks, d.TotalHours)
		}
		return nil
	},
}

func init() {
	devAddCmd.Flags().StringVar(&devAddName, "name", "", "Display name (defaults to the id)")

	devCmd.AddCommand(devAddCmd)
	devCmd.AddCommand(devRenameCmd)
	devCmd.AddCommand(devRemoveCmd)
	devCmd.AddCommand(devListCmd)

	rootCmd.AddCommand(devCmd)
}
