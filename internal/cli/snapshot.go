package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/bounty-board/internal/storage"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export or import a board snapshot file",
	Long: `Snapshots are the same versioned JSON document the store holds, written
to a file for manual backup or migration between stores.`,
}

var snapshotExportOut string

var snapshotExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the current board to a snapshot file (or stdout)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		board, err := openBoard(cmd.Context())
		if err != nil {
			return err
		}

		data, err := storage.ExportSnapshot(board.State())
		if err != nil {
			return err
		}

		if snapshotExportOut == "" || snapshotExportOut == "-" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(snapshotExportOut, data, 0o600); err != nil {
			return fmt.Errorf("exporting snapshot: %w", err)
		}
		fmt.Printf("Exported board snapshot to %s\n", snapshotExportOut)
		return nil
	},
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the board with the contents of a snapshot file",
	Long: `Validate a snapshot file and replace the board state with it, persisting
the result to the store. A malformed file leaves the board untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("importing snapshot: %w", err)
		}

		state, err := storage.ImportSnapshot(data)
		if err != nil {
			var ife *storage.ImportFormatError
			if errors.As(err, &ife) {
				return fmt.Errorf("importing snapshot: %w", ife)
			}
			return fmt.Errorf("importing snapshot: %w", err)
		}

		ctx := cmd.Context()
		board, err := openBoard(ctx)
		if err != nil {
			return err
		}

		board.Replace(state)

		if err := persistBoard(ctx, board); err != nil {
			return err
		}

		st := board.State()
		fmt.Printf("Imported snapshot: %d tasks, %d developers\n", len(st.Tasks), len(st.Developers))
		return nil
	},
}

func init() {
	snapshotExportCmd.Flags().StringVarP(&snapshotExportOut, "out", "o", "", "Output file (stdout when omitted)")

	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotImportCmd)

	rootCmd.AddCommand(snapshotCmd)
}
