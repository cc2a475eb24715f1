package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	boardmcp "github.com/valter-silva-au/bounty-board/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long: `Run an MCP (Model Context Protocol) server that exposes the bounty board
to AI coding assistants. Tools cover adding, assigning, and completing
tasks, listing tasks and developer standings, and reading activity metrics.

Mutations are saved to the store through the debounced writer, so bursts
of tool calls collapse into a single write.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		board, err := openBoard(ctx)
		if err != nil {
			return err
		}

		srv := boardmcp.NewServer(board, MetricsCalc, EventLog, appVersion)

		fmt.Fprintln(os.Stderr, "bboard MCP server listening on stdio")
		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
