package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/bounty-board/internal/server"
)

var (
	serveAddr     string
	serveDataFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the board's key-value store service",
	Long: `Run the HTTP key-value store the board persists to. The store holds one
JSON document under /api/data plus timestamped backups under /api/backups.

With --data-file, the document survives restarts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" && Config != nil {
			addr = Config.ServerAddr
		}
		dataFile := serveDataFile
		if dataFile == "" && Config != nil {
			dataFile = Config.ServerDataFile
		}

		svc, err := server.New(dataFile)
		if err != nil {
			return fmt.Errorf("starting store: %w", err)
		}

		fmt.Printf("Serving board store on %s\n", addr)
		return svc.Run(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to server.addr from .boardconfig)")
	serveCmd.Flags().StringVar(&serveDataFile, "data-file", "", "Persist the store document to this file")

	rootCmd.AddCommand(serveCmd)
}
