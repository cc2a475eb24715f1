package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage board configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .boardconfig file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ConfigMgr == nil {
			return fmt.Errorf("config manager not initialized")
		}
		path, err := ConfigMgr.WriteDefaultConfig()
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Config == nil {
			return fmt.Errorf("configuration not initialized")
		}
		fmt.Printf("store.url:              %s\n", Config.StoreURL)
		fmt.Printf("save.debounce_ms:       %d\n", Config.SaveDebounce/time.Millisecond)
		fmt.Printf("save.max_retries:       %d\n", Config.MaxRetries)
		fmt.Printf("sweep.interval_seconds: %d\n", Config.SweepInterval/time.Second)
		fmt.Printf("server.addr:            %s\n", Config.ServerAddr)
		if Config.ServerDataFile != "" {
			fmt.Printf("server.data_file:       %s\n", Config.ServerDataFile)
		}
		fmt.Printf("events.path:            %s\n", Config.EventLogPath)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(configCmd)
}
