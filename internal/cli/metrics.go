package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/bounty-board/internal/observability"
)

var metricsSince string

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show board activity metrics from the event log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics not available (event log disabled)")
		}

		since, err := observability.ParseSince(metricsSince)
		if err != nil {
			return err
		}

		m, err := MetricsCalc.Calculate(since)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		fmt.Printf("Board activity since %s:\n", metricsSince)
		fmt.Printf("  Tasks created:          %d\n", m.TasksCreated)
		fmt.Printf("  Tasks completed:        %d\n", m.TasksCompleted)
		fmt.Printf("  Tasks deleted:          %d\n", m.TasksDeleted)
		fmt.Printf("  Points awarded:         %d\n", m.PointsAwarded)
		fmt.Printf("  Hours logged:           %.1f\n", m.HoursLogged)
		fmt.Printf("  Developers provisioned: %d\n", m.DevelopersProvisioned)
		fmt.Printf("  Save failures:          %d\n", m.SaveFailures)
		fmt.Printf("  Sweep resets:           %d\n", m.SweepResets)
		fmt.Printf("  Events:                 %d\n", m.EventCount)
		return nil
	},
}

func init() {
	metricsCmd.Flags().StringVar(&metricsSince, "since", "7d", "Time window (e.g. 7d, 24h)")

	rootCmd.AddCommand(metricsCmd)
}
