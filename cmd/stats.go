package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index contents and calibration state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		stats, err := s.Stats(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Files:         %d\n", stats.Files)
		fmt.Printf("Symbols:       %d\n", stats.Symbols)
		fmt.Printf("Chunks:        %d (%d embedded)\n", stats.Chunks, stats.EmbeddedChunks)
		fmt.Printf("Dependencies:  %d\n", stats.Dependencies)
		fmt.Printf("Observations:  %d\n", stats.Observations)
		fmt.Printf("Database size: %.2f MB\n", float64(stats.DBSizeBytes)/(1024*1024))

		if len(stats.Calibrations) > 0 {
			fmt.Println("\nCalibrated thresholds:")
			for _, c := range stats.Calibrations {
				fmt.Printf("  %-12s max_dist=%.3f min_sim=%.3f samples=%d (%s)\n",
					c.Language, c.MaxDistance, c.MinSimilarity, c.SampleCount,
					time.Unix(c.CalibratedAt, 0).Format("2006-01-02"))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
