package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/semantiq/semantiq/internal/calibrate"
)

var (
	calibrateLanguage string
	calibrateDryRun   bool
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Derive semantic-distance thresholds from recorded observations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		cal := calibrate.New(s)

		var results []*calibrate.Result
		if calibrateLanguage != "" {
			result, err := cal.CalibrateLanguage(ctx, calibrateLanguage, calibrateDryRun)
			if err != nil {
				return err
			}
			results = append(results, result)
		} else {
			results, err = cal.CalibrateAll(ctx, calibrateDryRun)
			if err != nil {
				return err
			}
		}

		for _, r := range results {
			if r.SampleCount == 0 {
				fmt.Printf("%-12s %s\n", r.Language, r.Message)
				continue
			}
			state := "applied"
			if !r.Applied {
				state = "proposed"
			}
			fmt.Printf("%-12s max_dist=%.3f min_sim=%.3f samples=%d (%s)\n",
				r.Language, r.MaxDistance, r.MinSimilarity, r.SampleCount, state)
		}
		return nil
	},
}

func init() {
	calibrateCmd.Flags().StringVarP(&calibrateLanguage, "language", "l", "", "calibrate a single language")
	calibrateCmd.Flags().BoolVar(&calibrateDryRun, "dry-run", false, "show proposed thresholds without writing them")
	rootCmd.AddCommand(calibrateCmd)
}
