package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/semantiq/semantiq/internal/language"
)

const timeRound = 10 * time.Millisecond

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Run the initial sweep over the project tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		registry := language.NewRegistry()
		idx, err := newIndexer(s, registry, newEmbedder())
		if err != nil {
			return err
		}

		stats, err := idx.Sweep(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Indexed %d files (%d unchanged, %d removed, %d errors) in %s\n",
			stats.Indexed, stats.Skipped, stats.Removed, stats.Errors, stats.Duration.Round(timeRound))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
