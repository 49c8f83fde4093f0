package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/semantiq/semantiq/internal/engine"
	"github.com/semantiq/semantiq/pkg/types"
)

var (
	searchLimit      int
	searchMinScore   float64
	searchFileType   string
	searchSymbolKind string
	searchJSON       bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a hybrid search against the index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		query := strings.Join(args, " ")

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		eng, _, _, err := buildEngine(ctx, s)
		if err != nil {
			return err
		}

		opts := &engine.SearchOptions{
			Limit:       searchLimit,
			MinScore:    searchMinScore,
			FileTypes:   engine.ParseCSV(searchFileType),
			SymbolKinds: engine.ParseCSV(searchSymbolKind),
		}

		results, err := eng.Search(ctx, query, opts)
		if err != nil && !errors.Is(err, types.ErrTimeout) {
			return err
		}

		if searchJSON {
			return json.NewEncoder(os.Stdout).Encode(results)
		}

		if len(results) == 0 {
			fmt.Println("no results")
			return nil
		}
		for _, r := range results {
			fmt.Printf("%5.2f  %s", r.Score, r.Path)
			if r.StartLine > 0 {
				fmt.Printf(":%d", r.StartLine)
			}
			if len(r.Symbols) > 0 {
				fmt.Printf("  (%s)", strings.Join(r.Symbols, ", "))
			}
			fmt.Println()
			if r.Snippet != "" {
				fmt.Printf("       %s\n", r.Snippet)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "maximum results")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", 0, "minimum fused score (0-1)")
	searchCmd.Flags().StringVar(&searchFileType, "file-type", "", "comma-separated accepted extensions")
	searchCmd.Flags().StringVar(&searchSymbolKind, "symbol-kind", "", "comma-separated accepted symbol kinds")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "emit JSON")
	rootCmd.AddCommand(searchCmd)
}
