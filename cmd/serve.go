package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/semantiq/semantiq/internal/logger"
	"github.com/semantiq/semantiq/internal/mcp"
	"github.com/semantiq/semantiq/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MCP stdio protocol, indexing and watching in the background",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol; logs go to stderr as JSON.
		logger.SetupJSON()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		eng, registry, emb, err := buildEngine(ctx, s)
		if err != nil {
			return err
		}
		idx, err := newIndexer(s, registry, emb)
		if err != nil {
			return err
		}

		// Sweep then watch; queries run against whatever is indexed so far.
		go func() {
			if _, err := idx.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("initial sweep failed", "error", err)
				return
			}
			if err := idx.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("watcher stopped", "error", err)
			}
		}()

		server := mcp.NewServer(eng, s)
		logger.Info("mcp server ready", "name", mcp.ServerName, "version", mcp.ServerVersion)
		if err := server.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return errors.Join(types.ErrInternal, err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
