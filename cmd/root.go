package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/semantiq/semantiq/internal/calibrate"
	"github.com/semantiq/semantiq/internal/embedder"
	"github.com/semantiq/semantiq/internal/engine"
	"github.com/semantiq/semantiq/internal/indexer"
	"github.com/semantiq/semantiq/internal/language"
	"github.com/semantiq/semantiq/internal/logger"
	"github.com/semantiq/semantiq/internal/store"
	"github.com/semantiq/semantiq/pkg/types"
)

var (
	projectRoot string
	dbPath      string
)

var rootCmd = &cobra.Command{
	Use:           "semantiq",
	Short:         "Local code-understanding engine: index once, query fast",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectRoot, "project", "p", ".", "project root directory")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "index database path (default <project>/"+store.DefaultDBName+")")
	rootCmd.Version = fmt.Sprintf("%s (build: %s, driver: %s, vector: %v)",
		version, store.BuildMode, store.DriverName, store.VectorExtensionAvailable)
}

var version = "dev"

// Execute runs the CLI and returns the process exit code: 0 on success,
// 1 for user errors, 2 for internal errors.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if isUserError(err) {
			return 1
		}
		return 2
	}
	return 0
}

func isUserError(err error) bool {
	return errors.Is(err, types.ErrInvalidInput) || errors.Is(err, types.ErrPathNotFound)
}

// resolveDBPath returns the effective database location. The SEMANTIQ_DB_PATH
// environment variable beats the default, the --db flag beats both.
func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if env := os.Getenv("SEMANTIQ_DB_PATH"); env != "" {
		return env, nil
	}
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return "", fmt.Errorf("%w: resolve project root: %v", types.ErrInvalidInput, err)
	}
	return filepath.Join(abs, store.DefaultDBName), nil
}

// openStore opens and migrates the index database. A version mismatch is
// not fatal here: the store has already wiped stale rows and the next sweep
// rebuilds them.
func openStore(ctx context.Context) (*store.Store, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve project root: %v", types.ErrInvalidInput, err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: project root %s", types.ErrPathNotFound, projectRoot)
	}

	dbFile, err := resolveDBPath()
	if err != nil {
		return nil, err
	}
	s, err := store.Open(dbFile)
	if err != nil {
		return nil, fmt.Errorf("%w: open index: %v", types.ErrInternal, err)
	}
	if err := s.InitOrMigrate(ctx); err != nil {
		if errors.Is(err, types.ErrNeedsFullReindex) {
			logger.Info("index version changed, full reindex scheduled")
		} else {
			_ = s.Close()
			return nil, fmt.Errorf("%w: migrate index: %v (delete %s and reindex)", types.ErrInternal, err, dbFile)
		}
	}
	return s, nil
}

// loadModel is the hook the distribution's model loader fills in. When nil
// the stub embedder is used and the semantic source stays off.
var loadModel func() (embedder.Model, error)

func newEmbedder() embedder.Embedder {
	if loadModel == nil {
		return embedder.NewStub()
	}
	model, err := loadModel()
	if err != nil {
		logger.Warn("model unavailable, semantic search disabled", "error", err)
		return embedder.NewStub()
	}
	emb, err := embedder.NewModelEmbedder(model)
	if err != nil {
		logger.Warn("model rejected, semantic search disabled", "error", err)
		return embedder.NewStub()
	}
	return emb
}

// buildEngine assembles the query engine and its collaborators.
func buildEngine(ctx context.Context, s *store.Store) (*engine.Engine, *language.Registry, embedder.Embedder, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: resolve project root: %v", types.ErrInvalidInput, err)
	}

	registry := language.NewRegistry()
	emb := newEmbedder()

	counts := make(map[string]int)
	if langs, err := s.ObservationLanguages(ctx); err == nil {
		for _, lang := range langs {
			if n, err := s.CountObservations(ctx, lang); err == nil {
				counts[lang] = n
			}
		}
	}

	eng := engine.New(engine.Config{
		Store:     s,
		Embedder:  emb,
		Registry:  registry,
		Collector: calibrate.NewCollector(counts),
		Root:      root,
	})
	return eng, registry, emb, nil
}

func newIndexer(s *store.Store, registry *language.Registry, emb embedder.Embedder) (*indexer.AutoIndexer, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve project root: %v", types.ErrInvalidInput, err)
	}
	return indexer.New(s, registry, emb, root), nil
}
