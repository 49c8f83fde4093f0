package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/semantiq/semantiq/internal/embedder"
	"github.com/semantiq/semantiq/internal/exclusions"
	"github.com/semantiq/semantiq/internal/language"
	"github.com/semantiq/semantiq/internal/logger"
	"github.com/semantiq/semantiq/internal/parser"
	"github.com/semantiq/semantiq/internal/store"
	"github.com/semantiq/semantiq/pkg/types"
)

const (
	// workerCount bounds sweep concurrency.
	workerCount = 8
	// embedBatchSize bounds a single embedder call.
	embedBatchSize = 32
	// progressEvery controls sweep progress logging.
	progressEvery = 100
)

// AutoIndexer keeps the index in sync with the project tree: an initial
// sweep over every eligible file, then incremental reindexing driven by
// debounced filesystem events. Each worker owns its own parser; the store
// serializes writes.
type AutoIndexer struct {
	store    *store.Store
	registry *language.Registry
	embedder embedder.Embedder
	root     string

	lock IndexLock
}

// Stats summarizes one sweep.
type Stats struct {
	Scanned  int
	Indexed  int
	Skipped  int
	Removed  int
	Errors   int
	Duration time.Duration
}

// New creates an auto-indexer for a project root.
func New(s *store.Store, registry *language.Registry, emb embedder.Embedder, root string) *AutoIndexer {
	return &AutoIndexer{
		store:    s,
		registry: registry,
		embedder: emb,
		root:     root,
	}
}

// Sweep walks the project tree and reindexes every file that is new or
// changed, then deletes rows for paths that vanished or became ineligible.
// A file whose stored hash and parser version both match is skipped, which
// makes an unchanged sweep write nothing. Cancelling the context stops the
// sweep at the next file boundary.
func (a *AutoIndexer) Sweep(ctx context.Context) (*Stats, error) {
	if !a.lock.TryAcquire() {
		return nil, fmt.Errorf("%w: another indexing run is active", types.ErrIndexNotReady)
	}
	defer a.lock.Release()

	start := time.Now()
	stats := &Stats{}

	paths, err := a.discover()
	if err != nil {
		return nil, fmt.Errorf("%w: walk project tree: %v", types.ErrInternal, err)
	}
	stats.Scanned = len(paths)

	var indexed, skipped, failed, progress atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount)
	for _, relPath := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := parser.New(a.registry)
			switch err := a.indexOne(gctx, p, relPath); {
			case err == nil:
				indexed.Add(1)
			case errors.Is(err, errUnchanged):
				skipped.Add(1)
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			default:
				// Per-file failures never fail the sweep.
				failed.Add(1)
				logger.Warn("index file failed", "path", relPath, "error", err)
			}
			if n := progress.Add(1); n%progressEvery == 0 {
				logger.Info("sweep progress", "done", n, "total", len(paths))
			}
			return nil
		})
	}
	err = g.Wait()

	stats.Indexed = int(indexed.Load())
	stats.Skipped = int(skipped.Load())
	stats.Errors = int(failed.Load())

	if err != nil {
		stats.Duration = time.Since(start)
		return stats, err
	}

	removed, err := a.cleanupStale(ctx, paths)
	if err != nil {
		return stats, err
	}
	stats.Removed = removed
	stats.Duration = time.Since(start)

	logger.Info("sweep complete",
		"scanned", stats.Scanned, "indexed", stats.Indexed,
		"skipped", stats.Skipped, "removed", stats.Removed,
		"errors", stats.Errors, "elapsed", stats.Duration.String())
	return stats, nil
}

// errUnchanged marks a hash-skip inside the worker loop.
var errUnchanged = errors.New("file unchanged")

// discover lists eligible project-relative paths: known extension, not
// excluded, not a symlink, within the size cap.
func (a *AutoIndexer) discover() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(a.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped
		}
		if d.IsDir() {
			if p != a.root && exclusions.ExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		rel, err := filepath.Rel(a.root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !a.eligible(rel, d) {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	return paths, err
}

func (a *AutoIndexer) eligible(rel string, d fs.DirEntry) bool {
	if exclusions.ExcludedPath(rel) {
		return false
	}
	if !a.registry.Known(rel) {
		return false
	}
	info, err := d.Info()
	if err != nil {
		return false
	}
	return !exclusions.TooLarge(info.Size())
}

// indexOne reads, hashes, parses, embeds and stores a single file. All row
// mutations land in one transaction inside ReplaceFile.
func (a *AutoIndexer) indexOne(ctx context.Context, p *parser.Parser, relPath string) error {
	fullPath := filepath.Join(a.root, filepath.FromSlash(relPath))

	info, err := os.Lstat(fullPath)
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 || exclusions.TooLarge(info.Size()) {
		return errUnchanged
	}

	src, err := os.ReadFile(fullPath)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(src)
	hash := hex.EncodeToString(sum[:])

	if existing, err := a.store.GetFileByPath(ctx, relPath); err == nil {
		if existing.ContentHash == hash && existing.ParserVersion == store.ParserVersion {
			return errUnchanged
		}
	}

	spec := a.registry.ForPath(relPath)
	if spec == nil {
		return errUnchanged
	}

	result, err := p.Parse(ctx, relPath, src, spec.Name)
	if err != nil {
		return err
	}

	embeddings, err := a.embedChunks(ctx, result.Chunks)
	if err != nil {
		// Chunks are stored without vectors; they are embedded again only
		// when the file is next reindexed (content or parser version change).
		logger.Debug("embedding skipped", "path", relPath, "error", err)
		embeddings = nil
	}

	file := &store.File{
		Path:        relPath,
		ContentHash: hash,
		SizeBytes:   info.Size(),
		ModifiedAt:  info.ModTime().Unix(),
		Language:    spec.Name,
	}
	_, err = a.store.ReplaceFile(ctx, file, result.Symbols, result.Chunks, embeddings, result.Dependencies)
	return err
}

// embedChunks embeds chunk texts in batches of embedBatchSize. When the
// embedder is absent or a stub, it returns nil so chunks persist without
// vectors.
func (a *AutoIndexer) embedChunks(ctx context.Context, chunks []types.Chunk) ([][]float32, error) {
	if a.embedder == nil || !a.embedder.Available() || len(chunks) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}
		vectors, err := a.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// cleanupStale deletes rows for files that no longer exist on disk or no
// longer pass the exclusions predicate.
func (a *AutoIndexer) cleanupStale(ctx context.Context, livePaths []string) (int, error) {
	live := make(map[string]bool, len(livePaths))
	for _, p := range livePaths {
		live[p] = true
	}

	stored, err := a.store.ListFiles(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range stored {
		if live[f.Path] {
			continue
		}
		if err := a.store.DeleteFile(ctx, f.Path); err != nil {
			logger.Warn("stale cleanup failed", "path", f.Path, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}
