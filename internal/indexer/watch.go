package indexer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/semantiq/semantiq/internal/exclusions"
	"github.com/semantiq/semantiq/internal/logger"
	"github.com/semantiq/semantiq/internal/parser"
)

// debounceWindow coalesces filesystem events per path.
const debounceWindow = 2 * time.Second

// Watch subscribes to filesystem events under the project root and
// reindexes changed files after a debounce window. Creates and modifies go
// through the same path as the sweep; removes delete the file row. Watch
// blocks until the context is cancelled; the in-flight file transaction
// finishes before it returns.
func (a *AutoIndexer) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := a.watchTree(watcher); err != nil {
		return err
	}

	p := parser.New(a.registry)

	var mu sync.Mutex
	var inflight sync.WaitGroup
	stopped := false
	pending := make(map[string]*time.Timer)
	defer func() {
		mu.Lock()
		stopped = true
		for _, t := range pending {
			t.Stop()
		}
		mu.Unlock()
		inflight.Wait()
	}()

	schedule := func(relPath string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := pending[relPath]; ok {
			t.Reset(debounceWindow)
			return
		}
		pending[relPath] = time.AfterFunc(debounceWindow, func() {
			mu.Lock()
			delete(pending, relPath)
			if stopped {
				mu.Unlock()
				return
			}
			inflight.Add(1)
			mu.Unlock()
			defer inflight.Done()

			if ctx.Err() != nil {
				return
			}
			a.handleChange(ctx, p, relPath)
		})
	}

	logger.Info("watching project", "root", a.root)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			a.handleEvent(ctx, watcher, event, schedule)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}

// handleEvent routes one raw fsnotify event.
func (a *AutoIndexer) handleEvent(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event, schedule func(string)) {
	rel, err := filepath.Rel(a.root, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if exclusions.ExcludedPath(rel) {
		return
	}

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		if err := a.store.DeleteFile(ctx, rel); err != nil {
			logger.Warn("remove from index failed", "path", rel, "error", err)
		}
		return
	}

	if event.Op&fsnotify.Create != 0 {
		// New directories need their own watches; fsnotify is not recursive.
		if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
			if !exclusions.ExcludedDir(filepath.Base(event.Name)) {
				_ = watcher.Add(event.Name)
			}
			return
		}
	}

	if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		if a.registry.Known(rel) {
			schedule(rel)
		}
	}
}

// handleChange reindexes one debounced path, mirroring sweep semantics.
func (a *AutoIndexer) handleChange(ctx context.Context, p *parser.Parser, relPath string) {
	fullPath := filepath.Join(a.root, filepath.FromSlash(relPath))
	if _, err := os.Lstat(fullPath); err != nil {
		// Gone again before the debounce fired.
		if err := a.store.DeleteFile(ctx, relPath); err != nil {
			logger.Warn("remove from index failed", "path", relPath, "error", err)
		}
		return
	}

	switch err := a.indexOne(ctx, p, relPath); err {
	case nil:
		logger.Debug("reindexed", "path", relPath)
	case errUnchanged:
	default:
		logger.Warn("reindex failed", "path", relPath, "error", err)
	}
}

// watchTree adds watches for the root and every non-excluded directory.
func (a *AutoIndexer) watchTree(watcher *fsnotify.Watcher) error {
	return filepath.WalkDir(a.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != a.root && exclusions.ExcludedDir(d.Name()) {
			return filepath.SkipDir
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
}
