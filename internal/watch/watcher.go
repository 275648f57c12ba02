// Package watch re-runs a callback whenever files under a root change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/vk/heacheck/internal/ctxlog"
	"github.com/vk/heacheck/internal/fsutil"
)

// Watcher observes a directory tree with fsnotify.
type Watcher struct {
	root    string
	cfg     Config
	outputs map[string]struct{}
	fs      *fsnotify.Watcher
}

// New creates a Watcher for root and registers every directory below it
// that is not ignored.
func New(root string, cfg Config) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	outputs, err := absSet(cfg.Outputs)
	if err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{
		root:    root,
		cfg:     cfg,
		outputs: outputs,
		fs:      fw,
	}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func absSet(paths []string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		set[abs] = struct{}{}
	}
	return set, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// ignored reports whether path is one of the callback's own outputs, is
// hidden (unless hidden files are watched) or matches an ignore pattern.
func (w *Watcher) ignored(path string) bool {
	if len(w.outputs) > 0 {
		if abs, err := filepath.Abs(path); err == nil {
			if _, ok := w.outputs[abs]; ok {
				return true
			}
		}
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return false
	}
	if !w.cfg.WatchHidden {
		for _, part := range strings.Split(rel, "/") {
			if strings.HasPrefix(part, ".") {
				return true
			}
		}
	}
	return fsutil.MatchAny(w.cfg.Ignore, rel) || fsutil.MatchAny(w.cfg.Ignore, rel+"/")
}

func convert(e fsnotify.Event) (Event, bool) {
	switch {
	case e.Has(fsnotify.Create):
		return Event{Path: e.Name, Op: OpCreate}, true
	case e.Has(fsnotify.Write):
		return Event{Path: e.Name, Op: OpModify}, true
	case e.Has(fsnotify.Remove):
		return Event{Path: e.Name, Op: OpDelete}, true
	case e.Has(fsnotify.Rename):
		return Event{Path: e.Name, Op: OpRename}, true
	default:
		return Event{}, false
	}
}

// Run delivers debounced batches to fn until ctx is cancelled. Batches are
// handled one at a time; changes arriving while fn runs are merged into the
// next batch. Run closes the Watcher before returning.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context, []Event)) error {
	logger := ctxlog.FromContext(ctx)
	defer w.fs.Close()

	var (
		mu     sync.Mutex
		queued []Event
	)
	notify := make(chan struct{}, 1)
	deb := NewDebouncer(w.cfg.Debounce, w.cfg.MaxBatch, func(batch []Event) {
		mu.Lock()
		queued = append(queued, batch...)
		mu.Unlock()
		select {
		case notify <- struct{}{}:
		default:
		}
	})
	defer deb.Stop()

	done := make(chan error, 1)
	go func() { done <- w.handleEvents(ctx, deb) }()

	logger.Info("Watching for changes.", "root", w.root)
	for {
		select {
		case <-ctx.Done():
			<-done
			logger.Info("Watcher stopped.")
			return nil
		case err := <-done:
			return err
		case <-notify:
			mu.Lock()
			batch := queued
			queued = nil
			mu.Unlock()
			if len(batch) == 0 {
				continue
			}
			logger.Debug("Change batch received.", "events", len(batch))
			fn(ctx, batch)
		}
	}
}

func (w *Watcher) handleEvents(ctx context.Context, deb *Debouncer) error {
	logger := ctxlog.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.ignored(e.Name) {
				continue
			}
			logger.Debug("File event.", "path", e.Name, "op", e.Op.String())
			if e.Has(fsnotify.Create) {
				if info, err := os.Stat(e.Name); err == nil && info.IsDir() {
					if err := w.addTree(e.Name); err != nil {
						logger.Warn("Failed to watch new directory.", "path", e.Name, "error", err)
					}
				}
			}
			if ev, ok := convert(e); ok {
				deb.Add(ev)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error.", "error", err)
		}
	}
}
