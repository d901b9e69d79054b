// Package watcher turns filesystem notifications into debounced batches of
// changed paths.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-formulare/internal/logging"
	"github.com/goliatone/go-formulare/pkg/interfaces"
)

// DefaultDebounce is used when New receives a non-positive delay.
const DefaultDebounce = 300 * time.Millisecond

// Filter reports whether a path should trigger a batch.
type Filter func(path string) bool

// Handler receives a sorted, de-duplicated batch of changed paths.
type Handler func(ctx context.Context, paths []string) error

// Option customises a Watcher.
type Option func(*Watcher)

// WithFilter adds a filter. All filters must accept a path.
func WithFilter(filter Filter) Option {
	return func(w *Watcher) {
		if filter != nil {
			w.filters = append(w.filters, filter)
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Watcher wraps an fsnotify watcher.
type Watcher struct {
	notify   *fsnotify.Watcher
	debounce time.Duration
	filters  []Filter
	logger   interfaces.Logger

	mu    sync.Mutex
	roots []string
}

// New creates a Watcher that ignores editor temp files.
func New(debounce time.Duration, opts ...Option) (*Watcher, error) {
	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		notify:   notify,
		debounce: debounce,
		filters:  []Filter{IgnoreEditorFiles},
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// AddRecursive watches root and every directory below it. A missing root is
// skipped so optional directories (annotator, static) need no special casing.
func (w *Watcher) AddRecursive(root string) error {
	root = filepath.Clean(root)
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		w.logger.Debug("watcher.root.missing", "path", root)
		return nil
	}
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(entry.Name(), ".") {
			return filepath.SkipDir
		}
		return w.notify.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watcher: add %s: %w", root, err)
	}
	w.mu.Lock()
	w.roots = append(w.roots, root)
	w.mu.Unlock()
	w.logger.Debug("watcher.root.added", "path", root)
	return nil
}

// Roots returns the watched root directories.
func (w *Watcher) Roots() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.roots)
}

// Run delivers batches to handler until ctx is done. Handler errors are
// logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context, handler Handler) error {
	paths := make(chan string, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		collect(ctx, paths, w.debounce, func(batch []string) {
			w.logger.Info("watcher.batch", "paths", len(batch))
			if err := handler(ctx, batch); err != nil {
				w.logger.Error("watcher.handler.failed", "error", err)
			}
		})
	}()

	for {
		select {
		case <-ctx.Done():
			<-done
			return nil
		case event, ok := <-w.notify.Events:
			if !ok {
				<-done
				return nil
			}
			if path, keep := w.accept(event); keep {
				select {
				case paths <- path:
				case <-ctx.Done():
				}
			}
		case err, ok := <-w.notify.Errors:
			if !ok {
				<-done
				return nil
			}
			w.logger.Warn("watcher.error", "error", err)
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.notify.Close()
}

func (w *Watcher) accept(event fsnotify.Event) (string, bool) {
	if event.Op == fsnotify.Chmod {
		return "", false
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.AddRecursive(event.Name); err != nil {
				w.logger.Warn("watcher.add.failed", "path", event.Name, "error", err)
			}
		}
	}
	for _, filter := range w.filters {
		if !filter(event.Name) {
			return "", false
		}
	}
	return filepath.Clean(event.Name), true
}

// collect groups paths arriving within delay of each other and flushes them
// as one sorted batch. It returns once paths is closed or ctx is done.
func collect(ctx context.Context, paths <-chan string, delay time.Duration, flush func([]string)) {
	pending := map[string]struct{}{}
	timer := time.NewTimer(delay)
	if !timer.Stop() {
		<-timer.C
	}
	emit := func() {
		if len(pending) == 0 {
			return
		}
		batch := make([]string, 0, len(pending))
		for path := range pending {
			batch = append(batch, path)
		}
		slices.Sort(batch)
		clear(pending)
		flush(batch)
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case path, ok := <-paths:
			if !ok {
				timer.Stop()
				emit()
				return
			}
			pending[path] = struct{}{}
			timer.Reset(delay)
		case <-timer.C:
			emit()
		}
	}
}

// IgnoreEditorFiles rejects swap, backup and lock files written by editors.
func IgnoreEditorFiles(path string) bool {
	name := filepath.Base(path)
	switch {
	case strings.HasPrefix(name, ".#"),
		strings.HasPrefix(name, "#") && strings.HasSuffix(name, "#"),
		strings.HasSuffix(name, "~"),
		strings.HasSuffix(name, ".swp"),
		strings.HasSuffix(name, ".swx"),
		strings.HasSuffix(name, ".tmp"),
		name == "4913",
		name == ".DS_Store":
		return false
	}
	return true
}

// IgnorePrefix rejects paths below dir, typically the output directory.
func IgnorePrefix(dir string) Filter {
	dir = filepath.Clean(dir)
	return func(path string) bool {
		path = filepath.Clean(path)
		return path != dir && !strings.HasPrefix(path, dir+string(filepath.Separator))
	}
}
