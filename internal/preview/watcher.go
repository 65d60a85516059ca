package preview

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	ferrors "github.com/docsmith/docsmith/internal/foundation/errors"
	"github.com/docsmith/docsmith/internal/logfields"
)

// Watcher debounces filesystem change events under the source directory into
// rebuild requests on Requests().
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	requests chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher watches dir and all its subdirectories.
func NewWatcher(dir string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "create file watcher").Build()
	}
	w := &Watcher{
		fsw:      fsw,
		debounce: debounce,
		requests: make(chan struct{}, 1),
	}
	if err := w.addRecursive(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
	if err != nil {
		return ferrors.FileSystemError(err, "watch source tree").
			WithContext("dir", root).
			Build()
	}
	return nil
}

// Requests delivers one signal per debounced burst of changes.
func (w *Watcher) Requests() <-chan struct{} { return w.requests }

// Run processes watcher events until the context ends.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if isIgnoredPath(event.Name) {
				continue
			}
			// New directories need watches of their own.
			if event.Op&fsnotify.Create != 0 {
				_ = w.addRecursive(event.Name)
			}
			slog.Debug("Source change detected", logfields.File(event.Name))
			w.trigger()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.requests <- struct{}{}:
		default:
		}
	})
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}

func isIgnoredPath(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".tmp")
}
