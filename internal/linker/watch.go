package linker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vk/mainframe/internal/ctxlog"
)

// debounceWindow suppresses the duplicate events editors emit for one save.
const debounceWindow = 200 * time.Millisecond

// Watcher keeps a mirror current while the source tree changes.
type Watcher struct {
	src      string
	dst      string
	watcher  *fsnotify.Watcher
	mutex    sync.Mutex
	lastSeen map[string]time.Time
}

// NewWatcher performs an initial full mirror and then begins watching src
// and every directory below it.
func NewWatcher(src, dst string) (*Watcher, error) {
	if _, err := Mirror(src, dst); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("linker: creating watcher: %w", err)
	}

	w := &Watcher{
		src:      src,
		dst:      dst,
		watcher:  fw,
		lastSeen: make(map[string]time.Time),
	}

	err = filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("linker: registering watch paths: %w", err)
	}

	return w, nil
}

// Run processes events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error.", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	logger := ctxlog.FromContext(ctx)

	// Editors write temp/backup files next to the real one; skip the noise.
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return
	}

	if !w.debounce(event.Name) {
		return
	}

	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		info, err := os.Stat(event.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			// New directories need their own watch, and may already have
			// contents that arrived before the watch existed.
			w.watcher.Add(event.Name)
			if _, err := Mirror(event.Name, w.mirrorPath(event.Name)); err != nil {
				logger.Warn("Mirror of new directory failed.", "path", event.Name, "error", err)
			}
			return
		}
		if err := copyFile(event.Name, w.mirrorPath(event.Name)); err != nil {
			logger.Warn("Copy failed.", "path", event.Name, "error", err)
			return
		}
		logger.Debug("Mirrored.", "path", event.Name)
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if err := remove(w.src, w.dst, event.Name); err != nil {
			logger.Warn("Remove failed.", "path", event.Name, "error", err)
			return
		}
		logger.Debug("Removed from mirror.", "path", event.Name)
	}
}

func (w *Watcher) mirrorPath(path string) string {
	rel, err := filepath.Rel(w.src, path)
	if err != nil {
		return path
	}
	return filepath.Join(w.dst, rel)
}

// debounce reports whether the event for path should be processed.
func (w *Watcher) debounce(path string) bool {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	now := time.Now()
	if last, ok := w.lastSeen[path]; ok && now.Sub(last) < debounceWindow {
		return false
	}
	w.lastSeen[path] = now
	return true
}
