// Package watch re-imports scene files as they change on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"scene-importer/internal/logging"
)

const DefaultDebounce = 250 * time.Millisecond

// Watcher reports files with a matching extension once writes to them
// have settled for the debounce interval.
type Watcher struct {
	fs       *fsnotify.Watcher
	ext      string
	debounce time.Duration
	log      *log.Logger
}

// New watches dir and its subdirectories for files ending in ext. A nil
// logger discards output.
func New(dir, ext string, debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.Discard()
	}
	w := &Watcher{fs: fsw, ext: strings.ToLower(ext), debounce: debounce, log: logger}
	if err := w.addRecursive(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.fs.Add(path); err != nil {
				return fmt.Errorf("watch: %s: %w", path, err)
			}
		}
		return nil
	})
}

func (w *Watcher) matches(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == w.ext
}

// Run calls handle for each settled file until ctx is done. handle runs on
// the Run goroutine.
func (w *Watcher) Run(ctx context.Context, handle func(path string)) error {
	defer w.fs.Close()

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := w.addRecursive(e.Name); err != nil {
						w.log.Warn("cannot watch new directory", "dir", e.Name, "err", err)
					}
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 && w.matches(e.Name) {
				pending[e.Name] = time.Now()
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				delete(pending, e.Name)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watch", "err", err)

		case now := <-ticker.C:
			for path, at := range pending {
				if now.Sub(at) >= w.debounce {
					delete(pending, path)
					w.log.Debug("file settled", "file", path)
					handle(path)
				}
			}

		case <-ctx.Done():
			return nil
		}
	}
}
