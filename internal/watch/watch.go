// Package watch rebuilds the site when the content tree changes.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a directory tree and calls OnChange once per burst of
// filesystem events.
type Watcher struct {
	root     string
	debounce time.Duration
	onChange func(ctx context.Context) error
	log      *slog.Logger
	fsw      *fsnotify.Watcher
}

// New creates a Watcher over root and every directory below it.
func New(root string, debounce time.Duration, onChange func(ctx context.Context) error, log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root:     root,
		debounce: debounce,
		onChange: onChange,
		log:      log,
		fsw:      fsw,
	}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// Run processes events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := 0

	w.log.Info("watching content", "dir", w.root, "debounce_ms", w.debounce.Milliseconds())
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := w.addTree(event.Name); err != nil {
					w.log.Warn("watch new directory", "dir", event.Name, "error", err)
				}
			}
			if !relevant(event) {
				continue
			}
			w.log.Debug("content changed", "path", event.Name, "op", event.Op.String())
			pending++
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", "error", err)

		case <-timer.C:
			start := time.Now()
			if err := w.onChange(ctx); err != nil {
				w.log.Error("rebuild failed", "events", pending, "error", err)
			} else {
				w.log.Info("rebuilt", "events", pending, "duration_ms", time.Since(start).Milliseconds())
			}
			pending = 0
		}
	}
}

// relevant filters out permission changes and editor scratch files.
func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	switch {
	case strings.HasPrefix(name, "."):
		return false
	case strings.HasSuffix(name, "~"), strings.HasSuffix(name, ".swp"), strings.HasSuffix(name, ".tmp"):
		return false
	}
	return true
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
