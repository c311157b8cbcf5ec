package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vvka-141/genmeta/internal/locate"
	"github.com/vvka-141/genmeta/pkg/genmeta"
)

// DefaultSettle is how long an image must go without events before it is
// reported.
const DefaultSettle = 500 * time.Millisecond

// Watcher watches a directory tree for new or rewritten images.
type Watcher struct {
	root   string
	settle time.Duration
	logger genmeta.Logger
	fsw    *fsnotify.Watcher

	// pending maps an image to its last event; owned by Run's goroutine.
	pending map[string]time.Time
}

// New watches root and every directory below it. Directories created later
// are added as they appear.
func New(root string, settle time.Duration, logger genmeta.Logger) (*Watcher, error) {
	if logger == nil {
		panic("logger cannot be nil")
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, &genmeta.SourceError{
			Path:    root,
			Message: "output directory is not accessible",
			Hint:    "Check that the directory exists and is readable.",
			Err:     errors.Join(genmeta.ErrNotFound, err),
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}
	w := &Watcher{
		root:    root,
		settle:  settle,
		logger:  logger,
		fsw:     fsw,
		pending: make(map[string]time.Time),
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
			w.logger.Verbose("Not watching %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		w.logger.Verbose("Watching %s", path)
		return nil
	})
}

// Run calls fn with the path of each settled image until ctx is done.
// fn runs on the watcher's goroutine; a slow fn delays later reports but
// loses none. The watcher is closed when Run returns.
func (w *Watcher) Run(ctx context.Context, fn func(path string)) error {
	defer w.fsw.Close()

	tick := time.NewTicker(w.settle / 4)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher: %v", err)

		case now := <-tick.C:
			for _, path := range w.due(now) {
				fn(path)
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Error("%v", err)
			}
			return
		}
	}
	if !locate.IsSupportedImage(ev.Name) {
		return
	}

	w.pending[ev.Name] = time.Now()
}

// due removes and returns the images quiet since now-settle, oldest first.
func (w *Watcher) due(now time.Time) []string {
	type entry struct {
		path string
		at   time.Time
	}
	var ready []entry
	for path, at := range w.pending {
		if now.Sub(at) >= w.settle {
			ready = append(ready, entry{path, at})
			delete(w.pending, path)
		}
	}
	if len(ready) == 0 {
		return nil
	}
	sort.Slice(ready, func(i, j int) bool {
		if !ready[i].at.Equal(ready[j].at) {
			return ready[i].at.Before(ready[j].at)
		}
		return ready[i].path < ready[j].path
	})
	paths := make([]string, len(ready))
	for i, e := range ready {
		paths[i] = e.path
	}
	return paths
}
