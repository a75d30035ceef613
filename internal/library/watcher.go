package library

import (
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the library directories and triggers a debounced rescan
// when audio files are added, removed, or replaced.
type Watcher struct {
	watcher  *fsnotify.Watcher
	library  *Library
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	done    chan struct{}
	running bool
}

// NewWatcher creates a watcher for the library. debounce limits rescan
// frequency while files are still being copied in.
func NewWatcher(library *Library, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  fsw,
		library:  library,
		debounce: debounce,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching the library root and its group directories.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, dir := range w.library.GroupDirs() {
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Warn("could not watch directory", "dir", dir, "error", err)
		}
	}

	go w.watch()
	return nil
}

// watch is the main watch loop.
func (w *Watcher) watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.scheduleRescan()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("library watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// scheduleRescan arms (or re-arms) the debounce timer.
func (w *Watcher) scheduleRescan() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.logger.Debug("library changed, rescanning", "dir", w.library.Dir())
		if err := w.library.Scan(); err != nil {
			w.logger.Warn("rescan failed", "error", err)
			return
		}
		// New groups mean new directories to watch.
		for _, dir := range w.library.GroupDirs() {
			_ = w.watcher.Add(dir)
		}
	})
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)
	return w.watcher.Close()
}
