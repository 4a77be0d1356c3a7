// Package watcher monitors the content tree and coalesces bursts of Markdown
// edits into single change notifications.
package watcher

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/hugocms/internal/logfields"
)

// Config controls a content watcher.
type Config struct {
	// Dir is the content directory to watch (recursively).
	Dir string
	// QuietWindow is how long the tree must be quiet before firing.
	QuietWindow time.Duration
	// MaxDelay caps how long a continuous burst can postpone firing.
	MaxDelay time.Duration
	// OnChange receives the sorted set of changed Markdown paths.
	OnChange func(paths []string)
}

// Watcher watches a content directory for Markdown changes. Rapid bursts
// (editor save storms, git checkouts) collapse into one OnChange call: the
// quiet-window timer resets on every event, and the max-delay timer bounds
// total postponement.
type Watcher struct {
	cfg Config
	fsw *fsnotify.Watcher

	stopOnce sync.Once
	stop     chan struct{}

	mu      sync.Mutex
	pending map[string]struct{}
}

// New creates a watcher over cfg.Dir, registering all existing
// subdirectories. New subdirectories are registered as they appear.
func New(cfg Config) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("watch directory is required")
	}
	if cfg.OnChange == nil {
		return nil, fmt.Errorf("OnChange callback is required")
	}
	if cfg.QuietWindow <= 0 {
		cfg.QuietWindow = 500 * time.Millisecond
	}
	if cfg.MaxDelay < cfg.QuietWindow {
		cfg.MaxDelay = 10 * cfg.QuietWindow
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{
		cfg:     cfg,
		fsw:     fsw,
		stop:    make(chan struct{}),
		pending: make(map[string]struct{}),
	}
	if err := w.addRecursive(cfg.Dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Start begins watching. The loop runs until Stop is called.
func (w *Watcher) Start() {
	slog.Info("Starting content watcher", logfields.Path(w.cfg.Dir))
	go w.loop()
}

// Stop shuts the watcher down. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		if err := w.fsw.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}
		slog.Info("Content watcher stopped")
	})
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		if d.IsDir() {
			if err := w.fsw.Add(p); err != nil {
				return fmt.Errorf("watch %s: %w", p, err)
			}
		}
		return nil
	})
}

func (w *Watcher) loop() {
	// Timers start stopped; they are armed on the first relevant event.
	quiet := time.NewTimer(time.Hour)
	stopTimer(quiet)
	maxDelay := time.NewTimer(time.Hour)
	stopTimer(maxDelay)

	var quietC, maxC <-chan time.Time

	for {
		select {
		case <-w.stop:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.handleEvent(event) {
				continue
			}
			resetTimer(quiet, w.cfg.QuietWindow)
			quietC = quiet.C
			if maxC == nil {
				resetTimer(maxDelay, w.cfg.MaxDelay)
				maxC = maxDelay.C
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", logfields.Error(err))

		case <-quietC:
			quietC, maxC = nil, nil
			stopTimer(maxDelay)
			w.fire()

		case <-maxC:
			quietC, maxC = nil, nil
			stopTimer(quiet)
			w.fire()
		}
	}
}

// handleEvent records relevant events and reports whether the debounce
// timers should be (re)armed.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				slog.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
			}
			return false
		}
	}
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
		return false
	}
	if !strings.HasSuffix(event.Name, ".md") {
		return false
	}

	slog.Debug("Content modified", logfields.Path(event.Name))
	w.mu.Lock()
	w.pending[event.Name] = struct{}{}
	w.mu.Unlock()
	return true
}

func (w *Watcher) fire() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	sort.Strings(paths)
	slog.Info("Content changes detected", slog.Int("files", len(paths)))
	w.cfg.OnChange(paths)
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	stopTimer(t)
	t.Reset(d)
}
