// Package watch notifies when the files backing a task list change on disk,
// so another process's edits can be re-rendered.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is how long the watcher waits for writes to settle.
const DefaultDelay = 200 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	// Dir is the directory to watch. Files are replaced by rename, so the
	// directory is watched rather than the files themselves.
	Dir string
	// Files limits notifications to these base names. Empty means any file.
	Files []string
	// Delay is the debounce window. Zero means DefaultDelay.
	Delay time.Duration
	// OnChange runs after a burst of changes settles.
	OnChange func()
	Logger   *slog.Logger
}

// Watcher turns fsnotify events into debounced change callbacks.
type Watcher struct {
	dir       string
	files     map[string]bool
	log       *slog.Logger
	watcher   *fsnotify.Watcher
	debouncer *debouncer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Watcher. Call Start to begin receiving events.
func New(cfg Config) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("watch: directory is required")
	}
	if cfg.OnChange == nil {
		return nil, fmt.Errorf("watch: OnChange is required")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	delay := cfg.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}

	var files map[string]bool
	if len(cfg.Files) > 0 {
		files = make(map[string]bool, len(cfg.Files))
		for _, f := range cfg.Files {
			files[filepath.Base(f)] = true
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		dir:       cfg.Dir,
		files:     files,
		log:       log,
		watcher:   fw,
		debouncer: newDebouncer(delay, cfg.OnChange),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start adds the directory and launches the event loop.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.log.Debug("watching for changes", "dir", w.dir)

	w.wg.Add(1)
	go w.eventLoop()
	return nil
}

// Stop ends the event loop. Pending notifications are dropped.
func (w *Watcher) Stop() {
	w.cancel()
	_ = w.watcher.Close()
	w.debouncer.stop()
	w.wg.Wait()
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	if w.files != nil && !w.files[filepath.Base(event.Name)] {
		return
	}
	w.log.Debug("change detected", "file", filepath.Base(event.Name), "op", event.Op.String())
	w.debouncer.touch()
}

// Run watches until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	w, err := New(cfg)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return err
	}
	<-ctx.Done()
	w.Stop()
	return nil
}

// debouncer collapses a burst of touches into one callback.
type debouncer struct {
	mu      sync.Mutex
	timer   *time.Timer
	delay   time.Duration
	fire    func()
	stopped bool
	// firing tracks callbacks in progress so stop can wait them out.
	firing sync.WaitGroup
}

func newDebouncer(delay time.Duration, fire func()) *debouncer {
	return &debouncer{delay: delay, fire: fire}
}

func (d *debouncer) touch() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.run)
}

func (d *debouncer) run() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.firing.Add(1)
	d.mu.Unlock()

	defer d.firing.Done()
	d.fire()
}

// stop cancels any pending callback and waits for a running one, so no
// callback runs after it returns.
func (d *debouncer) stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()

	d.firing.Wait()
}
