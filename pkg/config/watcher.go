package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DescriptorWatcher watches the endpoint descriptor file and triggers a
// reload callback when it changes. Rapid write bursts are debounced so an
// editor save (write + rename + chmod) produces one reload, not three.
type DescriptorWatcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewDescriptorWatcher creates a watcher for the given descriptor file.
// The watch is placed on the parent directory: editors and config
// management tools replace files by rename, which silently drops a watch
// placed on the file itself.
func NewDescriptorWatcher(path string, debounce time.Duration, logger *slog.Logger) (*DescriptorWatcher, error) {
	if path == "" {
		return nil, fmt.Errorf("descriptor watch requires an endpoint file path")
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", filepath.Dir(path), err)
	}

	return &DescriptorWatcher{
		path:     path,
		debounce: debounce,
		watcher:  watcher,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks, invoking onReload after each debounced change to the
// descriptor file, until the context is cancelled or Stop is called.
// Reload failures are logged and watching continues; the previously
// loaded descriptor set stays in effect.
func (w *DescriptorWatcher) Watch(ctx context.Context, onReload func() error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	w.logger.Info("Endpoint descriptor watcher started",
		"path", w.path,
		"debounce_ms", w.debounce.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Descriptor watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("Descriptor watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}

			w.logger.Debug("Descriptor file event",
				"path", event.Name,
				"op", event.Op.String(),
			)
			w.schedule(onReload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("Descriptor watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *DescriptorWatcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	return w.watcher.Close()
}

// relevant filters directory events down to content changes of the
// watched file.
func (w *DescriptorWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// schedule arms (or re-arms) the debounce timer for a reload.
func (w *DescriptorWatcher) schedule(onReload func() error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.logger.Info("Reloading endpoint descriptors", "path", w.path)
		if err := onReload(); err != nil {
			w.logger.Error("Endpoint descriptor reload failed", "error", err)
		}
	})
}
