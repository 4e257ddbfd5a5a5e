package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"k8s.io/klog/v2"
)

// DefaultReloadDelay coalesces the burst of events editors produce on save
const DefaultReloadDelay = 250 * time.Millisecond

// Watcher reloads the config file whenever it changes on disk
type Watcher struct {
	path     string
	delay    time.Duration
	logger   klog.Logger
	onReload func(*File, error)
}

// NewWatcher creates a watcher for path. onReload is called from the
// watcher goroutine with the result of Load after each change.
func NewWatcher(logger klog.Logger, path string, onReload func(*File, error)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	return &Watcher{
		path:     abs,
		delay:    DefaultReloadDelay,
		logger:   klog.LoggerWithName(logger, "watcher"),
		onReload: onReload,
	}, nil
}

// Run watches until ctx is cancelled. The parent directory is watched rather
// than the file because editors often save by rename.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}
	w.logger.V(2).Info("Watching config file", "path", w.path)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write | fsnotify.Create | fsnotify.Rename) {
				continue
			}
			w.logger.V(4).Info("Config file event", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error(err, "File watcher error")

		case <-fire:
			fire = nil
			f, err := Load(w.logger, w.path)
			w.logger.V(2).Info("Reloaded config file", "path", w.path, "ready", f.AnyReady())
			w.onReload(f, err)
		}
	}
}
