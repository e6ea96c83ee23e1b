// Package watcher plays the build host for builds that run outside this process.
// Each time the build tool rewrites its stats file the watcher decodes the new
// stats and fires the after-emit hooks tapped on it.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/dtnitsch/assets-writer/models"
	"github.com/dtnitsch/assets-writer/pkg/manifest"
	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 100 * time.Millisecond

// LoadFunc produces the compilation for the current build.
type LoadFunc func(ctx context.Context) (*manifest.Compilation, error)

type tap struct {
	name string
	fn   func(*manifest.Compilation) error
}

// Watcher implements manifest.Hooks.
type Watcher struct {
	mu       sync.Mutex
	taps     []tap
	path     string
	load     LoadFunc
	debounce time.Duration
	logger   *slog.Logger

	stats Stats
}

// Stats counts builds seen by the watcher.
type Stats struct {
	Builds     int
	Failed     int
	LastBuild  time.Time
	LastFailed error
}

// New watches statsPath. load is called once per detected build.
func New(statsPath string, load LoadFunc, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     filepath.Clean(statsPath),
		load:     load,
		debounce: DefaultDebounce,
		logger:   logger,
	}
}

// SetDebounce changes how long the watcher waits for the stats file to settle.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

func (w *Watcher) TapAfterEmit(name string, fn func(*manifest.Compilation) error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.taps = append(w.taps, tap{name: name, fn: fn})
}

// Stats returns a snapshot of the build counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Emit runs one build: load the compilation, then call every tap in order.
// The first failing tap stops the build.
func (w *Watcher) Emit(ctx context.Context) error {
	err := w.emit(ctx)

	w.mu.Lock()
	w.stats.Builds++
	w.stats.LastBuild = time.Now()
	if err != nil {
		w.stats.Failed++
		w.stats.LastFailed = err
	}
	w.mu.Unlock()

	return err
}

func (w *Watcher) emit(ctx context.Context) error {
	c, err := w.load(ctx)
	if err != nil {
		return err
	}

	w.mu.Lock()
	taps := append([]tap(nil), w.taps...)
	w.mu.Unlock()

	for _, t := range taps {
		if err := t.fn(c); err != nil {
			return fmt.Errorf("%s: %w", t.name, err)
		}
	}
	return nil
}

// Run blocks until ctx is cancelled. Builds are handled one at a time on the
// calling goroutine; a failed build is logged and the watcher keeps going.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	// Build tools often replace the stats file by rename, which only shows up
	// as a create in the parent directory.
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logger.Info("watching build stats", "path", w.path)

	// Armed only by stats events.
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped", "path", w.path)
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return errors.New("file watcher event channel closed")
			}
			if !w.isStatsEvent(event) {
				continue
			}
			w.logger.Debug("stats file changed", "op", event.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("file watcher error channel closed")
			}
			w.logger.Error("file watcher error", "error", err)

		case <-timer.C:
			if err := w.Emit(ctx); err != nil {
				w.logger.Error("build failed", "path", w.path, "error", err)
				continue
			}
			w.logger.Debug("build handled", "path", w.path)
		}
	}
}

func (w *Watcher) isStatsEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write) != 0
}

// CompilationLoader adapts a stats decoder and an asset source factory into a LoadFunc.
func CompilationLoader(
	loadStats func(ctx context.Context) (*models.CompilationStats, error),
	source func(*models.CompilationStats) manifest.AssetSource,
) LoadFunc {
	return func(ctx context.Context) (*manifest.Compilation, error) {
		s, err := loadStats(ctx)
		if err != nil {
			return nil, err
		}
		return &manifest.Compilation{Stats: s, Assets: source(s)}, nil
	}
}
