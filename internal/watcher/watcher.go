// Package watcher re-runs a load whenever a local model file changes. Used
// by the CLI watch command during model conversion workflows, where the
// converter rewrites model.json and its shards in place.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mturchin/tfjs-converter/internal/graph"
)

// LoadFunc performs one load of the watched model.
type LoadFunc func(ctx context.Context) (*graph.Model, error)

// Watcher watches a local model file and reloads it on change.
type Watcher struct {
	path     string
	load     LoadFunc
	onReload func(*graph.Model, error)
	reloads  atomic.Uint32
	done     chan struct{}
}

// New creates a watcher over a local model file. The initial load happens
// synchronously; onReload fires for every subsequent change.
func New(ctx context.Context, path string, load LoadFunc, onReload func(*graph.Model, error)) (*Watcher, error) {
	w := &Watcher{
		path:     path,
		load:     load,
		onReload: onReload,
		done:     make(chan struct{}),
	}

	if _, err := load(ctx); err != nil {
		return nil, fmt.Errorf("watcher: initial load: %w", err)
	}

	go w.watch(ctx)

	return w, nil
}

// Reloads returns how many reloads have fired so far.
func (w *Watcher) Reloads() uint32 {
	return w.reloads.Load()
}

// Close stops watching.
func (w *Watcher) Close() {
	close(w.done)
}

// watch watches for file changes, debouncing bursts of writes.
func (w *Watcher) watch(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("Failed to create file watcher", "error", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(w.path); err != nil {
		slog.Error("Failed to watch model file", "path", w.path, "error", err)
		return
	}

	var timer *time.Timer
	const debounce = 500 * time.Millisecond

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if timer != nil {
					timer.Stop()
				}

				timer = time.AfterFunc(debounce, func() {
					w.reload(ctx)
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Watcher error", "path", w.path, "error", err)

		case <-w.done:
			return

		case <-ctx.Done():
			return
		}
	}
}

// reload runs one load and reports the result.
func (w *Watcher) reload(ctx context.Context) {
	w.reloads.Add(1)

	model, err := w.load(ctx)
	if err != nil {
		slog.Warn("Model reload failed", "path", w.path, "error", err)
	} else {
		slog.Info("Model reloaded", "path", w.path, "weights", model.NumWeights())
	}

	if w.onReload != nil {
		w.onReload(model, err)
	}
}
