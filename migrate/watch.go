package migrate

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/schemaforge/schemaforge/model"
	"github.com/schemaforge/schemaforge/schemaio"
)

// SchemaChange is one re-plan produced by a Watcher after its schema file
// changes on disk.
type SchemaChange struct {
	Schema *model.Schema
	Plan   *Plan
	Err    error
}

// Watcher re-runs Analyze/BuildPlan whenever path's contents change,
// debouncing rapid successive writes the way editors and formatters
// produce them. It has no CLI front end — callers drive it directly
// (spec.md §1 Non-goals: no filesystem/CLI plumbing beyond what a
// package needs to exercise its own contracts).
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	format   schemaio.Format
	base     *model.Schema
	opts     AnalyzeOptions
	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewWatcher opens an fsnotify watch on path. base is the schema version
// changes are analyzed against; format controls how path's bytes are
// decoded on each change.
func NewWatcher(path string, format schemaio.Format, base *model.Schema, opts AnalyzeOptions) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}
	return &Watcher{
		watcher:  w,
		path:     path,
		format:   format,
		base:     base,
		opts:     opts,
		debounce: 200 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching in a goroutine, sending one SchemaChange per
// settled write to out. Start returns immediately; Stop ends the loop.
func (w *Watcher) Start(ctx context.Context, out chan<- SchemaChange) {
	go w.run(ctx, out)
}

// Stop closes the underlying fsnotify watcher and waits for the run loop
// to exit.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context, out chan<- SchemaChange) {
	defer close(w.doneCh)

	var pending bool
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending = true
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			out <- SchemaChange{Err: err}
		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			out <- w.replan()
		}
	}
}

func (w *Watcher) replan() SchemaChange {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return SchemaChange{Err: err}
	}
	to, err := schemaio.Parse(data, w.format)
	if err != nil {
		return SchemaChange{Err: err}
	}

	w.mu.Lock()
	base := w.base
	w.base = to
	w.mu.Unlock()

	changes := Analyze(base, to, w.opts)
	return SchemaChange{Schema: to, Plan: BuildPlan(changes)}
}
