// Package watch re-runs a script whenever its file changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// DefaultDebounce is how long writes must settle before a re-run
const DefaultDebounce = 100 * time.Millisecond

// RunFunc executes the watched script. A returned error is logged; it does
// not stop the watcher.
type RunFunc func(ctx context.Context, path string) error

// Watcher monitors one script file
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	run      RunFunc
	stderr   io.Writer

	mu   sync.Mutex
	runs int
}

// New creates a watcher for path. The file's directory is watched so that
// editors which replace the file on save are still seen.
func New(path string, debounce time.Duration, run RunFunc, stderr io.Writer) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		watcher:  fsWatcher,
		path:     abs,
		debounce: debounce,
		run:      run,
		stderr:   stderr,
	}, nil
}

// Run executes the script once, then again after every settled change,
// until ctx is cancelled. It closes the underlying watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	changes := make(chan struct{}, 1)
	changes <- struct{}{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.eventLoop(ctx, changes)
	})
	g.Go(func() error {
		return w.runLoop(ctx, changes)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Runs returns how many times the script has been executed
func (w *Watcher) Runs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

// eventLoop turns file events into at most one pending change signal per
// debounce window
func (w *Watcher) eventLoop(ctx context.Context, changes chan<- struct{}) error {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			select {
			case changes <- struct{}{}:
			default:
				// a run is already pending
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logError("watcher error: %v", err)
		}
	}
}

func (w *Watcher) runLoop(ctx context.Context, changes <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changes:
			if err := w.run(ctx, w.path); err != nil {
				w.logError("%v", err)
			}
			w.mu.Lock()
			w.runs++
			w.mu.Unlock()
		}
	}
}

func (w *Watcher) logError(format string, args ...any) {
	if w.stderr == nil {
		return
	}
	fmt.Fprintf(w.stderr, "[WATCH ERROR] "+format+"\n", args...)
}
