// Package watch re-runs the processing engine whenever supported files under
// a directory change. Bursts of file system events are debounced into a
// single run.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/fjurado/filerep/internal/engine"
	"github.com/fjurado/filerep/internal/types"
)

// DefaultDebounce batches rapid save events (editors often write a file
// several times in quick succession).
const DefaultDebounce = 500 * time.Millisecond

// ReportFunc receives the report of each triggered run.
type ReportFunc func(*types.ExecutionReport)

// Watcher monitors a directory tree and drives the engine on changes.
type Watcher struct {
	eng      *engine.Engine
	log      *zap.Logger
	debounce time.Duration
}

// New creates a watcher around an engine. A non-positive debounce falls back
// to DefaultDebounce.
func New(eng *engine.Engine, log *zap.Logger, debounce time.Duration) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{eng: eng, log: log, debounce: debounce}
}

// Run watches root until ctx is cancelled, invoking onReport after every
// triggered run. An initial run fires before watching begins so the caller
// always sees at least one report for a non-empty directory.
func (w *Watcher) Run(ctx context.Context, root string, onReport ReportFunc) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	if err := addRecursive(fsw, root); err != nil {
		return err
	}

	w.runOnce(ctx, root, onReport)

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			w.runOnce(ctx, root, onReport)
		})
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				// New subdirectories need their own watch.
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addRecursive(fsw, ev.Name)
					continue
				}
			}
			if !relevant(ev) {
				continue
			}
			w.log.Debug("file event", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			trigger()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context, root string, onReport ReportFunc) {
	if ctx.Err() != nil {
		return
	}
	report, err := w.eng.ProcessDirectory(ctx, root)
	if err != nil {
		w.log.Warn("watch run failed", zap.Error(err))
		return
	}
	if onReport != nil {
		onReport(report)
	}
}

// relevant filters events down to writes, creates, and removes of files with
// a supported extension.
func relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	_, ok := types.TypeForPath(ev.Name)
	return ok
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
