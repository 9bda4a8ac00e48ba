package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/fjurado/filerep/internal/types"
)

// runSequential processes files one at a time in input order.
func (e *Engine) runSequential(ctx context.Context, files []types.ClassifiedFile, t *tracker) []types.FileResult {
	results := make([]types.FileResult, 0, len(files))
	for _, f := range files {
		results = append(results, e.retrier.Run(ctx, f, e.proc.Process))
		t.Tick(f.Path)
	}
	return results
}

// runParallel processes files under a bounded worker pool. The output slice
// is ordered by input index regardless of completion order; progress ticks
// fire in completion order. One failing or hanging file never affects the
// other slots.
func (e *Engine) runParallel(ctx context.Context, files []types.ClassifiedFile, t *tracker) []types.FileResult {
	results := make([]types.FileResult, len(files))
	sem := semaphore.NewWeighted(int64(e.opts.MaxWorkers))
	var wg sync.WaitGroup

	for i, f := range files {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = syntheticFailure(f, err)
			t.Tick(f.Path)
			continue
		}
		wg.Add(1)
		go func(i int, f types.ClassifiedFile) {
			defer wg.Done()
			results[i] = e.runTask(ctx, f, func() { sem.Release(1) })
			t.Tick(f.Path)
		}(i, f)
	}

	wg.Wait()
	return results
}

// runTask executes one file with a hard per-file deadline. The pipeline runs
// in its own goroutine; on expiry the slot is filled with a synthetic error
// and the pool moves on. A deadline-abandoned pipeline finishes in the
// background and its result is dropped via the buffered channel. The pool
// slot is released by the pipeline goroutine itself, not on deadline expiry,
// so at most MaxWorkers pipelines ever run at once.
func (e *Engine) runTask(ctx context.Context, f types.ClassifiedFile, release func()) types.FileResult {
	taskCtx, cancel := context.WithTimeout(ctx, time.Duration(e.opts.TimeoutMS)*time.Millisecond)
	defer cancel()

	done := make(chan types.FileResult, 1)
	go func() {
		defer release()
		defer func() {
			if r := recover(); r != nil {
				e.log.Warn("worker crash", zap.String("path", f.Path), zap.Any("panic", r))
				done <- syntheticFailure(f, fmt.Errorf("worker process crashed: %v", r))
			}
		}()
		done <- e.retrier.Run(taskCtx, f, e.proc.Process)
	}()

	select {
	case result := <-done:
		return result
	case <-taskCtx.Done():
		e.log.Warn("task deadline exceeded",
			zap.String("path", f.Path),
			zap.Int("timeout_ms", e.opts.TimeoutMS))
		return syntheticFailure(f, taskCtx.Err())
	}
}

// syntheticFailure is the error slot for a task that never produced a
// result: deadline expiry, worker crash, or pool shutdown.
func syntheticFailure(f types.ClassifiedFile, reason error) types.FileResult {
	return types.FileResult{
		Path:     f.Path,
		Filename: baseName(f.Path),
		Type:     f.Type,
		Status:   types.StatusError,
		Metrics:  map[string]any{},
		Errors: []types.FileError{
			{Message: fmt.Sprintf("Task crashed or timed out: %v", reason)},
		},
		DurationMS: 0,
	}
}
