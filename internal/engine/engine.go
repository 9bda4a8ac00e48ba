// Package engine composes discovery, the execution modes, and the report
// aggregator behind one facade. The engine never reads process-global state;
// every knob arrives through config.Options.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/fjurado/filerep/internal/config"
	"github.com/fjurado/filerep/internal/discovery"
	"github.com/fjurado/filerep/internal/processor"
	"github.com/fjurado/filerep/internal/types"
)

// ErrNoFiles is the facade's only top-level failure: nothing to process.
var ErrNoFiles = errors.New("No files to process")

// fileProcessor is the single-file pipeline stage. Satisfied by
// *processor.Processor.
type fileProcessor interface {
	Process(context.Context, types.ClassifiedFile) types.FileResult
}

// Engine is the public entry point of the processing core.
type Engine struct {
	opts    config.Options
	log     *zap.Logger
	sink    ProgressSink
	scanner *discovery.Scanner
	proc    fileProcessor
	retrier *processor.Retrier
}

// New validates and normalizes the options and assembles the engine.
// Pass a nil sink to discard progress.
func New(opts config.Options, log *zap.Logger, sink ProgressSink) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	opts.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if sink == nil || !opts.ShowProgress {
		sink = NopSink{}
	}
	return &Engine{
		opts:    opts,
		log:     log,
		sink:    sink,
		scanner: discovery.NewScanner(opts.Include, opts.Exclude, log),
		proc:    processor.New(log),
		retrier: processor.NewRetrier(opts.MaxRetries, time.Duration(opts.RetryDelayMS)*time.Millisecond, log),
	}, nil
}

// Process dispatches on the input: a directory is walked recursively, a
// plain path is handled as a single file.
func (e *Engine) Process(ctx context.Context, input string) (*types.ExecutionReport, error) {
	info, err := os.Stat(input)
	if err == nil && info.IsDir() {
		return e.ProcessDirectory(ctx, input)
	}
	return e.ProcessFile(ctx, input)
}

// ProcessDirectory discovers and processes every supported file under root.
func (e *Engine) ProcessDirectory(ctx context.Context, root string) (*types.ExecutionReport, error) {
	disc, err := e.scanner.Directory(root)
	if err != nil {
		if errors.Is(err, discovery.ErrNoFiles) {
			return nil, ErrNoFiles
		}
		return nil, err
	}
	return e.run(ctx, disc)
}

// ProcessFiles processes an explicit path list. Unsupported entries become
// synthetic error results; the run fails only when the list is empty.
func (e *Engine) ProcessFiles(ctx context.Context, paths []string) (*types.ExecutionReport, error) {
	return e.run(ctx, e.scanner.Files(paths))
}

// ProcessFile processes a single file.
func (e *Engine) ProcessFile(ctx context.Context, path string) (*types.ExecutionReport, error) {
	return e.run(ctx, e.scanner.File(path))
}

// run drives the configured mode over a discovery result and aggregates.
// Once at least one file was classified (or skipped), run always returns a
// report: per-file failures never abort a run.
func (e *Engine) run(ctx context.Context, disc *discovery.Result) (*types.ExecutionReport, error) {
	if len(disc.Files) == 0 && len(disc.Skipped) == 0 {
		return nil, ErrNoFiles
	}

	mode := e.opts.EffectiveMode()
	startTime := time.Now()
	e.log.Info("run starting",
		zap.String("mode", string(mode)),
		zap.Int("files", len(disc.Files)),
		zap.Int("skipped", len(disc.Skipped)),
		zap.Int("workers", e.opts.MaxWorkers))

	var (
		results  []types.FileResult
		duration time.Duration
		bench    *types.BenchmarkData
	)

	switch mode {
	case types.ModeSequential, types.ModeParallel:
		t := newTracker(len(disc.Files), e.sink)
		start := time.Now()
		if mode == types.ModeSequential {
			results = e.runSequential(ctx, disc.Files, t)
		} else {
			results = e.runParallel(ctx, disc.Files, t)
		}
		duration = time.Since(start)
		t.Stop()
	case types.ModeBenchmark:
		results, duration, bench = e.runBenchmark(ctx, disc.Files)
	default:
		return nil, fmt.Errorf("invalid mode %q", mode)
	}

	report := aggregate(mode, startTime, disc.Directory, results, disc.Skipped, duration, bench)
	e.log.Info("run complete",
		zap.Int("total", report.TotalFiles),
		zap.Int("ok", report.SuccessCount),
		zap.Int("errors", report.ErrorCount),
		zap.Int("partial", report.PartialCount),
		zap.Int64("duration_ms", report.TotalDurationMS))
	return report, nil
}
