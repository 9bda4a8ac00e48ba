package engine

import (
	"context"
	"math"
	"runtime"
	"time"

	"github.com/fjurado/filerep/internal/types"
)

// runBenchmark runs sequential then parallel over the same input with
// progress disabled, and builds the head-to-head comparison. The parallel
// run's results are the official ones for the aggregator.
func (e *Engine) runBenchmark(ctx context.Context, files []types.ClassifiedFile) ([]types.FileResult, time.Duration, *types.BenchmarkData) {
	seqResults, seqDur, seqMem := e.measureRun(ctx, files, e.runSequential)
	parResults, parDur, parMem := e.measureRun(ctx, files, e.runParallel)

	seqMS := seqDur.Milliseconds()
	parMS := parDur.Milliseconds()

	speedup := 0.0
	if parMS > 0 {
		speedup = math.Round(float64(seqMS)/float64(parMS)*100) / 100
	}
	savedMS := seqMS - parMS
	savedPct := 0.0
	if seqMS > 0 {
		savedPct = math.Round(float64(savedMS)/float64(seqMS)*1000) / 10
	}
	faster := types.ModeSequential
	if parMS < seqMS {
		faster = types.ModeParallel
	}

	data := &types.BenchmarkData{
		TotalFiles:    len(files),
		ProcessesUsed: len(files),
		Sequential:    modeStats(seqResults, seqMS, seqMem),
		Parallel:      modeStats(parResults, parMS, parMem),
		Comparison: types.Comparison{
			SpeedupFactor:    speedup,
			TimeSavedMS:      savedMS,
			TimeSavedPercent: savedPct,
			FasterMode:       faster,
		},
	}
	return parResults, parDur, data
}

type runFunc func(context.Context, []types.ClassifiedFile, *tracker) []types.FileResult

// measureRun times one run and approximates its peak memory as
// max(before, after) of the heap in use. A coarse indicator for reporting,
// not a budget.
func (e *Engine) measureRun(ctx context.Context, files []types.ClassifiedFile, run runFunc) ([]types.FileResult, time.Duration, uint64) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	before := ms.Alloc

	start := time.Now()
	results := run(ctx, files, newTracker(len(files), NopSink{}))
	elapsed := time.Since(start)

	runtime.ReadMemStats(&ms)
	peak := ms.Alloc
	if before > peak {
		peak = before
	}
	return results, elapsed, peak / 1024
}

func modeStats(results []types.FileResult, durationMS int64, memKB uint64) types.ModeStats {
	success, failed := 0, 0
	for _, r := range results {
		switch r.Status {
		case types.StatusOK:
			success++
		case types.StatusError:
			failed++
		}
	}
	avg := 0.0
	if len(results) > 0 {
		avg = math.Round(float64(durationMS)/float64(len(results))*100) / 100
	}
	return types.ModeStats{
		DurationMS:       durationMS,
		DurationSec:      math.Round(float64(durationMS)/10) / 100,
		SuccessCount:     success,
		ErrorCount:       failed,
		AvgTimePerFileMS: avg,
		MemoryKB:         memKB,
	}
}
