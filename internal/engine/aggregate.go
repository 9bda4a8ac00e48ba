package engine

import (
	"path/filepath"
	"time"

	"github.com/fjurado/filerep/internal/types"
)

func baseName(path string) string {
	return filepath.Base(path)
}

// aggregate folds ordered results into an ExecutionReport and appends one
// synthetic error result per skipped input.
func aggregate(
	mode types.Mode,
	startTime time.Time,
	directory string,
	results []types.FileResult,
	skipped []types.SkippedInput,
	totalDuration time.Duration,
	bench *types.BenchmarkData,
) *types.ExecutionReport {
	report := &types.ExecutionReport{
		Mode:            mode,
		StartTime:       startTime,
		Directory:       directory,
		TotalDurationMS: totalDuration.Milliseconds(),
		Results:         results,
		Benchmark:       bench,
	}

	for _, s := range skipped {
		report.Results = append(report.Results, types.FileResult{
			Path:     s.Path,
			Filename: baseName(s.Path),
			Type:     types.TypeUnknown,
			Status:   types.StatusError,
			Metrics:  map[string]any{},
			Errors:   []types.FileError{{Message: s.Reason}},
		})
	}

	for _, r := range report.Results {
		report.TotalFiles++
		switch r.Type {
		case types.TypeCSV:
			report.CSVCount++
		case types.TypeJSON:
			report.JSONCount++
		case types.TypeLog:
			report.LogCount++
		case types.TypeXML:
			report.XMLCount++
		}
		switch r.Status {
		case types.StatusOK:
			report.SuccessCount++
		case types.StatusError:
			report.ErrorCount++
		case types.StatusPartial:
			report.PartialCount++
		}
	}

	return report
}
