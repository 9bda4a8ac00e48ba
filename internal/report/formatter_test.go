package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjurado/filerep/internal/types"
)

func sampleReport() *types.ExecutionReport {
	return &types.ExecutionReport{
		Mode:            types.ModeParallel,
		StartTime:       time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Directory:       "/data",
		TotalFiles:      2,
		CSVCount:        1,
		JSONCount:       1,
		SuccessCount:    1,
		ErrorCount:      1,
		TotalDurationMS: 120,
		Results: []types.FileResult{
			{
				Path: "/data/sales.csv", Filename: "sales.csv", Type: types.TypeCSV,
				Status: types.StatusOK, DurationMS: 80,
				Metrics: map[string]any{"total_sales": 1800.0, "total_records": 1},
			},
			{
				Path: "/data/broken.json", Filename: "broken.json", Type: types.TypeJSON,
				Status: types.StatusError, DurationMS: 40,
				Errors: []types.FileError{{Message: "invalid JSON: unexpected end of JSON input while reading the uploaded users and sessions document from disk"}},
			},
		},
	}
}

func TestRenderSections(t *testing.T) {
	out := NewFormatter().Render(sampleReport())

	for _, want := range []string{
		"FILE PROCESSING REPORT",
		"METADATA",
		"EXECUTIVE SUMMARY",
		"CSV METRICS",
		"PERFORMANCE ANALYSIS",
		"ERRORS & WARNINGS",
	} {
		assert.Contains(t, out, want)
	}

	assert.Contains(t, out, "Mode:      parallel")
	assert.Contains(t, out, "Directory: /data")
	assert.Contains(t, out, "Succeeded: 1   Failed: 1   Partial: 0")
	assert.Contains(t, out, "total_sales")
	assert.Contains(t, out, "broken.json: invalid JSON")
	// failed files carry no metrics, so no JSON metrics block appears
	assert.NotContains(t, out, "JSON METRICS")
}

func TestRenderLinesFitWidth(t *testing.T) {
	out := NewFormatter().Render(sampleReport())
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), lineWidth, "line overflows: %q", line)
	}
}

func TestRenderBenchmarkBlock(t *testing.T) {
	r := sampleReport()
	r.Mode = types.ModeBenchmark
	r.Benchmark = &types.BenchmarkData{
		TotalFiles: 2,
		Sequential: types.ModeStats{DurationMS: 200, SuccessCount: 1, ErrorCount: 1, MemoryKB: 512},
		Parallel:   types.ModeStats{DurationMS: 100, SuccessCount: 1, ErrorCount: 1, MemoryKB: 640},
		Comparison: types.Comparison{SpeedupFactor: 2.0, TimeSavedMS: 100, TimeSavedPercent: 50.0, FasterMode: types.ModeParallel},
	}

	out := NewFormatter().Render(r)
	assert.Contains(t, out, "Sequential: 200 ms")
	assert.Contains(t, out, "Parallel:   100 ms")
	assert.Contains(t, out, "Speedup: 2.00x")
	assert.Contains(t, out, "Faster: parallel")
}

func TestRenderNoErrors(t *testing.T) {
	r := sampleReport()
	r.Results = r.Results[:1]
	r.ErrorCount = 0

	out := NewFormatter().Render(r)
	assert.Contains(t, out, "ERRORS & WARNINGS")
	assert.Contains(t, out, "none")
}

func TestGenerateAndSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := NewFormatter().GenerateAndSave(sampleReport(), dir)
	require.NoError(t, err)
	assert.Equal(t, "report_20250301_090000.txt", filepath.Base(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "FILE PROCESSING REPORT")
}

func TestWrap(t *testing.T) {
	long := "  prefix: " + strings.Repeat("word ", 30)
	lines := wrap(strings.TrimRight(long, " "), 40)
	require.Greater(t, len(lines), 1)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), 40)
	}
	assert.True(t, strings.HasPrefix(lines[1], "    "), "continuations indent past the original")
}
