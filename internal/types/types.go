// Package types holds the shared data model for the file processing engine:
// file classification, per-file results, and the aggregated execution report.
package types

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FileType identifies the format of an input file. Classification is by
// extension only; content is never sniffed.
type FileType string

const (
	TypeCSV     FileType = "csv"
	TypeJSON    FileType = "json"
	TypeLog     FileType = "log"
	TypeXML     FileType = "xml"
	TypeUnknown FileType = "unknown" // reserved for synthetic skipped-input results
)

// SupportedTypes lists the four processable file types in canonical order.
var SupportedTypes = []FileType{TypeCSV, TypeJSON, TypeLog, TypeXML}

// TypeForPath classifies a path by its extension (case-insensitive).
// The second return is false for unsupported extensions.
func TypeForPath(path string) (FileType, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return TypeCSV, true
	case ".json":
		return TypeJSON, true
	case ".log":
		return TypeLog, true
	case ".xml":
		return TypeXML, true
	default:
		return TypeUnknown, false
	}
}

// Status is the per-file processing outcome.
type Status string

const (
	StatusOK      Status = "ok"
	StatusError   Status = "error"
	StatusPartial Status = "partial" // parser produced data and per-line errors
)

// Mode selects the execution strategy.
type Mode string

const (
	ModeSequential Mode = "sequential"
	ModeParallel   Mode = "parallel"
	ModeBenchmark  Mode = "benchmark"
)

// FileError is one error attached to a FileResult. Line is zero for
// free-text messages without a line reference.
type FileError struct {
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// String renders the error the way the text formatter prints it.
func (e FileError) String() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// FileResult is the unit of work produced by the single-file pipeline.
//
// Invariants: StatusOK implies non-empty Metrics and empty Errors;
// StatusError implies empty Metrics; StatusPartial implies both non-empty.
type FileResult struct {
	Path           string         `json:"path"`
	Filename       string         `json:"filename"`
	Type           FileType       `json:"type"`
	Status         Status         `json:"status"`
	Metrics        map[string]any `json:"metrics"`
	Errors         []FileError    `json:"errors"`
	DurationMS     int64          `json:"duration_ms"`
	LinesProcessed int            `json:"lines_processed"`
	LinesFailed    int            `json:"lines_failed"`
}

// ErrorMessages flattens Errors into display strings.
func (r *FileResult) ErrorMessages() []string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.String()
	}
	return msgs
}

// ClassifiedFile is a (type, path) pair emerging from discovery.
type ClassifiedFile struct {
	Type FileType `json:"type"`
	Path string   `json:"path"`
}

// SkippedInput records an input discovery refused, with the reason.
type SkippedInput struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ModeStats summarizes one benchmark run.
type ModeStats struct {
	DurationMS       int64   `json:"duration_ms"`
	DurationSec      float64 `json:"duration_sec"`
	SuccessCount     int     `json:"success_count"`
	ErrorCount       int     `json:"error_count"`
	AvgTimePerFileMS float64 `json:"avg_time_per_file"`
	MemoryKB         uint64  `json:"memory_kb"`
}

// Comparison relates the two benchmark runs.
type Comparison struct {
	SpeedupFactor    float64 `json:"speedup_factor"`
	TimeSavedMS      int64   `json:"time_saved_ms"`
	TimeSavedPercent float64 `json:"time_saved_percent"`
	FasterMode       Mode    `json:"faster_mode"`
}

// BenchmarkData is the head-to-head comparison record produced by
// benchmark mode.
type BenchmarkData struct {
	TotalFiles    int        `json:"total_files"`
	ProcessesUsed int        `json:"processes_used"`
	Sequential    ModeStats  `json:"sequential"`
	Parallel      ModeStats  `json:"parallel"`
	Comparison    Comparison `json:"comparison"`
}

// ExecutionReport is the aggregated outcome of a run. Results preserve
// input order across all modes.
type ExecutionReport struct {
	Mode            Mode           `json:"mode"`
	StartTime       time.Time      `json:"start_time"`
	Directory       string         `json:"directory,omitempty"`
	TotalFiles      int            `json:"total_files"`
	CSVCount        int            `json:"csv_count"`
	JSONCount       int            `json:"json_count"`
	LogCount        int            `json:"log_count"`
	XMLCount        int            `json:"xml_count"`
	SuccessCount    int            `json:"success_count"`
	ErrorCount      int            `json:"error_count"`
	PartialCount    int            `json:"partial_count"`
	TotalDurationMS int64          `json:"total_duration_ms"`
	Results         []FileResult   `json:"results"`
	Benchmark       *BenchmarkData `json:"benchmark_data,omitempty"`
}
