// Package processor implements the single-file pipeline stage: parse, then
// metrics, folded into one FileResult. Process never returns an error to the
// caller; every failure becomes FileResult state.
package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/fjurado/filerep/internal/metrics"
	"github.com/fjurado/filerep/internal/parser"
	"github.com/fjurado/filerep/internal/types"
)

// parse is a seam over the parser dispatch; tests substitute it to exercise
// the crash recovery path.
var parse = parser.Parse

// Processor drives one file through parse → validate → metrics.
type Processor struct {
	log *zap.Logger
}

// New creates a processor. A nil logger is replaced with a no-op.
func New(log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{log: log}
}

// Process runs the pipeline for one classified file. A panic inside a parser
// or metrics function is recovered into an error result so a single bad file
// cannot take down a worker.
func (p *Processor) Process(ctx context.Context, file types.ClassifiedFile) (result types.FileResult) {
	start := time.Now()

	result = types.FileResult{
		Path:     file.Path,
		Filename: filepath.Base(file.Path),
		Type:     file.Type,
		Metrics:  map[string]any{},
		Errors:   []types.FileError{},
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn("pipeline panic", zap.String("path", file.Path), zap.Any("panic", r))
			result.Status = types.StatusError
			result.Metrics = map[string]any{}
			result.Errors = []types.FileError{{Message: fmt.Sprintf("worker process crashed: %v", r)}}
		}
		result.DurationMS = time.Since(start).Milliseconds()
	}()

	if err := ctx.Err(); err != nil {
		result.Status = types.StatusError
		result.Errors = append(result.Errors, types.FileError{Message: fmt.Sprintf("processing timeout: %v", err)})
		return result
	}

	parsed := parse(file.Type, file.Path)
	if parsed.Err != nil {
		result.Status = types.StatusError
		result.Errors = append(result.Errors, types.FileError{Message: parsed.Err.Error()})
		return result
	}
	result.Errors = append(result.Errors, parsed.LineErrors...)
	result.LinesFailed = len(parsed.LineErrors)

	m, err := metrics.Compute(file.Type, parsed.Data)
	if err != nil {
		result.Errors = append(result.Errors, types.FileError{Message: err.Error()})
	} else {
		result.Metrics = m
		result.LinesProcessed = metrics.LinesProcessed(file.Type, m)
	}

	// Status falls out of what survived: errors alongside metrics mean
	// partial, errors alone mean failure.
	switch {
	case len(result.Errors) > 0 && len(result.Metrics) > 0:
		result.Status = types.StatusPartial
	case len(result.Errors) > 0:
		result.Status = types.StatusError
		result.Metrics = map[string]any{}
	default:
		result.Status = types.StatusOK
	}

	return result
}
