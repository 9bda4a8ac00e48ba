// Package parser implements the four format parsers (CSV sales, JSON
// users/sessions, line-oriented logs, XML catalogs). Every parser is a pure
// function from a path to a Result; none of them panic or mutate state
// outside their own return value.
package parser

import (
	"fmt"

	"github.com/fjurado/filerep/internal/types"
)

// Result is the parse outcome sum type: exactly one of the three shapes.
//
//   - ok:      Data set, LineErrors empty, Err nil
//   - partial: Data set, LineErrors non-empty, Err nil (log files only)
//   - error:   Err set, Data nil
type Result struct {
	Data       any
	LineErrors []types.FileError
	Err        error
}

// OK wraps a fully parsed payload.
func OK(data any) Result {
	return Result{Data: data}
}

// Partial wraps a payload that parsed alongside per-line failures.
func Partial(data any, errs []types.FileError) Result {
	return Result{Data: data, LineErrors: errs}
}

// Fail wraps a terminal parse failure.
func Fail(err error) Result {
	return Result{Err: err}
}

// Status maps the result shape onto the per-file status set.
func (r Result) Status() types.Status {
	switch {
	case r.Err != nil:
		return types.StatusError
	case len(r.LineErrors) > 0:
		return types.StatusPartial
	default:
		return types.StatusOK
	}
}

// Parse dispatches to the parser for the classified type.
func Parse(ft types.FileType, path string) Result {
	switch ft {
	case types.TypeCSV:
		return ParseCSV(path)
	case types.TypeJSON:
		return ParseJSON(path)
	case types.TypeLog:
		return ParseLog(path)
	case types.TypeXML:
		return ParseXML(path)
	default:
		return Fail(fmt.Errorf("no parser registered for type %q", ft))
	}
}
