// Package metrics computes the per-format metrics summaries from parsed
// payloads. Every function is pure: parsed data in, a metrics map out.
// Empty input is an error, never an empty map.
package metrics

import (
	"fmt"
	"math"
	"sort"

	"github.com/fjurado/filerep/internal/parser"
	"github.com/fjurado/filerep/internal/types"
)

// Compute dispatches to the metrics function for the classified type.
func Compute(ft types.FileType, data any) (map[string]any, error) {
	switch ft {
	case types.TypeCSV:
		sales, ok := data.([]parser.Sale)
		if !ok {
			return nil, fmt.Errorf("csv metrics: unexpected payload type %T", data)
		}
		return ComputeCSV(sales)
	case types.TypeJSON:
		ud, ok := data.(parser.UserData)
		if !ok {
			return nil, fmt.Errorf("json metrics: unexpected payload type %T", data)
		}
		return ComputeJSON(ud)
	case types.TypeLog:
		entries, ok := data.([]parser.LogEntry)
		if !ok {
			return nil, fmt.Errorf("log metrics: unexpected payload type %T", data)
		}
		return ComputeLog(entries)
	case types.TypeXML:
		catalog, ok := data.(parser.Catalog)
		if !ok {
			return nil, fmt.Errorf("xml metrics: unexpected payload type %T", data)
		}
		return ComputeXML(catalog)
	default:
		return nil, fmt.Errorf("no metrics registered for type %q", ft)
	}
}

// LinesProcessed extracts the per-type record count from a metrics map, used
// by the processor to fill FileResult.LinesProcessed.
func LinesProcessed(ft types.FileType, m map[string]any) int {
	var key string
	switch ft {
	case types.TypeCSV:
		key = "total_records"
	case types.TypeJSON:
		key = "total_sessions"
	case types.TypeLog:
		key = "total_entries"
	case types.TypeXML:
		key = "total_products"
	default:
		return 0
	}
	if n, ok := m[key].(int); ok {
		return n
	}
	return 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// countedKey pairs a grouping key with its accumulated count, keeping the
// first-occurrence index for deterministic tie-breaking.
type countedKey struct {
	key   string
	count int
	order int
}

// keysInOrder returns map keys sorted by their first-occurrence index.
func keysInOrder(order map[string]int) []string {
	keys := make([]string, 0, len(order))
	for k := range order {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return order[keys[i]] < order[keys[j]] })
	return keys
}

// topN returns up to n entries sorted by count descending; ties keep
// first-occurrence order.
func topN(counts map[string]int, order map[string]int, n int) []countedKey {
	out := make([]countedKey, 0, len(counts))
	for k, c := range counts {
		out = append(out, countedKey{key: k, count: c, order: order[k]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].order < out[j].order
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
