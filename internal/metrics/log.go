package metrics

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fjurado/filerep/internal/parser"
)

// logLevels is the closed level set, in reporting order.
var logLevels = []string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

// errorPatterns maps message substrings to pattern labels, checked in order
// against the lowercased message; the first match wins.
var errorPatterns = []struct {
	substring string
	label     string
}{
	{"timeout", "Timeout errors"},
	{"connection", "Connection errors"},
	{"deadlock", "Database deadlock"},
	{"null", "Null pointer errors"},
	{"permission", "Permission errors"},
}

const maxErrorMessageLen = 100

// ComputeLog summarizes matched log entries.
func ComputeLog(entries []parser.LogEntry) (map[string]any, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no log entries to analyze")
	}

	levelCounts := map[string]int{}
	hourCounts := map[int]int{}
	errorMessages := map[string]int{}
	errorMessageOrder := map[string]int{}
	errorComponents := map[string]int{}
	errorComponentOrder := map[string]int{}
	patternCounts := map[string]int{}
	patternOrder := map[string]int{}
	critical := 0
	order := 0

	for _, e := range entries {
		levelCounts[e.Level]++
		hourCounts[e.Hour]++

		if e.Level != "ERROR" && e.Level != "FATAL" {
			continue
		}
		critical++

		msg := truncate(e.Message, maxErrorMessageLen)
		if _, seen := errorMessageOrder[msg]; !seen {
			errorMessageOrder[msg] = order
		}
		errorMessages[msg]++

		if _, seen := errorComponentOrder[e.Component]; !seen {
			errorComponentOrder[e.Component] = order
		}
		errorComponents[e.Component]++

		label := classifyError(e.Component, e.Message)
		if _, seen := patternOrder[label]; !seen {
			patternOrder[label] = order
		}
		patternCounts[label]++
		order++
	}

	distribution := map[string]any{}
	for _, level := range logLevels {
		count := levelCounts[level]
		distribution[level] = map[string]any{
			"count":      count,
			"percentage": round1(float64(count) / float64(len(entries)) * 100),
		}
	}

	frequentErrors := make([]map[string]any, 0, 5)
	for _, entry := range topN(errorMessages, errorMessageOrder, 5) {
		frequentErrors = append(frequentErrors, map[string]any{
			"message": entry.key,
			"count":   entry.count,
		})
	}

	topComponents := make([]map[string]any, 0, 5)
	for _, entry := range topN(errorComponents, errorComponentOrder, 5) {
		topComponents = append(topComponents, map[string]any{
			"component":   entry.key,
			"error_count": entry.count,
		})
	}

	hours := make([]int, 0, len(hourCounts))
	for h := range hourCounts {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	hourly := make([]map[string]any, 0, len(hours))
	for _, h := range hours {
		hourly = append(hourly, map[string]any{
			"hour":  h,
			"count": hourCounts[h],
		})
	}

	patterns := make([]map[string]any, 0, 3)
	for _, entry := range topN(patternCounts, patternOrder, 3) {
		patterns = append(patterns, map[string]any{
			"pattern": entry.key,
			"count":   entry.count,
		})
	}

	return map[string]any{
		"total_entries":         len(entries),
		"level_distribution":    distribution,
		"most_frequent_errors":  frequentErrors,
		"top_error_components":  topComponents,
		"hourly_distribution":   hourly,
		"critical_errors_count": critical,
		"error_patterns":        patterns,
	}, nil
}

// truncate cuts s to at most n bytes without splitting a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// classifyError labels an error/fatal message by the first matching
// substring; unmatched messages fall back to the component.
func classifyError(component, message string) string {
	lower := strings.ToLower(message)
	for _, p := range errorPatterns {
		if strings.Contains(lower, p.substring) {
			return p.label
		}
	}
	return fmt.Sprintf("%s errors", component)
}
