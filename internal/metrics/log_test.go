package metrics

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjurado/filerep/internal/parser"
)

func entry(level, component, message string, hour int) parser.LogEntry {
	return parser.LogEntry{Level: level, Component: component, Message: message, Hour: hour}
}

func TestComputeLog(t *testing.T) {
	entries := []parser.LogEntry{
		entry("INFO", "auth", "user logged in", 9),
		entry("INFO", "auth", "user logged in", 9),
		entry("ERROR", "db", "connection refused", 10),
		entry("ERROR", "db", "connection refused", 10),
		entry("FATAL", "db", "deadlock detected", 11),
		entry("DEBUG", "cache", "warmed keys", 9),
	}

	m, err := ComputeLog(entries)
	require.NoError(t, err)

	assert.Equal(t, 6, m["total_entries"])
	assert.Equal(t, 3, m["critical_errors_count"])

	dist := m["level_distribution"].(map[string]any)
	info := dist["INFO"].(map[string]any)
	assert.Equal(t, 2, info["count"])
	assert.Equal(t, 33.3, info["percentage"])
	// absent levels still appear with zero counts
	warn := dist["WARN"].(map[string]any)
	assert.Equal(t, 0, warn["count"])

	freq := m["most_frequent_errors"].([]map[string]any)
	require.NotEmpty(t, freq)
	assert.Equal(t, "connection refused", freq[0]["message"])
	assert.Equal(t, 2, freq[0]["count"])

	comps := m["top_error_components"].([]map[string]any)
	require.Len(t, comps, 1)
	assert.Equal(t, "db", comps[0]["component"])
	assert.Equal(t, 3, comps[0]["error_count"])

	hourly := m["hourly_distribution"].([]map[string]any)
	require.Len(t, hourly, 3)
	assert.Equal(t, 9, hourly[0]["hour"])
	assert.Equal(t, 3, hourly[0]["count"])
	assert.Equal(t, 11, hourly[2]["hour"])

	patterns := m["error_patterns"].([]map[string]any)
	require.Len(t, patterns, 2)
	assert.Equal(t, "Connection errors", patterns[0]["pattern"])
	assert.Equal(t, 2, patterns[0]["count"])
	assert.Equal(t, "Database deadlock", patterns[1]["pattern"])
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"request Timeout after 30s", "Timeout errors"},
		{"connection reset by peer", "Connection errors"},
		{"transaction deadlock", "Database deadlock"},
		{"null pointer dereference", "Null pointer errors"},
		{"permission denied", "Permission errors"},
		{"something else entirely", "db errors"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyError("db", tt.message), tt.message)
	}
}

func TestComputeLogTruncatesLongMessages(t *testing.T) {
	long := make([]byte, 150)
	for i := range long {
		long[i] = 'x'
	}
	entries := []parser.LogEntry{entry("ERROR", "db", string(long), 1)}

	m, err := ComputeLog(entries)
	require.NoError(t, err)

	freq := m["most_frequent_errors"].([]map[string]any)
	require.Len(t, freq, 1)
	assert.Len(t, freq[0]["message"], 100)
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 100))

	// a 2-byte rune straddling the cut must be dropped whole
	msg := strings.Repeat("x", 99) + "é tail"
	got := truncate(msg, 100)
	assert.Equal(t, strings.Repeat("x", 99), got)
	assert.True(t, utf8.ValidString(got))
}

func TestComputeLogTruncatesMultiByteMessages(t *testing.T) {
	msg := strings.Repeat("x", 99) + strings.Repeat("é", 30)
	entries := []parser.LogEntry{entry("ERROR", "db", msg, 1)}

	m, err := ComputeLog(entries)
	require.NoError(t, err)

	freq := m["most_frequent_errors"].([]map[string]any)
	require.Len(t, freq, 1)
	got := freq[0]["message"].(string)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 100)
}

func TestComputeLogEmpty(t *testing.T) {
	_, err := ComputeLog(nil)
	require.Error(t, err)
}
