package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjurado/filerep/internal/types"
)

const validLog = `2025-03-01 09:15:00 [INFO] [auth] user logged in
2025-03-01 09:16:30 [ERROR] [db] connection refused
2025-03-01 23:59:59 [DEBUG] [cache] warmed 120 keys
`

func TestParseLogValid(t *testing.T) {
	path := writeFixture(t, "app.log", validLog)

	res := ParseLog(path)
	require.NoError(t, res.Err)
	require.Equal(t, types.StatusOK, res.Status())

	entries := res.Data.([]LogEntry)
	require.Len(t, entries, 3)
	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, "auth", entries[0].Component)
	assert.Equal(t, "user logged in", entries[0].Message)
	assert.Equal(t, 9, entries[0].Hour)
	assert.Equal(t, 23, entries[2].Hour)
}

func TestParseLogPartial(t *testing.T) {
	content := `2025-03-01 09:15:00 [INFO] [auth] ok line
this is not a log line
2025-03-01 24:00:00 [INFO] [auth] hour out of range
2025-03-01 10:00:00 [WARN] [auth] another ok line
`
	path := writeFixture(t, "app.log", content)

	res := ParseLog(path)
	require.NoError(t, res.Err)
	require.Equal(t, types.StatusPartial, res.Status())

	entries := res.Data.([]LogEntry)
	assert.Len(t, entries, 2)

	require.Len(t, res.LineErrors, 2)
	assert.Equal(t, 2, res.LineErrors[0].Line)
	assert.Contains(t, res.LineErrors[0].Message, "does not match")
	assert.Equal(t, 3, res.LineErrors[1].Line)
	assert.Contains(t, res.LineErrors[1].Message, `invalid hour "24"`)
}

func TestParseLogSkipsEmptyLines(t *testing.T) {
	content := "2025-03-01 09:15:00 [INFO] [auth] first\n\n\n2025-03-01 09:16:00 [INFO] [auth] second\n"
	path := writeFixture(t, "app.log", content)

	res := ParseLog(path)
	require.NoError(t, res.Err)
	assert.Empty(t, res.LineErrors)
	assert.Len(t, res.Data.([]LogEntry), 2)
}

func TestParseLogAllInvalid(t *testing.T) {
	path := writeFixture(t, "app.log", "garbage\nmore garbage\n")

	res := ParseLog(path)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "no valid log entries")
	assert.Contains(t, res.Err.Error(), "line 1")
}

func TestParseLogEmptyFile(t *testing.T) {
	path := writeFixture(t, "app.log", "")
	res := ParseLog(path)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "log file is empty")
}

func TestParseLogUnknownLevelRejected(t *testing.T) {
	content := "2025-03-01 09:15:00 [TRACE] [auth] not a known level\n2025-03-01 09:16:00 [INFO] [auth] fine\n"
	path := writeFixture(t, "app.log", content)

	res := ParseLog(path)
	require.NoError(t, res.Err)
	require.Equal(t, types.StatusPartial, res.Status())
	assert.Len(t, res.Data.([]LogEntry), 1)
}
