package processor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjurado/filerep/internal/parser"
	"github.com/fjurado/filerep/internal/types"
)

func fixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProcessOK(t *testing.T) {
	path := fixture(t, "sales.csv",
		"fecha,producto,categoria,precio_unitario,cantidad,descuento\n2025-01-10,Laptop,Electronics,1000.00,2,10\n")

	res := New(nil).Process(context.Background(), types.ClassifiedFile{Type: types.TypeCSV, Path: path})

	assert.Equal(t, types.StatusOK, res.Status)
	assert.Equal(t, "sales.csv", res.Filename)
	assert.Equal(t, types.TypeCSV, res.Type)
	assert.NotEmpty(t, res.Metrics)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 1, res.LinesProcessed)
	assert.Zero(t, res.LinesFailed)
}

func TestProcessParseFailure(t *testing.T) {
	path := fixture(t, "users.json", "{ not json")

	res := New(nil).Process(context.Background(), types.ClassifiedFile{Type: types.TypeJSON, Path: path})

	assert.Equal(t, types.StatusError, res.Status)
	assert.Empty(t, res.Metrics, "failed results carry no metrics")
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "invalid JSON")
}

func TestProcessPartialLog(t *testing.T) {
	path := fixture(t, "app.log",
		"2025-03-01 09:15:00 [INFO] [auth] fine\nnot a log line\n")

	res := New(nil).Process(context.Background(), types.ClassifiedFile{Type: types.TypeLog, Path: path})

	assert.Equal(t, types.StatusPartial, res.Status)
	assert.NotEmpty(t, res.Metrics)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Line)
	assert.Equal(t, 1, res.LinesProcessed)
	assert.Equal(t, 1, res.LinesFailed)
}

func TestProcessMissingFile(t *testing.T) {
	res := New(nil).Process(context.Background(), types.ClassifiedFile{
		Type: types.TypeCSV,
		Path: filepath.Join(t.TempDir(), "nope.csv"),
	})

	assert.Equal(t, types.StatusError, res.Status)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "failed to read file")
}

func TestProcessRecoversParserPanic(t *testing.T) {
	orig := parse
	parse = func(types.FileType, string) parser.Result { panic("boom") }
	defer func() { parse = orig }()

	res := New(nil).Process(context.Background(), types.ClassifiedFile{Type: types.TypeCSV, Path: "sales.csv"})

	assert.Equal(t, types.StatusError, res.Status)
	assert.Empty(t, res.Metrics)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "worker process crashed: boom")
}

func TestProcessCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := New(nil).Process(ctx, types.ClassifiedFile{Type: types.TypeCSV, Path: "whatever.csv"})

	assert.Equal(t, types.StatusError, res.Status)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "processing timeout")
}
