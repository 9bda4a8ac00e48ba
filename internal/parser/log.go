package parser

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/fjurado/filerep/internal/types"
)

// logLineRe matches "YYYY-MM-DD  HH:MM:SS  [LEVEL]  [COMPONENT]  message".
// The hour range is validated separately; \d{2} alone would admit 24+.
var logLineRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\s+(\d{2}:\d{2}:\d{2})\s+\[(DEBUG|INFO|WARN|ERROR|FATAL)\]\s+\[([^\]]+)\]\s+(.+)$`)

// LogEntry is one matched log line.
type LogEntry struct {
	Timestamp time.Time
	Level     string
	Component string
	Message   string
	Hour      int
}

// ParseLog reads a line-oriented log. Unlike CSV, bad lines do not poison the
// file: matched lines are kept and failures are collected per line. With at
// least one match the result is ok or partial; with none it is an error
// carrying the first failure reason.
func ParseLog(path string) Result {
	f, err := os.Open(path)
	if err != nil {
		return Fail(fmt.Errorf("failed to read file %s: %w", path, err))
	}
	defer f.Close()

	var entries []LogEntry
	var lineErrors []types.FileError

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		entry, reason := parseLogLine(line)
		if reason != "" {
			lineErrors = append(lineErrors, types.FileError{Line: lineNo, Message: reason})
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return Fail(fmt.Errorf("failed to read file %s: %w", path, err))
	}

	if len(entries) == 0 {
		if len(lineErrors) > 0 {
			return Fail(fmt.Errorf("no valid log entries: %s", lineErrors[0].String()))
		}
		return Fail(fmt.Errorf("log file is empty"))
	}
	if len(lineErrors) > 0 {
		return Partial(entries, lineErrors)
	}
	return OK(entries)
}

func parseLogLine(line string) (LogEntry, string) {
	m := logLineRe.FindStringSubmatch(line)
	if m == nil {
		return LogEntry{}, "line does not match expected log format"
	}

	hour, err := strconv.Atoi(m[2][:2])
	if err != nil || hour > 23 {
		return LogEntry{}, fmt.Sprintf("invalid hour %q", m[2][:2])
	}

	ts, err := time.Parse("2006-01-02 15:04:05", m[1]+" "+m[2])
	if err != nil {
		return LogEntry{}, fmt.Sprintf("invalid timestamp %q", m[1]+" "+m[2])
	}

	return LogEntry{
		Timestamp: ts,
		Level:     m[3],
		Component: m[4],
		Message:   m[5],
		Hour:      hour,
	}, ""
}
