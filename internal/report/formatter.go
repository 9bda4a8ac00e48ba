// Package report renders an ExecutionReport as a fixed-width (80 column)
// human-readable text file. The engine does not depend on this package; it
// is a consumer of the report like any other.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fjurado/filerep/internal/types"
)

const lineWidth = 80

// Formatter writes text reports into an output directory.
type Formatter struct{}

// NewFormatter creates a formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// GenerateAndSave renders the report and writes it to outputDir with a
// timestamped filename, returning the written path.
func (f *Formatter) GenerateAndSave(report *types.ExecutionReport, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	path := filepath.Join(outputDir, fmt.Sprintf("report_%s.txt", report.StartTime.Format("20060102_150405")))
	if err := os.WriteFile(path, []byte(f.Render(report)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// Render produces the full text document.
func (f *Formatter) Render(report *types.ExecutionReport) string {
	var b strings.Builder

	f.header(&b)
	f.metadata(&b, report)
	f.summary(&b, report)
	for _, ft := range types.SupportedTypes {
		f.typeBlock(&b, report, ft)
	}
	f.performance(&b, report)
	f.errorsSection(&b, report)
	f.footer(&b)

	return b.String()
}

func rule(b *strings.Builder, ch string) {
	b.WriteString(strings.Repeat(ch, lineWidth))
	b.WriteByte('\n')
}

func center(b *strings.Builder, text string) {
	pad := (lineWidth - len(text)) / 2
	if pad < 0 {
		pad = 0
	}
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(text)
	b.WriteByte('\n')
}

func section(b *strings.Builder, title string) {
	b.WriteByte('\n')
	b.WriteString(title)
	b.WriteByte('\n')
	rule(b, "-")
}

func (f *Formatter) header(b *strings.Builder) {
	rule(b, "=")
	center(b, "FILE PROCESSING REPORT")
	rule(b, "=")
}

func (f *Formatter) metadata(b *strings.Builder, r *types.ExecutionReport) {
	section(b, "METADATA")
	fmt.Fprintf(b, "  Started:   %s\n", r.StartTime.Format(time.RFC3339))
	fmt.Fprintf(b, "  Mode:      %s\n", r.Mode)
	if r.Directory != "" {
		fmt.Fprintf(b, "  Directory: %s\n", r.Directory)
	}
}

func (f *Formatter) summary(b *strings.Builder, r *types.ExecutionReport) {
	section(b, "EXECUTIVE SUMMARY")
	fmt.Fprintf(b, "  Files processed: %d (csv=%d json=%d log=%d xml=%d)\n",
		r.TotalFiles, r.CSVCount, r.JSONCount, r.LogCount, r.XMLCount)
	fmt.Fprintf(b, "  Succeeded: %d   Failed: %d   Partial: %d\n",
		r.SuccessCount, r.ErrorCount, r.PartialCount)
	fmt.Fprintf(b, "  Total duration: %d ms\n", r.TotalDurationMS)
}

func (f *Formatter) typeBlock(b *strings.Builder, r *types.ExecutionReport, ft types.FileType) {
	var results []types.FileResult
	for _, res := range r.Results {
		if res.Type == ft && len(res.Metrics) > 0 {
			results = append(results, res)
		}
	}
	if len(results) == 0 {
		return
	}

	section(b, fmt.Sprintf("%s METRICS", strings.ToUpper(string(ft))))
	for _, res := range results {
		fmt.Fprintf(b, "  %s [%s, %d ms]\n", res.Filename, res.Status, res.DurationMS)
		keys := make([]string, 0, len(res.Metrics))
		for k := range res.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			for _, line := range wrap(fmt.Sprintf("    %-24s %v", k, res.Metrics[k]), lineWidth) {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
	}
}

func (f *Formatter) performance(b *strings.Builder, r *types.ExecutionReport) {
	section(b, "PERFORMANCE ANALYSIS")
	if r.TotalFiles > 0 {
		fmt.Fprintf(b, "  Average per file: %.2f ms\n", float64(r.TotalDurationMS)/float64(r.TotalFiles))
	}
	if bd := r.Benchmark; bd != nil {
		fmt.Fprintf(b, "  Sequential: %d ms (%d ok, %d failed, %d KB)\n",
			bd.Sequential.DurationMS, bd.Sequential.SuccessCount, bd.Sequential.ErrorCount, bd.Sequential.MemoryKB)
		fmt.Fprintf(b, "  Parallel:   %d ms (%d ok, %d failed, %d KB)\n",
			bd.Parallel.DurationMS, bd.Parallel.SuccessCount, bd.Parallel.ErrorCount, bd.Parallel.MemoryKB)
		fmt.Fprintf(b, "  Speedup: %.2fx   Time saved: %d ms (%.1f%%)   Faster: %s\n",
			bd.Comparison.SpeedupFactor, bd.Comparison.TimeSavedMS,
			bd.Comparison.TimeSavedPercent, bd.Comparison.FasterMode)
	}
}

func (f *Formatter) errorsSection(b *strings.Builder, r *types.ExecutionReport) {
	section(b, "ERRORS & WARNINGS")
	any := false
	for _, res := range r.Results {
		if len(res.Errors) == 0 {
			continue
		}
		any = true
		first := res.Errors[0].String()
		for _, line := range wrap(fmt.Sprintf("  %s: %s", res.Filename, first), lineWidth) {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	if !any {
		b.WriteString("  none\n")
	}
}

func (f *Formatter) footer(b *strings.Builder) {
	b.WriteByte('\n')
	rule(b, "=")
	center(b, fmt.Sprintf("generated %s", time.Now().Format(time.RFC3339)))
	rule(b, "=")
}

// wrap breaks a line at width, indenting continuations to match the
// original leading whitespace plus two.
func wrap(line string, width int) []string {
	if len(line) <= width {
		return []string{line}
	}
	indent := len(line) - len(strings.TrimLeft(line, " "))
	cont := strings.Repeat(" ", indent+2)

	var out []string
	for len(line) > width {
		cut := strings.LastIndex(line[:width], " ")
		if cut <= indent {
			cut = width
		}
		out = append(out, line[:cut])
		line = cont + strings.TrimLeft(line[cut:], " ")
	}
	out = append(out, line)
	return out
}
