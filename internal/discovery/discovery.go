// Package discovery normalizes an input (directory, single file, or explicit
// file list) into classified (type, path) pairs. Extension is the sole
// classifier; content is never sniffed. Unsupported inputs are reported as
// skipped so a run never aborts on a stray file.
package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/fjurado/filerep/internal/types"
)

// ErrNoFiles is returned when a directory walk finds no supported files.
var ErrNoFiles = errors.New("no supported files found")

// Result is the normalized input list plus everything discovery refused.
type Result struct {
	Files     []types.ClassifiedFile
	Skipped   []types.SkippedInput
	Directory string // set when the input was a directory
}

// Scanner walks inputs applying optional include/exclude glob patterns.
// Patterns are doublestar globs matched against slash-normalized paths
// relative to the walk root.
type Scanner struct {
	include []string
	exclude []string
	log     *zap.Logger
}

// NewScanner creates a scanner. A nil logger is replaced with a no-op.
func NewScanner(include, exclude []string, log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{include: include, exclude: exclude, log: log}
}

// Directory recursively walks root and classifies every regular file with a
// supported extension. Results are sorted by (type, path) so runs over the
// same tree are deterministic.
func (s *Scanner) Directory(root string) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	res := &Result{Directory: root}

	// Track resolved directories to break symlink cycles.
	visited := make(map[string]bool)

	err = filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			s.log.Debug("walk error, continuing", zap.String("path", path), zap.Error(walkErr))
			return nil
		}

		if info.IsDir() {
			real, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil
			}
			if visited[real] {
				return filepath.SkipDir
			}
			visited[real] = true
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		normalized := filepath.ToSlash(rel)
		if s.excluded(normalized) || !s.included(normalized) {
			return nil
		}

		ft, ok := types.TypeForPath(path)
		if !ok {
			return nil
		}
		res.Files = append(res.Files, types.ClassifiedFile{Type: ft, Path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", root, err)
	}

	sort.Slice(res.Files, func(i, j int) bool {
		if res.Files[i].Type != res.Files[j].Type {
			return res.Files[i].Type < res.Files[j].Type
		}
		return res.Files[i].Path < res.Files[j].Path
	})

	if len(res.Files) == 0 && len(res.Skipped) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, root)
	}

	s.log.Debug("directory scan complete",
		zap.String("root", root),
		zap.Int("files", len(res.Files)),
		zap.Int("skipped", len(res.Skipped)))
	return res, nil
}

// Files classifies an explicit path list. Unsupported or unreadable entries
// land in Skipped with a per-path reason; the run proceeds regardless.
func (s *Scanner) Files(paths []string) *Result {
	res := &Result{}
	for _, path := range paths {
		ft, reason := classifySingle(path)
		if reason != "" {
			res.Skipped = append(res.Skipped, types.SkippedInput{Path: path, Reason: reason})
			continue
		}
		res.Files = append(res.Files, types.ClassifiedFile{Type: ft, Path: path})
	}
	return res
}

// File classifies a single file path.
func (s *Scanner) File(path string) *Result {
	return s.Files([]string{path})
}

func classifySingle(path string) (types.FileType, string) {
	ft, ok := types.TypeForPath(path)
	if !ok {
		return types.TypeUnknown, fmt.Sprintf("unsupported file type %q", filepath.Ext(path))
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.TypeUnknown, "file does not exist"
		}
		return types.TypeUnknown, fmt.Sprintf("cannot access file: %v", err)
	}
	if !info.Mode().IsRegular() {
		return types.TypeUnknown, "not a regular file"
	}
	return ft, ""
}

func (s *Scanner) excluded(path string) bool {
	for _, pattern := range s.exclude {
		matched, err := doublestar.Match(pattern, path)
		if err != nil {
			continue // a bad pattern must not break scanning
		}
		if matched {
			return true
		}
	}
	return false
}

func (s *Scanner) included(path string) bool {
	if len(s.include) == 0 {
		return true
	}
	for _, pattern := range s.include {
		matched, err := doublestar.Match(pattern, path)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
