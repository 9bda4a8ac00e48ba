package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hbollon/go-edlib"
	toml "github.com/pelletier/go-toml/v2"
	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/fjurado/filerep/internal/types"
)

// knownKeys is the full recognized option set. File loading rejects anything
// outside it so typos fail loudly instead of silently using a default.
var knownKeys = []string{
	"mode", "benchmark", "timeout_ms", "max_workers", "max_retries",
	"retry_delay_ms", "output_dir", "show_progress", "verbose",
	"include", "exclude",
}

// Load reads an option file, dispatching on extension: .toml or .kdl.
// Returned options start from Default and are normalized.
func Load(path string) (Options, error) {
	opts := Default()

	content, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = parseTOML(content, &opts)
	case ".kdl":
		err = parseKDL(content, &opts)
	default:
		err = fmt.Errorf("unsupported config format %q (want .toml or .kdl)", filepath.Ext(path))
	}
	if err != nil {
		return opts, err
	}

	opts.Normalize()
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func parseTOML(content []byte, opts *Options) error {
	raw := map[string]any{}
	if err := toml.Unmarshal(content, &raw); err != nil {
		return fmt.Errorf("failed to parse TOML config: %w", err)
	}
	for key, val := range raw {
		if err := applyKey(opts, key, val); err != nil {
			return err
		}
	}
	return nil
}

func parseKDL(content []byte, opts *Options) error {
	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return fmt.Errorf("failed to parse KDL config: %w", err)
	}
	for _, n := range doc.Nodes {
		name := nodeName(n)
		switch name {
		case "include", "exclude":
			if err := applyKey(opts, name, collectStringArgs(n)); err != nil {
				return err
			}
		default:
			if len(n.Arguments) == 0 {
				return unknownKeyError(name)
			}
			if err := applyKey(opts, name, n.Arguments[0].Value); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyKey assigns one option from a loosely typed config value. TOML yields
// int64/float64/string/bool/[]any; KDL arguments yield the same scalar set.
func applyKey(opts *Options, key string, val any) error {
	switch key {
	case "mode":
		s, ok := val.(string)
		if !ok {
			return typeError(key, "string", val)
		}
		opts.Mode = types.Mode(s)
	case "benchmark":
		return assignBool(&opts.Benchmark, key, val)
	case "timeout_ms":
		return assignInt(&opts.TimeoutMS, key, val)
	case "max_workers":
		return assignInt(&opts.MaxWorkers, key, val)
	case "max_retries":
		return assignInt(&opts.MaxRetries, key, val)
	case "retry_delay_ms":
		return assignInt(&opts.RetryDelayMS, key, val)
	case "output_dir":
		s, ok := val.(string)
		if !ok {
			return typeError(key, "string", val)
		}
		opts.OutputDir = s
	case "show_progress":
		return assignBool(&opts.ShowProgress, key, val)
	case "verbose":
		return assignBool(&opts.Verbose, key, val)
	case "include":
		pats, err := stringSlice(key, val)
		if err != nil {
			return err
		}
		opts.Include = pats
	case "exclude":
		pats, err := stringSlice(key, val)
		if err != nil {
			return err
		}
		opts.Exclude = pats
	default:
		return unknownKeyError(key)
	}
	return nil
}

func assignInt(dst *int, key string, val any) error {
	switch v := val.(type) {
	case int64:
		*dst = int(v)
	case int:
		*dst = v
	case float64:
		*dst = int(v)
	default:
		return typeError(key, "integer", val)
	}
	return nil
}

func assignBool(dst *bool, key string, val any) error {
	b, ok := val.(bool)
	if !ok {
		return typeError(key, "boolean", val)
	}
	*dst = b
	return nil
}

func stringSlice(key string, val any) ([]string, error) {
	switch v := val.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, typeError(key, "string list", val)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, typeError(key, "string list", val)
	}
}

func typeError(key, want string, got any) error {
	return fmt.Errorf("invalid value for option %q: expected %s, got %T", key, want, got)
}

// unknownKeyError builds the rejection message, attaching a "did you mean"
// hint when a known key is close by Levenshtein similarity.
func unknownKeyError(key string) error {
	best := ""
	var bestScore float32
	for _, known := range knownKeys {
		score, err := edlib.StringsSimilarity(key, known, edlib.Levenshtein)
		if err != nil {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = known
		}
	}
	if bestScore >= 0.6 {
		return fmt.Errorf("unknown option %q (did you mean %q?)", key, best)
	}
	return fmt.Errorf("unknown option %q", key)
}

// KDL document helpers.

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func collectStringArgs(n *document.Node) []string {
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
