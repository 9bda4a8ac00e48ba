// Package config defines the engine options struct, its defaults and clamp
// rules, and loading of option files in TOML or KDL form.
package config

import (
	"fmt"
	"runtime"

	"github.com/fjurado/filerep/internal/types"
)

// Default knob values. The web front-end relies on the timeout floor, so the
// clamp lives here rather than in the server.
const (
	DefaultTimeoutMS    = 30000
	DefaultMaxWorkers   = 8
	DefaultMaxRetries   = 3
	DefaultRetryDelayMS = 1000
	DefaultOutputDir    = "output"

	MinTimeoutMS = 1000
)

// Options is the single configuration value consumed by the engine facade.
// No other process-global state is read by the core.
type Options struct {
	Mode         types.Mode
	Benchmark    bool
	TimeoutMS    int
	MaxWorkers   int
	MaxRetries   int
	RetryDelayMS int
	OutputDir    string
	ShowProgress bool
	Verbose      bool

	// Optional doublestar patterns applied during directory discovery,
	// relative to the walk root. Empty means no pattern filtering.
	Include []string
	Exclude []string
}

// Default returns the options documented in the engine's public surface.
func Default() Options {
	return Options{
		Mode:         types.ModeParallel,
		TimeoutMS:    DefaultTimeoutMS,
		MaxWorkers:   DefaultMaxWorkers,
		MaxRetries:   DefaultMaxRetries,
		RetryDelayMS: DefaultRetryDelayMS,
		OutputDir:    DefaultOutputDir,
		ShowProgress: true,
	}
}

// EffectiveMode resolves the benchmark override.
func (o Options) EffectiveMode() types.Mode {
	if o.Benchmark {
		return types.ModeBenchmark
	}
	return o.Mode
}

// Normalize applies the clamp rules: worker counts are bounded by
// [1, 2×NumCPU] and the per-file timeout never drops below one second.
func (o *Options) Normalize() {
	maxPool := 2 * runtime.NumCPU()
	if o.MaxWorkers < 1 {
		o.MaxWorkers = 1
	}
	if o.MaxWorkers > maxPool {
		o.MaxWorkers = maxPool
	}
	if o.TimeoutMS < MinTimeoutMS {
		o.TimeoutMS = MinTimeoutMS
	}
	if o.MaxRetries < 1 {
		o.MaxRetries = 1
	}
	if o.RetryDelayMS < 0 {
		o.RetryDelayMS = DefaultRetryDelayMS
	}
	if o.OutputDir == "" {
		o.OutputDir = DefaultOutputDir
	}
	if o.Mode == "" {
		o.Mode = types.ModeParallel
	}
}

// Validate rejects values Normalize cannot repair.
func (o Options) Validate() error {
	switch o.Mode {
	case types.ModeSequential, types.ModeParallel:
	default:
		return fmt.Errorf("invalid mode %q: must be %q or %q", o.Mode, types.ModeSequential, types.ModeParallel)
	}
	return nil
}
