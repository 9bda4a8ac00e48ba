package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/fjurado/filerep/internal/cache"
	"github.com/fjurado/filerep/internal/config"
	"github.com/fjurado/filerep/internal/display"
	"github.com/fjurado/filerep/internal/engine"
	"github.com/fjurado/filerep/internal/logger"
	"github.com/fjurado/filerep/internal/report"
	"github.com/fjurado/filerep/internal/server"
	"github.com/fjurado/filerep/internal/types"
	"github.com/fjurado/filerep/internal/version"
	"github.com/fjurado/filerep/internal/watch"
)

func main() {
	app := &cli.App{
		Name:                   "filerep",
		Usage:                  "Concurrent processing and reporting for structured data files",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Commands: []*cli.Command{
			processCommand(),
			serveCommand(),
			{
				Name:  "version",
				Usage: "Print detailed version information",
				Action: func(*cli.Context) error {
					fmt.Println(version.FullInfo())
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func processCommand() *cli.Command {
	return &cli.Command{
		Name:      "process",
		Usage:     "Process a directory or explicit files and write a report",
		ArgsUsage: "<directory|file...>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Options file path (.toml or .kdl)",
			},
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Execution mode: sequential or parallel",
			},
			&cli.BoolFlag{
				Name:    "benchmark",
				Aliases: []string{"b"},
				Usage:   "Run both modes and compare",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Maximum concurrent workers",
			},
			&cli.IntFlag{
				Name:  "timeout",
				Usage: "Per-file timeout in milliseconds",
			},
			&cli.IntFlag{
				Name:  "retries",
				Usage: "Maximum attempts per file",
			},
			&cli.IntFlag{
				Name:  "retry-delay",
				Usage: "Base retry delay in milliseconds",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory for generated text reports",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Disable the progress bar",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the report as JSON to stdout instead of text",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Only process files matching glob patterns (e.g. --include 'sales/**/*.csv')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Skip files matching glob patterns",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Keep running and reprocess the directory on changes",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: runProcess,
	}
}

func runProcess(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("expected a directory or at least one file argument")
	}

	opts, err := buildOptions(c)
	if err != nil {
		return err
	}
	log, err := logger.New(opts.Verbose)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	eng, err := engine.New(opts, log, display.NewConsoleSink())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.Bool("watch") {
		if c.NArg() != 1 {
			return errors.New("--watch requires a single directory argument")
		}
		return runWatch(ctx, c, eng, log, opts)
	}

	var rep *types.ExecutionReport
	if c.NArg() == 1 {
		rep, err = eng.Process(ctx, c.Args().First())
	} else {
		rep, err = eng.ProcessFiles(ctx, c.Args().Slice())
	}
	if err != nil {
		return err
	}

	return emit(c, rep, opts, log)
}

func runWatch(ctx context.Context, c *cli.Context, eng *engine.Engine, log *zap.Logger, opts config.Options) error {
	root := c.Args().First()
	w := watch.New(eng, log, 0)
	err := w.Run(ctx, root, func(rep *types.ExecutionReport) {
		if emitErr := emit(c, rep, opts, log); emitErr != nil {
			log.Warn("failed to emit report", zap.Error(emitErr))
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// emit writes the report as JSON to stdout or as a text file in the output
// directory, per flags.
func emit(c *cli.Context, rep *types.ExecutionReport, opts config.Options, log *zap.Logger) error {
	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	path, err := report.NewFormatter().GenerateAndSave(rep, opts.OutputDir)
	if err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", path)
	log.Info("report written", zap.String("path", path))
	return nil
}

// buildOptions layers defaults, the optional config file, and CLI flags, in
// that order.
func buildOptions(c *cli.Context) (config.Options, error) {
	opts := config.Default()

	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return opts, err
		}
		opts = loaded
	}

	if c.IsSet("mode") {
		opts.Mode = types.Mode(c.String("mode"))
	}
	if c.IsSet("benchmark") {
		opts.Benchmark = c.Bool("benchmark")
	}
	if c.IsSet("workers") {
		opts.MaxWorkers = c.Int("workers")
	}
	if c.IsSet("timeout") {
		opts.TimeoutMS = c.Int("timeout")
	}
	if c.IsSet("retries") {
		opts.MaxRetries = c.Int("retries")
	}
	if c.IsSet("retry-delay") {
		opts.RetryDelayMS = c.Int("retry-delay")
	}
	if c.IsSet("output") {
		opts.OutputDir = c.String("output")
	}
	if c.Bool("no-progress") {
		opts.ShowProgress = false
	}
	if c.Bool("verbose") {
		opts.Verbose = true
	}
	if include := c.StringSlice("include"); len(include) > 0 {
		opts.Include = include
	}
	if exclude := c.StringSlice("exclude"); len(exclude) > 0 {
		opts.Exclude = append(opts.Exclude, exclude...)
	}

	return opts, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP upload-and-report service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address",
				Value: ":8080",
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "How long cached reports stay retrievable",
				Value: cache.DefaultTTL,
			},
			&cli.DurationFlag{
				Name:  "sweep",
				Usage: "Interval between cache sweeps",
				Value: cache.DefaultSweepInterval,
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Maximum concurrent workers",
			},
			&cli.IntFlag{
				Name:  "timeout",
				Usage: "Per-file timeout in milliseconds",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	opts := config.Default()
	opts.ShowProgress = false
	if c.IsSet("workers") {
		opts.MaxWorkers = c.Int("workers")
	}
	if c.IsSet("timeout") {
		opts.TimeoutMS = c.Int("timeout")
	}
	opts.Verbose = c.Bool("verbose")

	log, err := logger.New(opts.Verbose)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	eng, err := engine.New(opts, log, nil)
	if err != nil {
		return err
	}

	reports := cache.New(c.Duration("ttl"), c.Duration("sweep"))
	defer reports.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(eng, reports, log)
	if err := srv.ListenAndServe(ctx, c.String("addr")); err != nil {
		return err
	}
	log.Info("server stopped", zap.Duration("cache_ttl", c.Duration("ttl")))
	return nil
}
