package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sarchlab/csim/cache"
	"github.com/sarchlab/csim/report"
	"github.com/sarchlab/csim/trace"
)

type options struct {
	setBits     int
	lines       int
	blockBits   int
	tracePath   string
	configPath  string
	resultsPath string
	logLevel    string
	logFormat   string
	verbose     bool
}

// newRootCmd builds the csim command. Output goes to stdout and
// diagnostics to stderr.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "csim -s <num> -E <num> -b <num> -t <file>",
		Short: "Replay a Valgrind memory trace against an LRU cache.",
		Long: `csim simulates a set-associative cache with LRU replacement ` +
			`and reports the number of hits, misses, and evictions caused ` +
			`by the data accesses of a Valgrind memory trace.`,
		Example: "  csim -s 4 -E 1 -b 4 -t traces/yi.trace\n" +
			"  csim -v -s 8 -E 2 -b 4 -t traces/yi.trace",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := run(cmd, opts, stdout, stderr)
			if err != nil {
				_, _ = fmt.Fprintf(stderr, "csim: %v\n", err)
			}
			return err
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.IntVarP(&opts.setBits, "set-bits", "s", 0, "Number of set index bits.")
	flags.IntVarP(&opts.lines, "lines", "E", 0, "Number of lines per set.")
	flags.IntVarP(&opts.blockBits, "block-bits", "b", 0, "Number of block offset bits.")
	flags.StringVarP(&opts.tracePath, "trace", "t", "", "Trace file.")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Print one line per simulated access.")
	flags.StringVar(&opts.configPath, "config", "", "Path to a cache config JSON file.")
	flags.StringVar(&opts.resultsPath, "results", report.DefaultResultsFile,
		"File to store the counters in; empty disables it.")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error).")
	flags.StringVar(&opts.logFormat, "log-format", "console", "Log format (console, json).")

	return cmd
}

// resolveConfig merges the config file with the flags given on the command
// line. Without a config file every geometry flag is required.
func resolveConfig(cmd *cobra.Command, opts *options) (cache.Config, error) {
	config := cache.DefaultConfig()

	if opts.configPath != "" {
		var err error
		config, err = cache.LoadConfig(opts.configPath)
		if err != nil {
			return cache.Config{}, err
		}
	}

	geometry := []struct {
		flag  string
		field string
		value int
		dst   *int
	}{
		{"set-bits", "set_bits", opts.setBits, &config.SetBits},
		{"lines", "associativity", opts.lines, &config.Associativity},
		{"block-bits", "block_bits", opts.blockBits, &config.BlockBits},
	}

	for _, g := range geometry {
		switch {
		case cmd.Flags().Changed(g.flag):
			*g.dst = g.value
		case opts.configPath == "":
			return cache.Config{}, &cache.ConfigError{
				Field:  g.field,
				Value:  g.value,
				Reason: "missing required command line argument -" + cmd.Flags().Lookup(g.flag).Shorthand,
			}
		}
	}

	if err := config.Validate(); err != nil {
		return cache.Config{}, err
	}

	if opts.tracePath == "" {
		return cache.Config{}, &cache.ConfigError{
			Field:  "trace",
			Reason: "missing required command line argument -t",
		}
	}

	return config, nil
}

func newLogger(w io.Writer, level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var encoder zapcore.Encoder
	switch format {
	case "console":
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	case "json":
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), lvl)), nil
}

func run(cmd *cobra.Command, opts *options, stdout, stderr io.Writer) error {
	logger, err := newLogger(stderr, opts.logLevel, opts.logFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	config, err := resolveConfig(cmd, opts)
	if err != nil {
		_ = cmd.Usage()
		return err
	}

	simOpts := []cache.SimulatorOption{}
	if opts.verbose {
		simOpts = append(simOpts, cache.WithHook(report.NewVerboseHook(stdout)))
	}
	if logger.Core().Enabled(zap.DebugLevel) {
		simOpts = append(simOpts, cache.WithHook(report.NewLogHook(logger)))
	}

	simulator, err := cache.NewSimulator(config, simOpts...)
	if err != nil {
		return err
	}

	logger.Info("starting simulation",
		zap.Int("sets", config.NumSets()),
		zap.Int("associativity", config.Associativity),
		zap.Uint64("block_size", config.BlockSize()),
		zap.String("trace", opts.tracePath),
	)

	replayer := trace.NewReplayer(simulator,
		trace.WithSkipHandler(func(perr *trace.ParseError) {
			logger.Warn("skipping trace line",
				zap.Int("line", perr.Line),
				zap.String("reason", perr.Reason),
			)
		}),
	)

	summary, err := replayer.ReplayFile(opts.tracePath)
	if err != nil {
		return err
	}

	stats := simulator.Stats()
	logger.Info("simulation finished",
		zap.Uint64("records", summary.Records()),
		zap.Uint64("skipped", summary.Skipped),
		zap.Uint64("hits", stats.Hits),
		zap.Uint64("misses", stats.Misses),
		zap.Uint64("evictions", stats.Evictions),
	)

	if err := report.PrintSummary(stdout, stats); err != nil {
		return err
	}

	if opts.resultsPath != "" {
		return report.WriteResults(opts.resultsPath, stats)
	}

	return nil
}
