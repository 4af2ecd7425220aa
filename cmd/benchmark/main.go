// Command benchmark replays the built-in trace benchmarks against the cache
// simulator.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	--csv      Output results in CSV format (default: human-readable)
//	--json     Output results as JSON
//	-v         Print every simulated access
//	--only     Run only the named benchmarks
//
// Example:
//
//	# Run all benchmarks with human-readable output
//	go run ./cmd/benchmark
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark --csv > results.csv
package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/sarchlab/csim/benchmarks"
)

func main() {
	if err := newBenchmarkCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newBenchmarkCmd(stdout io.Writer) *cobra.Command {
	var (
		csvOutput  bool
		jsonOutput bool
		verbose    bool
		only       []string
	)

	cmd := &cobra.Command{
		Use:          "benchmark",
		Short:        "Replay the built-in trace benchmarks.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			config := benchmarks.DefaultConfig()
			config.Output = stdout
			config.Verbose = verbose

			harness := benchmarks.NewHarness(config)
			for _, b := range benchmarks.GetTraceBenchmarks() {
				if len(only) == 0 || slices.Contains(only, b.Name) {
					harness.AddBenchmark(b)
				}
			}

			results, err := harness.RunAll()
			if err != nil {
				return err
			}

			if len(results) == 0 {
				return fmt.Errorf("no benchmark matches %v", only)
			}

			switch {
			case jsonOutput:
				return harness.WriteJSON(results)
			case csvOutput:
				harness.PrintCSV(results)
			default:
				harness.PrintResults(results)
			}

			return nil
		},
	}

	cmd.SetOut(stdout)

	flags := cmd.Flags()
	flags.BoolVar(&csvOutput, "csv", false, "Output results in CSV format")
	flags.BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Print every simulated access")
	flags.StringSliceVar(&only, "only", nil, "Run only the named benchmarks")
	cmd.MarkFlagsMutuallyExclusive("csv", "json")

	return cmd
}
