// Package benchmarks provides trace benchmarks and a harness that replays
// them against the cache simulator.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sarchlab/csim/cache"
	"github.com/sarchlab/csim/report"
	"github.com/sarchlab/csim/trace"
)

// BenchmarkResult holds the counters of a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark exercises
	Description string `json:"description"`

	// Config is the cache geometry the trace was replayed against
	Config cache.Config `json:"config"`

	// Records is the number of trace lines read
	Records uint64 `json:"records"`

	// Skipped is the number of malformed trace lines
	Skipped uint64 `json:"skipped"`

	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`

	// MissRate is misses over accesses
	MissRate float64 `json:"miss_rate"`

	// WallTime is the actual time taken to replay the trace
	WallTime time.Duration `json:"wall_time_ns"`
}

// Stats returns the counters of the result.
func (r BenchmarkResult) Stats() cache.Statistics {
	return cache.Statistics{
		Hits:      r.Hits,
		Misses:    r.Misses,
		Evictions: r.Evictions,
	}
}

// Benchmark defines a single trace to replay.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark exercises
	Description string

	// Config is the cache geometry
	Config cache.Config

	// Trace is the trace text in Valgrind format
	Trace string

	// Expected holds the counters the replay must produce, if known
	Expected *cache.Statistics
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Output is where results are printed
	Output io.Writer

	// Verbose prints every simulated access while replaying
	Verbose bool
}

// DefaultConfig returns the default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Output:  os.Stdout,
		Verbose: false,
	}
}

// Harness runs benchmarks and collects their results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll runs every benchmark. It stops at the first benchmark that cannot
// be run.
func (h *Harness) RunAll() ([]BenchmarkResult, error) {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result, err := h.Run(bench)
		if err != nil {
			return results, fmt.Errorf("benchmark %s: %w", bench.Name, err)
		}

		results = append(results, result)
	}

	return results, nil
}

// Run replays one benchmark on a fresh simulator.
func (h *Harness) Run(bench Benchmark) (BenchmarkResult, error) {
	opts := []cache.SimulatorOption{}
	if h.config.Verbose {
		opts = append(opts, cache.WithHook(report.NewVerboseHook(h.config.Output)))
	}

	simulator, err := cache.NewSimulator(bench.Config, opts...)
	if err != nil {
		return BenchmarkResult{}, err
	}

	start := time.Now()
	summary, err := trace.NewReplayer(simulator).Replay(
		trace.NewReader(strings.NewReader(bench.Trace)))
	wallTime := time.Since(start)

	if err != nil {
		return BenchmarkResult{}, err
	}

	stats := simulator.Stats()
	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
		Config:      bench.Config,
		Records:     summary.Records(),
		Skipped:     summary.Skipped,
		Hits:        stats.Hits,
		Misses:      stats.Misses,
		Evictions:   stats.Evictions,
		WallTime:    wallTime,
	}

	if accesses := stats.Accesses(); accesses > 0 {
		result.MissRate = float64(stats.Misses) / float64(accesses)
	}

	return result, nil
}

// PrintResults prints results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== csim Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Geometry:    s=%d E=%d b=%d\n",
			r.Config.SetBits, r.Config.Associativity, r.Config.BlockBits)
		_, _ = fmt.Fprintf(h.config.Output, "  Records:     %d (%d skipped)\n",
			r.Records, r.Skipped)
		_, _ = fmt.Fprintf(h.config.Output, "  Hits:        %d\n", r.Hits)
		_, _ = fmt.Fprintf(h.config.Output, "  Misses:      %d\n", r.Misses)
		_, _ = fmt.Fprintf(h.config.Output, "  Evictions:   %d\n", r.Evictions)
		_, _ = fmt.Fprintf(h.config.Output, "  Miss Rate:   %.1f%%\n", 100*r.MissRate)
		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time:   %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV prints results in CSV format.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,set_bits,associativity,block_bits,records,skipped,hits,misses,evictions,miss_rate")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%d,%d,%d,%d,%d,%.4f\n",
			r.Name,
			r.Config.SetBits,
			r.Config.Associativity,
			r.Config.BlockBits,
			r.Records,
			r.Skipped,
			r.Hits,
			r.Misses,
			r.Evictions,
			r.MissRate,
		)
	}
}

// WriteJSON writes results as an indented JSON array.
func (h *Harness) WriteJSON(results []BenchmarkResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize benchmark results: %w", err)
	}

	if _, err := h.config.Output.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write benchmark results: %w", err)
	}

	return nil
}
