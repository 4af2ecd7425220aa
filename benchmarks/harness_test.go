package benchmarks_test

import (
	"bytes"
	"encoding/json"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/csim/benchmarks"
	"github.com/sarchlab/csim/cache"
	"github.com/sarchlab/csim/trace"
)

var _ = Describe("Trace Benchmarks", func() {
	var (
		output  *bytes.Buffer
		harness *benchmarks.Harness
	)

	BeforeEach(func() {
		output = new(bytes.Buffer)
		harness = benchmarks.NewHarness(benchmarks.HarnessConfig{Output: output})
	})

	for _, bench := range benchmarks.GetTraceBenchmarks() {
		It("should keep the counter identities for "+bench.Name, func() {
			result, err := harness.Run(bench)
			Expect(err).NotTo(HaveOccurred())

			stats := result.Stats()
			Expect(stats.Evictions).To(BeNumerically("<=", stats.Misses))
			Expect(result.Skipped).To(BeZero())

			var summary trace.Summary
			replayer := trace.NewReplayer(&nopAccessor{})
			r := trace.NewReader(strings.NewReader(bench.Trace))
			summary, err = replayer.Replay(r)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Accesses()).To(Equal(summary.Accesses()))

			if bench.Expected != nil {
				Expect(stats).To(Equal(*bench.Expected))
			}
		})
	}

	It("should run every benchmark in order", func() {
		harness.AddBenchmarks(benchmarks.GetTraceBenchmarks())

		results, err := harness.RunAll()
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(len(benchmarks.GetTraceBenchmarks())))
		Expect(results[0].Name).To(Equal("direct_mapped_conflict"))
	})

	It("should stop at a benchmark with an invalid geometry", func() {
		harness.AddBenchmark(benchmarks.Benchmark{
			Name:   "broken",
			Config: cache.Config{SetBits: 1, Associativity: 0},
		})

		_, err := harness.RunAll()
		Expect(err).To(MatchError(ContainSubstring("benchmark broken")))
	})

	It("should miss more on the transpose than on the sweep", func() {
		transpose, err := harness.Run(benchmarks.GetTraceBenchmarks()[7])
		Expect(err).NotTo(HaveOccurred())

		sweep, err := harness.Run(benchmarks.GetTraceBenchmarks()[2])
		Expect(err).NotTo(HaveOccurred())

		Expect(transpose.MissRate).To(BeNumerically(">", sweep.MissRate))
		Expect(transpose.Records).To(Equal(uint64(4 * 32 * 32)))
	})

	Describe("output", func() {
		var results []benchmarks.BenchmarkResult

		BeforeEach(func() {
			harness.AddBenchmark(benchmarks.GetTraceBenchmarks()[0])

			var err error
			results, err = harness.RunAll()
			Expect(err).NotTo(HaveOccurred())
		})

		It("should print readable results", func() {
			harness.PrintResults(results)
			Expect(output.String()).To(ContainSubstring("Benchmark: direct_mapped_conflict"))
			Expect(output.String()).To(ContainSubstring("Evictions:   2"))
		})

		It("should print CSV", func() {
			harness.PrintCSV(results)
			lines := strings.Split(strings.TrimSpace(output.String()), "\n")
			Expect(lines).To(HaveLen(2))
			Expect(lines[1]).To(HavePrefix("direct_mapped_conflict,1,1,0,3,0,0,3,2,"))
		})

		It("should write JSON", func() {
			Expect(harness.WriteJSON(results)).To(Succeed())

			var decoded []benchmarks.BenchmarkResult
			Expect(json.Unmarshal(output.Bytes(), &decoded)).To(Succeed())
			Expect(decoded).To(HaveLen(1))
			Expect(decoded[0].Stats()).To(Equal(results[0].Stats()))
			Expect(decoded[0].Config).To(Equal(results[0].Config))
		})
	})

	It("should print accesses in verbose mode", func() {
		verbose := benchmarks.NewHarness(benchmarks.HarnessConfig{
			Output:  output,
			Verbose: true,
		})

		_, err := verbose.Run(benchmarks.GetTraceBenchmarks()[1])
		Expect(err).NotTo(HaveOccurred())
		Expect(output.String()).To(Equal(
			"Address: 0 - miss\nAddress: 2 - miss\nAddress: 4 - miss eviction\n"))
	})
})

var _ = Describe("Generators", func() {
	It("should generate a strided sweep", func() {
		records := benchmarks.SequentialTrace(0x100, 16, 8, trace.OpLoad)
		Expect(records).To(Equal([]trace.Record{
			{Op: trace.OpLoad, Address: 0x100, Size: 4},
			{Op: trace.OpLoad, Address: 0x108, Size: 4},
		}))
	})

	It("should generate the transpose access order", func() {
		records := benchmarks.TransposeTrace(2, 0x0, 0x100)

		addrs := make([]uint64, 0, len(records))
		for _, r := range records {
			addrs = append(addrs, r.Address)
		}
		Expect(addrs).To(Equal([]uint64{
			0x0, 0x100, 0x4, 0x108, 0x8, 0x104, 0xc, 0x10c,
		}))
	})

	It("should interleave instruction fetches", func() {
		records := benchmarks.WithInstructions(
			benchmarks.SequentialTrace(0, 8, 4, trace.OpStore), 0x400000)
		Expect(records).To(HaveLen(4))
		Expect(records[0].Op).To(Equal(trace.OpInstruction))
		Expect(records[2].Address).To(Equal(uint64(0x400004)))
	})

	It("should build parseable trace text", func() {
		text := benchmarks.BuildTrace(
			trace.Record{Op: trace.OpInstruction, Address: 0x400000, Size: 4},
			trace.Record{Op: trace.OpModify, Address: 0x7ff000, Size: 4},
		)
		Expect(text).To(Equal("I 00400000,4\n M 7ff000,4\n"))
	})
})

// nopAccessor counts nothing; it lets the replayer tally the records alone.
type nopAccessor struct{}

func (nopAccessor) Access(addr uint64) cache.Outcome {
	return cache.Outcome{Address: addr}
}
