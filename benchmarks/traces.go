package benchmarks

import (
	"strings"

	"github.com/sarchlab/csim/cache"
	"github.com/sarchlab/csim/trace"
)

// wordSize is the element size of the generated array traces.
const wordSize = 4

// BuildTrace joins records into trace text, one record per line.
func BuildTrace(records ...trace.Record) string {
	var sb strings.Builder
	for _, r := range records {
		sb.WriteString(r.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// SequentialTrace touches [base, base+bytes) in steps of stride bytes.
func SequentialTrace(base, bytes, stride uint64, op trace.Op) []trace.Record {
	records := make([]trace.Record, 0, bytes/stride)
	for off := uint64(0); off < bytes; off += stride {
		records = append(records, trace.Record{
			Op:      op,
			Address: base + off,
			Size:    wordSize,
		})
	}
	return records
}

// TransposeTrace is the access pattern of the naive transpose
// B[j][i] = A[i][j] of two n x n matrices of 4-byte words.
func TransposeTrace(n int, a, b uint64) []trace.Record {
	records := make([]trace.Record, 0, 2*n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			records = append(records,
				trace.Record{
					Op:      trace.OpLoad,
					Address: a + uint64(i*n+j)*wordSize,
					Size:    wordSize,
				},
				trace.Record{
					Op:      trace.OpStore,
					Address: b + uint64(j*n+i)*wordSize,
					Size:    wordSize,
				},
			)
		}
	}
	return records
}

// WithInstructions interleaves an instruction fetch before every record,
// the way Valgrind traces of real programs look.
func WithInstructions(records []trace.Record, pc uint64) []trace.Record {
	out := make([]trace.Record, 0, 2*len(records))
	for _, r := range records {
		out = append(out, trace.Record{Op: trace.OpInstruction, Address: pc, Size: 4}, r)
		pc += 4
	}
	return out
}

func expect(hits, misses, evictions uint64) *cache.Statistics {
	return &cache.Statistics{Hits: hits, Misses: misses, Evictions: evictions}
}

// GetTraceBenchmarks returns the standard set of trace benchmarks.
func GetTraceBenchmarks() []Benchmark {
	return []Benchmark{
		directMappedConflict(),
		twoWaySlack(),
		sequentialWords(),
		sequentialBlocks(),
		resident(),
		modifySweep(),
		transposeDiagonal(),
		transpose32(),
	}
}

// 1. Three addresses in one direct mapped set.
func directMappedConflict() Benchmark {
	return Benchmark{
		Name:        "direct_mapped_conflict",
		Description: "Three tags in one set of a direct mapped cache",
		Config:      cache.Config{SetBits: 1, Associativity: 1, BlockBits: 0},
		Trace:       " L 0,1\n L 2,1\n L 4,1\n",
		Expected:    expect(0, 3, 2),
	}
}

// 2. The same addresses with a second line per set.
func twoWaySlack() Benchmark {
	return Benchmark{
		Name:        "two_way_slack",
		Description: "Three tags in one set with two lines",
		Config:      cache.Config{SetBits: 1, Associativity: 2, BlockBits: 0},
		Trace:       " L 0,1\n L 2,1\n L 4,1\n",
		Expected:    expect(0, 3, 1),
	}
}

// 3. Word loads over 4KB with a 512B cache: one miss per 32B block.
func sequentialWords() Benchmark {
	return Benchmark{
		Name:        "sequential_words",
		Description: "4KB of word loads through a 512B direct mapped cache",
		Config:      cache.Config{SetBits: 4, Associativity: 1, BlockBits: 5},
		Trace: BuildTrace(WithInstructions(
			SequentialTrace(0x10000, 4096, wordSize, trace.OpLoad), 0x400000)...),
		Expected: expect(896, 128, 112),
	}
}

// 4. One store per block: every access misses.
func sequentialBlocks() Benchmark {
	return Benchmark{
		Name:        "sequential_blocks",
		Description: "4KB of block strided stores through a 512B cache",
		Config:      cache.Config{SetBits: 4, Associativity: 1, BlockBits: 5},
		Trace:       BuildTrace(SequentialTrace(0x10000, 4096, 32, trace.OpStore)...),
		Expected:    expect(0, 128, 112),
	}
}

// 5. Two passes over an array that fits in the cache.
func resident() Benchmark {
	pass := SequentialTrace(0x20000, 512, wordSize, trace.OpLoad)
	return Benchmark{
		Name:        "resident",
		Description: "Two passes over 512B that fit in a 512B cache",
		Config:      cache.Config{SetBits: 4, Associativity: 1, BlockBits: 5},
		Trace:       BuildTrace(append(pass, pass...)...),
		Expected:    expect(240, 16, 0),
	}
}

// 6. Read-modify-write of every word.
func modifySweep() Benchmark {
	return Benchmark{
		Name:        "modify_sweep",
		Description: "Modify every word of 4KB through a 512B cache",
		Config:      cache.Config{SetBits: 4, Associativity: 1, BlockBits: 5},
		Trace:       BuildTrace(SequentialTrace(0x10000, 4096, wordSize, trace.OpModify)...),
		Expected:    expect(1920, 128, 112),
	}
}

// 7. Diagonal conflicts of a 2x2 transpose.
func transposeDiagonal() Benchmark {
	return Benchmark{
		Name:        "transpose_diagonal",
		Description: "2x2 transpose with A and B mapping onto the same sets",
		Config:      cache.Config{SetBits: 1, Associativity: 1, BlockBits: 3},
		Trace:       BuildTrace(TransposeTrace(2, 0x0, 0x100)...),
		Expected:    expect(1, 7, 5),
	}
}

// 8. The cache lab 32x32 transpose on the 1KB direct mapped cache.
func transpose32() Benchmark {
	return Benchmark{
		Name:        "transpose_32x32",
		Description: "Naive 32x32 transpose on a 1KB direct mapped cache",
		Config:      cache.Config{SetBits: 5, Associativity: 1, BlockBits: 5},
		Trace: BuildTrace(WithInstructions(
			TransposeTrace(32, 0x10d080, 0x14d080), 0x400800)...),
	}
}
