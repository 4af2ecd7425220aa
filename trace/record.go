// Package trace reads Valgrind memory traces and replays them against a
// cache simulator.
//
// A trace holds one record per line:
//
//	I 0400d7d4,8
//	 L 7ff0005c8,8
//	 S 7ff0005d0,4
//	 M 0421c7f0,4
//
// Instruction fetches start at column 0 and are ignored by the replayer.
// Data accesses carry the operation at column 1 and the hexadecimal
// address and decimal size from column 3.
package trace

import "fmt"

// Op is the operation kind of a trace record.
type Op uint8

// Trace operations.
const (
	OpUnknown     Op = iota
	OpInstruction    // Instruction fetch, I
	OpLoad           // Data load, L
	OpStore          // Data store, S
	OpModify         // Data load followed by a store to the same address, M
)

// String returns the trace letter of the operation.
func (op Op) String() string {
	switch op {
	case OpInstruction:
		return "I"
	case OpLoad:
		return "L"
	case OpStore:
		return "S"
	case OpModify:
		return "M"
	default:
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
}

// opFromByte maps a trace letter to its operation.
func opFromByte(c byte) Op {
	switch c {
	case 'I':
		return OpInstruction
	case 'L':
		return OpLoad
	case 'S':
		return OpStore
	case 'M':
		return OpModify
	default:
		return OpUnknown
	}
}

// Record is one parsed trace line.
type Record struct {
	// Line is the 1-based line number in the trace.
	Line    int
	Op      Op
	Address uint64
	// Size is the number of bytes accessed. It does not affect the
	// simulation.
	Size uint32
}

// String formats the record as a trace line without the line terminator.
func (r Record) String() string {
	if r.Op == OpInstruction {
		return fmt.Sprintf("I %08x,%d", r.Address, r.Size)
	}

	return fmt.Sprintf(" %s %x,%d", r.Op, r.Address, r.Size)
}

// Accesses returns how many cache accesses the record stands for.
func (r Record) Accesses() int {
	switch r.Op {
	case OpLoad, OpStore:
		return 1
	case OpModify:
		return 2
	default:
		return 0
	}
}
