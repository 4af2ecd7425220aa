package trace

import (
	"errors"
	"io"
	"os"

	"github.com/sarchlab/csim/cache"
)

// Accessor simulates single memory accesses. *cache.Simulator is the
// usual implementation.
type Accessor interface {
	Access(addr uint64) cache.Outcome
}

// Summary counts the records a replay has seen.
type Summary struct {
	Instructions uint64
	Loads        uint64
	Stores       uint64
	Modifies     uint64
	// Skipped counts lines that were not valid records.
	Skipped uint64
}

// Records returns the number of lines read.
func (s Summary) Records() uint64 {
	return s.Instructions + s.Loads + s.Stores + s.Modifies + s.Skipped
}

// Accesses returns the number of cache accesses the records stand for.
func (s Summary) Accesses() uint64 {
	return s.Loads + s.Stores + 2*s.Modifies
}

// Replayer drives an Accessor with the records of a trace.
type Replayer struct {
	accessor Accessor
	onSkip   func(err *ParseError)
}

// ReplayerOption is a functional option for configuring the Replayer.
type ReplayerOption func(*Replayer)

// WithSkipHandler registers a callback for every skipped line.
func WithSkipHandler(f func(err *ParseError)) ReplayerOption {
	return func(r *Replayer) {
		r.onSkip = f
	}
}

// NewReplayer creates a Replayer that sends accesses to accessor.
func NewReplayer(accessor Accessor, opts ...ReplayerOption) *Replayer {
	r := &Replayer{accessor: accessor}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Replay consumes tr until it is exhausted. Malformed lines are skipped;
// an I/O error stops the replay and is returned.
func (r *Replayer) Replay(tr *Reader) (Summary, error) {
	var summary Summary

	for {
		rec, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return summary, nil
		}

		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			summary.Skipped++
			if r.onSkip != nil {
				r.onSkip(parseErr)
			}
			continue
		}

		if err != nil {
			return summary, err
		}

		r.Apply(rec, &summary)
	}
}

// Apply simulates one record and counts it in summary.
func (r *Replayer) Apply(rec Record, summary *Summary) {
	switch rec.Op {
	case OpInstruction:
		summary.Instructions++
	case OpLoad:
		summary.Loads++
		r.accessor.Access(rec.Address)
	case OpStore:
		summary.Stores++
		r.accessor.Access(rec.Address)
	case OpModify:
		summary.Modifies++
		r.accessor.Access(rec.Address)
		r.accessor.Access(rec.Address)
	default:
		summary.Skipped++
	}
}

// ReplayFile opens the trace at path and replays it.
func (r *Replayer) ReplayFile(path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, &IOError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	return r.Replay(newFileReader(f, path))
}
