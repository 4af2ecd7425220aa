package cache

import (
	"github.com/sarchlab/akita/v4/sim"
)

// HookPosAccess marks the point after an access has been fully classified.
// The hook item is the access Outcome.
var HookPosAccess = &sim.HookPos{Name: "CacheAccess"}

// Outcome describes how one access was classified.
type Outcome struct {
	Address  uint64
	Tag      uint64
	SetIndex int
	// Way is the line that holds the tag after the access.
	Way int
	Hit bool
	// Evicted is true if the access replaced a valid line.
	Evicted bool
	// EvictedTag is the tag that was replaced when Evicted is true.
	EvictedTag uint64
}

// Statistics holds the access counters of a run.
type Statistics struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Accesses returns the number of simulated accesses.
func (s Statistics) Accesses() uint64 {
	return s.Hits + s.Misses
}

func (s *Statistics) record(o Outcome) {
	if o.Hit {
		s.Hits++
		return
	}

	s.Misses++
	if o.Evicted {
		s.Evictions++
	}
}

// Simulator is one simulation run: the cache grid, its replacement policy,
// and the counters. It is not safe for concurrent use.
type Simulator struct {
	sim.HookableBase

	config Config
	store  *Store
	policy RecencyPolicy
	stats  Statistics
}

// SimulatorOption is a functional option for configuring the Simulator.
type SimulatorOption func(*Simulator)

// WithRecencyPolicy replaces the default LRUCounterPolicy.
func WithRecencyPolicy(p RecencyPolicy) SimulatorOption {
	return func(s *Simulator) {
		s.policy = p
	}
}

// WithHook registers a hook that observes every access.
func WithHook(h sim.Hook) SimulatorOption {
	return func(s *Simulator) {
		s.AcceptHook(h)
	}
}

// NewSimulator validates config and allocates an empty cache.
func NewSimulator(config Config, opts ...SimulatorOption) (*Simulator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Simulator{
		config: config,
		store:  NewStore(config.NumSets(), config.Associativity),
		policy: NewLRUCounterPolicy(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Config returns the cache geometry.
func (s *Simulator) Config() Config {
	return s.config
}

// Stats returns a snapshot of the counters.
func (s *Simulator) Stats() Statistics {
	return s.stats
}

// Line returns a copy of one line of the cache.
func (s *Simulator) Line(setIndex, way int) Line {
	return s.store.Line(setIndex, way)
}

// Set returns a copy of the lines of one set.
func (s *Simulator) Set(setIndex int) []Line {
	return s.store.Set(setIndex)
}

// Reset invalidates the whole cache and clears the counters. Registered
// hooks are kept.
func (s *Simulator) Reset() {
	s.store.Reset()
	s.stats = Statistics{}
}

// Access simulates one memory access to addr.
func (s *Simulator) Access(addr uint64) Outcome {
	tag, setIndex := s.config.Decode(addr)
	outcome := s.classify(addr, tag, setIndex)

	s.stats.record(outcome)
	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    HookPosAccess,
		Item:   outcome,
	})

	return outcome
}

// classify makes the hit, placement, or eviction decision and updates the
// set. It performs no I/O.
func (s *Simulator) classify(addr, tag uint64, setIndex int) Outcome {
	outcome := Outcome{
		Address:  addr,
		Tag:      tag,
		SetIndex: setIndex,
	}

	lines := s.store.set(setIndex)

	if way, ok := s.store.Lookup(setIndex, tag); ok {
		outcome.Hit = true
		outcome.Way = way
		s.policy.Touch(lines, way)

		return outcome
	}

	way, ok := s.store.SelectEmpty(setIndex)
	if !ok {
		way = s.policy.SelectVictim(lines)
		outcome.Evicted = true
		outcome.EvictedTag = lines[way].Tag
	}

	outcome.Way = way
	s.store.Fill(setIndex, way, tag)
	s.policy.Touch(lines, way)

	return outcome
}
