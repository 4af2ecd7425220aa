// Package cache models a set-associative cache that classifies each memory
// access as a hit or a miss and tracks evictions under counter-based LRU.
package cache

import "fmt"

// A Line is the state of one cache line.
type Line struct {
	Valid bool
	Tag   uint64
	// Recency is the age of the line in accesses to its set. Zero means
	// most recently touched. It is only meaningful while Valid is set.
	Recency uint64
}

// Store owns the grid of sets times lines. Lines live in one flat arena
// and are addressed by (set index, way) pairs.
type Store struct {
	numSets int
	numWays int
	lines   []Line
}

// NewStore allocates a store with every line invalid.
func NewStore(numSets, numWays int) *Store {
	if numSets < 1 || numWays < 1 {
		panic(fmt.Sprintf("cache: invalid store geometry %dx%d",
			numSets, numWays))
	}

	return &Store{
		numSets: numSets,
		numWays: numWays,
		lines:   make([]Line, numSets*numWays),
	}
}

// NumSets returns the number of sets.
func (s *Store) NumSets() int {
	return s.numSets
}

// NumWays returns the number of lines per set.
func (s *Store) NumWays() int {
	return s.numWays
}

func (s *Store) checkSet(setIndex int) {
	if setIndex < 0 || setIndex >= s.numSets {
		panic(fmt.Sprintf("cache: set index %d out of range [0, %d)",
			setIndex, s.numSets))
	}
}

func (s *Store) checkWay(way int) {
	if way < 0 || way >= s.numWays {
		panic(fmt.Sprintf("cache: way %d out of range [0, %d)",
			way, s.numWays))
	}
}

// set returns the live lines of one set. Index order is way order.
func (s *Store) set(setIndex int) []Line {
	s.checkSet(setIndex)
	start := setIndex * s.numWays

	return s.lines[start : start+s.numWays : start+s.numWays]
}

// Set returns a copy of the lines of one set.
func (s *Store) Set(setIndex int) []Line {
	lines := make([]Line, s.numWays)
	copy(lines, s.set(setIndex))

	return lines
}

// Line returns a copy of one line.
func (s *Store) Line(setIndex, way int) Line {
	s.checkWay(way)
	return s.set(setIndex)[way]
}

// Lookup scans the set in index order for a valid line holding tag.
func (s *Store) Lookup(setIndex int, tag uint64) (way int, ok bool) {
	for i, l := range s.set(setIndex) {
		if l.Valid && l.Tag == tag {
			return i, true
		}
	}

	return -1, false
}

// SelectEmpty returns the first invalid line of the set, if any.
func (s *Store) SelectEmpty(setIndex int) (way int, ok bool) {
	for i, l := range s.set(setIndex) {
		if !l.Valid {
			return i, true
		}
	}

	return -1, false
}

// Fill marks a line valid and stores tag in it. A valid line keeps being
// valid; its old tag is overwritten.
func (s *Store) Fill(setIndex, way int, tag uint64) {
	s.checkWay(way)
	l := &s.set(setIndex)[way]
	l.Valid = true
	l.Tag = tag
}

// Reset invalidates every line and clears every recency counter.
func (s *Store) Reset() {
	clear(s.lines)
}
