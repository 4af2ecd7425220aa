package cache

// A RecencyPolicy keeps the per-line recency counters of a set and decides
// which line to evict when the set is full.
type RecencyPolicy interface {
	// Touch records an access to lines[way].
	Touch(lines []Line, way int)

	// SelectVictim returns the way to evict from a set with no invalid
	// line.
	SelectVictim(lines []Line) int
}

// LRUCounterPolicy approximates LRU with a per-line age counter.
type LRUCounterPolicy struct{}

// NewLRUCounterPolicy returns the counter based LRU policy.
func NewLRUCounterPolicy() *LRUCounterPolicy {
	return &LRUCounterPolicy{}
}

// Touch ages every other valid line by one and makes lines[way] the most
// recent one. The touched line is reset even if it was not valid before.
func (p *LRUCounterPolicy) Touch(lines []Line, way int) {
	for i := range lines {
		if i != way && lines[i].Valid {
			lines[i].Recency++
		}
	}

	lines[way].Recency = 0
}

// SelectVictim returns the valid line with the greatest counter. A line
// only displaces the current candidate when its counter is strictly
// greater, so among equal counters the lowest way wins.
func (p *LRUCounterPolicy) SelectVictim(lines []Line) int {
	victim := 0
	found := false
	var maxRecency uint64

	for i, l := range lines {
		if !l.Valid {
			continue
		}

		if !found || l.Recency > maxRecency {
			victim = i
			maxRecency = l.Recency
			found = true
		}
	}

	return victim
}
