package cache

// Decode maps a memory address to its tag and set index. The low b bits
// are the block offset, the next s bits select the set, and the remaining
// high bits are the tag.
//
// The caller must keep s+b within AddressBits.
func Decode(addr uint64, s, b int) (tag uint64, setIndex int) {
	setMask := uint64(1)<<s - 1
	setIndex = int((addr >> b) & setMask)
	tag = addr >> (s + b)

	return tag, setIndex
}
