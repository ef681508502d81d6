package tomasulo

import "math/bits"

// MaxStationsPerGroup bounds a group so its slot state fits one bitmap word.
const MaxStationsPerGroup = 64

// lowestSet returns the index of the lowest set bit of mask.
func lowestSet(mask uint64) (int, bool) {
	if mask == 0 {
		return 0, false
	}
	return bits.TrailingZeros64(mask), true
}

// lowMask returns a mask with the n lowest bits set.
func lowMask(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(n)) - 1
}
