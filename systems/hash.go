package systems

import "math/bits"

// MurmurHash3 (x86, 32-bit) constants.
const (
	murmurC1   uint32 = 0xcc9e2d51
	murmurC2   uint32 = 0x1b873593
	murmurC3   uint32 = 0x85ebca6b
	murmurC4   uint32 = 0xc2b2ae35
	murmurR1          = 15
	murmurR2          = 13
	murmurM    uint32 = 5
	murmurN    uint32 = 0xe6546b64
	murmurSeed uint32 = 42
	murmurLen  uint32 = 2 // two 32-bit blocks
)

// Hash mixes two signed cell coordinates with a two-block MurmurHash3.
// The result depends on argument order and is stable across rebuilds.
func Hash(cellX, cellY int32) uint32 {
	h := murmurSeed
	h = murmurBlock(h, uint32(cellX))
	h = murmurBlock(h, uint32(cellY))

	h ^= murmurLen
	h ^= h >> 16
	h *= murmurC3
	h ^= h >> 13
	h *= murmurC4
	h ^= h >> 16
	return h
}

func murmurBlock(h, k uint32) uint32 {
	k *= murmurC1
	k = bits.RotateLeft32(k, murmurR1)
	k *= murmurC2

	h ^= k
	h = bits.RotateLeft32(h, murmurR2)
	return h*murmurM + murmurN
}
