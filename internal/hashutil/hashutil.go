package hashutil

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
)

// Sum32 computes the seeded 32-bit MurmurHash3 of data.
func Sum32(data []byte, seed uint8) uint32 {
	return murmur3.Sum32WithSeed(data, uint32(seed))
}

// Sum32String computes the seeded 32-bit MurmurHash3 of s.
func Sum32String(s string, seed uint8) uint32 {
	return murmur3.Sum32WithSeed([]byte(s), uint32(seed))
}

// Sum32Uint64 computes the seeded 32-bit MurmurHash3 of v's little-endian
// byte representation.
func Sum32Uint64(v uint64, seed uint8) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return murmur3.Sum32WithSeed(buf[:], uint32(seed))
}

// Sum64 computes the 64-bit xxHash of data.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Sum64String computes the 64-bit xxHash of s without copying.
func Sum64String(s string) uint64 {
	return xxhash.Sum64String(s)
}
