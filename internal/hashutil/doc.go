// Package hashutil provides the seeded hashing primitives shared by the
// probabilistic structures.
//
// # MurmurHash3 (x86, 32-bit)
//
// Structures that derive several array positions from one element (Bloom
// filters, count sketches, the hashing-mode quantile digest) use the 32-bit
// MurmurHash3 variant with an 8-bit seed per derived position:
//
//	pos := hashutil.Sum32(data, seed) % length
//
// The function is deterministic, seed-dependent and uniformly distributed
// over [0, 2^32).
//
// # xxHash (64-bit)
//
// HyperLogLog consumes a single unseeded 64-bit hash and splits it into a
// register index and a rank pattern:
//
//	h := hashutil.Sum64(data)
package hashutil
