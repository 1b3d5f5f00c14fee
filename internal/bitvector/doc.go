// Package bitvector provides packed single-bit and 4-bit storage for the
// hash-indexed structures.
//
// BitVector packs one bit per cell into []uint64 words. Counter packs two
// 4-bit counters per byte; increments saturate at 15 and decrements stop
// at zero. Lengths round up to a whole byte so the reported memory
// footprint matches the allocation.
//
// Both types are single-writer: callers serialize access. Bloom filter bit
// arrays and counting Bloom filter cells are built on them.
package bitvector
