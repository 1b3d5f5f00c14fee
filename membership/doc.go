// Package membership provides space-efficient set membership filters.
//
// A BloomFilter answers "possibly in the set" or "definitely not in the
// set" using a fixed bit array and a family of seeded hash functions. A
// CountingBloomFilter adds 4-bit saturating counters per cell so elements
// can also be removed.
//
// Both filters trade a tunable false positive rate for memory: a filter
// sized with NewBloomFilterFromCapacity(n, p) stays below the false
// positive probability p while at most n distinct elements are added.
// False negatives never occur (for the counting filter, as long as no
// counter has saturated).
package membership
