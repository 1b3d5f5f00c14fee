package membership

import (
	"github.com/gakhov/pdsa"
	"github.com/gakhov/pdsa/internal/bitvector"
	"github.com/gakhov/pdsa/internal/hashutil"
)

// CountingBloomFilter is a Bloom filter that also supports removal. Each
// cell carries a 4-bit saturating counter next to its bit, so deleting an
// element decrements the counters its hashes map to and clears a bit only
// when its counter drops back to zero.
//
// A counter that saturates at 15 stops counting. Removing elements whose
// cells have saturated can introduce false negatives; with properly sized
// filters saturation is rare.
//
// A CountingBloomFilter is not safe for concurrent use.
type CountingBloomFilter struct {
	bits      *bitvector.BitVector
	counters  *bitvector.Counter
	numHashes uint8
	count     uint64
	logger    *pdsa.Logger
}

// NewCountingBloomFilter creates a filter with the given length in cells
// (rounded up to a whole byte of bits) and number of hash functions.
func NewCountingBloomFilter(length uint32, numHashes uint8, opts ...Option) (*CountingBloomFilter, error) {
	if length < 1 {
		return nil, &ConfigError{Param: "length", Reason: "must be at least 1 cell"}
	}
	if numHashes < 1 {
		return nil, &ConfigError{Param: "number of hashes", Reason: "must be at least 1"}
	}

	cfg := newConfig(opts...)

	bits := bitvector.New(length)
	return &CountingBloomFilter{
		bits:      bits,
		counters:  bitvector.NewCounter(bits.Len()),
		numHashes: numHashes,
		logger:    cfg.logger,
	}, nil
}

// NewCountingBloomFilterFromCapacity sizes a filter for the expected
// number of distinct elements and the desired false positive probability,
// using the same sizing as NewBloomFilterFromCapacity.
func NewCountingBloomFilterFromCapacity(capacity uint32, fpRate float64, opts ...Option) (*CountingBloomFilter, error) {
	if capacity < 1 {
		return nil, &ConfigError{Param: "capacity", Reason: "must be at least 1"}
	}
	if fpRate <= 0 || fpRate >= 1 {
		return nil, &ConfigError{Param: "false positive rate", Reason: "must be in (0, 1)"}
	}

	length, numHashes := bloomSizing(capacity, fpRate)
	return NewCountingBloomFilter(length, numHashes, opts...)
}

func (cbf *CountingBloomFilter) position(data []byte, i uint8) uint32 {
	return hashutil.Sum32(data, i) % cbf.bits.Len()
}

// Add inserts an element into the filter.
func (cbf *CountingBloomFilter) Add(data []byte) {
	var novel bool
	for i := uint8(0); i < cbf.numHashes; i++ {
		p := cbf.position(data, i)
		if !cbf.bits.Test(p) {
			novel = true
			cbf.bits.Set(p)
		}
		before := cbf.counters.Get(p)
		cbf.counters.Increment(p)
		if before == cbf.counters.Get(p) {
			cbf.logger.Debug("counter saturated", "cell", p)
		}
	}
	if novel {
		cbf.count++
	}
}

// AddString inserts a string element into the filter.
func (cbf *CountingBloomFilter) AddString(s string) {
	cbf.Add([]byte(s))
}

// Test reports whether an element is possibly in the filter. A false
// result is definitive as long as no removal touched a saturated cell.
func (cbf *CountingBloomFilter) Test(data []byte) bool {
	for i := uint8(0); i < cbf.numHashes; i++ {
		if !cbf.bits.Test(cbf.position(data, i)) {
			return false
		}
	}
	return true
}

// TestString reports whether a string element is possibly in the filter.
func (cbf *CountingBloomFilter) TestString(s string) bool {
	return cbf.Test([]byte(s))
}

// Remove deletes one occurrence of an element from the filter. It returns
// false, without mutating the filter, when the element is definitely not
// present.
func (cbf *CountingBloomFilter) Remove(data []byte) bool {
	if !cbf.Test(data) {
		return false
	}

	for i := uint8(0); i < cbf.numHashes; i++ {
		p := cbf.position(data, i)
		cbf.counters.Decrement(p)
		if cbf.counters.Get(p) == 0 {
			cbf.bits.Unset(p)
		}
	}
	if cbf.count > 0 {
		cbf.count--
	}
	return true
}

// RemoveString deletes one occurrence of a string element.
func (cbf *CountingBloomFilter) RemoveString(s string) bool {
	return cbf.Remove([]byte(s))
}

// Count returns the number of distinct elements currently in the filter,
// as tracked by additions and removals. The value is approximate in the
// presence of hash collisions.
func (cbf *CountingBloomFilter) Count() uint64 {
	return cbf.count
}

// Len returns the filter length in cells.
func (cbf *CountingBloomFilter) Len() uint32 {
	return cbf.bits.Len()
}

// SizeBytes returns the combined size of the bit array and the counters
// in bytes.
func (cbf *CountingBloomFilter) SizeBytes() uint32 {
	return cbf.bits.SizeBytes() + cbf.counters.SizeBytes()
}
