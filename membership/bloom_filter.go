package membership

import (
	"math"

	"github.com/gakhov/pdsa"
	"github.com/gakhov/pdsa/internal/bitvector"
	"github.com/gakhov/pdsa/internal/hashutil"
)

// BloomFilter is a space-efficient probabilistic set that supports
// insertion and membership testing. Test may report false positives but
// never false negatives.
//
// A BloomFilter is not safe for concurrent use.
type BloomFilter struct {
	bits      *bitvector.BitVector
	numHashes uint8
	count     uint64
	logger    *pdsa.Logger
}

// NewBloomFilter creates a filter with the given length in bits (rounded
// up to a whole byte) and number of hash functions.
func NewBloomFilter(length uint32, numHashes uint8, opts ...Option) (*BloomFilter, error) {
	if length < 1 {
		return nil, &ConfigError{Param: "length", Reason: "must be at least 1 bit"}
	}
	if numHashes < 1 {
		return nil, &ConfigError{Param: "number of hashes", Reason: "must be at least 1"}
	}

	cfg := newConfig(opts...)

	bf := &BloomFilter{
		bits:      bitvector.New(length),
		numHashes: numHashes,
		logger:    cfg.logger,
	}
	bf.logger.Debug("created bloom filter",
		"bits", bf.bits.Len(),
		"hashes", numHashes,
	)
	return bf, nil
}

// NewBloomFilterFromCapacity sizes a filter for the expected number of
// distinct elements and the desired false positive probability:
// m = ceil(-n ln p / ln² 2) bits and k = max(1, floor(m/n ln 2)) hashes.
func NewBloomFilterFromCapacity(capacity uint32, fpRate float64, opts ...Option) (*BloomFilter, error) {
	if capacity < 1 {
		return nil, &ConfigError{Param: "capacity", Reason: "must be at least 1"}
	}
	if fpRate <= 0 || fpRate >= 1 {
		return nil, &ConfigError{Param: "false positive rate", Reason: "must be in (0, 1)"}
	}

	length, numHashes := bloomSizing(capacity, fpRate)
	return NewBloomFilter(length, numHashes, opts...)
}

func bloomSizing(capacity uint32, fpRate float64) (length uint32, numHashes uint8) {
	ln2 := math.Ln2
	bits := math.Ceil(-float64(capacity) * math.Log(fpRate) / (ln2 * ln2))
	length = uint32(bits)

	// The vector rounds up to a byte, so size the hash family from the
	// rounded length.
	rounded := (length + 7) &^ 7
	k := math.Floor(float64(rounded) / float64(capacity) * ln2)
	if k < 1 {
		k = 1
	}
	if k > 255 {
		k = 255
	}
	return length, uint8(k)
}

// position returns the bit index the i-th hash function maps data to.
func (bf *BloomFilter) position(data []byte, i uint8) uint32 {
	return hashutil.Sum32(data, i) % bf.bits.Len()
}

// Add inserts an element into the filter.
func (bf *BloomFilter) Add(data []byte) {
	var novel bool
	for i := uint8(0); i < bf.numHashes; i++ {
		p := bf.position(data, i)
		if !bf.bits.Test(p) {
			novel = true
			bf.bits.Set(p)
		}
	}
	if novel {
		bf.count++
	}
}

// AddString inserts a string element into the filter.
func (bf *BloomFilter) AddString(s string) {
	bf.Add([]byte(s))
}

// Test reports whether an element is possibly in the filter. A false
// result is definitive.
func (bf *BloomFilter) Test(data []byte) bool {
	for i := uint8(0); i < bf.numHashes; i++ {
		if !bf.bits.Test(bf.position(data, i)) {
			return false
		}
	}
	return true
}

// TestString reports whether a string element is possibly in the filter.
func (bf *BloomFilter) TestString(s string) bool {
	return bf.Test([]byte(s))
}

// Count returns the number of distinct elements added to the filter. The
// value undercounts when a new element collides with already set bits on
// every hash.
func (bf *BloomFilter) Count() uint64 {
	return bf.count
}

// Len returns the filter length in bits.
func (bf *BloomFilter) Len() uint32 {
	return bf.bits.Len()
}

// SizeBytes returns the size of the filter's bit array in bytes.
func (bf *BloomFilter) SizeBytes() uint32 {
	return bf.bits.SizeBytes()
}
