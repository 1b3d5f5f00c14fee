package cardinality

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/gakhov/pdsa"
	"github.com/gakhov/pdsa/internal/hashutil"
)

// LinearCounter estimates the number of distinct elements by hashing each
// one onto an m-bit map and counting the bits left unset. The estimate
// stays accurate while the map is sparse; size the counter so the expected
// cardinality does not exceed the map length.
//
// The map is held in a compressed Roaring bitmap, so a sparse counter
// occupies far less memory than its nominal length.
//
// A LinearCounter is not safe for concurrent use.
type LinearCounter struct {
	bitmap *roaring.Bitmap
	length uint32
	logger *pdsa.Logger
}

// NewLinearCounter creates a counter with an m-bit map of the given
// length.
func NewLinearCounter(length uint32, opts ...Option) (*LinearCounter, error) {
	if length < 1 {
		return nil, &ConfigError{Param: "length", Reason: "must be at least 1 bit"}
	}

	cfg := newConfig(opts...)

	return &LinearCounter{
		bitmap: roaring.New(),
		length: length,
		logger: cfg.logger,
	}, nil
}

// Add registers an element.
func (lc *LinearCounter) Add(data []byte) {
	lc.bitmap.Add(hashutil.Sum32(data, 0) % lc.length)
}

// AddString registers a string element.
func (lc *LinearCounter) AddString(s string) {
	lc.Add([]byte(s))
}

// Count returns the estimated number of distinct elements seen so far:
// -m ln(z/m) with z unset bits, rounded to the nearest integer.
//
// A full map cannot be inverted; the counter then reports its maximum
// m ln m and further additions no longer change the estimate.
func (lc *LinearCounter) Count() uint64 {
	m := float64(lc.length)
	z := m - float64(lc.bitmap.GetCardinality())
	if z < 1 {
		lc.logger.Debug("bit map saturated", "bits", lc.length)
		z = 1
	}
	return uint64(math.Round(-m * math.Log(z/m)))
}

// Len returns the nominal length of the bit map.
func (lc *LinearCounter) Len() uint32 {
	return lc.length
}

// SizeBytes returns the serialized size of the compressed bit map.
func (lc *LinearCounter) SizeBytes() uint32 {
	return uint32(lc.bitmap.GetSizeInBytes())
}
