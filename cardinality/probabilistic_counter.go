package cardinality

import (
	"math"
	"math/bits"

	"github.com/gakhov/pdsa"
	"github.com/gakhov/pdsa/internal/hashutil"
)

// phi is the Flajolet-Martin correction factor.
const phi = 0.77351

// ProbabilisticCounter is the Flajolet-Martin distinct-count sketch. Each
// of its m simple counters is a 32-bit register that records which
// least-significant one-bit ranks have been observed in that counter's
// hash; the average rank of the first unobserved bit estimates log2 of the
// cardinality.
//
// A ProbabilisticCounter is not safe for concurrent use.
type ProbabilisticCounter struct {
	registers       []uint32
	smallCorrection bool
	logger          *pdsa.Logger
}

// NewProbabilisticCounter creates a counter with the given number of
// 32-bit simple counters. More counters average out more variance; 64 or
// 256 are typical choices.
func NewProbabilisticCounter(numCounters uint32, opts ...Option) (*ProbabilisticCounter, error) {
	if numCounters < 1 {
		return nil, &ConfigError{Param: "number of counters", Reason: "must be at least 1"}
	}
	// One seeded hash function per counter, seeds are a byte wide.
	if numCounters > 256 {
		return nil, &ConfigError{Param: "number of counters", Reason: "must be at most 256"}
	}

	cfg := newConfig(opts...)

	return &ProbabilisticCounter{
		registers:       make([]uint32, numCounters),
		smallCorrection: cfg.smallCardinality,
		logger:          cfg.logger,
	}, nil
}

// Add registers an element in every simple counter.
func (pc *ProbabilisticCounter) Add(data []byte) {
	for i := range pc.registers {
		h := hashutil.Sum32(data, uint8(i))
		pc.registers[i] |= 1 << rank(h)
	}
}

// AddString registers a string element.
func (pc *ProbabilisticCounter) AddString(s string) {
	pc.Add([]byte(s))
}

// rank returns the position of the least significant one-bit, 31 for a
// zero hash.
func rank(h uint32) int {
	if h == 0 {
		return 31
	}
	return bits.TrailingZeros32(h)
}

// firstUnset returns the position of the least significant zero-bit of a
// register.
func firstUnset(r uint32) int {
	return bits.TrailingZeros32(^r)
}

// Count returns the estimated number of distinct elements seen so far:
// m 2^A / phi with A the average first-unset-bit rank over the m
// registers. With the small cardinality correction enabled the biased
// low-end estimate m (2^A - 2^(-1.75 A)) / phi is used instead.
func (pc *ProbabilisticCounter) Count() uint64 {
	var total int
	for _, r := range pc.registers {
		total += firstUnset(r)
	}

	m := float64(len(pc.registers))
	a := float64(total) / m

	estimate := math.Pow(2, a)
	if pc.smallCorrection {
		estimate -= math.Pow(2, -1.75*a)
	}
	return uint64(math.Round(m * estimate / phi))
}

// Len returns the number of simple counters.
func (pc *ProbabilisticCounter) Len() uint32 {
	return uint32(len(pc.registers))
}

// SizeBytes returns the size of the registers in bytes.
func (pc *ProbabilisticCounter) SizeBytes() uint32 {
	return uint32(len(pc.registers)) * 4
}
