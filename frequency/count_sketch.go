package frequency

import (
	"math"
	"sort"

	"github.com/gakhov/pdsa"
	"github.com/gakhov/pdsa/internal/hashutil"
)

// CountSketch estimates element frequencies with a grid of d signed
// counter arrays of width w. Each array adds or subtracts one according
// to a per-array sign hash, and a point query takes the median of the d
// signed estimates. Colliding elements cancel out on average, so the
// estimate is unbiased; with the sketch sized by NewCountSketchFromError,
// its error scales with the L2 norm of the frequency vector.
//
// A CountSketch is not safe for concurrent use.
type CountSketch struct {
	counters  [][]int32
	numArrays uint8
	length    uint32
	logger    *pdsa.Logger
}

// NewCountSketch creates a sketch with numArrays signed counter arrays of
// the given length each. Each array uses two seeded hash functions, so at
// most 128 arrays are supported.
func NewCountSketch(numArrays uint8, length uint32, opts ...Option) (*CountSketch, error) {
	if numArrays < 1 {
		return nil, &ConfigError{Param: "number of arrays", Reason: "must be at least 1"}
	}
	if numArrays > 128 {
		return nil, &ConfigError{Param: "number of arrays", Reason: "must be at most 128"}
	}
	if length < 1 {
		return nil, &ConfigError{Param: "length", Reason: "must be at least 1"}
	}

	cfg := newConfig(opts...)

	counters := make([][]int32, numArrays)
	for i := range counters {
		counters[i] = make([]int32, length)
	}

	cs := &CountSketch{
		counters:  counters,
		numArrays: numArrays,
		length:    length,
		logger:    cfg.logger,
	}
	cs.logger.Debug("created count sketch",
		"arrays", numArrays,
		"length", length,
	)
	return cs, nil
}

// NewCountSketchFromError sizes a sketch for the given error bound:
// w = ceil(e/deviation²) counters per array and d = ceil(ln(1/errorRate))
// arrays.
func NewCountSketchFromError(deviation, errorRate float64, opts ...Option) (*CountSketch, error) {
	if deviation <= 0 || deviation >= 1 {
		return nil, &ConfigError{Param: "deviation", Reason: "must be in (0, 1)"}
	}
	if errorRate <= 0 || errorRate >= 1 {
		return nil, &ConfigError{Param: "error rate", Reason: "must be in (0, 1)"}
	}

	width := math.Ceil(math.E / (deviation * deviation))
	if width > math.MaxUint32 {
		return nil, &ConfigError{Param: "deviation", Reason: "requires more counters than the sketch can address"}
	}

	depth := math.Ceil(math.Log(1 / errorRate))
	if depth > 128 {
		return nil, &ConfigError{Param: "error rate", Reason: "requires more arrays than the sketch can address"}
	}

	return NewCountSketch(uint8(depth), uint32(width), opts...)
}

// position returns the counter index the i-th array maps data to.
func (cs *CountSketch) position(data []byte, i uint8) uint32 {
	return hashutil.Sum32(data, i) % cs.length
}

// sign returns +1 or -1 for the i-th array, from a hash family disjoint
// from the position hashes.
func (cs *CountSketch) sign(data []byte, i uint8) int32 {
	if hashutil.Sum32(data, cs.numArrays+i)&1 == 1 {
		return 1
	}
	return -1
}

// Add registers one occurrence of an element.
func (cs *CountSketch) Add(data []byte) {
	for i := uint8(0); i < cs.numArrays; i++ {
		cs.counters[i][cs.position(data, i)] += cs.sign(data, i)
	}
}

// AddString registers one occurrence of a string element.
func (cs *CountSketch) AddString(s string) {
	cs.Add([]byte(s))
}

// Frequency returns the estimated number of occurrences of an element:
// the median of the signed per-array estimates, floored at zero.
func (cs *CountSketch) Frequency(data []byte) uint32 {
	estimates := make([]int64, cs.numArrays)
	for i := uint8(0); i < cs.numArrays; i++ {
		c := int64(cs.counters[i][cs.position(data, i)])
		estimates[i] = int64(cs.sign(data, i)) * c
	}
	sort.Slice(estimates, func(a, b int) bool { return estimates[a] < estimates[b] })

	var median int64
	mid := len(estimates) / 2
	if len(estimates)%2 == 1 {
		median = estimates[mid]
	} else {
		median = (estimates[mid-1] + estimates[mid]) / 2
	}

	if median < 0 {
		return 0
	}
	return uint32(median)
}

// FrequencyString returns the estimated number of occurrences of a string
// element.
func (cs *CountSketch) FrequencyString(s string) uint32 {
	return cs.Frequency([]byte(s))
}

// Len returns the total number of counters in the sketch.
func (cs *CountSketch) Len() uint64 {
	return uint64(cs.numArrays) * uint64(cs.length)
}

// SizeBytes returns the size of the counters in bytes.
func (cs *CountSketch) SizeBytes() uint64 {
	return cs.Len() * 4
}
