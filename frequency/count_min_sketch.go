package frequency

import (
	"math"

	"github.com/gakhov/pdsa"
	"github.com/gakhov/pdsa/internal/hashutil"
)

// CountMinSketch estimates element frequencies with a grid of d counter
// arrays of width w. Every addition increments one counter per array; a
// point query takes the minimum over the d counters an element maps to,
// so estimates never undercount. With the sketch sized by
// NewCountMinSketchFromError, an estimate overcounts by more than
// deviation times the stream length with probability at most errorRate.
//
// A CountMinSketch is not safe for concurrent use.
type CountMinSketch struct {
	counters  [][]uint32
	numArrays uint8
	length    uint32
	logger    *pdsa.Logger
}

// NewCountMinSketch creates a sketch with numArrays counter arrays of the
// given length each.
func NewCountMinSketch(numArrays uint8, length uint32, opts ...Option) (*CountMinSketch, error) {
	if numArrays < 1 {
		return nil, &ConfigError{Param: "number of arrays", Reason: "must be at least 1"}
	}
	if length < 1 {
		return nil, &ConfigError{Param: "length", Reason: "must be at least 1"}
	}

	cfg := newConfig(opts...)

	counters := make([][]uint32, numArrays)
	for i := range counters {
		counters[i] = make([]uint32, length)
	}

	return &CountMinSketch{
		counters:  counters,
		numArrays: numArrays,
		length:    length,
		logger:    cfg.logger,
	}, nil
}

// NewCountMinSketchFromError sizes a sketch for the given overcount
// bound: w = ceil(e/deviation) counters per array and d = ceil(ln(1/
// errorRate)) arrays.
func NewCountMinSketchFromError(deviation, errorRate float64, opts ...Option) (*CountMinSketch, error) {
	if deviation <= 0 || deviation >= 1 {
		return nil, &ConfigError{Param: "deviation", Reason: "must be in (0, 1)"}
	}
	if errorRate <= 0 || errorRate >= 1 {
		return nil, &ConfigError{Param: "error rate", Reason: "must be in (0, 1)"}
	}

	width := math.Ceil(math.E / deviation)
	if width > math.MaxUint32 {
		return nil, &ConfigError{Param: "deviation", Reason: "requires more counters than the sketch can address"}
	}

	depth := math.Ceil(math.Log(1 / errorRate))
	if depth > 255 {
		return nil, &ConfigError{Param: "error rate", Reason: "requires more arrays than the sketch can address"}
	}

	return NewCountMinSketch(uint8(depth), uint32(width), opts...)
}

// position returns the counter index the i-th array maps data to.
func (cms *CountMinSketch) position(data []byte, i uint8) uint32 {
	return hashutil.Sum32(data, i) % cms.length
}

// Add registers one occurrence of an element. Counters saturate at the
// uint32 maximum instead of wrapping.
func (cms *CountMinSketch) Add(data []byte) {
	for i := uint8(0); i < cms.numArrays; i++ {
		p := cms.position(data, i)
		if cms.counters[i][p] == math.MaxUint32 {
			cms.logger.Debug("counter saturated", "array", i, "position", p)
			continue
		}
		cms.counters[i][p]++
	}
}

// AddString registers one occurrence of a string element.
func (cms *CountMinSketch) AddString(s string) {
	cms.Add([]byte(s))
}

// Frequency returns the estimated number of occurrences of an element,
// never less than the true count.
func (cms *CountMinSketch) Frequency(data []byte) uint32 {
	est := uint32(math.MaxUint32)
	for i := uint8(0); i < cms.numArrays; i++ {
		if c := cms.counters[i][cms.position(data, i)]; c < est {
			est = c
		}
	}
	return est
}

// FrequencyString returns the estimated number of occurrences of a string
// element.
func (cms *CountMinSketch) FrequencyString(s string) uint32 {
	return cms.Frequency([]byte(s))
}

// Len returns the total number of counters in the sketch.
func (cms *CountMinSketch) Len() uint64 {
	return uint64(cms.numArrays) * uint64(cms.length)
}

// SizeBytes returns the size of the counters in bytes.
func (cms *CountMinSketch) SizeBytes() uint64 {
	return cms.Len() * 4
}
