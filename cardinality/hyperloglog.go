package cardinality

import (
	"math"
	"math/bits"

	"github.com/gakhov/pdsa"
	"github.com/gakhov/pdsa/internal/hashutil"
)

// HyperLogLog estimates the number of distinct elements with a relative
// error of about 1.04/sqrt(2^precision) using one byte per register. A
// 64-bit hash splits into a register index (the top precision bits) and a
// pattern whose leading-zero count the register tracks.
//
// A HyperLogLog is not safe for concurrent use.
type HyperLogLog struct {
	registers []uint8
	precision uint8
	logger    *pdsa.Logger
}

// NewHyperLogLog creates a counter with 2^precision registers, precision
// in [4, 16].
func NewHyperLogLog(precision uint8, opts ...Option) (*HyperLogLog, error) {
	if precision < 4 || precision > 16 {
		return nil, &ConfigError{Param: "precision", Reason: "must be in [4, 16]"}
	}

	cfg := newConfig(opts...)

	return &HyperLogLog{
		registers: make([]uint8, 1<<precision),
		precision: precision,
		logger:    cfg.logger,
	}, nil
}

// Add registers an element.
func (hll *HyperLogLog) Add(data []byte) {
	h := hashutil.Sum64(data)

	idx := h >> (64 - hll.precision)
	remainder := h << hll.precision

	rank := uint8(bits.LeadingZeros64(remainder)) + 1
	if maxRank := uint8(64 - hll.precision + 1); rank > maxRank {
		rank = maxRank
	}

	if rank > hll.registers[idx] {
		hll.registers[idx] = rank
	}
}

// AddString registers a string element.
func (hll *HyperLogLog) AddString(s string) {
	hll.Add([]byte(s))
}

// alpha returns the bias correction constant for m registers.
func alpha(m int) float64 {
	switch m {
	case 16:
		return 0.673
	case 32:
		return 0.697
	case 64:
		return 0.709
	default:
		return 0.7213 / (1 + 1.079/float64(m))
	}
}

// Count returns the estimated number of distinct elements seen so far.
// The raw harmonic-mean estimate is replaced by linear counting while the
// sketch is sparse; with a 64-bit hash no large-range correction is
// needed.
func (hll *HyperLogLog) Count() uint64 {
	m := len(hll.registers)

	var sum float64
	var zeros int
	for _, r := range hll.registers {
		sum += math.Pow(2, -float64(r))
		if r == 0 {
			zeros++
		}
	}

	raw := alpha(m) * float64(m) * float64(m) / sum
	if raw <= 2.5*float64(m) && zeros > 0 {
		hll.logger.Debug("linear counting range",
			"raw", raw,
			"zero registers", zeros,
		)
		return uint64(math.Round(float64(m) * math.Log(float64(m)/float64(zeros))))
	}
	return uint64(math.Round(raw))
}

// Len returns the number of registers.
func (hll *HyperLogLog) Len() uint32 {
	return uint32(len(hll.registers))
}

// SizeBytes returns the size of the registers in bytes.
func (hll *HyperLogLog) SizeBytes() uint32 {
	return uint32(len(hll.registers))
}
