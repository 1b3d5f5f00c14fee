package rank

import (
	"math/bits"
	"sort"

	"github.com/gakhov/pdsa"
	"github.com/gakhov/pdsa/internal/hashutil"
)

// maxRangeBits caps the digest domain at [0, 2^32-1].
const maxRangeBits = 32

// bucketSizeBytes is the footprint of one retained bucket: a 64-bit node ID
// and a 64-bit count.
const bucketSizeBytes = 16

// QuantileDigest is a q-digest: a sparse summary of a complete binary tree
// over the integer domain [0, 2^R-1]. Node identity doubles as the tree
// pointer (the root is ID 1, the children of id are 2·id and 2·id+1, and
// the canonical leaf for value v is 2^R + v), so the whole structure is a
// single map from node ID to count.
//
// The compression factor k bounds the number of retained buckets: Compress
// folds a bucket into its parent whenever the combined count of the bucket,
// its sibling and its parent does not exceed max(1, ⌊Count()/k⌋). Counts
// are conserved exactly; only the position of a value within an ancestor's
// sub-range is forgotten.
type QuantileDigest struct {
	rangeBits   uint8
	compression uint8
	hashing     bool
	hashSeed    uint8

	total        uint64
	buckets      map[uint64]uint64
	autoCompress bool
	logger       *pdsa.Logger
}

// NewQuantileDigest creates a digest over [0, 2^rangeBits - 1] with the
// given compression factor.
func NewQuantileDigest(rangeBits, compressionFactor uint8, opts ...Option) (*QuantileDigest, error) {
	if compressionFactor < 1 {
		return nil, &ConfigError{Param: "compression factor", Reason: "must be at least 1"}
	}
	if rangeBits < 1 || rangeBits > maxRangeBits {
		return nil, &ConfigError{Param: "range", Reason: "only ranges up to 2^32 are supported"}
	}

	cfg := newConfig(opts...)

	return &QuantileDigest{
		rangeBits:    rangeBits,
		compression:  compressionFactor,
		hashSeed:     cfg.hashSeed,
		buckets:      make(map[uint64]uint64),
		autoCompress: cfg.autoCompress,
		logger:       cfg.logger.WithSketch("qdigest"),
	}, nil
}

// NewQuantileDigestWithHashing creates a digest over the full 32-bit domain
// that routes every input through the seeded hash adapter, so arbitrary
// (non-integer) keys can be summarized. Quantile and rank answers relate to
// the hashed key space.
func NewQuantileDigestWithHashing(compressionFactor uint8, opts ...Option) (*QuantileDigest, error) {
	qd, err := NewQuantileDigest(maxRangeBits, compressionFactor, opts...)
	if err != nil {
		return nil, err
	}
	qd.hashing = true
	return qd, nil
}

// maxValue returns the largest value of the digest's domain.
func (qd *QuantileDigest) maxValue() uint64 {
	return 1<<qd.rangeBits - 1
}

// Add records one element. Values outside [0, 2^rangeBits - 1] are rejected
// with a RangeError; the digest is left unchanged. In hashing mode the
// value is hashed first and cannot be out of range.
func (qd *QuantileDigest) Add(value uint64) error {
	if qd.hashing {
		value = uint64(hashutil.Sum32Uint64(value, qd.hashSeed))
	} else if value > qd.maxValue() {
		return &RangeError{Value: value, Max: qd.maxValue()}
	}

	qd.insert(value)

	if qd.autoCompress {
		qd.Compress()
	}
	return nil
}

// AddBytes records one element given as raw bytes. Only valid in hashing
// mode.
func (qd *QuantileDigest) AddBytes(data []byte) error {
	if !qd.hashing {
		return ErrNotHashing
	}
	qd.insert(uint64(hashutil.Sum32(data, qd.hashSeed)))

	if qd.autoCompress {
		qd.Compress()
	}
	return nil
}

// insert walks from the canonical leaf toward the root until an existing
// bucket is found. If that bucket is the leaf itself, its count grows;
// otherwise the leaf is created with count 1 along with zero-count buckets
// for every ancestor strictly between the leaf and the found bucket, so the
// path from the new data to the nearest retained state stays connected.
func (qd *QuantileDigest) insert(value uint64) {
	leaf := 1<<qd.rangeBits + value

	closest := uint64(0)
	for id := leaf; id >= 1; id >>= 1 {
		if _, ok := qd.buckets[id]; ok {
			closest = id
			break
		}
	}

	if closest == leaf {
		qd.buckets[leaf]++
	} else {
		qd.buckets[leaf] = 1
		for id := leaf >> 1; id > closest; id >>= 1 {
			qd.buckets[id] = 0
		}
	}

	qd.total++
}

// boundary returns the current compression threshold max(1, ⌊total/k⌋).
func (qd *QuantileDigest) boundary() uint64 {
	b := qd.total / uint64(qd.compression)
	if b < 1 {
		b = 1
	}
	return b
}

// Compress folds buckets upward until the q-digest property holds: a
// non-root bucket survives only if its family count (bucket + sibling +
// parent) exceeds the boundary. Levels are walked leaves-first so a bucket
// already folded into its parent is never revisited; zero-count buckets
// are dropped at the end of the pass. Counts are conserved exactly.
//
// Compress is a no-op while the number of retained buckets is within the
// compression factor.
func (qd *QuantileDigest) Compress() {
	if len(qd.buckets) <= int(qd.compression) {
		return
	}

	boundary := qd.boundary()

	// Bucket IDs per tree level; level(id) is the bit length of id.
	byLevel := make([][]uint64, qd.rangeBits+2)
	for id := range qd.buckets {
		level := bits.Len64(id)
		byLevel[level] = append(byLevel[level], id)
	}

	for level := int(qd.rangeBits) + 1; level >= 2; level-- {
		for _, id := range byLevel[level] {
			if _, ok := qd.buckets[id]; !ok {
				// Already folded away as a sibling.
				continue
			}

			sibling := id ^ 1
			parent := id >> 1

			family := qd.buckets[id] + qd.buckets[sibling] + qd.buckets[parent]
			if family > boundary {
				continue
			}

			delete(qd.buckets, id)
			delete(qd.buckets, sibling)
			qd.buckets[parent] = family
		}
	}

	for id, count := range qd.buckets {
		if count == 0 {
			delete(qd.buckets, id)
		}
	}

	qd.logger.Debug("compressed digest",
		"buckets", len(qd.buckets),
		"boundary", boundary,
	)
}

// Finalize implements Estimator by running Compress.
func (qd *QuantileDigest) Finalize() error {
	qd.Compress()
	return nil
}

// Merge folds other into qd by summing bucket counts key-wise and
// recompressing. Both digests must share range, compression factor and
// hashing configuration. other is left unchanged; qd must not be queried
// or written concurrently with the merge.
func (qd *QuantileDigest) Merge(other *QuantileDigest) error {
	if other == nil {
		return nil
	}
	if qd.rangeBits != other.rangeBits {
		return &ConfigError{Param: "range", Reason: "ranges have to be equal"}
	}
	if qd.compression != other.compression {
		return &ConfigError{Param: "compression factor", Reason: "compression factors have to be equal"}
	}
	if qd.hashing != other.hashing || qd.hashSeed != other.hashSeed {
		return &ConfigError{Param: "hashing", Reason: "hashing configurations have to be equal"}
	}

	for id, count := range other.buckets {
		qd.buckets[id] += count
	}
	qd.total += other.total

	qd.Compress()
	return nil
}

// bucketRange holds the sub-range bookkeeping used by queries.
type bucketRange struct {
	id    uint64
	upper uint64
	width uint64
	count uint64
}

// rangeOf computes the sub-range covered by a bucket. A bucket at level L
// selects one of the 2^(L-1) equal subdivisions of [0, 2^R-1]; the leftmost
// same-level sibling covers the lowest values.
func (qd *QuantileDigest) rangeOf(id uint64) (upper, width uint64) {
	level := bits.Len64(id)
	width = uint64(1) << (int(qd.rangeBits) - level + 1)
	lower := (id - 1<<(level-1)) * width
	return lower + width - 1, width
}

// orderedBuckets returns the retained buckets sorted by increasing range
// upper bound, narrower ranges first on ties.
func (qd *QuantileDigest) orderedBuckets() []bucketRange {
	ordered := make([]bucketRange, 0, len(qd.buckets))
	for id, count := range qd.buckets {
		upper, width := qd.rangeOf(id)
		ordered = append(ordered, bucketRange{id: id, upper: upper, width: width, count: count})
	}

	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].upper != ordered[j].upper {
			return ordered[i].upper < ordered[j].upper
		}
		return ordered[i].width < ordered[j].width
	})

	return ordered
}

// Quantile returns the estimated value at quantile q: the upper bound of
// the first bucket, in range order, whose cumulative count exceeds
// q·Count().
func (qd *QuantileDigest) Quantile(q float64) (uint64, error) {
	if q < 0 || q > 1 {
		return 0, &QueryError{Reason: "quantile must be in [0, 1]"}
	}
	if qd.total == 0 {
		return 0, errEmptyQuery()
	}

	target := q * float64(qd.total)

	ordered := qd.orderedBuckets()

	var cumulative uint64
	for _, b := range ordered {
		cumulative += b.count
		if float64(cumulative) > target {
			return b.upper, nil
		}
	}

	return ordered[len(ordered)-1].upper, nil
}

// InverseQuantile returns the estimated rank of value: the summed count of
// every bucket whose sub-range lies strictly below it.
func (qd *QuantileDigest) InverseQuantile(value uint64) (uint64, error) {
	if !qd.hashing && value > qd.maxValue() {
		return 0, &RangeError{Value: value, Max: qd.maxValue()}
	}
	if qd.total == 0 {
		return 0, errEmptyQuery()
	}

	var rank uint64
	for _, b := range qd.orderedBuckets() {
		if b.upper < value {
			rank += b.count
		}
	}
	return rank, nil
}

// Interval returns the estimated number of elements in [start, end),
// start < end.
func (qd *QuantileDigest) Interval(start, end uint64) (uint64, error) {
	if start >= end {
		return 0, &QueryError{Reason: "interval start must be below its end"}
	}

	endRank, err := qd.InverseQuantile(end)
	if err != nil {
		return 0, err
	}
	startRank, err := qd.InverseQuantile(start)
	if err != nil {
		return 0, err
	}
	return endRank - startRank, nil
}

// Len returns the number of retained buckets.
func (qd *QuantileDigest) Len() int {
	return len(qd.buckets)
}

// Count returns the number of elements added so far, duplicates included.
func (qd *QuantileDigest) Count() uint64 {
	return qd.total
}

// SizeBytes returns an estimate of the summary's memory footprint.
func (qd *QuantileDigest) SizeBytes() int {
	return len(qd.buckets) * bucketSizeBytes
}
