package rank

import (
	"math"
	"math/rand"
	"slices"
	"sort"

	"github.com/gakhov/pdsa"
)

// RandomSampling is an MRL (Manku-Rajagopalan-Lindsay) buffer sampler in
// its simplified "Random" variant: a fixed set of equal-capacity buffers,
// each tagged with a level L meaning every element in it stands for 2^L
// elements of the original stream. Incoming elements stage in an unbounded
// queue and are committed in batches sized by the current active level;
// when no buffer is free, two buffers of the lowest doubly-occupied level
// collapse into one at the next level via randomized thinning, which keeps
// the per-element survival probability at 1/2 per collapse and the sample
// unbiased.
//
// Unlike the digest, the sampler imposes no domain restriction: values are
// only ordered, never range-checked.
type RandomSampling struct {
	height   int
	capacity int

	buffers [][]uint64
	levels  []int
	queue   []uint64
	seen    uint64

	rand   *rand.Rand
	logger *pdsa.Logger
}

// NewRandomSampling creates a sampler with the given number of buffers,
// per-buffer capacity and height.
func NewRandomSampling(numBuffers, bufferCapacity, height int, opts ...Option) (*RandomSampling, error) {
	if bufferCapacity < 1 {
		return nil, &ConfigError{Param: "buffer capacity", Reason: "must be at least 1"}
	}
	if numBuffers < 2 {
		return nil, &ConfigError{Param: "number of buffers", Reason: "must be at least 2"}
	}
	if height < 1 {
		return nil, &ConfigError{Param: "height", Reason: "must be at least 1"}
	}

	cfg := newConfig(opts...)

	return &RandomSampling{
		height:   height,
		capacity: bufferCapacity,
		buffers:  make([][]uint64, numBuffers),
		levels:   make([]int, numBuffers),
		rand:     cfg.rand,
		logger:   cfg.logger.WithSketch("random_sampling"),
	}, nil
}

// NewRandomSamplingFromError derives the sampler's structural parameters
// from a target rank error rate in (0, 1): height = ⌈log2(1/ε)⌉, one buffer
// per level plus one, and capacity ⌈√height/ε⌉.
func NewRandomSamplingFromError(errorRate float64, opts ...Option) (*RandomSampling, error) {
	if errorRate <= 0 || errorRate >= 1 {
		return nil, &ConfigError{Param: "error rate", Reason: "must be in (0, 1)"}
	}

	height := int(math.Ceil(math.Log2(1 / errorRate)))
	if height < 1 {
		height = 1
	}
	capacity := int(math.Ceil(math.Sqrt(float64(height)) / errorRate))

	return NewRandomSampling(height+1, capacity, height, opts...)
}

// Add stages one element and commits the queue once it reaches the size
// required by the current active level. It never fails; the error return
// satisfies Estimator.
func (rs *RandomSampling) Add(value uint64) error {
	rs.queue = append(rs.queue, value)
	rs.seen++
	rs.commit(false)
	return nil
}

// activeLevel computes the level newly committed buffers are tagged with:
// max(0, ⌈log2(seen/capacity)⌉ - height + 1). It grows as the stream
// outgrows the buffer budget, which in turn grows the batch size a commit
// waits for.
func (rs *RandomSampling) activeLevel() int {
	if rs.seen == 0 {
		return 0
	}
	level := int(math.Ceil(math.Log2(float64(rs.seen)/float64(rs.capacity)))) - rs.height + 1
	if level < 0 {
		return 0
	}
	return level
}

// commit moves the staged queue into a free buffer. Without force it waits
// until the queue holds 2^L·capacity elements; batches larger than the
// buffer capacity are down-sampled uniformly to exactly capacity elements.
// Buffer contents are kept sorted.
func (rs *RandomSampling) commit(force bool) {
	if len(rs.queue) == 0 {
		return
	}

	level := rs.activeLevel()
	batchSize := (1 << level) * rs.capacity
	if !force && len(rs.queue) < batchSize {
		return
	}

	batch := rs.queue
	rs.queue = nil

	if len(batch) > rs.capacity {
		rs.rand.Shuffle(len(batch), func(i, j int) {
			batch[i], batch[j] = batch[j], batch[i]
		})
		batch = batch[:rs.capacity]
	}
	slices.Sort(batch)

	idx := rs.findEmptyBuffer()
	rs.buffers[idx] = batch
	rs.levels[idx] = level

	rs.logger.Debug("committed buffer",
		"buffer", idx,
		"level", level,
		"elements", len(batch),
	)
}

// findEmptyBuffer returns the index of an unoccupied buffer, collapsing
// two occupied ones first if every buffer is full.
func (rs *RandomSampling) findEmptyBuffer() int {
	for i, b := range rs.buffers {
		if len(b) == 0 {
			return i
		}
	}

	return rs.collapse()
}

// collapse merges two buffers of the lowest level that holds at least two
// occupied buffers (chosen uniformly at random among that level's buffers)
// into one buffer at level+1, freeing the other. The merged, sorted
// contents are thinned by keeping every other element starting from a
// random offset in {0, 1} until they fit the buffer capacity, so each
// element survives with probability 1/2 per collapse.
//
// If no level holds two buffers, the two lowest-level buffers collapse
// instead, tagged one above the higher of their levels.
func (rs *RandomSampling) collapse() int {
	dst, src := rs.buffersToCollapse()

	level := max(rs.levels[dst], rs.levels[src])

	merged := make([]uint64, 0, len(rs.buffers[dst])+len(rs.buffers[src]))
	merged = append(merged, rs.buffers[dst]...)
	merged = append(merged, rs.buffers[src]...)
	slices.Sort(merged)

	for len(merged) > rs.capacity {
		offset := rs.rand.Intn(2)
		thinned := make([]uint64, 0, (len(merged)+1)/2)
		for i := offset; i < len(merged); i += 2 {
			thinned = append(thinned, merged[i])
		}
		merged = thinned
	}

	rs.buffers[dst] = merged
	rs.levels[dst] = level + 1
	rs.buffers[src] = nil
	rs.levels[src] = 0

	rs.logger.Debug("collapsed buffers",
		"into", dst,
		"freed", src,
		"level", level+1,
	)

	return src
}

// buffersToCollapse picks the two occupied buffers to merge.
func (rs *RandomSampling) buffersToCollapse() (dst, src int) {
	byLevel := make(map[int][]int)
	lowestPair := -1
	for i, b := range rs.buffers {
		if len(b) == 0 {
			continue
		}
		level := rs.levels[i]
		byLevel[level] = append(byLevel[level], i)
		if len(byLevel[level]) >= 2 && (lowestPair == -1 || level < lowestPair) {
			lowestPair = level
		}
	}

	if lowestPair >= 0 {
		candidates := byLevel[lowestPair]
		i := rs.rand.Intn(len(candidates))
		j := rs.rand.Intn(len(candidates) - 1)
		if j >= i {
			j++
		}
		return candidates[i], candidates[j]
	}

	// Every occupied buffer sits on its own level; fall back to the two
	// lowest ones.
	occupied := make([]int, 0, len(rs.buffers))
	for i, b := range rs.buffers {
		if len(b) > 0 {
			occupied = append(occupied, i)
		}
	}
	sort.Slice(occupied, func(a, b int) bool {
		return rs.levels[occupied[a]] < rs.levels[occupied[b]]
	})
	return occupied[0], occupied[1]
}

// Finalize commits any queued elements so queries see the whole stream.
func (rs *RandomSampling) Finalize() error {
	rs.commit(true)
	return nil
}

// weightedRank returns the estimated rank of value across the committed
/// buffers: per buffer, the number of elements strictly below value times
// the buffer's 2^level weight.
func (rs *RandomSampling) weightedRank(value uint64) uint64 {
	var rank uint64
	for i, b := range rs.buffers {
		if len(b) == 0 {
			continue
		}
		below := sort.Search(len(b), func(k int) bool {
			return b[k] >= value
		})
		rank += uint64(below) << rs.levels[i]
	}
	return rank
}

// Quantile returns the retained element whose estimated rank is closest to
// q·Count(); the first minimum wins, with elements visited in ascending
// order.
func (rs *RandomSampling) Quantile(q float64) (uint64, error) {
	if q < 0 || q > 1 {
		return 0, &QueryError{Reason: "quantile must be in [0, 1]"}
	}
	if rs.seen == 0 {
		return 0, errEmptyQuery()
	}
	rs.commit(true)

	target := q * float64(rs.seen)

	var elements []uint64
	for _, b := range rs.buffers {
		elements = append(elements, b...)
	}
	slices.Sort(elements)
	elements = slices.Compact(elements)

	best := elements[0]
	bestDiff := math.Inf(1)
	for _, e := range elements {
		diff := math.Abs(float64(rs.weightedRank(e)) - target)
		if diff < bestDiff {
			best = e
			bestDiff = diff
		}
	}
	return best, nil
}

// InverseQuantile returns the estimated rank of value: the weighted number
// of retained elements strictly below it.
func (rs *RandomSampling) InverseQuantile(value uint64) (uint64, error) {
	if rs.seen == 0 {
		return 0, errEmptyQuery()
	}
	rs.commit(true)

	return rs.weightedRank(value), nil
}

// Interval returns the estimated number of elements in [start, end),
// start < end.
func (rs *RandomSampling) Interval(start, end uint64) (uint64, error) {
	if start >= end {
		return 0, &QueryError{Reason: "interval start must be below its end"}
	}

	endRank, err := rs.InverseQuantile(end)
	if err != nil {
		return 0, err
	}
	startRank, err := rs.InverseQuantile(start)
	if err != nil {
		return 0, err
	}
	return endRank - startRank, nil
}

// Len returns the number of occupied buffers.
func (rs *RandomSampling) Len() int {
	var n int
	for _, b := range rs.buffers {
		if len(b) > 0 {
			n++
		}
	}
	return n
}

// Count returns the number of elements added so far, queued elements
// included.
func (rs *RandomSampling) Count() uint64 {
	return rs.seen
}

/// SizeBytes returns an estimate of the sampler's memory footprint: the
// element slots and level tags of every buffer plus the staged queue.
func (rs *RandomSampling) SizeBytes() int {
	return len(rs.buffers)*rs.capacity*8 + len(rs.buffers)*8 + len(rs.queue)*8
}
