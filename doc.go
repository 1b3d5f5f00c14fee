// Package pdsa provides probabilistic data structures and algorithms for
// streaming applications: approximate answers to rank, quantile, frequency,
// cardinality and membership queries over large or unbounded sequences of
// values, in sub-linear memory.
//
// The structures are grouped by the question they answer:
//
//   - rank: value-at-quantile, rank-of-value and interval-count estimation
//     (QuantileDigest, RandomSampling)
//   - frequency: per-element occurrence counting (CountMinSketch, CountSketch)
//   - cardinality: distinct-element counting (LinearCounter,
//     ProbabilisticCounter, HyperLogLog)
//   - membership: set membership with false positives (BloomFilter,
//     CountingBloomFilter)
//
// # Quick Start
//
//	qd, _ := rank.NewQuantileDigest(16, 5)
//	for _, v := range values {
//	    qd.Add(v)
//	}
//	qd.Compress()
//	median, _ := qd.Quantile(0.5)
//
// # Accuracy Model
//
// Every structure trades exactness for bounded memory. Constructors either
// take explicit structural parameters or derive them from a target error
// rate (NewRandomSamplingFromError, NewBloomFilterFromCapacity,
// NewCountMinSketchFromError). Queries are deterministic given the
// structure's state; the error bounds are probabilistic guarantees over the
// input stream.
//
// # Concurrency
//
// The structures perform no internal locking. A single writer at a time is
// assumed; wrap calls in a mutex if multiple goroutines feed one instance.
package pdsa
