// Package rank provides streaming rank and quantile estimation over bounded
// memory: "what value sits at quantile q", "what is the rank of value x" and
// "how many values fall in [a, b)" answered from a compact summary of a
// data stream.
//
// Two independent estimators implement the same query contract (Estimator):
//
//   - QuantileDigest, a q-digest: a sparse, implicitly indexed binary tree
//     over the integer domain [0, 2^R-1] whose buckets are merged upward
//     under a provable compression invariant. Deterministic, mergeable,
//     integer domain only.
//   - RandomSampling, an MRL buffer sampler: a fixed set of equal-capacity
//     buffers whose elements carry power-of-two weights assigned by
//     randomized collapses. Works on any ordered values, no domain bound.
//
// Both are single-writer structures with no internal locking (wrap access
// in a mutex to share an instance between goroutines). Queries on an empty
// estimator return a QueryError wrapping ErrEmpty rather than a zero.
package rank
