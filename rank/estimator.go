package rank

// Estimator is the query contract shared by the rank estimators. The two
// implementations are unrelated internally; only this capability set is
// common.
type Estimator interface {
	// Add records one element of the stream.
	Add(value uint64) error

	// Finalize settles any buffered state so that subsequent queries see
	// every added element (the digest compresses, the sampler flushes its
	// queue). Queries call it implicitly; it is exposed for callers that
	// want to pay the cost at a time of their choosing.
	Finalize() error

	// Quantile returns the estimated value at quantile q, q in [0, 1].
	Quantile(q float64) (uint64, error)

	// InverseQuantile returns the estimated rank of value: the number of
	// added elements strictly below it.
	InverseQuantile(value uint64) (uint64, error)

	// Interval returns the estimated number of elements in [start, end),
	// start < end.
	Interval(start, end uint64) (uint64, error)

	// Count returns the number of elements added so far.
	Count() uint64

	// Len returns the number of retained buckets or occupied buffers.
	Len() int

	// SizeBytes returns an estimate of the summary's memory footprint.
	SizeBytes() int
}

var (
	_ Estimator = (*QuantileDigest)(nil)
	_ Estimator = (*RandomSampling)(nil)
)
