package rank

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shrivastavaDigest builds the worked example from the q-digest paper:
// eight values over [0, 7] with a heavily skewed distribution.
func shrivastavaDigest(t *testing.T) *QuantileDigest {
	t.Helper()

	qd, err := NewQuantileDigest(3, 5)
	require.NoError(t, err)

	counts := map[uint64]int{0: 1, 2: 4, 3: 6, 4: 1, 5: 1, 6: 1, 7: 1}
	for value := uint64(0); value <= 7; value++ {
		for i := 0; i < counts[value]; i++ {
			require.NoError(t, qd.Add(value))
		}
	}
	return qd
}

func TestNewQuantileDigest(t *testing.T) {
	qd, err := NewQuantileDigest(16, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, qd.Len())
	assert.Equal(t, uint64(0), qd.Count())

	var cfgErr *ConfigError

	_, err = NewQuantileDigest(16, 0)
	require.Error(t, err)
	assert.True(t, errors.As(err, &cfgErr))

	_, err = NewQuantileDigest(33, 5)
	require.Error(t, err)
	assert.True(t, errors.As(err, &cfgErr))

	_, err = NewQuantileDigest(0, 5)
	require.Error(t, err)
	assert.True(t, errors.As(err, &cfgErr))
}

func TestQuantileDigestAdd(t *testing.T) {
	const rangeBits = 3

	qd, err := NewQuantileDigest(rangeBits, 5)
	require.NoError(t, err)

	for v := uint64(0); v < 1<<rangeBits; v++ {
		require.NoError(t, qd.Add(v))
	}

	// Every canonical leaf plus every ancestor: the full tree.
	assert.Equal(t, 1<<(rangeBits+1)-1, qd.Len())
	assert.Equal(t, uint64(1<<rangeBits), qd.Count())
}

func TestQuantileDigestAddOutOfRange(t *testing.T) {
	qd, err := NewQuantileDigest(3, 5)
	require.NoError(t, err)

	err = qd.Add(1024)
	require.Error(t, err)

	var rangeErr *RangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, uint64(1024), rangeErr.Value)
	assert.Equal(t, uint64(7), rangeErr.Max)

	// The rejected call must leave the digest unchanged.
	assert.Equal(t, 0, qd.Len())
	assert.Equal(t, uint64(0), qd.Count())
}

func TestQuantileDigestLen(t *testing.T) {
	qd, err := NewQuantileDigest(3, 3)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, qd.Add(0))
	}

	// Leaf 0 plus its three ancestors up to the root.
	assert.Equal(t, 4, qd.Len())
}

func TestQuantileDigestSizeBytes(t *testing.T) {
	qd, err := NewQuantileDigest(3, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, qd.SizeBytes())

	for i := 0; i < 10; i++ {
		require.NoError(t, qd.Add(0))
	}
	assert.Equal(t, qd.Len()*16, qd.SizeBytes())

	qd.Compress()
	assert.Equal(t, qd.Len()*16, qd.SizeBytes())
}

func TestQuantileDigestCompress(t *testing.T) {
	qd, err := NewQuantileDigest(3, 3)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, qd.Add(0))
	}
	require.Equal(t, 4, qd.Len())
	require.Equal(t, uint64(10), qd.Count())

	sizeBefore := qd.SizeBytes()
	qd.Compress()

	assert.Less(t, qd.SizeBytes(), sizeBefore)
	assert.Equal(t, 1, qd.Len())
	assert.Equal(t, uint64(10), qd.Count())

	require.NoError(t, qd.Add(7))
	assert.Equal(t, 5, qd.Len())
	assert.Equal(t, uint64(11), qd.Count())

	sizeBefore = qd.SizeBytes()
	qd.Compress()

	assert.Less(t, qd.SizeBytes(), sizeBefore)
	assert.Equal(t, 2, qd.Len())
	assert.Equal(t, uint64(11), qd.Count())
}

func TestQuantileDigestCompressShrivastavaExample(t *testing.T) {
	qd := shrivastavaDigest(t)

	require.Equal(t, 14, qd.Len())
	require.Equal(t, uint64(15), qd.Count())

	qd.Compress()

	assert.Equal(t, 5, qd.Len())
	assert.Equal(t, uint64(15), qd.Count())
}

func TestQuantileDigestQueriesShrivastavaExample(t *testing.T) {
	qd := shrivastavaDigest(t)
	qd.Compress()

	median, err := qd.Quantile(0.5)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), median)

	rank, err := qd.InverseQuantile(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), rank)

	p85, err := qd.Quantile(0.85)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), p85)

	rank, err = qd.InverseQuantile(5)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), rank)

	n, err := qd.Interval(3, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), n)
}

func TestQuantileDigestQueryEmpty(t *testing.T) {
	qd, err := NewQuantileDigest(3, 5)
	require.NoError(t, err)

	_, err = qd.Quantile(0.5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmpty)

	var queryErr *QueryError
	assert.True(t, errors.As(err, &queryErr))

	_, err = qd.InverseQuantile(3)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestQuantileDigestQueryValidation(t *testing.T) {
	qd := shrivastavaDigest(t)

	var queryErr *QueryError

	_, err := qd.Quantile(1.5)
	require.Error(t, err)
	assert.True(t, errors.As(err, &queryErr))

	_, err = qd.Quantile(-0.1)
	require.Error(t, err)

	var rangeErr *RangeError
	_, err = qd.InverseQuantile(9)
	require.Error(t, err)
	assert.True(t, errors.As(err, &rangeErr))

	_, err = qd.Interval(5, 5)
	require.Error(t, err)
	assert.True(t, errors.As(err, &queryErr))

	_, err = qd.Interval(6, 2)
	require.Error(t, err)
}

func TestQuantileDigestConservation(t *testing.T) {
	qd, err := NewQuantileDigest(8, 5)
	require.NoError(t, err)

	sumBuckets := func() uint64 {
		var sum uint64
		for _, c := range qd.buckets {
			sum += c
		}
		return sum
	}

	for i := 0; i < 500; i++ {
		require.NoError(t, qd.Add(uint64(i*37%256)))
		if i%50 == 0 {
			qd.Compress()
		}
		require.Equal(t, qd.Count(), sumBuckets())
	}

	qd.Compress()
	assert.Equal(t, uint64(500), qd.Count())
	assert.Equal(t, qd.Count(), sumBuckets())
}

func TestQuantileDigestRankConsistency(t *testing.T) {
	qd, err := NewQuantileDigest(6, 4)
	require.NoError(t, err)

	for i := 0; i < 300; i++ {
		require.NoError(t, qd.Add(uint64(i*13%64)))
	}
	qd.Compress()

	var prev uint64
	for v := uint64(0); v < 64; v++ {
		rank, err := qd.InverseQuantile(v)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rank, prev, "rank must be non-decreasing")
		prev = rank
	}

	for _, bounds := range [][2]uint64{{0, 10}, {5, 40}, {32, 63}} {
		a, b := bounds[0], bounds[1]
		interval, err := qd.Interval(a, b)
		require.NoError(t, err)

		rankA, err := qd.InverseQuantile(a)
		require.NoError(t, err)
		rankB, err := qd.InverseQuantile(b)
		require.NoError(t, err)

		assert.Equal(t, rankB-rankA, interval)
	}
}

func TestQuantileDigestAutoCompress(t *testing.T) {
	qd, err := NewQuantileDigest(8, 5, WithAutoCompress())
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		require.NoError(t, qd.Add(uint64(i % 256)))
	}

	assert.Equal(t, uint64(1000), qd.Count())
	// The whole point of auto-compression: the summary never grows far
	// beyond the compression factor.
	assert.Less(t, qd.Len(), 64)
}

func TestQuantileDigestMergeEmpty(t *testing.T) {
	qd1, err := NewQuantileDigest(3, 5)
	require.NoError(t, err)
	qd2, err := NewQuantileDigest(3, 5)
	require.NoError(t, err)

	require.NoError(t, qd1.Merge(qd2))

	assert.Equal(t, 0, qd1.Len())
	assert.Equal(t, uint64(0), qd1.Count())
}

func TestQuantileDigestMergeIncompatible(t *testing.T) {
	var cfgErr *ConfigError

	qd1, _ := NewQuantileDigest(3, 5)
	qd2, _ := NewQuantileDigest(3, 2)

	err := qd1.Merge(qd2)
	require.Error(t, err)
	assert.True(t, errors.As(err, &cfgErr))

	qd1, _ = NewQuantileDigest(3, 5)
	qd2, _ = NewQuantileDigest(4, 5)

	err = qd1.Merge(qd2)
	require.Error(t, err)
	assert.True(t, errors.As(err, &cfgErr))
}

func TestQuantileDigestMerge(t *testing.T) {
	qd1, err := NewQuantileDigest(3, 5)
	require.NoError(t, err)

	counts1 := []int{8, 8, 4, 1, 5, 3, 5, 2}
	for value, n := range counts1 {
		for i := 0; i < n; i++ {
			require.NoError(t, qd1.Add(uint64(value)))
		}
	}
	count1 := qd1.Count()
	qd1.Compress()

	qd2, err := NewQuantileDigest(3, 5)
	require.NoError(t, err)

	counts2 := []int{10, 12, 8, 20}
	for value, n := range counts2 {
		for i := 0; i < n; i++ {
			require.NoError(t, qd2.Add(uint64(value)))
		}
	}
	count2 := qd2.Count()
	qd2.Compress()

	require.NoError(t, qd1.Merge(qd2))

	assert.Equal(t, count1+count2, qd1.Count())
	assert.Equal(t, 6, qd1.Len())
}

func TestQuantileDigestMergeCommutes(t *testing.T) {
	build := func(values []uint64) *QuantileDigest {
		qd, err := NewQuantileDigest(4, 3)
		require.NoError(t, err)
		for _, v := range values {
			require.NoError(t, qd.Add(v))
		}
		qd.Compress()
		return qd
	}

	left := []uint64{0, 1, 1, 2, 3, 5, 8, 13}
	right := []uint64{2, 4, 6, 8, 10, 12, 14, 15, 15}

	ab1, ab2 := build(left), build(right)
	require.NoError(t, ab1.Merge(ab2))

	ba1, ba2 := build(right), build(left)
	require.NoError(t, ba1.Merge(ba2))

	assert.Equal(t, ab1.Count(), ba1.Count())
	assert.Equal(t, ab1.buckets, ba1.buckets)
}

func TestQuantileDigestHashing(t *testing.T) {
	qd, err := NewQuantileDigestWithHashing(5, WithHashSeed(42))
	require.NoError(t, err)

	for i := uint64(0); i < 100; i++ {
		require.NoError(t, qd.Add(i))
	}
	require.NoError(t, qd.AddBytes([]byte("test")))

	assert.Equal(t, uint64(101), qd.Count())

	// Hashed inputs land anywhere in the 32-bit domain; the median of 101
	// uniform hashes sits near the middle of it.
	median, err := qd.Quantile(0.5)
	require.NoError(t, err)
	assert.Greater(t, median, uint64(1)<<28)
	assert.Less(t, median, uint64(1)<<32-uint64(1)<<28)
}

func TestQuantileDigestHashingDeterministic(t *testing.T) {
	build := func() *QuantileDigest {
		qd, err := NewQuantileDigestWithHashing(200, WithHashSeed(7))
		require.NoError(t, err)
		for i := uint64(0); i < 50; i++ {
			require.NoError(t, qd.Add(i))
		}
		return qd
	}

	a, b := build(), build()
	qa, err := a.Quantile(0.25)
	require.NoError(t, err)
	qb, err := b.Quantile(0.25)
	require.NoError(t, err)
	assert.Equal(t, qa, qb)
}

func TestQuantileDigestAddBytesRequiresHashing(t *testing.T) {
	qd, err := NewQuantileDigest(16, 5)
	require.NoError(t, err)

	err = qd.AddBytes([]byte("test"))
	assert.ErrorIs(t, err, ErrNotHashing)
}

func TestQuantileDigestMergeHashingSeeds(t *testing.T) {
	qd1, err := NewQuantileDigestWithHashing(5, WithHashSeed(1))
	require.NoError(t, err)
	qd2, err := NewQuantileDigestWithHashing(5, WithHashSeed(2))
	require.NoError(t, err)

	var cfgErr *ConfigError
	err = qd1.Merge(qd2)
	require.Error(t, err)
	assert.True(t, errors.As(err, &cfgErr))
}
