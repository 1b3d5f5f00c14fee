package rank_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gakhov/pdsa/rank"
)

// estimators builds one instance of every rank estimator, all configured for
// small values so the behavioral contract can be checked uniformly.
func estimators(t *testing.T) map[string]rank.Estimator {
	t.Helper()

	qd, err := rank.NewQuantileDigest(8, 5)
	require.NoError(t, err)

	rs, err := rank.NewRandomSampling(16, 32, 3,
		rank.WithRand(rand.New(rand.NewSource(1)))) //nolint:gosec
	require.NoError(t, err)

	return map[string]rank.Estimator{
		"qdigest": qd,
		"random":  rs,
	}
}

func TestEstimatorEmpty(t *testing.T) {
	for name, est := range estimators(t) {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, uint64(0), est.Count())

			_, err := est.Quantile(0.5)
			assert.ErrorIs(t, err, rank.ErrEmpty)

			_, err = est.InverseQuantile(10)
			assert.ErrorIs(t, err, rank.ErrEmpty)
		})
	}
}

func TestEstimatorContract(t *testing.T) {
	rng := rand.New(rand.NewSource(99)) //nolint:gosec
	stream := make([]uint64, 500)
	for i := range stream {
		stream[i] = uint64(rng.Intn(256))
	}

	for name, est := range estimators(t) {
		t.Run(name, func(t *testing.T) {
			for _, v := range stream {
				require.NoError(t, est.Add(v))
			}
			require.NoError(t, est.Finalize())
			require.NoError(t, est.Finalize(), "finalize must be idempotent")

			assert.Equal(t, uint64(len(stream)), est.Count())
			assert.Greater(t, est.Len(), 0)
			assert.Greater(t, est.SizeBytes(), 0)

			// Ranks grow with the value.
			var prev uint64
			for v := uint64(0); v < 256; v += 16 {
				r, err := est.InverseQuantile(v)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, r, prev)
				prev = r
			}

			// An interval count is exactly the difference of its endpoint
			// ranks.
			lo, err := est.InverseQuantile(64)
			require.NoError(t, err)
			hi, err := est.InverseQuantile(192)
			require.NoError(t, err)
			n, err := est.Interval(64, 192)
			require.NoError(t, err)
			assert.Equal(t, hi-lo, n)

			// Quantiles are monotone in q.
			var prevQ uint64
			for _, q := range []float64{0, 0.25, 0.5, 0.75, 1} {
				v, err := est.Quantile(q)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, v, prevQ)
				prevQ = v
			}
		})
	}
}
