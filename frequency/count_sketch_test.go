package frequency

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCountSketch(t *testing.T) {
	cs, err := NewCountSketch(3, 2000)
	require.NoError(t, err)
	assert.Equal(t, uint64(6000), cs.Len())
	assert.Equal(t, uint64(24000), cs.SizeBytes())

	var cfgErr *ConfigError

	_, err = NewCountSketch(0, 2000)
	require.Error(t, err)
	assert.True(t, errors.As(err, &cfgErr))

	_, err = NewCountSketch(129, 2000)
	require.Error(t, err)
	assert.True(t, errors.As(err, &cfgErr))

	_, err = NewCountSketch(3, 0)
	require.Error(t, err)
	assert.True(t, errors.As(err, &cfgErr))
}

func TestNewCountSketchFromError(t *testing.T) {
	cs, err := NewCountSketchFromError(0.01, 0.1)
	require.NoError(t, err)

	// w = ceil(e/0.01²) = 27183, d = ceil(ln 10) = 3.
	assert.Equal(t, uint8(3), cs.numArrays)
	assert.Equal(t, uint32(27183), cs.length)

	for _, bad := range []float64{0, 1, -0.5} {
		_, err = NewCountSketchFromError(bad, 0.1)
		require.Error(t, err, "deviation %v must be rejected", bad)

		_, err = NewCountSketchFromError(0.01, bad)
		require.Error(t, err, "error rate %v must be rejected", bad)
	}

	_, err = NewCountSketchFromError(2e-5, 0.1)
	require.Error(t, err, "width beyond 32-bit addressing must be rejected")
}

func TestCountSketchFrequency(t *testing.T) {
	cs, err := NewCountSketchFromError(0.01, 0.1)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		for n := 0; n <= i; n++ {
			cs.AddString(fmt.Sprintf("element-%d", i))
		}
	}

	for i := 0; i < 100; i++ {
		est := cs.FrequencyString(fmt.Sprintf("element-%d", i))
		assert.InDelta(t, i+1, float64(est), 3)
	}
}

func TestCountSketchUnseen(t *testing.T) {
	cs, err := NewCountSketchFromError(0.01, 0.1)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		cs.AddString(fmt.Sprintf("element-%d", i))
	}

	assert.Equal(t, uint32(0), cs.FrequencyString("never added"))
}

func TestCountSketchSkewedStream(t *testing.T) {
	cs, err := NewCountSketchFromError(0.01, 0.1)
	require.NoError(t, err)

	// One heavy hitter over a long tail.
	for i := 0; i < 10000; i++ {
		cs.AddString("heavy")
	}
	for i := 0; i < 1000; i++ {
		cs.AddString(fmt.Sprintf("tail-%d", i))
	}

	assert.InEpsilon(t, 10000, cs.FrequencyString("heavy"), 0.01)
}
