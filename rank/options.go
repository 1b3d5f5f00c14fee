package rank

import (
	"math/rand"
	"time"

	"github.com/gakhov/pdsa"
)

type config struct {
	logger       *pdsa.Logger
	rand         *rand.Rand
	hashSeed     uint8
	autoCompress bool
}

// Option configures estimator construction.
type Option func(*config)

// WithLogger sets the logger used for debug-level compression and collapse
// events. The default discards all output.
func WithLogger(l *pdsa.Logger) Option {
	return func(c *config) {
		if l == nil {
			l = pdsa.NoopLogger()
		}
		c.logger = l
	}
}

// WithRand sets the random source used by RandomSampling for buffer
// selection, batch sampling and thinning offsets. Inject a seeded source
// for reproducible behavior; the default is time-seeded.
func WithRand(r *rand.Rand) Option {
	return func(c *config) {
		if r != nil {
			c.rand = r
		}
	}
}

// WithHashSeed sets the seed of the hash adapter used by a hashing-mode
// QuantileDigest. Digests must share a seed to be mergeable.
func WithHashSeed(seed uint8) Option {
	return func(c *config) {
		c.hashSeed = seed
	}
}

// WithAutoCompress makes a QuantileDigest run Compress after every Add
// instead of on demand.
func WithAutoCompress() Option {
	return func(c *config) {
		c.autoCompress = true
	}
}

func newConfig(opts ...Option) config {
	c := config{
		logger: pdsa.NoopLogger(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.rand == nil {
		c.rand = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec
	}
	return c
}
