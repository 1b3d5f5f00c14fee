package cardinality

import "github.com/gakhov/pdsa"

type config struct {
	logger           *pdsa.Logger
	smallCardinality bool
}

// Option configures a counter.
type Option func(*config)

// WithLogger sets the logger used for diagnostic events. Defaults to a
// noop logger.
func WithLogger(logger *pdsa.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithSmallCardinalityCorrection enables the correction term that removes
// the bias of a ProbabilisticCounter on small streams. Other counters
// ignore it.
func WithSmallCardinalityCorrection() Option {
	return func(c *config) {
		c.smallCardinality = true
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		logger: pdsa.NoopLogger(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
