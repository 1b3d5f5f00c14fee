package membership

import "github.com/gakhov/pdsa"

type config struct {
	logger *pdsa.Logger
}

// Option configures a filter.
type Option func(*config)

// WithLogger sets the logger used for diagnostic events, such as counter
// saturation in a counting filter. Defaults to a noop logger.
func WithLogger(logger *pdsa.Logger) Option {
	return func(c *config) {
		c.logger = logger
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
