package cardinality

import "fmt"

// ConfigError indicates invalid counter construction parameters.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}
