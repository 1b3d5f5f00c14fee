package rank

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned (wrapped in a QueryError) when a query is made
	// against an estimator that has seen no elements.
	ErrEmpty = errors.New("estimator is empty")

	// ErrNotHashing is returned when byte input is added to a digest that
	// was not created in hashing mode.
	ErrNotHashing = errors.New("digest was not created with hashing")
)

// ConfigError indicates invalid construction parameters or an attempt to
// merge estimators with incompatible parameters.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

// RangeError indicates a value outside the digest's configured domain.
//
// Max is the largest representable value, 2^rangeBits - 1.
type RangeError struct {
	Value uint64
	Max   uint64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("value %d out of range [0, %d]", e.Value, e.Max)
}

// QueryError indicates an out-of-contract query: an empty estimator, a
// quantile outside [0, 1] or a malformed interval.
//
// The underlying condition (if any) can be accessed via errors.Unwrap.
type QueryError struct {
	Reason string
	cause  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid query: %s", e.Reason)
}

func (e *QueryError) Unwrap() error { return e.cause }

func errEmptyQuery() error {
	return &QueryError{Reason: "estimator holds no elements", cause: ErrEmpty}
}
