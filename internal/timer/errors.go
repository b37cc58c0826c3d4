package timer

import "errors"

var (
	// ErrZeroPeriod is returned when registering a callback with Period 0.
	ErrZeroPeriod = errors.New("timer: period must be positive")

	// ErrNilFunc is returned when registering a callback without a function.
	ErrNilFunc = errors.New("timer: nil callback function")
)
