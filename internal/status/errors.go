package status

import "errors"

// ErrColumnOutOfRange is returned when a field starts past the right edge
// of the status row. Nothing is written.
var ErrColumnOutOfRange = errors.New("status column out of range")
