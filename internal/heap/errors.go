package heap

import (
	"errors"
	"fmt"
)

// ErrOutOfMemory is returned when the arena has no room for another page.
var ErrOutOfMemory = errors.New("out of memory")

// AllocError describes a failed allocation.
type AllocError struct {
	Requested int    // bytes requested
	InUse     uint64 // bytes held by live pages at the time
	Err       error
}

func (e *AllocError) Error() string {
	return fmt.Sprintf("allocating %d bytes (%d in use): %v", e.Requested, e.InUse, e.Err)
}

// Unwrap returns the underlying error.
func (e *AllocError) Unwrap() error {
	return e.Err
}
