package console

import (
	"errors"
	"fmt"
)

// Sentinel errors for the console package.
var (
	// ErrNoTerminals is returned when the console is configured with no terminals.
	ErrNoTerminals = errors.New("no terminals configured")

	// ErrGeometryMismatch is returned when the display size differs from the page geometry.
	ErrGeometryMismatch = errors.New("display size does not match geometry")
)

// OpError records a failed console operation on a terminal.
type OpError struct {
	Op       string // "write", "create", "clear"
	Terminal int
	Err      error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("console %s terminal %d: %v", e.Op, e.Terminal, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
