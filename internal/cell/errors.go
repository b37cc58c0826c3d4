package cell

import (
	"errors"
	"fmt"
)

// ErrUnknownColor is returned by ParseColor for names outside the palette.
var ErrUnknownColor = errors.New("unknown color")

// GeometryError describes an invalid geometry field.
type GeometryError struct {
	Field  string
	Value  int
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("invalid geometry: %s=%d %s", e.Field, e.Value, e.Reason)
}
