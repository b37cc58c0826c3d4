package irq

import "errors"

// ErrNotHeld is returned by Exit when no critical section is held.
var ErrNotHeld = errors.New("critical section not held")
