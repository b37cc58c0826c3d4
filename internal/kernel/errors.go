package kernel

import "errors"

// ErrBoot wraps failures while bringing the console up.
var ErrBoot = errors.New("boot failed")
