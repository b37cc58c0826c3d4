package irq

// Guard is a scoped critical section. The usual pattern is
//
//	g := ctl.Acquire()
//	defer g.Release()
//
// Release is idempotent, so an early explicit Release followed by the
// deferred one is harmless.
type Guard struct {
	c        *Controller
	released bool
}

// Acquire enters a critical section and returns its guard.
func (c *Controller) Acquire() *Guard {
	c.Enter()
	return &Guard{c: c}
}

// Release leaves the critical section once.
func (g *Guard) Release() {
	if g == nil || g.released {
		return
	}
	g.released = true
	_ = g.c.Exit()
}

// Held reports whether the guard still holds its section.
func (g *Guard) Held() bool {
	return g != nil && !g.released
}
