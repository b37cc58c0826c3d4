// Package irq models interrupt masking and delivery for a single logical CPU.
//
// All console code runs on one goroutine, the CPU. Interrupt sources (the
// timer ticker, the keyboard poller) run on their own goroutines and may only
// call Raise. The CPU delivers pending lines at safe points: when the idle
// loop calls Service, or when the outermost critical section is released.
// While any critical section is held, nothing is delivered, so code inside
// Enter/Exit is atomic with respect to every handler.
//
// Enter and Exit nest. A handler runs with delivery masked, exactly as an
// interrupt gate clears the interrupt flag, and may itself enter and exit
// critical sections.
package irq

import (
	"sync/atomic"

	"github.com/dshills/vtcon/internal/logging"
)

// Line identifies an interrupt request line.
type Line uint8

// Interrupt lines used by the console.
const (
	LineTimer    Line = 0
	LineKeyboard Line = 1

	// LineLog is a software line raised when log output is waiting to be
	// copied onto the log terminal.
	LineLog Line = 2

	numLines = 8
)

// String returns a short name for the line.
func (l Line) String() string {
	switch l {
	case LineTimer:
		return "timer"
	case LineKeyboard:
		return "keyboard"
	case LineLog:
		return "log"
	default:
		return "irq" + string(rune('0'+l))
	}
}

// Handler services one interrupt line.
type Handler func()

// Controller is the interrupt controller plus the CPU's interrupt flag.
type Controller struct {
	depth      int
	delivering bool
	handlers   [numLines]Handler

	pending atomic.Uint32
	wake    chan struct{}

	delivered [numLines]uint64
	misuse    uint64

	log *logging.Logger
}

// New creates a controller with delivery enabled.
func New(log *logging.Logger) *Controller {
	if log == nil {
		log = logging.Discard()
	}
	return &Controller{
		wake: make(chan struct{}, 1),
		log:  log.WithComponent("irq"),
	}
}

// Handle installs h for line. Installing nil masks the line permanently.
func (c *Controller) Handle(line Line, h Handler) {
	g := c.Acquire()
	defer g.Release()
	c.handlers[line%numLines] = h
}

// Raise marks line pending and wakes the CPU. It is safe to call from any
// goroutine.
func (c *Controller) Raise(line Line) {
	c.pending.Or(uint32(1) << (line % numLines))
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Wake returns the channel signalled whenever a line is raised. The CPU idle
// loop selects on it and then calls Service.
func (c *Controller) Wake() <-chan struct{} {
	return c.wake
}

// Enter masks delivery and increments the nesting depth.
func (c *Controller) Enter() {
	c.depth++
}

// Exit decrements the nesting depth. When it returns to zero, delivery is
// re-enabled and pending lines are serviced. Exit without a matching Enter
// is reported and leaves the depth at zero.
func (c *Controller) Exit() error {
	if c.depth <= 0 {
		c.misuse++
		c.log.Warn("exit called with depth %d; unbalanced critical section", c.depth)
		return ErrNotHeld
	}
	c.depth--
	if c.depth == 0 {
		c.deliver()
	}
	return nil
}

// Depth returns the current nesting depth.
func (c *Controller) Depth() int { return c.depth }

// Enabled reports whether delivery is currently allowed.
func (c *Controller) Enabled() bool { return c.depth == 0 }

// Service delivers pending lines if delivery is enabled. It is the CPU's
// safe point between operations.
func (c *Controller) Service() {
	if c.depth == 0 {
		c.deliver()
	}
}

// Pending reports whether any line is waiting for delivery.
func (c *Controller) Pending() bool {
	return c.pending.Load() != 0
}

// deliver runs handlers for pending lines, lowest line first, until none
// remain. Handlers raised while delivering are picked up by the same loop
// rather than by recursion.
func (c *Controller) deliver() {
	if c.delivering {
		return
	}
	c.delivering = true
	defer func() { c.delivering = false }()

	for {
		bits := c.pending.Swap(0)
		if bits == 0 {
			return
		}
		for line := Line(0); line < numLines; line++ {
			if bits&(1<<line) == 0 {
				continue
			}
			c.delivered[line]++
			h := c.handlers[line]
			if h == nil {
				continue
			}
			saved := c.depth
			c.depth = saved + 1
			h()
			c.depth = saved
		}
	}
}

// Stats is a snapshot of delivery counters.
type Stats struct {
	Delivered [numLines]uint64
	Misuse    uint64
}

// Stats returns delivery counters.
func (c *Controller) Stats() Stats {
	return Stats{Delivered: c.delivered, Misuse: c.misuse}
}
