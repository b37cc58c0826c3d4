// Package timer implements the periodic callback registrar driven by the
// timer interrupt.
//
// The timer IRQ handler calls Tick once per interrupt. Each registered
// callback fires on the ticks t where t >= Phase and (t-Phase) is a multiple
// of Period. Registration and removal happen inside a critical section so a
// tick can never observe a half-updated table.
package timer

import (
	"time"

	"github.com/dshills/vtcon/internal/irq"
	"github.com/dshills/vtcon/internal/logging"
)

// Func is invoked with the tick count at which it fires.
type Func func(tick uint64)

// Callback describes a periodic callback.
type Callback struct {
	// Name is used in log messages only.
	Name string

	// Period is the number of ticks between invocations. Must be > 0.
	Period uint64

	// Phase is the first tick at which the callback may fire.
	Phase uint64

	Func Func
}

// Handle identifies a registered callback.
type Handle struct {
	id  uint64
	sch *Scheduler
}

// Cancel unregisters the callback. Safe to call more than once.
func (h *Handle) Cancel() {
	if h != nil && h.sch != nil {
		h.sch.Unregister(h)
	}
}

type entry struct {
	id uint64
	cb Callback
}

// Scheduler holds registered callbacks and the tick counter.
type Scheduler struct {
	ctl     *irq.Controller
	log     *logging.Logger
	entries []entry
	nextID  uint64
	ticks   uint64
	hz      int
}

// New creates a scheduler ticking at hz.
func New(ctl *irq.Controller, hz int, log *logging.Logger) *Scheduler {
	if log == nil {
		log = logging.Discard()
	}
	if hz <= 0 {
		hz = DefaultHz
	}
	return &Scheduler{
		ctl: ctl,
		hz:  hz,
		log: log.WithComponent("timer"),
	}
}

// DefaultHz is the tick rate used when none is configured.
const DefaultHz = 60

// Hz returns the tick rate.
func (s *Scheduler) Hz() int { return s.hz }

// Interval returns the wall-clock duration of one tick.
func (s *Scheduler) Interval() time.Duration {
	return time.Second / time.Duration(s.hz)
}

// TicksFor converts a duration to a whole number of ticks, at least one.
func (s *Scheduler) TicksFor(d time.Duration) uint64 {
	n := uint64(d / s.Interval())
	if n == 0 {
		n = 1
	}
	return n
}

// Register adds cb and returns a handle for removing it.
func (s *Scheduler) Register(cb Callback) (*Handle, error) {
	if cb.Period == 0 {
		return nil, ErrZeroPeriod
	}
	if cb.Func == nil {
		return nil, ErrNilFunc
	}

	g := s.ctl.Acquire()
	defer g.Release()

	s.nextID++
	s.entries = append(s.entries, entry{id: s.nextID, cb: cb})
	s.log.Debug("registered %q period=%d phase=%d", cb.Name, cb.Period, cb.Phase)
	return &Handle{id: s.nextID, sch: s}, nil
}

// Unregister removes the callback identified by h. Unknown handles are
// ignored.
func (s *Scheduler) Unregister(h *Handle) {
	if h == nil {
		return
	}

	g := s.ctl.Acquire()
	defer g.Release()

	for i, e := range s.entries {
		if e.id == h.id {
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			s.log.Debug("unregistered %q", e.cb.Name)
			return
		}
	}
}

// Len returns the number of registered callbacks.
func (s *Scheduler) Len() int { return len(s.entries) }

// Ticks returns the number of ticks seen so far.
func (s *Scheduler) Ticks() uint64 { return s.ticks }

// Tick advances the counter and runs every callback due on the new tick,
// in registration order. A callback may unregister itself or others; the
// change takes effect from the next tick.
func (s *Scheduler) Tick() {
	g := s.ctl.Acquire()
	defer g.Release()

	t := s.ticks
	s.ticks++

	due := make([]entry, 0, len(s.entries))
	for _, e := range s.entries {
		if t >= e.cb.Phase && (t-e.cb.Phase)%e.cb.Period == 0 {
			due = append(due, e)
		}
	}
	for _, e := range due {
		e.cb.Func(t)
	}
}
