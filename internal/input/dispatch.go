package input

import (
	"github.com/dshills/vtcon/internal/logging"
)

// Console is the set of console operations reachable from the keyboard.
type Console interface {
	ScrollUpBy(n int)
	ScrollDownBy(n int)
	ScrollToBottom()
	SwitchTo(id int)
	ClearScreen() error
	PrintChar(r rune) error
	ActiveIsLog() bool
}

// Dispatcher applies key bindings to a Console.
type Dispatcher struct {
	con    Console
	page   int
	onQuit func()
	log    *logging.Logger

	handled uint64
	ignored uint64
}

// NewDispatcher creates a dispatcher. page is the number of lines PgUp and
// PgDn scroll, normally the screen height.
func NewDispatcher(con Console, page int, log *logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.Discard()
	}
	if page < 1 {
		page = 1
	}
	return &Dispatcher{con: con, page: page, log: log.WithComponent("input")}
}

// OnQuit sets the function invoked for the quit chord.
func (d *Dispatcher) OnQuit(fn func()) {
	d.onQuit = fn
}

// Dispatch applies ev and reports whether a binding consumed it.
func (d *Dispatcher) Dispatch(ev Event) bool {
	ok := d.dispatch(ev)
	if ok {
		d.handled++
	} else {
		d.ignored++
		d.log.Debug("ignored key %s", ev)
	}
	return ok
}

func (d *Dispatcher) dispatch(ev Event) bool {
	switch ev.Key {
	case KeyUp:
		d.con.ScrollUpBy(1)
		return true
	case KeyDown:
		d.con.ScrollDownBy(1)
		return true
	case KeyPageUp:
		d.con.ScrollUpBy(d.page)
		return true
	case KeyPageDown:
		d.con.ScrollDownBy(d.page)
		return true
	case KeyEnd:
		d.con.ScrollToBottom()
		return true
	case KeyEnter:
		return d.echo('\n')
	case KeyRune:
	default:
		return false
	}

	if ev.Mod.Has(ModAlt | ModCtrl) {
		if n, ok := ev.Digit(); ok {
			d.con.SwitchTo(n)
			return true
		}
	}
	if ev.Mod.Has(ModCtrl) {
		switch ev.Rune {
		case 'l', 'L':
			if err := d.con.ClearScreen(); err != nil {
				d.log.Warn("clear screen: %v", err)
			}
			return true
		case 'q', 'Q':
			if d.onQuit != nil {
				d.onQuit()
				return true
			}
		}
		return false
	}
	if !ev.IsChar() {
		return false
	}
	return d.echo(ev.Rune)
}

func (d *Dispatcher) echo(r rune) bool {
	if d.con.ActiveIsLog() {
		return false
	}
	d.con.ScrollToBottom()
	if err := d.con.PrintChar(r); err != nil {
		d.log.Warn("echo %q: %v", r, err)
	}
	return true
}

// Drain dispatches every queued event from dev. It is installed as the
// keyboard interrupt handler.
func (d *Dispatcher) Drain(dev *Device) {
	for {
		ev, ok := dev.Pop()
		if !ok {
			return
		}
		d.Dispatch(ev)
	}
}

// Stats returns the number of handled and ignored events.
func (d *Dispatcher) Stats() (handled, ignored uint64) {
	return d.handled, d.ignored
}
