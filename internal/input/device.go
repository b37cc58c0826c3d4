package input

import (
	"sync"

	"github.com/dshills/vtcon/internal/irq"
)

// DefaultQueueSize is the keyboard buffer depth.
const DefaultQueueSize = 64

// Device is the keyboard data port: a bounded FIFO filled by the display
// backend's event goroutine and drained by the keyboard interrupt handler.
// When full, new events are dropped, as a controller with a full output
// buffer would.
type Device struct {
	mu      sync.Mutex
	buf     []Event
	head    int
	n       int
	dropped uint64

	ctl *irq.Controller
}

// NewDevice creates a keyboard device. If ctl is non-nil each Push raises
// the keyboard line.
func NewDevice(size int, ctl *irq.Controller) *Device {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Device{buf: make([]Event, size), ctl: ctl}
}

// Push enqueues ev and raises the keyboard interrupt. It reports false if
// the event was dropped. Safe for concurrent use.
func (d *Device) Push(ev Event) bool {
	d.mu.Lock()
	if d.n == len(d.buf) {
		d.dropped++
		d.mu.Unlock()
		return false
	}
	d.buf[(d.head+d.n)%len(d.buf)] = ev
	d.n++
	d.mu.Unlock()

	if d.ctl != nil {
		d.ctl.Raise(irq.LineKeyboard)
	}
	return true
}

// Pop dequeues the oldest event.
func (d *Device) Pop() (Event, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.n == 0 {
		return Event{}, false
	}
	ev := d.buf[d.head]
	d.head = (d.head + 1) % len(d.buf)
	d.n--
	return ev, true
}

// Len returns the number of queued events.
func (d *Device) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.n
}

// Dropped returns the number of events lost to a full queue.
func (d *Device) Dropped() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}
