package status

import (
	"fmt"
	"time"
)

// ClockWidth is the width of the clock field.
const ClockWidth = 15

// MemWidth is the default width of the heap gauge.
const MemWidth = 24

// FormatClock renders t as a 12-hour clock with milliseconds, for example
// " 3:04:05.006 PM".
func FormatClock(t time.Time) string {
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	ampm := "AM"
	if t.Hour() >= 12 {
		ampm = "PM"
	}
	return fmt.Sprintf("%2d:%02d:%02d.%03d %s", h, t.Minute(), t.Second(), t.Nanosecond()/int(time.Millisecond), ampm)
}

// FormatHeap renders a byte count for the heap gauge.
func FormatHeap(n uint64) string {
	unit := "bytes"
	switch {
	case n >= 1<<20:
		n, unit = n>>20, "M"
	case n >= 1<<10:
		n, unit = n>>10, "K"
	}
	return fmt.Sprintf("Heap used: %d %s", n, unit)
}

// Clock writes the time of day into a field.
type Clock struct {
	bar   *Bar
	field Field
	now   func() time.Time
}

// NewClock creates a clock at the left edge. now defaults to time.Now.
func NewClock(bar *Bar, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{bar: bar, field: Field{Col: 0, Width: ClockWidth}, now: now}
}

// Field returns the clock's field.
func (c *Clock) Field() Field { return c.field }

// Update redraws the clock. Its signature matches timer.Func.
func (c *Clock) Update(uint64) {
	_ = c.bar.Put(c.field, FormatClock(c.now()))
}

// MemUse writes the heap usage into a right-aligned field at the right edge.
type MemUse struct {
	bar   *Bar
	field Field
	used  func() uint64
}

// NewMemUse creates a heap gauge width cells wide reading used.
func NewMemUse(bar *Bar, width int, used func() uint64) *MemUse {
	if width <= 0 {
		width = MemWidth
	}
	width = min(width, bar.Cols())
	return &MemUse{
		bar:   bar,
		field: Field{Col: bar.Cols() - width, Width: width, Align: AlignRight},
		used:  used,
	}
}

// Field returns the gauge's field.
func (m *MemUse) Field() Field { return m.field }

// Update redraws the gauge. Its signature matches timer.Func.
func (m *MemUse) Update(uint64) {
	_ = m.bar.Put(m.field, FormatHeap(m.used()))
}
