// Package console multiplexes several text terminals onto one display.
//
// Each terminal keeps its whole history in a chain of fixed-height pages
// taken from the heap arena. Exactly one terminal is active; the display
// always holds a copy of the active terminal's window at its viewport.
// Writes to the active terminal are mirrored row by row, everything else
// (switching, scrolling) is a re-render from the page store.
//
// Every exported operation runs inside an irq critical section, so timer
// and keyboard handlers never observe a half-finished update. Operations
// may be called from within handlers; the section nests.
package console

import (
	"fmt"

	"github.com/dshills/vtcon/internal/cell"
	"github.com/dshills/vtcon/internal/display"
	"github.com/dshills/vtcon/internal/heap"
	"github.com/dshills/vtcon/internal/irq"
	"github.com/dshills/vtcon/internal/logging"
)

// Config selects the terminal layout.
type Config struct {
	// Terminals is the number of terminals, selectable by digit chords.
	Terminals int

	// LogTerminal receives logger output; -1 disables it.
	LogTerminal int

	// Initial is the terminal shown at startup.
	Initial int
}

// DefaultConfig returns ten terminals with the log on terminal 0 and
// terminal 1 shown first.
func DefaultConfig() Config {
	return Config{Terminals: 10, LogTerminal: 0, Initial: 1}
}

// Console owns the display, the terminals and the active-terminal index.
type Console struct {
	geo   cell.Geometry
	disp  display.Display
	arena *heap.Arena
	ctl   *irq.Controller
	log   *logging.Logger

	terms   []*Terminal
	active  int
	logTerm int
	klog    *LogWriter
}

// New creates a console and shows the initial terminal. The display text
// area must match the arena geometry.
func New(cfg Config, disp display.Display, arena *heap.Arena, ctl *irq.Controller, log *logging.Logger) (*Console, error) {
	if cfg.Terminals <= 0 {
		return nil, ErrNoTerminals
	}
	if log == nil {
		log = logging.Discard()
	}
	geo := arena.Geometry()
	if cols, rows := disp.Size(); cols != geo.Cols || rows != geo.Rows {
		return nil, fmt.Errorf("%w: display %dx%d, geometry %dx%d", ErrGeometryMismatch, cols, rows, geo.Cols, geo.Rows)
	}

	c := &Console{
		geo:     geo,
		disp:    disp,
		arena:   arena,
		ctl:     ctl,
		log:     log.WithComponent("console"),
		terms:   make([]*Terminal, cfg.Terminals),
		active:  clamp(cfg.Initial, 0, cfg.Terminals-1),
		logTerm: -1,
	}
	if cfg.LogTerminal >= 0 && cfg.LogTerminal < cfg.Terminals {
		c.logTerm = cfg.LogTerminal
		c.klog = newLogWriter(ctl, defaultLogBuffer)
	}

	g := ctl.Acquire()
	defer g.Release()

	t, err := c.terminal(c.active)
	if err != nil {
		return nil, err
	}
	c.render(t)
	c.placeCursor(t)
	c.disp.Show()
	return c, nil
}

// Geometry returns the page geometry.
func (c *Console) Geometry() cell.Geometry { return c.geo }

// Len returns the number of terminal slots.
func (c *Console) Len() int { return len(c.terms) }

// Active returns the index of the active terminal.
func (c *Console) Active() int { return c.active }

// ActiveIsLog reports whether the log terminal is shown.
func (c *Console) ActiveIsLog() bool { return c.active == c.logTerm }

// Terminal returns terminal id, or nil if it has not been created yet.
func (c *Console) Terminal(id int) *Terminal {
	if id < 0 || id >= len(c.terms) {
		return nil
	}
	return c.terms[id]
}

// Create allocates terminal id's first page if it does not exist yet.
func (c *Console) Create(id int) error {
	g := c.ctl.Acquire()
	defer g.Release()

	_, err := c.terminal(id)
	return err
}

// terminal returns terminal id, creating it on first reference. Ids out of
// range are clamped.
func (c *Console) terminal(id int) (*Terminal, error) {
	id = clamp(id, 0, len(c.terms)-1)
	if t := c.terms[id]; t != nil {
		return t, nil
	}
	kind := KindNormal
	if id == c.logTerm {
		kind = KindLog
	}
	t, err := newTerminal(id, kind, c.arena, c.log)
	if err != nil {
		return nil, &OpError{Op: "create", Terminal: id, Err: err}
	}
	c.terms[id] = t
	return t, nil
}

// Write appends text to terminal id in colour attr. The terminal's viewport
// ends at the bottom. If the terminal is active, the touched rows are
// mirrored to the display (the whole window when the viewport moved) and
// the cursor is updated once.
//
// If a page cannot be allocated the text is cut short, the cursor stays at
// the end of the full page and an *OpError wrapping heap.ErrOutOfMemory is
// returned. The next write retries the allocation.
func (c *Console) Write(id int, text string, attr cell.Attr) error {
	g := c.ctl.Acquire()
	defer g.Release()

	t, err := c.terminal(id)
	if err != nil {
		return err
	}

	first := t.cursorLine()
	err = t.put(c.arena, text, attr)
	last := t.cursorLine()
	moved := t.snap()

	if t.id == c.active {
		if moved {
			c.render(t)
		} else {
			c.drawRange(t, first, last)
		}
		c.placeCursor(t)
		c.disp.Show()
	}

	if err != nil {
		return &OpError{Op: "write", Terminal: t.id, Err: err}
	}
	return nil
}

// Print writes text to the active terminal in the default colour.
func (c *Console) Print(text string) error {
	return c.PrintColor(text, cell.DefaultAttr)
}

// PrintColor writes text to the active terminal.
func (c *Console) PrintColor(text string, attr cell.Attr) error {
	g := c.ctl.Acquire()
	defer g.Release()

	return c.Write(c.active, text, attr)
}

// PrintChar writes one character to the active terminal in the default
// colour.
func (c *Console) PrintChar(r rune) error {
	return c.Print(string(r))
}

// Printf formats and writes to the active terminal.
func (c *Console) Printf(format string, args ...any) error {
	return c.Print(fmt.Sprintf(format, args...))
}

// SwitchTo makes terminal id active. Ids out of range are clamped; switching
// to the active terminal does nothing. The target's window is rendered at
// its own viewport, which is never changed, and the cursor is shown only if
// that viewport is at the bottom.
func (c *Console) SwitchTo(id int) {
	g := c.ctl.Acquire()
	defer g.Release()

	id = clamp(id, 0, len(c.terms)-1)
	if id == c.active {
		return
	}
	t, err := c.terminal(id)
	if err != nil {
		c.log.Error("switch to %d: %v", id, err)
		return
	}

	c.active = id
	c.render(t)
	c.placeCursor(t)
	c.disp.Show()
}

// ClearScreen blanks the active terminal's screen and puts the cursor at
// the origin. The write cursor moves to a fresh line which becomes the top
// of the screen; earlier output stays reachable by scrolling up.
func (c *Console) ClearScreen() error {
	g := c.ctl.Acquire()
	defer g.Release()

	t, err := c.terminal(c.active)
	if err != nil {
		return err
	}
	if _, col := t.Cursor(); col != 0 {
		if err := t.put(c.arena, "\n", t.attr); err != nil {
			return &OpError{Op: "clear", Terminal: t.id, Err: err}
		}
	}

	t.floor = t.cursorLine() + c.geo.Rows
	t.snap()

	c.disp.ClearRows(0, c.geo.Rows, cell.Blank(cell.DefaultAttr))
	c.placeCursor(t)
	c.disp.Show()
	return nil
}

// Used returns the arena bytes held by all terminals.
func (c *Console) Used() uint64 { return c.arena.Used() }

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
