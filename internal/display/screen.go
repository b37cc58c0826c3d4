package display

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/vtcon/internal/cell"
	"github.com/dshills/vtcon/internal/input"
	"github.com/dshills/vtcon/internal/logging"
)

// Screen draws the frame buffer on a real terminal through tcell.
//
// A Memory shadow holds the authoritative frame so the screen can be
// repainted after a resize or palette change without asking the console.
// The mutex serialises the CPU goroutine against the event poller, which
// repaints on resize.
type Screen struct {
	mu      sync.Mutex
	screen  tcell.Screen
	shadow  *Memory
	palette Palette
	styles  [256]tcell.Style
	log     *logging.Logger
	closed  bool
}

// NewScreen wraps an initialised tcell screen.
func NewScreen(s tcell.Screen, cols, rows int, pal Palette, log *logging.Logger) *Screen {
	if log == nil {
		log = logging.Discard()
	}
	sc := &Screen{
		screen: s,
		shadow: NewMemory(cols, rows),
		log:    log.WithComponent("screen"),
	}
	sc.setPalette(pal)
	s.HideCursor()
	s.Clear()
	return sc
}

// OpenScreen creates and initialises a tcell screen on the controlling
// terminal.
func OpenScreen(cols, rows int, pal Palette, log *logging.Logger) (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return NewScreen(s, cols, rows, pal, log), nil
}

// Close restores the terminal. PollEvents returns after Close. Further
// calls do nothing.
func (s *Screen) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.screen.Fini()
}

// Size returns the text area dimensions.
func (s *Screen) Size() (int, int) { return s.shadow.Size() }

// WriteRows copies whole rows.
func (s *Screen) WriteRows(row int, cells []cell.Cell) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shadow.WriteRows(row, cells)
	n := clipRows(row, s.shadow.rows, s.shadow.cols, cells)
	s.paintRows(row, n)
}

// ClearRows fills rows with c.
func (s *Screen) ClearRows(row, n int, c cell.Cell) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shadow.ClearRows(row, n, c)
	if row < 0 || row >= s.shadow.rows || n <= 0 {
		return
	}
	s.paintRows(row, min(n, s.shadow.rows-row))
}

// WriteStatus writes into the status row.
func (s *Screen) WriteStatus(col int, cells []cell.Cell) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shadow.WriteStatus(col, cells)
	n := clipCols(col, s.shadow.cols, cells)
	row := s.shadow.Row(s.shadow.rows)
	for x := col; x < col+n; x++ {
		s.paint(x, s.shadow.rows, row[x])
	}
}

// SetCursor moves the cursor.
func (s *Screen) SetCursor(row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shadow.SetCursor(row, col)
	if s.shadow.visible {
		s.screen.ShowCursor(col, row)
	}
}

// ShowCursor makes the cursor visible at its current position.
func (s *Screen) ShowCursor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shadow.ShowCursor()
	row, col, _ := s.shadow.Cursor()
	s.screen.ShowCursor(col, row)
}

// HideCursor hides the cursor.
func (s *Screen) HideCursor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shadow.HideCursor()
	s.screen.HideCursor()
}

// Show flushes changes to the terminal.
func (s *Screen) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.screen.Show()
}

// SetPalette replaces the palette and repaints everything.
func (s *Screen) SetPalette(p Palette) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setPalette(p)
	s.repaint()
	s.screen.Show()
}

// Sync repaints the whole screen from the shadow frame.
func (s *Screen) Sync() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.repaint()
	s.screen.Sync()
}

// PollEvents forwards key presses to dev until the screen is closed.
// Resize events repaint the screen. Run it on its own goroutine.
func (s *Screen) PollEvents(dev *input.Device) {
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}
		switch e := ev.(type) {
		case *tcell.EventKey:
			kev, ok := convertKey(e)
			if !ok {
				continue
			}
			if !dev.Push(kev) {
				s.log.Warn("keyboard buffer full, dropped %s", kev)
			}
		case *tcell.EventResize:
			s.Sync()
		}
	}
}

func (s *Screen) setPalette(p Palette) {
	s.palette = p
	for a := range s.styles {
		s.styles[a] = p.Style(cell.Attr(a))
	}
}

func (s *Screen) repaint() {
	s.screen.Clear()
	s.paintRows(0, s.shadow.rows+1)
	if s.shadow.visible {
		s.screen.ShowCursor(s.shadow.curCol, s.shadow.curRow)
	} else {
		s.screen.HideCursor()
	}
}

func (s *Screen) paintRows(row, n int) {
	for y := row; y < row+n; y++ {
		for x, c := range s.shadow.Row(y) {
			s.paint(x, y, c)
		}
	}
}

func (s *Screen) paint(x, y int, c cell.Cell) {
	s.screen.SetContent(x, y, glyphRune(c.Glyph()), nil, s.styles[c.Attr()])
}
