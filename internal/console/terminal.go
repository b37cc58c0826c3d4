package console

import (
	"github.com/google/uuid"

	"github.com/dshills/vtcon/internal/cell"
	"github.com/dshills/vtcon/internal/heap"
	"github.com/dshills/vtcon/internal/logging"
)

// Kind distinguishes the log terminal from ordinary ones.
type Kind int

const (
	KindNormal Kind = iota
	KindLog
)

func (k Kind) String() string {
	if k == KindLog {
		return "log"
	}
	return "normal"
}

const tabWidth = 8

// Terminal is one logical console: an append-only page chain, a write
// cursor at the tail and a viewport into the history.
//
// Lines are numbered from the first row of the first page. A line maps to
// its page and row by division, so the page index gives O(1) lookup.
type Terminal struct {
	id      int
	session uuid.UUID
	kind    Kind
	geo     cell.Geometry

	pages []*cell.Page
	off   int // cell offset of the write cursor in the tail page

	viewport int
	floor    int // minimum extent, raised by ClearScreen
	attr     cell.Attr

	log *logging.Logger
}

func newTerminal(id int, kind Kind, arena *heap.Arena, log *logging.Logger) (*Terminal, error) {
	p, err := arena.Alloc()
	if err != nil {
		return nil, err
	}
	session := uuid.New()
	t := &Terminal{
		id:      id,
		session: session,
		kind:    kind,
		geo:     arena.Geometry(),
		pages:   []*cell.Page{p},
		attr:    cell.DefaultAttr,
		log:     log.WithField("term", id).WithField("session", session.String()[:8]),
	}
	t.log.Debug("created %s terminal", kind)
	return t, nil
}

// ID returns the terminal index.
func (t *Terminal) ID() int { return t.id }

// Session returns the random id assigned at creation.
func (t *Terminal) Session() uuid.UUID { return t.session }

// Kind returns the terminal kind.
func (t *Terminal) Kind() Kind { return t.kind }

// Pages returns the number of pages in the chain.
func (t *Terminal) Pages() int { return len(t.pages) }

// Viewport returns the topmost visible line.
func (t *Terminal) Viewport() int { return t.viewport }

// Attr returns the colour of the most recent write.
func (t *Terminal) Attr() cell.Attr { return t.attr }

// Cursor returns the write cursor as a line and column.
func (t *Terminal) Cursor() (line, col int) {
	return t.cursorLine(), t.off % t.geo.Cols
}

// Lines returns the number of lines up to and including the cursor line.
func (t *Terminal) Lines() int { return t.cursorLine() + 1 }

// Line returns the text of line n with trailing blanks trimmed. Lines that
// have no backing page read as empty.
func (t *Terminal) Line(n int) string {
	p := n / t.geo.PageLines
	if n < 0 || p >= len(t.pages) {
		return ""
	}
	return t.pages[p].Text(n % t.geo.PageLines)
}

// AtBottom reports whether the viewport shows the newest output.
func (t *Terminal) AtBottom() bool { return t.viewport == t.bottom() }

func (t *Terminal) cursorLine() int {
	return (len(t.pages)-1)*t.geo.PageLines + t.off/t.geo.Cols
}

func (t *Terminal) extent() int {
	return max(t.cursorLine()+1, t.floor)
}

// bottom is the viewport that puts the last line of the extent on the last
// screen row, or 0 while everything fits.
func (t *Terminal) bottom() int {
	return max(0, t.extent()-t.geo.Rows)
}

// snap moves the viewport to the bottom and reports whether it moved.
func (t *Terminal) snap() bool {
	b := t.bottom()
	if t.viewport == b {
		return false
	}
	t.viewport = b
	return true
}

func (t *Terminal) tail() *cell.Page {
	return t.pages[len(t.pages)-1]
}

// reserve makes sure the write cursor points into a page, allocating and
// linking a new tail when the current one is full. On failure the cursor
// stays at the end of the full page and the next call retries.
func (t *Terminal) reserve(arena *heap.Arena) error {
	if t.off < t.geo.PageCells() {
		return nil
	}
	p, err := arena.Alloc()
	if err != nil {
		return err
	}
	t.pages = append(t.pages, p)
	t.off = 0
	return nil
}

// put appends text at the write cursor. A newline blank-fills the rest of
// the row with attr; a tab pads to the next tab stop within the row;
// carriage returns are dropped.
func (t *Terminal) put(arena *heap.Arena, text string, attr cell.Attr) error {
	t.attr = attr
	cols := t.geo.Cols
	blank := cell.Blank(attr)

	for _, r := range text {
		if r == '\r' {
			continue
		}
		if err := t.reserve(arena); err != nil {
			return err
		}
		tail := t.tail()
		row, col := t.off/cols, t.off%cols

		switch r {
		case '\n':
			cell.Fill(tail.Row(row)[col:], blank)
			t.off += cols - col
		case '\t':
			n := min(tabWidth-col%tabWidth, cols-col)
			cell.Fill(tail.Row(row)[col:col+n], blank)
			t.off += n
		default:
			tail.WriteCell(row, col, cell.MakeCell(cell.Glyph(r), attr))
			t.off++
		}
	}
	return t.reserve(arena)
}
