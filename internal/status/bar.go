// Package status draws the status row below the terminal area.
//
// The status row sits outside every terminal's history and is never
// scrolled. Periodic producers (a clock and a heap gauge) write fixed-width
// fields into it from the timer interrupt. Fields are always padded to their
// full width, so a shorter string never leaves stale characters from a
// longer one.
package status

import (
	"github.com/dshills/vtcon/internal/cell"
	"github.com/dshills/vtcon/internal/display"
	"github.com/dshills/vtcon/internal/irq"
)

// DefaultAttr is white on magenta.
const DefaultAttr cell.Attr = 0x5f

// Align selects how text sits inside a field.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Field is a fixed region of the status row.
type Field struct {
	Col   int
	Width int
	Align Align
}

// Config configures a Bar.
type Config struct {
	Banner string
	// BannerCol is the banner's column; negative centres it.
	BannerCol int
	Attr      cell.Attr
}

// DefaultConfig returns a centred "vtcon" banner on the default colours.
func DefaultConfig() Config {
	return Config{Banner: "vtcon", BannerCol: -1, Attr: DefaultAttr}
}

// Bar owns the status row. It keeps a copy of the row so a colour change
// can be redrawn without asking the producers.
type Bar struct {
	disp display.Display
	ctl  *irq.Controller
	cols int

	cfg Config
	row []cell.Cell
}

// New creates a bar and draws it.
func New(disp display.Display, ctl *irq.Controller, cfg Config) *Bar {
	cols, _ := disp.Size()
	b := &Bar{
		disp: disp,
		ctl:  ctl,
		cols: cols,
		cfg:  cfg,
		row:  make([]cell.Cell, cols),
	}
	b.Draw()
	return b
}

// Draw fills the row with the bar colour and writes the banner. Field
// contents are cleared; producers repaint them on their next run.
func (b *Bar) Draw() {
	g := b.ctl.Acquire()
	defer g.Release()

	cell.Fill(b.row, cell.Blank(b.cfg.Attr))
	b.place(b.bannerCol(), b.cfg.Banner)
	b.disp.WriteStatus(0, b.row)
	b.disp.Show()
}

// SetBanner replaces the banner text.
func (b *Bar) SetBanner(text string, col int) {
	g := b.ctl.Acquire()
	defer g.Release()

	old := b.bannerCol()
	n := min(len([]rune(b.cfg.Banner)), max(0, b.cols-old))
	if old < b.cols && n > 0 {
		cell.Fill(b.row[old:old+n], cell.Blank(b.cfg.Attr))
	}
	b.cfg.Banner, b.cfg.BannerCol = text, col
	b.place(b.bannerCol(), text)
	b.disp.WriteStatus(0, b.row)
	b.disp.Show()
}

// SetAttr recolours the whole row, keeping its text.
func (b *Bar) SetAttr(attr cell.Attr) {
	g := b.ctl.Acquire()
	defer g.Release()

	b.cfg.Attr = attr
	for i, c := range b.row {
		b.row[i] = cell.MakeCell(c.Glyph(), attr)
	}
	b.disp.WriteStatus(0, b.row)
	b.disp.Show()
}

// Attr returns the bar colour.
func (b *Bar) Attr() cell.Attr { return b.cfg.Attr }

// Cols returns the row width.
func (b *Bar) Cols() int { return b.cols }

// Put writes text into f, truncated and padded to exactly f.Width cells, or
// to the right edge if the field runs past it.
func (b *Bar) Put(f Field, text string) error {
	if f.Col < 0 || f.Col >= b.cols {
		return ErrColumnOutOfRange
	}
	width := min(f.Width, b.cols-f.Col)
	runes := []rune(text)
	if len(runes) > width {
		runes = runes[:width]
	}

	g := b.ctl.Acquire()
	defer g.Release()

	seg := b.row[f.Col : f.Col+width]
	cell.Fill(seg, cell.Blank(b.cfg.Attr))
	start := 0
	if f.Align == AlignRight {
		start = width - len(runes)
	}
	for i, r := range runes {
		seg[start+i] = cell.MakeCell(cell.Glyph(r), b.cfg.Attr)
	}
	b.disp.WriteStatus(f.Col, seg)
	b.disp.Show()
	return nil
}

func (b *Bar) bannerCol() int {
	if b.cfg.BannerCol >= 0 {
		return b.cfg.BannerCol
	}
	return max(0, (b.cols-len([]rune(b.cfg.Banner)))/2)
}

func (b *Bar) place(col int, text string) {
	for _, r := range text {
		if col >= b.cols {
			return
		}
		b.row[col] = cell.MakeCell(cell.Glyph(r), b.cfg.Attr)
		col++
	}
}
