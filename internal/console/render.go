package console

import "github.com/dshills/vtcon/internal/cell"

// render copies t's whole window into the display.
func (c *Console) render(t *Terminal) {
	c.drawLines(t, t.viewport, c.geo.Rows)
}

// drawRange mirrors lines first..last of t, clipped to its window.
func (c *Console) drawRange(t *Terminal, first, last int) {
	first = max(first, t.viewport)
	last = min(last, t.viewport+c.geo.Rows-1)
	if first > last {
		return
	}
	c.drawLines(t, first, last-first+1)
}

// drawLines copies n lines starting at line to the screen rows they occupy
// under t's viewport. Lines from one page are contiguous, so each page
// segment is a single row-block copy. Lines past the last page are blank.
func (c *Console) drawLines(t *Terminal, line, n int) {
	pl := c.geo.PageLines
	for n > 0 {
		p, row := line/pl, line%pl
		k := min(n, pl-row)
		srow := line - t.viewport
		if p < len(t.pages) {
			c.disp.WriteRows(srow, t.pages[p].Rows(row, k))
		} else {
			c.disp.ClearRows(srow, k, cell.Blank(cell.DefaultAttr))
		}
		line += k
		n -= k
	}
}

// placeCursor shows the hardware cursor at t's write position when t is at
// the bottom, and hides it otherwise.
func (c *Console) placeCursor(t *Terminal) {
	if !t.AtBottom() {
		c.disp.HideCursor()
		return
	}
	line, col := t.Cursor()
	c.disp.SetCursor(line-t.viewport, col)
	c.disp.ShowCursor()
}
