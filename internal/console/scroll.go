package console

import "math"

// ScrollUpBy moves the active terminal's viewport n lines toward older
// output, stopping at the first line. The cursor is hidden once the view
// leaves the bottom. A request that does not move the viewport leaves the
// display alone.
func (c *Console) ScrollUpBy(n int) {
	g := c.ctl.Acquire()
	defer g.Release()

	t := c.terms[c.active]
	if t == nil || n <= 0 {
		return
	}
	c.scrollTo(t, max(0, t.viewport-n))
}

// ScrollDownBy moves the active terminal's viewport n lines toward newer
// output, stopping at the bottom, where the cursor is shown again.
func (c *Console) ScrollDownBy(n int) {
	g := c.ctl.Acquire()
	defer g.Release()

	t := c.terms[c.active]
	if t == nil || n <= 0 {
		return
	}
	b := t.bottom()
	if n >= b-t.viewport {
		c.scrollTo(t, b)
		return
	}
	c.scrollTo(t, t.viewport+n)
}

// ScrollToBottom snaps the active terminal to its newest output.
func (c *Console) ScrollToBottom() {
	c.ScrollDownBy(math.MaxInt)
}

func (c *Console) scrollTo(t *Terminal, v int) {
	if v == t.viewport {
		return
	}
	t.viewport = v
	c.render(t)
	c.placeCursor(t)
	c.disp.Show()
}
