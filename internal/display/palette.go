package display

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/vtcon/internal/cell"
)

// Palette maps the 16 text-mode colours to RGB.
type Palette [16]colorful.Color

var vgaHex = [16]string{
	"#000000", "#0000aa", "#00aa00", "#00aaaa", "#aa0000", "#aa00aa", "#aa5500", "#aaaaaa",
	"#555555", "#5555ff", "#55ff55", "#55ffff", "#ff5555", "#ff55ff", "#ffff55", "#ffffff",
}

// DefaultPalette returns the standard VGA text palette.
func DefaultPalette() Palette {
	var p Palette
	for i, h := range vgaHex {
		p[i], _ = colorful.Hex(h)
	}
	return p
}

// WithOverrides returns a copy of p with entries replaced. Keys are colour
// names accepted by cell.ParseColor; values are "#rrggbb" strings.
func (p Palette) WithOverrides(overrides map[string]string) (Palette, error) {
	for name, hex := range overrides {
		c, err := cell.ParseColor(name)
		if err != nil {
			return p, err
		}
		rgb, err := colorful.Hex(hex)
		if err != nil {
			return p, fmt.Errorf("palette %s: %w", name, err)
		}
		p[c] = rgb
	}
	return p, nil
}

// Hex returns the "#rrggbb" value of c.
func (p Palette) Hex(c cell.Color) string {
	return p[c&0x0f].Hex()
}

// Color returns c as a tcell true colour.
func (p Palette) Color(c cell.Color) tcell.Color {
	r, g, b := p[c&0x0f].RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// Style returns the tcell style for an attribute.
func (p Palette) Style(a cell.Attr) tcell.Style {
	return tcell.StyleDefault.Foreground(p.Color(a.Fg())).Background(p.Color(a.Bg()))
}
