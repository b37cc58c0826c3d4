// Package cell defines the text-mode cell model shared by the frame buffer
// and every terminal's backing store.
//
// A Cell is a 16-bit word laid out the way VGA text memory is: the glyph in
// the low byte and the attribute in the high byte. Rows, pages and the frame
// buffer are plain []Cell so bulk clears and copies move whole words.
package cell

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Color is one of the 16 text-mode palette entries.
type Color uint8

// Text-mode palette.
const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGray
	DarkGray
	LightBlue
	LightGreen
	LightCyan
	LightRed
	LightMagenta
	Yellow
	White
)

var colorNames = [16]string{
	"black", "blue", "green", "cyan", "red", "magenta", "brown", "lightgray",
	"darkgray", "lightblue", "lightgreen", "lightcyan", "lightred", "lightmagenta", "yellow", "white",
}

// String returns the palette name of the colour.
func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return fmt.Sprintf("color(%d)", uint8(c))
}

// ParseColor parses a palette name. Dashes, underscores and case are ignored,
// and "gray"/"grey" are interchangeable.
func ParseColor(s string) (Color, error) {
	name := strings.ToLower(s)
	name = strings.NewReplacer("-", "", "_", "", " ", "", "grey", "gray").Replace(name)
	for i, n := range colorNames {
		if n == name {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColor, s)
}

// Colors returns all palette entries in index order.
func Colors() []Color {
	out := make([]Color, len(colorNames))
	for i := range out {
		out[i] = Color(i)
	}
	return out
}

// Attr is a text attribute: foreground in the low nibble, background in the
// high nibble.
type Attr uint8

// DefaultAttr is light gray on black.
const DefaultAttr Attr = Attr(Black)<<4 | Attr(LightGray)

// MakeAttr builds an attribute from foreground and background colours.
func MakeAttr(fg, bg Color) Attr {
	return Attr(bg&0x0f)<<4 | Attr(fg&0x0f)
}

// Fg returns the foreground colour.
func (a Attr) Fg() Color { return Color(a & 0x0f) }

// Bg returns the background colour.
func (a Attr) Bg() Color { return Color(a >> 4) }

// String returns "fg/bg".
func (a Attr) String() string {
	return a.Fg().String() + "/" + a.Bg().String()
}

// Cell is one screen position.
type Cell uint16

// MakeCell packs a glyph and attribute.
func MakeCell(glyph byte, attr Attr) Cell {
	return Cell(attr)<<8 | Cell(glyph)
}

// Blank returns a space carrying attr.
func Blank(attr Attr) Cell {
	return MakeCell(' ', attr)
}

// Glyph returns the glyph byte.
func (c Cell) Glyph() byte { return byte(c) }

// Attr returns the attribute byte.
func (c Cell) Attr() Attr { return Attr(c >> 8) }

// Glyph encodes r into the code page 437 glyph set. Runes with no glyph
// become '?'.
func Glyph(r rune) byte {
	if r >= 0x20 && r < 0x7f {
		return byte(r)
	}
	if b, ok := charmap.CodePage437.EncodeRune(r); ok {
		return b
	}
	return '?'
}

// Rune decodes a glyph byte back into the rune it draws.
func Rune(glyph byte) rune {
	return charmap.CodePage437.DecodeByte(glyph)
}
