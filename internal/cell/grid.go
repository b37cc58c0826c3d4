package cell

import "strings"

// Geometry is the fixed shape of the console. It is decided at boot and
// never changes afterwards.
type Geometry struct {
	Cols      int // cells per row
	Rows      int // visible terminal rows, excluding the status row
	PageLines int // rows per backing-store page
}

// DefaultGeometry is the classic 80x24 console with one-screen pages.
func DefaultGeometry() Geometry {
	return Geometry{Cols: 80, Rows: 24, PageLines: 24}
}

// Validate checks the geometry. Page height must be even so pages can be
// cleared and copied in pairs of rows.
func (g Geometry) Validate() error {
	switch {
	case g.Cols <= 0:
		return &GeometryError{Field: "cols", Value: g.Cols, Reason: "must be positive"}
	case g.Rows <= 0:
		return &GeometryError{Field: "rows", Value: g.Rows, Reason: "must be positive"}
	case g.PageLines <= 0:
		return &GeometryError{Field: "page_lines", Value: g.PageLines, Reason: "must be positive"}
	case g.PageLines%2 != 0:
		return &GeometryError{Field: "page_lines", Value: g.PageLines, Reason: "must be even"}
	}
	return nil
}

// PageCells is the number of cells in one page.
func (g Geometry) PageCells() int { return g.Cols * g.PageLines }

// PageBytes is the memory footprint of one page.
func (g Geometry) PageBytes() int { return g.PageCells() * 2 }

// Grid is a row-major block of cells with a fixed width. Pages and the frame
// buffer are both Grids.
type Grid struct {
	cols  int
	rows  int
	cells []Cell
}

// NewGrid allocates a grid filled with blank cells.
func NewGrid(cols, rows int) Grid {
	g := Grid{cols: cols, rows: rows, cells: make([]Cell, cols*rows)}
	g.ClearRows(0, rows, Blank(DefaultAttr))
	return g
}

// GridOver wraps existing memory. len(cells) must be cols*rows.
func GridOver(cols, rows int, cells []Cell) Grid {
	checkLen(cols*rows, len(cells))
	return Grid{cols: cols, rows: rows, cells: cells}
}

// Cols returns the grid width.
func (g Grid) Cols() int { return g.cols }

// Height returns the number of rows.
func (g Grid) Height() int { return g.rows }

// Cells returns the backing slice.
func (g Grid) Cells() []Cell { return g.cells }

// At returns the cell at (row, col).
func (g Grid) At(row, col int) Cell {
	checkRow(row, g.rows)
	checkCol(col, g.cols)
	return g.cells[row*g.cols+col]
}

// WriteCell places one glyph.
func (g Grid) WriteCell(row, col int, c Cell) {
	checkRow(row, g.rows)
	checkCol(col, g.cols)
	g.cells[row*g.cols+col] = c
}

// Row returns row r as a slice sharing the grid's memory.
func (g Grid) Row(r int) []Cell {
	return g.Rows(r, 1)
}

// Rows returns n consecutive rows starting at r as one contiguous slice.
func (g Grid) Rows(r, n int) []Cell {
	checkSpan(r, n, g.rows)
	return g.cells[r*g.cols : (r+n)*g.cols]
}

// ClearRows fills n rows starting at row with c.
func (g Grid) ClearRows(row, n int, c Cell) {
	Fill(g.Rows(row, n), c)
}

// CopyRows copies n rows from src starting at srcRow into dst at dstRow.
// Both grids must have the same width.
func CopyRows(dst, src Grid, dstRow, srcRow, n int) {
	checkLen(dst.cols, src.cols)
	copy(dst.Rows(dstRow, n), src.Rows(srcRow, n))
}

// Text returns row r as a string with trailing blanks trimmed.
func (g Grid) Text(r int) string {
	return RowText(g.Row(r))
}

// Fill sets every cell of s to c by doubling the filled prefix, so the work
// is done by copy rather than a per-cell loop.
func Fill(s []Cell, c Cell) {
	if len(s) == 0 {
		return
	}
	s[0] = c
	for n := 1; n < len(s); n *= 2 {
		copy(s[n:], s[:n])
	}
}

// RowText decodes cells into a string, trimming trailing spaces.
func RowText(row []Cell) string {
	var b strings.Builder
	for _, c := range row {
		g := c.Glyph()
		if g == 0 {
			g = ' '
		}
		b.WriteRune(Rune(g))
	}
	return strings.TrimRight(b.String(), " ")
}

// Page is one fixed-height block of a terminal's backing store.
type Page struct {
	Grid
}

// NewPage wraps cells as a page of g.PageLines rows.
func NewPage(g Geometry, cells []Cell) *Page {
	return &Page{Grid: GridOver(g.Cols, g.PageLines, cells)}
}
