package display

import (
	"bufio"
	"io"
	"strings"

	"github.com/dshills/vtcon/internal/cell"
)

// Memory is an in-memory frame buffer. The status row is the last row of
// the grid.
type Memory struct {
	cols, rows int
	frame      cell.Grid

	curRow, curCol int
	visible        bool

	writes  uint64
	flushes uint64
}

// NewMemory creates a blank frame buffer with cols x rows text cells plus a
// status row.
func NewMemory(cols, rows int) *Memory {
	return &Memory{
		cols:  cols,
		rows:  rows,
		frame: cell.NewGrid(cols, rows+1),
	}
}

// Size returns the text area dimensions.
func (m *Memory) Size() (int, int) { return m.cols, m.rows }

// WriteRows copies whole rows into the frame.
func (m *Memory) WriteRows(row int, cells []cell.Cell) {
	n := clipRows(row, m.rows, m.cols, cells)
	if n == 0 {
		return
	}
	copy(m.frame.Rows(row, n), cells[:n*m.cols])
	m.writes++
}

// ClearRows fills rows with c.
func (m *Memory) ClearRows(row, n int, c cell.Cell) {
	if row < 0 || row >= m.rows || n <= 0 {
		return
	}
	n = min(n, m.rows-row)
	m.frame.ClearRows(row, n, c)
	m.writes++
}

// WriteStatus writes into the status row.
func (m *Memory) WriteStatus(col int, cells []cell.Cell) {
	n := clipCols(col, m.cols, cells)
	if n == 0 {
		return
	}
	copy(m.frame.Row(m.rows)[col:], cells[:n])
	m.writes++
}

// SetCursor moves the cursor.
func (m *Memory) SetCursor(row, col int) {
	m.curRow, m.curCol = row, col
}

// ShowCursor makes the cursor visible.
func (m *Memory) ShowCursor() { m.visible = true }

// HideCursor hides the cursor.
func (m *Memory) HideCursor() { m.visible = false }

// Show counts a flush; the frame is always current.
func (m *Memory) Show() { m.flushes++ }

// Cursor returns the cursor position and visibility.
func (m *Memory) Cursor() (row, col int, visible bool) {
	return m.curRow, m.curCol, m.visible
}

// At returns the cell at row, col. Row Rows is the status row.
func (m *Memory) At(row, col int) cell.Cell {
	return m.frame.At(row, col)
}

// Row returns a text row as a slice into the frame.
func (m *Memory) Row(row int) []cell.Cell {
	return m.frame.Row(row)
}

// Text returns a text row with trailing blanks trimmed.
func (m *Memory) Text(row int) string {
	return m.frame.Text(row)
}

// Status returns the status row's cells.
func (m *Memory) Status() []cell.Cell {
	return m.frame.Row(m.rows)
}

// StatusText returns the status row as text, untrimmed.
func (m *Memory) StatusText() string {
	var b strings.Builder
	for _, c := range m.Status() {
		b.WriteRune(glyphRune(c.Glyph()))
	}
	return b.String()
}

// Snapshot returns a copy of the whole frame including the status row.
func (m *Memory) Snapshot() []cell.Cell {
	return append([]cell.Cell(nil), m.frame.Cells()...)
}

// Writes returns the number of mutating calls that touched the frame.
func (m *Memory) Writes() uint64 { return m.writes }

// Flushes returns the number of Show calls.
func (m *Memory) Flushes() uint64 { return m.flushes }

// Dump writes the text rows, a separator and the status row to w.
func (m *Memory) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for r := 0; r < m.rows; r++ {
		bw.WriteString(m.Text(r))
		bw.WriteByte('\n')
	}
	bw.WriteString(strings.Repeat("-", m.cols))
	bw.WriteByte('\n')
	bw.WriteString(strings.TrimRight(m.StatusText(), " "))
	bw.WriteByte('\n')
	return bw.Flush()
}

func glyphRune(g byte) rune {
	if g == 0 {
		return ' '
	}
	return cell.Rune(g)
}
