// Package display is the frame buffer boundary of the console.
//
// A Display is a grid of Rows text rows plus one status row below them.
// The console treats it as write-only: the terminals' page stores are the
// source of truth and the display only mirrors the active terminal's
// window. Two implementations exist: Memory, a plain VGA-style frame buffer
// used headless and in tests, and Screen, which draws through tcell.
package display

import "github.com/dshills/vtcon/internal/cell"

// Display is the hardware text frame buffer plus cursor registers.
type Display interface {
	// Size returns the text area dimensions, excluding the status row.
	Size() (cols, rows int)

	// WriteRows copies whole rows starting at row. len(cells) is a
	// multiple of cols; rows past the text area are dropped.
	WriteRows(row int, cells []cell.Cell)

	// ClearRows fills n rows starting at row with c.
	ClearRows(row, n int, c cell.Cell)

	// WriteStatus writes cells into the status row starting at col,
	// clipped to the row width.
	WriteStatus(col int, cells []cell.Cell)

	// SetCursor moves the hardware cursor.
	SetCursor(row, col int)

	// ShowCursor and HideCursor toggle cursor visibility.
	ShowCursor()
	HideCursor()

	// Show flushes pending changes to the output device.
	Show()
}

// clipRows returns how many whole rows of cells fit from row onward.
func clipRows(row, rows, cols int, cells []cell.Cell) int {
	if row < 0 || row >= rows || cols == 0 {
		return 0
	}
	n := len(cells) / cols
	if row+n > rows {
		n = rows - row
	}
	return n
}

// clipCols returns how many cells fit in a row from col onward.
func clipCols(col, cols int, cells []cell.Cell) int {
	if col < 0 || col >= cols {
		return 0
	}
	return min(len(cells), cols-col)
}
