//go:build vtdebug

package cell

import "fmt"

func checkRow(row, rows int) {
	if row < 0 || row >= rows {
		panic(fmt.Sprintf("cell: row %d outside [0,%d)", row, rows))
	}
}

func checkCol(col, cols int) {
	if col < 0 || col >= cols {
		panic(fmt.Sprintf("cell: col %d outside [0,%d)", col, cols))
	}
}

func checkSpan(row, n, rows int) {
	if row < 0 || n < 0 || row+n > rows {
		panic(fmt.Sprintf("cell: rows [%d,%d) outside [0,%d)", row, row+n, rows))
	}
}

func checkLen(want, got int) {
	if want != got {
		panic(fmt.Sprintf("cell: length mismatch: want %d, got %d", want, got))
	}
}
