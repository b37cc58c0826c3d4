//go:build !vtdebug

package cell

// Release builds rely on the runtime's slice bounds checks. Build with
// -tags vtdebug for descriptive geometry panics.

func checkRow(int, int) {}

func checkCol(int, int) {}

func checkSpan(int, int, int) {}

func checkLen(int, int) {}
