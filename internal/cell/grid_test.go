package cell

import "testing"

func TestNewGridIsBlank(t *testing.T) {
	g := NewGrid(10, 4)
	for r := 0; r < 4; r++ {
		for c := 0; c < 10; c++ {
			if g.At(r, c) != Blank(DefaultAttr) {
				t.Fatalf("cell (%d,%d) not blank: %#x", r, c, uint16(g.At(r, c)))
			}
		}
	}
	if g.Cols() != 10 || g.Height() != 4 || len(g.Cells()) != 40 {
		t.Errorf("unexpected shape %dx%d/%d", g.Cols(), g.Height(), len(g.Cells()))
	}
}

func TestGridWriteCellAndText(t *testing.T) {
	g := NewGrid(10, 2)
	for i, r := range "hi there" {
		g.WriteCell(1, i, MakeCell(Glyph(r), DefaultAttr))
	}
	if got := g.Text(1); got != "hi there" {
		t.Errorf("expected %q, got %q", "hi there", got)
	}
	if got := g.Text(0); got != "" {
		t.Errorf("expected empty row, got %q", got)
	}
}

func TestGridClearRows(t *testing.T) {
	g := NewGrid(4, 4)
	x := MakeCell('x', MakeAttr(Red, Black))
	g.ClearRows(1, 2, x)

	for r := 0; r < 4; r++ {
		want := Blank(DefaultAttr)
		if r == 1 || r == 2 {
			want = x
		}
		for c := 0; c < 4; c++ {
			if g.At(r, c) != want {
				t.Errorf("(%d,%d): expected %#x, got %#x", r, c, uint16(want), uint16(g.At(r, c)))
			}
		}
	}
}

func TestCopyRows(t *testing.T) {
	src := NewGrid(3, 4)
	for r := 0; r < 4; r++ {
		src.ClearRows(r, 1, MakeCell(byte('a'+r), DefaultAttr))
	}
	dst := NewGrid(3, 2)

	CopyRows(dst, src, 0, 2, 2)

	if dst.Text(0) != "ccc" || dst.Text(1) != "ddd" {
		t.Errorf("unexpected copy: %q %q", dst.Text(0), dst.Text(1))
	}

	// The copy is independent of the source.
	src.ClearRows(2, 1, Blank(DefaultAttr))
	if dst.Text(0) != "ccc" {
		t.Error("destination should not alias the source")
	}
}

func TestFill(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 7, 80, 161} {
		s := make([]Cell, n)
		Fill(s, 0x1234)
		for i, c := range s {
			if c != 0x1234 {
				t.Fatalf("len %d: index %d not filled", n, i)
			}
		}
	}
}

func TestRowsShareMemory(t *testing.T) {
	g := NewGrid(2, 3)
	rows := g.Rows(1, 2)
	if len(rows) != 4 {
		t.Fatalf("expected 4 cells, got %d", len(rows))
	}
	rows[0] = MakeCell('z', DefaultAttr)
	if g.At(1, 0).Glyph() != 'z' {
		t.Error("Rows should return a view into the grid")
	}
}

func TestNewPage(t *testing.T) {
	geo := Geometry{Cols: 4, Rows: 3, PageLines: 2}
	p := NewPage(geo, make([]Cell, geo.PageCells()))
	if p.Height() != 2 || p.Cols() != 4 {
		t.Errorf("unexpected page shape %dx%d", p.Cols(), p.Height())
	}
}

func TestRowTextNulGlyph(t *testing.T) {
	row := []Cell{MakeCell('a', DefaultAttr), MakeCell(0, DefaultAttr), MakeCell('b', DefaultAttr), MakeCell(0, DefaultAttr)}
	if got := RowText(row); got != "a b" {
		t.Errorf("expected %q, got %q", "a b", got)
	}
}
