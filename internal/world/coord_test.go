package world

import "testing"

func TestAdjacentRoundTrip(t *testing.T) {
	g := Grid{Width: 16, Height: 16}
	for c := CellID(0); int(c) < g.Total(); c++ {
		x, y := g.XY(c)
		if x == 0 || y == 0 || x == g.Width-1 || y == g.Height-1 {
			continue
		}
		for f := FacingN; f < FacingCount; f++ {
			n := g.Adjacent(c, f)
			if n == c {
				t.Fatalf("interior cell %d facing %d did not move", c, f)
			}
			if back := g.Adjacent(n, f.Opposite()); back != c {
				t.Fatalf("Adjacent(Adjacent(%d,%d),opposite) = %d want %d", c, f, back, c)
			}
		}
	}
}

func TestAdjacentEdges(t *testing.T) {
	g := Grid{Width: 16, Height: 16}
	top := g.Cell(5, 0)
	for _, f := range []Facing{FacingN, FacingNE, FacingNW} {
		if got := g.Adjacent(top, f); got != top {
			t.Fatalf("top row facing %d: got %d want origin %d", f, got, top)
		}
	}
	bottom := g.Cell(5, 15)
	for _, f := range []Facing{FacingS, FacingSE, FacingSW} {
		if got := g.Adjacent(bottom, f); got != bottom {
			t.Fatalf("bottom row facing %d: got %d want origin %d", f, got, bottom)
		}
	}
	left := g.Cell(0, 5)
	if got := g.Adjacent(left, FacingW); got != left {
		t.Fatalf("west edge: got %d want origin %d", got, left)
	}
	right := g.Cell(15, 5)
	if got := g.Adjacent(right, FacingE); got != right {
		t.Fatalf("east edge: got %d want origin %d", got, right)
	}
	if got := g.Adjacent(top, FacingS); got != g.Cell(5, 1) {
		t.Fatalf("top row south: got %d want %d", got, g.Cell(5, 1))
	}
	mid := g.Cell(7, 7)
	if got := g.Adjacent(mid, Facing(9)); got != mid {
		t.Fatalf("invalid facing: got %d want origin", got)
	}
}

func TestDistance(t *testing.T) {
	cases := []struct {
		a, b Coord
		want int
	}{
		{Coord{0, 0}, Coord{0, 0}, 0},
		{Coord{0, 0}, Coord{256, 0}, 256},
		{Coord{0, 0}, Coord{256, 256}, 384},
		{Coord{0, 0}, Coord{0, -512}, 512},
		{Coord{10, 10}, Coord{0, 0}, 15},
		{Coord{0, 0}, Coord{1, 1}, 2},
	}
	for _, tc := range cases {
		if got := Distance(tc.a, tc.b); got != tc.want {
			t.Fatalf("Distance(%v,%v) = %d want %d", tc.a, tc.b, got, tc.want)
		}
		if got := Distance(tc.b, tc.a); got != tc.want {
			t.Fatalf("Distance not symmetric for %v,%v", tc.a, tc.b)
		}
	}
}

func TestDistanceTriangleInequality(t *testing.T) {
	pts := []Coord{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {3, 7}, {-5, 2}, {256, 100}, {-300, -301}, {17, 0}}
	for _, a := range pts {
		for _, b := range pts {
			for _, c := range pts {
				if Distance(a, c) > Distance(a, b)+Distance(b, c) {
					t.Fatalf("triangle inequality broken for %v %v %v", a, b, c)
				}
			}
		}
	}
}

func TestCellAtCenterRoundTrip(t *testing.T) {
	g := Grid{Width: 8, Height: 4}
	for c := CellID(0); int(c) < g.Total(); c++ {
		if got := g.CellAt(g.Center(c)); got != c {
			t.Fatalf("CellAt(Center(%d)) = %d", c, got)
		}
	}
	if got := g.CellAt(Coord{X: -1, Y: 0}); got != InvalidCell {
		t.Fatalf("negative coord: got %d want InvalidCell", got)
	}
}

func TestRingVisitsEachCellOnce(t *testing.T) {
	g := Grid{Width: 16, Height: 16}
	center := g.Cell(8, 8)
	seen := map[CellID]int{}
	for r := 0; r <= 3; r++ {
		g.Ring(center, r, func(c CellID) bool {
			seen[c]++
			cx, cy := g.XY(center)
			x, y := g.XY(c)
			d := max(absInt(int(x-cx)), absInt(int(y-cy)))
			if d != r {
				t.Fatalf("ring %d visited cell at radius %d", r, d)
			}
			return true
		})
	}
	if len(seen) != 49 {
		t.Fatalf("rings 0..3 visited %d cells want 49", len(seen))
	}
	for c, n := range seen {
		if n != 1 {
			t.Fatalf("cell %d visited %d times", c, n)
		}
	}

	var corner []CellID
	g.Ring(g.Cell(0, 0), 1, func(c CellID) bool {
		corner = append(corner, c)
		return true
	})
	if len(corner) != 3 {
		t.Fatalf("corner ring clipped to %d cells want 3", len(corner))
	}
}
