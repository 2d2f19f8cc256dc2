package world

import "fmt"

// LeptonsPerCell is the number of sub-cell distance units across one cell.
const LeptonsPerCell = 256

// CellID is the linear index of a cell: y*width + x.
type CellID int32

// InvalidCell is the only value outside [0, Total) a CellID may carry.
const InvalidCell CellID = -1

// Coord is a world position in leptons.
type Coord struct {
	X int32
	Y int32
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Facing is one of the eight compass directions, clockwise from north.
type Facing int8

const (
	FacingN Facing = iota
	FacingNE
	FacingE
	FacingSE
	FacingS
	FacingSW
	FacingW
	FacingNW

	FacingCount
)

// facing deltas: 0=N, 1=NE, 2=E, 3=SE, 4=S, 5=SW, 6=W, 7=NW
var facingDX = [FacingCount]int32{0, 1, 1, 1, 0, -1, -1, -1}
var facingDY = [FacingCount]int32{-1, -1, 0, 1, 1, 1, 0, -1}

// Valid reports whether f is one of the eight facings.
func (f Facing) Valid() bool { return f >= 0 && f < FacingCount }

// Opposite returns the facing pointing the other way.
func (f Facing) Opposite() Facing { return (f + 4) % FacingCount }

func (f Facing) northward() bool { return f == FacingN || f == FacingNE || f == FacingNW }
func (f Facing) southward() bool { return f == FacingS || f == FacingSE || f == FacingSW }

// Grid maps between cell ids, cell x/y and lepton coordinates for a fixed
// width x height map.
type Grid struct {
	Width  int32
	Height int32
}

// Total returns the number of cells.
func (g Grid) Total() int { return int(g.Width) * int(g.Height) }

// Valid reports whether c names a cell of this grid.
func (g Grid) Valid(c CellID) bool {
	return c >= 0 && int(c) < g.Total()
}

// Cell returns the id of the cell at (x, y), or InvalidCell if off the map.
func (g Grid) Cell(x, y int32) CellID {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return InvalidCell
	}
	return CellID(y*g.Width + x)
}

// XY returns the column and row of c.
func (g Grid) XY(c CellID) (x, y int32) {
	return int32(c) % g.Width, int32(c) / g.Width
}

// Adjacent returns the neighbour of c in direction f. An invalid facing, or a
// step that would leave the map, yields c itself so callers always hold a
// usable cell.
func (g Grid) Adjacent(c CellID, f Facing) CellID {
	if !f.Valid() || !g.Valid(c) {
		return c
	}
	x, y := g.XY(c)
	if y == 0 && f.northward() {
		return c
	}
	if y == g.Height-1 && f.southward() {
		return c
	}
	n := g.Cell(x+facingDX[f], y+facingDY[f])
	if n == InvalidCell {
		return c
	}
	return n
}

// Center returns the lepton coordinate of the middle of c.
func (g Grid) Center(c CellID) Coord {
	x, y := g.XY(c)
	return Coord{
		X: x*LeptonsPerCell + LeptonsPerCell/2,
		Y: y*LeptonsPerCell + LeptonsPerCell/2,
	}
}

// CellAt returns the cell containing coord, or InvalidCell.
func (g Grid) CellAt(coord Coord) CellID {
	if coord.X < 0 || coord.Y < 0 {
		return InvalidCell
	}
	return g.Cell(coord.X/LeptonsPerCell, coord.Y/LeptonsPerCell)
}

// Distance returns the lepton distance between a and b using the octagonal
// approximation max(dx,dy) + min(dx,dy)/2. The half is rounded up: that keeps
// the result equal to the ceiling of a true norm, so the triangle inequality
// holds for integer coordinates.
func Distance(a, b Coord) int {
	dx := absInt(int(a.X) - int(b.X))
	dy := absInt(int(a.Y) - int(b.Y))
	if dx > dy {
		return dx + (dy+1)/2
	}
	return dy + (dx+1)/2
}

// CellDistance is Distance between the centers of two cells.
func (g Grid) CellDistance(a, b CellID) int {
	return Distance(g.Center(a), g.Center(b))
}

// Rect is an inclusive-exclusive cell rectangle.
type Rect struct {
	X, Y, W, H int32
}

// Contains reports whether cell column x and row y fall inside r.
func (r Rect) Contains(x, y int32) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
