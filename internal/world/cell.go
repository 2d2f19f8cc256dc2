package world

import "github.com/rtsgo/threatgrid/internal/core/ecs"

// OverlapSlots is the number of overlap registrations a cell can hold.
const OverlapSlots = 3

// CellFlags summarize which categories currently occupy a cell.
type CellFlags uint8

const (
	FlagBuilding CellFlags = 1 << iota
	FlagVehicle
	FlagMonolith
	FlagInfantry
)

func (f CellFlags) Has(bit CellFlags) bool { return f&bit != 0 }

// Cell is one tile of the world grid. The chain and overlap slots are
// non-owning references into the object arena.
type Cell struct {
	ID    CellID
	Land  LandType
	Flags CellFlags

	Mapped  HouseMask
	Visible HouseMask
	Jammed  HouseMask

	zones   [ZoneKindCount]int32
	head    ecs.EntityID
	overlap [OverlapSlots]ecs.EntityID
}

// Head returns the first object of the occupant chain, or ecs.None.
func (c *Cell) Head() ecs.EntityID { return c.head }

// Overlaps returns a copy of the overlap slots. Empty slots are ecs.None.
func (c *Cell) Overlaps() [OverlapSlots]ecs.EntityID { return c.overlap }

// Empty reports whether nothing occupies or overlaps the cell.
func (c *Cell) Empty() bool {
	if c.head != ecs.None {
		return false
	}
	for _, id := range c.overlap {
		if id != ecs.None {
			return false
		}
	}
	return true
}

func (c *Cell) reset() {
	id := c.ID
	*c = Cell{ID: id}
}
