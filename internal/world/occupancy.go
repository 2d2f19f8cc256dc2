package world

import (
	"fmt"

	"github.com/rtsgo/threatgrid/internal/core/ecs"
	"github.com/rtsgo/threatgrid/internal/core/event"
	"github.com/rtsgo/threatgrid/internal/data"
)

// Occupy adds object id to the occupant chain of cell. Non-buildings go to
// the head, a building to the tail. Occupying twice is a no-op. Chaining a
// second building is refused: it panics in strict mode and otherwise is
// logged, reported on the bus and returned as ErrSecondBuilding.
// An object still chained in another cell is refused with ErrChained.
func (s *State) Occupy(cell CellID, id ecs.EntityID) error {
	if !s.grid.Valid(cell) {
		return fmt.Errorf("occupy cell %d: %w", cell, ErrOutOfBounds)
	}
	o, ok := s.objects.Get(id)
	if !ok {
		return fmt.Errorf("occupy cell %d: %w", cell, ErrUnknownObject)
	}
	if !o.Active {
		return fmt.Errorf("occupy cell %d: %w", cell, ErrInactive)
	}
	ch := s.chainOf(cell)
	if ch.contains(id) {
		return nil
	}
	if o.home != cell && s.grid.Valid(o.home) && s.chainOf(o.home).contains(id) {
		return fmt.Errorf("occupy cell %d from %d: %w", cell, o.home, ErrChained)
	}
	c := ch.cell
	if o.IsBuilding() {
		if existing, ok := ch.hasBuilding(); ok {
			return s.violation(cell, id, existing, ErrSecondBuilding)
		}
		ch.pushBack(o)
	} else {
		ch.pushFront(o)
	}
	c.Flags |= flagFor(o)
	o.Discovered |= c.Visible
	event.Emit(s.bus, event.CellChanged{Cell: int32(cell)})
	return nil
}

// Vacate removes object id from the chain of cell. Removing an object that is
// not there does nothing.
func (s *State) Vacate(cell CellID, id ecs.EntityID) {
	if !s.grid.Valid(cell) {
		return
	}
	ch := s.chainOf(cell)
	if !ch.remove(id) {
		return
	}
	s.recalcFlags(cell)
	event.Emit(s.bus, event.CellChanged{Cell: int32(cell)})
}

func flagFor(o *Object) CellFlags {
	switch o.Kind() {
	case data.KindBuilding:
		return FlagBuilding
	case data.KindInfantry:
		return FlagInfantry
	case data.KindUnit, data.KindVessel, data.KindAircraft:
		return FlagVehicle
	case data.KindTerrain:
		return FlagMonolith
	}
	return 0
}

func (s *State) recalcFlags(cell CellID) {
	var f CellFlags
	ch := s.chainOf(cell)
	ch.each(func(o *Object) bool {
		f |= flagFor(o)
		return true
	})
	ch.cell.Flags = f
}

// FirstOccupantOfCapability returns the first member of the chain of cell,
// head to tail, that has capability c.
func (s *State) FirstOccupantOfCapability(cell CellID, c Capability) (ecs.EntityID, bool) {
	if !s.grid.Valid(cell) {
		return ecs.None, false
	}
	found := ecs.None
	s.chainOf(cell).each(func(o *Object) bool {
		if o.Has(c) {
			found = o.ID
			return false
		}
		return true
	})
	return found, found != ecs.None
}

// EachOccupant visits the chain of cell head to tail until fn returns false.
// fn must not Occupy or Vacate.
func (s *State) EachOccupant(cell CellID, fn func(*Object) bool) {
	if !s.grid.Valid(cell) {
		return
	}
	s.chainOf(cell).each(fn)
}

// Occupants returns the chain of cell as a slice, head first.
func (s *State) Occupants(cell CellID) []ecs.EntityID {
	var out []ecs.EntityID
	s.EachOccupant(cell, func(o *Object) bool {
		out = append(out, o.ID)
		return true
	})
	return out
}

// MarkOverlap registers id as overlapping cell. A full cell accepts a
// building by evicting the first slot that holds neither a building nor
// terrain; anything else is silently dropped. Reports whether id now holds a
// slot.
func (s *State) MarkOverlap(cell CellID, id ecs.EntityID) bool {
	if !s.grid.Valid(cell) {
		return false
	}
	o, ok := s.objects.Get(id)
	if !ok {
		return false
	}
	c := &s.cells[cell]
	free := -1
	for i, slot := range c.overlap {
		if slot == id {
			return true
		}
		if free < 0 && !s.objects.Alive(slot) {
			free = i
		}
	}
	if free >= 0 {
		c.overlap[free] = id
		return true
	}
	if !o.IsBuilding() {
		return false
	}
	for i, slot := range c.overlap {
		other, _ := s.objects.Get(slot)
		if other != nil && !other.IsBuilding() && other.Kind() != data.KindTerrain {
			c.overlap[i] = id
			return true
		}
	}
	return false
}

// ClearOverlap frees the first overlap slot of cell holding id.
func (s *State) ClearOverlap(cell CellID, id ecs.EntityID) {
	if !s.grid.Valid(cell) || id == ecs.None {
		return
	}
	c := &s.cells[cell]
	for i, slot := range c.overlap {
		if slot == id {
			c.overlap[i] = ecs.None
			return
		}
	}
}

// CellBuilding returns the building chained into cell or covering it with
// its footprint.
func (s *State) CellBuilding(cell CellID) (*Object, bool) {
	if id, ok := s.FirstOccupantOfCapability(cell, CapBuilding); ok {
		return s.objects.Get(id)
	}
	if !s.grid.Valid(cell) {
		return nil, false
	}
	for _, slot := range s.cells[cell].overlap {
		if o, ok := s.objects.Get(slot); ok && o.IsBuilding() {
			return o, true
		}
	}
	return nil, false
}

// CellTechno returns the first combat object chained into cell.
func (s *State) CellTechno(cell CellID) (*Object, bool) {
	id, ok := s.FirstOccupantOfCapability(cell, CapTechno)
	if !ok {
		return nil, false
	}
	return s.objects.Get(id)
}

// CellTerrain returns the terrain feature chained into cell.
func (s *State) CellTerrain(cell CellID) (*Object, bool) {
	id, ok := s.FirstOccupantOfCapability(cell, CapTerrain)
	if !ok {
		return nil, false
	}
	return s.objects.Get(id)
}

// IsClearToMove reports whether a mover of class speed could enter cell right
// now. Infantry in the cell blocks unless ignoreInfantry is set.
func (s *State) IsClearToMove(cell CellID, speed data.Speed, ignoreInfantry bool) bool {
	c := s.Cell(cell)
	if c == nil || !c.Land.Passable(speed) {
		return false
	}
	if speed == data.SpeedWinged {
		return true
	}
	if c.Flags.Has(FlagBuilding) || c.Flags.Has(FlagMonolith) || c.Flags.Has(FlagVehicle) {
		return false
	}
	if !ignoreInfantry && c.Flags.Has(FlagInfantry) {
		return false
	}
	if b, ok := s.CellBuilding(cell); ok && b.home != cell {
		return false
	}
	return true
}

// Ring visits every on-map cell at Chebyshev radius r from center: the top
// row, the bottom row, then the left and right columns without their corners.
// Radius 0 visits center alone. Stops when fn returns false.
func (g Grid) Ring(center CellID, r int, fn func(CellID) bool) {
	if !g.Valid(center) || r < 0 {
		return
	}
	cx, cy := g.XY(center)
	if r == 0 {
		fn(center)
		return
	}
	rr := int32(r)
	visit := func(x, y int32) bool {
		c := g.Cell(x, y)
		if c == InvalidCell {
			return true
		}
		return fn(c)
	}
	for x := cx - rr; x <= cx+rr; x++ {
		if !visit(x, cy-rr) {
			return
		}
	}
	for x := cx - rr; x <= cx+rr; x++ {
		if !visit(x, cy+rr) {
			return
		}
	}
	for y := cy - rr + 1; y <= cy+rr-1; y++ {
		if !visit(cx-rr, y) {
			return
		}
		if !visit(cx+rr, y) {
			return
		}
	}
}
