package world

import "github.com/rtsgo/threatgrid/internal/core/ecs"

// SetVisible sets or clears the visible bit of house on cell.
func (s *State) SetVisible(cell CellID, house House, on bool) {
	c := s.Cell(cell)
	if c == nil {
		return
	}
	if on {
		c.Visible.Set(house)
	} else {
		c.Visible.Clear(house)
	}
}

// SetMapped sets or clears the mapped (explored) bit of house on cell.
func (s *State) SetMapped(cell CellID, house House, on bool) {
	c := s.Cell(cell)
	if c == nil {
		return
	}
	if on {
		c.Mapped.Set(house)
	} else {
		c.Mapped.Clear(house)
	}
}

// SetJammed marks cell as hidden from house. Jammed cells are never revealed.
func (s *State) SetJammed(cell CellID, house House, on bool) {
	c := s.Cell(cell)
	if c == nil {
		return
	}
	if on {
		c.Jammed.Set(house)
	} else {
		c.Jammed.Clear(house)
	}
}

func (s *State) IsVisibleTo(cell CellID, house House) bool {
	c := s.Cell(cell)
	return c != nil && c.Visible.Has(house)
}

func (s *State) IsMappedTo(cell CellID, house House) bool {
	c := s.Cell(cell)
	return c != nil && c.Mapped.Has(house)
}

// RevealAround maps and lights every cell within radius cells of center for
// house, and marks whatever occupies or overlaps those cells as discovered.
// Returns the number of cells revealed.
func (s *State) RevealAround(center CellID, radius int, house House) int {
	if !s.grid.Valid(center) || house >= HouseCount || radius < 0 {
		return 0
	}
	limit := radius * LeptonsPerCell
	n := 0
	for r := 0; r <= radius; r++ {
		s.grid.Ring(center, r, func(cell CellID) bool {
			if s.grid.CellDistance(center, cell) > limit {
				return true
			}
			c := &s.cells[cell]
			if c.Jammed.Has(house) {
				return true
			}
			c.Mapped.Set(house)
			c.Visible.Set(house)
			s.discover(c, house)
			n++
			return true
		})
	}
	return n
}

func (s *State) discover(c *Cell, house House) {
	s.chainOf(c.ID).each(func(o *Object) bool {
		o.Discovered.Set(house)
		return true
	})
	for _, id := range c.overlap {
		if o, ok := s.objects.Get(id); ok {
			o.Discovered.Set(house)
		}
	}
}

// ClearVisible drops the visible bit of house from every cell. Mapped bits
// stay, so explored terrain remains explored.
func (s *State) ClearVisible(house House) {
	if house >= HouseCount {
		return
	}
	for i := range s.cells {
		s.cells[i].Visible.Clear(house)
	}
}

// RefreshSight recomputes every house's visible mask from the sight radius of
// each placed techno object. Mapped bits accumulate across calls.
func (s *State) RefreshSight() int {
	for i := range s.cells {
		s.cells[i].Visible = 0
	}
	n := 0
	reveal := func(id ecs.EntityID) bool {
		o, ok := s.objects.Get(id)
		if !ok || o.InLimbo || o.Type == nil || o.Type.Sight <= 0 {
			return true
		}
		n += s.RevealAround(s.FireCell(o), o.Type.Sight, o.House)
		return true
	}
	s.aircraft.Each(reveal)
	s.ground.Each(reveal)
	return n
}
