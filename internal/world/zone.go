package world

// ZoneKind selects which connectivity partition to query. Crushers can drive
// through walls that block normal movers; destroyers through anything a weapon
// can clear.
type ZoneKind uint8

const (
	ZoneNormal ZoneKind = iota
	ZoneCrusher
	ZoneDestroyer

	ZoneKindCount
)

// Zone returns the connectivity-partition id of cell for kind. Zone 0 means
// impassable. The ids are written by the flood-fill collaborator through
// SetZone whenever passability changes; the core only reads them.
func (s *State) Zone(cell CellID, kind ZoneKind) int {
	if !s.grid.Valid(cell) || kind >= ZoneKindCount {
		return 0
	}
	return int(s.cells[cell].zones[kind])
}

// SetZone records the partition id of cell for kind.
func (s *State) SetZone(cell CellID, kind ZoneKind, zone int) {
	if !s.grid.Valid(cell) || kind >= ZoneKindCount {
		return
	}
	s.cells[cell].zones[kind] = int32(zone)
}

// SameZone reports whether a and b are mutually reachable under kind.
func (s *State) SameZone(a, b CellID, kind ZoneKind) bool {
	za := s.Zone(a, kind)
	return za != 0 && za == s.Zone(b, kind)
}
