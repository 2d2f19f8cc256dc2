package scenario

import "github.com/rtsgo/threatgrid/internal/world"

// zonePassable reports whether a mover of zone class kind can cross cell.
// Walls stop normal movers only; trees stop everything but destroyers.
func zonePassable(ws *world.State, cell world.CellID, kind world.ZoneKind) bool {
	c := ws.Cell(cell)
	if c == nil {
		return false
	}
	switch c.Land {
	case world.LandWater, world.LandRock, world.LandRiver:
		return false
	case world.LandWall:
		if kind == world.ZoneNormal {
			return false
		}
	}
	if _, ok := ws.CellBuilding(cell); ok {
		return false
	}
	if c.Flags.Has(world.FlagMonolith) && kind != world.ZoneDestroyer {
		return false
	}
	return true
}

// FloodZones recomputes the connectivity partitions for every zone kind and
// writes them through State.SetZone. Zone ids start at 1; impassable cells
// get 0. Returns the number of zones found per kind.
func FloodZones(ws *world.State) [world.ZoneKindCount]int {
	var counts [world.ZoneKindCount]int
	grid := ws.Grid()
	total := grid.Total()
	queue := make([]world.CellID, 0, 256)

	for kind := world.ZoneKind(0); kind < world.ZoneKindCount; kind++ {
		for i := 0; i < total; i++ {
			ws.SetZone(world.CellID(i), kind, 0)
		}
		zone := 0
		for i := 0; i < total; i++ {
			start := world.CellID(i)
			if ws.Zone(start, kind) != 0 || !zonePassable(ws, start, kind) {
				continue
			}
			zone++
			ws.SetZone(start, kind, zone)
			queue = append(queue[:0], start)
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				for f := world.Facing(0); f < world.FacingCount; f++ {
					n := ws.Adjacent(cur, f)
					if n == cur || ws.Zone(n, kind) != 0 || !zonePassable(ws, n, kind) {
						continue
					}
					ws.SetZone(n, kind, zone)
					queue = append(queue, n)
				}
			}
		}
		counts[kind] = zone
	}
	return counts
}
