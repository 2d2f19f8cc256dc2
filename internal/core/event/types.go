package event

import "github.com/rtsgo/threatgrid/internal/core/ecs"

// CellChanged tells the radar/redraw collaborator that a cell's occupancy
// changed. The core never renders.
type CellChanged struct {
	Cell int32
}

// InvariantViolated reports a refused mutation that indicates an upstream
// modelling bug (e.g. two buildings chained into one cell).
type InvariantViolated struct {
	Tick     uint64
	Cell     int32
	Object   ecs.EntityID
	Existing ecs.EntityID
	Reason   string
}

// TargetAcquired is emitted when a seeker locks a new target.
type TargetAcquired struct {
	Tick   uint64
	Seeker ecs.EntityID
	Target ecs.EntityID
	Mode   uint32
	Score  int
	Cell   int32
}

// ObjectDestroyed is emitted once an object has been lifted off the map
// and queued for release.
type ObjectDestroyed struct {
	Object ecs.EntityID
	House  uint8
}
