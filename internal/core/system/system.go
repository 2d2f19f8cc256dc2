package system

import "time"

// Phase defines execution ordering within a single tick. Placement and
// movement mutate occupant chains; targeting only reads them. Keeping the two
// in separate phases is what lets scans run without locks or cursors that
// could be invalidated mid-walk.
type Phase int

const (
	PhaseEvents    Phase = iota // 0: swap + dispatch last tick's events
	PhaseMovement               // 1: placement, movement, Occupy/Vacate
	PhaseSight                  // 2: fog of war reveal
	PhaseTargeting              // 3: threat scans (read-only on the grid)
	PhasePersist                // 4: telemetry flush
	PhaseCleanup                // 5: release queued objects

	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseEvents:
		return "events"
	case PhaseMovement:
		return "movement"
	case PhaseSight:
		return "sight"
	case PhaseTargeting:
		return "targeting"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
