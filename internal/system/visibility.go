package system

import (
	"time"

	coresys "github.com/rtsgo/threatgrid/internal/core/system"
	"github.com/rtsgo/threatgrid/internal/world"
)

// SightSystem recomputes fog of war from every placed object's sight radius.
// Objects only become discoverable once some house sees them, and the
// evaluator reads that. Phase 2 (Sight), every interval ticks.
type SightSystem struct {
	world    *world.State
	interval int
	ticks    int
	revealed int
}

func NewSightSystem(ws *world.State, intervalTicks int) *SightSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	return &SightSystem{world: ws, interval: intervalTicks}
}

func (s *SightSystem) Phase() coresys.Phase { return coresys.PhaseSight }

func (s *SightSystem) Update(_ time.Duration) {
	s.ticks++
	if s.ticks < s.interval {
		return
	}
	s.ticks = 0
	s.revealed = s.world.RefreshSight()
}

// Revealed returns the cell count of the last refresh.
func (s *SightSystem) Revealed() int { return s.revealed }
