package system

import (
	"time"

	"github.com/rtsgo/threatgrid/internal/core/event"
	coresys "github.com/rtsgo/threatgrid/internal/core/system"
	"github.com/rtsgo/threatgrid/internal/world"
)

// EventSystem opens every tick: it advances the world clock, then swaps the
// bus so last tick's events become readable and dispatches them to
// subscribers. Phase 0 (Events).
type EventSystem struct {
	world *world.State
	bus   *event.Bus
}

func NewEventSystem(ws *world.State, bus *event.Bus) *EventSystem {
	return &EventSystem{world: ws, bus: bus}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *EventSystem) Update(_ time.Duration) {
	s.world.SetTick(s.world.Tick() + 1)
	if s.bus == nil {
		return
	}
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
