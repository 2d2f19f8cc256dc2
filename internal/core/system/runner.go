package system

import (
	"slices"
	"time"
)

// Runner executes systems in phase order each tick and keeps a running
// wall-clock total per phase.
type Runner struct {
	systems []System
	dirty   bool
	tick    uint64
	spent   [phaseCount]time.Duration
}

func NewRunner() *Runner {
	return &Runner{systems: make([]System, 0, 8)}
}

// Register adds s. Systems of the same phase run in registration order.
func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.dirty = true
}

// Tick runs every system once and advances the tick counter.
func (r *Runner) Tick(dt time.Duration) {
	r.run(dt, func(System) bool { return true })
	r.tick++
}

// TickPhase runs only the systems registered for phase. The tick counter
// does not advance.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.run(dt, func(s System) bool { return s.Phase() == phase })
}

func (r *Runner) run(dt time.Duration, want func(System) bool) {
	if r.dirty {
		slices.SortStableFunc(r.systems, func(a, b System) int { return int(a.Phase()) - int(b.Phase()) })
		r.dirty = false
	}
	for _, s := range r.systems {
		if !want(s) {
			continue
		}
		start := time.Now()
		s.Update(dt)
		if p := s.Phase(); p >= 0 && p < phaseCount {
			r.spent[p] += time.Since(start)
		}
	}
}

// Ticks returns the number of completed ticks.
func (r *Runner) Ticks() uint64 { return r.tick }

// Spent returns the total time systems of phase have run for.
func (r *Runner) Spent(phase Phase) time.Duration {
	if phase < 0 || phase >= phaseCount {
		return 0
	}
	return r.spent[phase]
}
