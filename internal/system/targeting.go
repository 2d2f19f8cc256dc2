package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/rtsgo/threatgrid/internal/core/ecs"
	"github.com/rtsgo/threatgrid/internal/core/event"
	coresys "github.com/rtsgo/threatgrid/internal/core/system"
	"github.com/rtsgo/threatgrid/internal/data"
	"github.com/rtsgo/threatgrid/internal/persist"
	"github.com/rtsgo/threatgrid/internal/scripting"
	"github.com/rtsgo/threatgrid/internal/threat"
	"github.com/rtsgo/threatgrid/internal/world"
)

// ModeFunc picks the scan mode a seeker hunts with.
type ModeFunc func(seeker *world.Object) threat.Mode

// ScriptedModes asks the scan_mode Lua function once per seeker type and
// caches the answer. Types the script does not cover, or a nil engine, get
// fallback.
func ScriptedModes(engine *scripting.Engine, fallback threat.Mode) ModeFunc {
	cache := make(map[*data.TypeClass]threat.Mode)
	return func(o *world.Object) threat.Mode {
		if m, ok := cache[o.Type]; ok {
			return m
		}
		m := fallback
		if engine != nil {
			if bits, ok := engine.ScanMode(o.Type.Name, o.Kind().String()); ok {
				m = threat.Mode(bits)
			}
		}
		cache[o.Type] = m
		return m
	}
}

// TraceSink receives one record per scan.
type TraceSink interface {
	Write(v any) error
}

// TargetingSystem runs the best-target scan for every armed object. Seekers
// are staggered so each rescans every rescan ticks. Phase 3 (Targeting):
// scans only read the grid.
type TargetingSystem struct {
	world   *world.State
	scanner *threat.Scanner
	modes   ModeFunc
	trace   TraceSink
	rescan  uint64
	log     *zap.Logger

	seekers  []ecs.EntityID
	scans    int
	acquired int
}

// NewTargetingSystem wires a scanner to the world. With zoneFilter set,
// map-wide hunts skip candidates a ground seeker cannot reach. trace may be
// nil.
func NewTargetingSystem(ws *world.State, scanner *threat.Scanner, modes ModeFunc, rescanTicks int, zoneFilter bool, trace TraceSink, log *zap.Logger) *TargetingSystem {
	if rescanTicks < 1 {
		rescanTicks = 1
	}
	if zoneFilter {
		scanner.SetReachable(zoneReachable(ws))
	}
	return &TargetingSystem{
		world:   ws,
		scanner: scanner,
		modes:   modes,
		trace:   trace,
		rescan:  uint64(rescanTicks),
		log:     log,
		seekers: make([]ecs.EntityID, 0, 256),
	}
}

func (s *TargetingSystem) Phase() coresys.Phase { return coresys.PhaseTargeting }

func (s *TargetingSystem) Update(_ time.Duration) {
	tick := s.world.Tick()
	s.seekers = s.seekers[:0]
	collect := func(id ecs.EntityID) bool {
		if (tick+uint64(id.Index()))%s.rescan == 0 {
			s.seekers = append(s.seekers, id)
		}
		return true
	}
	s.world.Aircraft().Each(collect)
	s.world.Ground().Each(collect)

	for _, id := range s.seekers {
		o, ok := s.world.Object(id)
		if !ok || o.InLimbo || !o.Active || !o.Type.Armed() {
			continue
		}
		s.acquire(o, tick)
	}
}

func (s *TargetingSystem) acquire(o *world.Object, tick uint64) {
	mode := s.modes(o).Normalize()
	res := s.scanner.Scan(o, mode)
	s.scans++

	if s.trace != nil {
		rec := persist.TraceRecord{
			Tick:      tick,
			Seeker:    uint64(o.ID),
			Mode:      mode.String(),
			Target:    uint64(res.Target),
			Score:     res.Score,
			Evaluated: res.Evaluated,
			Radius:    res.Radius,
			EarlyExit: res.EarlyExit,
		}
		if err := s.trace.Write(rec); err != nil {
			s.log.Warn("scan trace write failed", zap.Error(err))
			s.trace = nil
		}
	}

	prev := o.Target
	o.Target = res.Target
	if res.Target == ecs.None || res.Target == prev {
		return
	}
	cell := int32(world.InvalidCell)
	if t, ok := s.world.Object(res.Target); ok {
		cell = int32(s.world.FireCell(t))
	}
	event.Emit(s.world.Bus(), event.TargetAcquired{
		Tick:   tick,
		Seeker: o.ID,
		Target: res.Target,
		Mode:   uint32(mode),
		Score:  res.Score,
		Cell:   cell,
	})
	s.acquired++
}

// Scans returns how many scans have run.
func (s *TargetingSystem) Scans() int { return s.scans }

// Acquired returns how many new target locks were made.
func (s *TargetingSystem) Acquired() int { return s.acquired }

// zoneReachable keeps a ground seeker's map-wide hunt inside its movement
// zone. Flyers, boats and buildings are not filtered, and neither are
// flying candidates.
func zoneReachable(ws *world.State) func(seeker, candidate *world.Object) bool {
	return func(seeker, candidate *world.Object) bool {
		if seeker.IsAirborne() || seeker.IsBoat() || seeker.IsBuilding() || candidate.IsFlying() {
			return true
		}
		kind := world.ZoneNormal
		if seeker.Type.Speed == data.SpeedTrack {
			kind = world.ZoneCrusher
		}
		zone := ws.Zone(seeker.Home(), kind)
		if zone == 0 {
			return true
		}
		home := candidate.Home()
		if ws.Zone(home, kind) == zone {
			return true
		}
		// Buildings and anything standing in an impassable cell are reached
		// from a neighbour.
		for f := world.Facing(0); f < world.FacingCount; f++ {
			if n := ws.Adjacent(home, f); n != home && ws.Zone(n, kind) == zone {
				return true
			}
		}
		return false
	}
}
