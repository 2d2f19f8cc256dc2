package system

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/rtsgo/threatgrid/internal/core/ecs"
	coresys "github.com/rtsgo/threatgrid/internal/core/system"
	"github.com/rtsgo/threatgrid/internal/data"
	"github.com/rtsgo/threatgrid/internal/world"
)

// MovementSystem drives a random walk: each mobile object steps to a
// neighbouring cell with probability chance per tick, through State.Move so
// the occupant chains stay consistent. Aircraft also take off and land.
// Phase 1 (Movement).
type MovementSystem struct {
	world    *world.State
	rng      *rand.Rand
	chance   float64
	altitude int
	log      *zap.Logger

	ids     []ecs.EntityID
	moves   int
	blocked int
}

func NewMovementSystem(ws *world.State, rng *rand.Rand, chance float64, altitude int, log *zap.Logger) *MovementSystem {
	return &MovementSystem{
		world:    ws,
		rng:      rng,
		chance:   chance,
		altitude: altitude,
		log:      log,
		ids:      make([]ecs.EntityID, 0, 256),
	}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseMovement }

func (s *MovementSystem) Update(_ time.Duration) {
	if s.chance <= 0 {
		return
	}
	// Snapshot: a landing aircraft must not be visited twice.
	s.ids = s.ids[:0]
	collect := func(id ecs.EntityID) bool {
		s.ids = append(s.ids, id)
		return true
	}
	s.world.Aircraft().Each(collect)
	s.world.Ground().Each(collect)

	for _, id := range s.ids {
		o, ok := s.world.Object(id)
		if !ok || o.InLimbo || !o.Active || o.IsBuilding() || o.Type.Speed == data.SpeedNone {
			continue
		}
		if s.rng.Float64() >= s.chance {
			continue
		}
		if o.IsAirborne() {
			// Landed aircraft do not taxi.
			if !s.flightChange(o) && o.IsFlying() {
				s.step(o)
			}
			continue
		}
		s.step(o)
	}
}

// flightChange sometimes lifts a landed aircraft or sets a flying one down.
// It reports whether the object's turn was used.
func (s *MovementSystem) flightChange(o *world.Object) bool {
	if s.rng.Intn(8) != 0 {
		return false
	}
	if !o.IsFlying() {
		if s.altitude > 0 {
			s.world.TakeOff(o.ID, s.altitude)
		}
		return true
	}
	if !s.world.IsClearToMove(o.Home(), data.SpeedWheel, false) {
		return true
	}
	if err := s.world.Land(o.ID); err != nil {
		s.log.Warn("landing refused", zap.Uint64("object", uint64(o.ID)), zap.Error(err))
	}
	return true
}

func (s *MovementSystem) step(o *world.Object) {
	f := world.Facing(s.rng.Intn(int(world.FacingCount)))
	from := o.Home()
	to := s.world.Adjacent(from, f)
	if to == from || !s.world.InBounds(to) {
		s.blocked++
		return
	}
	speed := o.Type.Speed
	ignoreInfantry := o.Kind() == data.KindInfantry
	if !o.IsFlying() && !s.world.IsClearToMove(to, speed, ignoreInfantry) {
		s.blocked++
		return
	}
	if err := s.world.Move(o.ID, to); err != nil {
		s.blocked++
		s.log.Debug("move refused", zap.Uint64("object", uint64(o.ID)), zap.Error(err))
		return
	}
	o.Heading = f
	s.moves++
}

// Moves returns how many steps succeeded.
func (s *MovementSystem) Moves() int { return s.moves }

// Blocked returns how many attempted steps were refused.
func (s *MovementSystem) Blocked() int { return s.blocked }
