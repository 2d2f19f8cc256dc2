package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/rtsgo/threatgrid/internal/core/system"
	"github.com/rtsgo/threatgrid/internal/data"
	"github.com/rtsgo/threatgrid/internal/scenario"
	"github.com/rtsgo/threatgrid/internal/world"
)

// CleanupSystem flushes the deferred destruction queue at tick end. When a
// building or terrain object goes, passability changed, so the movement
// zones are flooded again. Phase 5 (Cleanup).
type CleanupSystem struct {
	world    *world.State
	log      *zap.Logger
	released int
	refloods int
}

func NewCleanupSystem(ws *world.State, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: ws, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	blockers := 0
	n := s.world.Flush(func(o *world.Object) {
		if o.IsBuilding() || o.Kind() == data.KindTerrain {
			blockers++
		}
	})
	s.released += n
	if blockers == 0 {
		return
	}
	zones := scenario.FloodZones(s.world)
	s.refloods++
	s.log.Debug("zones reflooded",
		zap.Int("blockers", blockers),
		zap.Int("normal", zones[world.ZoneNormal]),
		zap.Int("crusher", zones[world.ZoneCrusher]),
		zap.Int("destroyer", zones[world.ZoneDestroyer]))
}

// Released returns how many objects the system has freed.
func (s *CleanupSystem) Released() int { return s.released }

// Refloods returns how many times zones were recomputed.
func (s *CleanupSystem) Refloods() int { return s.refloods }
