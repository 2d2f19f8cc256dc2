package system

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rtsgo/threatgrid/internal/core/ecs"
	"github.com/rtsgo/threatgrid/internal/core/event"
	coresys "github.com/rtsgo/threatgrid/internal/core/system"
	"github.com/rtsgo/threatgrid/internal/persist"
	"github.com/rtsgo/threatgrid/internal/threat"
	"github.com/rtsgo/threatgrid/internal/world"
)

// TelemetrySystem drains target locks and invariant violations from the
// event bus into the run recorder, in batches. Phase 4 (Persist).
type TelemetrySystem struct {
	world    *world.State
	bus      *event.Bus
	recorder persist.Recorder
	runID    uuid.UUID
	batch    int
	log      *zap.Logger

	acquisitions []persist.Acquisition
	violations   []persist.Violation
	nAcq         int64
	nViol        int64
}

func NewTelemetrySystem(ws *world.State, bus *event.Bus, recorder persist.Recorder, runID uuid.UUID, batch int, log *zap.Logger) *TelemetrySystem {
	if batch < 1 {
		batch = 1
	}
	return &TelemetrySystem{
		world:        ws,
		bus:          bus,
		recorder:     recorder,
		runID:        runID,
		batch:        batch,
		log:          log,
		acquisitions: make([]persist.Acquisition, 0, batch),
		violations:   make([]persist.Violation, 0, 16),
	}
}

func (s *TelemetrySystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *TelemetrySystem) Update(_ time.Duration) {
	s.collect()
	if len(s.acquisitions) >= s.batch || len(s.violations) > 0 {
		s.flush()
	}
}

func (s *TelemetrySystem) typeName(id ecs.EntityID) string {
	if o, ok := s.world.Object(id); ok && o.Type != nil {
		return o.Type.Name
	}
	return "unknown"
}

func (s *TelemetrySystem) collect() {
	if s.bus == nil {
		return
	}
	for _, ev := range event.Pending[event.TargetAcquired](s.bus) {
		s.acquisitions = append(s.acquisitions, persist.Acquisition{
			RunID:      s.runID,
			Tick:       ev.Tick,
			Seeker:     uint64(ev.Seeker),
			SeekerType: s.typeName(ev.Seeker),
			Target:     uint64(ev.Target),
			TargetType: s.typeName(ev.Target),
			Mode:       threat.Mode(ev.Mode).String(),
			Score:      ev.Score,
			Cell:       ev.Cell,
		})
	}
	for _, ev := range event.Pending[event.InvariantViolated](s.bus) {
		s.violations = append(s.violations, persist.Violation{
			RunID:    s.runID,
			Tick:     ev.Tick,
			Cell:     ev.Cell,
			Object:   uint64(ev.Object),
			Existing: uint64(ev.Existing),
			Reason:   ev.Reason,
		})
	}
}

// flush writes buffered rows. Rows that fail to store are dropped and
// logged; telemetry never stalls the game loop.
func (s *TelemetrySystem) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(s.acquisitions) > 0 {
		if err := s.recorder.RecordAcquisitions(ctx, s.acquisitions); err != nil {
			s.log.Error("record acquisitions", zap.Int("rows", len(s.acquisitions)), zap.Error(err))
		} else {
			s.nAcq += int64(len(s.acquisitions))
		}
		s.acquisitions = s.acquisitions[:0]
	}
	if len(s.violations) > 0 {
		if err := s.recorder.RecordViolations(ctx, s.violations); err != nil {
			s.log.Error("record violations", zap.Int("rows", len(s.violations)), zap.Error(err))
		} else {
			s.nViol += int64(len(s.violations))
		}
		s.violations = s.violations[:0]
	}
}

// Drain collects whatever is still queued on the bus and writes every
// buffered row. Called once on shutdown, after the last tick.
func (s *TelemetrySystem) Drain() {
	if s.bus != nil {
		s.bus.SwapBuffers()
	}
	s.collect()
	s.flush()
}

// Stored returns how many acquisitions and violations reached the recorder.
func (s *TelemetrySystem) Stored() (acquisitions, violations int64) {
	return s.nAcq, s.nViol
}
