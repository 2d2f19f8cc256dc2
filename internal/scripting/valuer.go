package scripting

import (
	"github.com/rtsgo/threatgrid/internal/threat"
	"github.com/rtsgo/threatgrid/internal/world"
)

// Valuer lets target_value in Lua override catalog threat values. Without
// the function, or when it errors, the catalog value stands.
type Valuer struct {
	engine   *Engine
	fallback threat.Valuer
	enabled  bool
}

// NewValuer wraps engine. A nil engine yields a pure catalog valuer.
func NewValuer(engine *Engine) *Valuer {
	v := &Valuer{engine: engine, fallback: threat.CatalogValuer{}}
	v.enabled = engine != nil && engine.HasFunc("target_value")
	return v
}

// Scripted reports whether Lua is consulted at all.
func (v *Valuer) Scripted() bool { return v.enabled }

func (v *Valuer) Value(seeker, candidate *world.Object) int {
	base := v.fallback.Value(seeker, candidate)
	if !v.enabled || seeker == nil || candidate == nil || candidate.Type == nil {
		return base
	}
	ctx := TargetContext{
		SeekerHouse: seeker.House.String(),
		TargetType:  candidate.Type.Name,
		TargetKind:  candidate.Kind().String(),
		TargetHouse: candidate.House.String(),
		BaseValue:   base,
		Kills:       candidate.Kills,
		Distance:    world.Distance(seeker.Coord, candidate.Coord),
		Flying:      candidate.IsFlying(),
		Armed:       candidate.Type.Armed(),
	}
	if seeker.Type != nil {
		ctx.SeekerType = seeker.Type.Name
	}
	value, ok := v.engine.TargetValue(ctx)
	if !ok {
		return base
	}
	return min(max(value, 0), threat.MaxValue)
}

// ModeConstants are the scan mode bits published to scripts.
var ModeConstants = map[string]int{
	"THREAT_RANGE":     int(threat.Range),
	"THREAT_AREA":      int(threat.Area),
	"THREAT_AIR":       int(threat.Air),
	"THREAT_INFANTRY":  int(threat.Infantry),
	"THREAT_VEHICLES":  int(threat.Vehicles),
	"THREAT_BUILDINGS": int(threat.Buildings),
	"THREAT_TIBERIUM":  int(threat.Tiberium),
	"THREAT_BOATS":     int(threat.Boats),
	"THREAT_CIVILIANS": int(threat.Civilians),
	"THREAT_CAPTURE":   int(threat.Capture),
	"THREAT_GROUND":    int(threat.Ground),
}
