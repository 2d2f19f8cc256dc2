package threat

import (
	"github.com/rtsgo/threatgrid/internal/data"
	"github.com/rtsgo/threatgrid/internal/world"
)

// Range ceilings accepted by Evaluate besides a positive lepton limit.
const (
	CeilingWeapon    = 0  // candidate must sit inside one of the seeker's weapon envelopes
	CeilingUnbounded = -1 // distance only decays the score
)

// DefaultUnboundedScale keeps map-wide scores from collapsing to the floor
// after division by the distance in cells.
const DefaultUnboundedScale = 32000

// Arsenal reports weapon envelopes in leptons. which is 0 for the primary
// weapon, 1 for the secondary.
type Arsenal interface {
	WeaponRange(o *world.Object, which int) int
}

// MaxValue caps a candidate's value plus kills before distance decay, so
// unbounded scaling stays well inside int.
const MaxValue = 1 << 20

// Valuer reports the intrinsic threat value of candidate as seen by seeker.
type Valuer interface {
	Value(seeker, candidate *world.Object) int
}

// CatalogArsenal reads weapon ranges straight from the type catalog.
type CatalogArsenal struct{}

func (CatalogArsenal) WeaponRange(o *world.Object, which int) int {
	if o == nil || o.Type == nil {
		return 0
	}
	return o.Type.WeaponRange(which)
}

// CatalogValuer uses TypeClass.Value.
type CatalogValuer struct{}

func (CatalogValuer) Value(_, candidate *world.Object) int {
	if candidate == nil || candidate.Type == nil {
		return 0
	}
	return candidate.Type.Value
}

// Evaluator decides whether a candidate is a legal target for a seeker and
// how attractive it is.
type Evaluator struct {
	world   *world.State
	arsenal Arsenal
	valuer  Valuer
	scale   int
}

// NewEvaluator builds an evaluator over ws. Nil arsenal or valuer fall back to
// the catalog; a non-positive scale uses DefaultUnboundedScale.
func NewEvaluator(ws *world.State, arsenal Arsenal, valuer Valuer, scale int) *Evaluator {
	if arsenal == nil {
		arsenal = CatalogArsenal{}
	}
	if valuer == nil {
		valuer = CatalogValuer{}
	}
	if scale <= 0 {
		scale = DefaultUnboundedScale
	}
	return &Evaluator{world: ws, arsenal: arsenal, valuer: valuer, scale: scale}
}

// MaxWeaponRange returns the longer of o's two weapon envelopes.
func (e *Evaluator) MaxWeaponRange(o *world.Object) int {
	return max(e.arsenal.WeaponRange(o, 0), e.arsenal.WeaponRange(o, 1))
}

func (e *Evaluator) inRange(seeker *world.Object, which, dist int) bool {
	r := e.arsenal.WeaponRange(seeker, which)
	return r > 0 && dist <= r
}

// Evaluate runs the exclusion checks in order and, if candidate survives
// them all, returns its score. ceiling is CeilingWeapon, CeilingUnbounded or a
// lepton limit. Neither object is modified.
func (e *Evaluator) Evaluate(seeker, candidate *world.Object, mode Mode, ceiling int) (bool, int) {
	if seeker == nil || candidate == nil || candidate.Type == nil {
		return false, 0
	}
	if candidate.InLimbo || !candidate.Active {
		return false, 0
	}

	houses := e.world.Houses()
	if houses.IsAlly(seeker.House, candidate.House) {
		return false, 0
	}

	dist := world.Distance(seeker.Coord, candidate.Coord)
	if ceiling > 0 && dist > ceiling {
		return false, 0
	}
	if ceiling == CeilingWeapon && !e.inRange(seeker, 0, dist) && !e.inRange(seeker, 1, dist) {
		return false, 0
	}

	// Human-owned objects are always considered seen.
	if !houses.IsHuman(candidate.House) && !candidate.Discovered.Has(seeker.House) && !candidate.IsAirborne() {
		return false, 0
	}

	if !kindAdmitted(mode, candidate) {
		return false, 0
	}
	if candidate.Cloaked {
		return false, 0
	}
	if !candidate.Type.LegalTarget {
		return false, 0
	}
	if !e.refine(seeker, candidate, mode) {
		return false, 0
	}

	raw := min(max(e.valuer.Value(seeker, candidate), 0), MaxValue)
	value := min(raw+min(max(candidate.Kills, 0), MaxValue), MaxValue)
	return true, e.decay(seeker, value, dist, ceiling)
}

// kindAdmitted is the quick category mask. A landed aircraft counts as a
// vehicle.
func kindAdmitted(mode Mode, o *world.Object) bool {
	switch o.Kind() {
	case data.KindInfantry:
		return mode&(Infantry|Civilians) != 0
	case data.KindUnit:
		return mode&(Vehicles|Civilians|Tiberium) != 0
	case data.KindBuilding:
		return mode&(Buildings|Civilians|Capture|Tiberium) != 0
	case data.KindAircraft:
		return mode&Air != 0 || (mode&Vehicles != 0 && !o.IsFlying())
	case data.KindVessel:
		return mode&Boats != 0
	}
	return false
}

func (e *Evaluator) refine(seeker, candidate *world.Object, mode Mode) bool {
	kind := candidate.Kind()
	tc := candidate.Type

	// Anti-air emplacements never waste shots on parked aircraft.
	if kind == data.KindAircraft && !candidate.IsFlying() &&
		seeker.IsBuilding() && seeker.Type != nil && seeker.Type.AirOnly() {
		return false
	}
	if mode&Civilians != 0 && candidate.House != world.HouseNeutral {
		return false
	}
	if mode&Capture != 0 && (kind != data.KindBuilding || !tc.Captureable) {
		return false
	}
	if mode&Boats == 0 && candidate.IsBoat() {
		return false
	}
	if kind == data.KindBuilding && !tc.Armed() && e.world.Houses().IsHuman(seeker.House) {
		return false
	}
	if mode&Tiberium != 0 {
		switch kind {
		case data.KindUnit:
			if !tc.Harvester {
				return false
			}
		case data.KindBuilding:
			if tc.Storage <= 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// decay lessens value with distance. Non-zero values never decay below 1.
func (e *Evaluator) decay(seeker *world.Object, value, dist, ceiling int) int {
	if value == 0 {
		return 0
	}
	cells := dist / world.LeptonsPerCell
	score := value
	if ceiling < 0 {
		score = value * e.scale / (cells + 1)
	} else {
		limit := ceiling
		if limit == CeilingWeapon {
			limit = e.MaxWeaponRange(seeker)
		}
		ceilCells := max(limit/world.LeptonsPerCell, 1)
		if div := cells / ceilCells; div > 1 {
			score = value / div
		}
	}
	return max(score, 1)
}
