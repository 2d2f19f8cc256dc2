package threat

import (
	"math/rand"

	"github.com/rtsgo/threatgrid/internal/core/ecs"
	"github.com/rtsgo/threatgrid/internal/world"
)

const (
	DefaultMaxContenders = 128
	// DefaultAreaRangeCap bounds the doubled weapon envelope of an area scan
	// (ten cells).
	DefaultAreaRangeCap = 0x0A00
)

// Result describes one scan.
type Result struct {
	Target     ecs.EntityID
	Score      int
	Evaluated  int // candidates passed to Evaluate
	Contenders int // tied for best on a map-wide scan
	Radius     int // last ring walked on a bounded scan
	EarlyExit  bool
}

// Scanner finds the best target for a seeker. Not safe for concurrent use:
// the random source is shared between scans.
type Scanner struct {
	world         *world.State
	eval          *Evaluator
	rng           *rand.Rand
	maxContenders int
	areaCap       int
	reachable     func(seeker, candidate *world.Object) bool

	contenders []ecs.EntityID
}

// NewScanner builds a scanner. rng breaks ties between equal map-wide
// candidates; maxContenders and areaCap fall back to their defaults when not
// positive.
func NewScanner(ws *world.State, eval *Evaluator, rng *rand.Rand, maxContenders, areaCap int) *Scanner {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if maxContenders <= 0 {
		maxContenders = DefaultMaxContenders
	}
	if areaCap <= 0 {
		areaCap = DefaultAreaRangeCap
	}
	return &Scanner{
		world:         ws,
		eval:          eval,
		rng:           rng,
		maxContenders: maxContenders,
		areaCap:       areaCap,
		contenders:    make([]ecs.EntityID, 0, maxContenders),
	}
}

// SetReachable installs a pre-filter for map-wide scans. Candidates it
// rejects are never evaluated. Bounded scans ignore it. nil clears it.
func (s *Scanner) SetReachable(fn func(seeker, candidate *world.Object) bool) {
	s.reachable = fn
}

// FindBestTarget returns the best target for seeker under mode, or ecs.None.
func (s *Scanner) FindBestTarget(seeker *world.Object, mode Mode) ecs.EntityID {
	return s.Scan(seeker, mode).Target
}

// SearchRadius returns the range ceiling handed to Evaluate and the ring
// count for a bounded scan. Range mode keeps candidates inside the weapon
// envelope; area mode doubles the envelope up to the area cap.
func (s *Scanner) SearchRadius(seeker *world.Object, mode Mode) (ceiling, crange int) {
	weapon := s.eval.MaxWeaponRange(seeker)
	if mode&Range == 0 {
		ceiling = min(max(weapon*2, 0), s.areaCap)
	}
	if ceiling == 0 {
		return CeilingWeapon, weapon/world.LeptonsPerCell + 1
	}
	return ceiling, ceiling / world.LeptonsPerCell
}

// Scan is FindBestTarget with scan statistics.
func (s *Scanner) Scan(seeker *world.Object, mode Mode) Result {
	if seeker == nil || seeker.InLimbo || !seeker.Active {
		return Result{}
	}
	mode = mode.Normalize()
	if mode.Bounded() {
		return s.scanArea(seeker, mode)
	}
	return s.scanMap(seeker, mode)
}

func (s *Scanner) scanArea(seeker *world.Object, mode Mode) Result {
	var res Result
	ceiling, crange := s.SearchRadius(seeker, mode)
	best := -1

	consider := func(o *world.Object) {
		res.Evaluated++
		if ok, score := s.eval.Evaluate(seeker, o, mode, ceiling); ok && score > best {
			best = score
			res.Target = o.ID
			res.Score = score
		}
	}

	// Flying aircraft are not recorded in cells, so they get a roster pass.
	if mode&Air != 0 {
		s.world.Aircraft().Each(func(id ecs.EntityID) bool {
			if o, ok := s.world.Object(id); ok && id != seeker.ID {
				consider(o)
			}
			return true
		})
	}

	center := s.world.FireCell(seeker)
	houses := s.world.Houses()
	grid := s.world.Grid()
	for radius := 1; radius < crange; radius++ {
		res.Radius = radius
		grid.Ring(center, radius, func(cell world.CellID) bool {
			if !s.world.InBounds(cell) {
				return true
			}
			var tentative *world.Object
			s.world.EachOccupant(cell, func(o *world.Object) bool {
				if o.IsTechno() && !houses.IsAlly(seeker.House, o.House) {
					tentative = o
					return false
				}
				return true
			})
			if tentative != nil {
				consider(tentative)
			}
			return true
		})

		// Good enough: stop at a quarter or half of the radius once anything
		// admissible has turned up.
		if res.Target != ecs.None && (radius == crange/4 || radius == crange/2) {
			res.EarlyExit = radius+1 < crange
			break
		}
	}
	return res
}

func (s *Scanner) scanMap(seeker *world.Object, mode Mode) Result {
	var res Result
	best := -1
	s.contenders = s.contenders[:0]

	visit := func(id ecs.EntityID) bool {
		if id == seeker.ID {
			return true
		}
		o, ok := s.world.Object(id)
		if !ok || !o.IsTechno() {
			return true
		}
		if s.reachable != nil && !s.reachable(seeker, o) {
			return true
		}
		res.Evaluated++
		ok, score := s.eval.Evaluate(seeker, o, mode, CeilingUnbounded)
		switch {
		case !ok:
		case score > best:
			best = score
			s.contenders = append(s.contenders[:0], id)
		case score == best && len(s.contenders) < s.maxContenders:
			s.contenders = append(s.contenders, id)
		}
		return true
	}
	s.world.Aircraft().Each(visit)
	s.world.Ground().Each(visit)

	res.Contenders = len(s.contenders)
	switch len(s.contenders) {
	case 0:
		return res
	case 1:
		res.Target = s.contenders[0]
	default:
		res.Target = s.contenders[s.rng.Intn(len(s.contenders))]
	}
	res.Score = best
	return res
}
