package world

import (
	"errors"
	"testing"

	"github.com/rtsgo/threatgrid/internal/core/ecs"
	"github.com/rtsgo/threatgrid/internal/core/event"
)

func TestOccupyVacateRestoresChain(t *testing.T) {
	s, _ := newTestState(t)
	cell := s.Grid().Cell(4, 4)
	a := spawnAt(t, s, soldierType, HouseGood, cell)
	b := spawnAt(t, s, tankType, HouseGood, cell)

	before := s.Occupants(cell)
	flags := s.Cell(cell).Flags

	c := s.Spawn(soldierType, HouseBad)
	if err := s.Occupy(cell, c); err != nil {
		t.Fatalf("occupy: %v", err)
	}
	s.Vacate(cell, c)

	after := s.Occupants(cell)
	if len(after) != len(before) {
		t.Fatalf("chain length %d want %d", len(after), len(before))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("chain order changed at %d: %v want %v", i, after, before)
		}
	}
	if got := s.Cell(cell).Flags; got != flags {
		t.Fatalf("flags %b want %b", got, flags)
	}
	if before[0] != b || before[1] != a {
		t.Fatalf("non-buildings must insert at head: got %v", before)
	}
}

func TestOccupyIsIdempotent(t *testing.T) {
	s, _ := newTestState(t)
	cell := s.Grid().Cell(2, 2)
	id := spawnAt(t, s, tankType, HouseGood, cell)
	if err := s.Occupy(cell, id); err != nil {
		t.Fatalf("second occupy: %v", err)
	}
	if n := len(s.Occupants(cell)); n != 1 {
		t.Fatalf("chain holds %d entries want 1", n)
	}
}

func TestVacateAbsentIsNoop(t *testing.T) {
	s, bus := newTestState(t)
	cell := s.Grid().Cell(2, 2)
	id := spawnAt(t, s, tankType, HouseGood, cell)
	other := s.Grid().Cell(3, 3)
	bus.SwapBuffers()
	s.Vacate(other, id)
	if n := event.Queued[event.CellChanged](bus); n != 0 {
		t.Fatalf("vacating an absent object emitted %d CellChanged", n)
	}
	if len(s.Occupants(cell)) != 1 {
		t.Fatalf("unrelated vacate disturbed the chain")
	}
}

func TestBuildingGoesToTail(t *testing.T) {
	s, _ := newTestState(t)
	cell := s.Grid().Cell(6, 6)
	tower := spawnAt(t, s, towerType, HouseGood, cell)
	soldier := spawnAt(t, s, soldierType, HouseGood, cell)

	chain := s.Occupants(cell)
	if len(chain) != 2 || chain[0] != soldier || chain[1] != tower {
		t.Fatalf("chain %v want [soldier tower]", chain)
	}
	if !s.Cell(cell).Flags.Has(FlagBuilding) || !s.Cell(cell).Flags.Has(FlagInfantry) {
		t.Fatalf("flags %b missing building or infantry", s.Cell(cell).Flags)
	}
	s.Vacate(cell, tower)
	if s.Cell(cell).Flags.Has(FlagBuilding) {
		t.Fatalf("building flag kept after the only building left")
	}
}

func TestSecondBuildingRefused(t *testing.T) {
	s, bus := newTestState(t)
	cell := s.Grid().Cell(6, 6)
	first := spawnAt(t, s, towerType, HouseGood, cell)
	second := s.Spawn(towerType, HouseBad)

	err := s.Occupy(cell, second)
	if !errors.Is(err, ErrSecondBuilding) {
		t.Fatalf("err = %v want ErrSecondBuilding", err)
	}
	chain := s.Occupants(cell)
	if len(chain) != 1 || chain[0] != first {
		t.Fatalf("chain %v want only the first building", chain)
	}
	bus.SwapBuffers()
	got := event.Pending[event.InvariantViolated](bus)
	if len(got) != 1 || got[0].Object != second || got[0].Existing != first {
		t.Fatalf("invariant events %+v", got)
	}
}

func TestSecondBuildingPanicsWhenStrict(t *testing.T) {
	s := NewState(Options{Width: 8, Height: 8, Strict: true}, nil, nil, nil)
	cell := s.Grid().Cell(2, 2)
	spawnAt(t, s, towerType, HouseGood, cell)
	second := s.Spawn(towerType, HouseGood)
	defer func() {
		if recover() == nil {
			t.Fatalf("strict mode did not panic")
		}
	}()
	_ = s.Occupy(cell, second)
}

func TestOccupyInactiveRefused(t *testing.T) {
	s, _ := newTestState(t)
	id := spawnAt(t, s, tankType, HouseGood, s.Grid().Cell(1, 1))
	o, _ := s.Object(id)
	o.Active = false
	if err := s.Occupy(s.Grid().Cell(2, 1), id); !errors.Is(err, ErrInactive) {
		t.Fatalf("err = %v want ErrInactive", err)
	}
}

func TestFirstOccupantOfCapability(t *testing.T) {
	s, _ := newTestState(t)
	cell := s.Grid().Cell(3, 3)
	tree := spawnAt(t, s, treeType, HouseNeutral, cell)
	first := spawnAt(t, s, soldierType, HouseGood, cell)
	second := spawnAt(t, s, soldierType, HouseGood, cell)

	if id, ok := s.FirstOccupantOfCapability(cell, CapAny); !ok || id != second {
		t.Fatalf("CapAny = %v,%v want head %v", id, ok, second)
	}
	if id, ok := s.FirstOccupantOfCapability(cell, CapInfantry); !ok || id != second {
		t.Fatalf("CapInfantry = %v want %v", id, second)
	}
	if id, ok := s.FirstOccupantOfCapability(cell, CapTerrain); !ok || id != tree {
		t.Fatalf("CapTerrain = %v want %v", id, tree)
	}
	if _, ok := s.FirstOccupantOfCapability(cell, CapBuilding); ok {
		t.Fatalf("found a building in a cell without one")
	}
	s.Vacate(cell, second)
	if id, _ := s.FirstOccupantOfCapability(cell, CapTechno); id != first {
		t.Fatalf("CapTechno after vacate = %v want %v", id, first)
	}
	if o, ok := s.CellTerrain(cell); !ok || o.ID != tree {
		t.Fatalf("CellTerrain = %v", o)
	}
}

func TestBuildingFootprintOverlap(t *testing.T) {
	s, _ := newTestState(t)
	home := s.Grid().Cell(4, 4)
	ref := spawnAt(t, s, refineryType, HouseGood, home)

	if got := s.Occupants(home); len(got) != 1 || got[0] != ref {
		t.Fatalf("home chain %v", got)
	}
	covered := s.Grid().Cell(6, 5)
	if b, ok := s.CellBuilding(covered); !ok || b.ID != ref {
		t.Fatalf("footprint cell %d not covered by the refinery", covered)
	}
	if s.IsClearToMove(covered, tankType.Speed, false) {
		t.Fatalf("footprint cell reported clear to move")
	}
	o, _ := s.Object(ref)
	want := Coord{X: 4*256 + 128 + 256, Y: 4*256 + 128 + 128}
	if o.Coord != want {
		t.Fatalf("building center %v want %v", o.Coord, want)
	}

	s.Lift(ref)
	if _, ok := s.CellBuilding(covered); ok {
		t.Fatalf("footprint overlap kept after lift")
	}
	if !s.Cell(home).Empty() {
		t.Fatalf("home cell not empty after lift")
	}
}

func TestFootprintOffMapRefused(t *testing.T) {
	s, _ := newTestState(t)
	id := s.Spawn(refineryType, HouseGood)
	if err := s.Place(id, s.Grid().Cell(15, 15)); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("err = %v want ErrOutOfBounds", err)
	}
	o, _ := s.Object(id)
	if !o.InLimbo {
		t.Fatalf("refused placement left the object on the map")
	}
}

func TestMarkOverlapEviction(t *testing.T) {
	s, _ := newTestState(t)
	cell := s.Grid().Cell(8, 8)
	parked := s.Grid().Cell(0, 0)

	tree := spawnAt(t, s, treeType, HouseNeutral, s.Grid().Cell(1, 0))
	tank := spawnAt(t, s, tankType, HouseGood, parked)
	soldier := spawnAt(t, s, soldierType, HouseGood, parked)
	tower := spawnAt(t, s, towerType, HouseGood, s.Grid().Cell(2, 0))

	for _, id := range []ecs.EntityID{tree, tank, soldier} {
		if !s.MarkOverlap(cell, id) {
			t.Fatalf("overlap slot refused with free space")
		}
	}
	if !s.MarkOverlap(cell, tank) {
		t.Fatalf("re-marking an existing overlap must succeed")
	}

	extra := spawnAt(t, s, soldierType, HouseBad, parked)
	if s.MarkOverlap(cell, extra) {
		t.Fatalf("non-building took a slot from a full cell")
	}

	if !s.MarkOverlap(cell, tower) {
		t.Fatalf("building could not evict")
	}
	slots := s.Cell(cell).Overlaps()
	want := [OverlapSlots]ecs.EntityID{tree, tower, soldier}
	if slots != want {
		t.Fatalf("slots %v want %v (first evictable slot replaced)", slots, want)
	}

	s.ClearOverlap(cell, tower)
	if s.Cell(cell).Overlaps()[1] != ecs.None {
		t.Fatalf("ClearOverlap left the slot set")
	}
}

func TestMoveAndDestroy(t *testing.T) {
	s, bus := newTestState(t)
	from := s.Grid().Cell(2, 2)
	to := s.Grid().Cell(3, 2)
	id := spawnAt(t, s, tankType, HouseGood, from)

	if err := s.Move(id, to); err != nil {
		t.Fatalf("move: %v", err)
	}
	if len(s.Occupants(from)) != 0 || len(s.Occupants(to)) != 1 {
		t.Fatalf("move left chains %v / %v", s.Occupants(from), s.Occupants(to))
	}
	if !s.Ground().Has(id) {
		t.Fatalf("tank missing from ground roster")
	}

	s.Destroy(id)
	if len(s.Occupants(to)) != 0 {
		t.Fatalf("destroyed object still chained")
	}
	if s.Ground().Has(id) {
		t.Fatalf("destroyed object still in roster")
	}
	if n := s.Flush(nil); n != 1 {
		t.Fatalf("flushed %d want 1", n)
	}
	if _, ok := s.Object(id); ok {
		t.Fatalf("released object still resolves")
	}
	bus.SwapBuffers()
	if got := event.Pending[event.ObjectDestroyed](bus); len(got) != 1 || got[0].Object != id {
		t.Fatalf("ObjectDestroyed events %+v", got)
	}
}

func TestMoveIntoOccupiedCell(t *testing.T) {
	s, _ := newTestState(t)
	from := s.Grid().Cell(2, 2)
	to := s.Grid().Cell(3, 2)
	y := spawnAt(t, s, soldierType, HouseGood, from)
	x := spawnAt(t, s, soldierType, HouseGood, from)
	z := spawnAt(t, s, soldierType, HouseGood, to)

	if err := s.Move(x, to); err != nil {
		t.Fatalf("move: %v", err)
	}
	same := func(got, want []ecs.EntityID) bool {
		if len(got) != len(want) {
			return false
		}
		for i := range want {
			if got[i] != want[i] {
				return false
			}
		}
		return true
	}
	if got := s.Occupants(from); !same(got, []ecs.EntityID{y}) {
		t.Fatalf("origin chain %v want [%v]", got, y)
	}
	if got := s.Occupants(to); !same(got, []ecs.EntityID{x, z}) {
		t.Fatalf("destination chain %v want [%v %v]", got, x, z)
	}
	if o, _ := s.Object(x); o.Home() != to {
		t.Fatalf("home %d want %d", o.Home(), to)
	}

	// Back again: both chains keep every member exactly once.
	if err := s.Move(x, from); err != nil {
		t.Fatalf("move back: %v", err)
	}
	if got := s.Occupants(from); !same(got, []ecs.EntityID{x, y}) {
		t.Fatalf("origin chain %v want [%v %v]", got, x, y)
	}
	if got := s.Occupants(to); !same(got, []ecs.EntityID{z}) {
		t.Fatalf("destination chain %v want [%v]", got, z)
	}
}

func TestOccupyRefusesObjectChainedElsewhere(t *testing.T) {
	s, _ := newTestState(t)
	home := s.Grid().Cell(2, 2)
	other := s.Grid().Cell(6, 6)
	id := spawnAt(t, s, tankType, HouseGood, home)
	resident := spawnAt(t, s, soldierType, HouseGood, other)

	if err := s.Occupy(other, id); !errors.Is(err, ErrChained) {
		t.Fatalf("err = %v want ErrChained", err)
	}
	if got := s.Occupants(home); len(got) != 1 || got[0] != id {
		t.Fatalf("home chain %v", got)
	}
	if got := s.Occupants(other); len(got) != 1 || got[0] != resident {
		t.Fatalf("other chain %v", got)
	}
}

func TestRefusedMoveKeepsChains(t *testing.T) {
	s, _ := newTestState(t)
	from := s.Grid().Cell(2, 2)
	to := s.Grid().Cell(3, 2)
	id := spawnAt(t, s, tankType, HouseGood, from)
	spawnAt(t, s, soldierType, HouseGood, from)
	o, _ := s.Object(id)
	o.Active = false

	if err := s.Move(id, to); !errors.Is(err, ErrInactive) {
		t.Fatalf("err = %v want ErrInactive", err)
	}
	if len(s.Occupants(to)) != 0 {
		t.Fatalf("refused move chained into destination")
	}
	if got := s.Occupants(from); len(got) != 2 || got[1] != id {
		t.Fatalf("origin chain %v lost the refused mover", got)
	}
	if o.Home() != from {
		t.Fatalf("home changed on refused move")
	}
}

func TestAircraftRosterAndLanding(t *testing.T) {
	s, _ := newTestState(t)
	cell := s.Grid().Cell(5, 5)
	id := s.Spawn(heliType, HouseBad)
	o, _ := s.Object(id)
	o.Altitude = 256
	if err := s.Place(id, cell); err != nil {
		t.Fatalf("place: %v", err)
	}
	if !s.Aircraft().Has(id) || s.Ground().Has(id) {
		t.Fatalf("aircraft rosters wrong")
	}
	if len(s.Occupants(cell)) != 0 {
		t.Fatalf("flying aircraft chained into its cell")
	}
	if err := s.Land(id); err != nil {
		t.Fatalf("land: %v", err)
	}
	if got, ok := s.FirstOccupantOfCapability(cell, CapAircraft); !ok || got != id {
		t.Fatalf("landed aircraft not chained")
	}
	if !s.Cell(cell).Flags.Has(FlagVehicle) {
		t.Fatalf("landed aircraft did not set the vehicle flag")
	}
	s.TakeOff(id, 256)
	if len(s.Occupants(cell)) != 0 {
		t.Fatalf("aircraft still chained after take-off")
	}
}

func TestOccupyRevealsToWatchingHouses(t *testing.T) {
	s, _ := newTestState(t)
	cell := s.Grid().Cell(9, 9)
	s.SetVisible(cell, HouseGood, true)
	id := spawnAt(t, s, tankType, HouseBad, cell)
	o, _ := s.Object(id)
	if !o.Discovered.Has(HouseGood) {
		t.Fatalf("object entering a watched cell not discovered")
	}
	if o.Discovered.Has(HouseJP) {
		t.Fatalf("object discovered by a house that cannot see the cell")
	}
}

func TestZoneAccessors(t *testing.T) {
	s, _ := newTestState(t)
	a, b := s.Grid().Cell(1, 1), s.Grid().Cell(9, 9)
	if s.Zone(a, ZoneNormal) != 0 {
		t.Fatalf("fresh cell has nonzero zone")
	}
	s.SetZone(a, ZoneNormal, 3)
	s.SetZone(b, ZoneNormal, 3)
	s.SetZone(b, ZoneCrusher, 4)
	if !s.SameZone(a, b, ZoneNormal) {
		t.Fatalf("cells with equal zone ids not reachable")
	}
	if s.SameZone(a, b, ZoneCrusher) {
		t.Fatalf("zone 0 treated as reachable")
	}
	if s.Zone(InvalidCell, ZoneNormal) != 0 {
		t.Fatalf("invalid cell has a zone")
	}
}

func TestResetClearsCells(t *testing.T) {
	s, _ := newTestState(t)
	cell := s.Grid().Cell(3, 3)
	spawnAt(t, s, tankType, HouseGood, cell)
	s.SetMapped(cell, HouseGood, true)
	s.Reset()
	if !s.Cell(cell).Empty() || s.IsMappedTo(cell, HouseGood) {
		t.Fatalf("reset kept cell state")
	}
	if s.Ground().Len() != 0 || s.ObjectCount() != 0 {
		t.Fatalf("reset kept objects")
	}
}
