package world

import (
	"testing"

	"github.com/rtsgo/threatgrid/internal/data"
)

func TestRevealAround(t *testing.T) {
	s, _ := newTestState(t)
	center := s.Grid().Cell(8, 8)
	enemy := spawnAt(t, s, tankType, HouseBad, s.Grid().Cell(9, 8))
	far := spawnAt(t, s, tankType, HouseBad, s.Grid().Cell(15, 15))
	s.SetJammed(s.Grid().Cell(7, 8), HouseGood, true)

	n := s.RevealAround(center, 2, HouseGood)
	if n == 0 {
		t.Fatalf("nothing revealed")
	}
	if !s.IsVisibleTo(center, HouseGood) || !s.IsMappedTo(center, HouseGood) {
		t.Fatalf("center not revealed")
	}
	if s.IsVisibleTo(s.Grid().Cell(7, 8), HouseGood) {
		t.Fatalf("jammed cell revealed")
	}
	if o, _ := s.Object(enemy); !o.Discovered.Has(HouseGood) {
		t.Fatalf("enemy next to center not discovered")
	}
	if o, _ := s.Object(far); o.Discovered.Has(HouseGood) {
		t.Fatalf("distant enemy discovered")
	}

	s.ClearVisible(HouseGood)
	if s.IsVisibleTo(center, HouseGood) {
		t.Fatalf("visible bit survived ClearVisible")
	}
	if !s.IsMappedTo(center, HouseGood) {
		t.Fatalf("ClearVisible dropped the mapped bit")
	}
}

func TestHousesAlliance(t *testing.T) {
	h := NewHouses()
	if !h.IsAlly(HouseGood, HouseGood) {
		t.Fatalf("house not allied with itself")
	}
	if h.IsAlly(HouseGood, HouseBad) {
		t.Fatalf("fresh houses allied")
	}
	h.Ally(HouseGood, HouseJP)
	if !h.IsAlly(HouseJP, HouseGood) {
		t.Fatalf("alliance not symmetric")
	}
	h.Enemy(HouseGood, HouseGood)
	if !h.IsAlly(HouseGood, HouseGood) {
		t.Fatalf("Enemy broke self alliance")
	}
	if h.IsAlly(HouseNone, HouseNone) {
		t.Fatalf("HouseNone reported allied")
	}
	if _, err := ParseHouse("Multi3"); err != nil {
		t.Fatalf("ParseHouse: %v", err)
	}
}

func TestRefreshSight(t *testing.T) {
	s, _ := newTestState(t)
	scout := &data.TypeClass{Name: "scout", Kind: data.KindUnit, LegalTarget: true, Speed: data.SpeedWheel, Sight: 2}
	id := spawnAt(t, s, scout, HouseGood, s.Grid().Cell(4, 4))
	enemy := spawnAt(t, s, tankType, HouseBad, s.Grid().Cell(5, 5))

	if n := s.RefreshSight(); n == 0 {
		t.Fatalf("RefreshSight revealed nothing")
	}
	if !s.IsVisibleTo(s.Grid().Cell(6, 4), HouseGood) {
		t.Fatalf("cell two steps away not visible")
	}
	if o, _ := s.Object(enemy); !o.Discovered.Has(HouseGood) {
		t.Fatalf("adjacent enemy not discovered")
	}

	if err := s.Move(id, s.Grid().Cell(12, 12)); err != nil {
		t.Fatalf("move: %v", err)
	}
	s.RefreshSight()
	if s.IsVisibleTo(s.Grid().Cell(6, 4), HouseGood) {
		t.Fatalf("old surroundings still visible after moving away")
	}
	if !s.IsMappedTo(s.Grid().Cell(6, 4), HouseGood) {
		t.Fatalf("old surroundings lost their mapped bit")
	}
}
