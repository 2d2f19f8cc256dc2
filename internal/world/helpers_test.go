package world

import (
	"testing"

	"go.uber.org/zap"

	"github.com/rtsgo/threatgrid/internal/core/ecs"
	"github.com/rtsgo/threatgrid/internal/core/event"
	"github.com/rtsgo/threatgrid/internal/data"
)

var (
	soldierType = &data.TypeClass{Name: "minigunner", Kind: data.KindInfantry, Value: 5, LegalTarget: true, Speed: data.SpeedFoot,
		Primary: data.Weapon{Name: "m16", Range: 512, AntiGround: true}}
	tankType = &data.TypeClass{Name: "light_tank", Kind: data.KindUnit, Value: 50, LegalTarget: true, Speed: data.SpeedTrack,
		Primary: data.Weapon{Name: "75mm", Range: 1024, AntiGround: true}}
	heliType = &data.TypeClass{Name: "apache", Kind: data.KindAircraft, Value: 60, LegalTarget: true, Speed: data.SpeedWinged,
		Primary: data.Weapon{Name: "chaingun", Range: 1024, AntiGround: true, AntiAir: true}}
	towerType = &data.TypeClass{Name: "guard_tower", Kind: data.KindBuilding, Value: 30, LegalTarget: true,
		Primary: data.Weapon{Name: "m60", Range: 1024, AntiGround: true}}
	refineryType = &data.TypeClass{Name: "refinery", Kind: data.KindBuilding, Value: 200, LegalTarget: true, Captureable: true,
		Storage: 1000, Footprint: data.Footprint{W: 3, H: 2}}
	treeType = &data.TypeClass{Name: "tree", Kind: data.KindTerrain}
)

func newTestState(t *testing.T) (*State, *event.Bus) {
	t.Helper()
	bus := event.NewBus()
	return NewState(Options{Width: 16, Height: 16}, nil, bus, zap.NewNop()), bus
}

// spawnAt creates and places an object, failing the test on error.
func spawnAt(t *testing.T, s *State, tc *data.TypeClass, h House, cell CellID) ecs.EntityID {
	t.Helper()
	id := s.Spawn(tc, h)
	if err := s.Place(id, cell); err != nil {
		t.Fatalf("place %s at %d: %v", tc.Name, cell, err)
	}
	return id
}
