package scenario

import (
	"testing"

	"go.uber.org/zap"

	"github.com/rtsgo/threatgrid/internal/config"
	"github.com/rtsgo/threatgrid/internal/core/ecs"
	"github.com/rtsgo/threatgrid/internal/data"
	"github.com/rtsgo/threatgrid/internal/world"
)

func loadCatalog(t *testing.T) *data.Catalog {
	t.Helper()
	c, err := data.LoadCatalog("../../data/yaml/type_catalog.yaml")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return c
}

func scenarioConfig() config.ScenarioConfig {
	return config.ScenarioConfig{
		Houses:        []string{"good", "bad", "neutral"},
		Human:         []string{"good"},
		Alliances:     [][]string{{"good", "neutral"}},
		Infantry:      6,
		Units:         3,
		Buildings:     2,
		Aircraft:      2,
		Vessels:       1,
		Trees:         20,
		NoiseScale:    0.08,
		WaterLevel:    -0.45,
		RockLevel:     0.6,
		AircraftFlyAt: 512,
	}
}

func generate(t *testing.T, seed int64) (*world.State, *Report) {
	t.Helper()
	cfg := scenarioConfig()
	houses, players, err := Houses(cfg)
	if err != nil {
		t.Fatalf("Houses: %v", err)
	}
	ws := world.NewState(world.Options{Width: 48, Height: 48, Bounds: world.Rect{X: 1, Y: 1, W: 46, H: 46}}, houses, nil, zap.NewNop())
	rep, err := Generate(ws, cfg, loadCatalog(t), players, seed, zap.NewNop())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return ws, rep
}

func TestHouses(t *testing.T) {
	houses, players, err := Houses(scenarioConfig())
	if err != nil {
		t.Fatalf("Houses: %v", err)
	}
	if len(players) != 3 || players[0] != world.HouseGood || players[2] != world.HouseNeutral {
		t.Fatalf("players = %v", players)
	}
	if !houses.IsHuman(world.HouseGood) || houses.IsHuman(world.HouseBad) {
		t.Fatalf("human flags wrong")
	}
	if !houses.IsAlly(world.HouseNeutral, world.HouseGood) {
		t.Fatalf("alliance not applied")
	}
	if houses.IsAlly(world.HouseGood, world.HouseBad) {
		t.Fatalf("good and bad allied")
	}

	bad := scenarioConfig()
	bad.Human = []string{"multi4"}
	if _, _, err := Houses(bad); err == nil {
		t.Fatalf("human house that is not playing accepted")
	}
	bad = scenarioConfig()
	bad.Houses = []string{"good", "good"}
	if _, _, err := Houses(bad); err == nil {
		t.Fatalf("duplicate house accepted")
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a, ra := generate(t, 42)
	b, rb := generate(t, 42)
	if ra.Land != rb.Land {
		t.Fatalf("land differs: %v vs %v", ra.Land, rb.Land)
	}
	if ra.Objects() != rb.Objects() || ra.Trees != rb.Trees {
		t.Fatalf("objects differ: %d/%d vs %d/%d", ra.Objects(), ra.Trees, rb.Objects(), rb.Trees)
	}
	total := a.Grid().Total()
	for i := 0; i < total; i++ {
		c := world.CellID(i)
		if a.Cell(c).Land != b.Cell(c).Land {
			t.Fatalf("cell %d land differs", c)
		}
		if len(a.Occupants(c)) != len(b.Occupants(c)) {
			t.Fatalf("cell %d occupants differ", c)
		}
	}
}

func TestGeneratePlacesForces(t *testing.T) {
	ws, rep := generate(t, 7)
	if rep.Objects() == 0 {
		t.Fatalf("nothing placed")
	}
	if rep.PerHouse[world.HouseGood] == 0 || rep.PerHouse[world.HouseBad] == 0 {
		t.Fatalf("per house = %v", rep.PerHouse)
	}
	if rep.Revealed == 0 {
		t.Fatalf("no opening reveal")
	}
	if rep.Zones[world.ZoneNormal] == 0 {
		t.Fatalf("no movement zones")
	}

	check := func(id ecs.EntityID) bool {
		o, ok := ws.Object(id)
		if !ok {
			t.Fatalf("roster holds dead id %d", id)
		}
		if o.House == world.HouseNeutral && !o.Type.Civilian {
			t.Fatalf("neutral house fielded %s", o.Type.Name)
		}
		if o.House != world.HouseNeutral && o.Type.Civilian {
			t.Fatalf("%s fielded civilian %s", o.House, o.Type.Name)
		}
		if !ws.InBounds(o.Home()) {
			t.Fatalf("%s placed outside the playable bounds", o.Type.Name)
		}
		if !o.Discovered.Has(o.House) && o.Type.Sight > 0 && !o.IsFlying() {
			t.Fatalf("%s not discovered by its own house", o.Type.Name)
		}
		if o.Kind() == data.KindVessel && ws.Cell(o.Home()).Land != world.LandWater {
			t.Fatalf("vessel on %s", ws.Cell(o.Home()).Land)
		}
		return true
	}
	ws.Ground().Each(check)
	ws.Aircraft().Each(check)

	flying := 0
	ws.Aircraft().Each(func(id ecs.EntityID) bool {
		if o, _ := ws.Object(id); o.IsFlying() {
			flying++
		}
		return true
	})
	if flying != rep.Flying {
		t.Fatalf("flying = %d, report says %d", flying, rep.Flying)
	}

	buildings := 0
	for i := 0; i < ws.Grid().Total(); i++ {
		n := 0
		ws.EachOccupant(world.CellID(i), func(o *world.Object) bool {
			if o.IsBuilding() {
				n++
			}
			return true
		})
		if n > 1 {
			t.Fatalf("cell %d chains %d buildings", i, n)
		}
		buildings += n
	}
	if buildings != rep.Placed[data.KindBuilding] {
		t.Fatalf("chained buildings = %d, placed %d", buildings, rep.Placed[data.KindBuilding])
	}
}

func TestGenerateRejectsEmptyInput(t *testing.T) {
	ws := world.NewState(world.Options{Width: 8, Height: 8}, nil, nil, nil)
	if _, err := Generate(ws, scenarioConfig(), nil, []world.House{world.HouseGood}, 1, nil); err == nil {
		t.Fatalf("nil catalog accepted")
	}
	if _, err := Generate(ws, scenarioConfig(), loadCatalog(t), nil, 1, nil); err == nil {
		t.Fatalf("no houses accepted")
	}
}

func TestFloodZones(t *testing.T) {
	// 6x3 map split by a wall column at x=2 and a tree at (4,1).
	ws := world.NewState(world.Options{Width: 6, Height: 3}, nil, nil, zap.NewNop())
	grid := ws.Grid()
	for y := int32(0); y < 3; y++ {
		ws.Cell(grid.Cell(2, y)).Land = world.LandWall
		ws.Cell(grid.Cell(4, y)).Land = world.LandRock
	}
	ws.Cell(grid.Cell(4, 1)).Land = world.LandClear
	tree := ws.Spawn(&data.TypeClass{Name: "tree", Kind: data.KindTerrain}, world.HouseNone)
	if err := ws.Place(tree, grid.Cell(4, 1)); err != nil {
		t.Fatalf("place tree: %v", err)
	}

	counts := FloodZones(ws)
	if counts[world.ZoneNormal] != 3 {
		t.Fatalf("normal zones = %d, want 3", counts[world.ZoneNormal])
	}
	if counts[world.ZoneCrusher] != 2 {
		t.Fatalf("crusher zones = %d, want 2", counts[world.ZoneCrusher])
	}
	if counts[world.ZoneDestroyer] != 1 {
		t.Fatalf("destroyer zones = %d, want 1", counts[world.ZoneDestroyer])
	}

	left, right := grid.Cell(0, 0), grid.Cell(5, 2)
	if ws.SameZone(left, grid.Cell(3, 1), world.ZoneNormal) {
		t.Fatalf("wall did not split normal zone")
	}
	if !ws.SameZone(left, grid.Cell(3, 1), world.ZoneCrusher) {
		t.Fatalf("crusher blocked by wall")
	}
	if ws.SameZone(left, right, world.ZoneCrusher) {
		t.Fatalf("crusher passed the tree")
	}
	if !ws.SameZone(left, right, world.ZoneDestroyer) {
		t.Fatalf("destroyer blocked by the tree")
	}
	if ws.Zone(grid.Cell(4, 0), world.ZoneDestroyer) != 0 {
		t.Fatalf("rock cell has a zone")
	}
}
