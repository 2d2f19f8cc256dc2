// Package scenario builds a playable starting position: terrain from layered
// simplex noise, per-house forces placed through the world occupancy API,
// movement zones and the opening fog reveal.
package scenario

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ojrac/opensimplex-go"
	"go.uber.org/zap"

	"github.com/rtsgo/threatgrid/internal/config"
	"github.com/rtsgo/threatgrid/internal/data"
	"github.com/rtsgo/threatgrid/internal/world"
)

// Report summarizes a generated scenario.
type Report struct {
	Seed     int64
	Land     [world.LandCount]int
	Placed   map[data.Kind]int
	PerHouse map[world.House]int
	Trees    int
	Flying   int
	Skipped  int
	Zones    [world.ZoneKindCount]int
	Revealed int
}

// Objects returns the number of techno objects placed for all houses.
func (r *Report) Objects() int {
	n := 0
	for _, c := range r.PerHouse {
		n += c
	}
	return n
}

type generator struct {
	ws      *world.State
	cfg     config.ScenarioConfig
	catalog *data.Catalog
	rng     *rand.Rand
	log     *zap.Logger
	report  *Report
}

// Generate fills an empty state with terrain and forces for players. The same
// seed and config always yield the same scenario.
func Generate(ws *world.State, cfg config.ScenarioConfig, catalog *data.Catalog, players []world.House, seed int64, log *zap.Logger) (*Report, error) {
	if catalog == nil {
		return nil, fmt.Errorf("scenario: nil catalog")
	}
	if len(players) == 0 {
		return nil, fmt.Errorf("scenario: no houses to spawn")
	}
	if log == nil {
		log = zap.NewNop()
	}
	g := &generator{
		ws:      ws,
		cfg:     cfg,
		catalog: catalog,
		rng:     rand.New(rand.NewSource(seed)),
		log:     log,
		report: &Report{
			Seed:     seed,
			Placed:   make(map[data.Kind]int),
			PerHouse: make(map[world.House]int),
		},
	}

	g.terrain(seed)
	g.trees()
	for i, h := range players {
		g.spawnHouse(h, g.sectorCenter(i, len(players)))
	}
	g.report.Zones = FloodZones(ws)
	g.report.Revealed = ws.RefreshSight()

	log.Info("scenario generated",
		zap.Int64("seed", seed),
		zap.Int("objects", g.report.Objects()),
		zap.Int("trees", g.report.Trees),
		zap.Int("flying", g.report.Flying),
		zap.Int("skipped", g.report.Skipped),
		zap.Int("normal_zones", g.report.Zones[world.ZoneNormal]))
	return g.report, nil
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// tiberiumLevel is the ore-noise threshold above which clear land grows
// tiberium.
const tiberiumLevel = 0.45

func (g *generator) terrain(seed int64) {
	elevNoise := opensimplex.New(seed)
	oreNoise := opensimplex.New(seed + 1)
	grid := g.ws.Grid()
	scale := g.cfg.NoiseScale
	if scale <= 0 {
		scale = 0.08
	}

	for i := 0; i < grid.Total(); i++ {
		cell := world.CellID(i)
		x, y := grid.XY(cell)
		fx, fy := float64(x), float64(y)

		elev := octaveNoise(elevNoise, fx, fy, 4, scale, 0.5)
		land := world.LandClear
		switch {
		case elev < g.cfg.WaterLevel:
			land = world.LandWater
		case elev > g.cfg.RockLevel:
			land = world.LandRock
		case octaveNoise(oreNoise, fx, fy, 2, scale*1.5, 0.5) > tiberiumLevel:
			land = world.LandTiberium
		}
		g.ws.Cell(cell).Land = land
	}

	// Shorelines.
	for i := 0; i < grid.Total(); i++ {
		cell := world.CellID(i)
		c := g.ws.Cell(cell)
		if c.Land != world.LandClear {
			continue
		}
		for f := world.Facing(0); f < world.FacingCount; f += 2 {
			n := grid.Adjacent(cell, f)
			if n != cell && g.ws.Cell(n).Land == world.LandWater {
				c.Land = world.LandBeach
				break
			}
		}
	}

	for i := 0; i < grid.Total(); i++ {
		g.report.Land[g.ws.Cell(world.CellID(i)).Land]++
	}
}

func (g *generator) trees() {
	types := g.catalog.OfKind(data.KindTerrain)
	if len(types) == 0 || g.cfg.Trees <= 0 {
		return
	}
	grid := g.ws.Grid()
	for tries := 0; tries < g.cfg.Trees*10 && g.report.Trees < g.cfg.Trees; tries++ {
		cell := world.CellID(g.rng.Intn(grid.Total()))
		c := g.ws.Cell(cell)
		if !g.ws.InBounds(cell) || c.Land != world.LandClear || !c.Empty() {
			continue
		}
		tc := types[g.rng.Intn(len(types))]
		id := g.ws.Spawn(tc, world.HouseNone)
		if err := g.ws.Place(id, cell); err != nil {
			g.log.Debug("tree placement refused", zap.Int32("cell", int32(cell)), zap.Error(err))
			g.ws.Destroy(id)
			continue
		}
		g.report.Trees++
	}
	g.ws.Flush(nil)
}

// sectorCenter spreads the houses on a circle around the middle of the
// playable window.
func (g *generator) sectorCenter(i, n int) world.CellID {
	b := g.ws.Bounds()
	cx := float64(b.X) + float64(b.W)/2
	cy := float64(b.Y) + float64(b.H)/2
	radius := math.Min(float64(b.W), float64(b.H)) * 0.35
	angle := 2*math.Pi*float64(i)/float64(n) - math.Pi/2
	x := int32(cx + radius*math.Cos(angle))
	y := int32(cy + radius*math.Sin(angle))
	return g.ws.Grid().Cell(x, y)
}

// houseTypes returns the catalog types of kind a house may field. The
// neutral house fields civilians only; everyone else never does.
func (g *generator) houseTypes(h world.House, k data.Kind) []*data.TypeClass {
	var out []*data.TypeClass
	for _, tc := range g.catalog.OfKind(k) {
		if tc.Civilian == (h == world.HouseNeutral) {
			out = append(out, tc)
		}
	}
	return out
}

func (g *generator) spawnHouse(h world.House, center world.CellID) {
	if center == world.InvalidCell {
		return
	}
	g.spawnKind(h, center, data.KindBuilding, g.cfg.Buildings)
	g.spawnKind(h, center, data.KindUnit, g.cfg.Units)
	g.spawnKind(h, center, data.KindInfantry, g.cfg.Infantry)
	g.spawnKind(h, center, data.KindAircraft, g.cfg.Aircraft)
	g.spawnKind(h, center, data.KindVessel, g.cfg.Vessels)
}

func (g *generator) spawnKind(h world.House, center world.CellID, k data.Kind, count int) {
	types := g.houseTypes(h, k)
	if len(types) == 0 || count <= 0 {
		return
	}
	grid := g.ws.Grid()
	maxR := int(max(grid.Width, grid.Height))
	if k != data.KindVessel {
		maxR = int(min(grid.Width, grid.Height)) / 3
	}
	for i := 0; i < count; i++ {
		tc := types[g.rng.Intn(len(types))]
		cell, ok := g.findSpot(center, maxR, func(c world.CellID) bool { return g.fits(tc, c) })
		if !ok {
			g.report.Skipped++
			g.log.Debug("no room to spawn", zap.String("type", tc.Name), zap.String("house", h.String()))
			continue
		}
		id := g.ws.Spawn(tc, h)
		if o, ok := g.ws.Object(id); ok {
			o.Heading = world.Facing(g.rng.Intn(int(world.FacingCount)))
		}
		if err := g.ws.Place(id, cell); err != nil {
			g.report.Skipped++
			g.log.Warn("spawn refused", zap.String("type", tc.Name), zap.Error(err))
			g.ws.Destroy(id)
			g.ws.Flush(nil)
			continue
		}
		if k == data.KindAircraft && i%2 == 0 && g.cfg.AircraftFlyAt > 0 {
			g.ws.TakeOff(id, g.cfg.AircraftFlyAt)
			g.report.Flying++
		}
		g.report.Placed[k]++
		g.report.PerHouse[h]++
	}
}

// findSpot walks rings outward from center and picks a random fitting cell
// from the first ring that has one.
func (g *generator) findSpot(center world.CellID, maxR int, fits func(world.CellID) bool) (world.CellID, bool) {
	grid := g.ws.Grid()
	var cands []world.CellID
	for r := 0; r <= maxR; r++ {
		cands = cands[:0]
		grid.Ring(center, r, func(c world.CellID) bool {
			if g.ws.InBounds(c) && fits(c) {
				cands = append(cands, c)
			}
			return true
		})
		if len(cands) > 0 {
			return cands[g.rng.Intn(len(cands))], true
		}
	}
	return world.InvalidCell, false
}

// fits reports whether tc can be placed with its home at cell.
func (g *generator) fits(tc *data.TypeClass, cell world.CellID) bool {
	switch tc.Kind {
	case data.KindBuilding:
		return g.buildable(tc, cell)
	case data.KindAircraft:
		// Aircraft start on open ground, landed or directly above it.
		return g.ws.IsClearToMove(cell, data.SpeedWheel, false)
	case data.KindInfantry:
		return g.ws.IsClearToMove(cell, tc.Speed, true)
	}
	return g.ws.IsClearToMove(cell, tc.Speed, false)
}

func (g *generator) buildable(tc *data.TypeClass, home world.CellID) bool {
	grid := g.ws.Grid()
	w, h := tc.Size()
	x0, y0 := grid.XY(home)
	for dy := int32(0); dy < int32(h); dy++ {
		for dx := int32(0); dx < int32(w); dx++ {
			c := grid.Cell(x0+dx, y0+dy)
			if c == world.InvalidCell || !g.ws.InBounds(c) {
				return false
			}
			switch g.ws.Cell(c).Land {
			case world.LandClear, world.LandRoad, world.LandRough:
			default:
				return false
			}
			if !g.ws.Cell(c).Empty() {
				return false
			}
		}
	}
	return true
}
