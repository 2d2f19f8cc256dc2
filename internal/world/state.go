package world

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rtsgo/threatgrid/internal/core/ecs"
	"github.com/rtsgo/threatgrid/internal/core/event"
	"github.com/rtsgo/threatgrid/internal/data"
)

var (
	// ErrSecondBuilding is returned when a building is chained into a cell that
	// already holds one. It always means an upstream placement bug.
	ErrSecondBuilding = errors.New("cell already holds a building")
	ErrInactive       = errors.New("object is not active")
	ErrOutOfBounds    = errors.New("cell out of bounds")
	ErrNotInLimbo     = errors.New("object already placed")
	ErrUnknownObject  = errors.New("unknown object")
	ErrChained        = errors.New("object is chained into another cell")
)

// Options configure a State.
type Options struct {
	Width  int32
	Height int32
	// Bounds is the playable window. The zero Rect means the whole map.
	Bounds Rect
	// Strict turns invariant violations into panics.
	Strict bool
}

// State tracks every cell and object of the running scenario.
// Single-goroutine access only (game loop).
type State struct {
	grid   Grid
	bounds Rect
	strict bool

	cells    []Cell
	objects  *ecs.Arena[Object]
	aircraft *ecs.Roster
	ground   *ecs.Roster

	houses *Houses
	bus    *event.Bus
	log    *zap.Logger
	tick   uint64
}

// NewState allocates the cell array once for the session. houses may be nil
// for a default table; bus may be nil to drop events.
func NewState(opts Options, houses *Houses, bus *event.Bus, log *zap.Logger) *State {
	if opts.Width <= 0 {
		opts.Width = 64
	}
	if opts.Height <= 0 {
		opts.Height = 64
	}
	if houses == nil {
		houses = NewHouses()
	}
	if log == nil {
		log = zap.NewNop()
	}
	grid := Grid{Width: opts.Width, Height: opts.Height}
	bounds := opts.Bounds
	if bounds.W <= 0 || bounds.H <= 0 {
		bounds = Rect{W: grid.Width, H: grid.Height}
	}
	s := &State{
		grid:     grid,
		bounds:   bounds,
		strict:   opts.Strict,
		cells:    make([]Cell, grid.Total()),
		objects:  ecs.NewArena[Object](),
		aircraft: ecs.NewRoster(),
		ground:   ecs.NewRoster(),
		houses:   houses,
		bus:      bus,
		log:      log,
	}
	for i := range s.cells {
		s.cells[i].ID = CellID(i)
	}
	return s
}

func (s *State) Grid() Grid          { return s.grid }
func (s *State) Bounds() Rect        { return s.bounds }
func (s *State) Houses() *Houses     { return s.houses }
func (s *State) Bus() *event.Bus     { return s.bus }
func (s *State) Tick() uint64        { return s.tick }
func (s *State) SetTick(t uint64)    { s.tick = t }
func (s *State) ObjectCount() int    { return s.objects.Len() }

// Aircraft is the ordered roster of every aircraft on the map, landed or not.
func (s *State) Aircraft() *ecs.Roster { return s.aircraft }

// Ground is the ordered roster of every placed non-aircraft techno object.
func (s *State) Ground() *ecs.Roster { return s.ground }

// InBounds reports whether c lies inside the playable window.
func (s *State) InBounds(c CellID) bool {
	if !s.grid.Valid(c) {
		return false
	}
	x, y := s.grid.XY(c)
	return s.bounds.Contains(x, y)
}

// Adjacent is Grid.Adjacent for this state's map.
func (s *State) Adjacent(c CellID, f Facing) CellID { return s.grid.Adjacent(c, f) }

// Cell returns the cell c, or nil if c is off the map.
func (s *State) Cell(c CellID) *Cell {
	if !s.grid.Valid(c) {
		return nil
	}
	return &s.cells[c]
}

// Object returns a live object by id.
func (s *State) Object(id ecs.EntityID) (*Object, bool) {
	return s.objects.Get(id)
}

// FireCell returns the cell an object shoots from.
func (s *State) FireCell(o *Object) CellID {
	return s.grid.CellAt(o.Coord)
}

// Spawn creates an object of type t owned by house. It starts in limbo.
func (s *State) Spawn(t *data.TypeClass, house House) ecs.EntityID {
	o := &Object{
		Type:    t,
		House:   house,
		Active:  true,
		InLimbo: true,
		home:    InvalidCell,
	}
	o.ID = s.objects.Insert(o)
	return o.ID
}

// footprint calls fn for every cell a building covers when homed at home.
// It returns false if part of the footprint is off the map.
func (s *State) footprint(t *data.TypeClass, home CellID, fn func(CellID)) bool {
	w, h := t.Size()
	x0, y0 := s.grid.XY(home)
	if x0+int32(w) > s.grid.Width || y0+int32(h) > s.grid.Height {
		return false
	}
	if fn != nil {
		for dy := int32(0); dy < int32(h); dy++ {
			for dx := int32(0); dx < int32(w); dx++ {
				fn(s.grid.Cell(x0+dx, y0+dy))
			}
		}
	}
	return true
}

// Place puts a limbo object on the map at cell. Buildings chain into cell as
// their top-left home and register overlap on the rest of the footprint.
// Flying aircraft are tracked by roster only.
func (s *State) Place(id ecs.EntityID, cell CellID) error {
	o, ok := s.objects.Get(id)
	if !ok {
		return fmt.Errorf("place %d: %w", id, ErrUnknownObject)
	}
	if !o.InLimbo {
		return fmt.Errorf("place %d: %w", id, ErrNotInLimbo)
	}
	if !s.grid.Valid(cell) {
		return fmt.Errorf("place %d at %d: %w", id, cell, ErrOutOfBounds)
	}
	o.home = cell
	o.Coord = s.grid.Center(cell)
	if o.IsBuilding() {
		if !s.footprint(o.Type, cell, nil) {
			o.home = InvalidCell
			return fmt.Errorf("place %s at %d: footprint: %w", o.Type.Name, cell, ErrOutOfBounds)
		}
		w, h := o.Type.Size()
		o.Coord.X += int32(w-1) * LeptonsPerCell / 2
		o.Coord.Y += int32(h-1) * LeptonsPerCell / 2
	}
	o.InLimbo = false

	if !o.IsFlying() {
		if err := s.Occupy(cell, id); err != nil {
			o.InLimbo = true
			o.home = InvalidCell
			return fmt.Errorf("place %s: %w", o.Type.Name, err)
		}
	}
	if o.IsBuilding() {
		s.footprint(o.Type, cell, func(c CellID) {
			if c != cell {
				s.MarkOverlap(c, id)
			}
		})
	}
	s.enroll(o)
	return nil
}

func (s *State) enroll(o *Object) {
	switch {
	case o.IsAirborne():
		s.aircraft.Add(o.ID)
	case o.IsTechno():
		s.ground.Add(o.ID)
	}
}

// Lift takes a placed object off the map and back into limbo.
func (s *State) Lift(id ecs.EntityID) {
	o, ok := s.objects.Get(id)
	if !ok || o.InLimbo {
		return
	}
	if !o.IsFlying() {
		s.Vacate(o.home, id)
	}
	if o.IsBuilding() {
		home := o.home
		s.footprint(o.Type, home, func(c CellID) {
			if c != home {
				s.ClearOverlap(c, id)
			}
		})
	}
	s.aircraft.Remove(id)
	s.ground.Remove(id)
	o.InLimbo = true
	o.home = InvalidCell
}

// Move relocates a placed non-building object to cell.
func (s *State) Move(id ecs.EntityID, cell CellID) error {
	o, ok := s.objects.Get(id)
	if !ok {
		return fmt.Errorf("move %d: %w", id, ErrUnknownObject)
	}
	if !s.grid.Valid(cell) {
		return fmt.Errorf("move %d to %d: %w", id, cell, ErrOutOfBounds)
	}
	if o.InLimbo || o.IsBuilding() || o.home == cell {
		return nil
	}
	if !o.Active {
		return fmt.Errorf("move %s: %w", o.Type.Name, ErrInactive)
	}
	if !o.IsFlying() {
		// An object has one chain link, so it leaves home before joining cell.
		from := o.home
		s.Vacate(from, id)
		if err := s.Occupy(cell, id); err != nil {
			if rerr := s.Occupy(from, id); rerr != nil {
				s.log.Error("move rollback failed", zap.Uint64("object", uint64(id)), zap.Error(rerr))
			}
			return fmt.Errorf("move %s: %w", o.Type.Name, err)
		}
	}
	o.home = cell
	o.Coord = s.grid.Center(cell)
	return nil
}

// TakeOff lifts a landed aircraft off its cell chain.
func (s *State) TakeOff(id ecs.EntityID, altitude int) {
	o, ok := s.objects.Get(id)
	if !ok || !o.IsAirborne() || o.InLimbo || o.IsFlying() || altitude <= 0 {
		return
	}
	s.Vacate(o.home, id)
	o.Altitude = altitude
}

// Land sets a flying aircraft down on its current cell.
func (s *State) Land(id ecs.EntityID) error {
	o, ok := s.objects.Get(id)
	if !ok || !o.IsFlying() || o.InLimbo {
		return nil
	}
	o.Altitude = 0
	if err := s.Occupy(o.home, id); err != nil {
		return fmt.Errorf("land %s: %w", o.Type.Name, err)
	}
	return nil
}

// Destroy lifts the object, marks it inactive and queues its release for
// the end of the tick.
func (s *State) Destroy(id ecs.EntityID) {
	o, ok := s.objects.Get(id)
	if !ok || !o.Active {
		return
	}
	s.Lift(id)
	o.Active = false
	s.objects.MarkForDestruction(id)
	event.Emit(s.bus, event.ObjectDestroyed{Object: id, House: uint8(o.House)})
}

// Flush releases every object queued by Destroy and returns how many went.
// onRelease, if set, sees each object just before its slot is freed.
func (s *State) Flush(onRelease func(*Object)) int {
	if onRelease == nil {
		return s.objects.FlushDestroyQueue(nil)
	}
	return s.objects.FlushDestroyQueue(func(_ ecs.EntityID, o *Object) {
		onRelease(o)
	})
}

// Reset clears every cell and drops all objects, for scenario reload.
func (s *State) Reset() {
	for i := range s.cells {
		s.cells[i].reset()
	}
	s.objects = ecs.NewArena[Object]()
	s.aircraft.Clear()
	s.ground.Clear()
	s.tick = 0
}

// violation handles a broken occupancy invariant.
func (s *State) violation(cell CellID, obj, existing ecs.EntityID, err error) error {
	if s.strict {
		panic(fmt.Sprintf("world: cell %d object %d: %v (existing %d)", cell, obj, err, existing))
	}
	s.log.Error("occupancy invariant violated",
		zap.Int32("cell", int32(cell)),
		zap.Uint64("object", uint64(obj)),
		zap.Uint64("existing", uint64(existing)),
		zap.Error(err))
	event.Emit(s.bus, event.InvariantViolated{
		Tick:     s.tick,
		Cell:     int32(cell),
		Object:   obj,
		Existing: existing,
		Reason:   err.Error(),
	})
	return fmt.Errorf("occupy cell %d: %w", cell, err)
}
