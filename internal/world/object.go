package world

import (
	"github.com/rtsgo/threatgrid/internal/core/ecs"
	"github.com/rtsgo/threatgrid/internal/data"
)

// Object is one simulation entity: a soldier, vehicle, building, aircraft,
// vessel or terrain feature. Objects live in the State arena; cells and rosters
// refer to them by id only.
type Object struct {
	ID    ecs.EntityID
	Type  *data.TypeClass
	House House

	// Coord is the center of the object in leptons. For buildings it is the
	// center of the whole footprint, which is also where it fires from.
	Coord Coord

	Active   bool // false once destroyed
	InLimbo  bool // not placed on the map
	Cloaked  bool
	Kills    int
	Altitude int // leptons above ground, aircraft only
	Heading  Facing

	// Discovered records every house that has ever seen this object.
	Discovered HouseMask

	// Target is the object this one last locked, or ecs.None.
	Target ecs.EntityID

	home CellID
	next ecs.EntityID // occupant chain link, owned by the cell chain
}

// Kind returns the object's type kind.
func (o *Object) Kind() data.Kind {
	if o.Type == nil {
		return data.KindNone
	}
	return o.Type.Kind
}

// IsTechno reports whether the object is combat targetable: anything but
// terrain.
func (o *Object) IsTechno() bool {
	switch o.Kind() {
	case data.KindInfantry, data.KindUnit, data.KindBuilding, data.KindAircraft, data.KindVessel:
		return true
	}
	return false
}

// IsAirborne reports whether the object is of an airborne kind, whether or
// not it is currently flying.
func (o *Object) IsAirborne() bool { return o.Kind() == data.KindAircraft }

// IsFlying reports whether the object is an aircraft in the air.
func (o *Object) IsFlying() bool { return o.IsAirborne() && o.Altitude > 0 }

func (o *Object) IsBuilding() bool { return o.Kind() == data.KindBuilding }

// IsFootprint reports whether the object spans several cells.
func (o *Object) IsFootprint() bool {
	if !o.IsBuilding() {
		return false
	}
	w, h := o.Type.Size()
	return w*h > 1
}

// IsBoat reports whether the object travels on water: vessels and hover or
// float movers.
func (o *Object) IsBoat() bool {
	return o.Kind() == data.KindVessel || (o.Type != nil && o.Type.Speed.IsBoat())
}

// Home returns the cell whose occupant chain holds the object. For
// buildings it is the top-left footprint cell.
func (o *Object) Home() CellID { return o.home }

// Capability selects a category for FirstOccupantOfCapability.
type Capability uint8

const (
	CapAny Capability = iota
	CapTechno
	CapBuilding
	CapInfantry
	CapUnit
	CapAircraft
	CapVessel
	CapTerrain
)

// Has reports whether o belongs to capability c.
func (o *Object) Has(c Capability) bool {
	switch c {
	case CapAny:
		return true
	case CapTechno:
		return o.IsTechno()
	case CapBuilding:
		return o.Kind() == data.KindBuilding
	case CapInfantry:
		return o.Kind() == data.KindInfantry
	case CapUnit:
		return o.Kind() == data.KindUnit
	case CapAircraft:
		return o.Kind() == data.KindAircraft
	case CapVessel:
		return o.Kind() == data.KindVessel
	case CapTerrain:
		return o.Kind() == data.KindTerrain
	}
	return false
}
