package world

import "github.com/rtsgo/threatgrid/internal/data"

// LandType classifies the terrain of a cell.
type LandType uint8

const (
	LandClear LandType = iota
	LandRoad
	LandWater
	LandRock
	LandWall
	LandTiberium
	LandBeach
	LandRough
	LandRiver

	LandCount
)

var landNames = [LandCount]string{
	"clear", "road", "water", "rock", "wall", "tiberium", "beach", "rough", "river",
}

func (l LandType) String() string {
	if l < LandCount {
		return landNames[l]
	}
	return "unknown"
}

// Passable reports whether a mover of class speed can enter land l.
func (l LandType) Passable(speed data.Speed) bool {
	switch speed {
	case data.SpeedWinged:
		return true
	case data.SpeedFloat:
		return l == LandWater
	case data.SpeedHover:
		return l != LandRock && l != LandWall
	case data.SpeedFoot:
		return l != LandWater && l != LandRock && l != LandWall && l != LandRiver
	case data.SpeedTrack, data.SpeedWheel:
		return l != LandWater && l != LandRock && l != LandWall && l != LandRiver
	}
	return false
}
