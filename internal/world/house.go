package world

import (
	"fmt"
	"strings"
)

// House is a faction. Every object belongs to exactly one house.
type House uint8

const (
	HouseGood House = iota
	HouseBad
	HouseNeutral
	HouseJP
	HouseMulti1
	HouseMulti2
	HouseMulti3
	HouseMulti4
	HouseMulti5
	HouseMulti6

	HouseCount
)

// HouseNone marks an object with no owner.
const HouseNone House = 0xFF

var houseNames = [HouseCount]string{
	"good", "bad", "neutral", "jp",
	"multi1", "multi2", "multi3", "multi4", "multi5", "multi6",
}

func (h House) String() string {
	if h < HouseCount {
		return houseNames[h]
	}
	return "none"
}

// ParseHouse maps a config name to a House.
func ParseHouse(s string) (House, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range houseNames {
		if name == s {
			return House(i), nil
		}
	}
	return HouseNone, fmt.Errorf("unknown house %q", s)
}

// HouseMask holds one bit per house.
type HouseMask uint32

func (m HouseMask) Has(h House) bool {
	return h < HouseCount && m&(1<<h) != 0
}

func (m *HouseMask) Set(h House) {
	if h < HouseCount {
		*m |= 1 << h
	}
}

func (m *HouseMask) Clear(h House) {
	if h < HouseCount {
		*m &^= 1 << h
	}
}

// Houses records alliances and which houses are human controlled.
type Houses struct {
	allies [HouseCount]HouseMask
	human  HouseMask
}

// NewHouses returns a table where every house is allied only with itself.
func NewHouses() *Houses {
	h := &Houses{}
	for i := House(0); i < HouseCount; i++ {
		h.allies[i].Set(i)
	}
	return h
}

// Ally makes a and b allies in both directions.
func (h *Houses) Ally(a, b House) {
	if a >= HouseCount || b >= HouseCount {
		return
	}
	h.allies[a].Set(b)
	h.allies[b].Set(a)
}

// Enemy breaks an alliance in both directions. A house is always its own ally.
func (h *Houses) Enemy(a, b House) {
	if a >= HouseCount || b >= HouseCount || a == b {
		return
	}
	h.allies[a].Clear(b)
	h.allies[b].Clear(a)
}

// IsAlly reports whether a regards b as a friend.
func (h *Houses) IsAlly(a, b House) bool {
	if a >= HouseCount || b >= HouseCount {
		return false
	}
	return h.allies[a].Has(b)
}

func (h *Houses) SetHuman(house House, human bool) {
	if human {
		h.human.Set(house)
	} else {
		h.human.Clear(house)
	}
}

func (h *Houses) IsHuman(house House) bool {
	return h.human.Has(house)
}
