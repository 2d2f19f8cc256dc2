package data

import (
	"fmt"
	"strings"
)

// Kind is the runtime class of a simulation object.
type Kind uint8

const (
	KindNone Kind = iota
	KindInfantry
	KindUnit
	KindBuilding
	KindAircraft
	KindVessel
	KindTerrain

	KindCount
)

var kindNames = [KindCount]string{
	KindNone:     "none",
	KindInfantry: "infantry",
	KindUnit:     "unit",
	KindBuilding: "building",
	KindAircraft: "aircraft",
	KindVessel:   "vessel",
	KindTerrain:  "terrain",
}

func (k Kind) String() string {
	if k >= KindCount {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Bit returns the kind's bit for kind masks.
func (k Kind) Bit() uint32 { return 1 << k }

// ParseKind maps a catalog name to a Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if k != int(KindNone) && name == s {
			return Kind(k), nil
		}
	}
	return KindNone, fmt.Errorf("unknown kind %q", s)
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Speed is the locomotion class. Hover and float movers count as boats
// for threat scanning.
type Speed uint8

const (
	SpeedNone Speed = iota
	SpeedFoot
	SpeedTrack
	SpeedWheel
	SpeedHover
	SpeedFloat
	SpeedWinged
)

var speedNames = map[string]Speed{
	"":       SpeedNone,
	"none":   SpeedNone,
	"foot":   SpeedFoot,
	"track":  SpeedTrack,
	"wheel":  SpeedWheel,
	"hover":  SpeedHover,
	"float":  SpeedFloat,
	"winged": SpeedWinged,
}

func (s Speed) String() string {
	for name, v := range speedNames {
		if v == s && name != "" {
			return name
		}
	}
	return "none"
}

func (s *Speed) UnmarshalText(b []byte) error {
	v, ok := speedNames[strings.ToLower(strings.TrimSpace(string(b)))]
	if !ok {
		return fmt.Errorf("unknown speed %q", string(b))
	}
	*s = v
	return nil
}

// IsBoat reports whether movers of this class travel on water.
func (s Speed) IsBoat() bool { return s == SpeedHover || s == SpeedFloat }
