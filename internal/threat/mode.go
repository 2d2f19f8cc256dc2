// Package threat scores candidate targets and picks the best one for a seeker.
// It only reads the world; nothing here mutates cells or objects.
package threat

import (
	"fmt"
	"strings"
)

// Mode is a scan mode: category bits plus a range discipline. Neither Range
// nor Area set means a map-wide, unbounded scan.
type Mode uint32

const (
	Range     Mode = 0x0001 // must already be inside a weapon envelope
	Area      Mode = 0x0002 // twice the weapon envelope, capped
	Air       Mode = 0x0004
	Infantry  Mode = 0x0008
	Vehicles  Mode = 0x0010
	Buildings Mode = 0x0020
	Tiberium  Mode = 0x0040 // harvesters and storage buildings only
	Boats     Mode = 0x0080
	Civilians Mode = 0x0100 // neutral owners only
	Capture   Mode = 0x0200 // capturable buildings only

	Ground = Infantry | Vehicles | Buildings

	categories = Air | Infantry | Vehicles | Buildings | Tiberium | Boats | Civilians | Capture
)

// Bounded reports whether the scan walks cells around the seeker.
func (m Mode) Bounded() bool { return m&(Range|Area) != 0 }

func (m Mode) Has(bits Mode) bool { return m&bits == bits }

// Normalize fills in Ground when m names no category at all, so a bare range
// discipline still finds something to shoot.
func (m Mode) Normalize() Mode {
	if m&categories == 0 {
		m |= Ground
	}
	return m
}

var modeNames = []struct {
	name string
	bit  Mode
}{
	{"range", Range},
	{"area", Area},
	{"air", Air},
	{"infantry", Infantry},
	{"vehicles", Vehicles},
	{"buildings", Buildings},
	{"tiberium", Tiberium},
	{"boats", Boats},
	{"civilians", Civilians},
	{"capture", Capture},
	{"ground", Ground},
}

func (m Mode) String() string {
	if m == 0 {
		return "normal"
	}
	var parts []string
	for _, n := range modeNames {
		if n.bit != Ground && m&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseMode reads a "|" or "," separated list of mode names. The empty
// string and "normal" both mean an unbounded scan of default categories.
func ParseMode(s string) (Mode, error) {
	var m Mode
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' || r == ' ' }) {
		f = strings.ToLower(f)
		if f == "normal" {
			continue
		}
		found := false
		for _, n := range modeNames {
			if n.name == f {
				m |= n.bit
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown scan mode %q", f)
		}
	}
	return m, nil
}
