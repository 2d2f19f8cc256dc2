package data

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Weapon is one weapon slot of a type class.
type Weapon struct {
	Name       string `yaml:"name"`
	Range      int    `yaml:"range"` // leptons
	AntiAir    bool   `yaml:"anti_air"`
	AntiGround bool   `yaml:"anti_ground"`
}

// Footprint is the cell extent of a building. Zero means a single cell.
type Footprint struct {
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// TypeClass holds static data for one object type loaded from YAML.
type TypeClass struct {
	Name        string    `yaml:"name"`
	Kind        Kind      `yaml:"kind"`
	Value       int       `yaml:"value"` // intrinsic threat value
	LegalTarget bool      `yaml:"legal_target"`
	Captureable bool      `yaml:"captureable"`
	Harvester   bool      `yaml:"harvester"`
	Storage     int       `yaml:"storage"` // tiberium capacity, buildings only
	Speed       Speed     `yaml:"speed"`
	Primary     Weapon    `yaml:"primary"`
	Secondary   Weapon    `yaml:"secondary"`
	Footprint   Footprint `yaml:"footprint"`
	Cloakable   bool      `yaml:"cloakable"`
	Civilian    bool      `yaml:"civilian"` // spawned for the neutral house
	Sight       int       `yaml:"sight"`    // cells
}

// WeaponRange returns the range in leptons of weapon slot which (0 primary,
// 1 secondary). Missing weapons report 0.
func (t *TypeClass) WeaponRange(which int) int {
	switch which {
	case 0:
		return t.Primary.Range
	case 1:
		return t.Secondary.Range
	}
	return 0
}

// Armed reports whether the type has any weapon at all.
func (t *TypeClass) Armed() bool {
	return t.Primary.Range > 0 || t.Secondary.Range > 0
}

// CanHitAir reports whether any weapon can engage flying targets.
func (t *TypeClass) CanHitAir() bool {
	return (t.Primary.Range > 0 && t.Primary.AntiAir) || (t.Secondary.Range > 0 && t.Secondary.AntiAir)
}

// CanHitGround reports whether any weapon can engage surface targets.
func (t *TypeClass) CanHitGround() bool {
	return (t.Primary.Range > 0 && t.Primary.AntiGround) || (t.Secondary.Range > 0 && t.Secondary.AntiGround)
}

// AirOnly reports whether every weapon this type carries is anti-air only.
func (t *TypeClass) AirOnly() bool {
	return t.Armed() && t.CanHitAir() && !t.CanHitGround()
}

// Size returns the footprint extent, at least 1x1.
func (t *TypeClass) Size() (w, h int) {
	w, h = t.Footprint.W, t.Footprint.H
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

type catalogFile struct {
	Types []TypeClass `yaml:"types"`
}

// Catalog holds all type classes indexed by name.
type Catalog struct {
	types map[string]*TypeClass
}

// LoadCatalog reads a YAML type catalog, validates it against the embedded
// schema and indexes it by name.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read type catalog %s: %w", path, err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog is LoadCatalog for an in-memory document.
func ParseCatalog(raw []byte) (*Catalog, error) {
	if err := validateCatalog(raw); err != nil {
		return nil, err
	}
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse type catalog: %w", err)
	}
	c := &Catalog{types: make(map[string]*TypeClass, len(f.Types))}
	for i := range f.Types {
		tc := &f.Types[i]
		if _, dup := c.types[tc.Name]; dup {
			return nil, fmt.Errorf("type catalog: duplicate type %q", tc.Name)
		}
		c.types[tc.Name] = tc
	}
	return c, nil
}

// NewCatalog builds a catalog from already constructed type classes.
func NewCatalog(types ...*TypeClass) *Catalog {
	c := &Catalog{types: make(map[string]*TypeClass, len(types))}
	for _, tc := range types {
		c.types[tc.Name] = tc
	}
	return c
}

// Get returns a type class by name, or nil if not found.
func (c *Catalog) Get(name string) *TypeClass {
	return c.types[name]
}

// Count returns the number of type classes loaded.
func (c *Catalog) Count() int {
	return len(c.types)
}

// OfKind returns every type of kind k, sorted by name.
func (c *Catalog) OfKind(k Kind) []*TypeClass {
	var out []*TypeClass
	for _, tc := range c.types {
		if tc.Kind == k {
			out = append(out, tc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

const catalogSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["types"],
  "properties": {
    "types": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "kind"],
        "properties": {
          "name":         {"type": "string", "minLength": 1},
          "kind":         {"enum": ["infantry", "unit", "building", "aircraft", "vessel", "terrain"]},
          "value":        {"type": "integer", "minimum": 0},
          "legal_target": {"type": "boolean"},
          "captureable":  {"type": "boolean"},
          "harvester":    {"type": "boolean"},
          "storage":      {"type": "integer", "minimum": 0},
          "speed":        {"enum": ["none", "foot", "track", "wheel", "hover", "float", "winged"]},
          "primary":      {"$ref": "#/definitions/weapon"},
          "secondary":    {"$ref": "#/definitions/weapon"},
          "footprint": {
            "type": "object",
            "properties": {
              "w": {"type": "integer", "minimum": 1, "maximum": 4},
              "h": {"type": "integer", "minimum": 1, "maximum": 4}
            }
          },
          "cloakable":    {"type": "boolean"},
          "civilian":     {"type": "boolean"},
          "sight":        {"type": "integer", "minimum": 0}
        }
      }
    }
  },
  "definitions": {
    "weapon": {
      "type": "object",
      "properties": {
        "name":        {"type": "string"},
        "range":       {"type": "integer", "minimum": 0, "maximum": 2560},
        "anti_air":    {"type": "boolean"},
        "anti_ground": {"type": "boolean"}
      }
    }
  }
}`

var compiledCatalogSchema = jsonschema.MustCompileString("catalog.schema.json", catalogSchema)

// validateCatalog checks the YAML document against catalogSchema. The YAML
// tree is round-tripped through JSON so the validator sees json.Number values.
func validateCatalog(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse type catalog: %w", err)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("type catalog: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("type catalog: %w", err)
	}
	if err := compiledCatalogSchema.Validate(v); err != nil {
		return fmt.Errorf("type catalog schema: %w", err)
	}
	return nil
}
