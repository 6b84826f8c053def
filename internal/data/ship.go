package data

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/voidbreak/hull/internal/mathutil"
	"github.com/voidbreak/hull/internal/world"
)

var (
	ErrUnknownBlockKind = errors.New("unknown block kind")
	ErrUnknownShip      = errors.New("unknown ship")
	ErrDuplicateCell    = errors.New("two blocks on one cell")
)

// BlockKind is the template every placed block of that kind is built from.
type BlockKind struct {
	Name               string       `yaml:"name"`
	Shape              string       `yaml:"shape"` // "square" (default) or "triangle"
	HP                 float64      `yaml:"hp"`
	Mass               float64      `yaml:"mass"`
	Integrity          [][2]float64 `yaml:"integrity"`
	ResistPositiveOnly bool         `yaml:"resist_positive_only"`
	Weapon             *WeaponDef   `yaml:"weapon"`
}

type WeaponDef struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

// Placement puts one block of Kind on cell (X, Y), turned Rot quarter turns
// counter-clockwise.
type Placement struct {
	Kind string `yaml:"kind"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
	Rot  int    `yaml:"rot"`
}

// ShipDef is a named blueprint.
type ShipDef struct {
	Name   string      `yaml:"name"`
	Layout []Placement `yaml:"layout"`
}

// ShipTable indexes block kinds and ship blueprints by name.
type ShipTable struct {
	kinds map[string]*BlockKind
	ships map[string]*ShipDef
}

// Kind returns a block kind by name, or nil if not found.
func (t *ShipTable) Kind(name string) *BlockKind { return t.kinds[name] }

// Ship returns a blueprint by name, or nil if not found.
func (t *ShipTable) Ship(name string) *ShipDef { return t.ships[name] }

// Count returns the number of blueprints loaded.
func (t *ShipTable) Count() int { return len(t.ships) }

// KindCount returns the number of block kinds loaded.
func (t *ShipTable) KindCount() int { return len(t.kinds) }

// Names returns the blueprint names, sorted.
func (t *ShipTable) Names() []string {
	out := make([]string, 0, len(t.ships))
	for n := range t.ships {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// BlockSpecs expands a blueprint into one spec per placement, in layout order.
func (t *ShipTable) BlockSpecs(ship string, damagedThreshold float64, layer string) ([]world.BlockSpec, error) {
	def := t.ships[ship]
	if def == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShip, ship)
	}
	specs := make([]world.BlockSpec, 0, len(def.Layout))
	for _, p := range def.Layout {
		k := t.kinds[p.Kind]
		specs = append(specs, k.spec(p, damagedThreshold, layer))
	}
	return specs, nil
}

func (k *BlockKind) spec(p Placement, damagedThreshold float64, layer string) world.BlockSpec {
	vecs := make([]mathutil.Vec2, len(k.Integrity))
	for i, v := range k.Integrity {
		vecs[i] = mathutil.Vec2(v)
	}
	shape := world.ShapeSquare
	if k.Shape == "triangle" {
		shape = world.ShapeTriangle
	}
	var w *world.Weapon
	if k.Weapon != nil {
		// each placed block carries its own weapon instance
		w = &world.Weapon{Name: k.Weapon.Name, Kind: k.Weapon.Kind}
	}
	return world.BlockSpec{
		Kind:               k.Name,
		Shape:              shape,
		Cell:               world.Cell{X: p.X, Y: p.Y},
		Quarter:            p.Rot,
		HP:                 k.HP,
		Mass:               k.Mass,
		Integrity:          vecs,
		ResistPositiveOnly: k.ResistPositiveOnly,
		Weapon:             w,
		DamagedThreshold:   damagedThreshold,
		Layer:              layer,
	}
}

// --- YAML loading ---

type shipFile struct {
	BlockKinds []BlockKind `yaml:"block_kinds"`
	Ships      []ShipDef   `yaml:"ships"`
}

// LoadShipTable loads block kinds and ship blueprints from YAML.
func LoadShipTable(path string) (*ShipTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ships: read %s: %w", path, err)
	}
	return ParseShipTable(raw, path)
}

// ParseShipTable validates and indexes a ship table. name is only used in
// error messages.
func ParseShipTable(raw []byte, name string) (*ShipTable, error) {
	if err := validateShipYAML(raw); err != nil {
		return nil, fmt.Errorf("ships: validate %s: %w", name, err)
	}

	var f shipFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("ships: parse %s: %w", name, err)
	}

	t := &ShipTable{
		kinds: make(map[string]*BlockKind, len(f.BlockKinds)),
		ships: make(map[string]*ShipDef, len(f.Ships)),
	}
	for i := range f.BlockKinds {
		k := &f.BlockKinds[i]
		t.kinds[k.Name] = k
	}
	for i := range f.Ships {
		s := &f.Ships[i]
		seen := make(map[world.Cell]struct{}, len(s.Layout))
		for _, p := range s.Layout {
			if t.kinds[p.Kind] == nil {
				return nil, fmt.Errorf("ships: %s: ship %q: %w: %q", name, s.Name, ErrUnknownBlockKind, p.Kind)
			}
			c := world.Cell{X: p.X, Y: p.Y}
			if _, dup := seen[c]; dup {
				return nil, fmt.Errorf("ships: %s: ship %q at (%d,%d): %w", name, s.Name, p.X, p.Y, ErrDuplicateCell)
			}
			seen[c] = struct{}{}
		}
		t.ships[s.Name] = s
	}
	return t, nil
}
