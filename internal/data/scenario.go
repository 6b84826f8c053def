package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Spawn places one ship blueprint into the world at start.
type Spawn struct {
	Ship            string     `yaml:"ship"`
	Name            string     `yaml:"name"` // defaults to the blueprint name
	Position        [2]float64 `yaml:"position"`
	Rotation        float64    `yaml:"rotation"` // radians
	Velocity        [2]float64 `yaml:"velocity"`
	AngularVelocity float64    `yaml:"angular_velocity"`
}

// ScriptedImpact hits the block a spawned ship had at Cell on the given tick.
// The block is found wherever it ended up, even after splits. Destroy kills
// the block outright instead of computing impact damage.
type ScriptedImpact struct {
	Tick             uint64     `yaml:"tick"`
	Target           string     `yaml:"target"` // spawn name
	Cell             [2]int     `yaml:"cell"`
	RelativeVelocity [2]float64 `yaml:"relative_velocity"`
	Mass             float64    `yaml:"mass"`
	Destroy          bool       `yaml:"destroy"`
}

// Scenario is a scripted run: what to spawn and what hits it when.
type Scenario struct {
	Spawns  []Spawn          `yaml:"spawns"`
	Impacts []ScriptedImpact `yaml:"impacts"` // sorted by tick, stable
}

// LoadScenario loads a scenario from YAML and checks it against ships.
func LoadScenario(path string, ships *ShipTable) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	return ParseScenario(raw, path, ships)
}

// ParseScenario decodes a scenario and resolves spawn names.
func ParseScenario(raw []byte, name string, ships *ShipTable) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("scenario: parse %s: %w", name, err)
	}

	spawned := make(map[string]struct{}, len(sc.Spawns))
	for i := range sc.Spawns {
		sp := &sc.Spawns[i]
		if ships.Ship(sp.Ship) == nil {
			return nil, fmt.Errorf("scenario: %s: spawn %d: %w: %q", name, i, ErrUnknownShip, sp.Ship)
		}
		if sp.Name == "" {
			sp.Name = sp.Ship
		}
		if _, dup := spawned[sp.Name]; dup {
			return nil, fmt.Errorf("scenario: %s: duplicate spawn name %q", name, sp.Name)
		}
		spawned[sp.Name] = struct{}{}
	}
	for i, im := range sc.Impacts {
		if _, ok := spawned[im.Target]; !ok {
			return nil, fmt.Errorf("scenario: %s: impact %d targets unknown spawn %q", name, i, im.Target)
		}
		if !im.Destroy && im.Mass <= 0 {
			return nil, fmt.Errorf("scenario: %s: impact %d needs a positive mass", name, i)
		}
	}
	sort.SliceStable(sc.Impacts, func(i, j int) bool {
		return sc.Impacts[i].Tick < sc.Impacts[j].Tick
	})
	return &sc, nil
}

// LastTick returns the tick of the final scripted impact.
func (sc *Scenario) LastTick() uint64 {
	if len(sc.Impacts) == 0 {
		return 0
	}
	return sc.Impacts[len(sc.Impacts)-1].Tick
}
