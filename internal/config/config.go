package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	Topology   TopologyConfig   `toml:"topology"`
	Integrity  IntegrityConfig  `toml:"integrity"`
	Damage     DamageConfig     `toml:"damage"`
	Data       DataConfig       `toml:"data"`
	Scripting  ScriptingConfig  `toml:"scripting"`
	Journal    JournalConfig    `toml:"journal"`
	Logging    LoggingConfig    `toml:"logging"`
}

type SimulationConfig struct {
	TickRate time.Duration `toml:"tick_rate"`
	MaxTicks int           `toml:"max_ticks"` // 0 = run until interrupted
}

// TopologyConfig controls neighbour probing when a structure's adjacency graph
// is built.
type TopologyConfig struct {
	ProbeLength  float64 `toml:"probe_length"` // how far past a block edge a probe reaches
	BlockSize    float64 `toml:"block_size"`   // edge length of one grid cell in world units
	SpaceScale   float64 `toml:"space_scale"`  // world units to broadphase units
	CellSize     int     `toml:"cell_size"`    // broadphase cell size, in broadphase units
	ShipLayer    string  `toml:"ship_layer"`
	DefaultLayer string  `toml:"default_layer"` // layer fragments are moved to after a split
}

type IntegrityConfig struct {
	FloodWorkers int `toml:"flood_workers"` // concurrent partition searches per check
}

type DamageConfig struct {
	DamagedThreshold float64 `toml:"damaged_threshold"` // fraction of max HP (0.0-1.0)
}

type DataConfig struct {
	Ships    string `toml:"ships"`
	Scenario string `toml:"scenario"`
}

type ScriptingConfig struct {
	Dir string `toml:"dir"` // empty disables Lua damage hooks
}

// JournalConfig selects where split records go. Either sink may be disabled by
// leaving it empty.
type JournalConfig struct {
	DSN             string        `toml:"dsn"`
	EventDir        string        `toml:"event_dir"`
	FlushEvery      int           `toml:"flush_every"` // ticks between flushes
	MaxConns        int           `toml:"max_conns"`   // pool ceiling
	MinConns        int           `toml:"min_conns"`   // connections kept open while idle
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes TOML over the defaults. name is only used in error messages.
func Parse(data []byte, name string) (*Config, error) {
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", name, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", name, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Simulation.TickRate <= 0:
		return fmt.Errorf("simulation.tick_rate must be positive")
	case c.Topology.ProbeLength <= 0:
		return fmt.Errorf("topology.probe_length must be positive")
	case c.Topology.BlockSize <= 0:
		return fmt.Errorf("topology.block_size must be positive")
	case c.Topology.SpaceScale <= 0 || c.Topology.CellSize <= 0:
		return fmt.Errorf("topology.space_scale and cell_size must be positive")
	case c.Integrity.FloodWorkers < 1:
		return fmt.Errorf("integrity.flood_workers must be at least 1")
	case c.Damage.DamagedThreshold < 0 || c.Damage.DamagedThreshold > 1:
		return fmt.Errorf("damage.damaged_threshold must be within [0, 1]")
	case c.Journal.MaxConns < 1 || c.Journal.MinConns < 0 || c.Journal.MinConns > c.Journal.MaxConns:
		return fmt.Errorf("journal.min_conns must be within [0, max_conns] and max_conns at least 1")
	}
	return nil
}

// Defaults returns the configuration used when a key is absent from the file.
func Defaults() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TickRate: 20 * time.Millisecond,
		},
		Topology: TopologyConfig{
			ProbeLength:  0.05,
			BlockSize:    1,
			SpaceScale:   100,
			CellSize:     25,
			ShipLayer:    "ship",
			DefaultLayer: "default",
		},
		Integrity: IntegrityConfig{
			FloodWorkers: 4,
		},
		Damage: DamageConfig{
			DamagedThreshold: 0.5,
		},
		Data: DataConfig{
			Ships:    "data/yaml/ships.yaml",
			Scenario: "data/yaml/scenario.yaml",
		},
		Journal: JournalConfig{
			FlushEvery:      50,
			MaxConns:        4,
			MinConns:        1,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
