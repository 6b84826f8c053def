package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_OverridesDefaults(t *testing.T) {
	src := `
[simulation]
tick_rate = "50ms"
max_ticks = 300

[integrity]
flood_workers = 2

[journal]
event_dir = "/tmp/splits"
`
	cfg, err := Parse([]byte(src), "inline")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Simulation.TickRate != 50*time.Millisecond || cfg.Simulation.MaxTicks != 300 {
		t.Errorf("simulation = %+v", cfg.Simulation)
	}
	if cfg.Integrity.FloodWorkers != 2 {
		t.Errorf("flood_workers = %d", cfg.Integrity.FloodWorkers)
	}
	if cfg.Journal.EventDir != "/tmp/splits" || cfg.Journal.FlushEvery != 50 {
		t.Errorf("journal = %+v", cfg.Journal)
	}
	// untouched sections keep their defaults
	if cfg.Topology.ProbeLength != 0.05 || cfg.Topology.DefaultLayer != "default" {
		t.Errorf("topology = %+v", cfg.Topology)
	}
}

func TestParse_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"threshold": "[damage]\ndamaged_threshold = 1.5\n",
		"workers":   "[integrity]\nflood_workers = 0\n",
		"probe":     "[topology]\nprobe_length = -1.0\n",
		"syntax":    "[simulation\n",
		"pool":      "[journal]\nmax_conns = 2\nmin_conns = 3\n",
	}
	for name, src := range cases {
		if _, err := Parse([]byte(src), name); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoad_SampleConfig(t *testing.T) {
	path := filepath.Join("..", "..", "config", "hullsim.toml")
	if _, err := os.Stat(path); err != nil {
		t.Skip("sample config not present")
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("Load(%s): %v", path, err)
	}
}
