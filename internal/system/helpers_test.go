package system

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/voidbreak/hull/internal/config"
	"github.com/voidbreak/hull/internal/core/event"
	"github.com/voidbreak/hull/internal/data"
	"github.com/voidbreak/hull/internal/integrity"
	"github.com/voidbreak/hull/internal/world"
)

const testShips = `
block_kinds:
  - {name: hull, hp: 100, mass: 1}
  - {name: turret, hp: 80, mass: 1.5, weapon: {name: autocannon, kind: ballistic}}
ships:
  - name: rod
    layout:
      - {kind: hull, x: -1, y: 0}
      - {kind: hull, x: 0, y: 0}
      - {kind: turret, x: 1, y: 0}
  - name: buoy
    layout:
      - {kind: hull, x: 0, y: 0}
`

// harness is a small world wired the way cmd/hullsim wires it.
type harness struct {
	cfg     *config.Config
	ws      *world.State
	bus     *event.Bus
	builder *integrity.Builder
	engine  *integrity.Engine
	fleet   *Fleet
	sc      *data.Scenario
	log     *zap.Logger
	tick    uint64
}

func newHarness(t *testing.T, scenario string) *harness {
	t.Helper()
	cfg := config.Defaults()
	ships, err := data.ParseShipTable([]byte(testShips), "inline")
	if err != nil {
		t.Fatal(err)
	}
	sc, err := data.ParseScenario([]byte(scenario), "inline", ships)
	if err != nil {
		t.Fatal(err)
	}

	log := zaptest.NewLogger(t)
	h := &harness{
		cfg: cfg,
		ws:  world.NewState(cfg.Topology.DefaultLayer),
		bus: event.NewBus(),
		sc:  sc,
		log: log,
	}
	h.builder = integrity.NewBuilder(integrity.NewResolvProberFactory(cfg.Topology), log)
	h.engine = integrity.NewEngine(h.builder, h.ws, cfg.Integrity.FloodWorkers, cfg.Topology.DefaultLayer, log)
	h.fleet, err = SpawnScenario(h.ws, h.builder, ships, sc, cfg, log)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func (h *harness) clock() uint64 { return h.tick }

// deliver moves everything emitted so far to the handlers, as the dispatch
// system does at the start of a tick.
func (h *harness) deliver() {
	h.bus.SwapBuffers()
	h.bus.DispatchAll()
}

func (h *harness) block(t *testing.T, spawn string, x, y int) *world.Block {
	t.Helper()
	id, ok := h.fleet.Blocks[Target{Spawn: spawn, Cell: world.Cell{X: x, Y: y}}]
	if !ok {
		t.Fatalf("no block at %s (%d,%d)", spawn, x, y)
	}
	b, _ := h.ws.Block(id)
	return b
}

func (h *harness) integrity() *IntegritySystem {
	return NewIntegritySystem(context.Background(), h.ws, h.engine, h.bus, h.clock, h.log)
}

// collect subscribes a slice to every event of type T.
func collect[T any](bus *event.Bus) *[]T {
	var out []T
	event.Subscribe(bus, func(ev T) { out = append(out, ev) })
	return &out
}
