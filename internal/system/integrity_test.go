package system

import (
	"context"
	"testing"

	"github.com/voidbreak/hull/internal/core/event"
	"github.com/voidbreak/hull/internal/mathutil"
	"github.com/voidbreak/hull/internal/world"
)

func TestIntegritySystem_ReportsSplit(t *testing.T) {
	h := newHarness(t, rodScenario)
	sys := h.integrity()
	splits := collect[event.StructureSplit](h.bus)

	rod := h.fleet.Structures["rod"]
	left := h.block(t, "rod", -1, 0)
	h.block(t, "rod", 0, 0).Destroy()

	h.tick = 4
	sys.Update(0)
	if sys.Checks() != 1 || sys.Splits() != 1 {
		t.Fatalf("checks=%d splits=%d", sys.Checks(), sys.Splits())
	}
	if h.ws.StructureCount() != 2 {
		t.Fatalf("structures = %d, want 2", h.ws.StructureCount())
	}

	h.deliver()
	if len(*splits) != 1 {
		t.Fatalf("split events = %d", len(*splits))
	}
	ev := (*splits)[0]
	if ev.Tick != 4 || ev.Parent != rod.ID || ev.ParentName != "rod" || ev.CoreSize != 1 {
		t.Errorf("split = %+v", ev)
	}
	if len(ev.Fragments) != 1 || len(ev.Fragments[0].Blocks) != 1 || ev.Fragments[0].Blocks[0] != left.ID {
		t.Fatalf("fragments = %+v", ev.Fragments)
	}
	frag, ok := h.ws.Structure(ev.Fragments[0].ID)
	if !ok || left.Owner() != frag {
		t.Fatal("fragment not registered or not owning the block")
	}
	if frag.Name != "rod/frag1" || frag.Layer != h.cfg.Topology.DefaultLayer {
		t.Errorf("fragment name=%q layer=%q", frag.Name, frag.Layer)
	}
	if ev.Fragments[0].Mass != 1 || ev.Fragments[0].HP != 100 {
		t.Errorf("fragment mass=%v hp=%v", ev.Fragments[0].Mass, ev.Fragments[0].HP)
	}
}

func TestIntegritySystem_OneCheckPerStructurePerTick(t *testing.T) {
	h := newHarness(t, rodScenario)
	sys := h.integrity()
	rod := h.fleet.Structures["rod"]
	h.block(t, "rod", 1, 0).Destroy()
	h.block(t, "rod", -1, 0).Destroy()

	sys.Update(0)
	if sys.Checks() != 1 || rod.PendingLen() != 1 {
		t.Fatalf("first tick: checks=%d backlog=%d", sys.Checks(), rod.PendingLen())
	}
	sys.Update(0)
	if sys.Checks() != 2 || rod.PendingLen() != 0 {
		t.Fatalf("second tick: checks=%d backlog=%d", sys.Checks(), rod.PendingLen())
	}
	if sys.Splits() != 0 || rod.BlockCount() != 1 {
		t.Errorf("splits=%d blocks=%d", sys.Splits(), rod.BlockCount())
	}
}

func TestIntegritySystem_EmptyStructureDestroyed(t *testing.T) {
	h := newHarness(t, "spawns: [{ship: buoy}]")
	sys := h.integrity()
	cleanup := NewCleanupSystem(h.ws, h.log)
	gone := collect[event.StructureDestroyed](h.bus)

	buoy := h.fleet.Structures["buoy"]
	h.block(t, "buoy", 0, 0).Destroy()
	sys.Update(0)
	sys.Update(0) // nothing left to drain: no second report

	h.deliver()
	if len(*gone) != 1 || (*gone)[0].Structure != buoy.ID || (*gone)[0].Name != "buoy" {
		t.Fatalf("destroyed events = %+v", *gone)
	}
	if _, ok := h.ws.Structure(buoy.ID); !ok {
		t.Fatal("structure removed before cleanup")
	}
	cleanup.Update(0)
	if _, ok := h.ws.Structure(buoy.ID); ok {
		t.Error("structure still registered after cleanup")
	}
	if h.ws.StructureCount() != 0 {
		t.Errorf("structures = %d", h.ws.StructureCount())
	}
}

func TestSplitEvent_FragmentSnapshot(t *testing.T) {
	h := newHarness(t, rodScenario)
	rod := h.fleet.Structures["rod"]
	rod.Velocity = mathutil.Vec2{3, -1}
	rod.AngularVelocity = 0.5
	h.block(t, "rod", 0, 0).Destroy()
	id, _ := rod.PopPending()

	res, err := h.engine.Check(context.Background(), rod, id)
	if err != nil {
		t.Fatal(err)
	}
	ev := splitEvent(9, rod, res)
	f := ev.Fragments[0]
	if f.Velocity != rod.Velocity || f.AngularVelocity != 0.5 {
		t.Errorf("fragment velocity = %v / %v", f.Velocity, f.AngularVelocity)
	}
	if want := (world.Dimensions{Up: 0, Down: 0, Right: -1, Left: -1}); f.Dimensions != want {
		t.Errorf("fragment dimensions = %+v", f.Dimensions)
	}
}
