package system

import (
	"testing"

	"github.com/voidbreak/hull/internal/core/event"
	"github.com/voidbreak/hull/internal/mathutil"
	"github.com/voidbreak/hull/internal/scripting"
)

const rodScenario = `
spawns:
  - {ship: rod}
`

type halfScaler struct{ calls []scripting.ImpactContext }

func (s *halfScaler) ScaleImpactDamage(ctx scripting.ImpactContext) float64 {
	s.calls = append(s.calls, ctx)
	return ctx.BaseDamage / 2
}

func TestImpactSystem_ScalesDamage(t *testing.T) {
	h := newHarness(t, rodScenario)
	scaler := &halfScaler{}
	sys := NewImpactSystem(h.ws, h.bus, h.clock, scaler, h.log)
	damaged := collect[event.BlockDamaged](h.bus)

	b := h.block(t, "rod", 1, 0)
	event.Emit(h.bus, event.Impact{Block: b.ID, RelativeVelocity: mathutil.Vec2{0, 20}, Mass: 2})
	h.deliver()
	sys.Update(0)

	if len(scaler.calls) != 1 {
		t.Fatalf("scaler calls = %d", len(scaler.calls))
	}
	got := scaler.calls[0]
	if got.BlockKind != "turret" || !got.HasWeapon || got.Momentum != 40 || got.BaseDamage != 40 {
		t.Errorf("context = %+v", got)
	}
	if b.HP() != 60 {
		t.Errorf("hp = %v, want 60", b.HP())
	}
	if b.Owner().HP() != 260 {
		t.Errorf("structure hp = %v, want 260", b.Owner().HP())
	}

	h.deliver()
	if len(*damaged) != 1 || (*damaged)[0].Damage != 20 || (*damaged)[0].HP != 60 {
		t.Errorf("damage events = %+v", *damaged)
	}
}

func TestImpactSystem_LethalHitQueuesCheck(t *testing.T) {
	h := newHarness(t, rodScenario)
	sys := NewImpactSystem(h.ws, h.bus, h.clock, nil, h.log)
	destroyed := collect[event.BlockDestroyed](h.bus)

	b := h.block(t, "rod", 0, 0)
	event.Emit(h.bus, event.Impact{Block: b.ID, RelativeVelocity: mathutil.Vec2{150, 0}, Mass: 1})
	event.Emit(h.bus, event.Impact{Block: b.ID, RelativeVelocity: mathutil.Vec2{150, 0}, Mass: 1})
	h.deliver()
	sys.Update(0)

	if !b.Destroyed() {
		t.Fatal("block survived a lethal hit")
	}
	if n := b.Owner().PendingLen(); n != 1 {
		t.Errorf("backlog = %d, want 1", n)
	}
	h.deliver()
	if len(*destroyed) != 1 || (*destroyed)[0].Kind != "hull" {
		t.Errorf("destroyed events = %+v", *destroyed)
	}
}

func TestImpactSystem_Detonation(t *testing.T) {
	h := newHarness(t, rodScenario)
	sys := NewImpactSystem(h.ws, h.bus, h.clock, &halfScaler{}, h.log)

	b := h.block(t, "rod", -1, 0)
	st := b.Owner()
	event.Emit(h.bus, event.Detonation{Block: b.ID})
	h.deliver()
	sys.Update(0)

	if !b.Destroyed() {
		t.Fatal("detonated block not destroyed")
	}
	if st.HP() != 180 {
		t.Errorf("structure hp = %v, want 180", st.HP())
	}
}

func TestImpactSystem_IgnoresRetiredBlock(t *testing.T) {
	h := newHarness(t, rodScenario)
	sys := NewImpactSystem(h.ws, h.bus, h.clock, nil, h.log)
	damaged := collect[event.BlockDamaged](h.bus)

	b := h.block(t, "rod", 0, 0)
	b.Retire()
	event.Emit(h.bus, event.Impact{Block: b.ID, RelativeVelocity: mathutil.Vec2{10, 0}, Mass: 1})
	event.Emit(h.bus, event.Impact{Block: 9999999, RelativeVelocity: mathutil.Vec2{10, 0}, Mass: 1})
	h.deliver()
	sys.Update(0)
	h.deliver()

	if b.HP() != 100 || len(*damaged) != 0 {
		t.Errorf("hp = %v, events = %d", b.HP(), len(*damaged))
	}
}
