package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/voidbreak/hull/internal/core/event"
	coresys "github.com/voidbreak/hull/internal/core/system"
	"github.com/voidbreak/hull/internal/scripting"
	"github.com/voidbreak/hull/internal/world"
)

// DamageScaler adjusts computed impact damage. *scripting.Engine implements it.
type DamageScaler interface {
	ScaleImpactDamage(ctx scripting.ImpactContext) float64
}

type pendingHit struct {
	impact   event.Impact
	detonate bool
}

// ImpactSystem applies delivered impacts and detonations to blocks. Blocks
// reaching zero HP queue themselves on their owner's destruction backlog; the
// IntegritySystem takes it from there. Phase 1 (PreUpdate), after dispatch.
type ImpactSystem struct {
	world  *world.State
	bus    *event.Bus
	clock  Clock
	scaler DamageScaler // nil = use computed damage as is
	log    *zap.Logger
	queue  []pendingHit
}

func NewImpactSystem(ws *world.State, bus *event.Bus, clock Clock, scaler DamageScaler, log *zap.Logger) *ImpactSystem {
	s := &ImpactSystem{world: ws, bus: bus, clock: clock, scaler: scaler, log: log}
	event.Subscribe(bus, func(ev event.Impact) {
		s.queue = append(s.queue, pendingHit{impact: ev})
	})
	event.Subscribe(bus, func(ev event.Detonation) {
		s.queue = append(s.queue, pendingHit{impact: event.Impact{Block: ev.Block}, detonate: true})
	})
	return s
}

func (s *ImpactSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *ImpactSystem) Update(_ time.Duration) {
	for _, h := range s.queue {
		s.apply(h)
	}
	s.queue = s.queue[:0]
}

func (s *ImpactSystem) apply(h pendingHit) {
	b, ok := s.world.Block(h.impact.Block)
	if !ok || b.Removed() || b.Owner() == nil {
		s.log.Debug("impact on block no longer simulated", zap.Uint32("block", uint32(h.impact.Block)))
		return
	}
	owner := b.Owner()

	var res world.DamageResult
	if h.detonate {
		res = b.Destroy()
	} else {
		momentum := h.impact.RelativeVelocity.Scale(h.impact.Mass)
		dmg := b.ImpactDamage(momentum)
		if s.scaler != nil {
			dmg = s.scaler.ScaleImpactDamage(scripting.ImpactContext{
				BlockKind:    b.Kind,
				BlockHP:      b.HP(),
				BlockMaxHP:   b.MaxHP(),
				Momentum:     momentum.Len(),
				BaseDamage:   dmg,
				ColliderMass: h.impact.Mass,
				HasWeapon:    b.HasWeapon(),
			})
		}
		res = b.ApplyDamage(dmg)
	}

	tick := s.clock()
	if res.Damage > 0 {
		event.Emit(s.bus, event.BlockDamaged{
			Tick:      tick,
			Structure: owner.ID,
			Block:     b.ID,
			Damage:    res.Damage,
			HP:        b.HP(),
		})
	}
	if res.NewlyDamaged {
		s.log.Debug("block damaged",
			zap.Uint32("block", uint32(b.ID)),
			zap.String("kind", b.Kind),
			zap.Float64("hp", b.HP()),
		)
	}
	if res.Destroyed {
		event.Emit(s.bus, event.BlockDestroyed{
			Tick:      tick,
			Structure: owner.ID,
			Block:     b.ID,
			Kind:      b.Kind,
		})
		s.log.Info("block destroyed",
			zap.Uint64("structure", uint64(owner.ID)),
			zap.String("name", owner.Name),
			zap.Uint32("block", uint32(b.ID)),
			zap.String("kind", b.Kind),
			zap.Int("backlog", owner.PendingLen()),
		)
	}
}
