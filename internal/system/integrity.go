package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/voidbreak/hull/internal/core/event"
	coresys "github.com/voidbreak/hull/internal/core/system"
	"github.com/voidbreak/hull/internal/integrity"
	"github.com/voidbreak/hull/internal/world"
)

// IntegritySystem drains at most one destroyed block per structure per tick
// and reports splits and emptied structures. Fragments spawned this tick wait
// for the next one. Phase 3 (PostUpdate).
type IntegritySystem struct {
	world  *world.State
	engine *integrity.Engine
	bus    *event.Bus
	clock  Clock
	ctx    context.Context
	log    *zap.Logger

	checks int
	splits int
}

// NewIntegritySystem binds the system to ctx; cancelling it aborts partition
// discovery in flight.
func NewIntegritySystem(ctx context.Context, ws *world.State, engine *integrity.Engine, bus *event.Bus, clock Clock, log *zap.Logger) *IntegritySystem {
	return &IntegritySystem{
		world:  ws,
		engine: engine,
		bus:    bus,
		clock:  clock,
		ctx:    ctx,
		log:    log,
	}
}

func (s *IntegritySystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

// Checks returns how many integrity checks have run.
func (s *IntegritySystem) Checks() int { return s.checks }

// Splits returns how many checks ended in a split.
func (s *IntegritySystem) Splits() int { return s.splits }

func (s *IntegritySystem) Update(_ time.Duration) {
	tick := s.clock()
	s.world.AllStructures(func(st *world.Structure) {
		res, ran, err := s.engine.Drain(s.ctx, st)
		if err != nil {
			s.log.Warn("integrity check aborted",
				zap.Uint64("structure", uint64(st.ID)),
				zap.Uint32("block", uint32(res.Destroyed)),
				zap.Error(err),
			)
		}
		if ran {
			s.checks++
		}
		if ran && res.Verdict == integrity.VerdictSplit {
			s.splits++
			event.Emit(s.bus, splitEvent(tick, st, res))
		}
		if st.BlockCount() == 0 && ran {
			s.world.MarkDestroyed(st.ID)
			event.Emit(s.bus, event.StructureDestroyed{Tick: tick, Structure: st.ID, Name: st.Name})
			s.log.Info("structure destroyed",
				zap.Uint64("structure", uint64(st.ID)),
				zap.String("name", st.Name),
			)
		}
	})
}

func splitEvent(tick uint64, parent *world.Structure, res integrity.Result) event.StructureSplit {
	ev := event.StructureSplit{
		Tick:       tick,
		Parent:     parent.ID,
		ParentName: parent.Name,
		Destroyed:  res.Destroyed,
		CoreSize:   len(res.Partitions[res.Core]),
		Fragments:  make([]event.FragmentInfo, len(res.Fragments)),
	}
	for i, f := range res.Fragments {
		ids := make([]world.BlockID, 0, f.BlockCount())
		for _, b := range f.Blocks() {
			ids = append(ids, b.ID)
		}
		ev.Fragments[i] = event.FragmentInfo{
			ID:              f.ID,
			Blocks:          ids,
			Velocity:        f.Velocity,
			AngularVelocity: f.AngularVelocity,
			Mass:            f.Mass(),
			HP:              f.HP(),
			Dimensions:      f.Dimensions(),
		}
	}
	return ev
}
