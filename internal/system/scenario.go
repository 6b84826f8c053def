package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/voidbreak/hull/internal/core/event"
	coresys "github.com/voidbreak/hull/internal/core/system"
	"github.com/voidbreak/hull/internal/data"
	"github.com/voidbreak/hull/internal/mathutil"
	"github.com/voidbreak/hull/internal/world"
)

// ScenarioSystem feeds scripted impacts into the event bus when their tick
// comes up. It stands in for the physics layer's collision reports.
// Phase 0 (Input).
type ScenarioSystem struct {
	bus     *event.Bus
	clock   Clock
	fleet   *Fleet
	impacts []data.ScriptedImpact
	next    int
	log     *zap.Logger
}

func NewScenarioSystem(bus *event.Bus, clock Clock, fleet *Fleet, sc *data.Scenario, log *zap.Logger) *ScenarioSystem {
	return &ScenarioSystem{
		bus:     bus,
		clock:   clock,
		fleet:   fleet,
		impacts: sc.Impacts,
		log:     log,
	}
}

func (s *ScenarioSystem) Phase() coresys.Phase { return coresys.PhaseInput }

// Done reports whether every scripted impact has been emitted.
func (s *ScenarioSystem) Done() bool { return s.next >= len(s.impacts) }

func (s *ScenarioSystem) Update(_ time.Duration) {
	now := s.clock()
	for ; s.next < len(s.impacts) && s.impacts[s.next].Tick <= now; s.next++ {
		im := s.impacts[s.next]
		target := Target{Spawn: im.Target, Cell: world.Cell{X: im.Cell[0], Y: im.Cell[1]}}
		id, ok := s.fleet.Blocks[target]
		if !ok {
			s.log.Warn("scripted impact has no block at target cell",
				zap.String("target", im.Target),
				zap.Int("x", im.Cell[0]),
				zap.Int("y", im.Cell[1]),
			)
			continue
		}
		if im.Destroy {
			event.Emit(s.bus, event.Detonation{Block: id})
			continue
		}
		event.Emit(s.bus, event.Impact{
			Block:            id,
			RelativeVelocity: mathutil.Vec2(im.RelativeVelocity),
			Mass:             im.Mass,
		})
	}
}
