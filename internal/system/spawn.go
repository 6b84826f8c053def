package system

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/voidbreak/hull/internal/config"
	"github.com/voidbreak/hull/internal/data"
	"github.com/voidbreak/hull/internal/integrity"
	"github.com/voidbreak/hull/internal/mathutil"
	"github.com/voidbreak/hull/internal/world"
)

// Target names a block by the spawn that created it and the cell it had
// there. Targets stay valid after the block moves to a fragment.
type Target struct {
	Spawn string
	Cell  world.Cell
}

// Fleet is what SpawnScenario put into the world.
type Fleet struct {
	Structures map[string]*world.Structure
	Blocks     map[Target]world.BlockID
}

// SpawnScenario builds every scenario spawn from its blueprint and assembles
// it into the world on the ship layer.
func SpawnScenario(ws *world.State, builder *integrity.Builder, ships *data.ShipTable, sc *data.Scenario, cfg *config.Config, log *zap.Logger) (*Fleet, error) {
	fleet := &Fleet{
		Structures: make(map[string]*world.Structure, len(sc.Spawns)),
		Blocks:     make(map[Target]world.BlockID),
	}
	for _, sp := range sc.Spawns {
		specs, err := ships.BlockSpecs(sp.Ship, cfg.Damage.DamagedThreshold, cfg.Topology.ShipLayer)
		if err != nil {
			return nil, fmt.Errorf("spawn %s: %w", sp.Name, err)
		}
		blocks := make([]*world.Block, len(specs))
		for i, spec := range specs {
			b := ws.NewBlock(spec)
			blocks[i] = b
			fleet.Blocks[Target{Spawn: sp.Name, Cell: b.Cell}] = b.ID
		}

		st := ws.SpawnStructure(sp.Name, cfg.Topology.ShipLayer, world.Kinematics{
			Position:        mathutil.Vec2(sp.Position),
			Rotation:        sp.Rotation,
			Velocity:        mathutil.Vec2(sp.Velocity),
			AngularVelocity: sp.AngularVelocity,
		})
		builder.Assemble(st, blocks)
		fleet.Structures[sp.Name] = st

		log.Info("ship spawned",
			zap.String("name", sp.Name),
			zap.String("blueprint", sp.Ship),
			zap.Uint64("structure", uint64(st.ID)),
			zap.Int("blocks", st.BlockCount()),
			zap.Int("weapons", len(st.Weapons())),
			zap.Float64("mass", st.Mass()),
			zap.Float64("hp", st.HP()),
		)
	}
	return fleet, nil
}
