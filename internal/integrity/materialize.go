package integrity

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/voidbreak/hull/internal/world"
)

// Spawner registers new structures with the simulation.
type Spawner interface {
	SpawnStructure(name, layer string, k world.Kinematics) *world.Structure
}

// SelectCore returns the index of the largest partition. Ties go to the first
// one listed. It returns -1 for an empty list.
func SelectCore(sizes []int) int {
	core := -1
	for i, n := range sizes {
		if core < 0 || n > sizes[core] {
			core = i
		}
	}
	return core
}

// materialize keeps the core partition in parent and moves every other
// partition into a new structure that inherits the parent's pose and
// velocities. It returns the core index and the spawned fragments.
func (e *Engine) materialize(parent *world.Structure, partitions [][]*world.Block) (int, []*world.Structure) {
	sizes := make([]int, len(partitions))
	for i, p := range partitions {
		sizes[i] = len(p)
	}
	core := SelectCore(sizes)

	var frags []*world.Structure
	for i, part := range partitions {
		if i == core {
			continue
		}
		frag := e.spawner.SpawnStructure(
			fmt.Sprintf("%s/frag%d", parent.Name, len(frags)+1),
			e.defaultLayer,
			parent.Kinematics,
		)

		moved := make(map[world.BlockID]struct{}, len(part))
		for _, b := range part {
			parent.Detach(b)
			parent.Topology().Remove(b.ID)
			b.Layer = e.defaultLayer
			moved[b.ID] = struct{}{}
		}
		e.builder.Assemble(frag, part)
		parent.TransferPending(frag, moved)
		frags = append(frags, frag)

		e.log.Debug("fragment spawned",
			zap.Uint64("parent", uint64(parent.ID)),
			zap.Uint64("fragment", uint64(frag.ID)),
			zap.Int("blocks", len(part)),
			zap.Float64("mass", frag.Mass()),
		)
	}

	parent.Recalculate()
	return core, frags
}
