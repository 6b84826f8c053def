package integrity

import (
	"go.uber.org/zap"

	"github.com/voidbreak/hull/internal/world"
)

// Builder derives a structure's adjacency graph from its blocks.
type Builder struct {
	newProber ProberFactory
	log       *zap.Logger
}

func NewBuilder(newProber ProberFactory, log *zap.Logger) *Builder {
	return &Builder{newProber: newProber, log: log}
}

// Build probes every block and links it to what it touches. The result only
// depends on the block set, so building twice gives equal graphs.
func (b *Builder) Build(blocks []*world.Block) *world.Topology {
	topo := world.NewTopology(blocks)
	prober := b.newProber(blocks)

	for _, blk := range blocks {
		from, _ := topo.Lookup(blk.ID)
		hits := prober.Probe(blk)
		if len(hits) > world.MaxNeighbours {
			b.log.Warn("too many probe hits, keeping the first four",
				zap.Uint32("block", uint32(blk.ID)),
				zap.Int("hits", len(hits)),
			)
			hits = hits[:world.MaxNeighbours]
		}
		for _, h := range hits {
			to, ok := topo.Lookup(h.Block.ID)
			if !ok {
				continue
			}
			if cur := topo.Node(from).Neighbours[h.Dir]; cur != world.Ghost && cur != to {
				b.log.Debug("probe side already linked",
					zap.Uint32("block", uint32(blk.ID)),
					zap.Stringer("side", h.Dir),
				)
				continue
			}
			topo.Link(from, h.Dir, to)
		}
	}

	if n := topo.Symmetrize(); n > 0 {
		b.log.Warn("asymmetric neighbour links left one-way",
			zap.Int("blocks", len(blocks)),
			zap.Int("conflicts", n),
		)
	}
	return topo
}

// Assemble gives s ownership of blocks and rebuilds its graph from scratch.
func (b *Builder) Assemble(s *world.Structure, blocks []*world.Block) {
	s.Adopt(blocks)
	s.SetTopology(b.Build(blocks))
	b.log.Debug("structure assembled",
		zap.Uint64("structure", uint64(s.ID)),
		zap.Int("blocks", len(blocks)),
		zap.Float64("mass", s.Mass()),
		zap.Float64("hp", s.HP()),
	)
}
