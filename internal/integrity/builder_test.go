package integrity

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/voidbreak/hull/internal/config"
	"github.com/voidbreak/hull/internal/world"
)

func newBlocks(t *testing.T, cells ...world.Cell) []*world.Block {
	t.Helper()
	s := world.NewState("default")
	blocks := make([]*world.Block, len(cells))
	for i, c := range cells {
		blocks[i] = s.NewBlock(world.BlockSpec{
			Kind: "hull", Cell: c, HP: 10, Mass: 1, DamagedThreshold: 0.5, Layer: "ship",
		})
	}
	return blocks
}

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	return NewBuilder(NewResolvProberFactory(config.Defaults().Topology), zaptest.NewLogger(t))
}

func neighbourIDs(t *testing.T, topo *world.Topology, b *world.Block) [world.MaxNeighbours]world.BlockID {
	t.Helper()
	ids, ok := topo.NeighbourIDs(b.ID)
	if !ok {
		t.Fatalf("block %d not in topology", b.ID)
	}
	return ids
}

func TestBuild_Line(t *testing.T) {
	blocks := newBlocks(t, world.Cell{X: 0}, world.Cell{X: 1}, world.Cell{X: 2})
	topo := newTestBuilder(t).Build(blocks)

	got := neighbourIDs(t, topo, blocks[1])
	want := [world.MaxNeighbours]world.BlockID{world.Left: blocks[0].ID, world.Right: blocks[2].ID}
	if got != want {
		t.Errorf("middle neighbours = %v, want %v", got, want)
	}
	if ends := neighbourIDs(t, topo, blocks[0]); ends[world.Right] != blocks[1].ID || ends[world.Left] != 0 {
		t.Errorf("left end neighbours = %v", ends)
	}
}

func TestBuild_IgnoresGaps(t *testing.T) {
	blocks := newBlocks(t, world.Cell{X: 0}, world.Cell{X: 2}, world.Cell{X: 1, Y: 1})
	topo := newTestBuilder(t).Build(blocks)
	for _, b := range blocks {
		i, _ := topo.Lookup(b.ID)
		if n := topo.ActiveNeighbours(i); len(n) != 0 {
			t.Errorf("block at %v linked to %d blocks across a gap or corner", b.Cell, len(n))
		}
	}
}

func TestBuild_SymmetricGrid(t *testing.T) {
	var cells []world.Cell
	for x := -1; x <= 1; x++ {
		for y := -1; y <= 1; y++ {
			cells = append(cells, world.Cell{X: x, Y: y})
		}
	}
	blocks := newBlocks(t, cells...)
	topo := newTestBuilder(t).Build(blocks)

	for _, b := range blocks {
		i, _ := topo.Lookup(b.ID)
		for d, j := range topo.Node(i).Neighbours {
			if j == world.Ghost {
				continue
			}
			back := topo.Node(j).Neighbours[world.Direction(d).Opposite()]
			if back != i {
				t.Errorf("block at %v links %v but the reverse slot is %d", b.Cell, world.Direction(d), back)
			}
		}
	}
	centre := neighbourIDs(t, topo, blocks[4])
	for d, id := range centre {
		if id == 0 {
			t.Errorf("centre missing %v neighbour", world.Direction(d))
		}
	}
}

func TestBuild_Idempotent(t *testing.T) {
	blocks := newBlocks(t,
		world.Cell{X: 0, Y: 0}, world.Cell{X: 1, Y: 0}, world.Cell{X: 1, Y: 1},
		world.Cell{X: -1, Y: 0}, world.Cell{X: 0, Y: -1},
	)
	b := newTestBuilder(t)
	if !b.Build(blocks).Equal(b.Build(blocks)) {
		t.Error("rebuilding an unchanged block set changed the graph")
	}
}

func TestBuild_TriangleProbesTwoSides(t *testing.T) {
	tests := []struct {
		name    string
		quarter int
		linked  []world.Direction
	}{
		{"legs up and right", 0, []world.Direction{world.Up, world.Right}},
		{"quarter turn: legs left and up", 1, []world.Direction{world.Left, world.Up}},
		{"half turn: legs down and left", 2, []world.Direction{world.Down, world.Left}},
		{"three quarters: legs right and down", 3, []world.Direction{world.Right, world.Down}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := world.NewState("default")
			tri := s.NewBlock(world.BlockSpec{Shape: world.ShapeTriangle, Quarter: tc.quarter, HP: 10, Mass: 1})
			around := map[world.Direction]*world.Block{}
			blocks := []*world.Block{tri}
			for d := world.Direction(0); d < world.MaxNeighbours; d++ {
				v := d.Vec()
				b := s.NewBlock(world.BlockSpec{Cell: world.Cell{X: int(v[0]), Y: int(v[1])}, HP: 10, Mass: 1})
				around[d] = b
				blocks = append(blocks, b)
			}

			topo := newTestBuilder(t).Build(blocks)
			got := neighbourIDs(t, topo, tri)
			var want [world.MaxNeighbours]world.BlockID
			for _, d := range tc.linked {
				want[d] = around[d].ID
			}
			if got != want {
				t.Errorf("triangle neighbours = %v, want %v", got, want)
			}
			// squares facing the hypotenuse do not see the triangle either
			for d, b := range around {
				ids := neighbourIDs(t, topo, b)
				if (ids[d.Opposite()] == tri.ID) != (want[d] != 0) {
					t.Errorf("square on %v side: link to triangle = %v", d, ids[d.Opposite()] == tri.ID)
				}
			}
		})
	}
}

type fixedProber map[world.BlockID][]Hit

func (p fixedProber) Probe(b *world.Block) []Hit { return p[b.ID] }

func TestBuild_TruncatesExcessHits(t *testing.T) {
	blocks := newBlocks(t,
		world.Cell{X: 0}, world.Cell{X: 1}, world.Cell{X: -1},
		world.Cell{Y: 1}, world.Cell{Y: -1}, world.Cell{X: 5},
	)
	hits := fixedProber{blocks[0].ID: {
		{world.Right, blocks[1]},
		{world.Left, blocks[2]},
		{world.Up, blocks[3]},
		{world.Down, blocks[4]},
		{world.Right, blocks[5]},
	}}
	core, logs := observer.New(zapcore.WarnLevel)
	b := NewBuilder(func([]*world.Block) Prober { return hits }, zap.New(core))

	topo := b.Build(blocks)
	if n := logs.FilterMessage("too many probe hits, keeping the first four").Len(); n != 1 {
		t.Fatalf("warnings = %d, want 1", n)
	}
	got := neighbourIDs(t, topo, blocks[0])
	if got[world.Right] != blocks[1].ID {
		t.Errorf("fifth hit replaced the first: right = %d", got[world.Right])
	}
	if i, _ := topo.Lookup(blocks[5].ID); len(topo.ActiveNeighbours(i)) != 0 {
		t.Error("truncated hit still linked")
	}
}

func TestAssemble_SetsTotalsAndGraph(t *testing.T) {
	s := world.NewState("default")
	st := s.SpawnStructure("probe", "ship", world.Kinematics{})
	blocks := newBlocks(t, world.Cell{X: 0}, world.Cell{X: 1})
	newTestBuilder(t).Assemble(st, blocks)

	if st.HP() != 20 || st.MaxHP() != 20 || st.Mass() != 2 {
		t.Errorf("hp=%v max=%v mass=%v", st.HP(), st.MaxHP(), st.Mass())
	}
	if st.Topology() == nil || st.Topology().Len() != 2 {
		t.Fatal("topology not built")
	}
	if b, ok := st.Block(blocks[1].ID); !ok || b.Owner() != st {
		t.Error("block not resolvable through its structure")
	}
}
