package world

import "github.com/voidbreak/hull/internal/mathutil"

// Direction indexes a node's neighbour slots, in structure-local terms.
type Direction uint8

const (
	Up Direction = iota
	Down
	Right
	Left
)

// MaxNeighbours is the slot count of every node: one per side of a 2D tile.
const MaxNeighbours = 4

var directionVecs = [MaxNeighbours]mathutil.Vec2{
	Up:    {0, 1},
	Down:  {0, -1},
	Right: {1, 0},
	Left:  {-1, 0},
}

func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Right:
		return Left
	}
	return Right
}

// Vec returns the unit vector for d in the structure's local frame.
func (d Direction) Vec() mathutil.Vec2 { return directionVecs[d] }

func (d Direction) String() string {
	return [...]string{"up", "down", "right", "left"}[d]
}

// DirectionOf maps a cardinal unit vector back to its Direction.
func DirectionOf(v mathutil.Vec2) (Direction, bool) {
	for d, dv := range directionVecs {
		if v.ApproxEqual(dv, 1e-9) {
			return Direction(d), true
		}
	}
	return 0, false
}

// NodeIndex is a slot in a Topology's node arena.
type NodeIndex int32

// Ghost is the arena slot of the shared inactive placeholder. Empty neighbour
// slots point here, so traversal never has to handle a missing entry.
const Ghost NodeIndex = 0

// Node is the adjacency record of one block. Neighbour slots hold arena
// indices, never pointers, so a rebuilt topology cannot leave dangling links.
type Node struct {
	Block      *Block
	Neighbours [MaxNeighbours]NodeIndex
	Active     bool
}

// Topology is a structure's block adjacency graph. It is built from scratch
// whenever a structure's block set is finalized and afterwards only shrinks.
type Topology struct {
	nodes  []Node
	index  map[BlockID]NodeIndex
	active int
}

// NewTopology creates one unlinked node per block, in block order.
func NewTopology(blocks []*Block) *Topology {
	t := &Topology{
		nodes: make([]Node, 1, len(blocks)+1),
		index: make(map[BlockID]NodeIndex, len(blocks)),
	}
	for _, b := range blocks {
		t.index[b.ID] = NodeIndex(len(t.nodes))
		t.nodes = append(t.nodes, Node{Block: b, Active: true})
	}
	t.active = len(blocks)
	return t
}

// Lookup returns the node index for a block still present in the graph.
func (t *Topology) Lookup(id BlockID) (NodeIndex, bool) {
	i, ok := t.index[id]
	return i, ok
}

// Node returns the node at i. Out-of-range indices resolve to the ghost.
func (t *Topology) Node(i NodeIndex) *Node {
	if i <= 0 || int(i) >= len(t.nodes) {
		return &t.nodes[Ghost]
	}
	return &t.nodes[i]
}

// Len returns the number of active nodes.
func (t *Topology) Len() int { return t.active }

// Link sets from's slot d to point at to.
func (t *Topology) Link(from NodeIndex, d Direction, to NodeIndex) {
	t.Node(from).Neighbours[d] = to
}

// Symmetrize fills in the reverse of every one-way link. It returns how many
// reverse slots were already taken by a different node and left untouched.
func (t *Topology) Symmetrize() (conflicts int) {
	for i := 1; i < len(t.nodes); i++ {
		n := &t.nodes[i]
		for d, j := range n.Neighbours {
			if j == Ghost {
				continue
			}
			back := Direction(d).Opposite()
			other := &t.nodes[j]
			switch other.Neighbours[back] {
			case NodeIndex(i):
			case Ghost:
				other.Neighbours[back] = NodeIndex(i)
			default:
				conflicts++
			}
		}
	}
	return conflicts
}

// ActiveNeighbours returns the active nodes linked from i, in slot order.
func (t *Topology) ActiveNeighbours(i NodeIndex) []NodeIndex {
	n := t.Node(i)
	out := make([]NodeIndex, 0, MaxNeighbours)
	for _, j := range n.Neighbours {
		if t.Node(j).Active {
			out = append(out, j)
		}
	}
	return out
}

// Remove deactivates the node for id, clears it from every former neighbour
// and drops it from the lookup. It returns the neighbours that were active at
// the time of removal. ok is false if id is not in the graph.
func (t *Topology) Remove(id BlockID) (neighbours []NodeIndex, ok bool) {
	i, ok := t.index[id]
	if !ok {
		return nil, false
	}
	n := &t.nodes[i]
	n.Active = false
	t.active--

	for d, j := range n.Neighbours {
		if j == Ghost {
			continue
		}
		other := &t.nodes[j]
		if other.Active {
			neighbours = append(neighbours, j)
		}
		for s, k := range other.Neighbours {
			if k == i {
				other.Neighbours[s] = Ghost
			}
		}
		n.Neighbours[d] = Ghost
	}
	delete(t.index, id)
	return neighbours, true
}

// NeighbourIDs returns the block IDs in each slot of id's node (0 for a ghost).
func (t *Topology) NeighbourIDs(id BlockID) (out [MaxNeighbours]BlockID, ok bool) {
	i, ok := t.index[id]
	if !ok {
		return out, false
	}
	for d, j := range t.nodes[i].Neighbours {
		if nb := t.Node(j); nb.Active {
			out[d] = nb.Block.ID
		}
	}
	return out, true
}

// Equal reports whether two graphs hold the same blocks with the same links.
func (t *Topology) Equal(o *Topology) bool {
	if t.active != o.active || len(t.index) != len(o.index) {
		return false
	}
	for id := range t.index {
		a, _ := t.NeighbourIDs(id)
		b, ok := o.NeighbourIDs(id)
		if !ok || a != b {
			return false
		}
	}
	return true
}
