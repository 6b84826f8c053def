package world

import (
	"math"
	"slices"

	"github.com/voidbreak/hull/internal/core/ecs"
	"github.com/voidbreak/hull/internal/mathutil"
)

// Kinematics is the rigid-body state the physics layer integrates.
type Kinematics struct {
	Position        mathutil.Vec2
	Rotation        float64 // radians, counter-clockwise
	Velocity        mathutil.Vec2
	AngularVelocity float64 // radians per second
}

// Dimensions is the extent of a structure's blocks from its origin, in grid
// cells: the highest and lowest row, the rightmost and leftmost column.
type Dimensions struct {
	Up, Down, Right, Left int
}

// Structure is one physically simulated assembly of blocks: a ship, or a
// fragment split off one. Accessed only from the simulation goroutine.
type Structure struct {
	ID    ecs.EntityID
	Name  string
	Layer string
	Kinematics

	blocks  []*Block
	weapons []*Weapon
	mass    float64
	hp      float64
	maxHP   float64
	topo    *Topology

	pending  []BlockID
	checking bool
}

func (s *Structure) Mass() float64           { return s.mass }
func (s *Structure) HP() float64             { return s.hp }
func (s *Structure) MaxHP() float64          { return s.maxHP }
func (s *Structure) BlockCount() int         { return len(s.blocks) }
func (s *Structure) Topology() *Topology     { return s.topo }
func (s *Structure) SetTopology(t *Topology) { s.topo = t }
func (s *Structure) PendingLen() int         { return len(s.pending) }
func (s *Structure) Checking() bool          { return s.checking }

// Blocks returns the owned blocks in assembly order. The slice is shared;
// callers must not modify it.
func (s *Structure) Blocks() []*Block { return s.blocks }

// Weapons returns the weapons carried by owned blocks, in block order.
func (s *Structure) Weapons() []*Weapon { return s.weapons }

// Block returns an owned block that is still part of the topology.
func (s *Structure) Block(id BlockID) (*Block, bool) {
	if s.topo == nil {
		return nil, false
	}
	i, ok := s.topo.Lookup(id)
	if !ok {
		return nil, false
	}
	return s.topo.Node(i).Block, true
}

// BlockAt returns the owned block placed at cell c.
func (s *Structure) BlockAt(c Cell) (*Block, bool) {
	for _, b := range s.blocks {
		if b.Cell == c {
			return b, true
		}
	}
	return nil, false
}

// Adopt takes ownership of blocks and derives mass, HP, max HP and the weapon
// list from them. Max HP is fixed here and never changes afterwards.
func (s *Structure) Adopt(blocks []*Block) {
	s.blocks = make([]*Block, 0, len(blocks))
	for _, b := range blocks {
		b.owner = s
		s.blocks = append(s.blocks, b)
	}
	s.Recalculate()
	s.maxHP = s.hp
}

// Recalculate re-derives mass, HP and weapons from the owned blocks, keeping
// max HP intact.
func (s *Structure) Recalculate() {
	s.mass, s.hp = 0, 0
	s.weapons = nil
	for _, b := range s.blocks {
		s.mass += b.mass
		s.hp += b.contribution()
		if b.Weapon != nil {
			s.weapons = append(s.weapons, b.Weapon)
		}
	}
}

// Detach removes b from the structure's collections and HP total. Only the
// block's remaining HP is subtracted: damage already came off hit by hit, so
// taking max HP again would count it twice. The block keeps its topology
// node; callers remove that separately.
func (s *Structure) Detach(b *Block) bool {
	i := slices.Index(s.blocks, b)
	if i < 0 {
		return false
	}
	s.blocks = slices.Delete(s.blocks, i, i+1)
	if b.Weapon != nil {
		if w := slices.Index(s.weapons, b.Weapon); w >= 0 {
			s.weapons = slices.Delete(s.weapons, w, w+1)
		}
	}
	s.hp -= b.contribution()
	s.mass -= b.mass
	if s.hp < 0 {
		s.hp = 0
	}
	if s.mass < 0 {
		s.mass = 0
	}
	if b.owner == s {
		b.owner = nil
	}
	return true
}

// EnqueueDestroyed appends id to the destruction backlog.
func (s *Structure) EnqueueDestroyed(id BlockID) {
	s.pending = append(s.pending, id)
}

// PopPending removes and returns the oldest backlog entry.
func (s *Structure) PopPending() (BlockID, bool) {
	if len(s.pending) == 0 {
		return 0, false
	}
	id := s.pending[0]
	s.pending = slices.Delete(s.pending, 0, 1)
	return id, true
}

// Pending returns a copy of the backlog, oldest first.
func (s *Structure) Pending() []BlockID { return slices.Clone(s.pending) }

// TransferPending moves backlog entries for the given blocks to dst,
// preserving their relative order.
func (s *Structure) TransferPending(dst *Structure, moved map[BlockID]struct{}) {
	kept := s.pending[:0]
	for _, id := range s.pending {
		if _, ok := moved[id]; ok {
			dst.pending = append(dst.pending, id)
			continue
		}
		kept = append(kept, id)
	}
	s.pending = kept
}

// BeginCheck claims the structure's single integrity-check slot. It returns
// false if a check is already in flight.
func (s *Structure) BeginCheck() bool {
	if s.checking {
		return false
	}
	s.checking = true
	return true
}

// EndCheck releases the slot claimed by BeginCheck.
func (s *Structure) EndCheck() { s.checking = false }

// Dimensions measures the grid extent of the owned blocks.
func (s *Structure) Dimensions() Dimensions {
	if len(s.blocks) == 0 {
		return Dimensions{}
	}
	d := Dimensions{Up: math.MinInt, Down: math.MaxInt, Right: math.MinInt, Left: math.MaxInt}
	for _, b := range s.blocks {
		d.Up = max(d.Up, b.Cell.Y)
		d.Down = min(d.Down, b.Cell.Y)
		d.Right = max(d.Right, b.Cell.X)
		d.Left = min(d.Left, b.Cell.X)
	}
	return d
}
