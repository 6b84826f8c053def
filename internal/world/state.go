package world

import (
	"sync/atomic"

	"github.com/voidbreak/hull/internal/core/ecs"
)

// blockIDCounter hands out block IDs process-wide so IDs stay unique across
// structures, splits and journal records.
var blockIDCounter atomic.Uint32

// NextBlockID returns a fresh, never-reused block ID.
func NextBlockID() BlockID {
	return BlockID(blockIDCounter.Add(1))
}

// State holds every live structure. Accessed only from the game loop
// goroutine, so no locks are needed.
type State struct {
	ecs          *ecs.World
	structures   *ecs.PtrComponentStore[Structure]
	blocks       map[BlockID]*Block
	defaultLayer string
	spawned      int
}

// NewState creates an empty world. Fragments split off a structure are moved
// to defaultLayer so they collide with their former parent.
func NewState(defaultLayer string) *State {
	w := ecs.NewWorld()
	structures := ecs.NewPtrComponentStore[Structure]()
	w.Registry().Register(structures)
	return &State{
		ecs:          w,
		structures:   structures,
		blocks:       make(map[BlockID]*Block, 256),
		defaultLayer: defaultLayer,
	}
}

func (s *State) DefaultLayer() string { return s.defaultLayer }

// NewBlock creates an unowned block with a fresh ID and indexes it.
func (s *State) NewBlock(spec BlockSpec) *Block {
	b := newBlock(NextBlockID(), spec)
	s.blocks[b.ID] = b
	return b
}

// Block returns any block created through this state, including removed
// ones. Its current owner is b.Owner().
func (s *State) Block(id BlockID) (*Block, bool) {
	b, ok := s.blocks[id]
	return b, ok
}

// SpawnStructure registers an empty structure with the given pose and
// velocities. Callers assemble blocks into it afterwards.
func (s *State) SpawnStructure(name, layer string, k Kinematics) *Structure {
	st := &Structure{
		ID:         s.ecs.CreateEntity(),
		Name:       name,
		Layer:      layer,
		Kinematics: k,
	}
	s.structures.Set(st.ID, st)
	s.spawned++
	return st
}

// Structure returns a registered structure.
func (s *State) Structure(id ecs.EntityID) (*Structure, bool) {
	return s.structures.Get(id)
}

// AllStructures visits every structure in ascending ID order. Structures
// spawned during the walk are not visited.
func (s *State) AllStructures(fn func(*Structure)) {
	s.structures.Each(func(_ ecs.EntityID, st *Structure) { fn(st) })
}

// StructureCount returns the number of registered structures.
func (s *State) StructureCount() int { return s.structures.Len() }

// SpawnedTotal returns how many structures were ever spawned.
func (s *State) SpawnedTotal() int { return s.spawned }

// MarkDestroyed schedules a structure for removal at the end of the tick.
func (s *State) MarkDestroyed(id ecs.EntityID) {
	s.ecs.MarkForDestruction(id)
}

// FlushDestroyed removes every structure scheduled by MarkDestroyed and
// returns their IDs.
func (s *State) FlushDestroyed() []ecs.EntityID {
	return s.ecs.FlushDestroyQueue()
}
