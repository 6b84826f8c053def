package event

import (
	"github.com/voidbreak/hull/internal/core/ecs"
	"github.com/voidbreak/hull/internal/mathutil"
	"github.com/voidbreak/hull/internal/world"
)

// Impact is a collision reported against one block by the physics layer.
// The block is resolved at delivery time, so it may have changed owner since.
type Impact struct {
	Block            world.BlockID
	RelativeVelocity mathutil.Vec2
	Mass             float64 // mass of the colliding body
}

// Detonation destroys a block outright, whatever its HP.
type Detonation struct {
	Block world.BlockID
}

type BlockDamaged struct {
	Tick      uint64
	Structure ecs.EntityID
	Block     world.BlockID
	Damage    float64
	HP        float64
}

// BlockDestroyed fires once per block, on the hit that takes it to zero HP.
type BlockDestroyed struct {
	Tick      uint64
	Structure ecs.EntityID
	Block     world.BlockID
	Kind      string
}

// FragmentInfo describes one structure spawned by a split.
type FragmentInfo struct {
	ID              ecs.EntityID
	Blocks          []world.BlockID
	Velocity        mathutil.Vec2
	AngularVelocity float64
	Mass            float64
	HP              float64
	Dimensions      world.Dimensions
}

// StructureSplit fires when removing a block divides a structure. The parent
// keeps the core partition; every other partition became a fragment.
type StructureSplit struct {
	Tick       uint64
	Parent     ecs.EntityID
	ParentName string
	Destroyed  world.BlockID
	CoreSize   int
	Fragments  []FragmentInfo
}

// StructureDestroyed fires when a structure's last block is removed.
type StructureDestroyed struct {
	Tick      uint64
	Structure ecs.EntityID
	Name      string
}
