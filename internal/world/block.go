package world

import (
	"math"

	"github.com/voidbreak/hull/internal/mathutil"
)

// BlockID is a block's stable identity, assigned once at creation and never
// reused. BlockID 0 means "no block".
type BlockID uint32

// Shape selects the block's collision outline and which edges it probes.
type Shape uint8

const (
	ShapeSquare Shape = iota
	// ShapeTriangle is a right triangle whose legs run along the cell's top and
	// right edges (before the block's quarter turns are applied). The
	// hypotenuse never links to a neighbour.
	ShapeTriangle
)

func (s Shape) String() string {
	if s == ShapeTriangle {
		return "triangle"
	}
	return "square"
}

// Cell is a position on a structure's block grid.
type Cell struct{ X, Y int }

// Weapon is an opaque attachment carried by a block. The integrity engine only
// tracks which block carries it; firing behaviour lives elsewhere.
type Weapon struct {
	Name string
	Kind string
}

// BlockSpec is everything needed to create a block. Blueprints produce one
// per placement.
type BlockSpec struct {
	Kind               string
	Shape              Shape
	Cell               Cell
	Quarter            int // counter-clockwise quarter turns relative to the structure
	HP                 float64
	Mass               float64
	Integrity          []mathutil.Vec2 // local-frame resistance vectors
	ResistPositiveOnly bool
	Weapon             *Weapon
	DamagedThreshold   float64 // fraction of max HP at or below which the block is flagged damaged
	Layer              string
}

// Block is the smallest structural unit of a ship. A block is owned by exactly
// one Structure at any time; the owner keeps its aggregate HP in step with
// every change made here.
type Block struct {
	ID      BlockID
	Kind    string
	Shape   Shape
	Cell    Cell // creation-time grid position; never changes
	Quarter int
	Layer   string
	Weapon  *Weapon

	hp                 float64
	maxHP              float64
	mass               float64
	integrity          []mathutil.Vec2
	resistPositiveOnly bool
	damagedAt          float64

	owner     *Structure
	signalled bool // destruction already reported to the owner
	damaged   bool
	removed   bool // detached from the simulation by an integrity check
}

func newBlock(id BlockID, spec BlockSpec) *Block {
	vecs := make([]mathutil.Vec2, len(spec.Integrity))
	copy(vecs, spec.Integrity)
	return &Block{
		ID:                 id,
		Kind:               spec.Kind,
		Shape:              spec.Shape,
		Cell:               spec.Cell,
		Quarter:            spec.Quarter,
		Layer:              spec.Layer,
		Weapon:             spec.Weapon,
		hp:                 spec.HP,
		maxHP:              spec.HP,
		mass:               spec.Mass,
		integrity:          vecs,
		resistPositiveOnly: spec.ResistPositiveOnly,
		damagedAt:          spec.DamagedThreshold,
	}
}

func (b *Block) HP() float64              { return b.hp }
func (b *Block) MaxHP() float64           { return b.maxHP }
func (b *Block) Mass() float64            { return b.mass }
func (b *Block) Owner() *Structure        { return b.owner }
func (b *Block) Damaged() bool            { return b.damaged }
func (b *Block) Destroyed() bool          { return b.signalled }
func (b *Block) Removed() bool            { return b.removed }
func (b *Block) HasWeapon() bool          { return b.Weapon != nil }
func (b *Block) ResistPositiveOnly() bool { return b.resistPositiveOnly }

// IntegrityVectors returns a copy of the local-frame resistance vectors.
func (b *Block) IntegrityVectors() []mathutil.Vec2 {
	out := make([]mathutil.Vec2, len(b.integrity))
	copy(out, b.integrity)
	return out
}

// contribution is what this block adds to its owner's HP total.
func (b *Block) contribution() float64 {
	return math.Max(b.hp, 0)
}

// Orientation is the block's current global rotation in radians.
func (b *Block) Orientation() float64 {
	rot := mathutil.QuarterRadians(b.Quarter)
	if b.owner != nil {
		rot += b.owner.Rotation
	}
	return rot
}

// ImpactDamage converts collision momentum (relative velocity times the
// colliding mass) into scalar damage using the block's anisotropic
// resistance. It does not mutate the block.
func (b *Block) ImpactDamage(momentum mathutil.Vec2) float64 {
	m := momentum.Normalize()
	orient := b.Orientation()

	multiplier := 1.0
	var closest mathutil.Vec2
	for _, local := range b.integrity {
		v := local.Rotate(orient)
		vn := v.Normalize()

		cur := 1.0
		if b.resistPositiveOnly {
			// Only an impact driving against the vector is resisted.
			if v.Dot(m) < 0 {
				cur = math.Abs(m.Cross(vn))
			}
		} else {
			cur = math.Abs(m.Mul(m).Cross(vn.Mul(vn)))
		}

		if cur < multiplier {
			multiplier = cur
			closest = v
		}
	}

	multiplier += closest.Len()
	if multiplier > 1 {
		multiplier = 1
	}
	return math.Abs(momentum.Len() * multiplier)
}

// DamageResult reports what a single hit did to a block.
type DamageResult struct {
	Damage       float64
	Destroyed    bool // hit points crossed zero on this hit
	NewlyDamaged bool // crossed the damaged threshold on this hit
}

// ApplyDamage subtracts amount from the block's hit points. Negative or NaN
// amounts are ignored so hit points never increase. The first time hit points
// reach zero the block enqueues itself on its owner's destruction backlog;
// later hits on a dead block only lower its (already non-positive) HP.
func (b *Block) ApplyDamage(amount float64) DamageResult {
	if !(amount > 0) || b.removed {
		return DamageResult{}
	}

	before := b.contribution()
	b.hp -= amount
	if b.owner != nil {
		b.owner.hp -= before - b.contribution()
	}

	res := DamageResult{Damage: amount}
	if b.hp <= 0 {
		if !b.signalled {
			b.signalled = true
			res.Destroyed = true
			if b.owner != nil {
				b.owner.EnqueueDestroyed(b.ID)
			}
		}
		return res
	}
	if !b.damaged && b.hp <= b.maxHP*b.damagedAt {
		b.damaged = true
		res.NewlyDamaged = true
	}
	return res
}

// Retire marks a destroyed block as gone from the simulation. Further hits
// are ignored.
func (b *Block) Retire() { b.removed = true }

// ApplyImpact is ImpactDamage followed by ApplyDamage.
func (b *Block) ApplyImpact(momentum mathutil.Vec2) DamageResult {
	return b.ApplyDamage(b.ImpactDamage(momentum))
}

// Destroy kills the block outright (e.g. a scripted detonation). Its
// remaining hit points are removed from the owner's total.
func (b *Block) Destroy() DamageResult {
	if b.signalled || b.removed {
		return DamageResult{}
	}
	return b.ApplyDamage(math.Nextafter(b.contribution(), math.Inf(1)))
}
