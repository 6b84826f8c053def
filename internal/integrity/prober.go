package integrity

import (
	"math"

	"github.com/solarlune/resolv"

	"github.com/voidbreak/hull/internal/config"
	"github.com/voidbreak/hull/internal/mathutil"
	"github.com/voidbreak/hull/internal/world"
)

// Hit is one neighbour found by a probe, keyed by the structure-frame side it
// was found on.
type Hit struct {
	Dir   world.Direction
	Block *world.Block
}

// Prober finds the blocks touching each probed edge of a block. A block never
// reports itself.
type Prober interface {
	Probe(b *world.Block) []Hit
}

// ProberFactory creates a Prober over one fixed block set.
type ProberFactory func(blocks []*world.Block) Prober

const blockTag = "block"

// probeSides lists the local edges a shape probes from. Triangles skip the two
// edges that form their hypotenuse.
func probeSides(s world.Shape) []world.Direction {
	if s == world.ShapeTriangle {
		return []world.Direction{world.Up, world.Right}
	}
	return []world.Direction{world.Up, world.Down, world.Right, world.Left}
}

// ResolvProber answers probes from a resolv spatial hash holding one object per
// block, laid out in the structure's local frame. The hash narrows the search
// to nearby blocks; the probe tip is then tested against each candidate's exact
// outline.
type ResolvProber struct {
	cfg    config.TopologyConfig
	space  *resolv.Space
	objs   map[world.BlockID]*resolv.Object
	origin mathutil.Vec2 // local point mapped to broadphase (0, 0)
}

// NewResolvProber indexes blocks for probing. Broadphase coordinates are the
// local frame shifted to be non-negative and multiplied by SpaceScale, since
// resolv works on a positive integer cell grid.
func NewResolvProber(cfg config.TopologyConfig, blocks []*world.Block) *ResolvProber {
	p := &ResolvProber{
		cfg:  cfg,
		objs: make(map[world.BlockID]*resolv.Object, len(blocks)),
	}
	if len(blocks) == 0 {
		p.space = resolv.NewSpace(cfg.CellSize, cfg.CellSize, cfg.CellSize, cfg.CellSize)
		return p
	}

	minX, minY := math.MaxInt, math.MaxInt
	maxX, maxY := math.MinInt, math.MinInt
	for _, b := range blocks {
		minX, maxX = min(minX, b.Cell.X), max(maxX, b.Cell.X)
		minY, maxY = min(minY, b.Cell.Y), max(maxY, b.Cell.Y)
	}
	bs := cfg.BlockSize
	margin := bs + cfg.ProbeLength
	p.origin = mathutil.Vec2{
		float64(minX)*bs - bs/2 - margin,
		float64(minY)*bs - bs/2 - margin,
	}
	w := (float64(maxX-minX+1)*bs + 2*margin) * cfg.SpaceScale
	h := (float64(maxY-minY+1)*bs + 2*margin) * cfg.SpaceScale
	p.space = resolv.NewSpace(int(math.Ceil(w))+cfg.CellSize, int(math.Ceil(h))+cfg.CellSize, cfg.CellSize, cfg.CellSize)

	size := bs * cfg.SpaceScale
	for _, b := range blocks {
		corner := p.center(b).Sub(mathutil.Vec2{bs / 2, bs / 2})
		x, y := p.toSpace(corner)
		obj := resolv.NewObject(x, y, size, size, blockTag)
		obj.Data = b
		p.space.Add(obj)
		p.objs[b.ID] = obj
	}
	return p
}

// NewResolvProberFactory binds cfg for use by a Builder.
func NewResolvProberFactory(cfg config.TopologyConfig) ProberFactory {
	return func(blocks []*world.Block) Prober {
		return NewResolvProber(cfg, blocks)
	}
}

func (p *ResolvProber) center(b *world.Block) mathutil.Vec2 {
	return mathutil.Vec2{float64(b.Cell.X), float64(b.Cell.Y)}.Scale(p.cfg.BlockSize)
}

func (p *ResolvProber) toSpace(v mathutil.Vec2) (float64, float64) {
	s := v.Sub(p.origin).Scale(p.cfg.SpaceScale)
	return s[0], s[1]
}

// Probe casts one probe per edge of b, each reaching ProbeLength past the
// edge. Hits are returned in probe order.
func (p *ResolvProber) Probe(b *world.Block) []Hit {
	obj, ok := p.objs[b.ID]
	if !ok {
		return nil
	}
	reach := p.cfg.BlockSize/2 + p.cfg.ProbeLength
	step := p.cfg.BlockSize * p.cfg.SpaceScale
	from := p.center(b)

	var hits []Hit
	for _, side := range probeSides(b.Shape) {
		dir, ok := world.DirectionOf(side.Vec().RotateQuarter(b.Quarter))
		if !ok {
			continue
		}
		tip := from.Add(dir.Vec().Scale(reach))

		col := obj.Check(dir.Vec()[0]*step, dir.Vec()[1]*step, blockTag)
		if col == nil {
			continue
		}
		for _, o := range col.Objects {
			other, ok := o.Data.(*world.Block)
			if !ok || other == b {
				continue
			}
			if p.contains(other, tip) {
				hits = append(hits, Hit{Dir: dir, Block: other})
			}
		}
	}
	return hits
}

const outlineEps = 1e-9

// contains reports whether the local-frame point pt lies inside b's outline.
func (p *ResolvProber) contains(b *world.Block, pt mathutil.Vec2) bool {
	half := p.cfg.BlockSize / 2
	d := pt.Sub(p.center(b)).RotateQuarter(-b.Quarter)
	if math.Abs(d[0]) > half+outlineEps || math.Abs(d[1]) > half+outlineEps {
		return false
	}
	if b.Shape == world.ShapeTriangle {
		// legs on the top and right edges, hypotenuse along x+y=0
		return d[0]+d[1] >= -outlineEps
	}
	return true
}
