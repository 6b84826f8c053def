package integrity

import (
	"context"
	"fmt"

	"github.com/zyedidia/generic/mapset"
	"github.com/zyedidia/generic/queue"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/voidbreak/hull/internal/world"
)

// Verdict is the outcome of one integrity check.
type Verdict uint8

const (
	// VerdictMissing: the block was not in the graph (already handled).
	VerdictMissing Verdict = iota
	VerdictNoNeighbours
	VerdictSingleNeighbour
	// VerdictIntact: every surviving neighbour still reaches every other.
	VerdictIntact
	VerdictSplit
)

func (v Verdict) String() string {
	switch v {
	case VerdictMissing:
		return "missing"
	case VerdictNoNeighbours:
		return "no_neighbours"
	case VerdictSingleNeighbour:
		return "single_neighbour"
	case VerdictIntact:
		return "intact"
	case VerdictSplit:
		return "split"
	}
	return fmt.Sprintf("verdict(%d)", uint8(v))
}

// Result describes one integrity check.
type Result struct {
	Verdict    Verdict
	Destroyed  world.BlockID
	Neighbours int // active neighbours at the time of removal
	Searches   int // pairwise reachability searches run
	Inferred   int // pairs decided from earlier answers

	// Set only for VerdictSplit. Partitions are listed in flood order; Core
	// indexes the one that stayed with the parent.
	Partitions [][]world.BlockID
	Core       int
	Fragments  []*world.Structure
}

// Engine reacts to block destruction: it cuts the block out of its
// structure's graph and splits the structure if that disconnected it.
// Engine is used from the simulation goroutine only; it fans out internally
// for partition discovery and joins before returning.
type Engine struct {
	builder      *Builder
	spawner      Spawner
	floodWorkers int
	defaultLayer string
	log          *zap.Logger
}

func NewEngine(builder *Builder, spawner Spawner, floodWorkers int, defaultLayer string, log *zap.Logger) *Engine {
	return &Engine{
		builder:      builder,
		spawner:      spawner,
		floodWorkers: max(floodWorkers, 1),
		defaultLayer: defaultLayer,
		log:          log,
	}
}

// Drain runs at most one check from s's destruction backlog. ok is false when
// the backlog was empty or a check is already in flight for s.
func (e *Engine) Drain(ctx context.Context, s *world.Structure) (res Result, ok bool, err error) {
	if !s.BeginCheck() {
		return Result{}, false, nil
	}
	defer s.EndCheck()

	id, ok := s.PopPending()
	if !ok {
		return Result{}, false, nil
	}
	res, err = e.Check(ctx, s, id)
	return res, true, err
}

// Check removes destroyed block id from s and resolves what that did to the
// structure's connectivity. Checking the same block twice is a no-op the
// second time. The only error is ctx cancellation during partition discovery,
// in which case the block is already removed but no split is applied.
func (e *Engine) Check(ctx context.Context, s *world.Structure, id world.BlockID) (Result, error) {
	res := Result{Destroyed: id, Core: -1}
	topo := s.Topology()
	if topo == nil {
		e.log.Warn("integrity check on structure without topology",
			zap.Uint64("structure", uint64(s.ID)),
			zap.Uint32("block", uint32(id)),
		)
		return res, nil
	}

	idx, ok := topo.Lookup(id)
	if !ok {
		e.log.Warn("destroyed block not in topology, skipping check",
			zap.Uint64("structure", uint64(s.ID)),
			zap.Uint32("block", uint32(id)),
		)
		return res, nil
	}
	blk := topo.Node(idx).Block

	neighbours, _ := topo.Remove(id)
	blk.Retire()
	s.Detach(blk)
	res.Neighbours = len(neighbours)

	switch len(neighbours) {
	case 0:
		res.Verdict = VerdictNoNeighbours
		return res, nil
	case 1:
		res.Verdict = VerdictSingleNeighbour
		return res, nil
	}

	reps := e.resolvePairs(topo, neighbours, &res)
	if len(reps) == 0 {
		res.Verdict = VerdictIntact
		return res, nil
	}

	partitions, err := e.discover(ctx, topo, reps)
	if err != nil {
		// The block is already gone but no split is applied, so the structure
		// keeps its disconnected parts in one graph. Only shutdown cancels.
		return res, fmt.Errorf("integrity: partition discovery for block %d: %w", id, err)
	}

	res.Verdict = VerdictSplit
	res.Partitions = make([][]world.BlockID, len(partitions))
	for i, part := range partitions {
		ids := make([]world.BlockID, len(part))
		for j, b := range part {
			ids[j] = b.ID
		}
		res.Partitions[i] = ids
	}
	res.Core, res.Fragments = e.materialize(s, partitions)

	e.log.Info("structure split",
		zap.Uint64("structure", uint64(s.ID)),
		zap.Uint32("block", uint32(id)),
		zap.Int("partitions", len(partitions)),
		zap.Int("core_size", len(partitions[res.Core])),
		zap.Int("searches", res.Searches),
		zap.Int("inferred", res.Inferred),
	)
	return res, nil
}

// resolvePairs decides reachability for every pair of neighbours, reusing
// earlier answers where they settle a pair, and returns one node per
// disconnected component. It returns nil when all neighbours are connected.
func (e *Engine) resolvePairs(topo *world.Topology, nbs []world.NodeIndex, res *Result) []world.NodeIndex {
	uf := newUnionFind(len(nbs))
	var apart [][2]int // pairs known to be disconnected
	connected := 0

	separated := func(i, j int) bool {
		ri, rj := uf.find(i), uf.find(j)
		for _, p := range apart {
			a, b := uf.find(p[0]), uf.find(p[1])
			if (a == ri && b == rj) || (a == rj && b == ri) {
				return true
			}
		}
		return false
	}

	for i := 0; i < len(nbs); i++ {
		for j := i + 1; j < len(nbs); j++ {
			switch {
			case uf.find(i) == uf.find(j):
				res.Inferred++
				connected++
			case separated(i, j):
				res.Inferred++
			default:
				res.Searches++
				if reachable(topo, nbs[i], nbs[j]) {
					uf.union(i, j)
					connected++
				} else {
					apart = append(apart, [2]int{i, j})
				}
			}
		}
	}
	if len(apart) == 0 {
		return nil
	}

	if connected == 0 {
		// Nothing is joined: every neighbour heads its own partition.
		reps := make([]world.NodeIndex, 0, len(nbs))
		seen := mapset.New[world.NodeIndex]()
		for _, p := range apart {
			for _, k := range p {
				if !seen.Has(nbs[k]) {
					seen.Put(nbs[k])
					reps = append(reps, nbs[k])
				}
			}
		}
		return reps
	}

	reps := make([]world.NodeIndex, 0, len(nbs))
	roots := mapset.New[int]()
	for i := range nbs {
		r := uf.find(i)
		if !roots.Has(r) {
			roots.Put(r)
			reps = append(reps, nbs[i])
		}
	}
	return reps
}

// discover floods from each representative concurrently. The graph is only
// read while the floods run.
func (e *Engine) discover(ctx context.Context, topo *world.Topology, reps []world.NodeIndex) ([][]*world.Block, error) {
	out := make([][]*world.Block, len(reps))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.floodWorkers)
	for i, start := range reps {
		i, start := i, start
		g.Go(func() error {
			part, err := flood(gctx, topo, start)
			if err != nil {
				return err
			}
			out[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// reachable runs a breadth-first search from a towards b over active nodes.
func reachable(topo *world.Topology, a, b world.NodeIndex) bool {
	if a == b {
		return true
	}
	visited := mapset.New[world.NodeIndex]()
	visited.Put(a)
	q := queue.New[world.NodeIndex]()
	q.Enqueue(a)
	for !q.Empty() {
		cur := q.Dequeue()
		for _, n := range topo.ActiveNeighbours(cur) {
			if n == b {
				return true
			}
			if !visited.Has(n) {
				visited.Put(n)
				q.Enqueue(n)
			}
		}
	}
	return false
}

// flood collects every block reachable from start, in breadth-first order.
func flood(ctx context.Context, topo *world.Topology, start world.NodeIndex) ([]*world.Block, error) {
	visited := mapset.New[world.NodeIndex]()
	visited.Put(start)
	q := queue.New[world.NodeIndex]()
	q.Enqueue(start)

	var part []*world.Block
	for !q.Empty() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur := q.Dequeue()
		part = append(part, topo.Node(cur).Block)
		for _, n := range topo.ActiveNeighbours(cur) {
			if !visited.Has(n) {
				visited.Put(n)
				q.Enqueue(n)
			}
		}
	}
	return part, nil
}

type unionFind struct{ parent []int }

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}
