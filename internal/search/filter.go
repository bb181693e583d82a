package search

import (
	"cmp"
	"math"
	"slices"

	"github.com/dgallion1/rescalc/internal/network"
)

// extremeKeep is how many of the smallest and largest blocks always survive
// trimming, so far-off targets still have building blocks.
const extremeKeep = 5

// overlapPruner discards composites that a lone active component already
// covers. It is enabled only when the target lies inside at least one active
// leaf's tolerance interval. Inactive leaves never prune.
type overlapPruner struct {
	enabled bool
	singles []network.Bounds
}

func newOverlapPruner(leaves []*network.Block, target float64) *overlapPruner {
	p := &overlapPruner{}
	for _, l := range leaves {
		if c, ok := l.Component(); ok && !c.Active {
			continue
		}
		b := l.Bounds()
		p.singles = append(p.singles, b)
		if b.Contains(target) {
			p.enabled = true
		}
	}
	return p
}

// rejects reports whether a composite block overlaps any single component's
// interval while pruning is enabled. Leaves are never rejected.
func (p *overlapPruner) rejects(b *network.Block) bool {
	if !p.enabled || b.Kind() == network.Leaf {
		return false
	}
	bounds := b.Bounds()
	for _, s := range p.singles {
		if bounds.Overlaps(s) {
			return true
		}
	}
	return false
}

// TrimBlocks keeps the maxBlocks blocks closest to target plus the
// extremeKeep smallest and largest blocks. The result preserves input order
// and holds each block once.
func TrimBlocks(blocks []*network.Block, target float64, maxBlocks int) []*network.Block {
	if len(blocks) <= maxBlocks {
		return slices.Clone(blocks)
	}

	order := make([]int, len(blocks))
	for i := range order {
		order[i] = i
	}
	keep := make([]bool, len(blocks))

	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(math.Abs(blocks[a].Resistance()-target), math.Abs(blocks[b].Resistance()-target))
	})
	for _, i := range order[:max(maxBlocks, 0)] {
		keep[i] = true
	}

	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(blocks[a].Resistance(), blocks[b].Resistance())
	})
	n := min(extremeKeep, len(order))
	for _, i := range order[:n] {
		keep[i] = true
	}
	for _, i := range order[len(order)-n:] {
		keep[i] = true
	}

	out := make([]*network.Block, 0, maxBlocks+2*extremeKeep)
	for i, b := range blocks {
		if keep[i] {
			out = append(out, b)
		}
	}
	return out
}
