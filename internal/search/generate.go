package search

import (
	"github.com/dgallion1/rescalc/internal/network"
)

// generator expands blocks into series chains for one partition.
type generator struct {
	limits Limits
	target float64
	pruner *overlapPruner

	out    []Candidate
	pruned int
	tuple  []int
}

func (g *generator) full() bool {
	return len(g.out) >= g.limits.MaxCombos
}

// offer evaluates a combination unless single-overlap pruning rejects it.
func (g *generator) offer(b *network.Block) {
	if g.pruner.rejects(b) {
		g.pruned++
		return
	}
	g.out = append(g.out, newCandidate(b, g.target))
}

// repeatLeaf offers the leaf chained with itself 2..MaxSeriesBlocks times.
func (g *generator) repeatLeaf(leaf *network.Block) {
	children := []*network.Block{leaf}
	for n := 2; n <= g.limits.MaxSeriesBlocks && !g.full(); n++ {
		children = append(children, leaf)
		g.offer(network.NewSeries(children...))
	}
}

// seriesFrom offers every non-decreasing tuple of the given length that
// starts at first. Tuples made of one repeated leaf are left to repeatLeaf.
func (g *generator) seriesFrom(blocks []*network.Block, first, length int) {
	if cap(g.tuple) < length {
		g.tuple = make([]int, length)
	}
	g.tuple = g.tuple[:length]
	g.tuple[0] = first
	g.fill(blocks, 1)
}

func (g *generator) fill(blocks []*network.Block, pos int) {
	if g.full() {
		return
	}
	if pos == len(g.tuple) {
		g.emit(blocks)
		return
	}
	for j := g.tuple[pos-1]; j < len(blocks) && !g.full(); j++ {
		g.tuple[pos] = j
		g.fill(blocks, pos+1)
	}
}

func (g *generator) emit(blocks []*network.Block) {
	first := blocks[g.tuple[0]]
	if len(g.tuple) == 1 {
		g.offer(first)
		return
	}
	same := true
	for _, i := range g.tuple[1:] {
		if i != g.tuple[0] {
			same = false
			break
		}
	}
	if same && first.Kind() == network.Leaf {
		return
	}
	children := make([]*network.Block, len(g.tuple))
	for k, i := range g.tuple {
		children[k] = blocks[i]
	}
	g.offer(network.NewSeries(children...))
}

// seriesLengths returns the chain lengths the general pass enumerates. Length
// 1 is always included; each longer length is admitted only while its
// estimated tuple count stays within MaxCombos.
func seriesLengths(n int, limits Limits) []int {
	if n == 0 {
		return nil
	}
	lengths := []int{1}
	for l := 2; l <= limits.MaxSeriesBlocks; l++ {
		if multisetCount(n, l) > float64(limits.MaxCombos) {
			break
		}
		lengths = append(lengths, l)
	}
	return lengths
}
