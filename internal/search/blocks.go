package search

import (
	"github.com/dgallion1/rescalc/internal/component"
	"github.com/dgallion1/rescalc/internal/network"
)

// blockSet is the output of BuildBlocks: one leaf per component followed by
// every parallel group that fit the budget.
type blockSet struct {
	leaves []*network.Block
	all    []*network.Block
}

// BuildBlocks returns one leaf per component plus parallel groups of size
// 2..MaxParallel over all index subsets, smallest sizes first. The subset
// count for each size is estimated before enumerating it; the first size whose
// estimate exceeds MaxParallelCombos stops further growth.
func BuildBlocks(components []component.Component, limits Limits) []*network.Block {
	return buildBlocks(components, limits.normalized()).all
}

func buildBlocks(components []component.Component, limits Limits) blockSet {
	n := len(components)
	set := blockSet{leaves: make([]*network.Block, n)}
	for i, c := range components {
		set.leaves[i] = network.NewLeaf(c)
	}
	set.all = append(set.all, set.leaves...)

	estimate := float64(n) // C(n, 1)
	for k := 2; k <= limits.MaxParallel && k <= n; k++ {
		estimate = estimate * float64(n-k+1) / float64(k)
		if estimate > float64(limits.MaxParallelCombos) {
			break
		}
		forEachSubset(n, k, func(idx []int) {
			children := make([]*network.Block, k)
			for j, i := range idx {
				children[j] = set.leaves[i]
			}
			set.all = append(set.all, network.NewParallel(children...))
		})
	}
	return set
}

// forEachSubset calls fn with every k-subset of [0, n) in lexicographic
// order. The slice is reused between calls.
func forEachSubset(n, k int, fn func([]int)) {
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		fn(idx)
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// multisetCount estimates C(n+k-1, k), the number of non-decreasing index
// tuples of length k over n items.
func multisetCount(n, k int) float64 {
	c := 1.0
	for i := 1; i <= k; i++ {
		c = c * float64(n+i-1) / float64(i)
	}
	return c
}
