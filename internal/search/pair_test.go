package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dgallion1/rescalc/internal/component"
	"github.com/dgallion1/rescalc/internal/network"
)

func e24(id int, v float64) *network.Block {
	return network.NewLeaf(component.Component{ID: id, Value: v, SeriesName: "E24", Active: true})
}

func TestFindPairs_EqualDividerRange(t *testing.T) {
	pairs, err := FindPairs(
		[]*network.Block{e24(0, 10000)},
		[]*network.Block{e24(1, 10000)},
		PairOptions{Ratio: 0.5, Supply: 10},
	)
	require.NoError(t, err)
	require.Len(t, pairs, 1)

	p := pairs[0]
	require.InDelta(t, 0.5, p.Ratio, 1e-12)
	require.InDelta(t, 5, p.Output, 1e-9)
	require.InDelta(t, 4.75, p.OutputMin, 1e-9)
	require.InDelta(t, 5.25, p.OutputMax, 1e-9)
	require.InDelta(t, 20000, p.Total, 1e-9)
}

func TestFindPairs_Overshoot(t *testing.T) {
	top := []*network.Block{e24(0, 10000)}
	bottom := []*network.Block{e24(1, 12000)}

	pairs, err := FindPairs(top, bottom, PairOptions{Ratio: 0.5})
	require.NoError(t, err)
	require.Empty(t, pairs)

	pairs, err = FindPairs(top, bottom, PairOptions{Ratio: 0.5, AllowOvershoot: true})
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	require.Positive(t, pairs[0].Error)
}

func TestFindPairs_DedupeKeepsLowerTotal(t *testing.T) {
	blocks := []*network.Block{e24(0, 20000), e24(1, 10000)}
	pairs, err := FindPairs(blocks, blocks, PairOptions{Ratio: 0.5})
	require.NoError(t, err)

	var halves []Pair
	for _, p := range pairs {
		if p.Error == 0 {
			halves = append(halves, p)
		}
	}
	require.Len(t, halves, 1)
	require.InDelta(t, 20000, halves[0].Total, 1e-9)
}

func TestFindPairs_FindsBestInLargePool(t *testing.T) {
	var values []float64
	for _, m := range []float64{1, 1.2, 1.5, 1.8, 2.2, 2.7, 3.3, 3.9, 4.7, 5.6, 6.8, 8.2} {
		for _, d := range []float64{100, 1000, 10000} {
			values = append(values, m*d)
		}
	}
	blocks := PairPool(pool(values...), DefaultLimits(), false)
	require.Len(t, blocks, len(values))

	// 3.3V from 5V: 1k8 over 3k3 gives 0.647.
	pairs, err := FindPairs(blocks, blocks, PairOptions{Ratio: 0.66, Supply: 5, MaxResults: 5})
	require.NoError(t, err)
	require.Len(t, pairs, 5)
	require.LessOrEqual(t, pairs[0].Error, 0.0)
	require.Less(t, -pairs[0].ErrorPercent, 2.0)
	for i := 1; i < len(pairs); i++ {
		require.GreaterOrEqual(t, -pairs[i].Error, -pairs[i-1].Error)
	}
}

func TestFindPairs_InvalidRatio(t *testing.T) {
	_, err := FindPairs(nil, nil, PairOptions{Ratio: 1})
	require.ErrorIs(t, err, ErrInvalidRatio)
	_, err = FindPairs(nil, nil, PairOptions{Ratio: 0})
	require.ErrorIs(t, err, ErrInvalidRatio)
}

func TestPairPool_Composite(t *testing.T) {
	comps := pool(1000, 2000, 3000)
	comps[2].Active = false

	plain := PairPool(comps, DefaultLimits(), false)
	require.Len(t, plain, 2)

	composite := PairPool(comps, DefaultLimits(), true)
	// 2 leaves, 1 parallel pair, 3 series pairs.
	require.Len(t, composite, 6)
}
