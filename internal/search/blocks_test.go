package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dgallion1/rescalc/internal/network"
)

func TestBuildBlocks_LeavesThenParallelGroups(t *testing.T) {
	blocks := BuildBlocks(pool(100, 200, 300), Limits{MaxParallel: 3})
	require.Len(t, blocks, 3+3+1)

	for _, b := range blocks[:3] {
		require.Equal(t, network.Leaf, b.Kind())
	}
	for _, b := range blocks[3:] {
		require.Equal(t, network.Parallel, b.Kind())
	}
	require.Equal(t, 2, blocks[3].LeafCount())
	require.Equal(t, 3, blocks[6].LeafCount())
	// First pair is (0, 1): 100 || 200.
	require.InDelta(t, 200.0/3, blocks[3].Resistance(), 1e-9)
}

func TestBuildBlocks_ParallelBudgetStopsGrowth(t *testing.T) {
	blocks := BuildBlocks(pool(100, 200, 300), Limits{MaxParallel: 3, MaxParallelCombos: 2})
	require.Len(t, blocks, 3)
}

func TestForEachSubset_Lexicographic(t *testing.T) {
	var got [][]int
	forEachSubset(4, 2, func(idx []int) {
		got = append(got, append([]int(nil), idx...))
	})
	require.Equal(t, [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}, got)
}

func TestMultisetCount(t *testing.T) {
	require.InDelta(t, 1830, multisetCount(60, 2), 1e-6)
	require.InDelta(t, 37820, multisetCount(60, 3), 1e-6)
}

func TestSeriesLengths(t *testing.T) {
	limits := DefaultLimits()
	require.Equal(t, []int{1, 2, 3}, seriesLengths(60, limits))

	limits.MaxSeriesBlocks = 4
	require.Equal(t, []int{1, 2, 3}, seriesLengths(60, limits))

	limits.MaxCombos = 10
	require.Equal(t, []int{1}, seriesLengths(60, limits))
	require.Nil(t, seriesLengths(0, limits))
}

func TestOverlapPruner(t *testing.T) {
	set := buildBlocks(pool(1000, 2000), DefaultLimits())

	off := newOverlapPruner(set.leaves, 3000)
	require.False(t, off.enabled)
	require.False(t, off.rejects(network.NewSeries(set.leaves[0], set.leaves[0])))

	on := newOverlapPruner(set.leaves, 2000)
	require.True(t, on.enabled)
	require.False(t, on.rejects(set.leaves[0]))
	require.True(t, on.rejects(network.NewSeries(set.leaves[0], set.leaves[0])))
	require.False(t, on.rejects(network.NewSeries(set.leaves[0], set.leaves[1])))
}

func TestOverlapPruner_IgnoresInactiveLeaves(t *testing.T) {
	comps := pool(1000, 2000)
	comps[1].Active = false
	set := buildBlocks(comps, DefaultLimits())

	p := newOverlapPruner(set.leaves, 2000)
	require.False(t, p.enabled)
	require.Len(t, p.singles, 1)
	require.False(t, p.rejects(network.NewSeries(set.leaves[0], set.leaves[0])))
}

func TestTrimBlocks_KeepsClosestAndExtremes(t *testing.T) {
	var values []float64
	for i := 1; i <= 20; i++ {
		values = append(values, float64(i*100))
	}
	blocks := BuildBlocks(pool(values...), Limits{MaxParallel: 1})

	kept := TrimBlocks(blocks, 1000, 3)
	var got []float64
	for _, b := range kept {
		got = append(got, b.Resistance())
	}
	require.Equal(t, []float64{100, 200, 300, 400, 500, 900, 1000, 1100, 1600, 1700, 1800, 1900, 2000}, got)
}

func TestTrimBlocks_SmallInputUnchanged(t *testing.T) {
	blocks := BuildBlocks(pool(100, 200), DefaultLimits())
	require.Equal(t, blocks, TrimBlocks(blocks, 150, 60))
}

func TestChunkSpec_Range(t *testing.T) {
	cases := []struct {
		chunk      ChunkSpec
		total      int
		start, end int
	}{
		{ChunkSpec{0, 4}, 10, 0, 3},
		{ChunkSpec{3, 4}, 10, 9, 10},
		{ChunkSpec{2, 4}, 2, 2, 2},
		{Whole, 7, 0, 7},
	}
	for _, c := range cases {
		start, end := c.chunk.Range(c.total)
		require.Equal(t, c.start, start, "%+v", c.chunk)
		require.Equal(t, c.end, end, "%+v", c.chunk)
	}
}

func TestChunkSpec_Validate(t *testing.T) {
	require.NoError(t, Whole.Validate())
	require.ErrorIs(t, ChunkSpec{Index: 0, Count: 0}.Validate(), ErrInvalidChunk)
	require.ErrorIs(t, ChunkSpec{Index: -1, Count: 2}.Validate(), ErrInvalidChunk)
}

func TestLimits_Clamp(t *testing.T) {
	ceiling := DefaultLimits()
	got := Limits{MaxParallel: 1, MaxSeriesBlocks: 1_000_000, MaxCombos: 1_000_000_000_000, MaxParallelCombos: 10}.Clamp(ceiling)
	require.Equal(t, Limits{MaxParallel: 1, MaxSeriesBlocks: 3, MaxCombos: 50000, MaxParallelCombos: 10}, got)

	require.Equal(t, Limits{MaxCombos: 7}, Limits{MaxCombos: 7}.Clamp(Limits{}))
}

func TestLimits_Merge(t *testing.T) {
	l := DefaultLimits().Merge(Limits{MaxParallel: 4, MaxCombos: -1})
	require.Equal(t, 4, l.MaxParallel)
	require.Equal(t, 50000, l.MaxCombos)
	require.Equal(t, DefaultLimits(), Limits{}.normalized())
}
