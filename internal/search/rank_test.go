package search

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dgallion1/rescalc/internal/component"
	"github.com/dgallion1/rescalc/internal/network"
)

func candidates(target float64, values ...float64) []Candidate {
	var out []Candidate
	for i, c := range pool(values...) {
		c.ID = i
		out = append(out, newCandidate(network.NewLeaf(c), target))
	}
	return out
}

func totals(cands []Candidate) []float64 {
	out := make([]float64, len(cands))
	for i, c := range cands {
		out[i] = c.TotalResistance
	}
	return out
}

func TestSort_Orders(t *testing.T) {
	target := 1000.0
	base := candidates(target, 1200, 900, 1000, 1100)
	pair := newCandidate(network.NewSeries(network.NewLeaf(component.Component{Value: 500}), network.NewLeaf(component.Component{Value: 500})), target)
	base = append(base, pair)

	byErr := append([]Candidate(nil), base...)
	Sort(byErr, SortByError)
	require.Equal(t, []float64{1000, 1000, 900, 1100, 1200}, totals(byErr))
	require.Equal(t, 1, byErr[0].ComponentCount, "fewer parts win an error tie")

	asc := append([]Candidate(nil), base...)
	Sort(asc, SortByValueAsc)
	require.Equal(t, []float64{900, 1000, 1000, 1100, 1200}, totals(asc))

	desc := append([]Candidate(nil), base...)
	Sort(desc, SortByValueDesc)
	require.Equal(t, []float64{1200, 1100, 1000, 1000, 900}, totals(desc))

	comp := append([]Candidate(nil), base...)
	Sort(comp, SortByComponents)
	require.Equal(t, 2, comp[len(comp)-1].ComponentCount)
}

func TestParseSortOrder(t *testing.T) {
	o, err := ParseSortOrder("")
	require.NoError(t, err)
	require.Equal(t, SortByError, o)

	o, err = ParseSortOrder("value-desc")
	require.NoError(t, err)
	require.Equal(t, SortByValueDesc, o)

	_, err = ParseSortOrder("random")
	require.Error(t, err)
}

func TestBand_FallsBackWhenEmpty(t *testing.T) {
	cands := candidates(1000, 500, 850, 1150, 2000)
	require.Equal(t, []float64{850, 1150}, totals(Band(cands)))

	far := candidates(1e6, 10, 20)
	require.Len(t, Band(far), 2)
}

func TestDedupe_KeepsFirst(t *testing.T) {
	cands := candidates(1000, 1000, 1000, 2000)
	out := Dedupe(cands)
	require.Equal(t, []float64{1000, 2000}, totals(out))
	c, ok := out[0].Block.Component()
	require.True(t, ok)
	require.Equal(t, 0, c.ID)
}

func TestFilterActive(t *testing.T) {
	comps := pool(1000, 2000)
	res, err := Run(Request{Components: comps, Target: 3000}, SortByError, nil)
	require.NoError(t, err)

	comps[1].Active = false
	view := View(res, comps, SortByError)
	require.NotEmpty(t, view.Candidates)
	require.Equal(t, len(view.Candidates), view.Stats.ComboCount)
	for _, c := range view.Candidates {
		c.Block.Walk(func(cc component.Component) bool {
			require.NotEqual(t, 1, cc.ID)
			return true
		})
	}
	require.Greater(t, len(res.Candidates), len(view.Candidates))
}

func TestResultCache(t *testing.T) {
	cache := NewResultCache()
	_, ok := cache.Get("a", nil)
	require.False(t, ok)

	r := Result{Candidates: candidates(1000, 1000), Stats: Stats{ComboCount: 1}}
	cache.Put("a", r, nil)

	got, ok := cache.Get("a", nil)
	require.True(t, ok)
	require.Equal(t, r.Stats, got.Stats)
	got.Candidates[0].Label = "changed"
	again, _ := cache.Get("a", nil)
	require.NotEqual(t, "changed", again.Candidates[0].Label)

	_, ok = cache.Get("b", nil)
	require.False(t, ok)

	cache.Clear()
	_, ok = cache.Get("a", nil)
	require.False(t, ok)
}

func TestResultCache_ToggleWithoutPruningHits(t *testing.T) {
	comps := pool(1000, 2000)
	res, err := Run(Request{Components: comps, Target: 3000}, SortByError, nil)
	require.NoError(t, err)
	require.Zero(t, res.Stats.PrunedBlocks+res.Stats.PrunedCombos)

	cache := NewResultCache()
	cache.Put("sig", res, comps)
	toggled := pool(1000, 2000)
	toggled[1].Active = false
	_, ok := cache.Get("sig", toggled)
	require.True(t, ok)
}

func TestResultCache_DisablingPruningComponentMisses(t *testing.T) {
	comps := []component.Component{
		{ID: 0, Value: 4990, SeriesName: "E96", Active: true},
		{ID: 1, Value: 10000, SeriesName: "E24", Active: true},
	}
	res, err := Run(Request{Components: comps, Target: 10000}, SortByError, nil)
	require.NoError(t, err)
	require.Positive(t, res.Stats.PrunedBlocks+res.Stats.PrunedCombos)

	cache := NewResultCache()
	cache.Put("sig", res, comps)
	_, ok := cache.Get("sig", comps)
	require.True(t, ok)

	toggled := slices.Clone(comps)
	toggled[1].Active = false
	_, ok = cache.Get("sig", toggled)
	require.False(t, ok, "entry pruned by a now inactive component")

	fresh, err := Run(Request{Components: toggled, Target: 10000}, SortByError, nil)
	require.NoError(t, err)
	require.Contains(t, labels(View(fresh, toggled, SortByError).Candidates), "4k99 + 4k99")
}

func TestSignature(t *testing.T) {
	comps := pool(1000, 2000)
	sig := Signature(comps, 3000, "", DefaultLimits())

	toggled := pool(1000, 2000)
	toggled[0].Active = false
	require.Equal(t, sig, Signature(toggled, 3000, "", DefaultLimits()))
	require.Equal(t, sig, Signature(comps, 3000, "", Limits{}))

	require.NotEqual(t, sig, Signature(comps, 3001, "", DefaultLimits()))
	require.NotEqual(t, sig, Signature(comps, 3000, "E24", DefaultLimits()))
	require.NotEqual(t, sig, Signature(comps, 3000, "", Limits{MaxParallel: 3}))
	require.NotEqual(t, sig, Signature(pool(2000, 1000), 3000, "", DefaultLimits()))
}

func TestPrepare(t *testing.T) {
	p, err := component.NewParser()
	require.NoError(t, err)

	prep, err := Prepare(p, Query{
		Values:     []component.Spec{{Value: "10k"}, {Value: "4.8k"}, {Value: "bogus"}},
		Target:     "9.5k",
		SnapSeries: "E24",
		SortBy:     "components",
		Limits:     Limits{MaxCombos: 100},
	}, DefaultLimits())
	require.NoError(t, err)

	require.Equal(t, SortByComponents, prep.Order)
	require.Len(t, prep.Request.Components, 2)
	require.InDelta(t, 4700, prep.Request.Components[1].Value, 1e-9)
	require.InDelta(t, 9100, prep.Request.Target, 1e-9)
	require.Equal(t, 100, prep.Request.Limits.MaxCombos)
	require.Equal(t, 2, prep.Request.Limits.MaxParallel)
	require.Contains(t, prep.Warnings, "target snapped to 9k1 (E24)")
	require.NotEmpty(t, prep.Signature)
}

func TestPrepare_Errors(t *testing.T) {
	p, err := component.NewParser()
	require.NoError(t, err)

	_, err = Prepare(p, Query{Values: []component.Spec{{Value: "1k"}}, Target: "nope"}, DefaultLimits())
	require.ErrorIs(t, err, ErrInvalidTarget)

	off := false
	_, err = Prepare(p, Query{Values: []component.Spec{{Value: "1k", Active: &off}}, Target: "1k"}, DefaultLimits())
	require.ErrorIs(t, err, ErrNoActiveComponents)

	_, err = Prepare(p, Query{Values: []component.Spec{{Value: "1k"}}, Target: "1k", SortBy: "size"}, DefaultLimits())
	require.Error(t, err)
}
