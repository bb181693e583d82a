package search

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/dgallion1/rescalc/internal/component"
	"github.com/dgallion1/rescalc/internal/network"
)

const (
	pairWindowMax      = 50
	defaultPairResults = 20
)

// PairOptions configures a divider search. Ratio is Vout/Vin.
type PairOptions struct {
	Ratio          float64 `json:"ratio"`
	Supply         float64 `json:"supply"`
	AllowOvershoot bool    `json:"allow_overshoot"`
	MaxResults     int     `json:"max_results"`
}

// Pair is one divider: Top sits between supply and output, Bottom between
// output and ground.
type Pair struct {
	Top          *network.Block `json:"top"`
	Bottom       *network.Block `json:"bottom"`
	Label        string         `json:"label"`
	Ratio        float64        `json:"ratio"`
	Error        float64        `json:"error"`
	ErrorPercent float64        `json:"error_percent"`
	Total        float64        `json:"total_resistance"`
	Output       float64        `json:"output"`
	OutputMin    float64        `json:"output_min"`
	OutputMax    float64        `json:"output_max"`
}

// FindPairs searches top×bottom for ratios r2/(r1+r2) close to opts.Ratio.
// The top pool is indexed once by resistance; each bottom value then needs a
// binary search plus a bounded neighbourhood scan.
func FindPairs(top, bottom []*network.Block, opts PairOptions) ([]Pair, error) {
	if !(opts.Ratio > 0 && opts.Ratio < 1) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRatio, opts.Ratio)
	}
	if len(top) == 0 || len(bottom) == 0 {
		return nil, nil
	}
	supply := opts.Supply
	if supply <= 0 {
		supply = 1
	}
	limit := opts.MaxResults
	if limit <= 0 {
		limit = defaultPairResults
	}

	n := len(top)
	sorted := make([]int, n)
	values := make([]float64, n)
	for i, b := range top {
		sorted[i] = i
		values[i] = b.Resistance()
	}
	slices.SortStableFunc(sorted, func(a, b int) int { return cmp.Compare(values[a], values[b]) })
	window := max(1, min(pairWindowMax, n/10))

	byRatio := make(map[string]int)
	var out []Pair
	for _, b2 := range bottom {
		r2 := b2.Resistance()
		ideal := r2 * (1/opts.Ratio - 1)

		hit := closestIndex(sorted, values, ideal)
		for pos := max(0, hit-window); pos <= min(n-1, hit+window); pos++ {
			b1 := top[sorted[pos]]
			p := newPair(b1, b2, opts.Ratio, supply)
			if p.Error > 0 && !opts.AllowOvershoot {
				continue
			}
			key := strconv.FormatFloat(p.Ratio, 'f', 10, 64)
			if i, ok := byRatio[key]; ok {
				if p.Total < out[i].Total {
					out[i] = p
				}
				continue
			}
			byRatio[key] = len(out)
			out = append(out, p)
		}
	}

	slices.SortStableFunc(out, func(a, b Pair) int {
		return cmp.Or(
			cmp.Compare(math.Abs(a.Error), math.Abs(b.Error)),
			cmp.Compare(a.Total, b.Total),
			cmp.Compare(a.Label, b.Label),
		)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// closestIndex binary-searches the sorted positions for want and returns the
// position of the closest value seen on the way down.
func closestIndex(sorted []int, values []float64, want float64) int {
	lo, hi := 0, len(sorted)-1
	best, bestDiff := 0, math.Inf(1)
	for lo <= hi {
		mid := (lo + hi) / 2
		v := values[sorted[mid]]
		if d := math.Abs(v - want); d < bestDiff {
			best, bestDiff = mid, d
		}
		switch {
		case v < want:
			lo = mid + 1
		case v > want:
			hi = mid - 1
		default:
			return mid
		}
	}
	return best
}

func newPair(top, bottom *network.Block, target, supply float64) Pair {
	r1, r2 := top.Resistance(), bottom.Resistance()
	ratio := r2 / (r1 + r2)
	p := Pair{
		Top:          top,
		Bottom:       bottom,
		Label:        top.Label() + " / " + bottom.Label(),
		Ratio:        ratio,
		Error:        ratio - target,
		ErrorPercent: (ratio - target) / target * 100,
		Total:        r1 + r2,
		Output:       ratio * supply,
		OutputMin:    math.Inf(1),
		OutputMax:    math.Inf(-1),
	}
	b1, b2 := top.Bounds(), bottom.Bounds()
	for _, x := range [2]float64{b1.Lower, b1.Upper} {
		for _, y := range [2]float64{b2.Lower, b2.Upper} {
			v := supply * y / (x + y)
			p.OutputMin = min(p.OutputMin, v)
			p.OutputMax = max(p.OutputMax, v)
		}
	}
	return p
}

// PairPool returns the blocks a divider search draws from: the active
// components alone, or with composite set, their parallel groups and
// two-element series chains as well.
func PairPool(components []component.Component, limits Limits, composite bool) []*network.Block {
	var active []component.Component
	for _, c := range components {
		if c.Active {
			active = append(active, c)
		}
	}
	limits = limits.normalized()
	if !composite {
		limits.MaxParallel = 1
		return buildBlocks(active, limits).all
	}

	set := buildBlocks(active, limits)
	pool := set.all
	budget := limits.MaxCombos
	for i := 0; i < len(set.leaves) && budget > 0; i++ {
		for j := i; j < len(set.leaves) && budget > 0; j++ {
			pool = append(pool, network.NewSeries(set.leaves[i], set.leaves[j]))
			budget--
		}
	}
	return pool
}
