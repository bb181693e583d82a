package network

import "github.com/dgallion1/rescalc/internal/component"

// Bounds is a closed resistance interval.
type Bounds struct {
	Lower float64
	Upper float64
}

// Contains reports whether v lies inside the interval.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}

// Overlaps reports whether two intervals share at least one point.
func (b Bounds) Overlaps(o Bounds) bool {
	return b.Lower <= o.Upper && o.Lower <= b.Upper
}

func leafBounds(c component.Component) Bounds {
	t := c.Tolerance() / 100
	return Bounds{Lower: c.Value * (1 - t), Upper: c.Value * (1 + t)}
}

func seriesBounds(children []*Block) Bounds {
	var b Bounds
	for _, c := range children {
		b.Lower += c.bounds.Lower
		b.Upper += c.bounds.Upper
	}
	return b
}

// parallelBounds assumes every branch sits at the same extreme at once: all
// lower bounds give the low end, all upper bounds the high end. Mixed-extreme
// corners are not enumerated, so for parallel groups this is an
// approximation of the true worst case.
func parallelBounds(children []*Block) Bounds {
	var gLow, gHigh float64
	for _, c := range children {
		gLow += 1 / c.bounds.Lower
		gHigh += 1 / c.bounds.Upper
	}
	return Bounds{Lower: 1 / gLow, Upper: 1 / gHigh}
}
