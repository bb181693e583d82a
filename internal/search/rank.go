package search

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/dgallion1/rescalc/internal/component"
	"github.com/dgallion1/rescalc/internal/network"
)

// BandPercent is the relative error band kept after ranking.
const BandPercent = 20.0

// Candidate is one evaluated combination.
type Candidate struct {
	Block           *network.Block `json:"block"`
	Label           string         `json:"label"`
	TotalResistance float64        `json:"total_resistance"`
	Error           float64        `json:"error"`
	ErrorPercent    float64        `json:"error_percent"`
	ComponentCount  int            `json:"component_count"`

	key string
}

func newCandidate(b *network.Block, target float64) Candidate {
	total := b.Resistance()
	diff := total - target
	return Candidate{
		Block:           b,
		Label:           b.Label(),
		TotalResistance: total,
		Error:           diff,
		ErrorPercent:    diff / target * 100,
		ComponentCount:  b.LeafCount(),
		key:             b.Key(),
	}
}

// Key is the canonical tree description used for deduplication.
func (c Candidate) Key() string {
	if c.key == "" && c.Block != nil {
		return c.Block.Key()
	}
	return c.key
}

// SortOrder selects how candidates are ranked.
type SortOrder string

const (
	SortByError      SortOrder = "error"
	SortByComponents SortOrder = "components"
	SortByValueAsc   SortOrder = "value-asc"
	SortByValueDesc  SortOrder = "value-desc"
)

// ParseSortOrder accepts the order names; empty means SortByError.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(s); o {
	case "":
		return SortByError, nil
	case SortByError, SortByComponents, SortByValueAsc, SortByValueDesc:
		return o, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// Sort orders candidates in place. Ties fall back to |error|, component
// count, total resistance and finally the canonical key, so equal inputs
// always produce the same order.
func Sort(cands []Candidate, order SortOrder) {
	slices.SortStableFunc(cands, func(a, b Candidate) int {
		var c int
		switch order {
		case SortByComponents:
			c = cmp.Compare(a.ComponentCount, b.ComponentCount)
		case SortByValueAsc:
			c = cmp.Compare(a.TotalResistance, b.TotalResistance)
		case SortByValueDesc:
			c = cmp.Compare(b.TotalResistance, a.TotalResistance)
		}
		if c != 0 {
			return c
		}
		return cmp.Or(
			cmp.Compare(math.Abs(a.Error), math.Abs(b.Error)),
			cmp.Compare(a.ComponentCount, b.ComponentCount),
			cmp.Compare(a.TotalResistance, b.TotalResistance),
			cmp.Compare(a.Key(), b.Key()),
		)
	})
}

// Dedupe keeps the first candidate for each canonical key.
func Dedupe(cands []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(cands))
	out := cands[:0:0]
	for _, c := range cands {
		k := c.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Band keeps candidates within ±BandPercent of the target. When nothing is
// that close the input is returned unchanged.
func Band(cands []Candidate) []Candidate {
	var out []Candidate
	for _, c := range cands {
		if math.Abs(c.ErrorPercent) <= BandPercent {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return cands
	}
	return out
}

// FilterActive drops candidates that use any inactive component. Components
// are looked up by ID.
func FilterActive(cands []Candidate, components []component.Component) []Candidate {
	active := make(map[int]bool, len(components))
	for _, c := range components {
		active[c.ID] = c.Active
	}
	var out []Candidate
	for _, cand := range cands {
		ok := cand.Block.Walk(func(c component.Component) bool {
			return active[c.ID]
		})
		if ok {
			out = append(out, cand)
		}
	}
	return out
}
