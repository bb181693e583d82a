package search

import (
	"fmt"

	"github.com/dgallion1/rescalc/internal/component"
	"github.com/dgallion1/rescalc/internal/series"
)

// Query is a search as a caller writes it: value notation, not numbers.
type Query struct {
	Values     []component.Spec `json:"values"`
	Target     string           `json:"target"`
	SnapSeries string           `json:"snap_series,omitempty"`
	SortBy     string           `json:"sort_by,omitempty"`
	Limits     Limits           `json:"limits"`
}

// Prepared is a parsed, validated Query ready to run.
type Prepared struct {
	Request   Request
	Order     SortOrder
	Signature string
	Warnings  []string
}

// Prepare parses q against p. defaults supplies any limit q leaves at zero.
// Bad values become warnings; a bad target, unknown sort order or a pool with
// no active component is an error.
func Prepare(p *component.Parser, q Query, defaults Limits) (Prepared, error) {
	order, err := ParseSortOrder(q.SortBy)
	if err != nil {
		return Prepared{}, err
	}
	parsed, err := p.Parse(q.Target)
	if err != nil {
		return Prepared{}, fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	target := parsed.Value

	comps, warnings := component.Build(p, q.Values, component.Options{SnapSeries: q.SnapSeries})
	if s, ok := series.Lookup(q.SnapSeries); ok {
		if snapped := s.Nearest(target); snapped != target {
			warnings = append(warnings, fmt.Sprintf("target snapped to %s (%s)", component.FormatValue(snapped), s.Name))
			target = snapped
		}
	}

	req := Request{
		Components: comps,
		Target:     target,
		Limits:     defaults.normalized().Merge(q.Limits),
	}
	if err := req.Validate(); err != nil {
		return Prepared{}, err
	}
	return Prepared{
		Request:   req,
		Order:     order,
		Signature: Signature(comps, target, q.SnapSeries, req.Limits),
		Warnings:  warnings,
	}, nil
}
