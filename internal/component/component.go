// Package component defines the discrete parts fed to the search engine and
// the notation used to describe them.
package component

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dgallion1/rescalc/internal/series"
)

// Component is one resistor value available to the search. It is immutable
// once built for a request.
type Component struct {
	ID               int      `json:"id"`
	Value            float64  `json:"value"`
	TolerancePercent *float64 `json:"tolerance_percent,omitempty"`
	SeriesName       string   `json:"series,omitempty"`
	Active           bool     `json:"active"`
}

// Tolerance returns the effective tolerance in percent: the explicit value,
// else the tolerance of the named or matched standard series, else 0.
func (c Component) Tolerance() float64 {
	if c.TolerancePercent != nil {
		return *c.TolerancePercent
	}
	if c.SeriesName != "" {
		if s, ok := series.Lookup(c.SeriesName); ok {
			return s.TolerancePercent
		}
	}
	if s, ok := series.Match(c.Value); ok {
		return s.TolerancePercent
	}
	return 0
}

// Key is a normalized string used in cache signatures.
func (c Component) Key() string {
	tol := "-"
	if c.TolerancePercent != nil {
		tol = strconv.FormatFloat(*c.TolerancePercent, 'g', -1, 64)
	}
	return fmt.Sprintf("%s/%s/%s", strconv.FormatFloat(c.Value, 'g', 12, 64), tol, c.SeriesName)
}

// InputError reports one unusable input item. The item is dropped and the
// rest of the request proceeds.
type InputError struct {
	Item   string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid value %q: %s", e.Item, e.Reason)
}

// Spec is the raw description of a component as submitted by a caller.
type Spec struct {
	Value            string   `json:"value"`
	TolerancePercent *float64 `json:"tolerance_percent,omitempty"`
	Series           string   `json:"series,omitempty"`
	Active           *bool    `json:"active,omitempty"`
}

// Options controls how specs become components.
type Options struct {
	// SnapSeries, when set, moves every value to the nearest member of the
	// named series.
	SnapSeries string
}

// Build parses specs into components. Unparsable or non-positive items are
// returned as warnings and skipped; IDs are assigned in input order over the
// surviving items.
func Build(p *Parser, specs []Spec, opts Options) ([]Component, []string) {
	var (
		out      []Component
		warnings []string
	)
	snap, snapOK := series.Lookup(opts.SnapSeries)
	if opts.SnapSeries != "" && !snapOK {
		warnings = append(warnings, fmt.Sprintf("unknown snap series %q ignored", opts.SnapSeries))
	}

	for _, spec := range specs {
		parsed, err := p.Parse(spec.Value)
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		warnings = append(warnings, parsed.Warnings...)

		c := Component{
			ID:               len(out),
			Value:            parsed.Value,
			TolerancePercent: parsed.TolerancePercent,
			SeriesName:       parsed.SeriesName,
			Active:           true,
		}
		if spec.TolerancePercent != nil {
			t := *spec.TolerancePercent
			if t < 0 || t >= 100 || math.IsNaN(t) {
				warnings = append(warnings, (&InputError{Item: spec.Value, Reason: "tolerance must be in [0, 100)"}).Error())
				continue
			}
			c.TolerancePercent = &t
		}
		if spec.Series != "" {
			s, ok := series.Lookup(spec.Series)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("%s: unknown series %q ignored", spec.Value, spec.Series))
			} else {
				c.SeriesName = s.Name
			}
		}
		if spec.Active != nil {
			c.Active = *spec.Active
		}
		if snapOK {
			snapped := snap.Nearest(c.Value)
			if snapped != c.Value {
				warnings = append(warnings, fmt.Sprintf("%s snapped to %s (%s)", spec.Value, FormatValue(snapped), snap.Name))
				c.Value = snapped
			}
		}
		out = append(out, c)
	}
	return out, warnings
}

// ActiveCount returns how many components are active.
func ActiveCount(cs []Component) int {
	n := 0
	for _, c := range cs {
		if c.Active {
			n++
		}
	}
	return n
}
