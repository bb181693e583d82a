// Package network models series/parallel resistor trees.
//
// A Block is a tagged union: a Leaf wrapping one component, or a Series or
// Parallel group over one or more ordered children. Resistance and the
// tolerance interval are computed once when the node is built and never
// change afterwards.
package network

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dgallion1/rescalc/internal/component"
)

// Kind tags a Block.
type Kind int

const (
	Leaf Kind = iota
	Series
	Parallel
)

func (k Kind) String() string {
	switch k {
	case Leaf:
		return "leaf"
	case Series:
		return "series"
	case Parallel:
		return "parallel"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Block is a node of a series/parallel tree.
type Block struct {
	kind      Kind
	component component.Component
	children  []*Block

	resistance float64
	bounds     Bounds
	leaves     int
}

// NewLeaf wraps a single component.
func NewLeaf(c component.Component) *Block {
	return &Block{
		kind:       Leaf,
		component:  c,
		resistance: c.Value,
		bounds:     leafBounds(c),
		leaves:     1,
	}
}

// NewSeries joins children end to end. A single child is returned as is.
// It panics when called without children.
func NewSeries(children ...*Block) *Block {
	return newGroup(Series, children)
}

// NewParallel joins children side by side. A single child is returned as is.
// It panics when called without children.
func NewParallel(children ...*Block) *Block {
	return newGroup(Parallel, children)
}

func newGroup(kind Kind, children []*Block) *Block {
	switch len(children) {
	case 0:
		panic(fmt.Sprintf("network: %s group needs at least one child", kind))
	case 1:
		return children[0]
	}
	b := &Block{kind: kind, children: slices.Clone(children)}
	for _, c := range children {
		b.leaves += c.leaves
	}
	switch kind {
	case Series:
		for _, c := range children {
			b.resistance += c.resistance
		}
		b.bounds = seriesBounds(children)
	case Parallel:
		var g float64
		for _, c := range children {
			g += 1 / c.resistance
		}
		b.resistance = 1 / g
		b.bounds = parallelBounds(children)
	default:
		panic(fmt.Sprintf("network: cannot build group of kind %s", kind))
	}
	return b
}

func (b *Block) Kind() Kind          { return b.kind }
func (b *Block) Resistance() float64 { return b.resistance }
func (b *Block) Bounds() Bounds      { return b.bounds }

// LeafCount is the number of components in the tree.
func (b *Block) LeafCount() int { return b.leaves }

// Children returns the ordered children of a group, nil for a leaf.
func (b *Block) Children() []*Block { return b.children }

// Component returns the wrapped component of a leaf.
func (b *Block) Component() (component.Component, bool) {
	return b.component, b.kind == Leaf
}

// Walk calls fn for every leaf component in tree order until fn returns false.
func (b *Block) Walk(fn func(component.Component) bool) bool {
	if b.kind == Leaf {
		return fn(b.component)
	}
	for _, c := range b.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Label renders the tree with RKM values, e.g. "(10k || 10k) + 4k7".
func (b *Block) Label() string {
	if b.kind == Leaf {
		return component.FormatValue(b.component.Value)
	}
	parts := make([]string, len(b.children))
	for i, c := range b.children {
		parts[i] = c.Label()
		if c.kind != Leaf && c.kind != b.kind {
			parts[i] = "(" + parts[i] + ")"
		}
	}
	sep := " + "
	if b.kind == Parallel {
		sep = " || "
	}
	return strings.Join(parts, sep)
}

// Key is a canonical description of the tree built from component values,
// tolerances and structure, ignoring child order and component identity.
// Trees with equal keys are electrically interchangeable.
func (b *Block) Key() string {
	switch b.kind {
	case Leaf:
		return strconv.FormatFloat(b.component.Value, 'g', 10, 64) + "@" + strconv.FormatFloat(b.component.Tolerance(), 'g', -1, 64)
	case Series, Parallel:
		keys := make([]string, len(b.children))
		for i, c := range b.children {
			keys[i] = c.Key()
		}
		slices.Sort(keys)
		prefix := "S"
		if b.kind == Parallel {
			prefix = "P"
		}
		return prefix + "(" + strings.Join(keys, ",") + ")"
	}
	return ""
}

type blockJSON struct {
	Kind             string      `json:"kind"`
	ID               *int        `json:"id,omitempty"`
	Value            float64     `json:"value"`
	TolerancePercent *float64    `json:"tolerance_percent,omitempty"`
	Children         []*Block    `json:"children,omitempty"`
	Bounds           *boundsJSON `json:"bounds,omitempty"`
}

type boundsJSON struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// MarshalJSON encodes the tree with kind tags.
func (b *Block) MarshalJSON() ([]byte, error) {
	out := blockJSON{
		Kind:     b.kind.String(),
		Value:    b.resistance,
		Children: b.children,
		Bounds:   &boundsJSON{Lower: b.bounds.Lower, Upper: b.bounds.Upper},
	}
	if b.kind == Leaf {
		id := b.component.ID
		tol := b.component.Tolerance()
		out.ID = &id
		out.TolerancePercent = &tol
	}
	return json.Marshal(out)
}
