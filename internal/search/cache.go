package search

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/dgallion1/rescalc/internal/component"
)

// ResultCache holds the last merged result for one caller. A request whose
// signature matches is served from the cache; any other request replaces it.
// Active flags and sort order are not part of the signature. A result that
// overlap pruning shaped stops matching once a component that was active
// when it was stored is switched off.
type ResultCache struct {
	mu        sync.Mutex
	signature string
	result    Result
	active    map[int]bool
	ok        bool
}

// NewResultCache returns an empty cache.
func NewResultCache() *ResultCache {
	return &ResultCache{}
}

// Get returns a copy of the cached result when sig matches and the result is
// still valid for the active flags in components.
func (c *ResultCache) Get(sig string, components []component.Component) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ok || c.signature != sig {
		return Result{}, false
	}
	if c.result.Stats.PrunedBlocks+c.result.Stats.PrunedCombos > 0 {
		for _, comp := range components {
			if c.active[comp.ID] && !comp.Active {
				return Result{}, false
			}
		}
	}
	r := c.result
	r.Candidates = slices.Clone(r.Candidates)
	return r, true
}

// Put replaces the cached entry. components are the ones the search ran
// with; their active flags decide which later toggles the entry survives.
func (c *ResultCache) Put(sig string, r Result, components []component.Component) {
	active := make(map[int]bool, len(components))
	for _, comp := range components {
		if comp.Active {
			active[comp.ID] = true
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signature = sig
	c.result = r
	c.active = active
	c.ok = true
}

// Clear drops the cached entry.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signature = ""
	c.result = Result{}
	c.active = nil
	c.ok = false
}

// Signature identifies a search by everything that changes its result:
// component values and tolerances in order, target, snap series and limits.
func Signature(components []component.Component, target float64, snapSeries string, limits Limits) string {
	h := sha256.New()
	for _, c := range components {
		fmt.Fprintf(h, "%s;", c.Key())
	}
	l := limits.normalized()
	fmt.Fprintf(h, "|%s|%s|%d,%d,%d,%d,%d",
		strconv.FormatFloat(target, 'g', 12, 64), snapSeries,
		l.MaxParallel, l.MaxSeriesBlocks, l.MaxBlocks, l.MaxCombos, l.MaxParallelCombos)
	return hex.EncodeToString(h.Sum(nil))
}

// View turns a merged result into the ranked list for one set of active
// flags: drop candidates using inactive components, sort, dedupe equivalent
// trees and apply the error band. The input is not modified.
func View(r Result, components []component.Component, order SortOrder) Result {
	cands := FilterActive(slices.Clone(r.Candidates), components)
	Sort(cands, order)
	cands = Band(Dedupe(cands))
	r.Candidates = cands
	r.Stats.ComboCount = len(cands)
	return r
}
